package domain

import "testing"

type fakeView struct {
	classrooms []Classroom
	juries     []Jury
	invitees   []Invitee
	students   []Student
	defences   []DefenceRecord
	juryLinks  []JuryAssignment
	guestLinks []InviteeAssignment
}

func (v *fakeView) ListSpecialites() []Specialite               { return nil }
func (v *fakeView) FindSpecialite(string) (Specialite, bool)    { return Specialite{}, false }
func (v *fakeView) ListClassrooms() []Classroom                 { return v.classrooms }
func (v *fakeView) ListJuries() []Jury                          { return v.juries }
func (v *fakeView) ListInvitees() []Invitee                     { return v.invitees }
func (v *fakeView) ListStudents() []Student                     { return v.students }
func (v *fakeView) ListDefences() []DefenceRecord               { return v.defences }
func (v *fakeView) ListJuryAssignments() []JuryAssignment       { return v.juryLinks }
func (v *fakeView) ListInviteeAssignments() []InviteeAssignment { return v.guestLinks }

func (v *fakeView) FindClassroom(id string) (Classroom, bool) {
	for _, c := range v.classrooms {
		if c.ID == id {
			return c, true
		}
	}
	return Classroom{}, false
}

func (v *fakeView) FindJury(id string) (Jury, bool) {
	for _, j := range v.juries {
		if j.ID == id {
			return j, true
		}
	}
	return Jury{}, false
}

func (v *fakeView) FindInvitee(id string) (Invitee, bool) {
	for _, i := range v.invitees {
		if i.ID == id {
			return i, true
		}
	}
	return Invitee{}, false
}

func (v *fakeView) FindStudent(id string) (Student, bool) {
	for _, s := range v.students {
		if s.ID == id {
			return s, true
		}
	}
	return Student{}, false
}

func (v *fakeView) FindDefence(id string) (DefenceRecord, bool) {
	for _, d := range v.defences {
		if d.ID == id {
			return d, true
		}
	}
	return DefenceRecord{}, false
}

func strPtr(s string) *string { return &s }

func TestProjectDefenceDerivesRelations(t *testing.T) {
	view := &fakeView{
		classrooms: []Classroom{{Base: Base{ID: "c1"}, Name: "A101"}},
		juries:     []Jury{{Base: Base{ID: "j1"}, Email: "j1@x.io"}, {Base: Base{ID: "j2"}}},
		invitees:   []Invitee{{Base: Base{ID: "i1"}}},
		students: []Student{
			{Base: Base{ID: "s2"}, SoutenanceID: strPtr("d1")},
			{Base: Base{ID: "s1"}, SoutenanceID: strPtr("d1")},
			{Base: Base{ID: "s3"}, SoutenanceID: strPtr("d2")},
			{Base: Base{ID: "s4"}},
		},
		juryLinks:  []JuryAssignment{{JuryID: "j1", DefenceID: "d1", Role: "member"}, {JuryID: "j2", DefenceID: "d2"}},
		guestLinks: []InviteeAssignment{{InviteeID: "i1", DefenceID: "d2"}},
	}
	rec := DefenceRecord{Base: Base{ID: "d1"}, ClassroomID: strPtr("c1"), Date: "2025-06-10T09:00:00Z"}
	got := ProjectDefence(view, rec)
	if got.Classroom == nil || got.Classroom.Name != "A101" {
		t.Fatalf("expected classroom to be derived, got %+v", got.Classroom)
	}
	if len(got.Students) != 2 || got.Students[0].ID != "s1" || got.Students[1].ID != "s2" {
		t.Fatalf("expected students s1,s2 in id order, got %+v", got.Students)
	}
	if len(got.Juries) != 1 || got.Juries[0].ID != "j1" || got.Juries[0].Role != "member" {
		t.Fatalf("unexpected juries %+v", got.Juries)
	}
	if got.Invitees == nil || len(got.Invitees) != 0 {
		t.Fatalf("expected empty non-nil invitees, got %+v", got.Invitees)
	}
	if got.DateKey() != "2025-06-10" {
		t.Fatalf("unexpected date key %q", got.DateKey())
	}
	if got.ClassroomKey() != "c1" {
		t.Fatalf("unexpected classroom key %q", got.ClassroomKey())
	}
}

// countingView records how often the relation lists are scanned.
type countingView struct {
	*fakeView
	scans int
}

func (v *countingView) ListStudents() []Student {
	v.scans++
	return v.fakeView.ListStudents()
}

func (v *countingView) ListJuryAssignments() []JuryAssignment {
	v.scans++
	return v.fakeView.ListJuryAssignments()
}

func (v *countingView) ListInviteeAssignments() []InviteeAssignment {
	v.scans++
	return v.fakeView.ListInviteeAssignments()
}

func TestDefenceIndexScansOncePerListing(t *testing.T) {
	view := &countingView{fakeView: &fakeView{
		juries:   []Jury{{Base: Base{ID: "j1"}}},
		invitees: []Invitee{{Base: Base{ID: "i1"}}},
		students: []Student{
			{Base: Base{ID: "s2"}, SoutenanceID: strPtr("d1")},
			{Base: Base{ID: "s1"}, SoutenanceID: strPtr("d1")},
			{Base: Base{ID: "s3"}, SoutenanceID: strPtr("d3")},
		},
		juryLinks:  []JuryAssignment{{JuryID: "j1", DefenceID: "d2", Role: "member"}, {JuryID: "gone", DefenceID: "d2"}},
		guestLinks: []InviteeAssignment{{InviteeID: "i1", DefenceID: "d3"}},
	}}
	idx := NewDefenceIndex(view)
	var got []Defence
	for _, id := range []string{"d1", "d2", "d3", "d4"} {
		got = append(got, idx.Project(DefenceRecord{Base: Base{ID: id}}))
	}
	if view.scans != 3 {
		t.Fatalf("expected each relation list scanned once, got %d scans", view.scans)
	}
	if len(got[0].Students) != 2 || got[0].Students[0].ID != "s1" {
		t.Fatalf("unexpected d1 students %+v", got[0].Students)
	}
	if len(got[1].Juries) != 1 || got[1].Juries[0].Role != "member" {
		t.Fatalf("dangling jury link must be skipped, got %+v", got[1].Juries)
	}
	if len(got[2].Students) != 1 || len(got[2].Invitees) != 1 {
		t.Fatalf("unexpected d3 projection %+v", got[2])
	}
	if got[3].Students == nil || got[3].Juries == nil || got[3].Invitees == nil || len(got[3].Students) != 0 {
		t.Fatalf("empty relations must be non-nil, got %+v", got[3])
	}
}

func TestProjectDefenceDanglingClassroom(t *testing.T) {
	got := ProjectDefence(&fakeView{}, DefenceRecord{Base: Base{ID: "d1"}, ClassroomID: strPtr("gone"), Date: "2025-06-10"})
	if got.Classroom != nil {
		t.Fatalf("expected nil classroom for dangling reference")
	}
	if got.DateKey() != "2025-06-10" {
		t.Fatalf("short dates must be returned unchanged, got %q", got.DateKey())
	}
}

func TestDraftRecord(t *testing.T) {
	draft := DefenceDraft{SpecialiteID: "sp", ClassroomID: strPtr("c1"), Date: "2025-06-10", Hour: "09:00", ProjectLabel: "PFE"}
	rec := draft.Record()
	if rec.ID != "" || rec.SpecialiteID != "sp" || rec.Hour != "09:00" || rec.ProjectLabel != "PFE" || *rec.ClassroomID != "c1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if (Student{SoutenanceID: strPtr("")}).Assigned() {
		t.Fatalf("empty soutenance id must not count as assigned")
	}
}
