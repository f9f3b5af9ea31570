package domain

import "sort"

// JuryMember is a jury as seen through one of its defence assignments.
type JuryMember struct {
	Jury
	Role string `json:"role"`
}

// Defence is the read-side projection of a defence. Classroom, Students,
// Juries and Invitees are derived from other records by the backend and are
// only ever observed, never written back.
type Defence struct {
	DefenceRecord
	Classroom *Classroom   `json:"classroom"`
	Students  []Student    `json:"students"`
	Juries    []JuryMember `json:"juries"`
	Invitees  []Invitee    `json:"invitees"`
}

// DateKey returns the calendar-date prefix (YYYY-MM-DD) of the defence date.
func (d Defence) DateKey() string {
	return DateKey(d.Date)
}

// ClassroomKey returns the classroom identifier or "" when none is set.
func (d Defence) ClassroomKey() string {
	if d.ClassroomID == nil {
		return ""
	}
	return *d.ClassroomID
}

// DateKey truncates a stored date or timestamp to its first ten characters.
func DateKey(date string) string {
	if len(date) <= 10 {
		return date
	}
	return date[:10]
}

// ProjectDefence derives the read-side view of rec from the records visible in view.
func ProjectDefence(view TransactionView, rec DefenceRecord) Defence {
	return NewDefenceIndex(view).Project(rec)
}

// DefenceIndex groups the students and assignments of a view by defence.
// Build it once per view to project a whole listing.
type DefenceIndex struct {
	view     TransactionView
	students map[string][]Student
	juries   map[string][]JuryAssignment
	invitees map[string][]InviteeAssignment
}

// NewDefenceIndex scans the students and assignments of view once.
func NewDefenceIndex(view TransactionView) *DefenceIndex {
	idx := &DefenceIndex{
		view:     view,
		students: make(map[string][]Student),
		juries:   make(map[string][]JuryAssignment),
		invitees: make(map[string][]InviteeAssignment),
	}
	for _, student := range view.ListStudents() {
		if student.SoutenanceID != nil {
			idx.students[*student.SoutenanceID] = append(idx.students[*student.SoutenanceID], student)
		}
	}
	for _, assignment := range view.ListJuryAssignments() {
		idx.juries[assignment.DefenceID] = append(idx.juries[assignment.DefenceID], assignment)
	}
	for _, assignment := range view.ListInviteeAssignments() {
		idx.invitees[assignment.DefenceID] = append(idx.invitees[assignment.DefenceID], assignment)
	}
	for id := range idx.students {
		list := idx.students[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return idx
}

// Project derives the read-side view of rec. Assignments whose jury or
// invitee no longer exists are skipped.
func (x *DefenceIndex) Project(rec DefenceRecord) Defence {
	out := Defence{
		DefenceRecord: rec,
		Students:      append([]Student{}, x.students[rec.ID]...),
		Juries:        []JuryMember{},
		Invitees:      []Invitee{},
	}
	if rec.ClassroomID != nil {
		if classroom, ok := x.view.FindClassroom(*rec.ClassroomID); ok {
			out.Classroom = &classroom
		}
	}
	for _, assignment := range x.juries[rec.ID] {
		if jury, ok := x.view.FindJury(assignment.JuryID); ok {
			out.Juries = append(out.Juries, JuryMember{Jury: jury, Role: assignment.Role})
		}
	}
	for _, assignment := range x.invitees[rec.ID] {
		if invitee, ok := x.view.FindInvitee(assignment.InviteeID); ok {
			out.Invitees = append(out.Invitees, invitee)
		}
	}
	return out
}
