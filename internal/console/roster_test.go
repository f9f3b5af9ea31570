package console

import (
	"context"
	"errors"
	"testing"

	"soutenancecore/pkg/domain"
)

func newRoster(t *testing.T, fb *fakeBackend, opts ...Option) *Roster {
	t.Helper()
	r := NewRoster(fb, NewReferenceStore(fb, "sp1"), opts...)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load roster: %v", err)
	}
	return r
}

func TestRosterDuplicateJuryEmail(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend()
	fb.addJury("j1", "amel@example.com")
	notes := &recordingNotifier{}
	roster := newRoster(t, fb, WithNotifier(notes))
	listsBefore := fb.count("list_juries")

	_, err := roster.CreateJury(ctx, PersonInput{Firstname: "A", Lastname: "B", Email: "Amel@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if len(notes.messages) != 1 || notes.messages[0] != "Un jury avec cet email existe déjà !" {
		t.Fatalf("unexpected notices %v", notes.messages)
	}
	if fb.count("list_juries") != listsBefore {
		t.Fatalf("conflict must not reload")
	}
	if err := roster.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(roster.References().Juries) != 1 {
		t.Fatalf("jury collection changed after conflict")
	}
}

func TestRosterDuplicateInviteeEmailOnUpdate(t *testing.T) {
	fb := newFakeBackend()
	fb.addInvitee("i1", "a@example.com")
	fb.addInvitee("i2", "b@example.com")
	notes := &recordingNotifier{}
	roster := newRoster(t, fb, WithNotifier(notes))
	_, err := roster.UpdateInvitee(context.Background(), "i2", PersonInput{Firstname: "B", Lastname: "B", Email: "a@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if notes.messages[0] != "Un invite avec cet email existe déjà !" {
		t.Fatalf("unexpected notice %q", notes.messages[0])
	}
}

func TestRosterCreateReloadsList(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend()
	roster := newRoster(t, fb)
	if _, err := roster.CreateClassroom(ctx, ClassroomInput{Name: " B12 "}); err != nil {
		t.Fatalf("create classroom: %v", err)
	}
	rooms := roster.References().Classrooms
	if len(rooms) != 1 || rooms[0].Name != "B12" {
		t.Fatalf("unexpected classrooms %+v", rooms)
	}
	st, err := roster.CreateStudent(ctx, StudentInput{Firstname: "S", Lastname: "T"})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	if st.SpecialiteID != "sp1" {
		t.Fatalf("student must belong to the roster track")
	}
	if len(roster.References().Students) != 1 {
		t.Fatalf("expected reloaded students")
	}
}

func TestRosterValidation(t *testing.T) {
	fb := newFakeBackend()
	roster := newRoster(t, fb)
	_, err := roster.CreateJury(context.Background(), PersonInput{Firstname: "A", Lastname: "B", Email: "not-an-email"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["email"] != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
	if fb.count("create_jury") != 0 {
		t.Fatalf("validation must happen before the backend call")
	}
}

func TestRosterBulkDelete(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend()
	fb.addJury("j1", "1@example.com")
	fb.addJury("j2", "2@example.com")
	confirm := &countingConfirmer{answer: true}
	roster := newRoster(t, fb, WithConfirmer(confirm))

	if _, err := roster.DeleteSelected(ctx, KindJuries); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected empty selection error, got %v", err)
	}
	if ok, _ := roster.Toggle(KindJuries, "ghost"); ok {
		t.Fatalf("unlisted id must not be selectable")
	}
	if _, err := roster.Toggle(KindJuries, "j1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	deleted, err := roster.DeleteSelected(ctx, KindJuries)
	if err != nil || len(deleted) != 1 {
		t.Fatalf("delete: %v %v", deleted, err)
	}
	if confirm.prompts[0] != deletePrompts[KindJuries] {
		t.Fatalf("unexpected prompt %q", confirm.prompts[0])
	}
	if len(roster.References().Juries) != 1 || len(roster.Selected(KindJuries)) != 0 {
		t.Fatalf("expected reload and cleared selection")
	}
}

func TestRosterBulkDeleteFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend()
	fb.addStudent("s1")
	fb.fail["delete_students"] = true
	notes := &recordingNotifier{}
	roster := newRoster(t, fb, WithNotifier(notes))
	if err := roster.SelectAll(KindStudents); err != nil {
		t.Fatalf("select all: %v", err)
	}
	listed := fb.count("list_students")
	if _, err := roster.DeleteSelected(ctx, KindStudents); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if fb.count("list_students") != listed {
		t.Fatalf("failed delete must not reload")
	}
	if len(roster.Selected(KindStudents)) != 1 {
		t.Fatalf("failed delete must keep the selection")
	}
	if len(notes.messages) != 1 || notes.levels[0] != NoticeError {
		t.Fatalf("expected error notice")
	}
}

func TestRosterUnknownKind(t *testing.T) {
	roster := newRoster(t, newFakeBackend())
	if _, err := roster.Toggle("pfes", "x"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if _, err := roster.DeleteSelected(context.Background(), "pfes"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestRosterRenameStudentKeepsDefence(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend()
	fb.addDefence("d1", "2025-06-10", "")
	s := fb.addStudent("S1")
	defenceID := "d1"
	s.SoutenanceID = &defenceID
	fb.students["S1"] = s
	roster := newRoster(t, fb)

	got, err := roster.UpdateStudent(ctx, "S1", StudentInput{Firstname: "Amel", Lastname: "Ben Ali"})
	if err != nil {
		t.Fatalf("update student: %v", err)
	}
	if got.SoutenanceID == nil || *got.SoutenanceID != "d1" {
		t.Fatalf("rename must keep the defence, got %v", got.SoutenanceID)
	}
	if stored := fb.students["S1"]; stored.Address != "addr S1" || stored.Lastname != "Ben Ali" {
		t.Fatalf("unexpected stored student %+v", stored)
	}

	empty := ""
	got, err = roster.UpdateStudent(ctx, "S1", StudentInput{Firstname: "Amel", Lastname: "Ben Ali", SoutenanceID: &empty})
	if err != nil {
		t.Fatalf("detach student: %v", err)
	}
	if got.SoutenanceID != nil {
		t.Fatalf("empty soutenance id must detach, got %v", *got.SoutenanceID)
	}
}

func TestRosterUpdateStudentOutsideTrack(t *testing.T) {
	fb := newFakeBackend()
	other := fb.addStudent("S9")
	other.SpecialiteID = "sp2"
	fb.students["S9"] = other
	roster := newRoster(t, fb)

	_, err := roster.UpdateStudent(context.Background(), "S9", StudentInput{Firstname: "X", Lastname: "Y"})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "S9" {
		t.Fatalf("expected not found, got %v", err)
	}
	if fb.count("update_student") != 0 {
		t.Fatalf("students of another track must not be written")
	}
	if fb.students["S9"].SpecialiteID != "sp2" {
		t.Fatalf("student moved to another track")
	}
}
