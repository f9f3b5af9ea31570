package console

import (
	"context"
	"errors"
	"strings"
	"testing"

	"soutenancecore/pkg/domain"
)

func TestReferenceStoreLoadsEveryCollection(t *testing.T) {
	fb := newFakeBackend()
	fb.addClassroom("c1", "A1")
	fb.addJury("j1", "j1@example.com")
	fb.addInvitee("i1", "i1@example.com")
	fb.addStudent("s1")
	fb.addStudent("s2")
	other := fb.addStudent("s3")
	other.SpecialiteID = "elsewhere"
	fb.students["s3"] = other

	store := NewReferenceStore(fb, "sp1")
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	refs := store.Snapshot()
	if refs.Specialite.Name != "Génie Civil" {
		t.Fatalf("expected track name, got %q", refs.Specialite.Name)
	}
	if len(refs.Classrooms) != 1 || len(refs.Juries) != 1 || len(refs.Invitees) != 1 {
		t.Fatalf("unexpected references %+v", refs)
	}
	if len(refs.Students) != 2 {
		t.Fatalf("expected only the track's students, got %d", len(refs.Students))
	}
}

func TestReferenceStoreFailuresAreIndependent(t *testing.T) {
	fb := newFakeBackend()
	fb.addClassroom("c1", "A1")
	fb.addJury("j1", "j1@example.com")
	store := NewReferenceStore(fb, "sp1")
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}

	fb.addClassroom("c2", "A2")
	fb.addJury("j2", "j2@example.com")
	fb.fail["list_juries"] = true
	fb.fail["get_specialite"] = true

	err := store.Load(context.Background())
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected joined backend error, got %v", err)
	}
	if !strings.Contains(err.Error(), "load juries") || !strings.Contains(err.Error(), "load specialite") {
		t.Fatalf("expected both failures reported, got %v", err)
	}
	refs := store.Snapshot()
	if len(refs.Classrooms) != 2 {
		t.Fatalf("classrooms should refresh despite other failures, got %d", len(refs.Classrooms))
	}
	if len(refs.Juries) != 1 {
		t.Fatalf("juries should keep last-known value, got %d", len(refs.Juries))
	}
	if refs.Specialite.Name != "Génie Civil" {
		t.Fatalf("specialite should keep last-known value")
	}
}

func TestReferenceStoreFirstLoadFailureLeavesEmpty(t *testing.T) {
	fb := newFakeBackend()
	fb.fail["list_classrooms"] = true
	store := NewReferenceStore(fb, "sp1")
	_ = store.Load(context.Background())
	if refs := store.Snapshot(); refs.Classrooms == nil || len(refs.Classrooms) != 0 {
		t.Fatalf("expected empty classrooms, got %#v", refs.Classrooms)
	}
}

func TestReferenceStoreSnapshotsAreReplacedWholesale(t *testing.T) {
	fb := newFakeBackend()
	fb.addStudent("s1")
	store := NewReferenceStore(fb, "sp1")
	_ = store.Load(context.Background())
	old := store.Snapshot()

	fb.addStudent("s2")
	if err := store.ReloadStudents(context.Background()); err != nil {
		t.Fatalf("reload students: %v", err)
	}
	if len(old.Students) != 1 {
		t.Fatalf("previous snapshot must not change, got %d students", len(old.Students))
	}
	if len(store.Snapshot().Students) != 2 {
		t.Fatalf("expected new snapshot with 2 students")
	}
	if fb.count("list_classrooms") != 1 {
		t.Fatalf("student reload must not refetch classrooms")
	}
}

func TestReferencesPick(t *testing.T) {
	refs := &References{
		Students: []domain.Student{{Base: domain.Base{ID: "s1"}}, {Base: domain.Base{ID: "s2"}}},
		Juries:   []domain.Jury{{Base: domain.Base{ID: "j1"}}},
	}
	students, err := refs.PickStudents([]string{"s2", "s1"})
	if err != nil || len(students) != 2 || students[0].ID != "s2" {
		t.Fatalf("unexpected pick result %+v %v", students, err)
	}
	_, err = refs.PickJuries([]string{"j1", "ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown jury, got %v", err)
	}
	invitees, err := refs.PickInvitees(nil)
	if err != nil || len(invitees) != 0 {
		t.Fatalf("expected empty pick, got %+v %v", invitees, err)
	}
}
