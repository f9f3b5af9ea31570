package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"soutenancecore/pkg/domain"
)

func strPtr(s string) *string { return &s }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		created, err := tx.CreateClassroom(domain.Classroom{Name: "A101"})
		if err != nil {
			return err
		}
		if created.ID == "" {
			t.Fatalf("expected generated ID")
		}
		if len(tx.Snapshot().ListClassrooms()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	snapshot := store.ExportState()
	if len(snapshot.Classrooms) != 1 {
		t.Fatalf("expected exported classroom")
	}
	store.ImportState(Snapshot{})
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListClassrooms()) != 0 {
			t.Fatalf("expected cleared state")
		}
		return nil
	})
	store.ImportState(snapshot)
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListClassrooms()) != 1 {
			t.Fatalf("expected restored state")
		}
		return nil
	})
	if store.RulesEngine() == nil || store.NowFunc() == nil {
		t.Fatalf("expected rules engine and clock")
	}
}

func TestStoreFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateClassroom(domain.Classroom{Name: "A101"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatalf("expected abort error")
	}
	if got := len(store.ExportState().Classrooms); got != 0 {
		t.Fatalf("expected no classrooms after aborted transaction, got %d", got)
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block" }

func (blockingRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{Rule: "block", Severity: domain.SeverityBlock}}}, nil
}

func TestStoreRuleViolation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateClassroom(domain.Classroom{Name: "Blocked"})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result to be returned")
	}
	if len(store.ExportState().Classrooms) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestJuryEmailUniqueness(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var first domain.Jury
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		first, err = tx.CreateJury(domain.Jury{Firstname: "Ada", Email: "ada@school.tn"})
		return err
	}); err != nil {
		t.Fatalf("create jury: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateJury(domain.Jury{Firstname: "Other", Email: " ADA@school.tn "})
		return err
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if len(store.ExportState().Juries) != 1 {
		t.Fatalf("duplicate must not be stored")
	}

	var second domain.Jury
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		second, err = tx.CreateJury(domain.Jury{Firstname: "Bob", Email: "bob@school.tn"})
		return err
	}); err != nil {
		t.Fatalf("create second jury: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateJury(second.ID, func(j *domain.Jury) error {
			j.Email = first.Email
			return nil
		})
		return err
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email on update, got %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateJury(first.ID, func(j *domain.Jury) error {
			j.Lastname = "Lovelace"
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("keeping own email must be allowed: %v", err)
	}
}

func TestInviteeEmailUniqueness(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateInvitee(domain.Invitee{Email: "guest@corp.tn"}); err != nil {
			return err
		}
		// same email on the jury side is independent
		_, err := tx.CreateJury(domain.Jury{Email: "guest@corp.tn"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateInvitee(domain.Invitee{Email: "guest@corp.tn"})
		return err
	})
	var dup domain.DuplicateEmailError
	if !errors.As(err, &dup) || dup.Entity != domain.EntityInvitee {
		t.Fatalf("expected invitee duplicate error, got %v", err)
	}
}

func TestDeleteDefenceCascades(t *testing.T) {
	store := NewStore(nil)
	store.SetIDFunc(sequentialIDs("id-"))
	ctx := context.Background()
	var defence domain.DefenceRecord
	var jury domain.Jury
	var invitee domain.Invitee
	var student domain.Student
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		if defence, err = tx.CreateDefence(domain.DefenceRecord{SpecialiteID: "sp", Date: "2025-06-10"}); err != nil {
			return err
		}
		if jury, err = tx.CreateJury(domain.Jury{Email: "j@x.tn"}); err != nil {
			return err
		}
		if invitee, err = tx.CreateInvitee(domain.Invitee{Email: "i@x.tn"}); err != nil {
			return err
		}
		if student, err = tx.CreateStudent(domain.Student{Firstname: "S", SpecialiteID: "sp", SoutenanceID: strPtr(defence.ID)}); err != nil {
			return err
		}
		if _, err = tx.CreateJuryAssignment(domain.JuryAssignment{JuryID: jury.ID, DefenceID: defence.ID, Role: domain.DefaultJuryRole}); err != nil {
			return err
		}
		_, err = tx.CreateInviteeAssignment(domain.InviteeAssignment{InviteeID: invitee.ID, DefenceID: defence.ID})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteDefence(defence.ID)
	}); err != nil {
		t.Fatalf("delete defence: %v", err)
	}
	state := store.ExportState()
	if len(state.Defences) != 0 || len(state.JuryAssignments) != 0 || len(state.InviteeAssignments) != 0 {
		t.Fatalf("expected defence and its associations removed: %+v", state)
	}
	if state.Students[student.ID].SoutenanceID != nil {
		t.Fatalf("expected student detached from deleted defence")
	}
	if len(state.Juries) != 1 || len(state.Invitees) != 1 {
		t.Fatalf("jury and invitee records must survive defence deletion")
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteDefence(defence.ID)
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteClassroomDetachesDefences(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var room domain.Classroom
	var defence domain.DefenceRecord
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		if room, err = tx.CreateClassroom(domain.Classroom{Name: "B2"}); err != nil {
			return err
		}
		defence, err = tx.CreateDefence(domain.DefenceRecord{ClassroomID: strPtr(room.ID), Date: "2025-06-11"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteClassroom(room.ID)
	}); err != nil {
		t.Fatalf("delete classroom: %v", err)
	}
	if got := store.ExportState().Defences[defence.ID]; got.ClassroomID != nil {
		t.Fatalf("expected defence classroom cleared, got %v", *got.ClassroomID)
	}
}

func TestDeleteMembersRemovesAssignments(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		d, _ := tx.CreateDefence(domain.DefenceRecord{Date: "2025-06-12"})
		j, _ := tx.CreateJury(domain.Jury{Email: "a@a.tn"})
		i, _ := tx.CreateInvitee(domain.Invitee{Email: "b@b.tn"})
		if _, err := tx.CreateJuryAssignment(domain.JuryAssignment{JuryID: j.ID, DefenceID: d.ID}); err != nil {
			return err
		}
		if _, err := tx.CreateInviteeAssignment(domain.InviteeAssignment{InviteeID: i.ID, DefenceID: d.ID}); err != nil {
			return err
		}
		if err := tx.DeleteJury(j.ID); err != nil {
			return err
		}
		return tx.DeleteInvitee(i.ID)
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	state := store.ExportState()
	if len(state.JuryAssignments) != 0 || len(state.InviteeAssignments) != 0 {
		t.Fatalf("expected member deletion to drop assignments")
	}
	if len(state.Defences) != 1 {
		t.Fatalf("defence must survive member deletion")
	}
}

func TestAssignmentPairsAreUnique(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		link := domain.JuryAssignment{JuryID: "j", DefenceID: "d", Role: "member"}
		if _, err := tx.CreateJuryAssignment(link); err != nil {
			return err
		}
		_, err := tx.CreateJuryAssignment(link)
		return err
	})
	if !errors.Is(err, domain.ErrDuplicateAssignment) {
		t.Fatalf("expected duplicate jury assignment, got %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		link := domain.InviteeAssignment{InviteeID: "i", DefenceID: "d"}
		if _, err := tx.CreateInviteeAssignment(link); err != nil {
			return err
		}
		_, err := tx.CreateInviteeAssignment(link)
		return err
	})
	if !errors.Is(err, domain.ErrDuplicateAssignment) {
		t.Fatalf("expected duplicate invitee assignment, got %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteJuryAssignment("missing", "d")
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing assignment, got %v", err)
	}
}

func TestUpdateStudentOverwritesAssignment(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })
	ctx := context.Background()
	var st domain.Student
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		st, err = tx.CreateStudent(domain.Student{Firstname: "Sami", SoutenanceID: strPtr("old")})
		return err
	}); err != nil {
		t.Fatalf("create student: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateStudent(st.ID, func(s *domain.Student) error {
			*s = domain.Student{Firstname: "Sami", SoutenanceID: strPtr("new")}
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update student: %v", err)
	}
	got := store.ExportState().Students[st.ID]
	if got.SoutenanceID == nil || *got.SoutenanceID != "new" {
		t.Fatalf("expected overwritten soutenance id, got %v", got.SoutenanceID)
	}
	if got.ID != st.ID || !got.CreatedAt.Equal(fixed) {
		t.Fatalf("update must keep identity and creation time: %+v", got)
	}
}

func TestViewOrdering(t *testing.T) {
	store := NewStore(nil)
	store.SetIDFunc(sequentialIDs("x"))
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, _ = tx.CreateDefence(domain.DefenceRecord{Date: "2025-06-11", Hour: "09:00"})
		_, _ = tx.CreateDefence(domain.DefenceRecord{Date: "2025-06-10", Hour: "14:00"})
		_, _ = tx.CreateDefence(domain.DefenceRecord{Date: "2025-06-10", Hour: "08:30"})
		_, _ = tx.CreateSpecialite(domain.Specialite{Name: "Génie Civil"})
		_, err := tx.CreateSpecialite(domain.Specialite{Name: "Génie Aéro"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = store.View(ctx, func(v domain.TransactionView) error {
		defences := v.ListDefences()
		if defences[0].ID != "x3" || defences[1].ID != "x2" || defences[2].ID != "x1" {
			t.Fatalf("unexpected defence order %+v", defences)
		}
		sps := v.ListSpecialites()
		if sps[0].Name != "Génie Aéro" {
			t.Fatalf("expected specialites sorted by name, got %+v", sps)
		}
		return nil
	})
}

func TestViewIsolatedFromLaterWrites(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var st domain.Student
	_, _ = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		st, err = tx.CreateStudent(domain.Student{SoutenanceID: strPtr("d1")})
		return err
	})
	_ = store.View(ctx, func(v domain.TransactionView) error {
		got, _ := v.FindStudent(st.ID)
		*got.SoutenanceID = "mutated"
		return nil
	})
	if got := store.ExportState().Students[st.ID]; *got.SoutenanceID != "d1" {
		t.Fatalf("view results must not alias store state, got %q", *got.SoutenanceID)
	}
}

func TestRunAndCommitInstallsStateOnlyAfterHook(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	create := func(tx domain.Transaction) error {
		_, err := tx.CreateClassroom(domain.Classroom{Name: "B12"})
		return err
	}

	var seen int
	_, err := store.RunAndCommit(ctx, create, func(_ context.Context, next Snapshot) error {
		seen = len(next.Classrooms)
		if got := len(store.state.classrooms); got != 0 {
			t.Fatalf("state installed before the hook ran: %d classrooms", got)
		}
		return errors.New("disk full")
	})
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected hook error, got %v", err)
	}
	if seen != 1 {
		t.Fatalf("hook should see the pending classroom, saw %d", seen)
	}
	if got := len(store.ExportState().Classrooms); got != 0 {
		t.Fatalf("rejected write is visible: %d classrooms", got)
	}

	if _, err := store.RunAndCommit(ctx, create, func(context.Context, Snapshot) error { return nil }); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := len(store.ExportState().Classrooms); got != 1 {
		t.Fatalf("expected committed classroom, got %d", got)
	}
}

func TestDefenceStatusDefaultsAndUpdates(t *testing.T) {
	store := NewStore(nil)
	store.ImportState(Snapshot{Defences: map[string]DefenceRecord{"old": {Base: domain.Base{ID: "old"}, Date: "2024-06-10"}}})
	ctx := context.Background()
	var created DefenceRecord
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		if created, err = tx.CreateDefence(DefenceRecord{Date: "2025-06-10"}); err != nil {
			return err
		}
		_, err = tx.UpdateDefence(created.ID, func(d *DefenceRecord) error {
			d.Status = domain.CompositionPartial
			d.ID = "hijack"
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	state := store.ExportState()
	if state.Defences["old"].Status != domain.CompositionComplete {
		t.Fatalf("imported defence without status must be complete, got %q", state.Defences["old"].Status)
	}
	if got := state.Defences[created.ID]; got.Status != domain.CompositionPartial || got.Date != "2025-06-10" {
		t.Fatalf("unexpected updated defence %+v", got)
	}
	if _, ok := state.Defences["hijack"]; ok {
		t.Fatalf("update must not change the id")
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateDefence("missing", func(*DefenceRecord) error { return nil })
		return err
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
