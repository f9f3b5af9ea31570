package core

import (
	"context"
	"fmt"

	"soutenancecore/pkg/domain"
)

// ListSpecialiteDefences returns the defences of a track with their derived
// classroom, students, juries and invitees.
func (s *Service) ListSpecialiteDefences(ctx context.Context, specialiteID string) ([]Defence, error) {
	var out []Defence
	err := s.view(ctx, "list_specialite_defences", func(v TransactionView) error {
		out = []Defence{}
		idx := domain.NewDefenceIndex(v)
		for _, rec := range v.ListDefences() {
			if rec.SpecialiteID == specialiteID {
				out = append(out, idx.Project(rec))
			}
		}
		return nil
	})
	return out, err
}

// GetDefence returns the projection of one defence.
func (s *Service) GetDefence(ctx context.Context, id string) (Defence, error) {
	var out Defence
	err := s.view(ctx, "get_defence", func(v TransactionView) error {
		rec, ok := v.FindDefence(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityDefence, ID: id}
		}
		out = domain.ProjectDefence(v, rec)
		return nil
	})
	return out, err
}

// CreateDefence persists a defence record. Related records are attached by
// separate calls; the returned projection therefore has empty relations.
func (s *Service) CreateDefence(ctx context.Context, draft DefenceDraft) (Defence, Result, error) {
	var created Defence
	res, err := s.write(ctx, "create_defence", func() string { return created.ID }, func(tx Transaction) error {
		rec, err := tx.CreateDefence(draft.Record())
		if err != nil {
			return err
		}
		created = domain.ProjectDefence(tx.Snapshot(), rec)
		return nil
	})
	return created, res, err
}

// SetDefenceStatus records whether the composition of a defence completed.
func (s *Service) SetDefenceStatus(ctx context.Context, id string, status domain.CompositionStatus) (Defence, Result, error) {
	var updated Defence
	res, err := s.write(ctx, "set_defence_status", func() string { return id }, func(tx Transaction) error {
		if !status.Valid() {
			return fmt.Errorf("unknown composition status %q", status)
		}
		rec, err := tx.UpdateDefence(id, func(d *DefenceRecord) error {
			d.Status = status
			return nil
		})
		if err != nil {
			return err
		}
		updated = domain.ProjectDefence(tx.Snapshot(), rec)
		return nil
	})
	return updated, res, err
}

// DeleteDefence removes a defence with its associations and detaches its students.
func (s *Service) DeleteDefence(ctx context.Context, id string) (Result, error) {
	return s.write(ctx, "delete_defence", func() string { return id }, func(tx Transaction) error {
		return tx.DeleteDefence(id)
	})
}

// CreateJuryAssignment links a jury member to a defence.
func (s *Service) CreateJuryAssignment(ctx context.Context, link JuryAssignment) (JuryAssignment, Result, error) {
	var created JuryAssignment
	res, err := s.write(ctx, "create_jury_assignment", func() string { return link.JuryID + "/" + link.DefenceID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateJuryAssignment(link)
		return err
	})
	return created, res, err
}

// DeleteJuryAssignment unlinks a jury member from a defence.
func (s *Service) DeleteJuryAssignment(ctx context.Context, juryID, defenceID string) (Result, error) {
	return s.write(ctx, "delete_jury_assignment", func() string { return juryID + "/" + defenceID }, func(tx Transaction) error {
		return tx.DeleteJuryAssignment(juryID, defenceID)
	})
}

// CreateInviteeAssignment links an invitee to a defence.
func (s *Service) CreateInviteeAssignment(ctx context.Context, link InviteeAssignment) (InviteeAssignment, Result, error) {
	var created InviteeAssignment
	res, err := s.write(ctx, "create_invitee_assignment", func() string { return link.InviteeID + "/" + link.DefenceID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateInviteeAssignment(link)
		return err
	})
	return created, res, err
}

// DeleteInviteeAssignment unlinks an invitee from a defence.
func (s *Service) DeleteInviteeAssignment(ctx context.Context, inviteeID, defenceID string) (Result, error) {
	return s.write(ctx, "delete_invitee_assignment", func() string { return inviteeID + "/" + defenceID }, func(tx Transaction) error {
		return tx.DeleteInviteeAssignment(inviteeID, defenceID)
	})
}
