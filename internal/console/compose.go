package console

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"soutenancecore/pkg/domain"
)

// CompensationPolicy decides what happens to a defence whose composition
// partially failed.
type CompensationPolicy int

const (
	// KeepPartial keeps the defence and whatever was attached, and reports it
	// as partial for manual reconciliation.
	KeepPartial CompensationPolicy = iota
	// Rollback restores the previous assignment of every moved student and
	// deletes the defence, which also drops its associations.
	Rollback
)

func (p CompensationPolicy) String() string {
	switch p {
	case KeepPartial:
		return "keep_partial"
	case Rollback:
		return "rollback"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseCompensationPolicy accepts "keep_partial" and "rollback".
func ParseCompensationPolicy(s string) (CompensationPolicy, error) {
	switch s {
	case "", "keep_partial":
		return KeepPartial, nil
	case "rollback":
		return Rollback, nil
	default:
		return KeepPartial, fmt.Errorf("unknown compensation policy %q", s)
	}
}

// CompositionRequest carries everything needed to schedule one defence. The
// people are full records taken from the reference store.
type CompositionRequest struct {
	ClassroomID  string           `json:"classroom_id"`
	Date         string           `json:"date" validate:"required,datetime=2006-01-02"`
	Hour         string           `json:"hour" validate:"omitempty,datetime=15:04"`
	ProjectLabel string           `json:"pfe" validate:"max=255"`
	Students     []domain.Student `json:"students"`
	Juries       []domain.Jury    `json:"juries"`
	Invitees     []domain.Invitee `json:"invitees"`
}

// CompositionOutcome describes what the workflow managed to write.
type CompositionOutcome struct {
	Defence          domain.Defence `json:"defence"`
	AssignedStudents []string       `json:"assigned_students"`
	LinkedJuries     []string       `json:"linked_juries"`
	LinkedInvitees   []string       `json:"linked_invitees"`
	Failures         []StepFailure  `json:"-"`
	Partial          bool           `json:"partial"`
	RolledBack       bool           `json:"rolled_back"`
}

// Composer runs the defence composition workflow for one track.
type Composer struct {
	backend      DefenceBackend
	specialiteID string
	role         string
	policy       CompensationPolicy
	logger       Logger
	validate     *validator.Validate
}

// NewComposer builds a composer scoped to specialiteID.
func NewComposer(backend DefenceBackend, specialiteID string, opts ...Option) *Composer {
	o := buildOptions(opts)
	return &Composer{
		backend:      backend,
		specialiteID: specialiteID,
		role:         o.juryRole,
		policy:       o.policy,
		logger:       o.logger,
		validate:     newValidator(),
	}
}

// JuryRole returns the role given to linked jury members.
func (c *Composer) JuryRole() string { return c.role }

// Policy returns the compensation policy.
func (c *Composer) Policy() CompensationPolicy { return c.policy }

// Validate checks req without contacting the backend.
func (c *Composer) Validate(req CompositionRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return asValidationError(err)
	}
	return nil
}

// Compose creates the defence, then assigns each student, links each jury
// member and links each invitee, one call at a time. If the defence cannot be
// created nothing else is attempted. Later steps are all attempted; their
// failures are returned as a *CompositionError and handled according to the
// compensation policy.
func (c *Composer) Compose(ctx context.Context, req CompositionRequest) (CompositionOutcome, error) {
	if err := c.Validate(req); err != nil {
		return CompositionOutcome{}, err
	}

	draft := domain.DefenceDraft{
		SpecialiteID: c.specialiteID,
		Date:         req.Date,
		Hour:         req.Hour,
		ProjectLabel: req.ProjectLabel,
	}
	if req.ClassroomID != "" {
		classroomID := req.ClassroomID
		draft.ClassroomID = &classroomID
	}
	defence, err := c.backend.CreateDefence(ctx, draft)
	if err != nil {
		c.logger.Error("create defence failed", "specialite_id", c.specialiteID, "error", err)
		return CompositionOutcome{}, fmt.Errorf("create defence: %w", err)
	}

	out := CompositionOutcome{
		Defence:          defence,
		AssignedStudents: []string{},
		LinkedJuries:     []string{},
		LinkedInvitees:   []string{},
	}
	defenceID := defence.ID
	previous := make(map[string]domain.Student)

	for _, student := range uniqueBy(req.Students, func(s domain.Student) string { return s.ID }) {
		moved := student
		moved.SoutenanceID = &defenceID
		if _, err := c.backend.UpdateStudent(ctx, moved); err != nil {
			out.Failures = append(out.Failures, StepFailure{Step: StepAssignStudent, ItemID: student.ID, Err: err})
			continue
		}
		previous[student.ID] = student
		out.AssignedStudents = append(out.AssignedStudents, student.ID)
	}
	for _, jury := range uniqueBy(req.Juries, func(j domain.Jury) string { return j.ID }) {
		link := domain.JuryAssignment{JuryID: jury.ID, DefenceID: defenceID, Role: c.role}
		if err := c.backend.CreateJuryAssignment(ctx, link); err != nil {
			out.Failures = append(out.Failures, StepFailure{Step: StepLinkJury, ItemID: jury.ID, Err: err})
			continue
		}
		out.LinkedJuries = append(out.LinkedJuries, jury.ID)
	}
	for _, invitee := range uniqueBy(req.Invitees, func(i domain.Invitee) string { return i.ID }) {
		link := domain.InviteeAssignment{InviteeID: invitee.ID, DefenceID: defenceID}
		if err := c.backend.CreateInviteeAssignment(ctx, link); err != nil {
			out.Failures = append(out.Failures, StepFailure{Step: StepLinkInvitee, ItemID: invitee.ID, Err: err})
			continue
		}
		out.LinkedInvitees = append(out.LinkedInvitees, invitee.ID)
	}

	if len(out.Failures) == 0 {
		c.logger.Info("defence composed", "defence_id", defenceID, "students", len(out.AssignedStudents), "juries", len(out.LinkedJuries), "invitees", len(out.LinkedInvitees))
		return out, nil
	}

	for _, f := range out.Failures {
		c.logger.Warn("composition step failed", "defence_id", defenceID, "step", string(f.Step), "item_id", f.ItemID, "error", f.Err)
	}
	if c.policy == Rollback {
		out.RolledBack = c.compensate(ctx, &out, previous)
	}
	out.Partial = !out.RolledBack
	if out.Partial {
		c.markPartial(ctx, &out)
	}
	return out, &CompositionError{DefenceID: defenceID, Failures: out.Failures, RolledBack: out.RolledBack}
}

// compensate undoes the completed steps in reverse: students go back to their
// previous defence, then the defence itself is deleted. It reports whether
// every compensation succeeded.
func (c *Composer) compensate(ctx context.Context, out *CompositionOutcome, previous map[string]domain.Student) bool {
	ok := true
	for i := len(out.AssignedStudents) - 1; i >= 0; i-- {
		id := out.AssignedStudents[i]
		if _, err := c.backend.UpdateStudent(ctx, previous[id]); err != nil {
			ok = false
			out.Failures = append(out.Failures, StepFailure{Step: StepRestoreStudent, ItemID: id, Err: err})
			c.logger.Error("restore student failed", "defence_id", out.Defence.ID, "student_id", id, "error", err)
		}
	}
	if err := c.backend.DeleteDefence(ctx, out.Defence.ID); err != nil {
		ok = false
		out.Failures = append(out.Failures, StepFailure{Step: StepDeleteDefence, ItemID: out.Defence.ID, Err: err})
		c.logger.Error("rollback delete failed", "defence_id", out.Defence.ID, "error", err)
	}
	return ok
}

// markPartial stores the partial status on a kept defence so later listings
// and exports still show it.
func (c *Composer) markPartial(ctx context.Context, out *CompositionOutcome) {
	if err := c.backend.SetDefenceStatus(ctx, out.Defence.ID, domain.CompositionPartial); err != nil {
		out.Failures = append(out.Failures, StepFailure{Step: StepMarkPartial, ItemID: out.Defence.ID, Err: err})
		c.logger.Error("mark partial failed", "defence_id", out.Defence.ID, "error", err)
		return
	}
	out.Defence.Status = domain.CompositionPartial
}

func uniqueBy[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
