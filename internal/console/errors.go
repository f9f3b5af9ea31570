package console

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptySelection is returned when a bulk action runs with nothing selected.
	ErrEmptySelection = errors.New("empty selection")
	// ErrPartialComposition is matched by CompositionError.
	ErrPartialComposition = errors.New("defence partially composed")
	// ErrPartialDeletion is matched by DeletionError.
	ErrPartialDeletion = errors.New("defences partially deleted")
)

// ValidationError reports input rejected before any backend call. Fields maps
// the JSON field name to the failed validation tag.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// asValidationError converts validator output into a ValidationError.
func asValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

// Step names one backend call of a workflow.
type Step string

const (
	StepCreateDefence  Step = "create_defence"
	StepAssignStudent  Step = "assign_student"
	StepLinkJury       Step = "link_jury"
	StepLinkInvitee    Step = "link_invitee"
	StepRestoreStudent Step = "restore_student"
	StepDeleteDefence  Step = "delete_defence"
	StepMarkPartial    Step = "mark_partial"
)

// StepFailure records one failed backend call.
type StepFailure struct {
	Step   Step
	ItemID string
	Err    error
}

func (f StepFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Step, f.ItemID, f.Err)
}

func (f StepFailure) Unwrap() error { return f.Err }

// CompositionError is returned when a defence was created but some of its
// students, juries or invitees could not be attached.
type CompositionError struct {
	DefenceID  string
	Failures   []StepFailure
	RolledBack bool
}

func (e *CompositionError) Error() string {
	state := "kept for reconciliation"
	if e.RolledBack {
		state = "rolled back"
	}
	return fmt.Sprintf("defence %s partially composed (%d failed steps, %s)", e.DefenceID, len(e.Failures), state)
}

// Is makes CompositionError match ErrPartialComposition.
func (e *CompositionError) Is(target error) bool { return target == ErrPartialComposition }

// Unwrap exposes the individual step failures to errors.Is and errors.As.
func (e *CompositionError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// DeletionError is returned when some selected defences could not be deleted.
type DeletionError struct {
	Failures []StepFailure
}

func (e *DeletionError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.ItemID
	}
	return fmt.Sprintf("failed to delete %d defences: %s", len(e.Failures), strings.Join(ids, ", "))
}

// Is makes DeletionError match ErrPartialDeletion.
func (e *DeletionError) Is(target error) bool { return target == ErrPartialDeletion }

// Unwrap exposes the individual failures.
func (e *DeletionError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}
