// Package console holds the scheduling logic behind the defence management
// views: reference loading, selections, filtering, the composition and bulk
// deletion workflows and refresh-after-write synchronisation. It talks to the
// backend only through the request/response contracts declared here.
package console

import (
	"context"

	"soutenancecore/pkg/domain"
)

// ReferenceSource serves the read-only lists a scheduling view is built from.
type ReferenceSource interface {
	GetSpecialite(ctx context.Context, id string) (domain.Specialite, error)
	ListClassrooms(ctx context.Context) ([]domain.Classroom, error)
	ListJuries(ctx context.Context) ([]domain.Jury, error)
	ListInvitees(ctx context.Context) ([]domain.Invitee, error)
	ListSpecialiteStudents(ctx context.Context, specialiteID string) ([]domain.Student, error)
}

// DefenceBackend is the per-entity command surface used by the defence
// workflows. None of these calls spans more than one record.
type DefenceBackend interface {
	ListSpecialiteDefences(ctx context.Context, specialiteID string) ([]domain.Defence, error)
	CreateDefence(ctx context.Context, draft domain.DefenceDraft) (domain.Defence, error)
	DeleteDefence(ctx context.Context, id string) error
	SetDefenceStatus(ctx context.Context, id string, status domain.CompositionStatus) error
	// UpdateStudent overwrites every field of the student.
	UpdateStudent(ctx context.Context, student domain.Student) (domain.Student, error)
	CreateJuryAssignment(ctx context.Context, link domain.JuryAssignment) error
	CreateInviteeAssignment(ctx context.Context, link domain.InviteeAssignment) error
}

// RosterBackend manages the people and rooms that defences are built from.
// Create and update of juries and invitees fail with domain.ErrDuplicateEmail
// when the email is already taken.
type RosterBackend interface {
	CreateClassroom(ctx context.Context, classroom domain.Classroom) (domain.Classroom, error)
	UpdateClassroom(ctx context.Context, classroom domain.Classroom) (domain.Classroom, error)
	DeleteClassrooms(ctx context.Context, ids []string) error
	CreateJury(ctx context.Context, jury domain.Jury) (domain.Jury, error)
	UpdateJury(ctx context.Context, jury domain.Jury) (domain.Jury, error)
	DeleteJuries(ctx context.Context, ids []string) error
	CreateInvitee(ctx context.Context, invitee domain.Invitee) (domain.Invitee, error)
	UpdateInvitee(ctx context.Context, invitee domain.Invitee) (domain.Invitee, error)
	DeleteInvitees(ctx context.Context, ids []string) error
	CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error)
	UpdateStudent(ctx context.Context, student domain.Student) (domain.Student, error)
	DeleteStudents(ctx context.Context, ids []string) error
}

// Backend is the full command surface consumed by the console.
type Backend interface {
	ReferenceSource
	DefenceBackend
	RosterBackend
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// NoticeLevel classifies user-facing notices.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notifier shows a message to the user without waiting for an answer.
type Notifier interface {
	Notify(ctx context.Context, level NoticeLevel, message string)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// AlwaysConfirm answers yes to every prompt. Non-interactive callers such as
// the HTTP API use it.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Logger matches the structured logger used across the backend.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, NoticeLevel, string) {}

type options struct {
	logger    Logger
	confirmer Confirmer
	notifier  Notifier
	juryRole  string
	policy    CompensationPolicy
}

// Option customises console components.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:    noopLogger{},
		confirmer: AlwaysConfirm,
		notifier:  noopNotifier{},
		juryRole:  domain.DefaultJuryRole,
		policy:    KeepPartial,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger installs a structured logger.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConfirmer installs the yes/no prompt used before destructive actions.
func WithConfirmer(c Confirmer) Option {
	return func(o *options) {
		if c != nil {
			o.confirmer = c
		}
	}
}

// WithNotifier installs the user-facing notice sink.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithJuryRole sets the role carried by jury assignments made by the
// composition workflow. An empty role keeps domain.DefaultJuryRole.
func WithJuryRole(role string) Option {
	return func(o *options) {
		if role != "" {
			o.juryRole = role
		}
	}
}

// WithCompensation selects how a partially composed defence is handled.
func WithCompensation(policy CompensationPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}
