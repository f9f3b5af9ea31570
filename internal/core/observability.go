package core

import (
	"context"
	"time"
)

// Logger is the structured logging surface used by the service. Arguments are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutating service operation.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives audit entries for mutating operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes the outcome and latency of every service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan is ended once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type auditMetadata struct {
	entity EntityType
	action Action
}

// auditedOperations lists the mutating operations that produce audit entries.
var auditedOperations = map[string]auditMetadata{
	"create_specialite":         {EntitySpecialite, ActionCreate},
	"seed_specialites":          {EntitySpecialite, ActionCreate},
	"create_classroom":          {EntityClassroom, ActionCreate},
	"update_classroom":          {EntityClassroom, ActionUpdate},
	"delete_classrooms":         {EntityClassroom, ActionDelete},
	"create_jury":               {EntityJury, ActionCreate},
	"update_jury":               {EntityJury, ActionUpdate},
	"delete_juries":             {EntityJury, ActionDelete},
	"create_invitee":            {EntityInvitee, ActionCreate},
	"update_invitee":            {EntityInvitee, ActionUpdate},
	"delete_invitees":           {EntityInvitee, ActionDelete},
	"create_student":            {EntityStudent, ActionCreate},
	"update_student":            {EntityStudent, ActionUpdate},
	"delete_students":           {EntityStudent, ActionDelete},
	"create_defence":            {EntityDefence, ActionCreate},
	"set_defence_status":        {EntityDefence, ActionUpdate},
	"delete_defence":            {EntityDefence, ActionDelete},
	"create_jury_assignment":    {EntityJuryAssignment, ActionCreate},
	"delete_jury_assignment":    {EntityJuryAssignment, ActionDelete},
	"create_invitee_assignment": {EntityInviteeAssignment, ActionCreate},
	"delete_invitee_assignment": {EntityInviteeAssignment, ActionDelete},
}
