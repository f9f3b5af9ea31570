// Package domain defines the persistent entities, read-side projections and
// rule evaluation primitives used by the defence scheduling backend.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntitySpecialite identifies a track (department) record.
	EntitySpecialite EntityType = "specialite"
	// EntityClassroom identifies a classroom record.
	EntityClassroom EntityType = "classroom"
	// EntityStudent identifies a student record.
	EntityStudent EntityType = "student"
	// EntityJury identifies a jury member record.
	EntityJury EntityType = "jury"
	// EntityInvitee identifies an invited guest record.
	EntityInvitee EntityType = "invitee"
	// EntityDefence identifies a defence (soutenance) record.
	EntityDefence EntityType = "defence"
	// EntityJuryAssignment identifies a jury-defence association.
	EntityJuryAssignment EntityType = "jury_assignment"
	// EntityInviteeAssignment identifies an invitee-defence association.
	EntityInviteeAssignment EntityType = "invitee_assignment"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// DefaultJuryRole is the role assigned to jury members linked by the composition workflow.
const DefaultJuryRole = "member"

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Specialite is the department or track that scopes students and defences.
type Specialite struct {
	Base
	Name string `json:"name"`
}

// Classroom is a room a defence can be held in.
type Classroom struct {
	Base
	Name string `json:"name"`
}

// Student belongs to a track and is assigned to at most one defence at a time.
type Student struct {
	Base
	Firstname    string  `json:"firstname"`
	Lastname     string  `json:"lastname"`
	Address      string  `json:"address"`
	SpecialiteID string  `json:"specialite_id"`
	SoutenanceID *string `json:"soutenance_id"`
}

// Assigned reports whether the student is currently attached to a defence.
func (s Student) Assigned() bool {
	return s.SoutenanceID != nil && *s.SoutenanceID != ""
}

// Jury is an evaluating panel member. Email is unique across juries.
type Jury struct {
	Base
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// Invitee is a non-evaluating attendee. Email is unique across invitees.
type Invitee struct {
	Base
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// DefenceRecord is the stored, write-side shape of a defence. Its related
// students, juries and invitees live in other records and are never written
// through it.
type DefenceRecord struct {
	Base
	SpecialiteID string  `json:"specialite_id"`
	ClassroomID  *string `json:"classroom_id"`
	Date         string  `json:"date"`
	Hour         string  `json:"hour"`
	ProjectLabel string  `json:"pfe"`
	// Status is CompositionPartial when some composition step failed and the
	// defence was kept anyway.
	Status CompositionStatus `json:"status"`
}

// CompositionStatus tells whether every record a defence was composed from
// got attached.
type CompositionStatus string

const (
	CompositionComplete CompositionStatus = "complete"
	CompositionPartial  CompositionStatus = "partial"
)

// Valid reports whether s is a known status.
func (s CompositionStatus) Valid() bool {
	return s == CompositionComplete || s == CompositionPartial
}

// DefenceDraft carries the fields supplied when creating a defence.
type DefenceDraft struct {
	SpecialiteID string  `json:"specialite_id"`
	ClassroomID  *string `json:"classroom_id"`
	Date         string  `json:"date"`
	Hour         string  `json:"hour"`
	ProjectLabel string  `json:"pfe"`
}

// Record converts the draft into an unsaved defence record.
func (d DefenceDraft) Record() DefenceRecord {
	return DefenceRecord{
		SpecialiteID: d.SpecialiteID,
		ClassroomID:  d.ClassroomID,
		Date:         d.Date,
		Hour:         d.Hour,
		ProjectLabel: d.ProjectLabel,
	}
}

// JuryAssignment links a jury member to a defence with a role. The pair
// (JuryID, DefenceID) is unique.
type JuryAssignment struct {
	JuryID    string    `json:"jury_id"`
	DefenceID string    `json:"soutenance_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteeAssignment links an invitee to a defence. The pair
// (InviteeID, DefenceID) is unique.
type InviteeAssignment struct {
	InviteeID string    `json:"invite_id"`
	DefenceID string    `json:"soutenance_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
