package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateSpecialite(Specialite) (Specialite, error)
	CreateClassroom(Classroom) (Classroom, error)
	UpdateClassroom(id string, mutator func(*Classroom) error) (Classroom, error)
	DeleteClassroom(id string) error
	CreateJury(Jury) (Jury, error)
	UpdateJury(id string, mutator func(*Jury) error) (Jury, error)
	DeleteJury(id string) error
	CreateInvitee(Invitee) (Invitee, error)
	UpdateInvitee(id string, mutator func(*Invitee) error) (Invitee, error)
	DeleteInvitee(id string) error
	CreateStudent(Student) (Student, error)
	UpdateStudent(id string, mutator func(*Student) error) (Student, error)
	DeleteStudent(id string) error
	CreateDefence(DefenceRecord) (DefenceRecord, error)
	UpdateDefence(id string, mutator func(*DefenceRecord) error) (DefenceRecord, error)
	DeleteDefence(id string) error
	CreateJuryAssignment(JuryAssignment) (JuryAssignment, error)
	DeleteJuryAssignment(juryID, defenceID string) error
	CreateInviteeAssignment(InviteeAssignment) (InviteeAssignment, error)
	DeleteInviteeAssignment(inviteeID, defenceID string) error
}

// TransactionView provides read-only access to snapshot data for rules and queries.
// List methods return records in a stable order.
type TransactionView interface {
	ListSpecialites() []Specialite
	FindSpecialite(id string) (Specialite, bool)
	ListClassrooms() []Classroom
	FindClassroom(id string) (Classroom, bool)
	ListJuries() []Jury
	FindJury(id string) (Jury, bool)
	ListInvitees() []Invitee
	FindInvitee(id string) (Invitee, bool)
	ListStudents() []Student
	FindStudent(id string) (Student, bool)
	ListDefences() []DefenceRecord
	FindDefence(id string) (DefenceRecord, bool)
	ListJuryAssignments() []JuryAssignment
	ListInviteeAssignments() []InviteeAssignment
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
