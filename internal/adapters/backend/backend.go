// Package backend exposes core.Service through the request/response contract
// consumed by the console workflows.
package backend

import (
	"context"

	"soutenancecore/internal/console"
	"soutenancecore/internal/core"
	"soutenancecore/pkg/domain"
)

var _ console.Backend = (*Adapter)(nil)

// Adapter turns core.Service operations into console.Backend calls. Rule
// results are dropped here; warnings are already logged by the service.
type Adapter struct {
	svc *core.Service
}

// New wraps svc.
func New(svc *core.Service) *Adapter {
	return &Adapter{svc: svc}
}

// ListSpecialites returns every track.
func (a *Adapter) ListSpecialites(ctx context.Context) ([]domain.Specialite, error) {
	return a.svc.ListSpecialites(ctx)
}

// GetSpecialite returns one track.
func (a *Adapter) GetSpecialite(ctx context.Context, id string) (domain.Specialite, error) {
	return a.svc.GetSpecialite(ctx, id)
}

// ListClassrooms returns every classroom.
func (a *Adapter) ListClassrooms(ctx context.Context) ([]domain.Classroom, error) {
	return a.svc.ListClassrooms(ctx)
}

// ListJuries returns every jury member.
func (a *Adapter) ListJuries(ctx context.Context) ([]domain.Jury, error) {
	return a.svc.ListJuries(ctx)
}

// ListInvitees returns every invitee.
func (a *Adapter) ListInvitees(ctx context.Context) ([]domain.Invitee, error) {
	return a.svc.ListInvitees(ctx)
}

// ListSpecialiteStudents returns the students of a track.
func (a *Adapter) ListSpecialiteStudents(ctx context.Context, specialiteID string) ([]domain.Student, error) {
	return a.svc.ListSpecialiteStudents(ctx, specialiteID)
}

// ListSpecialiteDefences returns the projected defences of a track.
func (a *Adapter) ListSpecialiteDefences(ctx context.Context, specialiteID string) ([]domain.Defence, error) {
	return a.svc.ListSpecialiteDefences(ctx, specialiteID)
}

// CreateDefence stores the draft and returns its projection.
func (a *Adapter) CreateDefence(ctx context.Context, draft domain.DefenceDraft) (domain.Defence, error) {
	d, _, err := a.svc.CreateDefence(ctx, draft)
	return d, err
}

// DeleteDefence removes a defence and detaches its students.
func (a *Adapter) DeleteDefence(ctx context.Context, id string) error {
	_, err := a.svc.DeleteDefence(ctx, id)
	return err
}

// SetDefenceStatus records the composition status of a defence.
func (a *Adapter) SetDefenceStatus(ctx context.Context, id string, status domain.CompositionStatus) error {
	_, _, err := a.svc.SetDefenceStatus(ctx, id, status)
	return err
}

// UpdateStudent replaces every editable field with the supplied values.
func (a *Adapter) UpdateStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	updated, _, err := a.svc.UpdateStudent(ctx, student.ID, func(s *domain.Student) error {
		s.Firstname = student.Firstname
		s.Lastname = student.Lastname
		s.Address = student.Address
		s.SpecialiteID = student.SpecialiteID
		s.SoutenanceID = student.SoutenanceID
		return nil
	})
	return updated, err
}

// CreateJuryAssignment links a jury member to a defence.
func (a *Adapter) CreateJuryAssignment(ctx context.Context, link domain.JuryAssignment) error {
	_, _, err := a.svc.CreateJuryAssignment(ctx, link)
	return err
}

// CreateInviteeAssignment links an invitee to a defence.
func (a *Adapter) CreateInviteeAssignment(ctx context.Context, link domain.InviteeAssignment) error {
	_, _, err := a.svc.CreateInviteeAssignment(ctx, link)
	return err
}

// CreateClassroom adds a classroom.
func (a *Adapter) CreateClassroom(ctx context.Context, classroom domain.Classroom) (domain.Classroom, error) {
	c, _, err := a.svc.CreateClassroom(ctx, classroom)
	return c, err
}

// UpdateClassroom renames a classroom.
func (a *Adapter) UpdateClassroom(ctx context.Context, classroom domain.Classroom) (domain.Classroom, error) {
	c, _, err := a.svc.UpdateClassroom(ctx, classroom.ID, func(c *domain.Classroom) error {
		c.Name = classroom.Name
		return nil
	})
	return c, err
}

// DeleteClassrooms removes every listed classroom or none.
func (a *Adapter) DeleteClassrooms(ctx context.Context, ids []string) error {
	_, err := a.svc.DeleteClassrooms(ctx, ids)
	return err
}

// CreateJury adds a jury member.
func (a *Adapter) CreateJury(ctx context.Context, jury domain.Jury) (domain.Jury, error) {
	j, _, err := a.svc.CreateJury(ctx, jury)
	return j, err
}

// UpdateJury replaces the name and email of a jury member.
func (a *Adapter) UpdateJury(ctx context.Context, jury domain.Jury) (domain.Jury, error) {
	j, _, err := a.svc.UpdateJury(ctx, jury.ID, func(j *domain.Jury) error {
		j.Firstname = jury.Firstname
		j.Lastname = jury.Lastname
		j.Email = jury.Email
		return nil
	})
	return j, err
}

// DeleteJuries removes every listed jury member or none.
func (a *Adapter) DeleteJuries(ctx context.Context, ids []string) error {
	_, err := a.svc.DeleteJuries(ctx, ids)
	return err
}

// CreateInvitee adds an invitee.
func (a *Adapter) CreateInvitee(ctx context.Context, invitee domain.Invitee) (domain.Invitee, error) {
	i, _, err := a.svc.CreateInvitee(ctx, invitee)
	return i, err
}

// UpdateInvitee replaces the name and email of an invitee.
func (a *Adapter) UpdateInvitee(ctx context.Context, invitee domain.Invitee) (domain.Invitee, error) {
	i, _, err := a.svc.UpdateInvitee(ctx, invitee.ID, func(i *domain.Invitee) error {
		i.Firstname = invitee.Firstname
		i.Lastname = invitee.Lastname
		i.Email = invitee.Email
		return nil
	})
	return i, err
}

// DeleteInvitees removes every listed invitee or none.
func (a *Adapter) DeleteInvitees(ctx context.Context, ids []string) error {
	_, err := a.svc.DeleteInvitees(ctx, ids)
	return err
}

// CreateStudent adds a student.
func (a *Adapter) CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	s, _, err := a.svc.CreateStudent(ctx, student)
	return s, err
}

// DeleteStudents removes every listed student or none.
func (a *Adapter) DeleteStudents(ctx context.Context, ids []string) error {
	_, err := a.svc.DeleteStudents(ctx, ids)
	return err
}
