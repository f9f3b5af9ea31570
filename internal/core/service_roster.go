package core

import (
	"context"
	"strings"

	"soutenancecore/pkg/domain"
)

// ListSpecialites returns every track ordered by name.
func (s *Service) ListSpecialites(ctx context.Context) ([]Specialite, error) {
	var out []Specialite
	err := s.view(ctx, "list_specialites", func(v TransactionView) error {
		out = v.ListSpecialites()
		return nil
	})
	return out, err
}

// GetSpecialite returns one track.
func (s *Service) GetSpecialite(ctx context.Context, id string) (Specialite, error) {
	var out Specialite
	err := s.view(ctx, "get_specialite", func(v TransactionView) error {
		sp, ok := v.FindSpecialite(id)
		if !ok {
			return domain.NotFoundError{Entity: EntitySpecialite, ID: id}
		}
		out = sp
		return nil
	})
	return out, err
}

// CreateSpecialite persists a new track.
func (s *Service) CreateSpecialite(ctx context.Context, sp Specialite) (Specialite, Result, error) {
	var created Specialite
	res, err := s.write(ctx, "create_specialite", func() string { return created.ID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateSpecialite(sp)
		return err
	})
	return created, res, err
}

// ListClassrooms returns every classroom.
func (s *Service) ListClassrooms(ctx context.Context) ([]Classroom, error) {
	var out []Classroom
	err := s.view(ctx, "list_classrooms", func(v TransactionView) error {
		out = v.ListClassrooms()
		return nil
	})
	return out, err
}

// CreateClassroom persists a new classroom.
func (s *Service) CreateClassroom(ctx context.Context, classroom Classroom) (Classroom, Result, error) {
	var created Classroom
	res, err := s.write(ctx, "create_classroom", func() string { return created.ID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateClassroom(classroom)
		return err
	})
	return created, res, err
}

// UpdateClassroom mutates a classroom.
func (s *Service) UpdateClassroom(ctx context.Context, id string, mutator func(*Classroom) error) (Classroom, Result, error) {
	var updated Classroom
	res, err := s.write(ctx, "update_classroom", func() string { return id }, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateClassroom(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteClassrooms removes the listed classrooms in one transaction.
func (s *Service) DeleteClassrooms(ctx context.Context, ids []string) (Result, error) {
	return s.write(ctx, "delete_classrooms", joinIDs(ids), func(tx Transaction) error {
		for _, id := range ids {
			if err := tx.DeleteClassroom(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListJuries returns every jury member.
func (s *Service) ListJuries(ctx context.Context) ([]Jury, error) {
	var out []Jury
	err := s.view(ctx, "list_juries", func(v TransactionView) error {
		out = v.ListJuries()
		return nil
	})
	return out, err
}

// CreateJury persists a jury member. A reused email fails with domain.ErrDuplicateEmail.
func (s *Service) CreateJury(ctx context.Context, jury Jury) (Jury, Result, error) {
	var created Jury
	res, err := s.write(ctx, "create_jury", func() string { return created.ID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateJury(jury)
		return err
	})
	return created, res, err
}

// UpdateJury mutates a jury member. A reused email fails with domain.ErrDuplicateEmail.
func (s *Service) UpdateJury(ctx context.Context, id string, mutator func(*Jury) error) (Jury, Result, error) {
	var updated Jury
	res, err := s.write(ctx, "update_jury", func() string { return id }, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateJury(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteJuries removes the listed jury members and their assignments.
func (s *Service) DeleteJuries(ctx context.Context, ids []string) (Result, error) {
	return s.write(ctx, "delete_juries", joinIDs(ids), func(tx Transaction) error {
		for _, id := range ids {
			if err := tx.DeleteJury(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListInvitees returns every invitee.
func (s *Service) ListInvitees(ctx context.Context) ([]Invitee, error) {
	var out []Invitee
	err := s.view(ctx, "list_invitees", func(v TransactionView) error {
		out = v.ListInvitees()
		return nil
	})
	return out, err
}

// CreateInvitee persists an invitee. A reused email fails with domain.ErrDuplicateEmail.
func (s *Service) CreateInvitee(ctx context.Context, invitee Invitee) (Invitee, Result, error) {
	var created Invitee
	res, err := s.write(ctx, "create_invitee", func() string { return created.ID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateInvitee(invitee)
		return err
	})
	return created, res, err
}

// UpdateInvitee mutates an invitee. A reused email fails with domain.ErrDuplicateEmail.
func (s *Service) UpdateInvitee(ctx context.Context, id string, mutator func(*Invitee) error) (Invitee, Result, error) {
	var updated Invitee
	res, err := s.write(ctx, "update_invitee", func() string { return id }, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateInvitee(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteInvitees removes the listed invitees and their assignments.
func (s *Service) DeleteInvitees(ctx context.Context, ids []string) (Result, error) {
	return s.write(ctx, "delete_invitees", joinIDs(ids), func(tx Transaction) error {
		for _, id := range ids {
			if err := tx.DeleteInvitee(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSpecialiteStudents returns the students of a track, assigned or not.
func (s *Service) ListSpecialiteStudents(ctx context.Context, specialiteID string) ([]Student, error) {
	var out []Student
	err := s.view(ctx, "list_specialite_students", func(v TransactionView) error {
		out = []Student{}
		for _, st := range v.ListStudents() {
			if st.SpecialiteID == specialiteID {
				out = append(out, st)
			}
		}
		return nil
	})
	return out, err
}

// GetStudent returns one student.
func (s *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	var out Student
	err := s.view(ctx, "get_student", func(v TransactionView) error {
		st, ok := v.FindStudent(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityStudent, ID: id}
		}
		out = st
		return nil
	})
	return out, err
}

// CreateStudent persists a student.
func (s *Service) CreateStudent(ctx context.Context, student Student) (Student, Result, error) {
	var created Student
	res, err := s.write(ctx, "create_student", func() string { return created.ID }, func(tx Transaction) error {
		var err error
		created, err = tx.CreateStudent(student)
		return err
	})
	return created, res, err
}

// UpdateStudent mutates a student. Setting SoutenanceID moves the student to
// that defence, replacing any previous assignment.
func (s *Service) UpdateStudent(ctx context.Context, id string, mutator func(*Student) error) (Student, Result, error) {
	var updated Student
	res, err := s.write(ctx, "update_student", func() string { return id }, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateStudent(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteStudents removes the listed students.
func (s *Service) DeleteStudents(ctx context.Context, ids []string) (Result, error) {
	return s.write(ctx, "delete_students", joinIDs(ids), func(tx Transaction) error {
		for _, id := range ids {
			if err := tx.DeleteStudent(id); err != nil {
				return err
			}
		}
		return nil
	})
}

func joinIDs(ids []string) func() string {
	return func() string { return strings.Join(ids, ",") }
}
