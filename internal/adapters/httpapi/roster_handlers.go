package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"soutenancecore/internal/console"
)

func (s *server) rosterRoutes(api fiber.Router) {
	api.Get("/classrooms", s.listClassrooms)
	api.Post("/classrooms", s.createClassroom)
	api.Put("/classrooms/:id", s.updateClassroom)
	api.Delete("/classrooms", s.deleteRoster(console.KindClassrooms))

	api.Get("/juries", s.listJuries)
	api.Post("/juries", s.createJury)
	api.Put("/juries/:id", s.updateJury)
	api.Delete("/juries", s.deleteRoster(console.KindJuries))

	api.Get("/invitees", s.listInvitees)
	api.Post("/invitees", s.createInvitee)
	api.Put("/invitees/:id", s.updateInvitee)
	api.Delete("/invitees", s.deleteRoster(console.KindInvitees))

	api.Get("/specialites/:id/students", s.listStudents)
	api.Post("/specialites/:id/students", s.createStudent)
	api.Put("/specialites/:id/students/:studentID", s.updateStudent)
	api.Delete("/specialites/:id/students", s.deleteRoster(console.KindStudents))
}

// roster builds a request-scoped roster. Classroom, jury and invitee lists
// are global, so their roster carries no track.
func (s *server) roster(specialiteID string, n console.Notifier) *console.Roster {
	opts := s.options(n)
	return console.NewRoster(s.backend, console.NewReferenceStore(s.backend, specialiteID, opts...), opts...)
}

// written answers a create or update. A failed reload after a successful
// write is logged and does not fail the request.
func (s *server) written(c *fiber.Ctx, code int, message, id string, data any, err error) error {
	if err != nil && id == "" {
		return respondError(c, err)
	}
	if err != nil {
		s.logger.Error("reload after write failed", "id", id, "error", err)
	}
	return SuccessWithCode(c, code, message, data)
}

func bind[T any](c *fiber.Ctx) (T, error) {
	var in T
	if err := c.BodyParser(&in); err != nil {
		return in, fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	return in, nil
}

func (s *server) listClassrooms(c *fiber.Ctx) error {
	list, err := s.backend.ListClassrooms(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return Success(c, "Classrooms loaded", list)
}

func (s *server) createClassroom(c *fiber.Ctx) error {
	in, err := bind[console.ClassroomInput](c)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := s.roster("", &noticeLog{}).CreateClassroom(c.UserContext(), in)
	return s.written(c, fiber.StatusCreated, "Classroom created", rec.ID, rec, err)
}

func (s *server) updateClassroom(c *fiber.Ctx) error {
	in, err := bind[console.ClassroomInput](c)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := s.roster("", &noticeLog{}).UpdateClassroom(c.UserContext(), c.Params("id"), in)
	return s.written(c, fiber.StatusOK, "Classroom updated", rec.ID, rec, err)
}

func (s *server) listJuries(c *fiber.Ctx) error {
	list, err := s.backend.ListJuries(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return Success(c, "Juries loaded", list)
}

func (s *server) createJury(c *fiber.Ctx) error {
	in, err := bind[console.PersonInput](c)
	if err != nil {
		return respondError(c, err)
	}
	notices := &noticeLog{}
	rec, err := s.roster("", notices).CreateJury(c.UserContext(), in)
	return s.conflictAware(c, notices, fiber.StatusCreated, "Jury created", rec.ID, rec, err)
}

func (s *server) updateJury(c *fiber.Ctx) error {
	in, err := bind[console.PersonInput](c)
	if err != nil {
		return respondError(c, err)
	}
	notices := &noticeLog{}
	rec, err := s.roster("", notices).UpdateJury(c.UserContext(), c.Params("id"), in)
	return s.conflictAware(c, notices, fiber.StatusOK, "Jury updated", rec.ID, rec, err)
}

func (s *server) listInvitees(c *fiber.Ctx) error {
	list, err := s.backend.ListInvitees(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return Success(c, "Invitees loaded", list)
}

func (s *server) createInvitee(c *fiber.Ctx) error {
	in, err := bind[console.PersonInput](c)
	if err != nil {
		return respondError(c, err)
	}
	notices := &noticeLog{}
	rec, err := s.roster("", notices).CreateInvitee(c.UserContext(), in)
	return s.conflictAware(c, notices, fiber.StatusCreated, "Invitee created", rec.ID, rec, err)
}

func (s *server) updateInvitee(c *fiber.Ctx) error {
	in, err := bind[console.PersonInput](c)
	if err != nil {
		return respondError(c, err)
	}
	notices := &noticeLog{}
	rec, err := s.roster("", notices).UpdateInvitee(c.UserContext(), c.Params("id"), in)
	return s.conflictAware(c, notices, fiber.StatusOK, "Invitee updated", rec.ID, rec, err)
}

// conflictAware answers with the user-facing duplicate email notice on 409.
func (s *server) conflictAware(c *fiber.Ctx, notices *noticeLog, code int, message, id string, data any, err error) error {
	if err != nil && id == "" && StatusOf(err) == fiber.StatusConflict {
		return Error(c, fiber.StatusConflict, notices.message(err.Error()))
	}
	return s.written(c, code, message, id, data, err)
}

func (s *server) requireSpecialite(ctx context.Context, id string) error {
	_, err := s.backend.GetSpecialite(ctx, id)
	return err
}

func (s *server) listStudents(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.requireSpecialite(ctx, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	list, err := s.backend.ListSpecialiteStudents(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return Success(c, "Students loaded", list)
}

func (s *server) createStudent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.requireSpecialite(ctx, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	in, err := bind[console.StudentInput](c)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := s.roster(c.Params("id"), &noticeLog{}).CreateStudent(ctx, in)
	return s.written(c, fiber.StatusCreated, "Student created", rec.ID, rec, err)
}

func (s *server) updateStudent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.requireSpecialite(ctx, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	in, err := bind[console.StudentInput](c)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := s.roster(c.Params("id"), &noticeLog{}).UpdateStudent(ctx, c.Params("studentID"), in)
	return s.written(c, fiber.StatusOK, "Student updated", rec.ID, rec, err)
}

// deleteRoster selects the listed ids among the requested ones and deletes
// them in one bulk call. Unknown ids are reported as skipped.
func (s *server) deleteRoster(kind console.RosterKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		specialiteID := ""
		if kind == console.KindStudents {
			specialiteID = c.Params("id")
			if err := s.requireSpecialite(ctx, specialiteID); err != nil {
				return respondError(c, err)
			}
		}
		ids, err := parseIDs(c)
		if err != nil {
			return respondError(c, err)
		}
		notices := &noticeLog{}
		roster := s.roster(specialiteID, notices)
		if err := roster.Reload(ctx, kind); err != nil {
			return respondError(c, err)
		}
		skipped, err := roster.Select(kind, ids)
		if err != nil {
			return respondError(c, err)
		}
		deleted, err := roster.DeleteSelected(ctx, kind)
		switch {
		case errors.Is(err, console.ErrEmptySelection):
			return Error(c, fiber.StatusBadRequest, notices.message(err.Error()))
		case err != nil && deleted == nil:
			return respondError(c, err)
		case err != nil:
			s.logger.Error("reload after delete failed", "kind", string(kind), "error", err)
		}
		return Success(c, "Deleted", fiber.Map{"deleted": deleted, "skipped": nonNilIDs(skipped)})
	}
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
