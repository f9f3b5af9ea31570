package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"soutenancecore/internal/console"
	"soutenancecore/internal/export"
	"soutenancecore/pkg/domain"
)

// composeBody names the people of a new defence by id; they are resolved
// against the track's reference lists before the workflow runs.
type composeBody struct {
	ClassroomID  string   `json:"classroom_id"`
	Date         string   `json:"date"`
	Hour         string   `json:"hour"`
	ProjectLabel string   `json:"pfe"`
	Students     []string `json:"students"`
	Juries       []string `json:"juries"`
	Invitees     []string `json:"invitees"`
}

type failureView struct {
	Step   console.Step `json:"step"`
	ItemID string       `json:"item_id"`
	Error  string       `json:"error"`
}

func failureViews(in []console.StepFailure) []failureView {
	out := make([]failureView, 0, len(in))
	for _, f := range in {
		out = append(out, failureView{Step: f.Step, ItemID: f.ItemID, Error: f.Err.Error()})
	}
	return out
}

func (s *server) board(c *fiber.Ctx, n console.Notifier) (*console.Board, error) {
	board := console.NewBoard(s.backend, c.Params("id"), s.options(n)...)
	if err := board.Mount(c.UserContext()); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *server) listDefences(c *fiber.Ctx) error {
	filter, err := console.ParseDefenceFilter(c.Query("date"), c.Query("classroom"))
	if err != nil {
		return respondError(c, err)
	}
	board, err := s.board(c, &noticeLog{})
	if err != nil {
		return respondError(c, err)
	}
	board.SetFilter(filter)
	return Success(c, "Defences loaded", fiber.Map{
		"specialite": board.References().Snapshot().Specialite,
		"filter":     board.Filter(),
		"total":      len(board.Defences()),
		"defences":   board.Visible(),
	})
}

func (s *server) composeDefence(c *fiber.Ctx) error {
	body, err := bind[composeBody](c)
	if err != nil {
		return respondError(c, err)
	}
	notices := &noticeLog{}
	board, err := s.board(c, notices)
	if err != nil {
		return respondError(c, err)
	}
	refs := board.References().Snapshot()
	if body.ClassroomID != "" && !refs.HasClassroom(body.ClassroomID) {
		return respondError(c, domain.NotFoundError{Entity: domain.EntityClassroom, ID: body.ClassroomID})
	}
	students, err := refs.PickStudents(body.Students)
	if err != nil {
		return respondError(c, err)
	}
	juries, err := refs.PickJuries(body.Juries)
	if err != nil {
		return respondError(c, err)
	}
	invitees, err := refs.PickInvitees(body.Invitees)
	if err != nil {
		return respondError(c, err)
	}

	out, err := board.Compose(c.UserContext(), console.CompositionRequest{
		ClassroomID:  body.ClassroomID,
		Date:         body.Date,
		Hour:         body.Hour,
		ProjectLabel: body.ProjectLabel,
		Students:     students,
		Juries:       juries,
		Invitees:     invitees,
	})
	data := fiber.Map{
		"outcome":  out,
		"failures": failureViews(out.Failures),
		"notices":  notices.list(),
	}
	switch {
	case errors.Is(err, console.ErrPartialComposition):
		s.logger.Info("defence composed partially", "defence_id", out.Defence.ID, "failures", len(out.Failures))
		return SuccessWithCode(c, fiber.StatusMultiStatus, notices.message("Partial composition"), data)
	case err != nil && out.Defence.ID == "":
		return respondError(c, err)
	case err != nil:
		s.logger.Error("reload after composition failed", "defence_id", out.Defence.ID, "error", err)
	}
	return SuccessWithCode(c, fiber.StatusCreated, "Defence created", data)
}

func (s *server) deleteDefences(c *fiber.Ctx) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(c, err)
	}
	notices := &noticeLog{}
	board, err := s.board(c, notices)
	if err != nil {
		return respondError(c, err)
	}
	skipped := board.SelectDefences(ids)
	out, err := board.DeleteSelected(c.UserContext())
	if errors.Is(err, console.ErrEmptySelection) {
		return Error(c, fiber.StatusBadRequest, notices.message(err.Error()))
	}
	data := fiber.Map{
		"outcome":  out,
		"skipped":  nonNilIDs(skipped),
		"failures": failureViews(out.Failures),
		"notices":  notices.list(),
	}
	switch {
	case errors.Is(err, console.ErrPartialDeletion):
		return SuccessWithCode(c, fiber.StatusMultiStatus, notices.message("Partial deletion"), data)
	case err != nil:
		s.logger.Error("reload after deletion failed", "specialite_id", board.SpecialiteID(), "error", err)
	}
	return Success(c, "Defences deleted", data)
}

type exportBody struct {
	Formats   []export.Format `json:"formats"`
	Format    export.Format   `json:"format"`
	Date      string          `json:"date"`
	Classroom string          `json:"classroom"`
}

func (s *server) createExport(c *fiber.Ctx) error {
	if s.exports == nil {
		return Error(c, fiber.StatusNotImplemented, "exports are not configured")
	}
	body, err := bind[exportBody](c)
	if err != nil {
		return respondError(c, err)
	}
	filter, err := console.ParseDefenceFilter(body.Date, body.Classroom)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.requireSpecialite(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	formats := body.Formats
	if body.Format != "" {
		formats = append(formats, body.Format)
	}
	rec, err := s.exports.Enqueue(c.UserContext(), export.Request{
		SpecialiteID: c.Params("id"),
		Formats:      formats,
		Filter:       filter,
	})
	if err != nil {
		return respondError(c, err)
	}
	return SuccessWithCode(c, fiber.StatusAccepted, "Export queued", rec)
}

func (s *server) getExport(c *fiber.Ctx) error {
	if s.exports == nil {
		return Error(c, fiber.StatusNotImplemented, "exports are not configured")
	}
	rec, ok := s.exports.Get(c.Params("id"))
	if !ok {
		return Error(c, fiber.StatusNotFound, "export not found")
	}
	return Success(c, "Export loaded", rec)
}
