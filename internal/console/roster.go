package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"soutenancecore/pkg/domain"
)

// RosterKind names one of the lists managed by a Roster.
type RosterKind string

const (
	KindClassrooms RosterKind = "classrooms"
	KindJuries     RosterKind = "juries"
	KindInvitees   RosterKind = "invitees"
	KindStudents   RosterKind = "students"
)

var (
	deletePrompts = map[RosterKind]string{
		KindClassrooms: "Voulez-vous vraiment supprimer les salles sélectionnés ?",
		KindJuries:     "Voulez-vous vraiment supprimer les jurys sélectionnés ?",
		KindInvitees:   "Voulez-vous vraiment supprimer les invites sélectionnés ?",
		KindStudents:   "Êtes-vous sûr de vouloir supprimer le(s) étudiant(s) sélectionné(s) ?",
	}
	duplicateNotices = map[domain.EntityType]string{
		domain.EntityJury:    "Un jury avec cet email existe déjà !",
		domain.EntityInvitee: "Un invite avec cet email existe déjà !",
	}
)

const (
	emptyRosterNotice  = "Veuillez sélectionner au moins un élément à supprimer."
	deleteFailedNotice = "Erreur lors de la suppression."
)

// ClassroomInput is the editable part of a classroom.
type ClassroomInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

// PersonInput is the editable part of a jury member or invitee.
type PersonInput struct {
	Firstname string `json:"firstname" validate:"required,max=120"`
	Lastname  string `json:"lastname" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
}

// StudentInput is the editable part of a student. On update a nil Address or
// SoutenanceID keeps the stored value and an empty SoutenanceID detaches the
// student from its defence.
type StudentInput struct {
	Firstname    string  `json:"firstname" validate:"required,max=120"`
	Lastname     string  `json:"lastname" validate:"required,max=120"`
	Address      *string `json:"address" validate:"omitempty,max=255"`
	SoutenanceID *string `json:"soutenance_id"`
}

// Roster manages the classrooms, juries, invitees and students of a track
// with the same select, bulk delete and reload-after-write pattern as the
// defence board.
type Roster struct {
	backend  RosterBackend
	refs     *ReferenceStore
	opts     options
	validate *validator.Validate

	mu         sync.Mutex
	selections map[RosterKind]*Selection[string]
}

// NewRoster builds a roster reading its lists through refs.
func NewRoster(backend RosterBackend, refs *ReferenceStore, opts ...Option) *Roster {
	return &Roster{
		backend:  backend,
		refs:     refs,
		opts:     buildOptions(opts),
		validate: newValidator(),
		selections: map[RosterKind]*Selection[string]{
			KindClassrooms: NewSelection[string](),
			KindJuries:     NewSelection[string](),
			KindInvitees:   NewSelection[string](),
			KindStudents:   NewSelection[string](),
		},
	}
}

// References returns the lists shown by the roster.
func (r *Roster) References() *References { return r.refs.Snapshot() }

// Load fetches every list.
func (r *Roster) Load(ctx context.Context) error {
	err := r.refs.Load(ctx)
	r.prune()
	return err
}

// Reload refreshes only the list of kind.
func (r *Roster) Reload(ctx context.Context, kind RosterKind) error {
	if _, err := r.selectionLocked(kind); err != nil {
		return err
	}
	return r.after(ctx, kind)
}

// Toggle flips the selection of a listed id.
func (r *Roster) Toggle(kind RosterKind, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, err := r.selection(kind)
	if err != nil {
		return false, err
	}
	if _, ok := r.listed(kind)[id]; !ok {
		return false, nil
	}
	return sel.Toggle(id), nil
}

// SelectAll selects every listed id of kind.
func (r *Roster) SelectAll(kind RosterKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, err := r.selection(kind)
	if err != nil {
		return err
	}
	sel.SelectAll(r.ids(kind))
	return nil
}

// Select replaces the selection of kind with the listed ids among ids and
// returns the ids it skipped.
func (r *Roster) Select(kind RosterKind, ids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, err := r.selection(kind)
	if err != nil {
		return nil, err
	}
	listed := r.listed(kind)
	keep := make([]string, 0, len(ids))
	var skipped []string
	for _, id := range ids {
		if _, ok := listed[id]; ok {
			keep = append(keep, id)
		} else {
			skipped = append(skipped, id)
		}
	}
	sel.SelectAll(keep)
	return skipped, nil
}

// ClearSelection deselects everything of kind.
func (r *Roster) ClearSelection(kind RosterKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sel, err := r.selection(kind); err == nil {
		sel.Clear()
	}
}

// Selected returns the selected ids of kind.
func (r *Roster) Selected(kind RosterKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, err := r.selection(kind)
	if err != nil {
		return nil
	}
	return sel.IDs()
}

// CreateClassroom adds a classroom and reloads the classroom list.
func (r *Roster) CreateClassroom(ctx context.Context, in ClassroomInput) (domain.Classroom, error) {
	if err := r.check(in); err != nil {
		return domain.Classroom{}, err
	}
	created, err := r.backend.CreateClassroom(ctx, domain.Classroom{Name: strings.TrimSpace(in.Name)})
	if err != nil {
		return domain.Classroom{}, r.abandon(ctx, "create_classroom", "", err)
	}
	return created, r.after(ctx, KindClassrooms)
}

// UpdateClassroom renames a classroom and reloads the classroom list.
func (r *Roster) UpdateClassroom(ctx context.Context, id string, in ClassroomInput) (domain.Classroom, error) {
	if err := r.check(in); err != nil {
		return domain.Classroom{}, err
	}
	updated, err := r.backend.UpdateClassroom(ctx, domain.Classroom{Base: domain.Base{ID: id}, Name: strings.TrimSpace(in.Name)})
	if err != nil {
		return domain.Classroom{}, r.abandon(ctx, "update_classroom", id, err)
	}
	return updated, r.after(ctx, KindClassrooms)
}

// CreateJury adds a jury member. A taken email is reported to the user and
// returned as domain.ErrDuplicateEmail without reloading.
func (r *Roster) CreateJury(ctx context.Context, in PersonInput) (domain.Jury, error) {
	if err := r.check(in); err != nil {
		return domain.Jury{}, err
	}
	created, err := r.backend.CreateJury(ctx, domain.Jury{Firstname: in.Firstname, Lastname: in.Lastname, Email: in.Email})
	if err != nil {
		return domain.Jury{}, r.abandon(ctx, "create_jury", "", err)
	}
	return created, r.after(ctx, KindJuries)
}

// UpdateJury rewrites a jury member, with the same conflict handling as CreateJury.
func (r *Roster) UpdateJury(ctx context.Context, id string, in PersonInput) (domain.Jury, error) {
	if err := r.check(in); err != nil {
		return domain.Jury{}, err
	}
	updated, err := r.backend.UpdateJury(ctx, domain.Jury{Base: domain.Base{ID: id}, Firstname: in.Firstname, Lastname: in.Lastname, Email: in.Email})
	if err != nil {
		return domain.Jury{}, r.abandon(ctx, "update_jury", id, err)
	}
	return updated, r.after(ctx, KindJuries)
}

// CreateInvitee adds an invitee, with the same conflict handling as CreateJury.
func (r *Roster) CreateInvitee(ctx context.Context, in PersonInput) (domain.Invitee, error) {
	if err := r.check(in); err != nil {
		return domain.Invitee{}, err
	}
	created, err := r.backend.CreateInvitee(ctx, domain.Invitee{Firstname: in.Firstname, Lastname: in.Lastname, Email: in.Email})
	if err != nil {
		return domain.Invitee{}, r.abandon(ctx, "create_invitee", "", err)
	}
	return created, r.after(ctx, KindInvitees)
}

// UpdateInvitee rewrites an invitee, with the same conflict handling as CreateJury.
func (r *Roster) UpdateInvitee(ctx context.Context, id string, in PersonInput) (domain.Invitee, error) {
	if err := r.check(in); err != nil {
		return domain.Invitee{}, err
	}
	updated, err := r.backend.UpdateInvitee(ctx, domain.Invitee{Base: domain.Base{ID: id}, Firstname: in.Firstname, Lastname: in.Lastname, Email: in.Email})
	if err != nil {
		return domain.Invitee{}, r.abandon(ctx, "update_invitee", id, err)
	}
	return updated, r.after(ctx, KindInvitees)
}

// CreateStudent adds a student to the roster's track.
func (r *Roster) CreateStudent(ctx context.Context, in StudentInput) (domain.Student, error) {
	if err := r.check(in); err != nil {
		return domain.Student{}, err
	}
	created, err := r.backend.CreateStudent(ctx, r.student("", in))
	if err != nil {
		return domain.Student{}, r.abandon(ctx, "create_student", "", err)
	}
	return created, r.after(ctx, KindStudents)
}

// UpdateStudent applies in to a student of the roster's track. The student is
// looked up in a fresh copy of the track's list; ids outside the track fail
// with domain.NotFoundError.
func (r *Roster) UpdateStudent(ctx context.Context, id string, in StudentInput) (domain.Student, error) {
	if err := r.check(in); err != nil {
		return domain.Student{}, err
	}
	if err := r.refs.ReloadStudents(ctx); err != nil {
		return domain.Student{}, err
	}
	current, ok := findStudent(r.refs.Snapshot().Students, id)
	if !ok {
		return domain.Student{}, domain.NotFoundError{Entity: domain.EntityStudent, ID: id}
	}
	current.Firstname = in.Firstname
	current.Lastname = in.Lastname
	if in.Address != nil {
		current.Address = *in.Address
	}
	switch {
	case in.SoutenanceID == nil:
	case *in.SoutenanceID == "":
		current.SoutenanceID = nil
	default:
		defenceID := *in.SoutenanceID
		current.SoutenanceID = &defenceID
	}
	updated, err := r.backend.UpdateStudent(ctx, current)
	if err != nil {
		return domain.Student{}, r.abandon(ctx, "update_student", id, err)
	}
	return updated, r.after(ctx, KindStudents)
}

func (r *Roster) student(id string, in StudentInput) domain.Student {
	s := domain.Student{
		Base:         domain.Base{ID: id},
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		SpecialiteID: r.refs.SpecialiteID(),
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.SoutenanceID != nil && *in.SoutenanceID != "" {
		defenceID := *in.SoutenanceID
		s.SoutenanceID = &defenceID
	}
	return s
}

func findStudent(students []domain.Student, id string) (domain.Student, bool) {
	for _, s := range students {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Student{}, false
}

// DeleteSelected removes every selected id of kind in one bulk call. On
// success the selection is cleared and the list reloaded; on failure nothing
// is reloaded and the selection is kept.
func (r *Roster) DeleteSelected(ctx context.Context, kind RosterKind) ([]string, error) {
	if _, err := r.selectionLocked(kind); err != nil {
		return nil, err
	}
	ids := r.Selected(kind)
	if len(ids) == 0 {
		r.opts.notifier.Notify(ctx, NoticeWarning, emptyRosterNotice)
		return nil, ErrEmptySelection
	}
	if !r.opts.confirmer.Confirm(ctx, deletePrompts[kind]) {
		return nil, nil
	}
	var err error
	switch kind {
	case KindClassrooms:
		err = r.backend.DeleteClassrooms(ctx, ids)
	case KindJuries:
		err = r.backend.DeleteJuries(ctx, ids)
	case KindInvitees:
		err = r.backend.DeleteInvitees(ctx, ids)
	case KindStudents:
		err = r.backend.DeleteStudents(ctx, ids)
	}
	if err != nil {
		r.opts.logger.Error("roster delete failed", "kind", string(kind), "ids", strings.Join(ids, ","), "error", err)
		r.opts.notifier.Notify(ctx, NoticeError, deleteFailedNotice)
		return nil, fmt.Errorf("delete %s: %w", kind, err)
	}
	r.ClearSelection(kind)
	return ids, r.after(ctx, kind)
}

func (r *Roster) check(in any) error {
	if err := r.validate.Struct(in); err != nil {
		return asValidationError(err)
	}
	return nil
}

// abandon reports a failed single-record mutation. Duplicate emails get the
// dedicated notice; everything else is only logged.
func (r *Roster) abandon(ctx context.Context, op, id string, err error) error {
	var dup domain.DuplicateEmailError
	if errors.As(err, &dup) {
		if msg, ok := duplicateNotices[dup.Entity]; ok {
			r.opts.notifier.Notify(ctx, NoticeError, msg)
			return err
		}
	}
	if errors.Is(err, domain.ErrDuplicateEmail) {
		r.opts.notifier.Notify(ctx, NoticeError, "Cet email existe déjà !")
		return err
	}
	r.opts.logger.Error("roster operation failed", "operation", op, "id", id, "error", err)
	return err
}

func (r *Roster) after(ctx context.Context, kind RosterKind) error {
	var err error
	switch kind {
	case KindClassrooms:
		err = r.refs.ReloadClassrooms(ctx)
	case KindJuries:
		err = r.refs.ReloadJuries(ctx)
	case KindInvitees:
		err = r.refs.ReloadInvitees(ctx)
	case KindStudents:
		err = r.refs.ReloadStudents(ctx)
	}
	r.prune()
	return err
}

// prune drops selected ids that are no longer listed.
func (r *Roster) prune() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for kind, sel := range r.selections {
		listed := r.listed(kind)
		sel.Retain(func(id string) bool {
			_, ok := listed[id]
			return ok
		})
	}
}

func (r *Roster) selectionLocked(kind RosterKind) (*Selection[string], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection(kind)
}

func (r *Roster) selection(kind RosterKind) (*Selection[string], error) {
	sel, ok := r.selections[kind]
	if !ok {
		return nil, fmt.Errorf("unknown roster kind %q", kind)
	}
	return sel, nil
}

func (r *Roster) ids(kind RosterKind) []string {
	refs := r.refs.Snapshot()
	var ids []string
	switch kind {
	case KindClassrooms:
		for _, c := range refs.Classrooms {
			ids = append(ids, c.ID)
		}
	case KindJuries:
		for _, j := range refs.Juries {
			ids = append(ids, j.ID)
		}
	case KindInvitees:
		for _, i := range refs.Invitees {
			ids = append(ids, i.ID)
		}
	case KindStudents:
		for _, s := range refs.Students {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func (r *Roster) listed(kind RosterKind) map[string]struct{} {
	ids := r.ids(kind)
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
