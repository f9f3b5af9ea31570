package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"soutenancecore/pkg/domain"
)

// References is an immutable snapshot of the lists a scheduling view picks
// from. A new snapshot replaces the previous one wholesale.
type References struct {
	Specialite domain.Specialite
	Classrooms []domain.Classroom
	Juries     []domain.Jury
	Invitees   []domain.Invitee
	Students   []domain.Student
}

// PickStudents resolves ids against the loaded students.
func (r *References) PickStudents(ids []string) ([]domain.Student, error) {
	return pick(r.Students, ids, domain.EntityStudent, func(s domain.Student) string { return s.ID })
}

// PickJuries resolves ids against the loaded juries.
func (r *References) PickJuries(ids []string) ([]domain.Jury, error) {
	return pick(r.Juries, ids, domain.EntityJury, func(j domain.Jury) string { return j.ID })
}

// PickInvitees resolves ids against the loaded invitees.
func (r *References) PickInvitees(ids []string) ([]domain.Invitee, error) {
	return pick(r.Invitees, ids, domain.EntityInvitee, func(i domain.Invitee) string { return i.ID })
}

// HasClassroom reports whether id names a loaded classroom.
func (r *References) HasClassroom(id string) bool {
	for _, c := range r.Classrooms {
		if c.ID == id {
			return true
		}
	}
	return false
}

func pick[T any](items []T, ids []string, entity domain.EntityType, key func(T) string) ([]T, error) {
	index := make(map[string]T, len(items))
	for _, item := range items {
		index[key(item)] = item
	}
	out := make([]T, 0, len(ids))
	var errs []error
	for _, id := range ids {
		item, ok := index[id]
		if !ok {
			errs = append(errs, domain.NotFoundError{Entity: entity, ID: id})
			continue
		}
		out = append(out, item)
	}
	return out, errors.Join(errs...)
}

// ReferenceStore is a read-through cache of the reference lists for one track.
type ReferenceStore struct {
	source       ReferenceSource
	specialiteID string
	logger       Logger
	// reloads are serialised so a slow fetch cannot overwrite a newer one
	mu      sync.Mutex
	current atomic.Pointer[References]
}

// NewReferenceStore builds an empty store for the given track.
func NewReferenceStore(source ReferenceSource, specialiteID string, opts ...Option) *ReferenceStore {
	o := buildOptions(opts)
	s := &ReferenceStore{source: source, specialiteID: specialiteID, logger: o.logger}
	s.current.Store(&References{
		Specialite: domain.Specialite{Base: domain.Base{ID: specialiteID}},
		Classrooms: []domain.Classroom{},
		Juries:     []domain.Jury{},
		Invitees:   []domain.Invitee{},
		Students:   []domain.Student{},
	})
	return s
}

// SpecialiteID returns the track the store is scoped to.
func (s *ReferenceStore) SpecialiteID() string { return s.specialiteID }

// Snapshot returns the current references. Callers must not modify it.
func (s *ReferenceStore) Snapshot() *References {
	return s.current.Load()
}

// Load fetches the track and each list independently. A failed fetch leaves
// that part at its last-known value; the failures are returned joined.
func (s *ReferenceStore) Load(ctx context.Context) error {
	return s.refresh(ctx, refTrack, refClassrooms, refJuries, refInvitees, refStudents)
}

// ReloadStudents refreshes only the students of the track.
func (s *ReferenceStore) ReloadStudents(ctx context.Context) error {
	return s.refresh(ctx, refStudents)
}

// ReloadClassrooms refreshes only the classrooms.
func (s *ReferenceStore) ReloadClassrooms(ctx context.Context) error {
	return s.refresh(ctx, refClassrooms)
}

// ReloadJuries refreshes only the juries.
func (s *ReferenceStore) ReloadJuries(ctx context.Context) error {
	return s.refresh(ctx, refJuries)
}

// ReloadInvitees refreshes only the invitees.
func (s *ReferenceStore) ReloadInvitees(ctx context.Context) error {
	return s.refresh(ctx, refInvitees)
}

type refPart string

const (
	refTrack      refPart = "specialite"
	refClassrooms refPart = "classrooms"
	refJuries     refPart = "juries"
	refInvitees   refPart = "invitees"
	refStudents   refPart = "students"
)

func (s *ReferenceStore) refresh(ctx context.Context, parts ...refPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()
	var errs []error
	for _, part := range parts {
		if err := s.fetch(ctx, part, &next); err != nil {
			s.logger.Error("reference load failed", "collection", string(part), "specialite_id", s.specialiteID, "error", err)
			errs = append(errs, fmt.Errorf("load %s: %w", part, err))
		}
	}
	s.current.Store(&next)
	return errors.Join(errs...)
}

func (s *ReferenceStore) fetch(ctx context.Context, part refPart, into *References) error {
	switch part {
	case refTrack:
		sp, err := s.source.GetSpecialite(ctx, s.specialiteID)
		if err != nil {
			return err
		}
		into.Specialite = sp
	case refClassrooms:
		list, err := s.source.ListClassrooms(ctx)
		if err != nil {
			return err
		}
		into.Classrooms = nonNil(list)
	case refJuries:
		list, err := s.source.ListJuries(ctx)
		if err != nil {
			return err
		}
		into.Juries = nonNil(list)
	case refInvitees:
		list, err := s.source.ListInvitees(ctx)
		if err != nil {
			return err
		}
		into.Invitees = nonNil(list)
	case refStudents:
		list, err := s.source.ListSpecialiteStudents(ctx, s.specialiteID)
		if err != nil {
			return err
		}
		into.Students = nonNil(list)
	}
	return nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
