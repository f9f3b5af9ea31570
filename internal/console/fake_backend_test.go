package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"soutenancecore/pkg/domain"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend keeps records in maps and derives defences the way the real
// backend does. fail lists call names (optionally suffixed with ":id") that
// must fail.
type fakeBackend struct {
	mu         sync.Mutex
	seq        int
	specialite domain.Specialite
	classrooms map[string]domain.Classroom
	juries     map[string]domain.Jury
	invitees   map[string]domain.Invitee
	students   map[string]domain.Student
	defences   map[string]domain.DefenceRecord
	juryLinks  []domain.JuryAssignment
	guestLinks []domain.InviteeAssignment
	fail       map[string]bool
	calls      []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		specialite: domain.Specialite{Base: domain.Base{ID: "sp1"}, Name: "Génie Civil"},
		classrooms: map[string]domain.Classroom{},
		juries:     map[string]domain.Jury{},
		invitees:   map[string]domain.Invitee{},
		students:   map[string]domain.Student{},
		defences:   map[string]domain.DefenceRecord{},
		fail:       map[string]bool{},
	}
}

func (f *fakeBackend) call(name, id string) error {
	f.calls = append(f.calls, name)
	if f.fail[name] || (id != "" && f.fail[name+":"+id]) {
		return fmt.Errorf("%s: %w", name, errBackend)
	}
	return nil
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func sortedValues[T any](m map[string]T, id func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

func (f *fakeBackend) addClassroom(id, name string) domain.Classroom {
	c := domain.Classroom{Base: domain.Base{ID: id}, Name: name}
	f.classrooms[id] = c
	return c
}

func (f *fakeBackend) addJury(id, email string) domain.Jury {
	j := domain.Jury{Base: domain.Base{ID: id}, Firstname: "J", Lastname: id, Email: email}
	f.juries[id] = j
	return j
}

func (f *fakeBackend) addInvitee(id, email string) domain.Invitee {
	i := domain.Invitee{Base: domain.Base{ID: id}, Firstname: "I", Lastname: id, Email: email}
	f.invitees[id] = i
	return i
}

func (f *fakeBackend) addStudent(id string) domain.Student {
	s := domain.Student{Base: domain.Base{ID: id}, Firstname: "S", Lastname: id, Address: "addr " + id, SpecialiteID: f.specialite.ID}
	f.students[id] = s
	return s
}

func (f *fakeBackend) addDefence(id, date, classroomID string) {
	rec := domain.DefenceRecord{Base: domain.Base{ID: id}, SpecialiteID: f.specialite.ID, Date: date}
	if classroomID != "" {
		rec.ClassroomID = &classroomID
	}
	f.defences[id] = rec
}

func (f *fakeBackend) GetSpecialite(_ context.Context, id string) (domain.Specialite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("get_specialite", id); err != nil {
		return domain.Specialite{}, err
	}
	if id != f.specialite.ID {
		return domain.Specialite{}, domain.NotFoundError{Entity: domain.EntitySpecialite, ID: id}
	}
	return f.specialite, nil
}

func (f *fakeBackend) ListClassrooms(context.Context) ([]domain.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_classrooms", ""); err != nil {
		return nil, err
	}
	return sortedValues(f.classrooms, func(c domain.Classroom) string { return c.ID }), nil
}

func (f *fakeBackend) ListJuries(context.Context) ([]domain.Jury, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_juries", ""); err != nil {
		return nil, err
	}
	return sortedValues(f.juries, func(j domain.Jury) string { return j.ID }), nil
}

func (f *fakeBackend) ListInvitees(context.Context) ([]domain.Invitee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_invitees", ""); err != nil {
		return nil, err
	}
	return sortedValues(f.invitees, func(i domain.Invitee) string { return i.ID }), nil
}

func (f *fakeBackend) ListSpecialiteStudents(_ context.Context, specialiteID string) ([]domain.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_students", ""); err != nil {
		return nil, err
	}
	var out []domain.Student
	for _, s := range sortedValues(f.students, func(s domain.Student) string { return s.ID }) {
		if s.SpecialiteID == specialiteID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListSpecialiteDefences(_ context.Context, specialiteID string) ([]domain.Defence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_defences", ""); err != nil {
		return nil, err
	}
	var out []domain.Defence
	for _, rec := range sortedValues(f.defences, func(d domain.DefenceRecord) string { return d.ID }) {
		if rec.SpecialiteID == specialiteID {
			out = append(out, f.project(rec))
		}
	}
	return out, nil
}

func (f *fakeBackend) project(rec domain.DefenceRecord) domain.Defence {
	d := domain.Defence{DefenceRecord: rec, Students: []domain.Student{}, Juries: []domain.JuryMember{}, Invitees: []domain.Invitee{}}
	if rec.ClassroomID != nil {
		if c, ok := f.classrooms[*rec.ClassroomID]; ok {
			d.Classroom = &c
		}
	}
	for _, s := range sortedValues(f.students, func(s domain.Student) string { return s.ID }) {
		if s.SoutenanceID != nil && *s.SoutenanceID == rec.ID {
			d.Students = append(d.Students, s)
		}
	}
	for _, l := range f.juryLinks {
		if l.DefenceID == rec.ID {
			d.Juries = append(d.Juries, domain.JuryMember{Jury: f.juries[l.JuryID], Role: l.Role})
		}
	}
	for _, l := range f.guestLinks {
		if l.DefenceID == rec.ID {
			d.Invitees = append(d.Invitees, f.invitees[l.InviteeID])
		}
	}
	return d
}

func (f *fakeBackend) CreateDefence(_ context.Context, draft domain.DefenceDraft) (domain.Defence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_defence", ""); err != nil {
		return domain.Defence{}, err
	}
	rec := draft.Record()
	rec.ID = f.nextID("d")
	rec.Status = domain.CompositionComplete
	f.defences[rec.ID] = rec
	return f.project(rec), nil
}

func (f *fakeBackend) DeleteDefence(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_defence", id); err != nil {
		return err
	}
	if _, ok := f.defences[id]; !ok {
		return domain.NotFoundError{Entity: domain.EntityDefence, ID: id}
	}
	delete(f.defences, id)
	for sid, s := range f.students {
		if s.SoutenanceID != nil && *s.SoutenanceID == id {
			s.SoutenanceID = nil
			f.students[sid] = s
		}
	}
	juryLinks := f.juryLinks[:0]
	for _, l := range f.juryLinks {
		if l.DefenceID != id {
			juryLinks = append(juryLinks, l)
		}
	}
	f.juryLinks = juryLinks
	guestLinks := f.guestLinks[:0]
	for _, l := range f.guestLinks {
		if l.DefenceID != id {
			guestLinks = append(guestLinks, l)
		}
	}
	f.guestLinks = guestLinks
	return nil
}

func (f *fakeBackend) SetDefenceStatus(_ context.Context, id string, status domain.CompositionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("set_defence_status", id); err != nil {
		return err
	}
	rec, ok := f.defences[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityDefence, ID: id}
	}
	rec.Status = status
	f.defences[id] = rec
	return nil
}

func (f *fakeBackend) UpdateStudent(_ context.Context, s domain.Student) (domain.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_student", s.ID); err != nil {
		return domain.Student{}, err
	}
	if _, ok := f.students[s.ID]; !ok {
		return domain.Student{}, domain.NotFoundError{Entity: domain.EntityStudent, ID: s.ID}
	}
	f.students[s.ID] = s
	return s, nil
}

func (f *fakeBackend) CreateJuryAssignment(_ context.Context, link domain.JuryAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_jury_assignment", link.JuryID); err != nil {
		return err
	}
	f.juryLinks = append(f.juryLinks, link)
	return nil
}

func (f *fakeBackend) CreateInviteeAssignment(_ context.Context, link domain.InviteeAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_invitee_assignment", link.InviteeID); err != nil {
		return err
	}
	f.guestLinks = append(f.guestLinks, link)
	return nil
}

func (f *fakeBackend) CreateClassroom(_ context.Context, c domain.Classroom) (domain.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_classroom", ""); err != nil {
		return domain.Classroom{}, err
	}
	c.ID = f.nextID("c")
	f.classrooms[c.ID] = c
	return c, nil
}

func (f *fakeBackend) UpdateClassroom(_ context.Context, c domain.Classroom) (domain.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_classroom", c.ID); err != nil {
		return domain.Classroom{}, err
	}
	f.classrooms[c.ID] = c
	return c, nil
}

func (f *fakeBackend) DeleteClassrooms(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_classrooms", ""); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.classrooms, id)
	}
	return nil
}

func (f *fakeBackend) emailTaken(email, except string, juries bool) bool {
	if juries {
		for _, j := range f.juries {
			if j.ID != except && domain.NormalizeEmail(j.Email) == domain.NormalizeEmail(email) {
				return true
			}
		}
		return false
	}
	for _, i := range f.invitees {
		if i.ID != except && domain.NormalizeEmail(i.Email) == domain.NormalizeEmail(email) {
			return true
		}
	}
	return false
}

func (f *fakeBackend) CreateJury(_ context.Context, j domain.Jury) (domain.Jury, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_jury", ""); err != nil {
		return domain.Jury{}, err
	}
	if f.emailTaken(j.Email, "", true) {
		return domain.Jury{}, domain.DuplicateEmailError{Entity: domain.EntityJury, Email: j.Email}
	}
	j.ID = f.nextID("j")
	f.juries[j.ID] = j
	return j, nil
}

func (f *fakeBackend) UpdateJury(_ context.Context, j domain.Jury) (domain.Jury, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_jury", j.ID); err != nil {
		return domain.Jury{}, err
	}
	if f.emailTaken(j.Email, j.ID, true) {
		return domain.Jury{}, domain.DuplicateEmailError{Entity: domain.EntityJury, Email: j.Email}
	}
	f.juries[j.ID] = j
	return j, nil
}

func (f *fakeBackend) DeleteJuries(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_juries", ""); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.juries, id)
	}
	return nil
}

func (f *fakeBackend) CreateInvitee(_ context.Context, i domain.Invitee) (domain.Invitee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_invitee", ""); err != nil {
		return domain.Invitee{}, err
	}
	if f.emailTaken(i.Email, "", false) {
		return domain.Invitee{}, domain.DuplicateEmailError{Entity: domain.EntityInvitee, Email: i.Email}
	}
	i.ID = f.nextID("i")
	f.invitees[i.ID] = i
	return i, nil
}

func (f *fakeBackend) UpdateInvitee(_ context.Context, i domain.Invitee) (domain.Invitee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_invitee", i.ID); err != nil {
		return domain.Invitee{}, err
	}
	if f.emailTaken(i.Email, i.ID, false) {
		return domain.Invitee{}, domain.DuplicateEmailError{Entity: domain.EntityInvitee, Email: i.Email}
	}
	f.invitees[i.ID] = i
	return i, nil
}

func (f *fakeBackend) DeleteInvitees(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_invitees", ""); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.invitees, id)
	}
	return nil
}

func (f *fakeBackend) CreateStudent(_ context.Context, s domain.Student) (domain.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_student", ""); err != nil {
		return domain.Student{}, err
	}
	s.ID = f.nextID("s")
	f.students[s.ID] = s
	return s, nil
}

func (f *fakeBackend) DeleteStudents(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_students", ""); err != nil {
		return err
	}
	for _, id := range ids {
		delete(f.students, id)
	}
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	levels   []NoticeLevel
}

func (n *recordingNotifier) Notify(_ context.Context, level NoticeLevel, message string) {
	n.mu.Lock()
	n.levels = append(n.levels, level)
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

type countingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *countingConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}
