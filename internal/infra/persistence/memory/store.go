// Package memory provides an in-memory implementation of the core persistence
// store used for tests, ephemeral environments and as the transactional engine
// behind the snapshotting SQL stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"soutenancecore/pkg/domain"

	"github.com/google/uuid"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Specialite aliases domain.Specialite.
	Specialite = domain.Specialite
	// Classroom aliases domain.Classroom.
	Classroom = domain.Classroom
	// Student aliases domain.Student.
	Student = domain.Student
	// Jury aliases domain.Jury.
	Jury = domain.Jury
	// Invitee aliases domain.Invitee.
	Invitee = domain.Invitee
	// DefenceRecord aliases domain.DefenceRecord.
	DefenceRecord = domain.DefenceRecord
	// JuryAssignment aliases domain.JuryAssignment.
	JuryAssignment = domain.JuryAssignment
	// InviteeAssignment aliases domain.InviteeAssignment.
	InviteeAssignment = domain.InviteeAssignment
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type pairKey struct {
	memberID  string
	defenceID string
}

type memoryState struct {
	specialites map[string]Specialite
	classrooms  map[string]Classroom
	juries      map[string]Jury
	invitees    map[string]Invitee
	students    map[string]Student
	defences    map[string]DefenceRecord
	juryLinks   map[pairKey]JuryAssignment
	guestLinks  map[pairKey]InviteeAssignment
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Specialites        map[string]Specialite    `json:"specialites"`
	Classrooms         map[string]Classroom     `json:"classrooms"`
	Juries             map[string]Jury          `json:"juries"`
	Invitees           map[string]Invitee       `json:"invitees"`
	Students           map[string]Student       `json:"students"`
	Defences           map[string]DefenceRecord `json:"defences"`
	JuryAssignments    []JuryAssignment         `json:"jury_assignments"`
	InviteeAssignments []InviteeAssignment      `json:"invitee_assignments"`
}

func newMemoryState() memoryState {
	return memoryState{
		specialites: make(map[string]Specialite),
		classrooms:  make(map[string]Classroom),
		juries:      make(map[string]Jury),
		invitees:    make(map[string]Invitee),
		students:    make(map[string]Student),
		defences:    make(map[string]DefenceRecord),
		juryLinks:   make(map[pairKey]JuryAssignment),
		guestLinks:  make(map[pairKey]InviteeAssignment),
	}
}

func (s memoryState) clone() memoryState {
	out := newMemoryState()
	for k, v := range s.specialites {
		out.specialites[k] = v
	}
	for k, v := range s.classrooms {
		out.classrooms[k] = v
	}
	for k, v := range s.juries {
		out.juries[k] = v
	}
	for k, v := range s.invitees {
		out.invitees[k] = v
	}
	for k, v := range s.students {
		out.students[k] = cloneStudent(v)
	}
	for k, v := range s.defences {
		out.defences[k] = cloneDefence(v)
	}
	for k, v := range s.juryLinks {
		out.juryLinks[k] = v
	}
	for k, v := range s.guestLinks {
		out.guestLinks[k] = v
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cloned := state.clone()
	s := Snapshot{
		Specialites:        cloned.specialites,
		Classrooms:         cloned.classrooms,
		Juries:             cloned.juries,
		Invitees:           cloned.invitees,
		Students:           cloned.students,
		Defences:           cloned.defences,
		JuryAssignments:    make([]JuryAssignment, 0, len(cloned.juryLinks)),
		InviteeAssignments: make([]InviteeAssignment, 0, len(cloned.guestLinks)),
	}
	for _, link := range cloned.juryLinks {
		s.JuryAssignments = append(s.JuryAssignments, link)
	}
	for _, link := range cloned.guestLinks {
		s.InviteeAssignments = append(s.InviteeAssignments, link)
	}
	sortJuryLinks(s.JuryAssignments)
	sortGuestLinks(s.InviteeAssignments)
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Specialites {
		state.specialites[k] = v
	}
	for k, v := range s.Classrooms {
		state.classrooms[k] = v
	}
	for k, v := range s.Juries {
		state.juries[k] = v
	}
	for k, v := range s.Invitees {
		state.invitees[k] = v
	}
	for k, v := range s.Students {
		state.students[k] = cloneStudent(v)
	}
	for k, v := range s.Defences {
		if v.Status == "" {
			v.Status = domain.CompositionComplete
		}
		state.defences[k] = cloneDefence(v)
	}
	for _, link := range s.JuryAssignments {
		state.juryLinks[pairKey{link.JuryID, link.DefenceID}] = link
	}
	for _, link := range s.InviteeAssignments {
		state.guestLinks[pairKey{link.InviteeID, link.DefenceID}] = link
	}
	return state
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStudent(s Student) Student {
	s.SoutenanceID = cloneString(s.SoutenanceID)
	return s
}

func cloneDefence(d DefenceRecord) DefenceRecord {
	d.ClassroomID = cloneString(d.ClassroomID)
	return d
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	idFn   func() string
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   uuid.NewString,
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the clock used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

// SetIDFunc overrides identifier generation. Tests use it for stable ids.
func (s *Store) SetIDFunc(fn func() string) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.idFn = fn
	s.mu.Unlock()
}

// CommitFunc receives the state a transaction is about to install. Returning
// an error discards the transaction.
type CommitFunc func(ctx context.Context, next Snapshot) error

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the store state only when fn succeeds and no rule blocks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	return s.RunAndCommit(ctx, fn, nil)
}

// RunAndCommit is RunInTransaction with a commit hook. The hook runs after
// rule evaluation, under the store lock, and the new state is installed only
// when it succeeds, so readers never observe a write the hook rejected.
func (s *Store) RunAndCommit(ctx context.Context, fn func(tx Transaction) error, commit CommitFunc) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if commit != nil {
		if err := commit(ctx, snapshotFromMemoryState(tx.state)); err != nil {
			return result, err
		}
	}
	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) newID(id string) string {
	if id != "" {
		return id
	}
	return tx.store.idFn()
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// CreateSpecialite stores a new track.
func (tx *transaction) CreateSpecialite(sp Specialite) (Specialite, error) {
	sp.ID = tx.newID(sp.ID)
	if _, exists := tx.state.specialites[sp.ID]; exists {
		return Specialite{}, fmt.Errorf("specialite %q already exists", sp.ID)
	}
	sp.CreatedAt = tx.now
	sp.UpdatedAt = tx.now
	tx.state.specialites[sp.ID] = sp
	tx.recordChange(Change{Entity: domain.EntitySpecialite, Action: domain.ActionCreate, After: sp})
	return sp, nil
}

// CreateClassroom stores a new classroom.
func (tx *transaction) CreateClassroom(c Classroom) (Classroom, error) {
	c.ID = tx.newID(c.ID)
	if _, exists := tx.state.classrooms[c.ID]; exists {
		return Classroom{}, fmt.Errorf("classroom %q already exists", c.ID)
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.classrooms[c.ID] = c
	tx.recordChange(Change{Entity: domain.EntityClassroom, Action: domain.ActionCreate, After: c})
	return c, nil
}

// UpdateClassroom mutates a classroom using the provided mutator function.
func (tx *transaction) UpdateClassroom(id string, mutator func(*Classroom) error) (Classroom, error) {
	current, ok := tx.state.classrooms[id]
	if !ok {
		return Classroom{}, domain.NotFoundError{Entity: domain.EntityClassroom, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Classroom{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.classrooms[id] = current
	tx.recordChange(Change{Entity: domain.EntityClassroom, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteClassroom removes a classroom and detaches it from every defence held in it.
func (tx *transaction) DeleteClassroom(id string) error {
	current, ok := tx.state.classrooms[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityClassroom, ID: id}
	}
	for defenceID, defence := range tx.state.defences {
		if defence.ClassroomID == nil || *defence.ClassroomID != id {
			continue
		}
		before := cloneDefence(defence)
		defence.ClassroomID = nil
		defence.UpdatedAt = tx.now
		tx.state.defences[defenceID] = defence
		tx.recordChange(Change{Entity: domain.EntityDefence, Action: domain.ActionUpdate, Before: before, After: cloneDefence(defence)})
	}
	delete(tx.state.classrooms, id)
	tx.recordChange(Change{Entity: domain.EntityClassroom, Action: domain.ActionDelete, Before: current})
	return nil
}

func (tx *transaction) juryEmailTaken(email, exceptID string) bool {
	key := domain.NormalizeEmail(email)
	if key == "" {
		return false
	}
	for id, jury := range tx.state.juries {
		if id != exceptID && domain.NormalizeEmail(jury.Email) == key {
			return true
		}
	}
	return false
}

func (tx *transaction) inviteeEmailTaken(email, exceptID string) bool {
	key := domain.NormalizeEmail(email)
	if key == "" {
		return false
	}
	for id, invitee := range tx.state.invitees {
		if id != exceptID && domain.NormalizeEmail(invitee.Email) == key {
			return true
		}
	}
	return false
}

// CreateJury stores a new jury member. The email must not belong to another jury.
func (tx *transaction) CreateJury(j Jury) (Jury, error) {
	j.ID = tx.newID(j.ID)
	if _, exists := tx.state.juries[j.ID]; exists {
		return Jury{}, fmt.Errorf("jury %q already exists", j.ID)
	}
	if tx.juryEmailTaken(j.Email, j.ID) {
		return Jury{}, domain.DuplicateEmailError{Entity: domain.EntityJury, Email: j.Email}
	}
	j.CreatedAt = tx.now
	j.UpdatedAt = tx.now
	tx.state.juries[j.ID] = j
	tx.recordChange(Change{Entity: domain.EntityJury, Action: domain.ActionCreate, After: j})
	return j, nil
}

// UpdateJury mutates a jury member; the new email must stay unique.
func (tx *transaction) UpdateJury(id string, mutator func(*Jury) error) (Jury, error) {
	current, ok := tx.state.juries[id]
	if !ok {
		return Jury{}, domain.NotFoundError{Entity: domain.EntityJury, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Jury{}, err
	}
	if tx.juryEmailTaken(current.Email, id) {
		return Jury{}, domain.DuplicateEmailError{Entity: domain.EntityJury, Email: current.Email}
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.juries[id] = current
	tx.recordChange(Change{Entity: domain.EntityJury, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteJury removes a jury member together with its defence assignments.
func (tx *transaction) DeleteJury(id string) error {
	current, ok := tx.state.juries[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityJury, ID: id}
	}
	for key, link := range tx.state.juryLinks {
		if key.memberID == id {
			delete(tx.state.juryLinks, key)
			tx.recordChange(Change{Entity: domain.EntityJuryAssignment, Action: domain.ActionDelete, Before: link})
		}
	}
	delete(tx.state.juries, id)
	tx.recordChange(Change{Entity: domain.EntityJury, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateInvitee stores a new invitee. The email must not belong to another invitee.
func (tx *transaction) CreateInvitee(i Invitee) (Invitee, error) {
	i.ID = tx.newID(i.ID)
	if _, exists := tx.state.invitees[i.ID]; exists {
		return Invitee{}, fmt.Errorf("invitee %q already exists", i.ID)
	}
	if tx.inviteeEmailTaken(i.Email, i.ID) {
		return Invitee{}, domain.DuplicateEmailError{Entity: domain.EntityInvitee, Email: i.Email}
	}
	i.CreatedAt = tx.now
	i.UpdatedAt = tx.now
	tx.state.invitees[i.ID] = i
	tx.recordChange(Change{Entity: domain.EntityInvitee, Action: domain.ActionCreate, After: i})
	return i, nil
}

// UpdateInvitee mutates an invitee; the new email must stay unique.
func (tx *transaction) UpdateInvitee(id string, mutator func(*Invitee) error) (Invitee, error) {
	current, ok := tx.state.invitees[id]
	if !ok {
		return Invitee{}, domain.NotFoundError{Entity: domain.EntityInvitee, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Invitee{}, err
	}
	if tx.inviteeEmailTaken(current.Email, id) {
		return Invitee{}, domain.DuplicateEmailError{Entity: domain.EntityInvitee, Email: current.Email}
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.invitees[id] = current
	tx.recordChange(Change{Entity: domain.EntityInvitee, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteInvitee removes an invitee together with its defence assignments.
func (tx *transaction) DeleteInvitee(id string) error {
	current, ok := tx.state.invitees[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityInvitee, ID: id}
	}
	for key, link := range tx.state.guestLinks {
		if key.memberID == id {
			delete(tx.state.guestLinks, key)
			tx.recordChange(Change{Entity: domain.EntityInviteeAssignment, Action: domain.ActionDelete, Before: link})
		}
	}
	delete(tx.state.invitees, id)
	tx.recordChange(Change{Entity: domain.EntityInvitee, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateStudent stores a new student.
func (tx *transaction) CreateStudent(st Student) (Student, error) {
	st.ID = tx.newID(st.ID)
	if _, exists := tx.state.students[st.ID]; exists {
		return Student{}, fmt.Errorf("student %q already exists", st.ID)
	}
	st.CreatedAt = tx.now
	st.UpdatedAt = tx.now
	tx.state.students[st.ID] = cloneStudent(st)
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionCreate, After: cloneStudent(st)})
	return cloneStudent(st), nil
}

// UpdateStudent mutates a student. Whatever the mutator leaves in
// SoutenanceID replaces the previous assignment.
func (tx *transaction) UpdateStudent(id string, mutator func(*Student) error) (Student, error) {
	current, ok := tx.state.students[id]
	if !ok {
		return Student{}, domain.NotFoundError{Entity: domain.EntityStudent, ID: id}
	}
	before := cloneStudent(current)
	current = cloneStudent(current)
	if err := mutator(&current); err != nil {
		return Student{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.students[id] = cloneStudent(current)
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionUpdate, Before: before, After: cloneStudent(current)})
	return cloneStudent(current), nil
}

// DeleteStudent removes a student.
func (tx *transaction) DeleteStudent(id string) error {
	current, ok := tx.state.students[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityStudent, ID: id}
	}
	delete(tx.state.students, id)
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionDelete, Before: cloneStudent(current)})
	return nil
}

// CreateDefence stores a new defence record.
func (tx *transaction) CreateDefence(d DefenceRecord) (DefenceRecord, error) {
	d.ID = tx.newID(d.ID)
	if _, exists := tx.state.defences[d.ID]; exists {
		return DefenceRecord{}, fmt.Errorf("defence %q already exists", d.ID)
	}
	if d.Status == "" {
		d.Status = domain.CompositionComplete
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.defences[d.ID] = cloneDefence(d)
	tx.recordChange(Change{Entity: domain.EntityDefence, Action: domain.ActionCreate, After: cloneDefence(d)})
	return cloneDefence(d), nil
}

// UpdateDefence mutates a defence record.
func (tx *transaction) UpdateDefence(id string, mutator func(*DefenceRecord) error) (DefenceRecord, error) {
	current, ok := tx.state.defences[id]
	if !ok {
		return DefenceRecord{}, domain.NotFoundError{Entity: domain.EntityDefence, ID: id}
	}
	before := cloneDefence(current)
	current = cloneDefence(current)
	if err := mutator(&current); err != nil {
		return DefenceRecord{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.defences[id] = current
	tx.recordChange(Change{Entity: domain.EntityDefence, Action: domain.ActionUpdate, Before: before, After: cloneDefence(current)})
	return cloneDefence(current), nil
}

// DeleteDefence removes a defence, its association records, and detaches the
// students assigned to it.
func (tx *transaction) DeleteDefence(id string) error {
	current, ok := tx.state.defences[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityDefence, ID: id}
	}
	for key, link := range tx.state.juryLinks {
		if key.defenceID == id {
			delete(tx.state.juryLinks, key)
			tx.recordChange(Change{Entity: domain.EntityJuryAssignment, Action: domain.ActionDelete, Before: link})
		}
	}
	for key, link := range tx.state.guestLinks {
		if key.defenceID == id {
			delete(tx.state.guestLinks, key)
			tx.recordChange(Change{Entity: domain.EntityInviteeAssignment, Action: domain.ActionDelete, Before: link})
		}
	}
	for studentID, student := range tx.state.students {
		if student.SoutenanceID == nil || *student.SoutenanceID != id {
			continue
		}
		before := cloneStudent(student)
		student.SoutenanceID = nil
		student.UpdatedAt = tx.now
		tx.state.students[studentID] = student
		tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionUpdate, Before: before, After: cloneStudent(student)})
	}
	delete(tx.state.defences, id)
	tx.recordChange(Change{Entity: domain.EntityDefence, Action: domain.ActionDelete, Before: cloneDefence(current)})
	return nil
}

// CreateJuryAssignment links a jury member to a defence.
func (tx *transaction) CreateJuryAssignment(link JuryAssignment) (JuryAssignment, error) {
	key := pairKey{link.JuryID, link.DefenceID}
	if _, exists := tx.state.juryLinks[key]; exists {
		return JuryAssignment{}, fmt.Errorf("jury %q on defence %q: %w", link.JuryID, link.DefenceID, domain.ErrDuplicateAssignment)
	}
	link.CreatedAt = tx.now
	tx.state.juryLinks[key] = link
	tx.recordChange(Change{Entity: domain.EntityJuryAssignment, Action: domain.ActionCreate, After: link})
	return link, nil
}

// DeleteJuryAssignment removes the link between a jury member and a defence.
func (tx *transaction) DeleteJuryAssignment(juryID, defenceID string) error {
	key := pairKey{juryID, defenceID}
	link, ok := tx.state.juryLinks[key]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityJuryAssignment, ID: juryID + "/" + defenceID}
	}
	delete(tx.state.juryLinks, key)
	tx.recordChange(Change{Entity: domain.EntityJuryAssignment, Action: domain.ActionDelete, Before: link})
	return nil
}

// CreateInviteeAssignment links an invitee to a defence.
func (tx *transaction) CreateInviteeAssignment(link InviteeAssignment) (InviteeAssignment, error) {
	key := pairKey{link.InviteeID, link.DefenceID}
	if _, exists := tx.state.guestLinks[key]; exists {
		return InviteeAssignment{}, fmt.Errorf("invitee %q on defence %q: %w", link.InviteeID, link.DefenceID, domain.ErrDuplicateAssignment)
	}
	link.CreatedAt = tx.now
	tx.state.guestLinks[key] = link
	tx.recordChange(Change{Entity: domain.EntityInviteeAssignment, Action: domain.ActionCreate, After: link})
	return link, nil
}

// DeleteInviteeAssignment removes the link between an invitee and a defence.
func (tx *transaction) DeleteInviteeAssignment(inviteeID, defenceID string) error {
	key := pairKey{inviteeID, defenceID}
	link, ok := tx.state.guestLinks[key]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityInviteeAssignment, ID: inviteeID + "/" + defenceID}
	}
	delete(tx.state.guestLinks, key)
	tx.recordChange(Change{Entity: domain.EntityInviteeAssignment, Action: domain.ActionDelete, Before: link})
	return nil
}

func sortJuryLinks(links []JuryAssignment) {
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		}
		if links[i].DefenceID != links[j].DefenceID {
			return links[i].DefenceID < links[j].DefenceID
		}
		return links[i].JuryID < links[j].JuryID
	})
}

func sortGuestLinks(links []InviteeAssignment) {
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		}
		if links[i].DefenceID != links[j].DefenceID {
			return links[i].DefenceID < links[j].DefenceID
		}
		return links[i].InviteeID < links[j].InviteeID
	})
}
