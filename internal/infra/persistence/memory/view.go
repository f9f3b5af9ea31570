package memory

import (
	"sort"

	"soutenancecore/pkg/domain"
)

// transactionView exposes a read-only snapshot of the transactional state.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// byCreation orders records by creation time, falling back to id.
func byCreation[T any](values map[string]T, base func(T) domain.Base, clone func(T) T) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = append(out, clone(v))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := base(out[i]), base(out[j])
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

func identity[T any](v T) T { return v }

// ListSpecialites returns tracks ordered by name.
func (v transactionView) ListSpecialites() []Specialite {
	out := make([]Specialite, 0, len(v.state.specialites))
	for _, sp := range v.state.specialites {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindSpecialite looks up a track by id.
func (v transactionView) FindSpecialite(id string) (Specialite, bool) {
	sp, ok := v.state.specialites[id]
	return sp, ok
}

// ListClassrooms returns classrooms in creation order.
func (v transactionView) ListClassrooms() []Classroom {
	return byCreation(v.state.classrooms, func(c Classroom) domain.Base { return c.Base }, identity[Classroom])
}

// FindClassroom looks up a classroom by id.
func (v transactionView) FindClassroom(id string) (Classroom, bool) {
	c, ok := v.state.classrooms[id]
	return c, ok
}

// ListJuries returns jury members in creation order.
func (v transactionView) ListJuries() []Jury {
	return byCreation(v.state.juries, func(j Jury) domain.Base { return j.Base }, identity[Jury])
}

// FindJury looks up a jury member by id.
func (v transactionView) FindJury(id string) (Jury, bool) {
	j, ok := v.state.juries[id]
	return j, ok
}

// ListInvitees returns invitees in creation order.
func (v transactionView) ListInvitees() []Invitee {
	return byCreation(v.state.invitees, func(i Invitee) domain.Base { return i.Base }, identity[Invitee])
}

// FindInvitee looks up an invitee by id.
func (v transactionView) FindInvitee(id string) (Invitee, bool) {
	i, ok := v.state.invitees[id]
	return i, ok
}

// ListStudents returns students in creation order.
func (v transactionView) ListStudents() []Student {
	return byCreation(v.state.students, func(s Student) domain.Base { return s.Base }, cloneStudent)
}

// FindStudent looks up a student by id.
func (v transactionView) FindStudent(id string) (Student, bool) {
	s, ok := v.state.students[id]
	if !ok {
		return Student{}, false
	}
	return cloneStudent(s), true
}

// ListDefences returns defences ordered by date, hour, then id.
func (v transactionView) ListDefences() []DefenceRecord {
	out := make([]DefenceRecord, 0, len(v.state.defences))
	for _, d := range v.state.defences {
		out = append(out, cloneDefence(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindDefence looks up a defence record by id.
func (v transactionView) FindDefence(id string) (DefenceRecord, bool) {
	d, ok := v.state.defences[id]
	if !ok {
		return DefenceRecord{}, false
	}
	return cloneDefence(d), true
}

// ListJuryAssignments returns jury links in creation order.
func (v transactionView) ListJuryAssignments() []JuryAssignment {
	out := make([]JuryAssignment, 0, len(v.state.juryLinks))
	for _, link := range v.state.juryLinks {
		out = append(out, link)
	}
	sortJuryLinks(out)
	return out
}

// ListInviteeAssignments returns invitee links in creation order.
func (v transactionView) ListInviteeAssignments() []InviteeAssignment {
	out := make([]InviteeAssignment, 0, len(v.state.guestLinks))
	for _, link := range v.state.guestLinks {
		out = append(out, link)
	}
	sortGuestLinks(out)
	return out
}
