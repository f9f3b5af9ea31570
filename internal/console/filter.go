package console

import (
	"strings"
	"time"

	"soutenancecore/pkg/domain"
)

const dateLayout = "2006-01-02"

// DefenceFilter holds the optional equality clauses applied to the loaded
// defences. An empty clause matches everything.
type DefenceFilter struct {
	Date        string `json:"date"`
	ClassroomID string `json:"classroom"`
}

// Active reports whether any clause is set.
func (f DefenceFilter) Active() bool {
	return f.Date != "" || f.ClassroomID != ""
}

// Match reports whether d satisfies every active clause.
func (f DefenceFilter) Match(d domain.Defence) bool {
	if f.Date != "" && d.DateKey() != f.Date {
		return false
	}
	if f.ClassroomID != "" && d.ClassroomKey() != f.ClassroomID {
		return false
	}
	return true
}

// ApplyFilter returns the defences matching f, in their original order. The
// input is never modified and the result is never nil.
func ApplyFilter(defences []domain.Defence, f DefenceFilter) []domain.Defence {
	out := make([]domain.Defence, 0, len(defences))
	for _, d := range defences {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// ParseDefenceFilter builds a filter from raw query values. The date clause
// must be a calendar date in YYYY-MM-DD form.
func ParseDefenceFilter(date, classroomID string) (DefenceFilter, error) {
	f := DefenceFilter{Date: strings.TrimSpace(date), ClassroomID: strings.TrimSpace(classroomID)}
	if f.Date != "" {
		if _, err := time.Parse(dateLayout, f.Date); err != nil {
			return DefenceFilter{}, &ValidationError{Fields: map[string]string{"date": "datetime"}}
		}
	}
	return f, nil
}
