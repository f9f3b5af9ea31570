package core

import (
	"context"
	"fmt"

	"soutenancecore/pkg/domain"
)

// StudentTrackRule warns when a student is attached to a defence held for a
// different track.
func StudentTrackRule() domain.Rule {
	return studentTrackRule{}
}

type studentTrackRule struct{}

func (studentTrackRule) Name() string { return "student_track" }

func (r studentTrackRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityStudent || change.After == nil {
			continue
		}
		student, ok := change.After.(domain.Student)
		if !ok || !student.Assigned() {
			continue
		}
		defence, ok := view.FindDefence(*student.SoutenanceID)
		if !ok || defence.SpecialiteID == student.SpecialiteID {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("student %s of specialite %s joins defence %s of specialite %s", student.ID, student.SpecialiteID, defence.ID, defence.SpecialiteID),
			Entity:   domain.EntityStudent,
			EntityID: student.ID,
		})
	}
	return res, nil
}
