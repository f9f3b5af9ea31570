package core

import (
	"context"
	"fmt"

	"soutenancecore/pkg/domain"
)

const associationIntegrityName = "association_integrity"

// AssociationIntegrityRule blocks writes that leave a record pointing at a
// track, classroom, defence, jury member or invitee that does not exist.
func AssociationIntegrityRule() domain.Rule {
	return associationIntegrityRule{}
}

type associationIntegrityRule struct{}

func (associationIntegrityRule) Name() string { return associationIntegrityName }

func (associationIntegrityRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.After == nil {
			continue
		}
		switch after := change.After.(type) {
		case domain.Student:
			if _, ok := view.FindSpecialite(after.SpecialiteID); !ok {
				res.Violations = append(res.Violations, associationViolation(domain.EntityStudent, after.ID,
					fmt.Sprintf("student %s references missing specialite %s", after.ID, after.SpecialiteID)))
			}
			if after.Assigned() {
				if _, ok := view.FindDefence(*after.SoutenanceID); !ok {
					res.Violations = append(res.Violations, associationViolation(domain.EntityStudent, after.ID,
						fmt.Sprintf("student %s references missing defence %s", after.ID, *after.SoutenanceID)))
				}
			}
		case domain.DefenceRecord:
			if _, ok := view.FindSpecialite(after.SpecialiteID); !ok {
				res.Violations = append(res.Violations, associationViolation(domain.EntityDefence, after.ID,
					fmt.Sprintf("defence %s references missing specialite %s", after.ID, after.SpecialiteID)))
			}
			if after.ClassroomID != nil && *after.ClassroomID != "" {
				if _, ok := view.FindClassroom(*after.ClassroomID); !ok {
					res.Violations = append(res.Violations, associationViolation(domain.EntityDefence, after.ID,
						fmt.Sprintf("defence %s references missing classroom %s", after.ID, *after.ClassroomID)))
				}
			}
		case domain.JuryAssignment:
			id := after.JuryID + "/" + after.DefenceID
			if _, ok := view.FindJury(after.JuryID); !ok {
				res.Violations = append(res.Violations, associationViolation(domain.EntityJuryAssignment, id,
					fmt.Sprintf("assignment references missing jury %s", after.JuryID)))
			}
			if _, ok := view.FindDefence(after.DefenceID); !ok {
				res.Violations = append(res.Violations, associationViolation(domain.EntityJuryAssignment, id,
					fmt.Sprintf("assignment references missing defence %s", after.DefenceID)))
			}
		case domain.InviteeAssignment:
			id := after.InviteeID + "/" + after.DefenceID
			if _, ok := view.FindInvitee(after.InviteeID); !ok {
				res.Violations = append(res.Violations, associationViolation(domain.EntityInviteeAssignment, id,
					fmt.Sprintf("assignment references missing invitee %s", after.InviteeID)))
			}
			if _, ok := view.FindDefence(after.DefenceID); !ok {
				res.Violations = append(res.Violations, associationViolation(domain.EntityInviteeAssignment, id,
					fmt.Sprintf("assignment references missing defence %s", after.DefenceID)))
			}
		}
	}
	return res, nil
}

func associationViolation(entity domain.EntityType, id, message string) domain.Violation {
	return domain.Violation{
		Rule:     associationIntegrityName,
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: id,
	}
}
