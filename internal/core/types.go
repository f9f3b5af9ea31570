package core

import "soutenancecore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Specialite         = domain.Specialite
	Classroom          = domain.Classroom
	Student            = domain.Student
	Jury               = domain.Jury
	Invitee            = domain.Invitee
	DefenceRecord      = domain.DefenceRecord
	DefenceDraft       = domain.DefenceDraft
	Defence            = domain.Defence
	JuryAssignment     = domain.JuryAssignment
	InviteeAssignment  = domain.InviteeAssignment
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntitySpecialite        = domain.EntitySpecialite
	EntityClassroom         = domain.EntityClassroom
	EntityStudent           = domain.EntityStudent
	EntityJury              = domain.EntityJury
	EntityInvitee           = domain.EntityInvitee
	EntityDefence           = domain.EntityDefence
	EntityJuryAssignment    = domain.EntityJuryAssignment
	EntityInviteeAssignment = domain.EntityInviteeAssignment
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
