package core

import "soutenancecore/pkg/domain"

// NewRulesEngine constructs an engine with no rules.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(AssociationIntegrityRule())
	engine.Register(StudentTrackRule())
	return engine
}
