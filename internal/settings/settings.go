// Package settings exposes the read-only system settings the rule engine consults.
package settings

import "sync/atomic"

// Provider reads system settings. Implementations must be safe for
// concurrent reads.
type Provider interface {
	// RuleEngineAssignOverwrite reports whether an ASSIGN effect may
	// replace a value that differs from the rule-computed one.
	RuleEngineAssignOverwrite() bool
}

// Static is a Provider with fixed values.
type Static struct {
	AssignOverwrite bool
}

func (s Static) RuleEngineAssignOverwrite() bool { return s.AssignOverwrite }

// Live is a Provider whose values can be changed while imports run.
type Live struct {
	assignOverwrite atomic.Bool
}

// NewLive creates a Live provider with the given initial values.
func NewLive(assignOverwrite bool) *Live {
	l := &Live{}
	l.assignOverwrite.Store(assignOverwrite)
	return l
}

func (l *Live) RuleEngineAssignOverwrite() bool { return l.assignOverwrite.Load() }

// SetRuleEngineAssignOverwrite changes the overwrite setting for subsequent reads.
func (l *Live) SetRuleEngineAssignOverwrite(v bool) { l.assignOverwrite.Store(v) }
