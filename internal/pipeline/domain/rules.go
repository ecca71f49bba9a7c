package domain

// Rules holds the configurable thresholds of the pipeline engine. They are
// injected by the composition root rather than read from ambient state, so
// every caller operates under an explicit, inspectable rule set.
type Rules struct {
	// MaxCallAttempts is the attempt count at which a RICHIAMARE outcome
	// forces the lead into PERSO.
	MaxCallAttempts int
	// AutoLossDays is the staleness window for RICHIAMARE leads. A lead past
	// this window is eligible for loss; no timer enforces it, the next
	// recorded outcome or an explicit caller decision does.
	AutoLossDays int
}

// DefaultRules returns the production thresholds.
func DefaultRules() Rules {
	return Rules{MaxCallAttempts: 8, AutoLossDays: 15}
}

// AssignmentRules controls how bulk assignment treats leads that already
// have an owner. Callers pass the active rule set per invocation.
type AssignmentRules struct {
	// Overwrite reassigns leads that already have an agent. When false,
	// already-owned leads are filtered out before distribution.
	Overwrite bool
}
