package pool

// poolState replaces the spec's `closed`/`opening`/`opened`/`stopping`
// flag quartet with a single enum so "exactly one of these holds" is a
// type-level fact rather than an invariant asserted about flag
// combinations, per SPEC_FULL.md §3.
type poolState int

const (
	statePoolClosed poolState = iota
	statePoolOpening
	statePoolOpened
	statePoolStopping
)

func (s poolState) String() string {
	switch s {
	case statePoolClosed:
		return "closed"
	case statePoolOpening:
		return "opening"
	case statePoolOpened:
		return "opened"
	case statePoolStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
