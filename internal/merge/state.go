package merge

import "go.uber.org/zap"

// State names a step of a merge run.
type State string

// Merge run states.
const (
	StateIdle             State = "idle"
	StateFetching         State = "fetching"
	StateMerging          State = "merging"
	StateCleanMerge       State = "clean_merge"
	StateConflictDetected State = "conflict_detected"
	StateResolving        State = "resolving"
	StateCommitted        State = "committed"
	StateAborted          State = "aborted"
)

const (
	stateTransitionLogMessageConstant = "merge state changed"
	logFieldFromStateConstant         = "from"
	logFieldToStateConstant           = "to"
)

type stateTracker struct {
	current State
	logger  *zap.Logger
}

func newStateTracker(logger *zap.Logger) *stateTracker {
	return &stateTracker{current: StateIdle, logger: logger}
}

func (tracker *stateTracker) transition(next State) {
	tracker.logger.Debug(stateTransitionLogMessageConstant, zap.String(logFieldFromStateConstant, string(tracker.current)), zap.String(logFieldToStateConstant, string(next)))
	tracker.current = next
}
