package agent

// State identifies where the orchestrator is in its turn lifecycle.
// Transitions follow Idle → Streaming → {ExecutingTool → Streaming}* →
// Completed | Aborted.
type State string

const (
	// StateIdle means no turn is in flight.
	StateIdle State = "idle"

	// StateStreaming means the orchestrator is consuming provider output.
	StateStreaming State = "streaming"

	// StateExecutingTool means a tool handler is running.
	StateExecutingTool State = "executing_tool"

	// StateCompleted means the turn ended with committed assistant text.
	StateCompleted State = "completed"

	// StateAborted means the turn ended on cancellation, iteration-cap
	// exhaustion, or an unrecoverable error.
	StateAborted State = "aborted"
)

// Terminal reports whether the state ends a turn.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}
