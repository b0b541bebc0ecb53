package agent

import "errors"

var (
	// ErrMaxIterationsReached signals that a turn hit its tool-call
	// loop bound before the model produced a final answer.
	ErrMaxIterationsReached = errors.New("agent: maximum tool iterations reached")

	// ErrAgentTimeout signals that the run's overall deadline passed.
	ErrAgentTimeout = errors.New("agent: timeout exceeded")
)
