package agent

import (
	"time"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/internal/store"
)

// EventType names the kind of occurrence an agent run reports.
type EventType string

const (
	// EventStepStart opens an iteration of the loop.
	EventStepStart EventType = "step_start"

	// EventStreamDelta carries one incremental chunk of model output.
	EventStreamDelta EventType = "stream_delta"

	// EventToolCallRequested reports a tool call found in the response.
	EventToolCallRequested EventType = "tool_call_requested"

	// EventToolCallApproved reports that the approver let a call proceed.
	EventToolCallApproved EventType = "tool_call_approved"

	// EventToolCallRejected reports that the approver blocked a call.
	EventToolCallRejected EventType = "tool_call_rejected"

	// EventToolCallStarted precedes a handler invocation.
	EventToolCallStarted EventType = "tool_call_started"

	// EventToolResult follows a handler invocation, success or not.
	EventToolResult EventType = "tool_result"

	// EventStepComplete closes an iteration with its full response.
	EventStepComplete EventType = "step_complete"

	// EventAgentComplete is the terminal event of every run.
	EventAgentComplete EventType = "agent_complete"

	// EventError reports a failure that ends the run.
	EventError EventType = "error"
)

// Event is one entry in the stream a running agent emits.
type Event struct {
	// Type says what happened.
	Type EventType

	// State is the orchestrator state at the time of the event.
	State State

	// Step is the 1-indexed iteration the event belongs to.
	Step int

	// Delta holds streamed content for EventStreamDelta.
	Delta string

	// ToolCall is set on tool lifecycle events.
	ToolCall *ai.ToolCall

	// ToolResult is set on EventToolResult.
	ToolResult *ai.ToolResult

	// Response is set on EventStepComplete and EventAgentComplete.
	Response *ai.Response

	// Error is set on EventError.
	Error error

	// Message contains additional context (e.g., rejection reason or
	// the diagnostic appended on iteration-cap exhaustion).
	Message string

	// Timestamp records when the event was emitted.
	Timestamp time.Time
}

// TerminationReason says why a run ended.
type TerminationReason string

const (
	// TerminationComplete means the model answered with no further tool calls.
	TerminationComplete TerminationReason = "complete"

	// TerminationMaxIterations indicates the tool-call loop bound was reached.
	TerminationMaxIterations TerminationReason = "max_iterations"

	// TerminationTimeout means the context deadline passed.
	TerminationTimeout TerminationReason = "timeout"

	// TerminationCustom means a stop predicate ended the run.
	TerminationCustom TerminationReason = "custom"

	// TerminationRejected means every requested tool call was refused.
	TerminationRejected TerminationReason = "rejected"

	// TerminationError means an unrecoverable failure stopped the run.
	TerminationError TerminationReason = "error"

	// TerminationCancelled means the caller cancelled the context.
	TerminationCancelled TerminationReason = "cancelled"
)

// FinalState maps a termination reason to the orchestrator's final state.
func (t TerminationReason) FinalState() State {
	switch t {
	case TerminationComplete, TerminationCustom:
		return StateCompleted
	default:
		return StateAborted
	}
}

// Result is the collected outcome of a completed run.
type Result struct {
	// Response is the model's final response, if any.
	Response *ai.Response

	// history is the reconstructed transcript, exposed via Messages.
	history *store.MessageStore

	// Steps counts completed iterations.
	Steps int

	// Termination says why the run stopped.
	Termination TerminationReason

	// TotalUsage sums token usage over every step.
	TotalUsage ai.Usage

	// Error holds the failure behind TerminationError, when set.
	Error error
}

// Messages returns the reconstructed transcript.
func (r *Result) Messages() []ai.Message {
	if r.history == nil {
		return nil
	}
	return r.history.Messages()
}

// MessageCount reports the transcript length.
func (r *Result) MessageCount() int {
	if r.history == nil {
		return 0
	}
	return r.history.Len()
}

// LastMessages returns up to the final n transcript messages.
func (r *Result) LastMessages(n int) []ai.Message {
	if r.history == nil {
		return nil
	}
	msgs := r.history.Messages()
	if n >= len(msgs) {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
