package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/internal/logging"
	"github.com/spetersoncode/chatter/internal/store"
	"github.com/spetersoncode/chatter/tool"
)

// eventBufferSize is the capacity of the event channel returned by RunStream.
const eventBufferSize = 64

// Agent orchestrates autonomous tool-calling conversations.
//
// Each turn drives the provider stream, intercepts tool calls, executes them
// sequentially through the registry, and re-invokes the provider with the
// tool results until the model answers with plain text or the iteration cap
// is reached.
type Agent struct {
	provider ai.ChatProvider
	registry *tool.Registry
}

// New creates a new Agent with the given chat provider and tool registry.
// A nil registry disables tool calling entirely.
func New(provider ai.ChatProvider, registry *tool.Registry) *Agent {
	return &Agent{
		provider: provider,
		registry: registry,
	}
}

// Run executes the agent loop and returns the final result.
// This is a blocking call that runs until the agent completes.
// The error is ErrMaxIterationsReached when the loop bound ended the turn
// and ErrAgentTimeout when the overall deadline did; the Result is
// populated either way.
func (a *Agent) Run(ctx context.Context, messages []ai.Message, opts ...Option) (*Result, error) {
	eventCh := a.RunStream(ctx, messages, opts...)

	result := &Result{
		history: store.NewMessageStoreFrom(messages),
	}

	var totalUsage ai.Usage
	var lastResponse *ai.Response

	for ev := range eventCh {
		switch ev.Type {
		case EventStepComplete:
			result.Steps = ev.Step
			lastResponse = ev.Response
			if ev.Response != nil {
				totalUsage.InputTokens += ev.Response.Usage.InputTokens
				totalUsage.OutputTokens += ev.Response.Usage.OutputTokens

				if len(ev.Response.ToolCalls) > 0 {
					result.history.Append(ai.Message{
						Role:      ai.RoleAssistant,
						Content:   ev.Response.Content,
						ToolCalls: ev.Response.ToolCalls,
					})
				}
			}

		case EventToolResult:
			if ev.ToolResult != nil {
				result.history.Append(ai.NewToolResultMessage(*ev.ToolResult))
			}

		case EventAgentComplete:
			result.Termination = TerminationReason(ev.Message)
			result.Response = ev.Response
			if result.Response == nil {
				result.Response = lastResponse
			}

			switch result.Termination {
			case TerminationComplete, TerminationCustom:
				if result.Response != nil && result.Response.Content != "" {
					result.history.Append(ai.Message{
						Role:    ai.RoleAssistant,
						Content: result.Response.Content,
					})
				}
			case TerminationMaxIterations:
				result.history.Append(ai.Message{
					Role:    ai.RoleAssistant,
					Content: maxIterationsDiagnostic(ev.Step),
				})
				result.Error = ErrMaxIterationsReached
			case TerminationTimeout:
				if result.Error == nil {
					result.Error = ErrAgentTimeout
				}
			}

		case EventError:
			result.Error = ev.Error
		}
	}

	result.TotalUsage = totalUsage
	return result, result.Error
}

// RunStream executes the agent loop and returns a channel of events.
// The channel is closed when the agent completes or encounters a fatal error.
// Callers should drain the channel to ensure proper cleanup.
func (a *Agent) RunStream(ctx context.Context, messages []ai.Message, opts ...Option) <-chan Event {
	eventCh := make(chan Event, eventBufferSize)

	go a.runLoop(ctx, messages, eventCh, opts...)

	return eventCh
}

func (a *Agent) runLoop(ctx context.Context, messages []ai.Message, eventCh chan<- Event, opts ...Option) {
	defer close(eventCh)

	options := ApplyOptions(opts...)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	// Supply the tool schema only when tools are registered.
	chatOpts := options.ChatOptions
	if a.registry != nil && a.registry.Len() > 0 {
		chatOpts = append([]ai.Option{ai.WithTools(a.registry.Tools())}, options.ChatOptions...)
	}

	// Copy messages to avoid mutating the original.
	history := store.NewMessageStoreFrom(messages)

	step := 0

	for {
		step++

		if reason := a.checkTermination(ctx, step, options); reason != "" {
			if reason == TerminationMaxIterations {
				history.Append(ai.Message{Role: ai.RoleAssistant, Content: maxIterationsDiagnostic(step)})
			}
			a.emitComplete(eventCh, step, nil, reason)
			return
		}

		logging.Debug().Int("step", step).Msg("agent step start")
		emit(eventCh, Event{Type: EventStepStart, State: StateStreaming, Step: step})

		response, err := a.executeStep(ctx, history.Messages(), chatOpts, step, eventCh)
		if err != nil {
			reason := TerminationError
			switch {
			case errors.Is(err, context.Canceled):
				reason = TerminationCancelled
			case errors.Is(err, context.DeadlineExceeded):
				reason = TerminationTimeout
			}
			emit(eventCh, Event{Type: EventError, State: StateAborted, Step: step, Error: err})
			a.emitComplete(eventCh, step, nil, reason)
			return
		}

		emit(eventCh, Event{Type: EventStepComplete, State: StateStreaming, Step: step, Response: response})

		if options.StopPredicate != nil && options.StopPredicate(step, response) {
			a.emitComplete(eventCh, step, response, TerminationCustom)
			return
		}

		// No tool calls = natural completion.
		if len(response.ToolCalls) == 0 {
			a.emitComplete(eventCh, step, response, TerminationComplete)
			return
		}

		history.Append(ai.Message{
			Role:      ai.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		anyApproved, cancelled := a.processToolCalls(ctx, response.ToolCalls, history, options, step, eventCh)

		if cancelled {
			a.emitComplete(eventCh, step, response, TerminationCancelled)
			return
		}
		if !anyApproved {
			a.emitComplete(eventCh, step, response, TerminationRejected)
			return
		}
	}
}

// executeStep consumes one provider stream, forwarding deltas as events.
// Partial text from an interrupted stream is never returned as a response.
func (a *Agent) executeStep(ctx context.Context, messages []ai.Message, chatOpts []ai.Option, step int, eventCh chan<- Event) (*ai.Response, error) {
	streamCh, err := a.provider.ChatStream(ctx, messages, chatOpts...)
	if err != nil {
		return nil, err
	}

	var response *ai.Response

	for ev := range streamCh {
		if ev.Err != nil {
			return nil, ev.Err
		}
		if ev.Delta != "" {
			emit(eventCh, Event{Type: EventStreamDelta, State: StateStreaming, Step: step, Delta: ev.Delta})
		}
		if ev.Done {
			response = ev.Response
		}
	}

	if response == nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, context.Canceled
	}

	return response, nil
}

// processToolCalls executes a batch of tool calls strictly in order, each
// result appended as its own tool message before the next call starts.
// Cancellation mid-batch lets the in-flight handler finish, then marks the
// remaining calls as cancelled without executing them so no call is left
// dangling without a result.
func (a *Agent) processToolCalls(ctx context.Context, toolCalls []ai.ToolCall, history *store.MessageStore, options *Options, step int, eventCh chan<- Event) (anyApproved, cancelled bool) {
	for _, tc := range toolCalls {
		tc := tc
		emit(eventCh, Event{Type: EventToolCallRequested, State: StateExecutingTool, Step: step, ToolCall: &tc})

		if cancelled || ctx.Err() != nil {
			cancelled = true
			result := ai.ToolResult{
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    "cancelled before execution",
				IsError:    true,
			}
			history.Append(ai.NewToolResultMessage(result))
			emit(eventCh, Event{Type: EventToolResult, State: StateAborted, Step: step, ToolCall: &tc, ToolResult: &result})
			continue
		}

		if a.requiresApproval(tc.Name, options) {
			approved, reason := options.Approver(ctx, tc)
			if !approved {
				if reason == "" {
					reason = "tool call rejected"
				}
				emit(eventCh, Event{Type: EventToolCallRejected, State: StateExecutingTool, Step: step, ToolCall: &tc, Message: reason})
				result := ai.ToolResult{
					ToolCallID: tc.ID,
					Name:       tc.Name,
					Content:    reason,
					IsError:    true,
				}
				history.Append(ai.NewToolResultMessage(result))
				emit(eventCh, Event{Type: EventToolResult, State: StateExecutingTool, Step: step, ToolCall: &tc, ToolResult: &result})
				continue
			}
			emit(eventCh, Event{Type: EventToolCallApproved, State: StateExecutingTool, Step: step, ToolCall: &tc})
		}

		anyApproved = true
		result := a.executeToolCall(ctx, tc, options, step, eventCh)
		logging.Debug().Str("tool", tc.Name).Bool("is_error", result.IsError).Msg("tool executed")
		history.Append(ai.NewToolResultMessage(result))
		emit(eventCh, Event{Type: EventToolResult, State: StateExecutingTool, Step: step, ToolCall: &tc, ToolResult: &result})

		if ctx.Err() != nil {
			cancelled = true
		}
	}

	return anyApproved, cancelled
}

// executeToolCall runs one handler. The handler is detached from the turn's
// cancellation so an in-flight filesystem operation always completes; only
// the per-handler timeout bounds it.
func (a *Agent) executeToolCall(ctx context.Context, tc ai.ToolCall, options *Options, step int, eventCh chan<- Event) ai.ToolResult {
	emit(eventCh, Event{Type: EventToolCallStarted, State: StateExecutingTool, Step: step, ToolCall: &tc})

	// A model can request tools it was never offered, e.g. when a loaded
	// transcript contains earlier tool traffic. With no registry the call
	// is answered with an error result rather than executed.
	if a.registry == nil {
		return ai.ToolResult{
			ToolCallID: tc.ID,
			Name:       tc.Name,
			Content:    "no tools are available in this session",
			IsError:    true,
		}
	}

	execCtx := context.WithoutCancel(ctx)
	if options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(execCtx, options.HandlerTimeout)
		defer cancel()
	}

	return a.registry.Execute(execCtx, tc)
}

func (a *Agent) requiresApproval(toolName string, options *Options) bool {
	if options.Approver == nil {
		return false
	}
	if len(options.ApprovalRequired) == 0 {
		return true // all tools require approval
	}
	for _, name := range options.ApprovalRequired {
		if name == toolName {
			return true
		}
	}
	return false
}

func (a *Agent) checkTermination(ctx context.Context, step int, options *Options) TerminationReason {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return TerminationTimeout
		}
		return TerminationCancelled
	}

	// step is 1-indexed; the bound counts provider turns per user turn.
	if options.MaxToolIterations > 0 && step > options.MaxToolIterations {
		return TerminationMaxIterations
	}

	return ""
}

func (a *Agent) emitComplete(ch chan<- Event, step int, response *ai.Response, reason TerminationReason) {
	logging.Debug().Int("step", step).Str("reason", string(reason)).Msg("agent run complete")
	emit(ch, Event{
		Type:     EventAgentComplete,
		State:    reason.FinalState(),
		Step:     step,
		Response: response,
		Message:  string(reason),
	})
}

// maxIterationsDiagnostic is the message appended to the transcript when the
// loop bound forces an abort.
func maxIterationsDiagnostic(step int) string {
	return fmt.Sprintf("Tool iteration limit reached after %d rounds; stopping this turn. The conversation can continue with a new message.", step-1)
}

func emit(ch chan<- Event, ev Event) {
	ev.Timestamp = time.Now()
	ch <- ev
}
