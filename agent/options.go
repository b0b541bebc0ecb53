package agent

import (
	"context"
	"time"

	"github.com/spetersoncode/chatter"
)

// DefaultMaxToolIterations caps tool-call round-trips per user turn.
const DefaultMaxToolIterations = 6

// ApproverFunc decides whether a requested tool call may run. A
// rejection reason travels back to the model as an error result.
type ApproverFunc func(ctx context.Context, call chatter.ToolCall) (approved bool, reason string)

// StopFunc is an optional early-exit predicate, consulted after each
// step with the latest response.
type StopFunc func(step int, response *chatter.Response) bool

// Options governs one agent run.
type Options struct {
	// MaxToolIterations limits tool-call round-trips per turn.
	// Default is DefaultMaxToolIterations. Set to 0 for unlimited
	// (not recommended).
	MaxToolIterations int

	// Timeout bounds the whole run. Zero defers to the caller's
	// context deadline.
	Timeout time.Duration

	// HandlerTimeout bounds each tool handler individually.
	// Default 30s; zero disables the per-handler bound.
	HandlerTimeout time.Duration

	// Approver gates tool calls before execution. Nil approves
	// everything.
	Approver ApproverFunc

	// ApprovalRequired narrows the approver to the listed tools.
	// Empty means every tool goes through the approver.
	ApprovalRequired []string

	// StopPredicate ends the run early when it returns true.
	StopPredicate StopFunc

	// ChatOptions pass through to every provider call the run makes.
	ChatOptions []chatter.Option
}

// Option mutates Options.
type Option func(*Options)

// WithMaxToolIterations sets the tool-call loop bound for a turn.
// Default is DefaultMaxToolIterations. Set to 0 for unlimited
// (not recommended).
func WithMaxToolIterations(n int) Option {
	return func(o *Options) {
		o.MaxToolIterations = n
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithHandlerTimeout bounds each tool handler. Default 30s; zero
// disables the bound.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithApprover installs an approval gate consulted before each tool
// execution.
func WithApprover(fn ApproverFunc) Option {
	return func(o *Options) {
		o.Approver = fn
	}
}

// WithApprovalRequired limits the approval gate to the named tools.
func WithApprovalRequired(tools ...string) Option {
	return func(o *Options) {
		o.ApprovalRequired = tools
	}
}

// WithStopPredicate installs an early-exit predicate.
func WithStopPredicate(fn StopFunc) Option {
	return func(o *Options) {
		o.StopPredicate = fn
	}
}

// WithChatOptions forwards provider options to every call in the run.
func WithChatOptions(opts ...chatter.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// WithModel selects the model for the run's provider calls.
func WithModel(model string) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, chatter.WithModel(model))
	}
}

// WithMaxTokens caps output tokens on the run's provider calls.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, chatter.WithMaxTokens(n))
	}
}

// WithTemperature sets sampling temperature on the run's provider calls.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, chatter.WithTemperature(t))
	}
}

// ApplyOptions resolves the option list against the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxToolIterations: DefaultMaxToolIterations,
		HandlerTimeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
