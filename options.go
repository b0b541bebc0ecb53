package chatter

// Options carries the per-request knobs a provider call accepts.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	// Tools lists the function definitions offered to the model.
	Tools []Tool
	// ToolChoice constrains tool selection. Empty means auto.
	ToolChoice ToolChoice
}

// Option mutates Options.
type Option func(*Options)

// WithModel selects the model for the request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens caps the generated output length.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithTools offers the given tools to the model.
func WithTools(tools []Tool) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// WithToolChoice constrains how the model may pick among the tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// ApplyOptions resolves the option list into a single Options value.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
