package llm

// ChatOptions contains options for generating chat completions
type ChatOptions struct {
	Model       string   // Model name/identifier
	Temperature float32  // Controls randomness (0.0 to 1.0)
	TopP        float32  // Controls diversity (0.0 to 1.0)
	MaxTokens   int      // Maximum number of tokens to generate
	Stop        []string // Stop sequences
	User        string   // Identifier representing end-user
	JSONMode    bool     // Request output in JSON object format
}

// Option is a function type to modify ChatOptions
type Option func(*ChatOptions)

// DefaultOptions returns the default chat options
func DefaultOptions() *ChatOptions {
	return &ChatOptions{}
}

// WithModel sets the model to use
func WithModel(model string) Option {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temp float32) Option {
	return func(o *ChatOptions) {
		o.Temperature = temp
	}
}

// WithTopP sets nucleus sampling parameter
func WithTopP(topP float32) Option {
	return func(o *ChatOptions) {
		o.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate
func WithMaxTokens(tokens int) Option {
	return func(o *ChatOptions) {
		o.MaxTokens = tokens
	}
}

// WithStop sets sequences where the API will stop generating further tokens
func WithStop(stop []string) Option {
	return func(o *ChatOptions) {
		o.Stop = stop
	}
}

// WithUser sets the end-user identifier
func WithUser(user string) Option {
	return func(o *ChatOptions) {
		o.User = user
	}
}

// WithJSONMode enables JSON mode
func WithJSONMode() Option {
	return func(o *ChatOptions) {
		o.JSONMode = true
	}
}
