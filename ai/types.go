package ai

// GenerateOptions holds optional parameters for a generation call.
type GenerateOptions struct {
	// Temperature controls sampling randomness. Negative means "model default".
	Temperature float64

	// MaxTokens bounds the completion length. Zero means "model default".
	MaxTokens int
}

// GenerateOption configures a single generation call.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temperature
	}
}

// WithMaxTokens bounds the completion length in tokens.
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = maxTokens
	}
}

// NewGenerateOptions applies the given options over defaults.
func NewGenerateOptions(opts ...GenerateOption) *GenerateOptions {
	o := &GenerateOptions{Temperature: -1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
