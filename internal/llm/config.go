package llm

// Defaults applied by DefaultConfig.
const (
	DefaultTemperature    = 0.2
	DefaultMaxTokens      = 4000
	DefaultTimeoutSeconds = 60
	DefaultMaxRetries     = 3
)

// Config holds the per-call tunables for a generation request.
type Config struct {
	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps the number of output tokens the model may produce.
	// The default is deliberately generous to avoid truncated JSON payloads.
	MaxTokens int

	// JSONMode asks the vendor to constrain output to a parseable JSON
	// document.
	JSONMode bool

	// TimeoutSeconds is carried for callers that record it, but no adapter
	// currently enforces it. Bound a call with a context deadline instead.
	TimeoutSeconds int

	// MaxRetries is the total attempt budget for the raw vendor call.
	MaxRetries int
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Temperature:    DefaultTemperature,
		MaxTokens:      DefaultMaxTokens,
		JSONMode:       true,
		TimeoutSeconds: DefaultTimeoutSeconds,
		MaxRetries:     DefaultMaxRetries,
	}
}
