package narrative

// Config holds narrative generation settings.
type Config struct {
	// Language the model should answer in, e.g. "English" or "Korean".
	Language    string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for narrative generation.
func DefaultConfig() Config {
	return Config{
		Language:    "English",
		MaxTokens:   1024,
		Temperature: 0.4,
	}
}
