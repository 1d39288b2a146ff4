// Package llm provides centralized LLM configuration and client abstractions.
// The engine talks to the model through the Client interface so tests can swap in fakes.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap calls such as search keyword phrases
	TierLite ModelTier = "lite"
	// TierStandard is for the structured task analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long profiles where reasoning quality matters more than latency
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Generation defaults for structured analysis output
const (
	DefaultTemperature     float32 = 0.3
	DefaultMaxOutputTokens int32   = 4500
)

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithGeneration returns a new Config with the given sampling temperature and output limit.
// Zero values keep the current settings.
func (c *Config) WithGeneration(temperature float32, maxOutputTokens int32) *Config {
	newConfig := c.clone()
	if temperature > 0 {
		newConfig.Temperature = temperature
	}
	if maxOutputTokens > 0 {
		newConfig.MaxOutputTokens = maxOutputTokens
	}
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := &Config{
		Provider:        c.Provider,
		Models:          make(map[ModelTier]string, len(c.Models)),
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	return newConfig
}
