package config

import "fmt"

// Narrative providers.
const (
	ProviderGemini = "gemini"
	ProviderStatic = "static"
)

// NarrativeConfig configures the explanation generator.
type NarrativeConfig struct {
	Provider        string  `yaml:"provider"` // gemini, static
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Timeout         string  `yaml:"timeout"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// UseGemini reports whether live explanations are both requested and possible.
// Without a key the engine serves the static explanations instead of failing.
func (n NarrativeConfig) UseGemini() bool {
	return n.Provider == ProviderGemini && n.APIKey != ""
}

func (n NarrativeConfig) validate() error {
	switch n.Provider {
	case ProviderGemini, ProviderStatic:
	default:
		return fmt.Errorf("invalid narrative provider: %s (valid: %s, %s)", n.Provider, ProviderGemini, ProviderStatic)
	}
	if n.Temperature < 0 || n.Temperature > 2 {
		return fmt.Errorf("narrative temperature out of range: %v", n.Temperature)
	}
	if n.MaxOutputTokens < 0 {
		return fmt.Errorf("narrative max_output_tokens must not be negative")
	}
	return nil
}
