package chatter

import "fmt"

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderGoogle    Provider = "google"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// ParseProvider converts a provider name into a Provider.
// It accepts "gemini" as an alias for "google".
func ParseProvider(name string) (Provider, error) {
	switch name {
	case "google", "gemini":
		return ProviderGoogle, nil
	case "ollama":
		return ProviderOllama, nil
	case "anthropic":
		return ProviderAnthropic, nil
	case "openai":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown provider %q", name)
	}
}
