package config

import (
	"os"
	"strings"
)

// providerKeyEnv lists the conventional API key variables per provider.
var providerKeyEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"azure":     {"AZURE_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// APIKey returns configured when set, otherwise the provider's conventional
// environment variable. Ollama needs no key.
func APIKey(provider, configured string) string {
	if configured != "" {
		return configured
	}
	for _, env := range providerKeyEnv[strings.ToLower(provider)] {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}
