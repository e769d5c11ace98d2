package llmclient

import "strings"

const modelSeparator = "/"

// ResolveModelID returns the model identifier to send: an alias that
// already contains "/" as is, otherwise cfg.ModelName (or the alias)
// prefixed with cfg.Provider in provider/model form, or bare when no
// provider is set; buildChatParams calls this with the agent's
// model_name (spec §3 Agent.model_name) so a gateway routing on a
// provider-prefixed model string still resolves correctly.
func ResolveModelID(alias string, cfg ModelConfig) string {
	model := strings.TrimSpace(alias)
	if strings.Contains(model, modelSeparator) {
		return model
	}

	name := strings.TrimSpace(cfg.ModelName)
	if name == "" {
		name = model
	}

	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" || strings.Contains(name, modelSeparator) {
		return name
	}
	return provider + modelSeparator + name
}

// ParseModelID splits a fully qualified provider/model string, the
// inverse of ResolveModelID; a string without "/" yields an empty
// provider and the whole string as the name.
func ParseModelID(model string) (provider, name string) {
	parts := strings.SplitN(model, modelSeparator, 2)
	if len(parts) != 2 {
		return "", model
	}
	return parts[0], parts[1]
}
