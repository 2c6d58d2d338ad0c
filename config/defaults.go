package config

import (
	"github.com/spf13/viper"
)

// ProviderDefaults are the per-provider model and endpoint defaults.
type ProviderDefaults struct {
	Model   string
	BaseURL string
	EnvKeys []string // consulted in order when no apiKey is configured
}

var providerDefaults = map[Provider]ProviderDefaults{
	ProviderOpenAI: {
		Model:   "gpt-4o-mini",
		BaseURL: "https://api.openai.com/v1/chat/completions",
		EnvKeys: []string{"OPENAI_API_KEY"},
	},
	ProviderGemini: {
		Model:   "gemini-1.5-flash",
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		EnvKeys: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	},
}

// DefaultsFor returns the built-in defaults for p (openai for unknown values).
func DefaultsFor(p Provider) ProviderDefaults {
	if d, ok := providerDefaults[p]; ok {
		return d
	}
	return providerDefaults[ProviderOpenAI]
}

const (
	DefaultDescriptionLine = "{{description}}"
	DefaultParamLine       = "@param {{{type}}} {{name}}"
	DefaultReturnsLine     = "@returns {{{returnType}}}"

	DefaultTimeoutMs       = 15000
	DefaultTemperature     = 0.2
	DefaultOracleCommand   = "typescript-language-server --stdio"
	DefaultOracleTimeoutMs = 5000
	DefaultHookApply       = "both"

	DefaultPromptTemplate = "Describe what the function `{{functionName}}` does in one short sentence. " +
		"It takes {{paramsCount}} parameter(s) and returns {{returnType}}. Reply with the sentence only."

	// SystemPrompt is sent with every description request.
	SystemPrompt = "You write concise one-sentence JSDoc descriptions for JavaScript and TypeScript functions."
)

// DefaultExtensions are the file extensions the hook and batch walker recognise.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".mts", ".cts", ".vue", ".svelte"}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Comment templates
	v.SetDefault("template.descriptionLine", DefaultDescriptionLine)
	v.SetDefault("template.paramLine", DefaultParamLine)
	v.SetDefault("template.returnsLine", DefaultReturnsLine)
	v.SetDefault("includeReturnsWhenVoid", true)

	// AI provider (openai unless the file says otherwise)
	openai := providerDefaults[ProviderOpenAI]
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", string(ProviderOpenAI))
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.model", openai.Model)
	v.SetDefault("ai.baseUrl", openai.BaseURL)
	v.SetDefault("ai.timeoutMs", DefaultTimeoutMs)
	v.SetDefault("ai.promptTemplate", DefaultPromptTemplate)
	v.SetDefault("ai.temperature", DefaultTemperature)
	v.SetDefault("ai.requestsPerMinute", 0) // unlimited

	// Type oracle (opt-in; needs a language server on PATH)
	v.SetDefault("oracle.enabled", false)
	v.SetDefault("oracle.command", DefaultOracleCommand)
	v.SetDefault("oracle.timeoutMs", DefaultOracleTimeoutMs)

	// Build-tool hook
	v.SetDefault("hook.apply", DefaultHookApply)
	v.SetDefault("hook.include", []string{})
	v.SetDefault("hook.exclude", []string{})
	v.SetDefault("hook.extensions", DefaultExtensions)
}

// Default returns the configuration produced by defaults alone, before
// credential lookup.
func Default() Config {
	return Config{
		Template: Template{
			DescriptionLine: DefaultDescriptionLine,
			ParamLine:       DefaultParamLine,
			ReturnsLine:     DefaultReturnsLine,
		},
		IncludeReturnsWhenVoid: true,
		AI: AIConfig{
			Enabled:        true,
			Provider:       ProviderOpenAI,
			Model:          providerDefaults[ProviderOpenAI].Model,
			BaseURL:        providerDefaults[ProviderOpenAI].BaseURL,
			TimeoutMs:      DefaultTimeoutMs,
			PromptTemplate: DefaultPromptTemplate,
			Temperature:    DefaultTemperature,
		},
		Oracle: OracleConfig{
			Command:   DefaultOracleCommand,
			TimeoutMs: DefaultOracleTimeoutMs,
		},
		Hook: HookConfig{
			Apply:      DefaultHookApply,
			Extensions: append([]string(nil), DefaultExtensions...),
		},
	}
}
