// Package config resolves the effective jsdoc-builder configuration.
//
// Resolution merges, in increasing precedence: built-in defaults, the JSON
// config file, the caller's inline object, and the --no-ai override. The
// merged result is then normalised (provider coercion, provider defaults,
// credential lookup) into a Config that downstream packages treat as
// read-only.
package config

// Provider names an AI text-generation service.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// DefaultConfigPath is the config file consulted when no path is given.
const DefaultConfigPath = "./jsdoc-builder.config.json"

// Config is the normalised configuration threaded through a run.
type Config struct {
	Template               Template     `mapstructure:"template" json:"template" yaml:"template" toml:"template"`
	IncludeReturnsWhenVoid bool         `mapstructure:"includeReturnsWhenVoid" json:"includeReturnsWhenVoid" yaml:"includeReturnsWhenVoid" toml:"includeReturnsWhenVoid"`
	AI                     AIConfig     `mapstructure:"ai" json:"ai" yaml:"ai" toml:"ai"`
	Oracle                 OracleConfig `mapstructure:"oracle" json:"oracle" yaml:"oracle" toml:"oracle"`
	Hook                   HookConfig   `mapstructure:"hook" json:"hook" yaml:"hook" toml:"hook"`
}

// Template holds the three comment line templates.
type Template struct {
	DescriptionLine string `mapstructure:"descriptionLine" json:"descriptionLine" yaml:"descriptionLine" toml:"descriptionLine"`
	ParamLine       string `mapstructure:"paramLine" json:"paramLine" yaml:"paramLine" toml:"paramLine"`
	ReturnsLine     string `mapstructure:"returnsLine" json:"returnsLine" yaml:"returnsLine" toml:"returnsLine"`
}

// AIConfig configures the description provider.
type AIConfig struct {
	Enabled           bool     `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`
	Provider          Provider `mapstructure:"provider" json:"provider" yaml:"provider" toml:"provider"`
	APIKey            string   `mapstructure:"apiKey" json:"apiKey,omitempty" yaml:"apiKey,omitempty" toml:"apiKey,omitempty"`
	Model             string   `mapstructure:"model" json:"model" yaml:"model" toml:"model"`
	BaseURL           string   `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl" toml:"baseUrl" validate:"omitempty,url"`
	TimeoutMs         int      `mapstructure:"timeoutMs" json:"timeoutMs" yaml:"timeoutMs" toml:"timeoutMs"`
	PromptTemplate    string   `mapstructure:"promptTemplate" json:"promptTemplate" yaml:"promptTemplate" toml:"promptTemplate"`
	Temperature       float64  `mapstructure:"temperature" json:"temperature" yaml:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
	RequestsPerMinute int      `mapstructure:"requestsPerMinute" json:"requestsPerMinute" yaml:"requestsPerMinute" toml:"requestsPerMinute" validate:"gte=0"`
}

// OracleConfig configures the optional language-server type oracle.
type OracleConfig struct {
	Enabled   bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`
	Command   string `mapstructure:"command" json:"command" yaml:"command" toml:"command"`
	TimeoutMs int    `mapstructure:"timeoutMs" json:"timeoutMs" yaml:"timeoutMs" toml:"timeoutMs" validate:"gte=0"`
}

// HookConfig configures the build-tool transform hook.
type HookConfig struct {
	Apply      string   `mapstructure:"apply" json:"apply" yaml:"apply" toml:"apply" validate:"oneof=serve build both"`
	Include    []string `mapstructure:"include" json:"include" yaml:"include" toml:"include"`
	Exclude    []string `mapstructure:"exclude" json:"exclude" yaml:"exclude" toml:"exclude"`
	Extensions []string `mapstructure:"extensions" json:"extensions" yaml:"extensions" toml:"extensions"`
}

// Redacted returns a copy safe to print: the API key is masked.
func (c Config) Redacted() Config {
	out := c
	if out.AI.APIKey != "" {
		key := out.AI.APIKey
		if len(key) > 4 {
			out.AI.APIKey = "****" + key[len(key)-4:]
		} else {
			out.AI.APIKey = "****"
		}
	}
	out.Hook.Include = append([]string(nil), c.Hook.Include...)
	out.Hook.Exclude = append([]string(nil), c.Hook.Exclude...)
	out.Hook.Extensions = append([]string(nil), c.Hook.Extensions...)
	return out
}
