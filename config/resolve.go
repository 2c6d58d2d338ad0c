package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
)

// Options controls a single resolution.
type Options struct {
	// ConfigPath is the JSON config file; DefaultConfigPath when empty.
	ConfigPath string

	// Inline overrides the file, key for key (nested objects merge).
	Inline map[string]any

	// DisableAI forces ai.enabled = false after every other layer.
	DisableAI bool

	// Getenv looks up credentials; os.Getenv when nil.
	Getenv func(string) string
}

// Resolve merges defaults, the config file, the inline object and the
// disable flag, then normalises the result. It never fails on a bad config
// file; only a decode error of the merged map is returned.
func Resolve(opts Options) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}
	if fileMap := ReadFile(path); len(fileMap) > 0 {
		if err := v.MergeConfigMap(fileMap); err != nil {
			logger.Logger.Warnw("Ignoring config file", logger.FieldFile, path, logger.FieldError, err.Error())
		}
	}

	if len(opts.Inline) > 0 {
		if err := v.MergeConfigMap(opts.Inline); err != nil {
			return nil, errors.Wrap(err, "merge inline config")
		}
	}

	if opts.DisableAI {
		v.Set("ai.enabled", false)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	Normalize(cfg, getenv)
	Sanitize(cfg)
	return cfg, nil
}

// LoadWithViper decodes a prepared viper instance into a Config
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// ReadFile parses path as a JSON object. A missing file, invalid JSON or a
// non-object root all yield nil.
func ReadFile(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Logger.Warnw("Config file unreadable, using defaults", logger.FieldFile, path, logger.FieldError, err.Error())
		} else {
			logger.Logger.Debugw("No config file", logger.FieldFile, path)
		}
		return nil
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		logger.Logger.Warnw("Config file is not valid JSON, using defaults", logger.FieldFile, path, logger.FieldError, err.Error())
		return nil
	}
	obj, ok := root.(map[string]any)
	if !ok {
		logger.Logger.Warnw("Config file root is not an object, using defaults", logger.FieldFile, path)
		return nil
	}
	return obj
}

// Normalize applies the post-merge rules: provider coercion, the provider
// default swap, credential lookup and prompt/timeout defaults.
func Normalize(cfg *Config, getenv func(string) string) {
	cfg.AI.Provider = CoerceProvider(string(cfg.AI.Provider))

	// Fields still holding the other provider's default are treated as
	// unset and take this provider's default.
	own := DefaultsFor(cfg.AI.Provider)
	other := DefaultsFor(otherProvider(cfg.AI.Provider))
	if cfg.AI.Model == "" || cfg.AI.Model == other.Model {
		cfg.AI.Model = own.Model
	}
	if cfg.AI.BaseURL == "" || cfg.AI.BaseURL == other.BaseURL {
		cfg.AI.BaseURL = own.BaseURL
	}

	if strings.TrimSpace(cfg.AI.APIKey) == "" {
		cfg.AI.APIKey = ""
		for _, name := range own.EnvKeys {
			if key := strings.TrimSpace(getenv(name)); key != "" {
				cfg.AI.APIKey = key
				break
			}
		}
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.Enabled = false
	}

	if strings.TrimSpace(cfg.AI.PromptTemplate) == "" {
		cfg.AI.PromptTemplate = DefaultPromptTemplate
	}
	if cfg.AI.TimeoutMs <= 0 {
		cfg.AI.TimeoutMs = DefaultTimeoutMs
	}
}

// CoerceProvider maps any value onto a known provider; unknown values
// become openai.
func CoerceProvider(raw string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderGemini:
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

func otherProvider(p Provider) Provider {
	if p == ProviderGemini {
		return ProviderOpenAI
	}
	return ProviderGemini
}
