package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envOf(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsdoc-builder.config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.json"), Getenv: noEnv})
	require.NoError(t, err)

	assert.Equal(t, DefaultDescriptionLine, cfg.Template.DescriptionLine)
	assert.Equal(t, DefaultParamLine, cfg.Template.ParamLine)
	assert.Equal(t, DefaultReturnsLine, cfg.Template.ReturnsLine)
	assert.True(t, cfg.IncludeReturnsWhenVoid)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, DefaultTimeoutMs, cfg.AI.TimeoutMs)
	assert.Equal(t, DefaultPromptTemplate, cfg.AI.PromptTemplate)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-9)
	assert.False(t, cfg.AI.Enabled, "no credential forces AI off")
	assert.Equal(t, "both", cfg.Hook.Apply)
	assert.Contains(t, cfg.Hook.Extensions, ".vue")
}

func TestResolve_Precedence(t *testing.T) {
	path := writeConfig(t, `{
		"template": {"descriptionLine": "file desc"},
		"includeReturnsWhenVoid": false,
		"ai": {"apiKey": "from-file", "timeoutMs": 1000}
	}`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Resolve(Options{ConfigPath: path, Getenv: noEnv})
		require.NoError(t, err)
		assert.Equal(t, "file desc", cfg.Template.DescriptionLine)
		assert.Equal(t, DefaultParamLine, cfg.Template.ParamLine, "sibling keys keep defaults")
		assert.False(t, cfg.IncludeReturnsWhenVoid)
		assert.Equal(t, 1000, cfg.AI.TimeoutMs)
		assert.True(t, cfg.AI.Enabled)
	})

	t.Run("inline over file", func(t *testing.T) {
		cfg, err := Resolve(Options{
			ConfigPath: path,
			Inline: map[string]any{
				"template": map[string]any{"paramLine": "@arg {{name}}"},
				"ai":       map[string]any{"timeoutMs": 2500},
			},
			Getenv: noEnv,
		})
		require.NoError(t, err)
		assert.Equal(t, "file desc", cfg.Template.DescriptionLine)
		assert.Equal(t, "@arg {{name}}", cfg.Template.ParamLine)
		assert.Equal(t, 2500, cfg.AI.TimeoutMs)
	})

	t.Run("disable flag wins", func(t *testing.T) {
		cfg, err := Resolve(Options{
			ConfigPath: path,
			Inline:     map[string]any{"ai": map[string]any{"enabled": true}},
			DisableAI:  true,
			Getenv:     noEnv,
		})
		require.NoError(t, err)
		assert.False(t, cfg.AI.Enabled)
		assert.Equal(t, "from-file", cfg.AI.APIKey)
	})
}

func TestResolve_BadFileIsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"invalid json": `{"ai": `,
		"array root":   `[1, 2, 3]`,
		"string root":  `"hello"`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Resolve(Options{ConfigPath: writeConfig(t, body), Getenv: noEnv})
			require.NoError(t, err)
			assert.Equal(t, DefaultDescriptionLine, cfg.Template.DescriptionLine)
			assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
		})
	}
}

func TestNormalize_Provider(t *testing.T) {
	t.Run("unknown provider becomes openai", func(t *testing.T) {
		cfg, err := Resolve(Options{
			ConfigPath: "does-not-exist.json",
			Inline:     map[string]any{"ai": map[string]any{"provider": "anthropic"}},
			Getenv:     noEnv,
		})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	})

	t.Run("gemini swaps openai defaults", func(t *testing.T) {
		cfg, err := Resolve(Options{
			ConfigPath: "does-not-exist.json",
			Inline:     map[string]any{"ai": map[string]any{"provider": "Gemini"}},
			Getenv:     noEnv,
		})
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.AI.Provider)
		assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
		assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", cfg.AI.BaseURL)
	})

	t.Run("custom model survives provider switch", func(t *testing.T) {
		cfg, err := Resolve(Options{
			ConfigPath: "does-not-exist.json",
			Inline:     map[string]any{"ai": map[string]any{"provider": "gemini", "model": "gemini-2.0-pro"}},
			Getenv:     noEnv,
		})
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.0-pro", cfg.AI.Model)
	})

	t.Run("value equal to other default is replaced", func(t *testing.T) {
		cfg := Default()
		cfg.AI.Model = "gemini-1.5-flash"
		Normalize(&cfg, noEnv)
		assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	})
}

func TestNormalize_Credentials(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		env      map[string]string
		wantKey  string
	}{
		{"openai env", ProviderOpenAI, map[string]string{"OPENAI_API_KEY": "sk-1"}, "sk-1"},
		{"openai ignores gemini env", ProviderOpenAI, map[string]string{"GEMINI_API_KEY": "g"}, ""},
		{"gemini prefers GEMINI_API_KEY", ProviderGemini, map[string]string{"GEMINI_API_KEY": "g1", "GOOGLE_API_KEY": "g2"}, "g1"},
		{"gemini falls back to GOOGLE_API_KEY", ProviderGemini, map[string]string{"GOOGLE_API_KEY": "g2"}, "g2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AI.Provider = tt.provider
			Normalize(&cfg, envOf(tt.env))
			assert.Equal(t, tt.wantKey, cfg.AI.APIKey)
			assert.Equal(t, tt.wantKey != "", cfg.AI.Enabled)
		})
	}

	t.Run("configured key beats env", func(t *testing.T) {
		cfg := Default()
		cfg.AI.APIKey = "explicit"
		Normalize(&cfg, envOf(map[string]string{"OPENAI_API_KEY": "env"}))
		assert.Equal(t, "explicit", cfg.AI.APIKey)
		assert.True(t, cfg.AI.Enabled)
	})

	t.Run("disabled stays disabled with key", func(t *testing.T) {
		cfg := Default()
		cfg.AI.Enabled = false
		Normalize(&cfg, envOf(map[string]string{"OPENAI_API_KEY": "env"}))
		assert.False(t, cfg.AI.Enabled)
	})
}

func TestNormalize_PromptAndTimeout(t *testing.T) {
	cfg := Default()
	cfg.AI.PromptTemplate = "   "
	cfg.AI.TimeoutMs = -5
	Normalize(&cfg, noEnv)
	assert.Equal(t, DefaultPromptTemplate, cfg.AI.PromptTemplate)
	assert.Equal(t, DefaultTimeoutMs, cfg.AI.TimeoutMs)
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.AI.BaseURL = "not a url"
	cfg.AI.Temperature = 7
	cfg.Hook.Apply = "sometimes"
	cfg.Oracle.TimeoutMs = -1

	Sanitize(&cfg)

	assert.Equal(t, DefaultsFor(ProviderOpenAI).BaseURL, cfg.AI.BaseURL)
	assert.InDelta(t, DefaultTemperature, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, "both", cfg.Hook.Apply)
	assert.Equal(t, DefaultOracleTimeoutMs, cfg.Oracle.TimeoutMs)
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKey = "sk-abcdef1234"
	out := cfg.Redacted()
	assert.Equal(t, "****1234", out.AI.APIKey)
	assert.Equal(t, "sk-abcdef1234", cfg.AI.APIKey)
}
