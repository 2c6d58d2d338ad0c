package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/teranos/jsdoc-builder/logger"
)

var validate = validator.New()

// Sanitize validates cfg and resets every invalid field to its default.
// Config problems are logged, never fatal.
func Sanitize(cfg *Config) {
	err := validate.Struct(cfg)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		logger.Logger.Warnw("Config validation failed", logger.FieldError, err.Error())
		return
	}

	def := Default()
	for _, fe := range verrs {
		logger.Logger.Warnw("Invalid config value, using default",
			logger.FieldKey, fe.Namespace(),
			"rule", fe.Tag(),
			"value", fe.Value())

		switch fe.StructNamespace() {
		case "Config.AI.BaseURL":
			cfg.AI.BaseURL = DefaultsFor(cfg.AI.Provider).BaseURL
		case "Config.AI.Temperature":
			cfg.AI.Temperature = def.AI.Temperature
		case "Config.AI.RequestsPerMinute":
			cfg.AI.RequestsPerMinute = def.AI.RequestsPerMinute
		case "Config.Oracle.TimeoutMs":
			cfg.Oracle.TimeoutMs = def.Oracle.TimeoutMs
		case "Config.Hook.Apply":
			cfg.Hook.Apply = def.Hook.Apply
		}
	}
}
