package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable, e.g. EXPORTPARSE_LOG_LEVEL.
const Prefix = "EXPORTPARSE"

type Config struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"auto"` // auto, json or text
	OutputDir    string `envconfig:"OUTPUT_DIR" default:"."`
	OutputFormat string `envconfig:"OUTPUT_FORMAT" default:"json"` // json, jsonl or both
	ProjectMap   string `envconfig:"PROJECT_MAP"`
	PreviewWidth int    `envconfig:"PREVIEW_WIDTH" default:"200"`
}

// Load reads an optional .env file (or the given files) and then the
// environment. Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("auto", "json", "text")),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.OutputFormat, validation.Required, validation.In("json", "jsonl", "both")),
		validation.Field(&c.PreviewWidth, validation.Required, validation.Min(1)),
	)
}
