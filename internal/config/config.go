package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"riskreport"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `envconfig:"LOG_FORMAT" default:"console" validate:"oneof=console json"`
	}

	Data struct {
		Dir       string `envconfig:"DATA_DIR" default:"data"`
		SampleDir string `envconfig:"SAMPLE_DIR" default:"sample_data"`
		Pattern   string `envconfig:"DATA_PATTERN" default:"*.xml" validate:"required"`
	}

	Output struct {
		Dir     string   `envconfig:"OUTPUT_DIR" default:"output" validate:"required"`
		Formats []string `envconfig:"OUTPUT_FORMATS" default:"csv,json" validate:"min=1,dive,oneof=csv json xlsx"`
	}

	Workers int `envconfig:"WORKERS" default:"4" validate:"min=1,max=64"`

	DB struct {
		Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432" validate:"min=1,max=65535"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"creditrisk"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// DataDir returns the configured data directory, or the sample directory
// when the former does not exist.
func (c *Config) DataDir() string {
	if info, err := os.Stat(c.Data.Dir); err == nil && info.IsDir() {
		return c.Data.Dir
	}

	if info, err := os.Stat(c.Data.SampleDir); err == nil && info.IsDir() {
		return c.Data.SampleDir
	}

	return c.Data.Dir
}

// Validate checks ranges and enumerations. Callers that override values
// after Load should call it again.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
