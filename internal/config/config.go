package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/exam-timetabler/pkg/core/horizon"
	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// EnvPrefix is prepended to every environment override, e.g. EXAM_DATABASE_URL
const EnvPrefix = "EXAM_"

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"

	GroupByDepartment = "department"
	GroupByNone       = "none"
)

// DatasetConfig selects where courses, rooms and constraints are read from
type DatasetConfig struct {
	Source string `yaml:"source" env:"SOURCE" validate:"oneof=file postgres"`

	// Path is a YAML or JSON dataset file. Empty uses the built-in dataset.
	Path string `yaml:"path,omitempty" env:"PATH"`
}

type DatabaseConfig struct {
	URL string `yaml:"url,omitempty" env:"URL"`
}

// HorizonConfig describes the exam days and time slots
type HorizonConfig struct {
	StartDate string   `yaml:"startDate,omitempty" env:"START_DATE" validate:"omitempty,datetime=2006-01-02"`
	DayCount  int      `yaml:"dayCount" env:"DAY_COUNT" validate:"gte=0"`
	DayRule   string   `yaml:"dayRule" env:"DAY_RULE" validate:"required"`
	TimeSlots []string `yaml:"timeSlots" validate:"min=1,dive,required"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr" env:"ADDR" validate:"required"`
	ShutdownTimeout int    `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT" validate:"gte=0"`
}

// Config represents the application configuration
type Config struct {
	Dataset       DatasetConfig             `yaml:"dataset" envPrefix:"DATASET_"`
	Database      DatabaseConfig            `yaml:"database" envPrefix:"DATABASE_"`
	Horizon       HorizonConfig             `yaml:"horizon" envPrefix:"HORIZON_"`
	Algorithm     model.Algorithm           `yaml:"algorithm" env:"ALGORITHM" validate:"oneof=GENETIC_ALGORITHM SIMULATED_ANNEALING"`
	Seed          int64                     `yaml:"seed" env:"SEED"`
	Params        model.AlgorithmParameters `yaml:"params"`
	SpreadGroupBy string                    `yaml:"spreadGroupBy" env:"SPREAD_GROUP_BY" validate:"oneof=department none"`
	Server        ServerConfig              `yaml:"server" envPrefix:"SERVER_"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used for any value not set in the config file
func Default() Config {
	return Config{
		Dataset: DatasetConfig{Source: SourceFile},
		Horizon: HorizonConfig{
			DayCount:  horizon.DefaultDayCount,
			DayRule:   horizon.DefaultDayRule,
			TimeSlots: append([]string(nil), horizon.DefaultTimeSlots...),
		},
		Algorithm:     model.AlgorithmGenetic,
		Params:        model.DefaultParameters(),
		SpreadGroupBy: GroupByDepartment,
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10,
		},
	}
}

// LoadWithEnv loads exam_config.<env>.yaml (exam_config.yaml when env is empty) from the current
// directory or the user's home directory, applies EXAM_* environment overrides and validates.
// A missing config file is not an error: defaults and overrides are used instead.
func LoadWithEnv(envName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(envName)
	if err != nil {
		cfg := Default()
		return finalise(&cfg)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finalise(&cfg)
}

func finalise(cfg *Config) (*Config, error) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and checks the day rule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := rrule.StrToRRule(cfg.Horizon.DayRule); err != nil {
		return fmt.Errorf("invalid rrule in horizon.dayRule: %w", err)
	}

	if cfg.Dataset.Source == SourcePostgres && cfg.Database.URL == "" {
		return fmt.Errorf("config validation failed: database.url is required when dataset.source is %s", SourcePostgres)
	}

	return nil
}

// StartDate returns the configured first exam day, or today when none is set
func (c *Config) StartDate(now time.Time) (time.Time, error) {
	if c.Horizon.StartDate == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	start, err := time.Parse("2006-01-02", c.Horizon.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse horizon.startDate: %w", err)
	}
	return start, nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(envName string) (string, error) {
	configFileName := "exam_config.yaml"
	if envName != "" {
		configFileName = "exam_config." + envName + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
