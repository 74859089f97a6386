package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"gopkg.in/yaml.v3"

	"github.com/christophergentle/goaltracker/internal/graph"
	"github.com/christophergentle/goaltracker/internal/store"
)

// FileName is the name of the configuration file
const FileName = "goaltracker.yaml"

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Graph   GraphConfig   `yaml:"graph"`
	Backup  BackupConfig  `yaml:"backup"`
}

type StorageConfig struct {
	Region        string `yaml:"region"`
	TasksTable    string `yaml:"tasks_table"`
	ReportsTable  string `yaml:"reports_table"`
	CountersTable string `yaml:"counters_table"`
}

type GraphConfig struct {
	Width       int          `yaml:"width"`
	Height      int          `yaml:"height"`
	LabelMargin float64      `yaml:"label_margin"`
	TickSize    int          `yaml:"tick_size"`
	Colors      ColorsConfig `yaml:"colors"`
}

// ColorsConfig overrides palette colors. Values are "#rrggbb" or "#aarrggbb".
type ColorsConfig struct {
	Background            string `yaml:"background"`
	Grid                  string `yaml:"grid"`
	Axes                  string `yaml:"axes"`
	CurrentValue          string `yaml:"current_value"`
	Progress              string `yaml:"progress"`
	SelectedDate          string `yaml:"selected_date"`
	SelectedValue         string `yaml:"selected_value"`
	SelectedValueNegative string `yaml:"selected_value_negative"`
	Labels                string `yaml:"labels"`
}

type BackupConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	OutputDir string `yaml:"output_dir"`
	Compress  bool   `yaml:"compress"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found. Please copy goaltracker.example.yaml to %s", path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration and applies defaults
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromEnv loads configuration from environment variables (fallback)
func LoadConfigFromEnv() *Config {
	config := &Config{
		Storage: StorageConfig{
			Region:        os.Getenv("AWS_REGION"),
			TasksTable:    os.Getenv("GOALTRACKER_TASKS_TABLE"),
			ReportsTable:  os.Getenv("GOALTRACKER_REPORTS_TABLE"),
			CountersTable: os.Getenv("GOALTRACKER_COUNTERS_TABLE"),
		},
		Graph: GraphConfig{
			Width:  parseIntWithDefault(os.Getenv("GOALTRACKER_GRAPH_WIDTH"), 0),
			Height: parseIntWithDefault(os.Getenv("GOALTRACKER_GRAPH_HEIGHT"), 0),
		},
		Backup: BackupConfig{
			Bucket:   os.Getenv("GOALTRACKER_BACKUP_BUCKET"),
			Prefix:   os.Getenv("GOALTRACKER_BACKUP_PREFIX"),
			Compress: os.Getenv("GOALTRACKER_BACKUP_COMPRESS") != "false",
		},
	}
	config.applyDefaults()
	return config
}

// Load reads the config file when one exists and falls back to the
// environment otherwise
func Load() (*Config, error) {
	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		return LoadConfig(path)
	}
	return LoadConfigFromEnv(), nil
}

// AWSOptions returns AWS load options for the configured region
func (c *Config) AWSOptions() []func(*awsconfig.LoadOptions) error {
	if c.Storage.Region == "" {
		return nil
	}
	return []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Storage.Region)}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if path := os.Getenv("GOALTRACKER_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	if exe, err := os.Executable(); err == nil {
		configPath := filepath.Join(filepath.Dir(exe), FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return FileName
}

func (c *Config) applyDefaults() {
	tables := store.DefaultTables()
	if c.Storage.TasksTable == "" {
		c.Storage.TasksTable = tables.Tasks
	}
	if c.Storage.ReportsTable == "" {
		c.Storage.ReportsTable = tables.Reports
	}
	if c.Storage.CountersTable == "" {
		c.Storage.CountersTable = tables.Counters
	}

	defaults := graph.DefaultConfig()
	if c.Graph.Width == 0 {
		c.Graph.Width = 600
	}
	if c.Graph.Height == 0 {
		c.Graph.Height = 300
	}
	if c.Graph.LabelMargin == 0 {
		c.Graph.LabelMargin = defaults.LabelMargin
	}
	if c.Graph.TickSize == 0 {
		c.Graph.TickSize = defaults.TickSize
	}

	if c.Backup.Prefix == "" {
		c.Backup.Prefix = "backups"
	}
	if c.Backup.OutputDir == "" {
		c.Backup.OutputDir = "./backups"
	}
}

func (c *Config) validate() error {
	if c.Graph.Width < 0 || c.Graph.Height < 0 {
		return &ConfigError{Message: fmt.Sprintf("graph size must be positive, got %dx%d", c.Graph.Width, c.Graph.Height)}
	}
	if _, err := c.ComposerConfig(); err != nil {
		return err
	}
	return nil
}

// Tables returns the DynamoDB table names
func (c *Config) Tables() store.Tables {
	return store.Tables{
		Tasks:    c.Storage.TasksTable,
		Reports:  c.Storage.ReportsTable,
		Counters: c.Storage.CountersTable,
	}
}

// Canvas returns the configured graph canvas. Canvas bounds are inclusive
// pixel coordinates.
func (c *Config) Canvas() graph.Canvas {
	return graph.Canvas{XMax: c.Graph.Width - 1, YMax: c.Graph.Height - 1}
}

// ComposerConfig builds the graph composer configuration, applying color
// overrides on top of the default palette.
func (c *Config) ComposerConfig() (*graph.ComposerConfig, error) {
	composer := graph.DefaultConfig()
	composer.LabelMargin = c.Graph.LabelMargin
	composer.TickSize = c.Graph.TickSize

	p := &composer.Palette
	overrides := []struct {
		name  string
		value string
		style *graph.Style
	}{
		{"background", c.Graph.Colors.Background, &p.Background},
		{"grid", c.Graph.Colors.Grid, &p.Grid},
		{"axes", c.Graph.Colors.Axes, &p.Axes},
		{"current_value", c.Graph.Colors.CurrentValue, &p.CurrentValue},
		{"progress", c.Graph.Colors.Progress, &p.Progress},
		{"selected_date", c.Graph.Colors.SelectedDate, &p.SelectedDate},
		{"selected_value", c.Graph.Colors.SelectedValue, &p.SelectedValue},
		{"selected_value_negative", c.Graph.Colors.SelectedValueNegative, &p.SelectedValueNegative},
		{"labels", c.Graph.Colors.Labels, &p.Labels},
	}

	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		parsed, err := ParseColor(o.value)
		if err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("invalid %s color", o.name), Details: []string{err.Error()}}
		}
		o.style.Color = parsed
	}

	return composer, nil
}

// ParseColor parses "#rrggbb" or "#aarrggbb"
func ParseColor(value string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("color %q must be #rrggbb or #aarrggbb", value)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not hexadecimal: %w", value, err)
	}

	alpha := uint8(255)
	if len(hex) == 8 {
		alpha = uint8(n >> 24)
	}

	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: alpha}, nil
}

// parseIntWithDefault parses an integer with a default value
func parseIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
	Details []string
}

func (e *ConfigError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, ", ")
	}
	return e.Message
}
