// Package config loads the immutable run configuration. It is constructed
// once at startup and passed into each component; nothing in the scoring or
// filtering path reads ambient state.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources     []Source    `yaml:"sources"`
	Pipeline    Pipeline    `yaml:"pipeline"`
	Fetch       Fetch       `yaml:"fetch"`
	Translation Translation `yaml:"translation"`
	Output      Output      `yaml:"output"`
	Server      Server      `yaml:"server"`
}

// Source is one configured feed.
type Source struct {
	Name      string  `yaml:"name"`
	URL       string  `yaml:"url"`
	Language  string  `yaml:"language"`
	Authority float64 `yaml:"authority"`
	Category  string  `yaml:"category"`
}

// Pipeline holds the filtering and scoring knobs.
type Pipeline struct {
	DaysWindow      int     `yaml:"days_window"`
	RelevanceMin    float64 `yaml:"relevance_min"`
	MaxSummaryChars int     `yaml:"max_summary_chars"`
	Cooccurrence    string  `yaml:"cooccurrence"` // sentence | text
	FuzzyDedup      bool    `yaml:"fuzzy_dedup"`
	FuzzyThreshold  float64 `yaml:"fuzzy_threshold"`
	HighPriorityMin int     `yaml:"high_priority_min"`
	MedPriorityMin  int     `yaml:"medium_priority_min"`
}

// Fetch holds HTTP collection settings.
type Fetch struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	MaxPerFeed     int    `yaml:"max_per_feed"`
	UserAgent      string `yaml:"user_agent"`
	EnrichContent  bool   `yaml:"enrich_content"`
}

// Translation configures the optional local EN→FR translator.
type Translation struct {
	Enabled        bool   `yaml:"enabled"`
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Output controls where run data and reports land.
type Output struct {
	DataDir    string `yaml:"data_dir"`
	ReportDir  string `yaml:"report_dir"`
	ReportFile string `yaml:"report_file"`
	CSVFile    string `yaml:"csv_file"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for navwatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "navwatch")
}

// DataDir returns the XDG data directory for navwatch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "navwatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/navwatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'navwatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	return parse(DefaultConfigYAML)
}

// parse parses YAML bytes into a Config, applying defaults first.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Pipeline: Pipeline{
			DaysWindow:      45,
			RelevanceMin:    0.28,
			MaxSummaryChars: 300,
			Cooccurrence:    "sentence",
			FuzzyThreshold:  0.85,
			HighPriorityMin: 15,
			MedPriorityMin:  8,
		},
		Fetch: Fetch{
			TimeoutSeconds: 25,
			MaxRetries:     3,
			MaxPerFeed:     50,
			UserAgent:      "NavWatch/1.0 (+https://github.com/navwatch/navwatch)",
			EnrichContent:  true,
		},
		Translation: Translation{
			URL:            "http://localhost:5000/translate",
			TimeoutSeconds: 10,
		},
		Output: Output{
			ReportDir:  "docs",
			ReportFile: "index.html",
			CSVFile:    "articles.csv",
		},
		Server: Server{Port: 8000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for i, s := range c.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("source %d: name and url are required", i)
		}
		if s.Authority == 0 {
			c.Sources[i].Authority = 1.0
		}
	}
	if c.Pipeline.Cooccurrence != "sentence" && c.Pipeline.Cooccurrence != "text" {
		return fmt.Errorf("pipeline.cooccurrence must be sentence or text, got %q", c.Pipeline.Cooccurrence)
	}
	if c.Pipeline.RelevanceMin < 0 || c.Pipeline.RelevanceMin > 1.5 {
		return fmt.Errorf("pipeline.relevance_min must be within [0, 1.5]")
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
