package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
)

// Global configuration structure.
type Global struct {
	StudiesDir string `mapstructure:"studies_dir" yaml:"studies_dir"`

	// Cross-tab defaults
	Alpha           float64 `mapstructure:"alpha" yaml:"alpha"`
	ShowCounts      bool    `mapstructure:"show_counts" yaml:"show_counts"`
	ShowPercentages bool    `mapstructure:"show_percentages" yaml:"show_percentages"`

	// Detection
	DetectSampleRows         int     `mapstructure:"detect_sample_rows" yaml:"detect_sample_rows"`
	MultiSelectMinConfidence float64 `mapstructure:"multiselect_min_confidence" yaml:"multiselect_min_confidence"`

	// Open-ended coding
	CodingMethod              string  `mapstructure:"coding_method" yaml:"coding_method"`
	CodingMinCategorySize     int     `mapstructure:"coding_min_category_size" yaml:"coding_min_category_size"`
	CodingMaxCategories       int     `mapstructure:"coding_max_categories" yaml:"coding_max_categories"`
	CodingSimilarityThreshold float64 `mapstructure:"coding_similarity_threshold" yaml:"coding_similarity_threshold"`
	CodingMinResponseLength   int     `mapstructure:"coding_min_response_length" yaml:"coding_min_response_length"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP server
	ServerAddr       string `mapstructure:"server_addr" yaml:"server_addr"`
	ServerTimeoutSec int    `mapstructure:"server_timeout_sec" yaml:"server_timeout_sec"`
}

// Coding returns the open-ended coding settings described by the config.
func (c *Global) Coding() openend.Settings {
	return openend.Settings{
		Method:              openend.Method(c.CodingMethod),
		MinCategorySize:     c.CodingMinCategorySize,
		MaxCategories:       c.CodingMaxCategories,
		SimilarityThreshold: c.CodingSimilarityThreshold,
		MinResponseLength:   c.CodingMinResponseLength,
	}
}

// ReportOptions returns the default output matrices.
func (c *Global) ReportOptions() report.Options {
	return report.Options{Counts: c.ShowCounts, Percentages: c.ShowPercentages}
}

// Default returns the built-in settings, without a studies directory.
func Default() *Global {
	coding := openend.DefaultSettings()
	return &Global{
		Alpha:                     0.05,
		ShowCounts:                true,
		ShowPercentages:           true,
		DetectSampleRows:          200,
		MultiSelectMinConfidence:  0.5,
		CodingMethod:              string(coding.Method),
		CodingMinCategorySize:     coding.MinCategorySize,
		CodingMaxCategories:       coding.MaxCategories,
		CodingSimilarityThreshold: coding.SimilarityThreshold,
		CodingMinResponseLength:   coding.MinResponseLength,
		LogLevel:                  "warn",
		LogFormat:                 "text",
		ServerAddr:                "127.0.0.1:8080",
		ServerTimeoutSec:          60,
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABLOOM")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("show_counts", d.ShowCounts)
	v.SetDefault("show_percentages", d.ShowPercentages)
	v.SetDefault("detect_sample_rows", d.DetectSampleRows)
	v.SetDefault("multiselect_min_confidence", d.MultiSelectMinConfidence)
	v.SetDefault("coding_method", d.CodingMethod)
	v.SetDefault("coding_min_category_size", d.CodingMinCategorySize)
	v.SetDefault("coding_max_categories", d.CodingMaxCategories)
	v.SetDefault("coding_similarity_threshold", d.CodingSimilarityThreshold)
	v.SetDefault("coding_min_response_length", d.CodingMinResponseLength)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("server_addr", d.ServerAddr)
	v.SetDefault("server_timeout_sec", d.ServerTimeoutSec)
	v.SetDefault("studies_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.StudiesDir == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		c.StudiesDir = filepath.Join(dir, "studies")
	}
	return &c, nil
}
