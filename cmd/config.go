package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/logging"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set TabLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "studies_dir: %s\n", cfg.StudiesDir)
		fmt.Fprintf(out, "alpha: %.3f\n", cfg.Alpha)
		fmt.Fprintf(out, "show_counts: %t\n", cfg.ShowCounts)
		fmt.Fprintf(out, "show_percentages: %t\n", cfg.ShowPercentages)
		fmt.Fprintf(out, "detect_sample_rows: %d\n", cfg.DetectSampleRows)
		fmt.Fprintf(out, "multiselect_min_confidence: %.2f\n", cfg.MultiSelectMinConfidence)
		fmt.Fprintf(out, "coding_method: %s\n", cfg.CodingMethod)
		fmt.Fprintf(out, "coding_min_category_size: %d\n", cfg.CodingMinCategorySize)
		fmt.Fprintf(out, "coding_max_categories: %d\n", cfg.CodingMaxCategories)
		fmt.Fprintf(out, "coding_similarity_threshold: %.2f\n", cfg.CodingSimilarityThreshold)
		fmt.Fprintf(out, "coding_min_response_length: %d\n", cfg.CodingMinResponseLength)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "server_addr: %s\n", cfg.ServerAddr)
		fmt.Fprintf(out, "server_timeout_sec: %d\n", cfg.ServerTimeoutSec)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		parseInt := func(lo int) (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < lo {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		parseFloat := func(lo, hi float64) (float64, error) {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < lo || f > hi {
				return 0, fmt.Errorf("invalid value for %s: %v (want %g-%g)", key, val, lo, hi)
			}
			return f, nil
		}
		parseBool := func() (bool, error) {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return false, fmt.Errorf("invalid bool for %s: %v", key, val)
			}
			return b, nil
		}
		var err error
		switch key {
		case "studies_dir":
			cfg.StudiesDir = val
		case "alpha":
			cfg.Alpha, err = parseFloat(0.001, 0.5)
		case "show_counts":
			cfg.ShowCounts, err = parseBool()
		case "show_percentages":
			cfg.ShowPercentages, err = parseBool()
		case "detect_sample_rows":
			cfg.DetectSampleRows, err = parseInt(0)
		case "multiselect_min_confidence":
			cfg.MultiSelectMinConfidence, err = parseFloat(0, 1)
		case "coding_method":
			switch openend.Method(val) {
			case openend.MethodKeywords, openend.MethodClustering:
				cfg.CodingMethod = val
			default:
				return fmt.Errorf("invalid coding_method: %s (use keywords or clustering)", val)
			}
		case "coding_min_category_size":
			cfg.CodingMinCategorySize, err = parseInt(1)
		case "coding_max_categories":
			cfg.CodingMaxCategories, err = parseInt(1)
		case "coding_similarity_threshold":
			cfg.CodingSimilarityThreshold, err = parseFloat(0, 1)
		case "coding_min_response_length":
			cfg.CodingMinResponseLength, err = parseInt(0)
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_format":
			if val != "text" && val != "json" {
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
			cfg.LogFormat = val
		case "server_addr":
			cfg.ServerAddr = val
		case "server_timeout_sec":
			cfg.ServerTimeoutSec, err = parseInt(0)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		logging.Component("config").Debug("saved config", "key", key)
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
