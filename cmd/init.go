package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/study"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	initDescription string
	initDataset     string
	initSheet       string
)

var initCmd = &cobra.Command{
	Use:   "init <study-name>",
	Short: "Initialize a new TabLoom study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultStudiesDir()
		if err != nil {
			return err
		}
		dir := filepath.Join(root, name)
		// Refuse to overwrite an existing study.
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(dir, utils.StudyFile)); err == nil {
				return fmt.Errorf("study already exists at %s", dir)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("inspect study directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize study", dir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat study directory: %w", err)
		}
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
		s := study.NewStudy(name, initDescription, dir)
		if initDataset != "" {
			ds, err := s.SetDataset(initDataset, initSheet)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Dataset attached: %d rows, %d columns\n", ds.Len(), len(ds.Headers()))
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Study initialized: %s\n", dir)
		return nil
	},
}

func defaultStudiesDir() (string, error) {
	if cfg != nil && cfg.StudiesDir != "" {
		dir := cfg.StudiesDir
		if strings.HasPrefix(dir, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			dir = strings.TrimPrefix(dir, "~")
			dir = strings.TrimPrefix(dir, string(os.PathSeparator))
			dir = strings.TrimPrefix(dir, "/")
			dir = filepath.Join(home, dir)
		}
		dir = filepath.Clean(dir)
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ".tabloom", "studies")
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveStudyDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("study name is required")
	}
	root, err := defaultStudiesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func loadStudyByName(name string) (*study.Study, error) {
	dir, err := resolveStudyDirByName(name)
	if err != nil {
		return nil, err
	}
	return study.LoadStudy(dir)
}

// currentStudy loads the named study, or the study enclosing the working directory.
func currentStudy(name string) (*study.Study, error) {
	if name != "" {
		return loadStudyByName(name)
	}
	dir, err := utils.FindStudyRoot("")
	if err != nil {
		return nil, fmt.Errorf("--study is required outside a study directory: %w", err)
	}
	return study.LoadStudy(dir)
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "study description")
	initCmd.Flags().StringVar(&initDataset, "dataset", "", "optional CSV/TSV/XLSX file to attach")
	initCmd.Flags().StringVar(&initSheet, "sheet", "", "XLSX: sheet name for --dataset")
}
