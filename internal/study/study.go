package study

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// OutputsDir is the study subdirectory receiving run outputs.
const OutputsDir = "outputs"

// Study is a survey dataset together with its saved analysis, persisted as study.json.
type Study struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Dataset     *DatasetRef      `json:"dataset,omitempty"`
	Analysis    *crosstab.Config `json:"analysis,omitempty"`
	// Coding overrides the global coding settings when set.
	Coding    *openend.Settings `json:"coding,omitempty"`
	Runs      []Run             `json:"runs"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Not serialized: on-disk location of the study.json
	rootDir string `json:"-"`
}

// NewStudy constructs an in-memory study. Call Save() to persist.
func NewStudy(name, description, rootDir string) *Study {
	now := time.Now()
	return &Study{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Runs:        []Run{},
		CreatedAt:   now,
		UpdatedAt:   now,
		rootDir:     rootDir,
	}
}

// LoadStudy loads a study.json from the provided directory.
func LoadStudy(dir string) (*Study, error) {
	path := filepath.Join(dir, utils.StudyFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.New(apperrors.KindNotFound, fmt.Sprintf("study not found at %s", path), err)
		}
		return nil, fmt.Errorf("read study: %w", err)
	}
	var s Study
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse study: %w", err)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk study directory path.
func (s *Study) RootDir() string { return s.rootDir }

// Save writes study.json using atomic write.
func (s *Study) Save() error {
	if s.rootDir == "" {
		return errors.New("study root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, utils.StudyFile), data)
}

// SetDataset loads the file to check it and records its location and shape.
func (s *Study) SetDataset(path, sheet string) (*dataset.Dataset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset path: %w", err)
	}
	ds, err := dataset.Load(abs, dataset.LoadOptions{Sheet: sheet})
	if err != nil {
		return nil, err
	}
	s.Dataset = &DatasetRef{
		Path:    abs,
		Sheet:   strings.TrimSpace(sheet),
		Rows:    ds.Len(),
		Columns: len(ds.Headers()),
		AddedAt: time.Now(),
	}
	s.UpdatedAt = time.Now()
	return ds, nil
}

// LoadDataset reads the study's dataset.
func (s *Study) LoadDataset() (*dataset.Dataset, error) {
	if s.Dataset == nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("study %q has no dataset; run 'tabloom study set-dataset'", s.Name), nil)
	}
	return dataset.Load(s.Dataset.Path, dataset.LoadOptions{Sheet: s.Dataset.Sheet})
}

// SetAnalysis validates cfg against ds and stores it.
func (s *Study) SetAnalysis(cfg crosstab.Config, ds *dataset.Dataset) error {
	if err := cfg.Validate(ds); err != nil {
		return err
	}
	s.Analysis = &cfg
	s.UpdatedAt = time.Now()
	return nil
}

// CodingSettings returns the study's coding override, or fallback.
func (s *Study) CodingSettings(fallback openend.Settings) openend.Settings {
	if s.Coding != nil {
		return *s.Coding
	}
	return fallback
}

// OutputPath returns a path under the study's outputs directory, creating the directory.
func (s *Study) OutputPath(name string) (string, error) {
	dir := filepath.Join(s.rootDir, OutputsDir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("ensure outputs dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// RecordRun appends a run entry.
func (s *Study) RecordRun(tables int, output string) Run {
	r := Run{ID: uuid.NewString(), At: time.Now(), Tables: tables, Output: output}
	s.Runs = append(s.Runs, r)
	s.UpdatedAt = r.At
	return r
}
