package dataset

import (
	"fmt"
	"os"

	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
)

// LoadOptions tunes how a source file is read.
type LoadOptions struct {
	// Delimiter overrides CSV delimiter sniffing when non-zero.
	Delimiter rune
	// Sheet selects an XLSX worksheet by name; SheetIndex (1-based) is used when Sheet is empty.
	Sheet      string
	SheetIndex int
	// MaxRows stops reading after this many data rows when > 0.
	MaxRows int
}

// Loader reads one tabular file format into a Dataset.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt LoadOptions) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load selects a loader by filename and reads the file.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewLoadError(fmt.Sprintf("open %s", path), err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, apperrors.NewLoadError(fmt.Sprintf("unsupported file format: %s", path), nil)
}

func init() {
	Register(xlsxLoader{})
	Register(csvLoader{})
}

// fromGrid treats the first row as the header row.
func fromGrid(source string, grid [][]string, maxRows int) (*Dataset, error) {
	if len(grid) == 0 {
		return nil, apperrors.NewLoadError(fmt.Sprintf("%s: no header row", source), nil)
	}
	header := grid[0]
	allBlank := true
	for _, h := range header {
		if h != "" {
			allBlank = false
			break
		}
	}
	if allBlank {
		return nil, apperrors.NewLoadError(fmt.Sprintf("%s: header row is empty", source), nil)
	}
	body := grid[1:]
	if maxRows > 0 && len(body) > maxRows {
		body = body[:maxRows]
	}
	return New(header, body), nil
}
