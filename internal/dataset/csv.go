package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".csv") || strings.HasSuffix(p, ".tsv") || strings.HasSuffix(p, ".txt")
}

func (csvLoader) Load(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("open csv", err)
	}
	defer f.Close()
	return ReadCSV(f, path, opt)
}

// ReadCSV parses delimited text. The delimiter is sniffed from the first line unless opt sets one.
func ReadCSV(r io.Reader, name string, opt LoadOptions) (*Dataset, error) {
	br := bufio.NewReader(r)
	// strip UTF-8 BOM
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, br)
	}
	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var grid [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewLoadError(fmt.Sprintf("read %s", name), err)
		}
		if len(grid) > 0 && blankRecord(rec) {
			continue
		}
		grid = append(grid, rec)
		if opt.MaxRows > 0 && len(grid) > opt.MaxRows {
			break
		}
	}
	return fromGrid(name, grid, opt.MaxRows)
}

// sniffDelimiter picks tab for .tsv files, otherwise the most frequent candidate in the first line.
func sniffDelimiter(name string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(string(line), string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
