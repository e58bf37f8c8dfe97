package detect

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/logging"
)

// ProfileOptions controls BuildProfile.
type ProfileOptions struct {
	// SampleSize is how many leading rows are inspected (all rows when <= 0).
	SampleSize int
	// MinConfidence is the battery confidence at which a multi-select candidate is accepted.
	MinConfidence float64
}

// DefaultProfileOptions returns the settings used by the CLI.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{SampleSize: 200, MinConfidence: 0.5}
}

// Profile is the structure and type classification of a dataset.
type Profile struct {
	Headers []string `json:"headers"`
	// Candidates holds every multi-select battery found; Accepted the ones claiming their columns.
	Candidates []Battery            `json:"candidates"`
	Accepted   []Battery            `json:"accepted"`
	Ranking    []RankingBattery     `json:"ranking"`
	Types      map[string]Detection `json:"types"`
}

// BuildProfile runs detection in three ordered phases: multi-select batteries claim their
// columns first, the remaining columns are typed one by one, and ranking batteries are then
// assembled from the ranking-typed columns.
func BuildProfile(ds *dataset.Dataset, opt ProfileOptions) *Profile {
	log := logging.Component("detect")
	headers := ds.Headers()
	sample := ds.Records(opt.SampleSize)
	p := &Profile{Headers: headers, Types: make(map[string]Detection, len(headers))}

	claimed := make(map[string]bool)
	p.Candidates = DetectMultiSelectBatteries(headers, sample)
	for _, b := range p.Candidates {
		if b.Confidence < opt.MinConfidence {
			continue
		}
		p.Accepted = append(p.Accepted, b)
		for _, c := range b.Columns {
			claimed[c] = true
			p.Types[c] = Detection{
				Type:       MultipleChoice,
				Confidence: b.Confidence,
				Reasoning:  fmt.Sprintf("member of multi-select battery %q", b.Root),
			}
		}
	}

	for j, h := range headers {
		if claimed[h] {
			continue
		}
		values := make([]string, len(sample))
		for i, r := range sample {
			values[i] = r[j]
		}
		p.Types[h] = DetectColumnType(h, values)
	}

	types := make(map[string]QuestionType, len(p.Types))
	for h, d := range p.Types {
		types[h] = d.Type
	}
	p.Ranking = DetectRankingBatteries(headers, types)

	log.Debug("profile built",
		slog.Int("columns", len(headers)),
		slog.Int("multiselect_candidates", len(p.Candidates)),
		slog.Int("multiselect_accepted", len(p.Accepted)),
		slog.Int("ranking_batteries", len(p.Ranking)),
	)
	return p
}

// Columns returns the columns, in header order, that are not part of an accepted multi-select
// battery or a ranking battery.
func (p *Profile) Columns() []string {
	inBattery := make(map[string]bool)
	for _, b := range p.Accepted {
		for _, c := range b.Columns {
			inBattery[c] = true
		}
	}
	for _, rb := range p.Ranking {
		for _, lvl := range rb.RankColumnsByLevel {
			for _, c := range lvl {
				inBattery[c] = true
			}
		}
	}
	var out []string
	for _, h := range p.Headers {
		if !inBattery[h] {
			out = append(out, h)
		}
	}
	return out
}
