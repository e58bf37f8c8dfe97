package detect

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// maxResponseSampleRows caps how many rows feed the response-pattern bonus.
const maxResponseSampleRows = 100

// minRootRunes is the shortest question stem accepted as a battery root (exclusive).
const minRootRunes = 10

// Battery is a candidate multi-select question spread across several columns.
type Battery struct {
	Root       string         `json:"root" yaml:"root"`
	Columns    []string       `json:"columns" yaml:"columns"`
	Options    []string       `json:"options" yaml:"options"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Details    BatteryDetails `json:"details" yaml:"details"`
}

// BatteryDetails records which signals contributed to a battery's confidence.
type BatteryDetails struct {
	Delimiter              string  `json:"delimiter" yaml:"delimiter"`
	StructurallyConsistent bool    `json:"structurallyConsistent" yaml:"structurally_consistent"`
	EnumeratedOptions      bool    `json:"enumeratedOptions" yaml:"enumerated_options"`
	MultiSelectPhrasing    bool    `json:"multiSelectPhrasing" yaml:"multi_select_phrasing"`
	FlagRatio              float64 `json:"flagRatio" yaml:"flag_ratio"`
	LabelRatio             float64 `json:"labelRatio" yaml:"label_ratio"`
	RatingRatio            float64 `json:"ratingRatio" yaml:"rating_ratio"`
	ResponseBonus          float64 `json:"responseBonus" yaml:"response_bonus"`
}

// DetectMultiSelectBatteries groups headers sharing a question root into candidate batteries.
// sampleRows are parallel to headers; pass nil to score from headers alone. Headers carrying a
// rank token are left to DetectRankingBatteries. Candidates are returned in order of first
// appearance.
func DetectMultiSelectBatteries(headers []string, sampleRows [][]string) []Battery {
	type group struct {
		root      string
		delimiter string
		cols      []int
		options   []string
	}
	var order []string
	groups := make(map[string]*group)
	for i, h := range headers {
		if rankToken.MatchString(h) {
			continue
		}
		root, option, delim := QuestionRoot(h)
		if runeLen(root) <= minRootRunes {
			continue
		}
		key := textnorm.Fold(root)
		g, ok := groups[key]
		if !ok {
			g = &group{root: root, delimiter: delim}
			groups[key] = g
			order = append(order, key)
		}
		g.cols = append(g.cols, i)
		g.options = append(g.options, option)
	}

	if len(sampleRows) > maxResponseSampleRows {
		sampleRows = sampleRows[:maxResponseSampleRows]
	}
	var out []Battery
	for _, key := range order {
		g := groups[key]
		if len(g.cols) < 2 {
			continue
		}
		cols := make([]string, len(g.cols))
		for i, c := range g.cols {
			cols[i] = headers[c]
		}
		d := BatteryDetails{
			Delimiter:              g.delimiter,
			StructurallyConsistent: structurallyConsistent(cols),
			EnumeratedOptions:      enumeratedOptions(g.options),
			MultiSelectPhrasing:    textnorm.ContainsAny(textnorm.Fold(g.root), multipleChoiceKeywords),
		}
		score := 0.3
		if d.StructurallyConsistent {
			score += 0.2
		}
		if d.EnumeratedOptions {
			score += 0.15
		}
		if d.MultiSelectPhrasing {
			score += 0.25
		}
		if len(sampleRows) > 0 {
			scoreResponses(&d, g.cols, g.options, sampleRows)
			score += d.ResponseBonus
		}
		out = append(out, Battery{
			Root:       g.root,
			Columns:    cols,
			Options:    g.options,
			Confidence: clamp01(score),
			Details:    d,
		})
	}
	return out
}

func structurallyConsistent(cols []string) bool {
	for _, c := range structuralChars {
		has := strings.ContainsRune(cols[0], c)
		for _, h := range cols[1:] {
			if strings.ContainsRune(h, c) != has {
				return false
			}
		}
	}
	return true
}

// enumeratedOptions reports whether most option labels look like list enumerations.
func enumeratedOptions(options []string) bool {
	hits := 0
	for _, o := range options {
		if enumeratedOption.MatchString(o) {
			hits++
			continue
		}
		if _, ok := enumeratedWords[textnorm.Fold(o)]; ok {
			hits++
		}
	}
	return hits*2 > len(options)
}

// scoreResponses fills the response ratios and the bonus derived from them.
func scoreResponses(d *BatteryDetails, cols []int, options []string, rows [][]string) {
	total, flags, labels, ratings := 0, 0, 0, 0
	distinctRatings := make(map[int]struct{})
	for _, r := range rows {
		for k, c := range cols {
			if c >= len(r) {
				continue
			}
			v := textnorm.Fold(strings.TrimSpace(r[c]))
			if v == "" {
				continue
			}
			total++
			if _, ok := flagValues[v]; ok {
				flags++
			}
			if opt := textnorm.Fold(options[k]); opt != "" && strings.Contains(v, opt) {
				labels++
			}
			if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 10 {
				ratings++
				distinctRatings[n] = struct{}{}
			}
		}
	}
	if total == 0 {
		return
	}
	d.FlagRatio = float64(flags) / float64(total)
	d.LabelRatio = float64(labels) / float64(total)
	d.RatingRatio = float64(ratings) / float64(total)

	bonus := 0.0
	switch {
	case d.FlagRatio > 0.6:
		bonus += 0.3
	case d.FlagRatio >= 0.3:
		bonus += 0.15
	}
	switch {
	case d.LabelRatio > 0.4:
		bonus += 0.2
	case d.LabelRatio >= 0.2:
		bonus += 0.1
	}
	// a 1/blank checkbox column is not a rating scale
	if d.RatingRatio > 0.6 && len(distinctRatings) >= 3 {
		bonus -= 0.4
	}
	d.ResponseBonus = bonus
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
