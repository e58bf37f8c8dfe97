package detect

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// longResponseRunes is the length above which a value counts as a long free-text answer.
const longResponseRunes = 20

// maxFallbackUniques caps the distinct values of a confident single-choice fallback.
const maxFallbackUniques = 20

// DetectColumnType classifies a column from its header and a sample of its values. Stages run
// in priority order and the first match wins.
func DetectColumnType(header string, samples []string) Detection {
	values := make([]string, 0, len(samples))
	for _, s := range samples {
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		return Detection{Type: SingleChoice, Confidence: 0, Reasoning: "no non-empty values"}
	}
	h := textnorm.Fold(header)
	total := float64(len(values))

	distinct := make(map[string]struct{}, len(values))
	dateHits, delimited, long, runes, flags := 0, 0, 0, 0, 0
	ints := make([]int, 0, len(values))
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		lv := textnorm.Fold(v)
		distinct[lv] = struct{}{}
		if _, ok := singleColumnFlags[lv]; ok {
			flags++
		}
		if looksLikeDate(lv) {
			dateHits++
		}
		if strings.ContainsAny(v, ",;|") {
			delimited++
		}
		n := runeLen(v)
		runes += n
		if n > longResponseRunes {
			long++
		}
		if i, err := strconv.Atoi(v); err == nil {
			ints = append(ints, i)
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			nums = append(nums, f)
		}
	}
	unique := len(distinct)
	uniqueRatio := float64(unique) / total
	dateRatio := float64(dateHits) / total

	// 1. date
	if dateRatio >= 0.6 {
		kw := textnorm.ContainsAny(h, dateKeywords)
		if kw || uniqueRatio > 0.7 {
			conf := 0.8
			if kw {
				conf = 0.95
			}
			return Detection{Type: Date, Confidence: conf, Reasoning: fmt.Sprintf("%.0f%% of values parse as dates", dateRatio*100)}
		}
	}

	// 2. binary
	if unique == 2 && (isBinaryPair(distinct) || textnorm.ContainsAny(h, binaryHeaderHints)) {
		return Detection{Type: Binary, Confidence: 0.95, Reasoning: "exactly two values from a binary vocabulary"}
	}

	// Rank columns hold small integers too; a ranking header sends them past the scale and
	// numeric stages so ranking batteries can be assembled from them.
	rankHeader := textnorm.ContainsAny(h, rankingKeywords) || rankToken.MatchString(header)
	intRatio := float64(len(ints)) / total
	lo, hi := minMax(ints)

	// 3. scale
	if intRatio >= 0.8 && !rankHeader {
		if (lo == 1 || lo == 0) && hi <= 10 && hi-lo <= 10 {
			kw := textnorm.ContainsAny(h, ratingKeywords)
			if kw || unique <= 11 {
				conf := 0.75
				if kw {
					conf = 0.9
				}
				return Detection{Type: Scale, Confidence: conf, Reasoning: fmt.Sprintf("integers %d-%d", lo, hi)}
			}
		}
	}

	// 4. numeric
	if numRatio := float64(len(nums)) / total; numRatio >= 0.8 && !rankHeader {
		nlo, nhi := minMaxFloat(nums)
		if nhi-nlo > 20 || textnorm.ContainsAny(h, numericKeywords) || unique > 15 {
			return Detection{Type: Numeric, Confidence: 0.8, Reasoning: fmt.Sprintf("numeric values spanning %g-%g", nlo, nhi)}
		}
	}

	// 5. open-ended
	avgLen := float64(runes) / total
	longRatio := float64(long) / total
	openKw := textnorm.ContainsAny(h, openEndedKeywords)
	if uniqueRatio > 0.7 && (avgLen > 15 || longRatio >= 0.3 || openKw) && dateRatio < 0.3 {
		conf, why := 0.75, "free-text header keyword"
		switch {
		case avgLen > 15:
			conf, why = 0.9, fmt.Sprintf("average length %.0f characters", avgLen)
		case longRatio >= 0.3:
			conf, why = 0.85, fmt.Sprintf("%.0f%% of responses longer than %d characters", longRatio*100, longResponseRunes)
		}
		return Detection{Type: OpenEnded, Confidence: conf, Reasoning: why}
	}

	// 6. ranking
	if intRatio >= 0.6 && len(ints) > 0 && (rankHeader || (lo >= 1 && hi <= 10 && unique <= 10)) {
		return Detection{Type: Ranking, Confidence: 0.85, Reasoning: fmt.Sprintf("rank positions %d-%d", lo, hi)}
	}

	// 7. multiple-choice
	if float64(flags)/total >= 0.8 && unique <= 4 {
		return Detection{Type: MultipleChoice, Confidence: 0.8, Reasoning: "checkbox flag values"}
	}
	if textnorm.ContainsAny(h, multipleChoiceKeywords) || float64(delimited)/total > 0.3 {
		return Detection{Type: MultipleChoice, Confidence: 0.7, Reasoning: "multi-select phrasing or delimited values"}
	}

	// 8. single-choice
	if float64(unique) <= math.Min(maxFallbackUniques, 0.5*total) {
		conf := 0.6
		if unique <= 10 {
			conf = 0.7
		}
		return Detection{Type: SingleChoice, Confidence: conf, Reasoning: fmt.Sprintf("%d distinct values", unique)}
	}
	return Detection{Type: SingleChoice, Confidence: 0.4, Reasoning: "default classification"}
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "1/2/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"January 2, 2006", "Jan 2, 2006", "2 January 2006", "02-Jan-2006",
}

// looksLikeDate expects a folded value.
func looksLikeDate(v string) bool {
	for _, re := range datePatterns {
		if re.MatchString(v) {
			return true
		}
	}
	for _, l := range dateLayouts {
		// layouts with month names need the original capitalization
		if t, err := time.Parse(l, textnorm.Title(v)); err == nil {
			return t.Year() >= 1900 && t.Year() <= 2100
		}
	}
	return false
}

func isBinaryPair(distinct map[string]struct{}) bool {
	for _, p := range binaryPairs {
		_, a := distinct[p[0]]
		_, b := distinct[p[1]]
		if a && b {
			return true
		}
	}
	return false
}

func minMax(xs []int) (lo, hi int) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

func minMaxFloat(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
