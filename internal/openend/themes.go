package openend

import (
	"sort"
	"strings"
	"unicode"

	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// Theme is a named group of keywords used for keyword coding and cluster naming.
type Theme struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// themeLibrary is the single theme list shared by coding, cluster naming and open-ended tables.
// Keywords match at the start of a word, so "expens" covers "expensive".
var themeLibrary = []Theme{
	{"price", "Price & Value", "Cost, pricing and value for money",
		[]string{"price", "cost", "expens", "cheap", "afford", "value", "money", "fee", "overpriced", "discount"}},
	{"quality", "Product Quality", "Quality, durability and craftsmanship of the product",
		[]string{"quality", "durab", "well made", "broke", "broken", "defect", "sturdy", "flimsy", "material"}},
	{"service", "Customer Service", "Helpfulness and attitude of support and staff",
		[]string{"service", "support", "staff", "helpful", "friendly", "rude", "polite", "representative", "agent"}},
	{"speed", "Speed & Timeliness", "Waiting times, delivery speed and responsiveness",
		[]string{"fast", "slow", "quick", "wait", "delay", "late", "delivery", "on time", "took forever"}},
	{"convenience", "Ease of Use", "Convenience and ease of use",
		[]string{"easy", "simple", "convenien", "hassle", "intuitive", "confusing", "complicated", "user friendly"}},
	{"location", "Location & Access", "Location, parking and accessibility",
		[]string{"location", "parking", "close to", "nearby", "far", "access", "distance", "store hours"}},
	{"features", "Features & Functionality", "Features, options and functionality",
		[]string{"feature", "function", "option", "app", "website", "integration", "missing", "tool"}},
	{"communication", "Communication", "Updates, information and clarity of communication",
		[]string{"communicat", "email", "inform", "update", "notif", "call", "respond", "clear", "unclear"}},
	{"reliability", "Reliability", "Consistency, outages and things that stop working",
		[]string{"reliab", "crash", "bug", "error", "outage", "consistent", "stopped working", "glitch"}},
	{"experience", "Overall Experience", "General satisfaction and overall impressions",
		[]string{"love", "great", "excellent", "terrible", "awful", "recommend", "satisf", "disappoint", "happy"}},
}

// Themes returns a copy of the theme library.
func Themes() []Theme {
	out := make([]Theme, len(themeLibrary))
	for i, t := range themeLibrary {
		t.Keywords = append([]string(nil), t.Keywords...)
		out[i] = t
	}
	return out
}

// normalizeText folds s and reduces it to single-space-separated words padded with spaces,
// the form matchKeyword expects.
func normalizeText(s string) string {
	f := strings.FieldsFunc(textnorm.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(f, " ") + " "
}

// matchKeyword reports whether kw starts a word in normalized text.
func matchKeyword(normalized, kw string) bool {
	return strings.Contains(normalized, " "+kw)
}

func keywordHits(normalized string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if matchKeyword(normalized, kw) {
			n++
		}
	}
	return n
}

// ThemeMatch is one library theme with the responses it claimed.
type ThemeMatch struct {
	Theme Theme
	// Indices point into the slice passed to ExtractThemes.
	Indices []int
}

// ExtractThemes assigns each text to the library theme with the most keyword hits (earlier
// themes win ties) and returns the themes holding at least minSize texts, largest first, along
// with the indices of texts that hit no theme.
func ExtractThemes(texts []string, minSize int) (matches []ThemeMatch, unmatched []int) {
	buckets := make([][]int, len(themeLibrary))
	for i, t := range texts {
		norm := normalizeText(t)
		best, bestHits := -1, 0
		for k, th := range themeLibrary {
			if h := keywordHits(norm, th.Keywords); h > bestHits {
				best, bestHits = k, h
			}
		}
		if best < 0 {
			unmatched = append(unmatched, i)
			continue
		}
		buckets[best] = append(buckets[best], i)
	}
	for k, idx := range buckets {
		if len(idx) == 0 || len(idx) < minSize {
			continue
		}
		matches = append(matches, ThemeMatch{Theme: themeLibrary[k], Indices: idx})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return len(matches[a].Indices) > len(matches[b].Indices)
	})
	return matches, unmatched
}

// nameFromThemes returns the library theme sharing the most keywords with kws, if any.
func nameFromThemes(kws []string) (Theme, bool) {
	norm := " " + strings.Join(kws, " ") + " "
	best, bestHits := -1, 0
	for k, th := range themeLibrary {
		if h := keywordHits(norm, th.Keywords); h > bestHits {
			best, bestHits = k, h
		}
	}
	if best < 0 {
		return Theme{}, false
	}
	return themeLibrary[best], true
}
