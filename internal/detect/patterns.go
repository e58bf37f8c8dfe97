package detect

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Header keyword lists. Matched against folded (lowercase, accent-free) headers.
var (
	dateKeywords = []string{
		"date", "time", "timestamp", "created", "updated", "submitted", "started", "completed",
		"dob", "birth", "when",
	}
	ratingKeywords = []string{
		"rate", "rating", "scale", "satisf", "likely", "agree", "recommend", "score", "nps",
		"importan", "extent", "how much", "how well",
	}
	numericKeywords = []string{
		"age", "income", "price", "cost", "amount", "salary", "number of", "count", "quantity",
		"years", "hours", "minutes", "spend", "revenue", "weight", "height", "size", "total",
	}
	openEndedKeywords = []string{
		"comment", "feedback", "explain", "describe", "why", "suggestion", "specify", "verbatim",
		"opinion", "thoughts", "open", "text", "other (",
	}
	rankingKeywords = []string{
		"rank", "order of preference", "priority", "priorities", "preference", "1st choice",
		"first choice",
	}
	multipleChoiceKeywords = []string{
		"select all", "check all", "all that apply", "mark all", "choose all", "tick all",
		"which of the following",
	}
	binaryHeaderHints = []string{"yes/no", "true/false", "y/n"}
)

// binaryPairs are the recognized two-value vocabularies.
var binaryPairs = [][2]string{
	{"yes", "no"}, {"true", "false"}, {"male", "female"}, {"agree", "disagree"},
	{"pass", "fail"}, {"on", "off"}, {"enabled", "disabled"}, {"active", "inactive"},
	{"y", "n"},
}

// flagValues are cell values that read as a checkbox state.
var flagValues = map[string]struct{}{
	"1": {}, "0": {}, "yes": {}, "no": {}, "true": {}, "false": {}, "x": {},
	"checked": {}, "selected": {},
}

// singleColumnFlags is the vocabulary of a lone checkbox column.
var singleColumnFlags = map[string]struct{}{
	"1": {}, "0": {}, "yes": {}, "no": {}, "true": {}, "false": {}, "selected": {}, "x": {},
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d{4}-\d{1,2}-\d{1,2}([ T]\d{1,2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:?\d{2})?)?$`),
	regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`),
	regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}( \d{1,2}:\d{2}(:\d{2})?( ?[ap]m)?)?$`),
	regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?( ?[ap]m)?$`),
	regexp.MustCompile(`^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? \d{1,2},? \d{4}$`),
	regexp.MustCompile(`^\d{1,2} (jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* \d{4}$`),
}

// enumeratedOption matches option labels like "a)", "1.", "2)".
var enumeratedOption = regexp.MustCompile(`^([a-zA-Z]\)|\d+[.)])`)

var enumeratedWords = map[string]struct{}{
	"yes": {}, "no": {}, "true": {}, "false": {}, "agree": {}, "disagree": {},
}

// rootDelimiters are tried in order; the first one present in a header splits root from option.
var rootDelimiters = []string{" - ", ": ", " | ", "(", "; ", ", "}

// structuralChars must be uniformly present or absent across a battery's headers.
const structuralChars = "-:|(;,"

// QuestionRoot splits a header into its question stem and option label. The delimiter is ""
// when the header has none and the root falls back to its first five words.
func QuestionRoot(header string) (root, option, delimiter string) {
	h := strings.TrimSpace(header)
	for _, d := range rootDelimiters {
		i := strings.Index(h, d)
		if i <= 0 {
			continue
		}
		if d == "(" {
			j := strings.Index(h[i:], ")")
			if j < 0 {
				continue
			}
			return strings.TrimSpace(h[:i]), strings.TrimSpace(h[i+1 : i+j]), d
		}
		return strings.TrimSpace(h[:i]), strings.TrimSpace(h[i+len(d):]), d
	}
	words := strings.Fields(h)
	if len(words) > 5 {
		return strings.Join(words[:5], " "), strings.Join(words[5:], " "), ""
	}
	return h, "", ""
}

// rankToken finds "Rank1", "_R1", "_Rank_1", "Rank 1" and similar tokens.
var rankToken = regexp.MustCompile(`(?i)(^|[\s_\-.])(rank|r)[\s_\-]?(\d{1,2})([\s_\-.]|$)`)

// parseRankHeader splits a ranking header into root, option label and rank number.
func parseRankHeader(header string) (root, option string, rank int, ok bool) {
	h := strings.TrimSpace(header)
	m := rankToken.FindStringSubmatchIndex(h)
	if m == nil {
		return "", "", 0, false
	}
	rank = atoiSmall(h[m[6]:m[7]])
	if rank <= 0 {
		return "", "", 0, false
	}
	before := strings.TrimSpace(h[:m[2]])
	after := trimDelims(h[m[8]:])
	if after != "" {
		return trimDelims(before), after, rank, true
	}
	root, option, _ = QuestionRoot(before)
	if option == "" {
		if i := strings.LastIndexAny(before, "_."); i > 0 {
			root, option = before[:i], before[i+1:]
		} else {
			root, option = before, before
		}
	}
	return trimDelims(root), trimDelims(option), rank, true
}

func trimDelims(s string) string {
	return strings.Trim(s, " _-.:|")
}

func atoiSmall(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
