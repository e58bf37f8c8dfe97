// Package textnorm holds the text helpers shared by type detection and open-end coding:
// accent folding, tokenization, stop words and header label cleanup.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics ("Élodie" -> "elodie").
func Fold(s string) string {
	// transform.Chain is stateful; build one per call so Fold is safe for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokenize folds s, splits it on anything that is not a letter or digit and drops stop words
// and tokens of two characters or fewer.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) <= 2 || IsStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

var (
	wsRe            = regexp.MustCompile(`\s+`)
	selectedQualRe  = regexp.MustCompile(`(?i)\s*-\s*selected choice\s*$`)
	surroundQuoteRe = regexp.MustCompile(`^["'](.*)["']$`)
)

// CleanLabel turns a raw column header into a display label.
func CleanLabel(header string) string {
	s := wsRe.ReplaceAllString(strings.TrimSpace(header), " ")
	if m := surroundQuoteRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = selectedQualRe.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ": ")
	return s
}

// Title upper-cases the first letter of w.
func Title(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ContainsAny reports whether folded text contains any of the given lowercase needles.
func ContainsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
