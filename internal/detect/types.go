// Package detect classifies survey columns and finds composite question structures
// (multi-select and ranking batteries) from headers and sampled responses.
package detect

import "fmt"

// QuestionType is the statistical class of a column.
type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	Scale          QuestionType = "scale"
	Ranking        QuestionType = "ranking"
	Binary         QuestionType = "binary"
	Numeric        QuestionType = "numeric"
	OpenEnded      QuestionType = "open-ended"
	Date           QuestionType = "date"
)

// QuestionTypes lists every type in cascade order.
func QuestionTypes() []QuestionType {
	return []QuestionType{Date, Binary, Scale, Numeric, OpenEnded, Ranking, MultipleChoice, SingleChoice}
}

// Valid reports whether t is one of the known types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, Scale, Ranking, Binary, Numeric, OpenEnded, Date:
		return true
	default:
		return false
	}
}

// ParseQuestionType validates a type name.
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

// Detection is the result of classifying one column.
type Detection struct {
	Type       QuestionType `json:"type" yaml:"type"`
	Confidence float64      `json:"confidence" yaml:"confidence"`
	Reasoning  string       `json:"reasoning" yaml:"reasoning"`
}
