package detect

import (
	"fmt"
	"testing"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectColumnType_Cascade(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		values   []string
		wantType QuestionType
		wantConf float64
	}{
		{"date with keyword", "Submitted At", []string{"2024-01-05", "2024-01-06", "2024-02-11"}, Date, 0.95},
		{"binary vocabulary", "Own a car", []string{"Yes", "No", "yes", "NO"}, Binary, 0.95},
		{"scale with rating keyword", "How satisfied are you?", []string{"1", "2", "3", "4", "5", "5"}, Scale, 0.9},
		{"scale without keyword", "Q7", []string{"0", "1", "1", "0"}, Scale, 0.75},
		{"numeric wide span", "Age", []string{"18", "25", "40", "63"}, Numeric, 0.8},
		{"numeric decimals", "Spend", []string{"12.5", "3.75", "40.1"}, Numeric, 0.8},
		{"open-ended long text", "Anything else?", []string{
			"The checkout was slow and confusing on mobile",
			"Loved the staff, very friendly and helpful",
			"Prices went up again this year which is annoying",
		}, OpenEnded, 0.9},
		{"ranking header defers scale", "Rank of Price", []string{"1", "2", "3"}, Ranking, 0.85},
		{"open-ended medium text", "Q9", []string{
			"Parking was hard to find!", "Staff could be friendlier", "Loved the new store layout",
			"ok", "fine", "meh", "good", "great", "nice", "sure",
		}, OpenEnded, 0.85},
		{"checkbox flags", "Q3 Apple", []string{"x", "selected", "x", "x", "selected", "x"}, MultipleChoice, 0.8},
		{"multiple choice phrasing", "Which apps do you use (select all)", []string{"Slack, Zoom", "Zoom", "Teams, Slack"}, MultipleChoice, 0.7},
		{"single choice few categories", "Region", cycle("Region", 3, 10), SingleChoice, 0.7},
		{"single choice up to twenty categories", "Store", cycle("Store", 12, 30), SingleChoice, 0.6},
		{"single choice default classification", "Branch", cycle("Branch", 25, 30), SingleChoice, 0.4},
		{"empty sample", "Blank", []string{"", "  "}, SingleChoice, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectColumnType(tt.header, tt.values)
			assert.Equal(t, tt.wantType, got.Type, got.Reasoning)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

// cycle returns n values drawn in turn from unique labels.
func cycle(prefix string, unique, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %c", prefix, 'A'+rune(i%unique))
	}
	return out
}

func TestQuestionRoot(t *testing.T) {
	tests := []struct {
		header, root, option, delim string
	}{
		{"Which brands do you use? - Acme", "Which brands do you use?", "Acme", " - "},
		{"Services used: Billing", "Services used", "Billing", ": "},
		{"Devices owned (Laptop)", "Devices owned", "Laptop", "("},
		{"one two three four five six seven", "one two three four five", "six seven", ""},
		{"Age", "Age", "", ""},
	}
	for _, tt := range tests {
		root, option, delim := QuestionRoot(tt.header)
		assert.Equal(t, tt.root, root, tt.header)
		assert.Equal(t, tt.option, option, tt.header)
		assert.Equal(t, tt.delim, delim, tt.header)
	}
}

func TestDetectMultiSelectBatteries_CheckboxBattery(t *testing.T) {
	headers := []string{
		"Which of the following brands do you use? - Acme",
		"Which of the following brands do you use? - Globex",
		"Which of the following brands do you use? - Initech",
		"Age",
	}
	rows := [][]string{
		{"1", "0", "1", "34"},
		{"0", "1", "", "51"},
		{"1", "1", "0", "27"},
	}
	got := DetectMultiSelectBatteries(headers, rows)
	require.Len(t, got, 1)
	b := got[0]
	assert.Equal(t, "Which of the following brands do you use?", b.Root)
	assert.Equal(t, headers[:3], b.Columns)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, b.Options)
	assert.True(t, b.Details.StructurallyConsistent)
	assert.True(t, b.Details.MultiSelectPhrasing)
	assert.InDelta(t, 1.0, b.Details.FlagRatio, 1e-9)
	assert.InDelta(t, 1.0, b.Confidence, 1e-9)
}

func TestDetectMultiSelectBatteries_RatingGridPenalized(t *testing.T) {
	headers := []string{"Rate the following attributes: Price", "Rate the following attributes: Quality"}
	rows := [][]string{{"4", "5"}, {"2", "3"}, {"5", "1"}}

	got := DetectMultiSelectBatteries(headers, rows)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Details.RatingRatio, 1e-9)
	assert.InDelta(t, 0.1, got[0].Confidence, 1e-9)

	headerOnly := DetectMultiSelectBatteries(headers, nil)
	assert.InDelta(t, 0.5, headerOnly[0].Confidence, 1e-9)
}

func TestDetectMultiSelectBatteries_ShortRootsIgnored(t *testing.T) {
	got := DetectMultiSelectBatteries([]string{"Q1 - A", "Q1 - B"}, nil)
	assert.Empty(t, got)
}

func TestDetectRankingBatteries_SuffixForm(t *testing.T) {
	headers := []string{
		"Q5 - Price_Rank1", "Q5 - Quality_Rank1", "Q5 - Service_Rank1",
		"Q5 - Price_Rank2", "Q5 - Quality_Rank2", "Q5 - Service_Rank2",
	}
	types := make(map[string]QuestionType, len(headers))
	for _, h := range headers {
		types[h] = Ranking
	}

	got := DetectRankingBatteries(headers, types)
	require.Len(t, got, 1)
	rb := got[0]
	assert.Equal(t, "Q5", rb.Root)
	assert.Equal(t, 2, rb.MaxRanks)
	assert.Equal(t, []string{"Price", "Quality", "Service"}, rb.Options)
	assert.Equal(t, headers[:3], rb.Rank1Columns)
	assert.Equal(t, headers[3:], rb.Rank2Columns)
	assert.Empty(t, rb.Rank3Columns)
	assert.Len(t, rb.Levels(), 2)
}

func TestDetectRankingBatteries_PrefixFormReordersByOption(t *testing.T) {
	headers := []string{
		"Q7_R1_Speed", "Q7_R1_Cost",
		"Q7_R2_Cost", "Q7_R2_Speed",
		"Q7_R3_Speed", "Q7_R3_Cost",
		"Q7_R4_Speed", "Q7_R4_Cost",
	}
	types := make(map[string]QuestionType)
	for _, h := range headers {
		types[h] = Ranking
	}
	got := DetectRankingBatteries(headers, types)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Speed", "Cost"}, got[0].Options)
	assert.Equal(t, []string{"Q7_R2_Speed", "Q7_R2_Cost"}, got[0].Rank2Columns)
	assert.Equal(t, 3, got[0].MaxRanks)
	assert.Len(t, got[0].RankColumnsByLevel, 4)
}

func TestDetectRankingBatteries_RejectsMismatchedGroups(t *testing.T) {
	headers := []string{"Q5_Rank1_A", "Q5_Rank1_B", "Q5_Rank2_A"}
	types := map[string]QuestionType{"Q5_Rank1_A": Ranking, "Q5_Rank1_B": Ranking, "Q5_Rank2_A": Ranking}
	assert.Empty(t, DetectRankingBatteries(headers, types))

	// not ranking-typed: ignored
	assert.Empty(t, DetectRankingBatteries([]string{"Q5_Rank1_A", "Q5_Rank2_A"}, nil))
}

func TestBuildProfile_TwoPhases(t *testing.T) {
	ds := dataset.New(
		[]string{
			"Region",
			"Which of the following apply to you? - Student",
			"Which of the following apply to you? - Employed",
			"Q5 - Price_Rank1", "Q5 - Quality_Rank1",
			"Q5 - Price_Rank2", "Q5 - Quality_Rank2",
		},
		[][]string{
			{"North", "1", "0", "1", "", "", "1"},
			{"South", "0", "1", "", "1", "1", ""},
			{"North", "1", "1", "1", "", "", "1"},
		},
	)
	p := BuildProfile(ds, DefaultProfileOptions())

	require.Len(t, p.Accepted, 1)
	assert.Equal(t, MultipleChoice, p.Types["Which of the following apply to you? - Student"].Type)
	require.Len(t, p.Ranking, 1)
	assert.Equal(t, []string{"Price", "Quality"}, p.Ranking[0].Options)
	assert.Equal(t, []string{"Region"}, p.Columns())
	assert.Equal(t, SingleChoice, p.Types["Region"].Type)
}

func TestParseQuestionType(t *testing.T) {
	qt, err := ParseQuestionType("scale")
	require.NoError(t, err)
	assert.Equal(t, Scale, qt)
	_, err = ParseQuestionType("likert")
	assert.Error(t, err)
	assert.Len(t, QuestionTypes(), 8)
}
