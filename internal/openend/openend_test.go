package openend

import (
	"context"
	"testing"

	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRoundTrip(t *testing.T, c *Coding) {
	t.Helper()
	ids := make(map[string]bool)
	total := 0
	for _, cat := range c.Categories {
		ids[cat.ID] = true
		total += cat.ResponseCount
		assert.LessOrEqual(t, len(cat.SampleResponses), maxSampleResponses)
	}
	for _, r := range c.Responses {
		assert.True(t, ids[r.CategoryID], "response %s assigned to unknown category %s", r.ID, r.CategoryID)
	}
	assert.Equal(t, len(c.Responses), total)
}

func TestCode_Keywords(t *testing.T) {
	answers := []string{
		"The price is too expensive",
		"ok",
		"Way too costly, poor value for money",
		"",
		"Staff were rude and unhelpful",
		"Customer support was friendly",
		"Blue sky thinking",
	}
	c, err := Code(context.Background(), "Q9", answers, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, "Q9", c.QuestionColumn)
	require.Len(t, c.Categories, 2)
	assert.Equal(t, "Price & Value", c.Categories[0].Name)
	assert.Equal(t, "Customer Service", c.Categories[1].Name)
	require.Len(t, c.Responses, 5)
	assert.Equal(t, 0, c.Responses[0].RowIndex)
	assert.Equal(t, "resp_2", c.Responses[1].ID)
	assert.Equal(t, "cat_1", c.Responses[1].CategoryID)

	last := c.Responses[4]
	assert.Equal(t, 6, last.RowIndex)
	assert.Equal(t, "cat_2", last.CategoryID, "unscored answers fall to the last category")
	assert.Equal(t, 0.0, last.Confidence)
	assertRoundTrip(t, c)
}

func TestCode_KeywordsOtherBucket(t *testing.T) {
	answers := []string{"price is high", "too expensive for me", "blue sky", "green grass", "red sunset"}
	c, err := Code(context.Background(), "Q1", answers, DefaultSettings())
	require.NoError(t, err)
	require.Len(t, c.Categories, 2)
	assert.Equal(t, "Other", c.Categories[1].Name)
	assert.Equal(t, 3, c.Categories[1].ResponseCount)
	assertRoundTrip(t, c)
}

func TestCode_Clustering(t *testing.T) {
	answers := []string{
		"delivery was slow and late",
		"slow delivery again, late",
		"late delivery slow courier",
		"price too high expensive",
		"expensive price high cost",
		"high price expensive",
	}
	s := DefaultSettings()
	s.Method = MethodClustering
	s.MaxCategories = 2
	c, err := Code(context.Background(), "Q2", answers, s)
	require.NoError(t, err)

	require.Len(t, c.Categories, 2)
	assert.Equal(t, "Speed & Timeliness", c.Categories[0].Name)
	assert.Equal(t, []string{"delivery", "late", "slow"}, c.Categories[0].Keywords)
	assert.Equal(t, "Price & Value", c.Categories[1].Name)
	assert.Equal(t, 3, c.Categories[0].ResponseCount)
	assert.Equal(t, 3, c.Categories[1].ResponseCount)
	assert.InDelta(t, 1.0, c.Categories[0].Confidence, 1e-9)
	assertRoundTrip(t, c)
}

func TestCode_ClusteringWithoutMergesFallsBackToCatchAll(t *testing.T) {
	s := DefaultSettings()
	s.Method = MethodClustering
	c, err := Code(context.Background(), "Q3", []string{"alpha beta", "gamma delta", "epsilon zeta"}, s)
	require.NoError(t, err)
	require.Len(t, c.Categories, 1)
	assert.Equal(t, "Uncategorized", c.Categories[0].Name)
	assertRoundTrip(t, c)
}

func TestCode_EmptyAndInvalid(t *testing.T) {
	c, err := Code(context.Background(), "Q4", []string{"", "null", "  "}, DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, c.Responses)
	assert.Empty(t, c.Categories)

	bad := DefaultSettings()
	bad.Method = "llm"
	_, err = Code(context.Background(), "Q4", []string{"x"}, bad)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAgglomerate(t *testing.T) {
	even := [][]float64{{1, 0.5, 0.5}, {0.5, 1, 0.5}, {0.5, 0.5, 1}}
	assert.Equal(t, [][]int{{0, 1}, {2}}, agglomerate(even, 2, 0.9), "ties merge the first pair")

	apart := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	assert.Equal(t, [][]int{{0}, {1}, {2}}, agglomerate(apart, 1, 0.7), "distance above threshold stops merging")

	chain := [][]float64{{1, 0.9, 0.1}, {0.9, 1, 0.5}, {0.1, 0.5, 1}}
	// after {0,1} merge, avg sim to 2 is 0.3 -> distance 0.7
	assert.Equal(t, [][]int{{0, 1, 2}}, agglomerate(chain, 1, 0.75))
	assert.Equal(t, [][]int{{0, 1}, {2}}, agglomerate(chain, 1, 0.6))
}

func TestBuildTFIDF_FiltersVocabulary(t *testing.T) {
	docs := [][]string{{"a", "b"}, {"a", "c"}, {"a", "b"}, {"a", "d"}, {"a"}}
	vs := buildTFIDF(docs)
	// "a" is in every document, c and d only in one
	assert.Equal(t, []string{"b"}, vs.terms)
	assert.Equal(t, 0.0, vs.vectors[1][0])
	assert.Greater(t, vs.vectors[0][0], 0.0)
}

func TestExtractThemes(t *testing.T) {
	texts := []string{"Great service", "rude staff", "the app keeps crashing", "nothing"}
	matches, unmatched := ExtractThemes(texts, 1)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Customer Service", matches[0].Theme.Name)
	assert.Equal(t, []int{0, 1}, matches[0].Indices)
	assert.Equal(t, []int{3}, unmatched)
	assert.Len(t, Themes(), 10)
}
