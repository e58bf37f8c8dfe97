package openend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/logging"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

const (
	maxSampleResponses = 5
	maxClusterKeywords = 5
)

// Coding is the result of coding one open-ended question.
type Coding struct {
	QuestionColumn string          `json:"questionColumn"`
	Responses      []CodedResponse `json:"responses"`
	Categories     []Category      `json:"categories"`
	Settings       Settings        `json:"settings"`
}

// CodedResponse is one answer and the category it was assigned to.
type CodedResponse struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	CategoryID string  `json:"categoryId"`
	Confidence float64 `json:"confidence"`
	// RowIndex is the answer's position in the input slice.
	RowIndex int `json:"rowIndex"`
}

// Category is a discovered group of similar answers.
type Category struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords"`
	SampleResponses []string `json:"sampleResponses"`
	ResponseCount   int      `json:"responseCount"`
	Confidence      float64  `json:"confidence"`
}

type response struct {
	text   string
	norm   string
	tokens []string
	row    int
}

// Preprocess trims answers and drops blank, null-like and too-short ones, keeping row positions.
func preprocess(answers []string, minLen int) []response {
	out := make([]response, 0, len(answers))
	for i, a := range answers {
		a = strings.TrimSpace(a)
		switch strings.ToLower(a) {
		case "", "null", "undefined":
			continue
		}
		if runeCount(a) < minLen {
			continue
		}
		out = append(out, response{text: a, norm: normalizeText(a), tokens: textnorm.Tokenize(a), row: i})
	}
	return out
}

func runeCount(s string) int { return len([]rune(s)) }

// Code categorizes answers for one question and assigns every kept answer to a category.
func Code(ctx context.Context, column string, answers []string, settings Settings) (*Coding, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	log := logging.Component("openend")
	resp := preprocess(answers, settings.MinResponseLength)
	coding := &Coding{QuestionColumn: column, Settings: settings, Responses: []CodedResponse{}, Categories: []Category{}}
	if len(resp) == 0 {
		return coding, nil
	}

	var cats []Category
	switch settings.Method {
	case MethodClustering:
		var err error
		if cats, err = clusterCategories(ctx, resp, settings); err != nil {
			return nil, fmt.Errorf("cluster responses: %w", err)
		}
	default:
		cats = themeCategories(resp, settings)
	}
	if len(cats) == 0 {
		cats = []Category{{Name: "Uncategorized", Description: "Responses without a recurring theme"}}
	}
	for i := range cats {
		cats[i].ID = fmt.Sprintf("cat_%d", i+1)
		cats[i].SampleResponses = []string{}
		cats[i].ResponseCount = 0
	}

	confSum := make([]float64, len(cats))
	for _, r := range resp {
		ci, conf := assign(r.norm, cats)
		c := &cats[ci]
		c.ResponseCount++
		confSum[ci] += conf
		if len(c.SampleResponses) < maxSampleResponses {
			c.SampleResponses = append(c.SampleResponses, r.text)
		}
		coding.Responses = append(coding.Responses, CodedResponse{
			ID:         fmt.Sprintf("resp_%d", r.row),
			Text:       r.text,
			CategoryID: c.ID,
			Confidence: conf,
			RowIndex:   r.row,
		})
	}
	for i := range cats {
		if cats[i].ResponseCount > 0 {
			cats[i].Confidence = confSum[i] / float64(cats[i].ResponseCount)
		}
	}
	coding.Categories = cats
	log.Debug("coded responses",
		slog.String("column", column),
		slog.String("method", string(settings.Method)),
		slog.Int("responses", len(resp)),
		slog.Int("categories", len(cats)),
	)
	return coding, nil
}

// assign scores each category by the share of its keywords present in the answer. When nothing
// scores, the answer goes to the last category with confidence 0.
func assign(norm string, cats []Category) (int, float64) {
	best, bestScore := len(cats)-1, 0.0
	for i, c := range cats {
		if len(c.Keywords) == 0 {
			continue
		}
		score := float64(keywordHits(norm, c.Keywords)) / float64(len(c.Keywords))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

func themeCategories(resp []response, s Settings) []Category {
	texts := make([]string, len(resp))
	for i, r := range resp {
		texts[i] = r.text
	}
	matches, unmatched := ExtractThemes(texts, s.MinCategorySize)
	var cats []Category
	for _, m := range matches {
		if len(cats) == s.MaxCategories {
			break
		}
		cats = append(cats, Category{
			Name:        m.Theme.Name,
			Description: m.Theme.Description,
			Keywords:    append([]string(nil), m.Theme.Keywords...),
		})
	}
	if len(unmatched) > 0 && len(unmatched) >= s.MinCategorySize {
		cats = append(cats, Category{Name: "Other", Description: "Responses that match no known theme"})
	}
	return cats
}

func clusterCategories(ctx context.Context, resp []response, s Settings) ([]Category, error) {
	docs := make([][]string, len(resp))
	for i, r := range resp {
		docs[i] = r.tokens
	}
	vs := buildTFIDF(docs)
	sim, err := similarityMatrix(ctx, vs.vectors)
	if err != nil {
		return nil, err
	}
	clusters := agglomerate(sim, s.MaxCategories, s.SimilarityThreshold)

	used := make(map[string]bool)
	var cats []Category
	for _, members := range clusters {
		if len(members) < s.MinCategorySize {
			continue
		}
		kws := clusterKeywords(vs, docs, members)
		name := clusterName(kws, used)
		used[name] = true
		desc := "Responses without distinctive terms"
		if len(kws) > 0 {
			desc = "Responses mentioning " + strings.Join(kws[:min(3, len(kws))], ", ")
		}
		cats = append(cats, Category{Name: name, Description: desc, Keywords: kws})
	}
	return cats, nil
}

// clusterKeywords ranks vocabulary terms by how many members contain them, then by summed
// TF-IDF weight, then alphabetically.
func clusterKeywords(vs *vectorSpace, docs [][]string, members []int) []string {
	type term struct {
		word   string
		docs   int
		weight float64
	}
	var terms []term
	for j, w := range vs.terms {
		t := term{word: w}
		for _, m := range members {
			if x := vs.vectors[m][j]; x != 0 || containsToken(docs[m], w) {
				t.docs++
				t.weight += x
			}
		}
		if t.docs > 0 {
			terms = append(terms, t)
		}
	}
	sort.SliceStable(terms, func(a, b int) bool {
		if terms[a].docs != terms[b].docs {
			return terms[a].docs > terms[b].docs
		}
		if terms[a].weight != terms[b].weight {
			return terms[a].weight > terms[b].weight
		}
		return terms[a].word < terms[b].word
	})
	out := make([]string, 0, maxClusterKeywords)
	for _, t := range terms {
		if len(out) == maxClusterKeywords {
			break
		}
		out = append(out, t.word)
	}
	return out
}

func containsToken(doc []string, w string) bool {
	for _, t := range doc {
		if t == w {
			return true
		}
	}
	return false
}

// clusterName prefers an unused library theme name, then "Kw1 & Kw2", then "Miscellaneous".
func clusterName(kws []string, used map[string]bool) string {
	if th, ok := nameFromThemes(kws); ok && !used[th.Name] {
		return th.Name
	}
	var name string
	switch len(kws) {
	case 0:
		name = "Miscellaneous"
	case 1:
		name = textnorm.Title(kws[0])
	default:
		name = textnorm.Title(kws[0]) + " & " + textnorm.Title(kws[1])
	}
	base := name
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	return name
}
