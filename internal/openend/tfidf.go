package openend

import (
	"math"
	"sort"
)

// maxDocFraction drops terms appearing in more than this share of documents.
const maxDocFraction = 0.8

// vectorSpace is a dense TF-IDF matrix over a filtered vocabulary.
type vectorSpace struct {
	terms   []string
	vectors [][]float64
}

// buildTFIDF keeps terms found in at least two documents and at most 80% of them, sorted
// alphabetically. Weights are tf * ln(N/(df+1)).
func buildTFIDF(docs [][]string) *vectorSpace {
	n := len(docs)
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool, len(d))
		for _, t := range d {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	var terms []string
	for t, c := range df {
		if c >= 2 && float64(c) <= maxDocFraction*float64(n) {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)
	col := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		col[t] = i
		idf[i] = math.Log(float64(n) / float64(df[t]+1))
	}

	vs := &vectorSpace{terms: terms, vectors: make([][]float64, n)}
	for i, d := range docs {
		v := make([]float64, len(terms))
		if len(d) > 0 {
			for _, t := range d {
				if j, ok := col[t]; ok {
					v[j]++
				}
			}
			for j := range v {
				v[j] = v[j] / float64(len(d)) * idf[j]
			}
		}
		vs.vectors[i] = v
	}
	return vs
}

// cosineSim returns 0 for mismatched or zero vectors.
func cosineSim(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
