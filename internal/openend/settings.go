// Package openend codes free-text survey answers into categories, either by matching a fixed
// theme library or by clustering TF-IDF vectors.
package openend

import "github.com/KaramelBytes/tabloom-cli/internal/validation"

// Method selects how categories are discovered.
type Method string

const (
	MethodKeywords   Method = "keywords"
	MethodClustering Method = "clustering"
)

// Settings controls a coding run.
type Settings struct {
	Method          Method `json:"method" yaml:"method" validate:"required,oneof=keywords clustering"`
	MinCategorySize int    `json:"minCategorySize" yaml:"min_category_size" validate:"min=1"`
	MaxCategories   int    `json:"maxCategories" yaml:"max_categories" validate:"min=1,max=100"`
	// SimilarityThreshold is the largest average-linkage cosine distance still merged.
	SimilarityThreshold float64 `json:"similarityThreshold" yaml:"similarity_threshold" validate:"min=0,max=1"`
	MinResponseLength   int     `json:"minResponseLength" yaml:"min_response_length" validate:"min=0"`
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		Method:              MethodKeywords,
		MinCategorySize:     2,
		MaxCategories:       10,
		SimilarityThreshold: 0.7,
		MinResponseLength:   3,
	}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	return validation.Struct(s)
}
