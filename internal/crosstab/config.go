package crosstab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/filter"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
	"github.com/KaramelBytes/tabloom-cli/internal/validation"
	"gopkg.in/yaml.v3"
)

// Config describes one cross-tab run.
type Config struct {
	TableVariables    []string                       `json:"tableVariables" yaml:"table_variables" validate:"required,min=1"`
	BannerVariables   []string                       `json:"bannerVariables" yaml:"banner_variables"`
	MultiSelectGroups map[string][]string            `json:"multiSelectGroups,omitempty" yaml:"multi_select_groups,omitempty"`
	RankingGroups     map[string]RankingGroup        `json:"rankingGroups,omitempty" yaml:"ranking_groups,omitempty"`
	QuestionTypes     map[string]detect.QuestionType `json:"questionTypes,omitempty" yaml:"question_types,omitempty"`
	DisplayNames      map[string]string              `json:"displayNames,omitempty" yaml:"display_names,omitempty"`
	Filters           map[string]filter.Condition    `json:"filters,omitempty" yaml:"filters,omitempty" validate:"dive"`
	NestedFilters     []filter.Group                 `json:"nestedFilters,omitempty" yaml:"nested_filters,omitempty" validate:"dive"`
	CustomVariables   map[string]CustomVariable      `json:"customVariables,omitempty" yaml:"custom_variables,omitempty"`
	// Alpha is the significance level; 0 means stats.DefaultAlpha.
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha,omitempty" validate:"min=0,max=0.5"`
}

// RankingGroup lists a ranking battery's options and, per rank level, the column holding each
// option's mark. Levels[i][j] is the column for Options[j] at rank i+1.
type RankingGroup struct {
	Options []string   `json:"options" yaml:"options" validate:"required,min=1"`
	Levels  [][]string `json:"levels" yaml:"levels" validate:"required,min=1,max=3"`
}

// CustomVariable is a derived variable definition. Derived variables are accepted in a
// configuration but cannot be tabulated.
type CustomVariable struct {
	Label      string `json:"label" yaml:"label"`
	Expression string `json:"expression" yaml:"expression"`
}

func (c Config) alpha() float64 {
	if c.Alpha <= 0 {
		return stats.DefaultAlpha
	}
	return c.Alpha
}

func (c Config) displayName(v string) string {
	if n := strings.TrimSpace(c.DisplayNames[v]); n != "" {
		return n
	}
	return textnorm.CleanLabel(v)
}

// LoadConfigFile reads a YAML or JSON analysis config.
func LoadConfigFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("read analysis config", err)
	}
	var c Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, &c)
	} else {
		err = yaml.Unmarshal(b, &c)
	}
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return &c, nil
}

// SaveConfigFile writes c as JSON when path ends in .json, YAML otherwise.
func SaveConfigFile(c *Config, path string) error {
	var (
		b   []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err = json.MarshalIndent(c, "", "  ")
	} else {
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal analysis config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write analysis config: %w", err)
	}
	return nil
}

// Validate checks c against the dataset it will run on.
func (c Config) Validate(ds *dataset.Dataset) error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	owner := make(map[string]string)
	for _, g := range sortedKeys(c.MultiSelectGroups) {
		cols := c.MultiSelectGroups[g]
		if len(cols) == 0 {
			add("multi-select group %q has no columns", g)
		}
		for _, col := range cols {
			if !ds.Has(col) {
				add("multi-select group %q: unknown column %q", g, col)
			}
			if prev, ok := owner[col]; ok && prev != g {
				add("column %q belongs to multi-select groups %q and %q", col, prev, g)
			}
			owner[col] = g
		}
	}
	for _, name := range sortedKeys(c.RankingGroups) {
		rg := c.RankingGroups[name]
		if len(rg.Options) == 0 || len(rg.Levels) == 0 || len(rg.Levels) > maxRankViews {
			add("ranking group %q needs options and 1-%d rank levels", name, maxRankViews)
		}
		for i, lvl := range rg.Levels {
			if len(lvl) != len(rg.Options) {
				add("ranking group %q: rank %d has %d columns for %d options", name, i+1, len(lvl), len(rg.Options))
			}
			for _, col := range lvl {
				if !ds.Has(col) {
					add("ranking group %q: unknown column %q", name, col)
				}
			}
		}
	}
	for _, v := range c.TableVariables {
		_, custom := c.CustomVariables[v]
		_, multi := c.MultiSelectGroups[v]
		_, rank := c.RankingGroups[v]
		if !custom && !multi && !rank && !ds.Has(v) {
			add("table variable %q is not a column, group or custom variable", v)
		}
	}
	for _, b := range c.BannerVariables {
		if _, custom := c.CustomVariables[b]; custom {
			continue
		}
		if !ds.Has(b) {
			add("banner variable %q is not a column", b)
		}
	}
	for col, qt := range c.QuestionTypes {
		if !qt.Valid() {
			add("question type for %q: unknown type %q", col, qt)
		}
	}
	for id, f := range c.Filters {
		if !f.Operator.Valid() {
			add("filter %q: unknown operator %q", id, f.Operator)
		}
	}
	for i, g := range c.NestedFilters {
		if err := g.Validate(); err != nil {
			add("nested filter %d: %v", i, err)
		}
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigFromProfile builds a starter config: every plain column that is not a banner becomes a
// table variable, followed by the accepted multi-select batteries and the ranking batteries.
func ConfigFromProfile(p *detect.Profile, banners []string) Config {
	cfg := Config{
		BannerVariables:   append([]string(nil), banners...),
		MultiSelectGroups: make(map[string][]string),
		RankingGroups:     make(map[string]RankingGroup),
		QuestionTypes:     make(map[string]detect.QuestionType),
	}
	taken := make(map[string]bool, len(p.Headers))
	for _, h := range p.Headers {
		taken[h] = true
	}
	isBanner := make(map[string]bool, len(banners))
	for _, b := range banners {
		isBanner[b] = true
	}
	for _, col := range p.Columns() {
		cfg.QuestionTypes[col] = p.Types[col].Type
		if !isBanner[col] {
			cfg.TableVariables = append(cfg.TableVariables, col)
		}
	}
	name := func(root, suffix string) string {
		n := textnorm.CleanLabel(root)
		if taken[n] {
			n = fmt.Sprintf("%s (%s)", n, suffix)
		}
		for i := 2; taken[n]; i++ {
			n = fmt.Sprintf("%s (%s %d)", textnorm.CleanLabel(root), suffix, i)
		}
		taken[n] = true
		return n
	}
	for _, b := range p.Accepted {
		n := name(b.Root, "multi-select")
		cfg.MultiSelectGroups[n] = append([]string(nil), b.Columns...)
		cfg.TableVariables = append(cfg.TableVariables, n)
	}
	for _, rb := range p.Ranking {
		n := name(rb.Root, "ranking")
		cfg.RankingGroups[n] = RankingGroup{Options: append([]string(nil), rb.Options...), Levels: rb.Levels()}
		cfg.TableVariables = append(cfg.TableVariables, n)
	}
	return cfg
}
