package detect

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// maxRankLevels is the deepest rank position reported in cross-tabs.
const maxRankLevels = 3

// RankingBattery is a set of columns recording which option a respondent placed at each rank.
type RankingBattery struct {
	Root    string   `json:"root" yaml:"root"`
	Options []string `json:"options" yaml:"options"`
	// RankColumnsByLevel[i] holds the columns of the i-th rank group, ordered like Options.
	RankColumnsByLevel [][]string `json:"rankColumnsByLevel" yaml:"rank_columns_by_level"`
	Rank1Columns       []string   `json:"rank1Columns" yaml:"rank1_columns"`
	Rank2Columns       []string   `json:"rank2Columns,omitempty" yaml:"rank2_columns,omitempty"`
	Rank3Columns       []string   `json:"rank3Columns,omitempty" yaml:"rank3_columns,omitempty"`
	MaxRanks           int        `json:"maxRanks" yaml:"max_ranks"`
}

// Levels returns the rank-column lists for levels 1..MaxRanks.
func (b RankingBattery) Levels() [][]string {
	out := [][]string{b.Rank1Columns, b.Rank2Columns, b.Rank3Columns}
	return out[:b.MaxRanks]
}

// DetectRankingBatteries groups ranking-typed headers by question root and rank number. A battery
// needs at least two rank groups, each holding one column per option. Headers of any other type
// are ignored, as are ranking columns that carry no rank token.
func DetectRankingBatteries(headers []string, typesByColumn map[string]QuestionType) []RankingBattery {
	type member struct {
		header string
		option string
	}
	type battery struct {
		root   string
		byRank map[int][]member
	}
	var order []string
	found := make(map[string]*battery)
	for _, h := range headers {
		if typesByColumn[h] != Ranking {
			continue
		}
		root, option, rank, ok := parseRankHeader(h)
		if !ok || option == "" {
			continue
		}
		key := textnorm.Fold(root)
		b, exists := found[key]
		if !exists {
			b = &battery{root: root, byRank: make(map[int][]member)}
			found[key] = b
			order = append(order, key)
		}
		b.byRank[rank] = append(b.byRank[rank], member{header: h, option: option})
	}

	var out []RankingBattery
	for _, key := range order {
		b := found[key]
		if len(b.byRank) < 2 {
			continue
		}
		ranks := make([]int, 0, len(b.byRank))
		for r := range b.byRank {
			ranks = append(ranks, r)
		}
		sort.Ints(ranks)

		base := b.byRank[ranks[0]]
		options := make([]string, len(base))
		pos := make(map[string]int, len(base))
		for i, m := range base {
			options[i] = m.option
			pos[textnorm.Fold(m.option)] = i
		}
		if len(pos) != len(options) {
			continue
		}

		levels := make([][]string, 0, len(ranks))
		valid := true
		for _, r := range ranks {
			group := b.byRank[r]
			if len(group) != len(options) {
				valid = false
				break
			}
			cols := make([]string, len(options))
			for _, m := range group {
				i, ok := pos[textnorm.Fold(m.option)]
				if !ok || cols[i] != "" {
					valid = false
					break
				}
				cols[i] = m.header
			}
			if !valid {
				break
			}
			levels = append(levels, cols)
		}
		if !valid {
			continue
		}

		rb := RankingBattery{
			Root:               strings.TrimSpace(b.root),
			Options:            options,
			RankColumnsByLevel: levels,
			MaxRanks:           min(maxRankLevels, len(levels)),
		}
		rb.Rank1Columns = levels[0]
		if rb.MaxRanks >= 2 {
			rb.Rank2Columns = levels[1]
		}
		if rb.MaxRanks >= 3 {
			rb.Rank3Columns = levels[2]
		}
		out = append(out, rb)
	}
	return out
}
