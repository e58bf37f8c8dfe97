package crosstab

import (
	"fmt"
	"strconv"
	"strings"
)

// checkPercentSums warns when a column's category percentages (the first n rows) stray more than
// percentTolerance points from 100.
func checkPercentSums(r *Result, n int) []string {
	var out []string
	for c, h := range r.Headers {
		if r.BaseValues[c] == 0 {
			continue
		}
		sum := 0
		for i := 0; i < n; i++ {
			sum += parsePercent(r.Percentage[i][c])
		}
		if sum < 100-percentTolerance || sum > 100+percentTolerance {
			out = append(out, fmt.Sprintf("column %q percentages sum to %d%%, expected about 100%%", h, sum))
		}
	}
	return out
}

func emptyColumnWarnings(r *Result) []string {
	var out []string
	for c, h := range r.Headers {
		if r.BaseValues[c] == 0 {
			out = append(out, fmt.Sprintf("column %q has no valid responses", h))
		}
	}
	return out
}

func parsePercent(s string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if err != nil {
		return 0
	}
	return n
}
