package sim

import (
	"slices"

	"github.com/tomz197/somanaut/internal/config"
)

// Reward converts a final score to the claimable token amount.
func Reward(score int) float64 {
	return float64(score) / config.RewardDivisor
}

// InsertHighScore returns a new list holding the best limit entries of list
// plus score, sorted descending. list is not modified.
func InsertHighScore(list []int, score, limit int) []int {
	out := make([]int, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, score)
	slices.SortFunc(out, func(a, b int) int { return b - a })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NormalizeHighScores sorts a loaded list descending and trims it to limit.
// Negative entries are dropped.
func NormalizeHighScores(list []int, limit int) []int {
	out := make([]int, 0, len(list))
	for _, s := range list {
		if s >= 0 {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return b - a })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
