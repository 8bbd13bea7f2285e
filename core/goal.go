// Package core holds the small shared value types the rest of the module is
// built around.
package core

import "sort"

// Goal is a prioritized statement of intent guiding prompt construction.
// Lower priority numbers rank higher. Goals are loaded once at startup and
// never mutated at runtime.
type Goal struct {
	Priority    int    `json:"priority" yaml:"priority"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// SortGoals returns a copy of goals ordered by ascending priority. Ties keep
// their original relative order so prompt rendering stays deterministic.
func SortGoals(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	copy(out, goals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
