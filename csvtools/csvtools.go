package csvtools

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ColumnKind drives per-column value normalization during cleaning.
type ColumnKind int

const (
	// KindText columns are whitespace-trimmed.
	KindText ColumnKind = iota
	// KindNumeric columns are stripped down to digits and decimal points.
	KindNumeric
	// KindDate columns must normalize to YYYY/MM/DD or become empty.
	KindDate
)

// Column is one canonical report column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Spec describes the canonical report layout incoming CSV files are matched
// and cleaned against: the expected columns in output order, a synonym table
// mapping known header variants to canonical names, and the fuzzy match
// cutoff (0..100) below which a header is reported as not found.
type Spec struct {
	Columns  []Column
	Synonyms map[string]string
	Cutoff   int
}

// CenterColumn is the canonical column cleaning overwrites with the center
// name inferred from the file name.
const CenterColumn = "center"

// DefaultSpec returns the course-report layout the agent was built for.
func DefaultSpec() Spec {
	return Spec{
		Columns: []Column{
			{Name: CenterColumn, Kind: KindText},
			{Name: "course_type", Kind: KindText},
			{Name: "course_name", Kind: KindText},
			{Name: "start_date", Kind: KindDate},
			{Name: "end_date", Kind: KindDate},
			{Name: "participants", Kind: KindText},
			{Name: "teacher", Kind: KindText},
			{Name: "participant_count", Kind: KindNumeric},
			{Name: "session_count", Kind: KindNumeric},
			{Name: "teacher_fee", Kind: KindNumeric},
			{Name: "extra_costs", Kind: KindNumeric},
			{Name: "notes", Kind: KindText},
		},
		Synonyms: map[string]string{
			"teacher name":           "teacher",
			"instructor":             "teacher",
			"instructor name":        "teacher",
			"students":               "participants",
			"student count":          "participant_count",
			"number of students":     "participant_count",
			"fee paid to teacher":    "teacher_fee",
			"amount paid to teacher": "teacher_fee",
			"proposed course type":   "course_type",
			"remarks":                "notes",
			"comments":               "notes",
		},
		Cutoff: 70,
	}
}

// names returns the canonical column names in output order.
func (s Spec) names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// kind returns the normalization kind for a canonical column.
func (s Spec) kind(name string) ColumnKind {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Kind
		}
	}
	return KindText
}

// matchHeader maps canonical column names to actual header names using, in
// order: the synonym table, exact match, then fuzzy matching against the
// cutoff. Headers that resolve nothing are absent from the returned map.
func (s Spec) matchHeader(actual []string) map[string]string {
	matched := make(map[string]string)
	for _, expected := range s.names() {
		if hit, ok := s.matchColumn(expected, actual); ok {
			matched[expected] = hit
		}
	}
	return matched
}

func (s Spec) matchColumn(expected string, actual []string) (string, bool) {
	for _, col := range actual {
		if s.Synonyms[normalizeHeader(col)] == expected {
			return col, true
		}
	}

	for _, col := range actual {
		if normalizeHeader(col) == expected {
			return col, true
		}
	}

	best, score := closestMatch(expected, actual)
	if score >= s.Cutoff {
		return best, true
	}
	return "", false
}

// closestMatch returns the candidate with the smallest normalized Levenshtein
// distance to target, scored 0..100 (100 = identical).
func closestMatch(target string, candidates []string) (string, int) {
	ranks := fuzzy.RankFindNormalizedFold(target, candidates)
	if len(ranks) == 0 {
		// No subsequence hit; fall back to pure distance scoring.
		best, bestScore := "", -1
		for _, c := range candidates {
			if score := distanceScore(target, c); score > bestScore {
				best, bestScore = c, score
			}
		}
		return best, bestScore
	}
	sort.Sort(ranks)
	return ranks[0].Target, distanceScore(target, ranks[0].Target)
}

func distanceScore(a, b string) int {
	dist := fuzzy.LevenshteinDistance(strings.ToLower(a), strings.ToLower(b))
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 100
	}
	score := 100 - (dist*100)/longest
	if score < 0 {
		score = 0
	}
	return score
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// resolveDir validates a directory argument, defaulting to the current
// working directory for "" and ".".
func resolveDir(dir string) (string, error) {
	if dir == "" || dir == "." {
		return os.Getwd()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("path not found: %q", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %q", dir)
	}
	return dir, nil
}

// listCSVs returns the sorted CSV file names (not paths) in dir.
func listCSVs(dir string) ([]string, error) {
	resolved, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", resolved, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

var trailingCounter = regexp.MustCompile(`(_?\d+)?$`)

// inferCenterName extracts the center name from a file name: base name,
// lower-cased, trailing counters stripped ("neyshabour_maryam_2.csv" →
// "neyshabour_maryam").
func inferCenterName(filename string) string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	base = trailingCounter.ReplaceAllString(base, "")
	return strings.Trim(base, "_")
}

// normalizeCenterKeyword fuzzy-resolves a user supplied center keyword
// against the base names of the CSV files present, so "neyshabur" still finds
// "neyshabour_maryam.csv".
func normalizeCenterKeyword(keyword string, files []string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	candidates := make([]string, 0, len(files))
	seen := make(map[string]struct{})
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f), ".csv") {
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(f, filepath.Ext(f)))
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			candidates = append(candidates, name)
		}
	}

	best, score := closestMatch(keyword, candidates)
	if score >= 60 {
		// Keep only the center part of the matched base name when the
		// keyword targets its prefix.
		if strings.HasPrefix(best, keyword) {
			return keyword
		}
		return inferCenterName(best + ".csv")
	}
	return keyword
}

// centerFiles returns the sorted CSV files in dir whose names contain the
// normalized center keyword.
func centerFiles(keyword, dir string) ([]string, string, error) {
	files, err := listCSVs(dir)
	if err != nil {
		return nil, "", err
	}
	normalized := normalizeCenterKeyword(keyword, files)
	var matching []string
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), normalized) {
			matching = append(matching, f)
		}
	}
	return matching, normalized, nil
}
