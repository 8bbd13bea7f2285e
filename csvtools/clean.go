package csvtools

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// readTextFile returns the raw contents of a non-CSV file.
func readTextFile(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", name, err)
	}
	return string(data), nil
}

// readCSV parses a CSV file into a trimmed header and its records. Records
// with a deviating field count are tolerated (ragged exports are the norm in
// the inbox this agent cleans).
func readCSV(path string) (header []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file %q has no header row", path)
	}

	header = make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.TrimSpace(col)
	}
	return header, rows[1:], nil
}

// matchColumns reports, column by column, how a file's header maps onto the
// expected layout.
func (tk *Toolkit) matchColumns(_ context.Context, args map[string]any) (any, error) {
	file := strArg(args, "file")
	header, _, err := readCSV(file)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, expected := range tk.spec.names() {
		if hit, ok := tk.spec.matchColumn(expected, header); ok {
			switch {
			case tk.spec.Synonyms[normalizeHeader(hit)] == expected:
				lines = append(lines, fmt.Sprintf("%s -> %s (via synonym)", expected, hit))
			case normalizeHeader(hit) == expected:
				lines = append(lines, fmt.Sprintf("%s -> %s (exact match)", expected, hit))
			default:
				lines = append(lines, fmt.Sprintf("%s -> %s (%d)", expected, hit, distanceScore(expected, hit)))
			}
			continue
		}
		lines = append(lines, fmt.Sprintf("%s -> not found", expected))
	}
	return strings.Join(lines, "\n"), nil
}

var dateShape = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
var nonNumeric = regexp.MustCompile(`[^\d.]`)

// cleanCSVFile standardizes one file into the canonical layout and writes it
// to the toolkit's output directory.
func (tk *Toolkit) cleanCSVFile(_ context.Context, args map[string]any) (any, error) {
	file := strArg(args, "file")
	outPath, preview, err := tk.cleanOne(file)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Cleaned file saved as %s\n\nPreview:\n%s", outPath, preview), nil
}

func (tk *Toolkit) cleanOne(file string) (outPath, preview string, err error) {
	header, records, err := readCSV(file)
	if err != nil {
		return "", "", err
	}

	matched := tk.spec.matchHeader(header)
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}

	center := inferCenterName(file)
	names := tk.spec.names()

	cleaned := make([][]string, 0, len(records)+1)
	cleaned = append(cleaned, names)
	for _, record := range records {
		row := make([]string, len(names))
		for i, name := range names {
			if name == CenterColumn {
				row[i] = center
				continue
			}
			src, ok := matched[name]
			if !ok {
				continue
			}
			col, ok := index[src]
			if !ok || col >= len(record) {
				continue
			}
			row[i] = normalizeValue(record[col], tk.spec.kind(name))
		}
		cleaned = append(cleaned, row)
	}

	if err := os.MkdirAll(tk.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}
	outPath = filepath.Join(tk.outputDir, filepath.Base(file))
	if err := writeCSV(outPath, cleaned); err != nil {
		return "", "", err
	}

	return outPath, renderPreview(cleaned, 3), nil
}

func normalizeValue(v string, kind ColumnKind) string {
	switch kind {
	case KindNumeric:
		return nonNumeric.ReplaceAllString(v, "")
	case KindDate:
		candidate := strings.TrimSpace(strings.ReplaceAll(v, "-", "/"))
		if dateShape.MatchString(candidate) {
			return candidate
		}
		return ""
	default:
		return strings.TrimSpace(v)
	}
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// renderPreview shows the header plus up to n data rows.
func renderPreview(rows [][]string, n int) string {
	if len(rows) == 0 {
		return "(empty)"
	}
	limit := n + 1
	if limit > len(rows) {
		limit = len(rows)
	}
	var b strings.Builder
	for _, row := range rows[:limit] {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// cleanAllCSVFiles batch-cleans a directory, reporting per-file outcomes.
func (tk *Toolkit) cleanAllCSVFiles(_ context.Context, args map[string]any) (any, error) {
	dir := strArg(args, "dir")
	resolved, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	files, err := listCSVs(resolved)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found in %q", resolved)
	}

	var cleaned, failed []string
	for _, f := range files {
		if _, _, err := tk.cleanOne(filepath.Join(resolved, f)); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", f, err))
			continue
		}
		cleaned = append(cleaned, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Batch cleaning completed: %d file(s) processed, %d cleaned, %d failed.\n", len(files), len(cleaned), len(failed))
	if len(cleaned) > 0 {
		fmt.Fprintf(&b, "Cleaned: %s\n", strings.Join(cleaned, ", "))
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "Failed: %s\n", strings.Join(failed, ", "))
	}
	fmt.Fprintf(&b, "Output directory: %s", tk.outputDir)
	return b.String(), nil
}

// consolidateCSVFiles merges cleaned files into a single report. Every input
// must carry the canonical header produced by cleaning.
func (tk *Toolkit) consolidateCSVFiles(_ context.Context, args map[string]any) (any, error) {
	dir := strArg(args, "dir")
	if dir == "" {
		dir = tk.outputDir
	}
	files, err := listCSVs(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no cleaned CSV files found in %q", dir)
	}

	names := tk.spec.names()
	merged := [][]string{names}
	total, count := 0, 0
	for _, f := range files {
		if f == tk.consolidatedName {
			continue
		}
		header, records, err := readCSV(filepath.Join(dir, f))
		if err != nil {
			return nil, err
		}
		if !equalHeaders(header, names) {
			return nil, fmt.Errorf("file %q does not match the cleaned layout; clean it first", f)
		}
		merged = append(merged, records...)
		total += len(records)
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("no cleaned CSV files found in %q", dir)
	}

	outPath := filepath.Join(dir, tk.consolidatedName)
	if err := writeCSV(outPath, merged); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Consolidated %d file(s) (%d rows) into %s", count, total, outPath), nil
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
