// Package tables reconstructs tables from positioned PDF text.
//
// PDF tables are usually just text placed in aligned columns, sometimes
// with ruling lines drawn around the cells. The [Detector] looks for runs
// of consecutive lines that split into several whitespace-separated cells
// whose edges line up, and scores each candidate:
//
//   - Row consistency (30%): rows with one cell per column
//   - Column alignment (30%): cells sharing a left, right or centre edge
//   - Row regularity (20%): evenly spaced baselines
//   - Ruling lines (20%): drawn rules between rows and columns
//
// Only candidates scoring at least Config.MinConfidence become tables, so
// the detector prefers missing a table to mangling running text. An
// unruled but perfectly aligned table scores 0.8.
//
// A [Detector] implements layout.Claimer, so it plugs into the layout
// analyzer and replaces the lines it claims:
//
//	detector := tables.NewDetector().WithRules(rules)
//	result := layout.NewAnalyzer().Analyze(pages, detector)
package tables
