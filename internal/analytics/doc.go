// Package analytics derives the dashboard figures from loaded planning data.
//
// Everything here is a pure function over domain rows: margins, rotation,
// descriptive statistics, least-squares trends, the what-if simulation, the
// goal-programming scorecard and per-product or per-category rollups. Missing
// values are NaN and are skipped by every aggregate; no input makes a
// function panic.
package analytics
