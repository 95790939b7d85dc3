package workbook

import (
	"fmt"

	"plandash/pkg/contracts/domain"
)

// productResultKinds maps RESULTADOS columns to tables, by position.
var productResultKinds = []domain.ResultKind{
	domain.ResultProduction,
	domain.ResultSales,
	domain.ResultInventory,
}

// processResultKinds maps RES_HORAS_EXTRA columns to tables, by position.
var processResultKinds = []domain.ResultKind{
	domain.ResultOvertime,
}

// Layout describes how an unlabeled result block is ordered: all periods of
// the first label, then all periods of the second, and so on.
type Layout struct {
	Labels  []string
	Periods int
}

// Rows returns the number of rows a complete block has.
func (l Layout) Rows() int {
	return len(l.Labels) * l.Periods
}

// At returns the label and 1-based period of a 0-based data row.
func (l Layout) At(row int) (string, int) {
	return l.Labels[row/l.Periods], row%l.Periods + 1
}

// generatedLabels returns prefix001..prefixNNN.
func generatedLabels(prefix string, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s%03d", prefix, i+1)
	}
	return labels
}

// reconstruct turns the raw rows of a solver sheet into labeled result
// tables, one per kind. Column i of the sheet feeds kinds[i]. The header row
// is skipped, only the first layout.Rows() data rows are used, and a short or
// non-numeric block yields empty tables plus a warning.
func reconstruct(sheet string, raw [][]string, layout Layout, kinds []domain.ResultKind) (map[domain.ResultKind][]domain.ResultRow, *Warning) {
	out := make(map[domain.ResultKind][]domain.ResultRow, len(kinds))
	for _, k := range kinds {
		out[k] = []domain.ResultRow{}
	}

	var data [][]string
	if len(raw) > 1 {
		data = raw[1:]
	}

	expected := layout.Rows()
	if expected == 0 || len(data) < expected {
		return out, &Warning{
			Sheet:  sheet,
			Reason: fmt.Sprintf("insufficient results: %d rows, expected %d", len(data), expected),
		}
	}

	block := make(map[domain.ResultKind][]domain.ResultRow, len(kinds))
	for r := 0; r < expected; r++ {
		id, period := layout.At(r)
		for c, kind := range kinds {
			cell := ""
			if c < len(data[r]) {
				cell = data[r][c]
			}
			v, ok := parseNumber(cell)
			if !ok {
				return out, &Warning{
					Sheet:  sheet,
					Reason: fmt.Sprintf("non-numeric value %q at row %d column %d", cell, r+2, c+1),
				}
			}
			block[kind] = append(block[kind], domain.ResultRow{ID: id, Period: period, Value: v})
		}
	}

	for k, rows := range block {
		out[k] = rows
	}
	return out, nil
}
