package services

import (
	"fmt"
	"sort"

	"plandash/internal/workbook"
	"plandash/pkg/contracts/domain"
)

// Chart ids each section can produce when its data is present.
var sectionCharts = map[Section][]string{
	SectionOverview:   {"categories", "lines", "production-time", "time-by-category", "storage-cost"},
	SectionProducts:   {"inputs", "processes", "demand", "prices"},
	SectionInputs:     {"stock", "usage", "trend"},
	SectionProcesses:  {"capacity", "overtime-cost", "products", "capacity-comparison", "cost-comparison"},
	SectionDemand:     {"demand", "prices", "margin", "seasonality-demand", "seasonality-margin"},
	SectionCosts:      {"trends", "margin-pct", "top-margin-pct", "top-margin", "category-margin-pct", "category-price-cost"},
	SectionModel:      {"plan", "overtime"},
	SectionSimulation: {"comparison", "sensitivity"},
	SectionGoals:      {"profit", "overtime", "trade-off"},
}

func chartDeclared(section, chart string) bool {
	for _, id := range sectionCharts[Section(section)] {
		if id == chart {
			return true
		}
	}
	return false
}

func productOptions(ds *workbook.Dataset) []Option {
	var out []Option
	if len(ds.Products) > 0 {
		for _, p := range ds.Products {
			label := p.Name
			if label == "" {
				label = p.ID
			}
			out = append(out, Option{Value: p.ID, Label: label})
		}
		return out
	}
	for _, id := range ds.ProductIDs {
		out = append(out, Option{Value: id, Label: id})
	}
	return out
}

func inputOptions(ds *workbook.Dataset) []Option {
	var out []Option
	if len(ds.Inputs) > 0 {
		for _, in := range ds.Inputs {
			out = append(out, Option{Value: in.ID, Label: in.Name})
		}
		return out
	}
	seen := make(map[string]bool)
	for _, r := range ds.Stock {
		if !seen[r.InputID] {
			seen[r.InputID] = true
			out = append(out, Option{Value: r.InputID, Label: domain.InputName(r.InputID)})
		}
	}
	return out
}

func processOptions(ds *workbook.Dataset) []Option {
	var out []Option
	if len(ds.Processes) > 0 {
		for _, pr := range ds.Processes {
			out = append(out, Option{Value: pr.ID, Label: pr.Name})
		}
		return out
	}
	seen := make(map[string]bool)
	for _, r := range ds.Capacity {
		if !seen[r.ProcessID] {
			seen[r.ProcessID] = true
			out = append(out, Option{Value: r.ProcessID, Label: domain.ProcessName(r.ProcessID)})
		}
	}
	return out
}

// pick returns id when it is one of the options, the first option when id
// is empty, and notFound otherwise. An empty option list yields "".
func pick(options []Option, id string, notFound error) (Option, error) {
	if id == "" {
		if len(options) == 0 {
			return Option{}, nil
		}
		return options[0], nil
	}
	for _, o := range options {
		if o.Value == id {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%w: %s", notFound, id)
}

func demandFor(ds *workbook.Dataset, productID string) []domain.DemandRow {
	var out []domain.DemandRow
	for _, r := range ds.Demand {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

// byYear keeps the rows of one calendar year.
func byYear(rows []domain.DemandRow, year int) []domain.DemandRow {
	var out []domain.DemandRow
	for _, r := range rows {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

func yearsOf(rows []domain.DemandRow) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

// pickYear returns the requested year or the first available one.
func pickYear(years []int, year int) int {
	if year != 0 || len(years) == 0 {
		return year
	}
	return years[0]
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
