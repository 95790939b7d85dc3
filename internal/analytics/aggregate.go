package analytics

import (
	"math"
	"sort"

	"plandash/pkg/contracts/domain"
)

// series collects values per key and remembers first-seen key order.
type series struct {
	keys   []string
	values map[string][]float64
}

func newSeries() *series {
	return &series{values: make(map[string][]float64)}
}

func (s *series) add(key string, v float64) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = append(s.values[key], v)
}

// ResultStats describes one id of a solver result table.
type ResultStats struct {
	ID string `json:"id"`
	Stats
}

// Aggregate summarizes a result table per id, in first-seen order.
func Aggregate(rows []domain.ResultRow) []ResultStats {
	s := newSeries()
	for _, r := range rows {
		s.add(r.ID, r.Value)
	}
	out := make([]ResultStats, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, ResultStats{ID: k, Stats: Describe(s.values[k])})
	}
	return out
}

// Values returns the value column of result rows.
func Values(rows []domain.ResultRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Value
	}
	return out
}

// InventoryStats is the inventory position of one product.
type InventoryStats struct {
	ID         string  `json:"id"`
	Mean       float64 `json:"mean"`
	Max        float64 `json:"max"`
	Min        float64 `json:"min"`
	TotalSales float64 `json:"total_sales"`
	Rotation   float64 `json:"rotation"`
}

// Inventory summarizes inventory per product and its rotation against the
// product's total sales.
func Inventory(inventory, sales []domain.ResultRow) []InventoryStats {
	sold := make(map[string]float64)
	for _, r := range sales {
		if !math.IsNaN(r.Value) {
			sold[r.ID] += r.Value
		}
	}
	agg := Aggregate(inventory)
	out := make([]InventoryStats, 0, len(agg))
	for _, a := range agg {
		out = append(out, InventoryStats{
			ID:         a.ID,
			Mean:       a.Mean,
			Max:        a.Max,
			Min:        a.Min,
			TotalSales: sold[a.ID],
			Rotation:   Rotation(sold[a.ID], a.Mean),
		})
	}
	return out
}

// PeriodMargin is the mean price and cost of one period across products.
type PeriodMargin struct {
	Period    int     `json:"period"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
	Margin    float64 `json:"margin"`
	MarginPct float64 `json:"margin_pct"`
}

// MarginsByPeriod averages price and cost per period, in period order.
func MarginsByPeriod(rows []domain.DemandRow) []PeriodMargin {
	prices := make(map[int][]float64)
	costs := make(map[int][]float64)
	for _, r := range rows {
		prices[r.Period] = append(prices[r.Period], r.Price)
		costs[r.Period] = append(costs[r.Period], r.InputCost)
	}
	periods := make([]int, 0, len(prices))
	for p := range prices {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	out := make([]PeriodMargin, 0, len(periods))
	for _, p := range periods {
		price, cost := Mean(prices[p]), Mean(costs[p])
		out = append(out, PeriodMargin{
			Period:    p,
			Price:     price,
			Cost:      cost,
			Margin:    Margin(price, cost),
			MarginPct: MarginPct(price, cost),
		})
	}
	return out
}

// ProductMargin is the mean price and cost of one product.
type ProductMargin struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
	Margin    float64 `json:"margin"`
	MarginPct float64 `json:"margin_pct"`
}

// MarginsByProduct averages price and cost per product and joins the
// catalog name and category. Products are returned in first-seen order.
func MarginsByProduct(rows []domain.DemandRow, catalog []domain.Product) []ProductMargin {
	prices, costs := newSeries(), newSeries()
	for _, r := range rows {
		prices.add(r.ProductID, r.Price)
		costs.add(r.ProductID, r.InputCost)
	}
	byID := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	out := make([]ProductMargin, 0, len(prices.keys))
	for _, id := range prices.keys {
		price, cost := Mean(prices.values[id]), Mean(costs.values[id])
		p := byID[id]
		out = append(out, ProductMargin{
			ID:        id,
			Name:      p.Name,
			Category:  p.Category,
			Price:     price,
			Cost:      cost,
			Margin:    Margin(price, cost),
			MarginPct: MarginPct(price, cost),
		})
	}
	return out
}

// SortByMarginPct orders margins by margin percent, highest first. NaN
// sorts last.
func SortByMarginPct(items []ProductMargin) {
	sort.SliceStable(items, func(i, j int) bool {
		return descending(items[i].MarginPct, items[j].MarginPct)
	})
}

// SortByMargin orders margins by absolute margin, highest first.
func SortByMargin(items []ProductMargin) {
	sort.SliceStable(items, func(i, j int) bool {
		return descending(items[i].Margin, items[j].Margin)
	})
}

// Top returns at most n leading items.
func Top[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func descending(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

// CategoryMargin rolls product margins up to a category.
type CategoryMargin struct {
	Category  string  `json:"category"`
	MarginPct float64 `json:"margin_pct"`
	Margin    float64 `json:"margin"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
}

// MarginsByCategory averages product margins per category, sorted by name.
func MarginsByCategory(items []ProductMargin) []CategoryMargin {
	pct, margin, price, cost := newSeries(), newSeries(), newSeries(), newSeries()
	for _, it := range items {
		pct.add(it.Category, it.MarginPct)
		margin.add(it.Category, it.Margin)
		price.add(it.Category, it.Price)
		cost.add(it.Category, it.Cost)
	}
	cats := append([]string(nil), pct.keys...)
	sort.Strings(cats)

	out := make([]CategoryMargin, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryMargin{
			Category:  c,
			MarginPct: Mean(pct.values[c]),
			Margin:    Mean(margin.values[c]),
			Price:     Mean(price.values[c]),
			Cost:      Mean(cost.values[c]),
		})
	}
	return out
}

// MonthStat is the average demand picture of one calendar month.
type MonthStat struct {
	Month     int     `json:"month"`
	MinDemand float64 `json:"min_demand"`
	MaxDemand float64 `json:"max_demand"`
	MarginPct float64 `json:"margin_pct"`
}

// Seasonality averages demand and margin percent per calendar month across
// every year of the rows.
func Seasonality(rows []domain.DemandRow) []MonthStat {
	mins := make(map[int][]float64)
	maxs := make(map[int][]float64)
	pcts := make(map[int][]float64)
	for _, r := range rows {
		mins[r.Month] = append(mins[r.Month], r.MinDemand)
		maxs[r.Month] = append(maxs[r.Month], r.MaxDemand)
		pcts[r.Month] = append(pcts[r.Month], MarginPct(r.Price, r.InputCost))
	}
	months := make([]int, 0, len(mins))
	for m := range mins {
		months = append(months, m)
	}
	sort.Ints(months)

	out := make([]MonthStat, 0, len(months))
	for _, m := range months {
		out = append(out, MonthStat{
			Month:     m,
			MinDemand: Mean(mins[m]),
			MaxDemand: Mean(maxs[m]),
			MarginPct: Mean(pcts[m]),
		})
	}
	return out
}

// ObjectiveBreakdown splits the planned profit into its terms.
type ObjectiveBreakdown struct {
	Revenue      float64 `json:"revenue"`
	InputCost    float64 `json:"input_cost"`
	StorageCost  float64 `json:"storage_cost"`
	OvertimeCost float64 `json:"overtime_cost"`
	Net          float64 `json:"net"`
}

// PlanInputs are the tables the objective breakdown reads.
type PlanInputs struct {
	Production []domain.ResultRow
	Sales      []domain.ResultRow
	Inventory  []domain.ResultRow
	Overtime   []domain.ResultRow
	Demand     []domain.DemandRow
	Capacity   []domain.CapacityRow
	Products   []domain.Product
}

type periodKey struct {
	id     string
	period int
}

// Objective prices the solver plan: sales at the sale price, production at
// the input cost, inventory at the storage cost and overtime minutes at the
// hourly overtime rate. Terms with a missing factor are skipped.
func Objective(in PlanInputs) ObjectiveBreakdown {
	demand := make(map[periodKey]domain.DemandRow, len(in.Demand))
	for _, d := range in.Demand {
		demand[periodKey{d.ProductID, d.Period}] = d
	}
	capacity := make(map[periodKey]domain.CapacityRow, len(in.Capacity))
	for _, c := range in.Capacity {
		capacity[periodKey{c.ProcessID, c.Period}] = c
	}
	storage := make(map[string]float64, len(in.Products))
	for _, p := range in.Products {
		storage[p.ID] = p.StorageCost
	}

	var b ObjectiveBreakdown
	for _, r := range in.Sales {
		if d, ok := demand[periodKey{r.ID, r.Period}]; ok {
			b.Revenue += term(r.Value, d.Price)
		}
	}
	for _, r := range in.Production {
		if d, ok := demand[periodKey{r.ID, r.Period}]; ok {
			b.InputCost += term(r.Value, d.InputCost)
		}
	}
	for _, r := range in.Inventory {
		if c, ok := storage[r.ID]; ok {
			b.StorageCost += term(r.Value, c)
		}
	}
	for _, r := range in.Overtime {
		if c, ok := capacity[periodKey{r.ID, r.Period}]; ok {
			b.OvertimeCost += term(r.Value/60, c.OvertimeCost)
		}
	}
	b.Net = b.Revenue - b.InputCost - b.StorageCost - b.OvertimeCost
	return b
}

func term(qty, rate float64) float64 {
	v := qty * rate
	if math.IsNaN(v) {
		return 0
	}
	return v
}
