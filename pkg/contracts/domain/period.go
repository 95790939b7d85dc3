package domain

// Horizon describes how period indexes map onto calendar years and months.
type Horizon struct {
	FirstYear      int
	PeriodsPerYear int
	Periods        int
}

// DefaultHorizon is the four-year monthly planning horizon 2021-2024.
var DefaultHorizon = Horizon{FirstYear: 2021, PeriodsPerYear: 12, Periods: 48}

// Years returns the number of whole years covered by the horizon.
func (h Horizon) Years() int {
	if h.PeriodsPerYear <= 0 {
		return 0
	}
	return (h.Periods + h.PeriodsPerYear - 1) / h.PeriodsPerYear
}

// Year maps a 1-based period index to its calendar year. Periods past the end
// of the horizon stay in the last year.
func (h Horizon) Year(period int) int {
	if period < 1 || h.PeriodsPerYear <= 0 {
		return h.FirstYear
	}
	offset := (period - 1) / h.PeriodsPerYear
	if last := h.Years() - 1; last >= 0 && offset > last {
		offset = last
	}
	return h.FirstYear + offset
}

// Month maps a 1-based period index to a month in 1..PeriodsPerYear. Periods
// past the end of the horizon wrap around the year.
func (h Horizon) Month(period int) int {
	if period < 1 || h.PeriodsPerYear <= 0 {
		return 1
	}
	return (period-1)%h.PeriodsPerYear + 1
}

// YearList returns every calendar year of the horizon in ascending order.
func (h Horizon) YearList() []int {
	years := make([]int, 0, h.Years())
	for i := 0; i < h.Years(); i++ {
		years = append(years, h.FirstYear+i)
	}
	return years
}
