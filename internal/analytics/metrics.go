package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Margin returns price - cost.
func Margin(price, cost float64) float64 {
	return price - cost
}

// MarginPct returns the margin as a percentage of price. It is NaN when
// price is 0.
func MarginPct(price, cost float64) float64 {
	if price == 0 {
		return math.NaN()
	}
	return (price - cost) / price * 100
}

// Rotation returns units sold per unit of average inventory, or 0 when the
// average inventory is not positive.
func Rotation(totalSold, avgInventory float64) float64 {
	if avgInventory <= 0 || math.IsNaN(avgInventory) {
		return 0
	}
	return totalSold / avgInventory
}

// Stats summarizes a series, ignoring NaN.
type Stats struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Describe returns the count, sum, mean, min and max of the non-NaN values.
// Mean, min and max are NaN for an empty series.
func Describe(values []float64) Stats {
	clean := Clean(values)
	if len(clean) == 0 {
		nan := math.NaN()
		return Stats{Mean: nan, Min: nan, Max: nan}
	}
	return Stats{
		Count: len(clean),
		Sum:   floats.Sum(clean),
		Mean:  stat.Mean(clean, nil),
		Min:   floats.Min(clean),
		Max:   floats.Max(clean),
	}
}

// Mean returns the mean of the non-NaN values, or NaN.
func Mean(values []float64) float64 {
	return Describe(values).Mean
}

// Clean returns the values that are not NaN.
func Clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// FiveNumber is the box-plot summary of a series.
type FiveNumber struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Quartiles returns the five-number summary of the non-NaN values. All
// fields are NaN for an empty series.
func Quartiles(values []float64) FiveNumber {
	clean := Clean(values)
	if len(clean) == 0 {
		nan := math.NaN()
		return FiveNumber{nan, nan, nan, nan, nan}
	}
	sort.Float64s(clean)
	return FiveNumber{
		Min:    clean[0],
		Q1:     stat.Quantile(0.25, stat.LinInterp, clean, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, clean, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, clean, nil),
		Max:    clean[len(clean)-1],
	}
}

// Line is y = Intercept + Slope*x.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Trend fits a least-squares line through the points whose coordinates are
// both present. It reports false when fewer than two such points exist or
// every x is the same.
func Trend(xs, ys []float64) (Line, bool) {
	var cx, cy []float64
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		cx = append(cx, xs[i])
		cy = append(cy, ys[i])
	}
	if len(cx) < 2 || floats.Min(cx) == floats.Max(cx) {
		return Line{}, false
	}
	alpha, beta := stat.LinearRegression(cx, cy, nil, false)
	return Line{Intercept: alpha, Slope: beta}, true
}

// Point is one (x, y) pair of a derived curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SensitivityPoints is the number of prices the sensitivity curve samples.
const SensitivityPoints = 10

// Sensitivity returns total profit (price - cost) * volume over
// SensitivityPoints prices spread evenly across 70%..130% of avgPrice.
func Sensitivity(avgPrice, cost, volume float64) []Point {
	prices := floats.Span(make([]float64, SensitivityPoints), avgPrice*0.7, avgPrice*1.3)
	points := make([]Point, len(prices))
	for i, p := range prices {
		points[i] = Point{X: p, Y: (p - cost) * volume}
	}
	return points
}
