package analytics

import (
	"fmt"
	"math"
)

// Limits of the what-if levers, in percent.
const (
	MaxCostReduction = 50
	MaxEfficiency    = 30
)

// Baseline is the historical average position of one product.
type Baseline struct {
	AvgPrice       float64 `json:"avg_price"`
	AvgCost        float64 `json:"avg_cost"`
	AvgMinDemand   float64 `json:"avg_min_demand"`
	AvgMaxDemand   float64 `json:"avg_max_demand"`
	ProductionTime float64 `json:"production_time_min"`
}

// SimulationBounds are the ranges the simulation levers accept for a baseline.
type SimulationBounds struct {
	PriceMin      float64 `json:"price_min"`
	PriceMax      float64 `json:"price_max"`
	PriceDefault  float64 `json:"price_default"`
	VolumeMin     int     `json:"volume_min"`
	VolumeMax     int     `json:"volume_max"`
	VolumeDefault int     `json:"volume_default"`
}

// Bounds returns the price range 50%..150% of the average price and the
// volume range from the average minimum demand to 120% of the average
// maximum demand.
func (b Baseline) Bounds() SimulationBounds {
	volMin := truncInt(b.AvgMinDemand)
	volMax := truncInt(b.AvgMaxDemand * 1.2)
	if volMax < volMin {
		volMax = volMin
	}
	return SimulationBounds{
		PriceMin:      b.AvgPrice * 0.5,
		PriceMax:      b.AvgPrice * 1.5,
		PriceDefault:  b.AvgPrice,
		VolumeMin:     volMin,
		VolumeMax:     volMax,
		VolumeDefault: volMin,
	}
}

// Scenario holds the lever settings of one simulation run.
type Scenario struct {
	Price         float64 `json:"price"`
	CostReduction float64 `json:"cost_reduction_pct"`
	Efficiency    float64 `json:"efficiency_pct"`
	Volume        int     `json:"volume"`
}

// DefaultScenario returns the levers at their default positions.
func (b Baseline) DefaultScenario() Scenario {
	bounds := b.Bounds()
	return Scenario{Price: bounds.PriceDefault, Volume: bounds.VolumeDefault}
}

// Validate checks a scenario against the bounds of the baseline.
func (b Baseline) Validate(s Scenario) error {
	bounds := b.Bounds()
	const eps = 1e-9
	if s.Price < bounds.PriceMin-eps || s.Price > bounds.PriceMax+eps {
		return fmt.Errorf("price %.2f outside [%.2f, %.2f]", s.Price, bounds.PriceMin, bounds.PriceMax)
	}
	if s.CostReduction < 0 || s.CostReduction > MaxCostReduction {
		return fmt.Errorf("cost reduction %.1f outside [0, %d]", s.CostReduction, MaxCostReduction)
	}
	if s.Efficiency < 0 || s.Efficiency > MaxEfficiency {
		return fmt.Errorf("efficiency %.1f outside [0, %d]", s.Efficiency, MaxEfficiency)
	}
	if s.Volume < bounds.VolumeMin || s.Volume > bounds.VolumeMax {
		return fmt.Errorf("volume %d outside [%d, %d]", s.Volume, bounds.VolumeMin, bounds.VolumeMax)
	}
	return nil
}

// SimulationResult compares the current and simulated economics of a product.
type SimulationResult struct {
	Scenario          Scenario `json:"scenario"`
	NewCost           float64  `json:"new_cost"`
	CurrentMargin     float64  `json:"current_margin"`
	CurrentMarginPct  float64  `json:"current_margin_pct"`
	SimMargin         float64  `json:"simulated_margin"`
	SimMarginPct      float64  `json:"simulated_margin_pct"`
	CurrentTime       float64  `json:"current_time_min"`
	SimTime           float64  `json:"simulated_time_min"`
	CurrentProfit     float64  `json:"current_profit"`
	SimProfit         float64  `json:"simulated_profit"`
	ProfitImpact      float64  `json:"profit_impact"`
	TimeSavingMinutes float64  `json:"time_saving_min"`
	TimeSavingHours   float64  `json:"time_saving_hours"`
	Sensitivity       []Point  `json:"sensitivity"`
}

// Simulate applies a scenario to the baseline.
func (b Baseline) Simulate(s Scenario) SimulationResult {
	volume := float64(s.Volume)
	newCost := b.AvgCost * (1 - s.CostReduction/100)
	curMargin := Margin(b.AvgPrice, b.AvgCost)
	simMargin := Margin(s.Price, newCost)
	simTime := b.ProductionTime * (1 - s.Efficiency/100)
	saving := (b.ProductionTime - simTime) * volume

	return SimulationResult{
		Scenario:          s,
		NewCost:           newCost,
		CurrentMargin:     curMargin,
		CurrentMarginPct:  MarginPct(b.AvgPrice, b.AvgCost),
		SimMargin:         simMargin,
		SimMarginPct:      MarginPct(s.Price, newCost),
		CurrentTime:       b.ProductionTime,
		SimTime:           simTime,
		CurrentProfit:     curMargin * volume,
		SimProfit:         simMargin * volume,
		ProfitImpact:      (simMargin - curMargin) * volume,
		TimeSavingMinutes: saving,
		TimeSavingHours:   saving / 60,
		Sensitivity:       Sensitivity(b.AvgPrice, newCost, volume),
	}
}

func truncInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
