package analytics

import "math"

// GoalInput holds the goal-programming targets, the solver's deviations and
// the objective weights.
type GoalInput struct {
	ProfitTarget    float64 `json:"profit_target"`
	OvertimeCap     float64 `json:"overtime_cap"`
	ProfitShortfall float64 `json:"profit_shortfall"`
	OvertimeExcess  float64 `json:"overtime_excess"`
	ProfitWeight    float64 `json:"profit_weight"`
	OvertimeWeight  float64 `json:"overtime_weight"`
}

// TradeOffPoint is one strategy on the profit/overtime plane.
type TradeOffPoint struct {
	Strategy string  `json:"strategy"`
	Profit   float64 `json:"profit"`
	Overtime float64 `json:"overtime_min"`
}

// Reference strategies shown around the model's own point.
var (
	ProfitOnly  = TradeOffPoint{Strategy: "Solo Utilidad", Profit: 13000000, Overtime: 80000}
	WelfareOnly = TradeOffPoint{Strategy: "Solo Bienestar", Profit: 9000000, Overtime: 30000}
)

// Scorecard is the goal attainment of one solver run.
type Scorecard struct {
	Input              GoalInput       `json:"input"`
	AchievedProfit     float64         `json:"achieved_profit"`
	AchievedOvertime   float64         `json:"achieved_overtime_min"`
	ProfitAttainment   float64         `json:"profit_attainment_pct"`
	OvertimeAttainment float64         `json:"overtime_attainment_pct"`
	OvertimeExcessPct  float64         `json:"overtime_excess_pct"`
	Score              float64         `json:"score_pct"`
	ProfitMet          bool            `json:"profit_met"`
	OvertimeMet        bool            `json:"overtime_met"`
	TradeOffs          []TradeOffPoint `json:"trade_offs"`
}

// Score evaluates the goals. Profit attainment is achieved/target, overtime
// attainment falls linearly to 0 as the excess reaches the cap, and the
// score is their weighted mean.
func Score(in GoalInput) Scorecard {
	achievedProfit := in.ProfitTarget - in.ProfitShortfall
	achievedOvertime := in.OvertimeCap + in.OvertimeExcess

	profitAtt := 0.0
	if in.ProfitTarget > 0 {
		profitAtt = achievedProfit / in.ProfitTarget * 100
	}

	overtimeAtt := 100.0
	excessPct := 0.0
	if in.OvertimeCap > 0 {
		ratio := in.OvertimeExcess / in.OvertimeCap
		overtimeAtt = math.Max(0, 1-math.Min(ratio, 1)) * 100
		excessPct = ratio * 100
	}

	score := 0.0
	if w := in.ProfitWeight + in.OvertimeWeight; w > 0 {
		score = (profitAtt*in.ProfitWeight + overtimeAtt*in.OvertimeWeight) / w
	}

	return Scorecard{
		Input:              in,
		AchievedProfit:     achievedProfit,
		AchievedOvertime:   achievedOvertime,
		ProfitAttainment:   profitAtt,
		OvertimeAttainment: overtimeAtt,
		OvertimeExcessPct:  excessPct,
		Score:              score,
		ProfitMet:          in.ProfitShortfall <= 0,
		OvertimeMet:        in.OvertimeExcess <= 0,
		TradeOffs: []TradeOffPoint{
			ProfitOnly,
			{Strategy: "Balanceado (Modelo)", Profit: achievedProfit, Overtime: achievedOvertime},
			WelfareOnly,
		},
	}
}
