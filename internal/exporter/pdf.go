package exporter

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"plandash/internal/analytics"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorBad     = &props.Color{Red: 190, Green: 30, Blue: 30}
	colorGood    = &props.Color{Red: 30, Green: 130, Blue: 60}
)

// ScorecardPDF lays out the goal scorecard on one A4 page.
func ScorecardPDF(card analytics.Scorecard, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cumplimiento de Metas", true).
		WithAuthor("ICATEX", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(row.New(16).Add(
		col.New(8).Add(
			text.New("Cumplimiento de Metas Estratégicas", props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Programación por metas: utilidad vs horas extra", props.Text{Size: 9, Color: colorGray, Top: 9}),
		),
		col.New(4).Add(
			text.New(generatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Color: colorGray, Top: 2}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	in := card.Input
	m.AddRows(sectionRow("Meta financiera"))
	m.AddRows(
		kvRow("Meta de utilidad", FormatCurrency(in.ProfitTarget), nil),
		kvRow("Utilidad alcanzada", FormatCurrency(card.AchievedProfit), nil),
		kvRow("Faltante", FormatCurrency(in.ProfitShortfall), statusColor(card.ProfitMet)),
		kvRow("Cumplimiento", FormatPercent(card.ProfitAttainment), nil),
	)

	m.AddRows(sectionRow("Meta laboral (horas extra)"))
	m.AddRows(
		kvRow("Límite de horas extra", FormatNumber(in.OvertimeCap, 0)+" min", nil),
		kvRow("Horas extra utilizadas", FormatNumber(card.AchievedOvertime, 0)+" min", nil),
		kvRow("Exceso", FormatNumber(in.OvertimeExcess, 0)+" min", statusColor(card.OvertimeMet)),
		kvRow("Exceso sobre la meta", FormatPercent(card.OvertimeExcessPct), nil),
		kvRow("Cumplimiento", FormatPercent(card.OvertimeAttainment), nil),
	)

	m.AddRows(sectionRow("Resumen ponderado"))
	m.AddRows(
		kvRow("Pesos (utilidad : horas extra)", fmt.Sprintf("%s : %s", FormatNumber(in.ProfitWeight, 0), FormatNumber(in.OvertimeWeight, 0)), nil),
		kvRow("Puntuación general", FormatPercent(card.Score), nil),
	)

	m.AddRows(sectionRow("Trade-off de estrategias"))
	m.AddRows(tableRow(true, "Estrategia", "Utilidad", "Horas extra (min)"))
	for _, p := range card.TradeOffs {
		m.AddRows(tableRow(false, p.Strategy, FormatCurrency(p.Profit), FormatNumber(p.Overtime, 0)))
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("MIN = (%s × D_UTIL_NEG) + (%s × D_HE_POS)",
			FormatNumber(in.ProfitWeight, 0), FormatNumber(in.OvertimeWeight, 0)),
			props.Text{Size: 8, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate scorecard pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func sectionRow(title string) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 4}),
	))
}

func kvRow(label, value string, valueColor *props.Color) core.Row {
	return row.New(6).Add(
		col.New(6).Add(text.New(label, props.Text{Size: 9, Top: 1})),
		col.New(6).Add(text.New(value, props.Text{Size: 9, Top: 1, Align: align.Right, Style: fontstyle.Bold, Color: valueColor})),
	)
}

func tableRow(header bool, cells ...string) core.Row {
	style := fontstyle.Normal
	if header {
		style = fontstyle.Bold
	}
	r := row.New(6)
	for i, c := range cells {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		r.Add(col.New(4).Add(text.New(c, props.Text{Size: 8, Top: 1, Style: style, Align: a})))
	}
	return r
}

func statusColor(met bool) *props.Color {
	if met {
		return colorGood
	}
	return colorBad
}
