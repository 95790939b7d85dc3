package services

import (
	"fmt"

	"plandash/internal/analytics"
	"plandash/internal/charts"
	"plandash/internal/exporter"
	"plandash/internal/workbook"
	"plandash/pkg/contracts/domain"
)

const objectiveText = `MAXIMIZAR:
Z = Σ(i∈PRODUCTOS, t∈PERIODOS) [PrecioVenta(i,t) × Ventas(i,t)]
  - Σ(i∈PRODUCTOS, t∈PERIODOS) [CostoInsumo(i,t) × Produccion(i,t)]
  - Σ(i∈PRODUCTOS, t∈PERIODOS) [CostoAlmacen(i) × Inventario(i,t)]
  - Σ(p∈PROCESOS, t∈PERIODOS) [CostoHoraExtra(p,t) × HorasExtrasMinutos(p,t)]`

var constraintTexts = []string{
	`Balance de Inventarios:
Inventario(i,1) = StockInicial(i) + Produccion(i,1) - Ventas(i,1)
Inventario(i,t) = Inventario(i,t-1) + Produccion(i,t) - Ventas(i,t), t > 1`,
	`Límites de Mercado:
DemandaMinima(i,t) ≤ Ventas(i,t) ≤ DemandaMaxima(i,t)`,
	`Capacidad de Procesos:
Σ(i∈PRODUCTOS) [TiempoProceso(i,p) × Produccion(i,t)] ≤ CapacidadMinutos(p,t) × EficienciaOperativa + HorasExtrasMinutos(p,t)`,
	`Disponibilidad de Insumos:
Σ(i∈PRODUCTOS) [ConsumoInsumo(i,k) × Produccion(i,t)] ≤ StockDisponible(k,t)`,
	`No Negatividad:
Produccion(i,t) ≥ 0, Ventas(i,t) ≥ 0, Inventario(i,t) ≥ 0`,
}

func (s *DashboardService) buildModel(ds *workbook.Dataset, f Filters, p *page) error {
	p.note(objectiveText)
	for _, c := range constraintTexts {
		p.note(c)
	}

	options := productOptions(ds)
	p.view.Options.Products = options
	selected, err := pick(options, f.Product, ErrProductNotFound)
	if err != nil {
		return err
	}
	p.view.Filters.Product = selected.Value

	production := ds.Result(domain.ResultProduction)
	sales := ds.Result(domain.ResultSales)
	inventory := ds.Result(domain.ResultInventory)
	overtime := ds.Result(domain.ResultOvertime)

	hasResults := len(production) > 0
	if hasResults {
		z := s.settings.ReportedObjective
		p.kpi("Valor óptimo de Z", exporter.FormatCurrency(z), z)
	} else {
		p.info("Ejecute el modelo en LINGO para obtener el valor de la función objetivo")
	}

	if hasResults {
		p.table(resultTable("production", "Plan de Producción Óptimo", ds, production))
	} else {
		p.info("Los resultados de producción se cargarán automáticamente desde LINGO")
	}
	if len(sales) > 0 {
		p.table(resultTable("sales", "Plan de Ventas Óptimo", ds, sales))
	} else {
		p.info("Los resultados de ventas se cargarán automáticamente desde LINGO")
	}
	if len(inventory) > 0 {
		stats := analytics.Inventory(inventory, sales)
		rows := make([][]interface{}, len(stats))
		for i, st := range stats {
			rows[i] = []interface{}{st.ID, ds.ProductName(st.ID), num(st.Mean), num(st.Max), num(st.Min), num(st.TotalSales), num(st.Rotation)}
		}
		p.table(TableView{
			ID:      "inventory",
			Title:   "Niveles de Inventario Óptimos",
			Headers: []string{workbook.ColProductID, "Producto", "Promedio", "Maximo", "Minimo", "Ventas_Total", "Rotacion"},
			Rows:    rows,
		})
	} else {
		p.info("Los resultados de inventario se cargarán automáticamente desde LINGO")
	}

	if len(overtime) > 0 {
		agg := analytics.Aggregate(overtime)
		names := make([]string, len(agg))
		totals := make([]float64, len(agg))
		rows := make([][]interface{}, len(agg))
		for i, a := range agg {
			names[i] = domain.ProcessName(a.ID)
			totals[i] = a.Sum
			rows[i] = []interface{}{a.ID, names[i], num(a.Sum)}
		}
		p.chart("overtime", charts.Chart{
			Kind:       charts.KindBar,
			Title:      "Horas Extra Requeridas por Proceso",
			YLabel:     "Minutos de Horas Extra",
			Categories: names,
			Series:     []charts.Series{{Values: totals}},
		})
		p.table(TableView{
			ID:      "overtime",
			Title:   "Horas Extra Requeridas",
			Headers: []string{workbook.ColProcessID, "Proceso", "HorasExtrasMinutos"},
			Rows:    rows,
		})
	} else {
		p.info("Los resultados de horas extra se cargarán automáticamente desde LINGO")
	}

	if selected.Value != "" && hasResults {
		planChart(p, selected, production, sales, inventory)
	}

	if !hasResults {
		p.info("Ejecute el modelo en LINGO para ver el resumen ejecutivo")
		return nil
	}

	totalProd := analytics.Describe(analytics.Values(production)).Sum
	totalSales := analytics.Describe(analytics.Values(sales)).Sum
	avgInv := analytics.Mean(analytics.Values(inventory))
	p.kpi("Producción Total", exporter.FormatNumber(totalProd, 0)+" uds", totalProd)
	p.kpi("Ventas Totales", exporter.FormatNumber(totalSales, 0)+" uds", totalSales)
	p.kpi("Inventario Promedio", exporter.FormatNumber(avgInv, 0)+" uds", avgInv)
	p.kpi("Utilidad Total", exporter.FormatCurrency(s.settings.ReportedObjective), s.settings.ReportedObjective)

	b := analytics.Objective(analytics.PlanInputs{
		Production: production,
		Sales:      sales,
		Inventory:  inventory,
		Overtime:   overtime,
		Demand:     ds.Demand,
		Capacity:   ds.Capacity,
		Products:   ds.Products,
	})
	p.table(TableView{
		ID:      "objective",
		Title:   "Desglose de la Función Objetivo (calculado)",
		Headers: []string{"Termino", "Valor"},
		Rows: [][]interface{}{
			{"Ingresos por Ventas", num(b.Revenue)},
			{"Costos de Insumos", num(b.InputCost)},
			{"Costos de Almacenamiento", num(b.StorageCost)},
			{"Costos de Horas Extra", num(b.OvertimeCost)},
			{"Utilidad Neta (calculada)", num(b.Net)},
			{"Z reportado por LINGO", num(s.settings.ReportedObjective)},
		},
	})
	return nil
}

func resultTable(id, title string, ds *workbook.Dataset, rows []domain.ResultRow) TableView {
	agg := analytics.Aggregate(rows)
	out := make([][]interface{}, len(agg))
	for i, a := range agg {
		out[i] = []interface{}{a.ID, ds.ProductName(a.ID), num(a.Sum), num(a.Mean), num(a.Max), num(a.Min)}
	}
	return TableView{
		ID:      id,
		Title:   title,
		Headers: []string{workbook.ColProductID, "Producto", "Total", "Promedio", "Maximo", "Minimo"},
		Rows:    out,
	}
}

func planChart(p *page, selected Option, production, sales, inventory []domain.ResultRow) {
	series := func(name string, rows []domain.ResultRow) charts.Series {
		s := charts.Series{Name: name}
		for _, r := range rows {
			if r.ID == selected.Value {
				s.X = append(s.X, float64(r.Period))
				s.Y = append(s.Y, r.Value)
			}
		}
		return s
	}
	p.chart("plan", charts.Chart{
		Kind:   charts.KindLine,
		Title:  fmt.Sprintf("Plan Óptimo - %s", selected.Label),
		XLabel: "Período",
		YLabel: "Unidades",
		Series: []charts.Series{
			series("Producción", production),
			series("Ventas", sales),
			series("Inventario", inventory),
		},
	})
}

func buildSimulation(ds *workbook.Dataset, f Filters, p *page) error {
	p.note("Ajusta los parámetros para simular diferentes escenarios de producción y su impacto en costos y rentabilidad.")

	options := productOptions(ds)
	p.view.Options.Products = options
	selected, err := pick(options, f.Product, ErrProductNotFound)
	if err != nil {
		return err
	}
	history := demandFor(ds, selected.Value)
	if selected.Value == "" || len(history) == 0 {
		p.info("No hay datos históricos para simular")
		return nil
	}
	p.view.Filters.Product = selected.Value

	var price, cost, minD, maxD []float64
	for _, r := range history {
		price = append(price, r.Price)
		cost = append(cost, r.InputCost)
		minD = append(minD, r.MinDemand)
		maxD = append(maxD, r.MaxDemand)
	}
	base := analytics.Baseline{
		AvgPrice:     analytics.Mean(price),
		AvgCost:      analytics.Mean(cost),
		AvgMinDemand: analytics.Mean(minD),
		AvgMaxDemand: analytics.Mean(maxD),
	}
	if pr, ok := ds.Product(selected.Value); ok {
		base.ProductionTime = pr.ProductionTime
	}

	bounds := base.Bounds()
	if rawValue(bounds.PriceMin) != nil && rawValue(bounds.PriceMax) != nil {
		p.view.Options.Simulation = &bounds
	}

	if f.SimProduct != "" && f.SimProduct != selected.Value {
		f.Price, f.Volume = nil, nil
	}
	scenario := base.DefaultScenario()
	if f.Price != nil {
		scenario.Price = *f.Price
	}
	if f.Volume != nil {
		scenario.Volume = *f.Volume
	}
	scenario.CostReduction = f.CostReduction
	scenario.Efficiency = f.Efficiency
	if err := base.Validate(scenario); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	price0 := scenario.Price
	volume0 := scenario.Volume
	p.view.Filters.Price = &price0
	p.view.Filters.Volume = &volume0
	p.view.Filters.SimProduct = selected.Value

	res := base.Simulate(scenario)

	p.kpi("Precio Promedio Histórico", exporter.FormatCurrency(base.AvgPrice), base.AvgPrice)
	p.kpi("Costo Promedio Histórico", exporter.FormatCurrency(base.AvgCost), base.AvgCost)
	p.kpi("Demanda Mínima Promedio", exporter.FormatNumber(base.AvgMinDemand, 0)+" uds", base.AvgMinDemand)
	p.kpi("Demanda Máxima Promedio", exporter.FormatNumber(base.AvgMaxDemand, 0)+" uds", base.AvgMaxDemand)
	p.kpiDelta("Situación Actual", exporter.FormatCurrency(res.CurrentMargin), res.CurrentMargin, exporter.FormatPercent(res.CurrentMarginPct))
	p.kpiDelta("Situación Simulada", exporter.FormatCurrency(res.SimMargin), res.SimMargin, exporter.FormatPercent(res.SimMarginPct))
	p.kpi("Tiempo Producción Actual", exporter.FormatNumber(res.CurrentTime, 1)+" min", res.CurrentTime)
	p.kpiDelta("Tiempo Producción Simulado", exporter.FormatNumber(res.SimTime, 1)+" min", res.SimTime,
		fmt.Sprintf("-%s%%", exporter.FormatNumber(scenario.Efficiency, 0)))
	p.kpi("Costo Unitario Simulado", exporter.FormatCurrency(res.NewCost), res.NewCost)
	p.kpi("Impacto en Utilidad Total", exporter.FormatCurrency(res.ProfitImpact), res.ProfitImpact)
	p.kpi("Ahorro de Tiempo Total", fmt.Sprintf("%s minutos (%s horas)",
		exporter.FormatNumber(res.TimeSavingMinutes, 0), exporter.FormatNumber(res.TimeSavingHours, 1)), res.TimeSavingMinutes)

	p.chart("comparison", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Simulado vs Actual",
		YLabel:     "Valor ($)",
		Categories: []string{"Margen Unitario", "Costo Unitario"},
		Series: []charts.Series{
			{Name: "Actual", Values: []float64{res.CurrentMargin, base.AvgCost}},
			{Name: "Simulado", Values: []float64{res.SimMargin, res.NewCost}},
		},
	})

	xs := make([]float64, len(res.Sensitivity))
	ys := make([]float64, len(res.Sensitivity))
	rows := make([][]interface{}, len(res.Sensitivity))
	for i, pt := range res.Sensitivity {
		xs[i], ys[i] = pt.X, pt.Y
		rows[i] = []interface{}{num(pt.X), num(pt.Y)}
	}
	marker := scenario.Price
	p.chart("sensitivity", charts.Chart{
		Kind:        charts.KindLine,
		Title:       "Sensibilidad de Utilidad vs Precio de Venta",
		XLabel:      "Precio de Venta ($)",
		YLabel:      "Utilidad Total ($)",
		Series:      []charts.Series{{Name: "Utilidad", X: xs, Y: ys}},
		MarkerX:     &marker,
		MarkerLabel: "Precio Simulado",
	})
	p.table(TableView{ID: "sensitivity", Title: "Análisis de Sensibilidad", Headers: []string{"Precio", "Utilidad"}, Rows: rows})
	return nil
}

func (s *DashboardService) buildGoals(ds *workbook.Dataset, _ Filters, p *page) error {
	p.note(`Este módulo evalúa el desempeño de la empresa frente a objetivos conflictivos utilizando el enfoque de
Programación por Metas, que permite balancear múltiples objetivos estratégicos simultáneamente.`)

	card := analytics.Score(s.settings.Goals)
	in := card.Input

	p.kpiDelta("Utilidad Alcanzada", exporter.FormatCurrency(card.AchievedProfit), card.AchievedProfit,
		"-"+exporter.FormatCurrency(in.ProfitShortfall))
	p.kpi("Meta de Utilidad", exporter.FormatCurrency(in.ProfitTarget), in.ProfitTarget)
	p.kpiDelta("Horas Extra Utilizadas", minutes(card.AchievedOvertime), card.AchievedOvertime,
		"+"+minutes(in.OvertimeExcess))
	p.kpi("Límite de Horas Extra", minutes(in.OvertimeCap), in.OvertimeCap)
	p.kpi("Cumplimiento Meta Utilidad", exporter.FormatPercent(card.ProfitAttainment), card.ProfitAttainment)
	p.kpi("Cumplimiento Meta Horas Extra", exporter.FormatPercent(card.OvertimeAttainment), card.OvertimeAttainment)
	p.kpi("Exceso sobre la Meta", exporter.FormatPercent(card.OvertimeExcessPct), card.OvertimeExcessPct)
	p.kpi("Puntuación General Ponderada", exporter.FormatPercent(card.Score), card.Score)

	if card.ProfitMet {
		p.info("Meta Financiera Cumplida")
	} else {
		p.info("No se alcanzó la meta de utilidad por %s (cumplimiento %s)",
			exporter.FormatCurrency(in.ProfitShortfall), exporter.FormatPercent(card.ProfitAttainment))
	}
	if card.OvertimeMet {
		p.info("Meta Laboral Cumplida")
	} else {
		p.info("Se excedió el límite de horas extra en %s (%s sobre la meta)",
			minutes(in.OvertimeExcess), exporter.FormatPercent(card.OvertimeExcessPct))
	}

	p.chart("profit", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Utilidad Alcanzada vs Meta ($)",
		Categories: []string{"Utilidad"},
		Series: []charts.Series{
			{Name: "Meta", Values: []float64{in.ProfitTarget}},
			{Name: "Alcanzada", Values: []float64{card.AchievedProfit}},
		},
	})
	p.chart("overtime", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Uso de Horas Extras (Minutos)",
		YLabel:     "Minutos",
		Categories: []string{"Horas Extras"},
		Series: []charts.Series{
			{Name: "Meta Máxima", Values: []float64{in.OvertimeCap}},
			{Name: "Real Usado", Values: []float64{card.AchievedOvertime}},
		},
	})

	xs := make([]float64, len(card.TradeOffs))
	ys := make([]float64, len(card.TradeOffs))
	labels := make([]string, len(card.TradeOffs))
	rows := make([][]interface{}, len(card.TradeOffs))
	for i, t := range card.TradeOffs {
		xs[i], ys[i], labels[i] = t.Overtime, t.Profit, t.Strategy
		rows[i] = []interface{}{t.Strategy, num(t.Profit), num(t.Overtime)}
	}
	p.chart("trade-off", charts.Chart{
		Kind:   charts.KindScatter,
		Title:  "Trade-off: Utilidad vs Horas Extra",
		XLabel: "Horas Extra (minutos)",
		YLabel: "Utilidad ($)",
		Series: []charts.Series{{X: xs, Y: ys, Labels: labels}},
	})
	p.table(TableView{ID: "trade-offs", Title: "Análisis de Trade-offs Estratégicos", Headers: []string{"Estrategia", "Utilidad", "Horas_Extra_Min"}, Rows: rows})

	p.table(TableView{
		ID:      "scorecard",
		Title:   "Resumen Ejecutivo de Cumplimiento",
		Headers: []string{"Meta", "Objetivo", "Alcanzado", "Desviacion", "Cumplimiento_Pct"},
		Rows: [][]interface{}{
			{"Utilidad", num(in.ProfitTarget), num(card.AchievedProfit), num(in.ProfitShortfall), num(card.ProfitAttainment)},
			{"Horas Extra", num(in.OvertimeCap), num(card.AchievedOvertime), num(in.OvertimeExcess), num(card.OvertimeAttainment)},
		},
	})

	p.note(recommendation(card))
	p.note(fmt.Sprintf(`Función Objetivo del Modelo:
MIN = (%s × D_UTIL_NEG) + (%s × D_HE_POS)

D_UTIL_NEG: desviación negativa de la meta de utilidad (%s)
D_HE_POS: desviación positiva de la meta de horas extra (%s)

Restricciones de Metas:
1. Utilidad: Ingresos - Costos + D_UTIL_NEG - D_UTIL_POS = %s
2. Horas Extra: Total Minutos Extra + D_HE_NEG - D_HE_POS = %s`,
		exporter.FormatNumber(in.ProfitWeight, 0), exporter.FormatNumber(in.OvertimeWeight, 0),
		exporter.FormatCurrency(in.ProfitShortfall), minutes(in.OvertimeExcess),
		exporter.FormatNumber(in.ProfitTarget, 0), exporter.FormatNumber(in.OvertimeCap, 0)))
	return nil
}

// recommendation picks the advice matching which goals were missed.
func recommendation(card analytics.Scorecard) string {
	switch {
	case !card.ProfitMet && !card.OvertimeMet:
		return `Escenario: Baja Utilidad + Exceso de Horas Extra.
Diagnóstico: la empresa no alcanzó la meta de utilidad y excedió el límite de horas extra, lo que indica cuellos de botella en la capacidad productiva y una demanda por encima de la capacidad.
Recomendaciones:
- Inversión en Capacidad: expandir la capacidad productiva permanente.
- Revisión de Metas: las metas actuales pueden ser poco realistas dadas las restricciones operativas.
- Revisión de Prioridades: repensar la ponderación de metas si la demanda es tan alta.
- Automatización: evaluar inversiones que reduzcan la dependencia de horas extra.`
	case !card.ProfitMet:
		return `Escenario: Utilidad bajo la meta con horas extra controladas.
Recomendaciones:
- Revisar precios y costos de insumos de los productos con menor margen.
- Evaluar si una mayor tolerancia de horas extra permitiría cubrir la demanda rentable.`
	case !card.OvertimeMet:
		return `Escenario: Meta de utilidad cumplida a costa de horas extra.
Recomendaciones:
- Redistribuir la producción hacia períodos con capacidad ociosa.
- Evaluar turnos adicionales o contratación para reducir la fatiga laboral.`
	default:
		return `Escenario: Ambas metas cumplidas.
Recomendaciones:
- Mantener el plan actual y evaluar metas más exigentes para el siguiente horizonte.`
	}
}
