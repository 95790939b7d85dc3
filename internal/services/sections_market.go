package services

import (
	"fmt"

	"plandash/internal/analytics"
	"plandash/internal/charts"
	"plandash/internal/exporter"
	"plandash/internal/workbook"
	"plandash/pkg/contracts/domain"
)

func buildDemand(ds *workbook.Dataset, f Filters, p *page) error {
	options := productOptions(ds)
	p.view.Options.Products = options
	selected, err := pick(options, f.Product, ErrProductNotFound)
	if err != nil {
		return err
	}
	if len(ds.Demand) == 0 || selected.Value == "" {
		p.info("No hay datos de demanda en %s", workbook.SheetDemand)
		return nil
	}
	p.view.Filters.Product = selected.Value
	demand := ds.Table(workbook.SheetDemand)

	history := demandFor(ds, selected.Value)
	years := yearsOf(history)
	p.view.Options.Years = years
	year := pickYear(years, f.Year)
	p.view.Filters.Year = year
	rows := byYear(history, year)
	if len(rows) == 0 {
		p.info("Sin datos de demanda para %s en %d", selected.Label, year)
	}

	var minD, maxD, price, cost, months, pct []float64
	for _, r := range rows {
		minD = append(minD, r.MinDemand)
		maxD = append(maxD, r.MaxDemand)
		price = append(price, r.Price)
		cost = append(cost, r.InputCost)
		months = append(months, float64(r.Month))
		pct = append(pct, analytics.MarginPct(r.Price, r.InputCost))
	}
	mMin, mMax := analytics.Mean(minD), analytics.Mean(maxD)
	mPrice, mCost := analytics.Mean(price), analytics.Mean(cost)
	p.kpi("Demanda Mínima Promedio", exporter.FormatNumber(mMin, 0)+" uds", mMin)
	p.kpi("Demanda Máxima Promedio", exporter.FormatNumber(mMax, 0)+" uds", mMax)
	p.kpi("Precio Venta Promedio", exporter.FormatCurrency(mPrice), mPrice)
	p.kpi("Costo Insumo Promedio", exporter.FormatCurrency(mCost), mCost)

	p.chart("demand", demandBand(fmt.Sprintf("Rango de Demanda - %s - %d", selected.Label, year), rows))
	p.chart("prices", priceLines(fmt.Sprintf("Evolución de Precios y Costos - %s - %d", selected.Label, year), rows))
	if demand.Has(workbook.ColPrice, workbook.ColInputCost) {
		p.chart("margin", charts.Chart{
			Kind:   charts.KindLine,
			Title:  fmt.Sprintf("Evolución del Margen Porcentual - %s - %d", selected.Label, year),
			XLabel: "Mes",
			YLabel: "Margen (%)",
			Series: []charts.Series{{Name: "Margen %", X: months, Y: pct}},
		})
	}

	seasonality(demand, history, p)

	// Mes is derived from Periodo_Index, which every decoded row has.
	type column struct {
		name  string
		value func(domain.DemandRow) interface{}
	}
	columns := []column{{"Mes", func(r domain.DemandRow) interface{} { return r.Month }}}
	for _, c := range []column{
		{workbook.ColMinDemand, func(r domain.DemandRow) interface{} { return num(r.MinDemand) }},
		{workbook.ColMaxDemand, func(r domain.DemandRow) interface{} { return num(r.MaxDemand) }},
		{workbook.ColPrice, func(r domain.DemandRow) interface{} { return num(r.Price) }},
		{workbook.ColInputCost, func(r domain.DemandRow) interface{} { return num(r.InputCost) }},
	} {
		if demand.Has(c.name) {
			columns = append(columns, c)
		}
	}
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.name
	}
	table := make([][]interface{}, len(rows))
	for i, r := range rows {
		rec := make([]interface{}, len(columns))
		for j, c := range columns {
			rec[j] = c.value(r)
		}
		table[i] = rec
	}
	p.table(TableView{ID: "demand", Title: "Datos Detallados de Demanda", Headers: headers, Rows: table})
	return nil
}

// seasonality adds the per-month pattern over every year of a product.
func seasonality(demand *workbook.Table, history []domain.DemandRow, p *page) {
	if missing := demand.Missing(workbook.ColMinDemand, workbook.ColMaxDemand); len(missing) > 0 {
		p.info("No se pueden calcular patrones estacionales. Faltan columnas: %v", missing)
		return
	}
	stats := analytics.Seasonality(history)
	withMargin := demand.Has(workbook.ColPrice, workbook.ColInputCost)

	months := make([]float64, len(stats))
	lo := make([]float64, len(stats))
	hi := make([]float64, len(stats))
	pct := make([]float64, len(stats))
	rows := make([][]interface{}, len(stats))
	for i, s := range stats {
		months[i] = float64(s.Month)
		lo[i] = s.MinDemand
		hi[i] = s.MaxDemand
		pct[i] = s.MarginPct
		rows[i] = []interface{}{s.Month, num(s.MinDemand), num(s.MaxDemand)}
		if withMargin {
			rows[i] = append(rows[i], num(s.MarginPct))
		}
	}

	p.chart("seasonality-demand", charts.Chart{
		Kind:   charts.KindLine,
		Title:  "Patrón Estacional de Demanda",
		XLabel: "Mes",
		YLabel: "Unidades",
		Series: []charts.Series{
			{Name: "Demanda Mínima Promedio", X: months, Y: lo},
			{Name: "Demanda Máxima Promedio", X: months, Y: hi},
		},
	})

	headers := []string{"Mes", workbook.ColMinDemand, workbook.ColMaxDemand}
	if withMargin {
		headers = append(headers, "Margen_Porcentaje")
		p.chart("seasonality-margin", charts.Chart{
			Kind:   charts.KindLine,
			Title:  "Patrón Estacional del Margen",
			XLabel: "Mes",
			YLabel: "Margen (%)",
			Series: []charts.Series{{Name: "Margen %", X: months, Y: pct}},
		})
	} else {
		p.info("No hay datos de margen para el análisis estacional")
	}
	p.table(TableView{ID: "seasonality", Title: "Análisis de Estacionalidad", Headers: headers, Rows: rows})
}

func buildCosts(ds *workbook.Dataset, f Filters, p *page) error {
	if len(ds.Demand) == 0 {
		p.info("No hay datos de precios y costos en %s", workbook.SheetDemand)
		return nil
	}
	demand := ds.Table(workbook.SheetDemand)
	if !p.requireColumns(demand, "El análisis de rentabilidad", workbook.ColPrice, workbook.ColInputCost) {
		return nil
	}

	years := yearsOf(ds.Demand)
	p.view.Options.Years = years
	year := pickYear(years, f.Year)
	p.view.Filters.Year = year
	rows := byYear(ds.Demand, year)
	if len(rows) == 0 {
		p.info("Sin datos de costos para %d", year)
	}

	periods := analytics.MarginsByPeriod(rows)
	var xs, price, cost, margin, pct []float64
	var periodRows [][]interface{}
	for _, pm := range periods {
		xs = append(xs, float64(pm.Period))
		price = append(price, pm.Price)
		cost = append(cost, pm.Cost)
		margin = append(margin, pm.Margin)
		pct = append(pct, pm.MarginPct)
		periodRows = append(periodRows, []interface{}{pm.Period, num(pm.Price), num(pm.Cost), num(pm.Margin), num(pm.MarginPct)})
	}
	mPrice, mCost := analytics.Mean(price), analytics.Mean(cost)
	mMargin, mPct := analytics.Mean(margin), analytics.Mean(pct)
	p.kpi("Precio Venta Promedio", exporter.FormatCurrency(mPrice), mPrice)
	p.kpi("Costo Insumo Promedio", exporter.FormatCurrency(mCost), mCost)
	p.kpi("Margen Promedio", exporter.FormatCurrency(mMargin), mMargin)
	p.kpi("Margen % Promedio", exporter.FormatPercent(mPct), mPct)

	p.chart("trends", charts.Chart{
		Kind:   charts.KindLine,
		Title:  fmt.Sprintf("Evolución de Precios, Costos y Margenes - %d", year),
		XLabel: "Período",
		YLabel: "Valor ($)",
		Series: []charts.Series{
			{Name: "Precio Venta", X: xs, Y: price},
			{Name: "Costo Insumo", X: xs, Y: cost},
			{Name: "Margen", X: xs, Y: margin},
		},
	})
	p.chart("margin-pct", charts.Chart{
		Kind:   charts.KindLine,
		Title:  fmt.Sprintf("Evolución del Margen Porcentual - %d", year),
		XLabel: "Período",
		YLabel: "Margen (%)",
		Series: []charts.Series{{Name: "Margen %", X: xs, Y: pct}},
	})

	products := analytics.MarginsByProduct(rows, ds.Products)
	var joined []analytics.ProductMargin
	for _, pm := range products {
		if _, ok := ds.Product(pm.ID); ok {
			joined = append(joined, pm)
		}
	}
	if len(joined) < len(products) {
		p.info("%d productos sin entrada en %s no aparecen en el ranking", len(products)-len(joined), workbook.SheetProductCatalog)
	}

	byPct := append([]analytics.ProductMargin(nil), joined...)
	analytics.SortByMarginPct(byPct)
	p.chart("top-margin-pct", topChart("Top 10 Productos por Margen %", "Margen (%)", analytics.Top(byPct, 10),
		func(pm analytics.ProductMargin) float64 { return pm.MarginPct }))

	byMargin := append([]analytics.ProductMargin(nil), joined...)
	analytics.SortByMargin(byMargin)
	p.chart("top-margin", topChart("Top 10 Productos por Margen Absoluto", "Margen ($)", analytics.Top(byMargin, 10),
		func(pm analytics.ProductMargin) float64 { return pm.Margin }))

	cats := analytics.MarginsByCategory(joined)
	names := make([]string, len(cats))
	catPct := make([]float64, len(cats))
	catPrice := make([]float64, len(cats))
	catCost := make([]float64, len(cats))
	catRows := make([][]interface{}, len(cats))
	for i, c := range cats {
		names[i] = c.Category
		catPct[i] = c.MarginPct
		catPrice[i] = c.Price
		catCost[i] = c.Cost
		catRows[i] = []interface{}{c.Category, num(c.MarginPct), num(c.Margin), num(c.Price), num(c.Cost)}
	}
	p.chart("category-margin-pct", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Margen Porcentual Promedio por Categoría",
		YLabel:     "Margen (%)",
		Categories: names,
		Series:     []charts.Series{{Values: catPct}},
	})
	p.chart("category-price-cost", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Precio vs Costo por Categoría",
		YLabel:     "Valor ($)",
		Categories: names,
		Series: []charts.Series{
			{Name: "Precio Venta Promedio", Values: catPrice},
			{Name: "Costo Insumo Promedio", Values: catCost},
		},
	})

	profitability := make([][]interface{}, len(byPct))
	for i, pm := range byPct {
		profitability[i] = []interface{}{pm.ID, pm.Name, pm.Category, num(pm.Price), num(pm.Cost), num(pm.Margin), num(pm.MarginPct)}
	}
	p.table(TableView{
		ID:    "profitability",
		Title: "Tabla de Rentabilidad por Producto",
		Headers: []string{workbook.ColProductID, workbook.ColProductName, workbook.ColCategory,
			workbook.ColPrice, workbook.ColInputCost, "Margen", "Margen_Porcentaje"},
		Rows: profitability,
	})
	p.table(TableView{
		ID:      "categories",
		Title:   "Rentabilidad por Categoría",
		Headers: []string{workbook.ColCategory, "Margen_Porcentaje", "Margen", workbook.ColPrice, workbook.ColInputCost},
		Rows:    catRows,
	})
	p.table(TableView{
		ID:      "periods",
		Title:   "Precios y Costos por Período",
		Headers: []string{workbook.ColPeriod, workbook.ColPrice, workbook.ColInputCost, "Margen", "Margen_Porcentaje"},
		Rows:    periodRows,
	})
	return nil
}

func topChart(title, ylabel string, items []analytics.ProductMargin, value func(analytics.ProductMargin) float64) charts.Chart {
	names := make([]string, len(items))
	values := make([]float64, len(items))
	for i, it := range items {
		names[i] = it.Name
		values[i] = value(it)
	}
	return charts.Chart{
		Kind:       charts.KindBar,
		Title:      title,
		YLabel:     ylabel,
		Categories: names,
		Series:     []charts.Series{{Values: values}},
	}
}
