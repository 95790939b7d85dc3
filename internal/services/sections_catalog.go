package services

import (
	"fmt"
	"sort"

	"plandash/internal/analytics"
	"plandash/internal/charts"
	"plandash/internal/exporter"
	"plandash/internal/workbook"
	"plandash/pkg/contracts/domain"
)

func buildOverview(ds *workbook.Dataset, _ Filters, p *page) error {
	sum := summarize(ds)
	p.kpi("Total de Productos", exporter.FormatInt(sum.Products), float64(sum.Products))
	p.kpi("Total de Insumos", exporter.FormatInt(sum.Inputs), float64(sum.Inputs))
	p.kpi("Procesos Productivos", exporter.FormatInt(sum.Processes), float64(sum.Processes))
	p.kpi("Meses de Planificación", exporter.FormatInt(sum.Months), float64(sum.Months))

	if len(ds.Products) == 0 {
		p.info("El catálogo %s no tiene productos", workbook.SheetProductCatalog)
		return nil
	}
	catalog := ds.Table(workbook.SheetProductCatalog)

	if p.requireColumns(catalog, "La distribución de productos", workbook.ColCategory, workbook.ColLine) {
		cats, counts := countBy(ds.Products, func(pr domain.Product) string { return pr.Category })
		p.chart("categories", charts.Chart{
			Kind:       charts.KindBar,
			Title:      "Distribución de Productos por Categoría",
			YLabel:     "Productos",
			Categories: cats,
			Series:     []charts.Series{{Values: counts}},
		})
		lines, lineCounts := countBy(ds.Products, func(pr domain.Product) string { return pr.Line })
		p.chart("lines", charts.Chart{
			Kind:       charts.KindBar,
			Title:      "Productos por Línea de Producción",
			XLabel:     "Línea",
			YLabel:     "Cantidad de Productos",
			Categories: lines,
			Series:     []charts.Series{{Values: lineCounts}},
		})
	}

	if p.requireColumns(catalog, "El análisis de tiempos de producción", workbook.ColProductionTime) {
		times := make([]float64, len(ds.Products))
		for i, pr := range ds.Products {
			times[i] = pr.ProductionTime
		}
		p.chart("production-time", charts.Chart{
			Kind:   charts.KindBox,
			Title:  "Distribución de Tiempos de Producción Total",
			YLabel: "Minutos",
			Series: []charts.Series{{Name: "TiempoProd_Total(min)", Values: times}},
		})

		five := analytics.Quartiles(times)
		p.table(TableView{
			ID:      "production-time",
			Title:   "Resumen de Tiempos de Producción (min)",
			Headers: []string{"Minimo", "Q1", "Mediana", "Q3", "Maximo"},
			Rows:    [][]interface{}{{num(five.Min), num(five.Q1), num(five.Median), num(five.Q3), num(five.Max)}},
		})

		cats, avg := meanBy(ds.Products,
			func(pr domain.Product) string { return pr.Category },
			func(pr domain.Product) float64 { return pr.ProductionTime })
		p.chart("time-by-category", charts.Chart{
			Kind:       charts.KindBar,
			Title:      "Tiempo Promedio de Producción por Categoría",
			YLabel:     "Minutos",
			Categories: cats,
			Series:     []charts.Series{{Values: avg}},
		})
	}

	if p.requireColumns(catalog, "El costo de almacenamiento", workbook.ColStorageCost) {
		sorted := append([]domain.Product(nil), ds.Products...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StorageCost > sorted[j].StorageCost })
		names := make([]string, len(sorted))
		costs := make([]float64, len(sorted))
		for i, pr := range sorted {
			names[i] = pr.Name
			costs[i] = pr.StorageCost
		}
		p.chart("storage-cost", charts.Chart{
			Kind:       charts.KindBar,
			Title:      "Costo de Almacenamiento por Producto",
			XLabel:     "Producto",
			YLabel:     "Costo Almacenamiento ($)",
			Categories: names,
			Series:     []charts.Series{{Values: costs}},
		})
	}

	rows := make([][]interface{}, len(ds.Products))
	for i, pr := range ds.Products {
		rows[i] = []interface{}{pr.ID, pr.Name, pr.Category, pr.Line, num(pr.ProductionTime), num(pr.StorageCost)}
	}
	p.table(TableView{
		ID:    "products",
		Title: "Resumen de Productos",
		Headers: []string{workbook.ColProductID, workbook.ColProductName, workbook.ColCategory,
			workbook.ColLine, workbook.ColProductionTime, workbook.ColStorageCost},
		Rows: rows,
	})
	return nil
}

func buildProducts(ds *workbook.Dataset, f Filters, p *page) error {
	options := productOptions(ds)
	p.view.Options.Products = options
	selected, err := pick(options, f.Product, ErrProductNotFound)
	if err != nil {
		return err
	}
	if selected.Value == "" {
		p.info("No hay productos cargados")
		return nil
	}
	p.view.Filters.Product = selected.Value

	if pr, ok := ds.Product(selected.Value); ok {
		p.text("Categoría", pr.Category)
		p.text("Línea", pr.Line)
		p.kpi("Tiempo Producción", minutes(pr.ProductionTime), pr.ProductionTime)
		p.kpi("Costo Almacén", exporter.FormatCurrency(pr.StorageCost), pr.StorageCost)
	}

	for _, bom := range ds.BOM {
		if bom.ProductID != selected.Value {
			continue
		}
		var names []string
		var qty []float64
		var rows [][]interface{}
		for _, code := range sortedKeys(bom.Quantities) {
			q := bom.Quantities[code]
			if !(q > 0) {
				continue
			}
			names = append(names, domain.InputName(code))
			qty = append(qty, q)
			rows = append(rows, []interface{}{domain.InputName(code), code, q})
		}
		p.chart("inputs", charts.Chart{
			Kind:       charts.KindBar,
			Title:      fmt.Sprintf("Insumos para %s", selected.Label),
			YLabel:     "Cantidad",
			Categories: names,
			Series:     []charts.Series{{Values: qty}},
		})
		p.table(TableView{ID: "inputs", Title: "Insumos Requeridos", Headers: []string{"Insumo", "Codigo", "Cantidad"}, Rows: rows})
		break
	}

	for _, pt := range ds.ProcessTimes {
		if pt.ProductID != selected.Value {
			continue
		}
		var names []string
		var mins []float64
		var rows [][]interface{}
		for _, code := range sortedKeys(pt.Minutes) {
			v := pt.Minutes[code]
			names = append(names, domain.ProcessName(code))
			mins = append(mins, v)
			rows = append(rows, []interface{}{domain.ProcessName(code), code, num(v)})
		}
		p.chart("processes", charts.Chart{
			Kind:       charts.KindBar,
			Title:      fmt.Sprintf("Tiempos de Proceso para %s", selected.Label),
			YLabel:     "Minutos",
			Categories: names,
			Series:     []charts.Series{{Values: mins}},
		})
		p.table(TableView{ID: "processes", Title: "Tiempos por Proceso", Headers: []string{"Proceso", "Codigo", "Tiempo_Minutos"}, Rows: rows})
		break
	}

	history := demandFor(ds, selected.Value)
	years := yearsOf(history)
	p.view.Options.Years = years
	year := pickYear(years, f.Year)
	p.view.Filters.Year = year
	rows := byYear(history, year)
	if len(history) > 0 && len(rows) == 0 {
		p.info("Sin datos de demanda para %d", year)
	}

	p.chart("demand", demandBand(fmt.Sprintf("Demanda Mínima y Máxima - %s - %d", selected.Label, year), rows))
	p.chart("prices", priceLines(fmt.Sprintf("Precios y Costos - %s - %d", selected.Label, year), rows))
	return nil
}

func buildInputs(ds *workbook.Dataset, f Filters, p *page) error {
	options := inputOptions(ds)
	p.view.Options.Inputs = options
	selected, err := pick(options, f.Input, ErrInputNotFound)
	if err != nil {
		return err
	}
	if len(ds.Stock) == 0 || selected.Value == "" {
		p.info("No hay datos de stock en %s", workbook.SheetStock)
		return nil
	}
	p.view.Filters.Input = selected.Value
	stockTable := ds.Table(workbook.SheetStock)

	var periods, stock, usage []float64
	var rows [][]interface{}
	for _, r := range ds.Stock {
		if r.InputID != selected.Value {
			continue
		}
		periods = append(periods, float64(r.Period))
		stock = append(stock, r.Available)
		usage = append(usage, r.MinUsage)
		rows = append(rows, []interface{}{r.Period, num(r.Available), num(r.MinUsage)})
	}

	if p.requireColumns(stockTable, "El análisis de stock", workbook.ColStock) {
		st := analytics.Describe(stock)
		p.kpi("Stock Promedio", units(st.Mean), st.Mean)
		p.kpi("Stock Máximo", units(st.Max), st.Max)
		p.kpi("Stock Mínimo", units(st.Min), st.Min)
	}
	if stockTable.Has(workbook.ColMinUsage) {
		u := analytics.Mean(usage)
		p.kpi("Uso Mínimo Promedio", units(u), u)
	}

	p.chart("stock", charts.Chart{
		Kind:   charts.KindArea,
		Title:  fmt.Sprintf("Stock Disponible de %s por Período", selected.Label),
		XLabel: "Período",
		YLabel: "Stock Disponible",
		Series: []charts.Series{{Name: "Stock", X: periods, Y: stock}},
	})

	var names []string
	var qty []float64
	var usedBy [][]interface{}
	for _, bom := range ds.BOM {
		q, ok := bom.Quantities[selected.Value]
		if !ok || !(q > 0) {
			continue
		}
		name := ds.ProductName(bom.ProductID)
		names = append(names, name)
		qty = append(qty, q)
		usedBy = append(usedBy, []interface{}{name, q})
	}
	p.chart("usage", charts.Chart{
		Kind:       charts.KindBar,
		Title:      fmt.Sprintf("Uso de %s en Productos", selected.Label),
		YLabel:     "Cantidad Usada",
		Categories: names,
		Series:     []charts.Series{{Values: qty}},
	})
	p.table(TableView{ID: "products", Title: "Productos que utilizan este insumo", Headers: []string{"Producto", "Cantidad_Usada"}, Rows: usedBy})

	trend := charts.Chart{
		Kind:   charts.KindLine,
		Title:  fmt.Sprintf("Tendencia de Stock - %s", selected.Label),
		XLabel: "Período",
		YLabel: "Stock",
		Series: []charts.Series{{Name: "Stock Real", X: periods, Y: stock}},
	}
	if line, ok := analytics.Trend(periods, stock); ok {
		fitted := make([]float64, len(periods))
		for i, x := range periods {
			fitted[i] = line.At(x)
		}
		trend.Series = append(trend.Series, charts.Series{Name: "Tendencia", X: periods, Y: fitted, Dashed: true})
	}
	p.chart("trend", trend)

	p.table(TableView{
		ID:      "stock",
		Title:   "Datos Detallados del Insumo",
		Headers: []string{workbook.ColPeriod, workbook.ColStock, workbook.ColMinUsage},
		Rows:    rows,
	})
	return nil
}

func buildProcesses(ds *workbook.Dataset, f Filters, p *page) error {
	options := processOptions(ds)
	p.view.Options.Processes = options
	selected, err := pick(options, f.Process, ErrProcessNotFound)
	if err != nil {
		return err
	}
	if len(ds.Capacity) == 0 || selected.Value == "" {
		p.info("No hay datos de capacidad en %s", workbook.SheetCapacity)
		return nil
	}
	p.view.Filters.Process = selected.Value
	capTable := ds.Table(workbook.SheetCapacity)

	var periods, capacity, cost []float64
	var rows [][]interface{}
	for _, r := range ds.Capacity {
		if r.ProcessID != selected.Value {
			continue
		}
		periods = append(periods, float64(r.Period))
		capacity = append(capacity, r.Minutes)
		cost = append(cost, r.OvertimeCost)
		rows = append(rows, []interface{}{r.Period, num(r.Minutes), num(r.OvertimeCost)})
	}

	if p.requireColumns(capTable, "El análisis de capacidad", workbook.ColCapacity, workbook.ColOvertimeCost) {
		st := analytics.Describe(capacity)
		oc := analytics.Mean(cost)
		p.kpi("Capacidad Promedio", minutes(st.Mean), st.Mean)
		p.kpi("Costo Hora Extra Promedio", exporter.FormatCurrency(oc), oc)
		p.kpi("Capacidad Máxima", minutes(st.Max), st.Max)
		p.kpi("Capacidad Mínima", minutes(st.Min), st.Min)
	}

	p.chart("capacity", charts.Chart{
		Kind:   charts.KindLine,
		Title:  fmt.Sprintf("Capacidad de %s", selected.Label),
		XLabel: "Período",
		YLabel: "Capacidad (minutos)",
		Series: []charts.Series{{Name: "Capacidad", X: periods, Y: capacity}},
	})
	p.chart("overtime-cost", charts.Chart{
		Kind:   charts.KindLine,
		Title:  fmt.Sprintf("Costo Hora Extra - %s", selected.Label),
		XLabel: "Período",
		YLabel: "Costo Hora Extra ($)",
		Series: []charts.Series{{Name: "Costo Hora Extra", X: periods, Y: cost}},
	})

	var names []string
	var times []float64
	var usedBy [][]interface{}
	for _, pt := range ds.ProcessTimes {
		m, ok := pt.Minutes[selected.Value]
		if !ok || !(m > 0) {
			continue
		}
		name := ds.ProductName(pt.ProductID)
		names = append(names, name)
		times = append(times, m)
		usedBy = append(usedBy, []interface{}{name, m})
	}
	p.chart("products", charts.Chart{
		Kind:       charts.KindBar,
		Title:      fmt.Sprintf("Tiempo en %s por Producto", selected.Label),
		YLabel:     "Minutos",
		Categories: names,
		Series:     []charts.Series{{Values: times}},
	})
	p.table(TableView{ID: "products", Title: "Productos que utilizan este proceso", Headers: []string{"Producto", "Tiempo_Requerido"}, Rows: usedBy})

	var procNames []string
	var meanCap, meanCost []float64
	var comparison [][]interface{}
	for _, opt := range options {
		var c, oc []float64
		for _, r := range ds.Capacity {
			if r.ProcessID == opt.Value {
				c = append(c, r.Minutes)
				oc = append(oc, r.OvertimeCost)
			}
		}
		if len(c) == 0 {
			continue
		}
		mc, mo := analytics.Mean(c), analytics.Mean(oc)
		procNames = append(procNames, opt.Label)
		meanCap = append(meanCap, mc)
		meanCost = append(meanCost, mo)
		comparison = append(comparison, []interface{}{opt.Value, opt.Label, num(mc), num(mo)})
	}
	p.chart("capacity-comparison", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Capacidad Promedio por Proceso",
		YLabel:     "Minutos",
		Categories: procNames,
		Series:     []charts.Series{{Values: meanCap}},
	})
	p.chart("cost-comparison", charts.Chart{
		Kind:       charts.KindBar,
		Title:      "Costo Hora Extra Promedio por Proceso",
		YLabel:     "Costo ($)",
		Categories: procNames,
		Series:     []charts.Series{{Values: meanCost}},
	})
	p.table(TableView{
		ID:      "comparison",
		Title:   "Análisis Comparativo de Procesos",
		Headers: []string{workbook.ColProcessID, "Proceso", workbook.ColCapacity, workbook.ColOvertimeCost},
		Rows:    comparison,
	})

	p.table(TableView{
		ID:      "capacity",
		Title:   "Datos Detallados del Proceso",
		Headers: []string{workbook.ColPeriod, workbook.ColCapacity, workbook.ColOvertimeCost},
		Rows:    rows,
	})
	return nil
}

// countBy counts products per key in first-seen order.
func countBy(products []domain.Product, key func(domain.Product) string) ([]string, []float64) {
	var keys []string
	counts := make(map[string]float64)
	for _, pr := range products {
		k := key(pr)
		if k == "" {
			continue
		}
		if _, ok := counts[k]; !ok {
			keys = append(keys, k)
		}
		counts[k]++
	}
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = counts[k]
	}
	return keys, values
}

// meanBy averages a product value per key, keys sorted by name.
func meanBy(products []domain.Product, key func(domain.Product) string, value func(domain.Product) float64) ([]string, []float64) {
	groups := make(map[string][]float64)
	for _, pr := range products {
		if k := key(pr); k != "" {
			groups[k] = append(groups[k], value(pr))
		}
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = analytics.Mean(groups[k])
	}
	return keys, values
}

func demandBand(title string, rows []domain.DemandRow) charts.Chart {
	months := make([]float64, len(rows))
	lo := make([]float64, len(rows))
	hi := make([]float64, len(rows))
	for i, r := range rows {
		months[i] = float64(r.Month)
		lo[i] = r.MinDemand
		hi[i] = r.MaxDemand
	}
	return charts.Chart{
		Kind:   charts.KindBand,
		Title:  title,
		XLabel: "Mes",
		YLabel: "Unidades",
		Series: []charts.Series{{Name: "Demanda Mínima / Máxima", X: months, Y: hi, Lower: lo}},
	}
}

func priceLines(title string, rows []domain.DemandRow) charts.Chart {
	months := make([]float64, len(rows))
	price := make([]float64, len(rows))
	cost := make([]float64, len(rows))
	for i, r := range rows {
		months[i] = float64(r.Month)
		price[i] = r.Price
		cost[i] = r.InputCost
	}
	return charts.Chart{
		Kind:   charts.KindLine,
		Title:  title,
		XLabel: "Mes",
		YLabel: "Valor ($)",
		Series: []charts.Series{
			{Name: "Precio Venta", X: months, Y: price},
			{Name: "Costo Insumo", X: months, Y: cost},
		},
	}
}
