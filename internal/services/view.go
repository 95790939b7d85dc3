package services

import (
	"fmt"
	"math"
	"strings"

	"plandash/internal/analytics"
	"plandash/internal/charts"
	"plandash/internal/exporter"
	"plandash/internal/workbook"
)

// Section identifies one of the dashboard pages.
type Section string

const (
	SectionOverview   Section = "overview"
	SectionProducts   Section = "products"
	SectionInputs     Section = "inputs"
	SectionProcesses  Section = "processes"
	SectionDemand     Section = "demand"
	SectionCosts      Section = "costs"
	SectionModel      Section = "model"
	SectionSimulation Section = "simulation"
	SectionGoals      Section = "goals"
)

// SectionInfo is one entry of the navigation bar.
type SectionInfo struct {
	ID    Section `json:"id"`
	Title string  `json:"title"`
}

var sections = []SectionInfo{
	{ID: SectionOverview, Title: "Resumen General"},
	{ID: SectionProducts, Title: "Productos"},
	{ID: SectionInputs, Title: "Insumos"},
	{ID: SectionProcesses, Title: "Procesos"},
	{ID: SectionDemand, Title: "Demanda y Mercado"},
	{ID: SectionCosts, Title: "Costos y Rentabilidad"},
	{ID: SectionModel, Title: "Modelo de Optimización"},
	{ID: SectionSimulation, Title: "Simulaciones"},
	{ID: SectionGoals, Title: "Programación por Metas"},
}

// Sections returns the navigation entries in display order.
func Sections() []SectionInfo {
	out := make([]SectionInfo, len(sections))
	copy(out, sections)
	return out
}

// ParseSection resolves a section id.
func ParseSection(id string) (SectionInfo, error) {
	for _, s := range sections {
		if string(s.ID) == id {
			return s, nil
		}
	}
	return SectionInfo{}, fmt.Errorf("%w: %q", ErrUnknownSection, id)
}

// KPI is one headline metric. Raw is omitted when the value is missing.
type KPI struct {
	Label string   `json:"label"`
	Value string   `json:"value"`
	Raw   *float64 `json:"raw,omitempty"`
	Delta string   `json:"delta,omitempty"`
}

// TableView is a table of a section. Cells hold strings, ints, float64 or
// nil for missing values.
type TableView struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

// Records formats the rows for CSV export.
func (t TableView) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatCell(v)
		}
		out[i] = rec
	}
	return out
}

// Sheet converts the table to an export worksheet.
func (t TableView) Sheet(name string) exporter.Sheet {
	return exporter.Sheet{Name: name, Headers: t.Headers, Rows: t.Rows}
}

// Display formats one cell for HTML output.
func Display(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return exporter.NotAvailable
	case float64:
		return exporter.FormatNumber(x, 2)
	default:
		return formatCell(v)
	}
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return exporter.FormatInt(x)
	case float64:
		return exporter.FormatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}

// ChartRef names a chart the section can render.
type ChartRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Option is one choice of a filter widget.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options lists the choices of the section filter widgets.
type Options struct {
	Products   []Option                    `json:"products,omitempty"`
	Inputs     []Option                    `json:"inputs,omitempty"`
	Processes  []Option                    `json:"processes,omitempty"`
	Years      []int                       `json:"years,omitempty"`
	Simulation *analytics.SimulationBounds `json:"simulation,omitempty"`
}

// DataSummary is the footer describing what was loaded.
type DataSummary struct {
	Products   int `json:"products"`
	Categories int `json:"categories"`
	Inputs     int `json:"inputs"`
	Processes  int `json:"processes"`
	Months     int `json:"months"`
}

// SectionView is everything one section page shows.
type SectionView struct {
	Section  SectionInfo        `json:"section"`
	Filters  Filters            `json:"filters"`
	Options  Options            `json:"options"`
	KPIs     []KPI              `json:"kpis"`
	Charts   []ChartRef         `json:"charts"`
	Tables   []TableView        `json:"tables"`
	Notes    []string           `json:"notes,omitempty"`
	Messages []string           `json:"messages,omitempty"`
	Warnings []workbook.Warning `json:"warnings"`
	Summary  DataSummary        `json:"summary"`
}

// page accumulates a section view together with the chart specs it links.
type page struct {
	view   *SectionView
	charts map[string]charts.Chart
}

func newPage(info SectionInfo, f Filters) *page {
	return &page{
		view: &SectionView{
			Section:  info,
			Filters:  f,
			KPIs:     []KPI{},
			Charts:   []ChartRef{},
			Tables:   []TableView{},
			Warnings: []workbook.Warning{},
		},
		charts: make(map[string]charts.Chart),
	}
}

func (p *page) kpi(label, value string, raw float64) {
	p.view.KPIs = append(p.view.KPIs, KPI{Label: label, Value: value, Raw: rawValue(raw)})
}

func (p *page) kpiDelta(label, value string, raw float64, delta string) {
	p.view.KPIs = append(p.view.KPIs, KPI{Label: label, Value: value, Raw: rawValue(raw), Delta: delta})
}

func (p *page) text(label, value string) {
	p.view.KPIs = append(p.view.KPIs, KPI{Label: label, Value: value})
}

// chart registers a chart. Charts without drawable data are skipped.
func (p *page) chart(id string, c charts.Chart) {
	if !c.HasData() {
		return
	}
	p.charts[id] = c
	p.view.Charts = append(p.view.Charts, ChartRef{ID: id, Title: c.Title})
}

func (p *page) table(t TableView) {
	if t.Rows == nil {
		t.Rows = [][]interface{}{}
	}
	p.view.Tables = append(p.view.Tables, t)
}

func (p *page) info(format string, args ...interface{}) {
	p.view.Messages = append(p.view.Messages, fmt.Sprintf(format, args...))
}

func (p *page) note(text string) {
	p.view.Notes = append(p.view.Notes, strings.TrimSpace(text))
}

// requireColumns adds an info message and returns false when t lacks any of
// cols.
func (p *page) requireColumns(t *workbook.Table, what string, cols ...string) bool {
	if t.Empty() {
		return true
	}
	if missing := t.Missing(cols...); len(missing) > 0 {
		p.info("%s no disponible. Faltan columnas: %s", what, strings.Join(missing, ", "))
		return false
	}
	return true
}

func rawValue(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// num stores a number as a table cell.
func num(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func units(v float64) string {
	return exporter.FormatNumber(v, 0) + " unidades"
}

func minutes(v float64) string {
	return exporter.FormatNumber(v, 0) + " min"
}
