package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"plandash/internal/analytics"
	"plandash/internal/charts"
	"plandash/internal/config"
	apierrors "plandash/internal/errors"
	"plandash/internal/exporter"
	"plandash/internal/infrastructure"
	"plandash/internal/workbook"
)

// Settings are the values the dashboard takes from configuration rather
// than from the workbook.
type Settings struct {
	Goals             analytics.GoalInput
	ReportedObjective float64
}

// SettingsFrom extracts the dashboard settings from the application config.
func SettingsFrom(cfg *config.Config) Settings {
	g := cfg.Goals
	return Settings{
		Goals: analytics.GoalInput{
			ProfitTarget:    g.ProfitTarget,
			OvertimeCap:     g.OvertimeCap,
			ProfitShortfall: g.ProfitShortfall,
			OvertimeExcess:  g.OvertimeExcess,
			ProfitWeight:    g.ProfitWeight,
			OvertimeWeight:  g.OvertimeWeight,
		},
		ReportedObjective: cfg.Model.ReportedObjective,
	}
}

// builder fills a page from one dataset.
type builder func(ds *workbook.Dataset, f Filters, p *page) error

// DashboardService builds section views, charts and exports from the
// cached workbook.
type DashboardService struct {
	source   workbook.Source
	settings Settings
	renderer *charts.Renderer
	xlsx     *exporter.XLSXWriter
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger

	builders map[Section]builder
	sheets   map[Section][]string
}

// NewDashboardService creates the dashboard service. metrics may be nil.
func NewDashboardService(source workbook.Source, settings Settings, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	s := &DashboardService{
		source:   source,
		settings: settings,
		renderer: charts.NewRenderer(),
		xlsx:     exporter.NewXLSXWriter(),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "dashboard_service"),
	}
	s.builders = map[Section]builder{
		SectionOverview:   buildOverview,
		SectionProducts:   buildProducts,
		SectionInputs:     buildInputs,
		SectionProcesses:  buildProcesses,
		SectionDemand:     buildDemand,
		SectionCosts:      buildCosts,
		SectionModel:      s.buildModel,
		SectionSimulation: buildSimulation,
		SectionGoals:      s.buildGoals,
	}
	s.sheets = map[Section][]string{
		SectionOverview:   {workbook.SheetProducts, workbook.SheetInputs, workbook.SheetProcesses, workbook.SheetMonths, workbook.SheetProductCatalog},
		SectionProducts:   {workbook.SheetProductCatalog, workbook.SheetBOM, workbook.SheetProcessTimes, workbook.SheetDemand},
		SectionInputs:     {workbook.SheetInputs, workbook.SheetStock, workbook.SheetBOM},
		SectionProcesses:  {workbook.SheetProcesses, workbook.SheetCapacity, workbook.SheetProcessTimes},
		SectionDemand:     {workbook.SheetDemand, workbook.SheetProductCatalog},
		SectionCosts:      {workbook.SheetDemand, workbook.SheetProductCatalog},
		SectionModel:      {workbook.SheetResults, workbook.SheetOvertime, workbook.SheetProducts, workbook.SheetProcesses},
		SectionSimulation: {workbook.SheetDemand, workbook.SheetProductCatalog},
		SectionGoals:      {},
	}
	return s
}

// View builds the page of one section.
func (s *DashboardService) View(ctx context.Context, section string, f Filters) (*SectionView, error) {
	p, err := s.build(ctx, section, f)
	if err != nil {
		return nil, err
	}
	return p.view, nil
}

// Chart renders one chart of a section as PNG.
func (s *DashboardService) Chart(ctx context.Context, section, chart string, f Filters) ([]byte, error) {
	p, err := s.build(ctx, section, f)
	if err != nil {
		return nil, err
	}

	spec, ok := p.charts[chart]
	if !ok {
		if chartDeclared(section, chart) {
			return nil, fmt.Errorf("%w: chart %s/%s", ErrNoData, section, chart)
		}
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownChart, section, chart)
	}

	png, err := s.renderer.Render(spec)
	if err != nil {
		if errors.Is(err, charts.ErrEmpty) {
			return nil, fmt.Errorf("%w: chart %s/%s", ErrNoData, section, chart)
		}
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewRenderError(fmt.Sprintf("failed to render chart %s/%s", section, chart), err).
			WithContext("section", section).
			WithContext("chart", chart)
	}

	s.metrics.RecordChart(ctx, section, chart)
	return png, nil
}

// Table returns one table of a section.
func (s *DashboardService) Table(ctx context.Context, section, table string, f Filters) (TableView, error) {
	p, err := s.build(ctx, section, f)
	if err != nil {
		return TableView{}, err
	}
	for _, t := range p.view.Tables {
		if t.ID == table {
			s.metrics.RecordExport(ctx, section, "csv")
			return t, nil
		}
	}
	return TableView{}, fmt.Errorf("%w: %s/%s", ErrUnknownTable, section, table)
}

// ProfitabilityWorkbook writes the cost section tables as an xlsx workbook.
func (s *DashboardService) ProfitabilityWorkbook(ctx context.Context, f Filters) ([]byte, error) {
	p, err := s.build(ctx, string(SectionCosts), f)
	if err != nil {
		return nil, err
	}

	names := map[string]string{
		"profitability": "Rentabilidad",
		"categories":    "Categorias",
		"periods":       "Periodos",
	}
	var sheets []exporter.Sheet
	for _, t := range p.view.Tables {
		if name, ok := names[t.ID]; ok {
			sheets = append(sheets, t.Sheet(name))
		}
	}
	if len(sheets) == 0 || len(sheets[0].Rows) == 0 {
		return nil, fmt.Errorf("%w: profitability workbook", ErrNoData)
	}

	var buf bytes.Buffer
	if err := s.xlsx.Write(&buf, sheets); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewRenderError("failed to write profitability workbook", err)
	}
	s.metrics.RecordExport(ctx, string(SectionCosts), "xlsx")
	return buf.Bytes(), nil
}

// ScorecardPDF lays out the goal scorecard as a PDF document.
func (s *DashboardService) ScorecardPDF(ctx context.Context) ([]byte, error) {
	card := analytics.Score(s.settings.Goals)
	pdf, err := exporter.ScorecardPDF(card, time.Now())
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewRenderError("failed to lay out goal scorecard", err)
	}
	s.metrics.RecordExport(ctx, string(SectionGoals), "pdf")
	return pdf, nil
}

// Workbook returns the summary of the current load.
func (s *DashboardService) Workbook(ctx context.Context) workbook.Summary {
	return s.source.Get(ctx).Summary()
}

// ReloadWorkbook discards the cached load and reads the workbook again.
func (s *DashboardService) ReloadWorkbook(ctx context.Context) workbook.Summary {
	ds := s.source.Reload(ctx)
	s.logger.InfoContext(ctx, "Workbook reloaded",
		slog.Bool("readable", ds.Readable),
		slog.Int("warnings", len(ds.Warnings)))
	return ds.Summary()
}

func (s *DashboardService) build(ctx context.Context, section string, f Filters) (*page, error) {
	info, err := ParseSection(section)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("plandash/services").Start(ctx, "dashboard.build")
	defer span.End()
	span.SetAttributes(attribute.String("section", section))

	ds := s.source.Get(ctx)
	p := newPage(info, f)
	if err := s.builders[info.ID](ds, f, p); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if w := ds.WarningsFor(s.sheets[info.ID]...); len(w) > 0 {
		p.view.Warnings = w
	}
	p.view.Summary = summarize(ds)

	s.logger.DebugContext(ctx, "Section built",
		slog.String("section", section),
		slog.Int("charts", len(p.view.Charts)),
		slog.Int("tables", len(p.view.Tables)),
		slog.Int("warnings", len(p.view.Warnings)))
	return p, nil
}

func summarize(ds *workbook.Dataset) DataSummary {
	return DataSummary{
		Products:   ds.Table(workbook.SheetProducts).Len(),
		Categories: len(ds.Categories()),
		Inputs:     ds.Table(workbook.SheetInputs).Len(),
		Processes:  ds.Table(workbook.SheetProcesses).Len(),
		Months:     ds.Table(workbook.SheetMonths).Len(),
	}
}
