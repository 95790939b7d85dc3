package workbook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"plandash/internal/config"
	"plandash/internal/infrastructure"
	"plandash/pkg/contracts/domain"
)

// Loader reads the planning workbook into a Dataset.
type Loader struct {
	horizon           domain.Horizon
	fallbackProducts  int
	fallbackProcesses int
	logger            *slog.Logger
}

// NewLoader creates a loader for the workbook layout in cfg.
func NewLoader(cfg config.WorkbookConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Loader{
		horizon:           cfg.Horizon(),
		fallbackProducts:  cfg.FallbackProducts,
		fallbackProcesses: cfg.FallbackProcesses,
		logger:            infrastructure.WithComponent(logger, "workbook"),
	}
}

// Load reads every sheet of the workbook at path. It never fails: problems
// are recorded as warnings on the returned dataset and logged.
func (l *Loader) Load(ctx context.Context, path string) *Dataset {
	ctx, span := otel.Tracer("plandash/workbook").Start(ctx, "workbook.Load")
	defer span.End()

	ds := newDataset(IdentityOf(path), l.horizon)
	span.SetAttributes(attribute.String("workbook.path", ds.Identity.Path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		reason := fmt.Sprintf("workbook unreadable: %v", err)
		for _, name := range append(append([]string{}, InputSheets...), SheetResults, SheetOvertime) {
			ds.Warnings = append(ds.Warnings, Warning{Sheet: name, Reason: reason})
		}
		infrastructure.RecordError(ctx, err)
		l.report(ctx, ds)
		return ds
	}
	defer f.Close()
	ds.Readable = true

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	for _, name := range InputSheets {
		rows, w := readSheet(f, name, present)
		if w != nil {
			ds.Warnings = append(ds.Warnings, *w)
			continue
		}
		ds.Tables[name] = newTable(name, rows)
	}

	ds.decode()

	products := l.labels(ds, ds.ProductIDs, "P", l.fallbackProducts, "product")
	processes := make([]string, 0, len(ds.Processes))
	for _, p := range ds.Processes {
		processes = append(processes, p.ID)
	}
	processes = l.labels(ds, processes, "PR", l.fallbackProcesses, "process")

	l.loadResults(ds, f, present, SheetResults, Layout{Labels: products, Periods: l.horizon.Periods}, productResultKinds)
	l.loadResults(ds, f, present, SheetOvertime, Layout{Labels: processes, Periods: l.horizon.Periods}, processResultKinds)

	span.SetAttributes(
		attribute.Int("workbook.products", len(ds.Products)),
		attribute.Int("workbook.warnings", len(ds.Warnings)),
	)
	l.report(ctx, ds)
	return ds
}

// labels returns the catalog ids, or a generated sequence with a warning
// when the catalog is unavailable.
func (l *Loader) labels(ds *Dataset, ids []string, prefix string, fallback int, what string) []string {
	if len(ids) > 0 {
		return ids
	}
	generated := generatedLabels(prefix, fallback)
	sheet := SheetProducts
	if prefix == "PR" {
		sheet = SheetProcesses
	}
	reason := fmt.Sprintf("%s catalog unavailable, using generated labels", what)
	if len(generated) > 0 {
		reason = fmt.Sprintf("%s catalog unavailable, using generated labels %s..%s", what, generated[0], generated[len(generated)-1])
	}
	ds.Warnings = append(ds.Warnings, Warning{Sheet: sheet, Reason: reason})
	return generated
}

func (l *Loader) loadResults(ds *Dataset, f *excelize.File, present map[string]bool, sheet string, layout Layout, kinds []domain.ResultKind) {
	rows, w := readSheet(f, sheet, present)
	if w != nil {
		ds.Warnings = append(ds.Warnings, *w)
		return
	}
	tables, w := reconstruct(sheet, rows, layout, kinds)
	if w != nil {
		ds.Warnings = append(ds.Warnings, *w)
	}
	for k, v := range tables {
		ds.Results[k] = v
	}
}

func (l *Loader) report(ctx context.Context, ds *Dataset) {
	for _, w := range ds.Warnings {
		infrastructure.LogWorkbookWarning(ctx, l.logger, w.Sheet, w.Reason)
	}
	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("path", ds.Identity.Path),
		slog.Bool("readable", ds.Readable),
		slog.Int("products", len(ds.Products)),
		slog.Int("warnings", len(ds.Warnings)))
}

// readSheet returns the raw rows of a sheet, or a warning.
func readSheet(f *excelize.File, name string, present map[string]bool) ([][]string, *Warning) {
	if !present[name] {
		return nil, &Warning{Sheet: name, Reason: "sheet not found"}
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &Warning{Sheet: name, Reason: fmt.Sprintf("sheet unreadable: %v", err)}
	}
	if len(rows) == 0 {
		return nil, &Warning{Sheet: name, Reason: "sheet is empty"}
	}
	return rows, nil
}
