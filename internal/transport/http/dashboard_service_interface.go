package http

import (
	"context"

	"plandash/internal/services"
	"plandash/internal/workbook"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	View(ctx context.Context, section string, f services.Filters) (*services.SectionView, error)
	Chart(ctx context.Context, section, chart string, f services.Filters) ([]byte, error)
	Table(ctx context.Context, section, table string, f services.Filters) (services.TableView, error)
	ProfitabilityWorkbook(ctx context.Context, f services.Filters) ([]byte, error)
	ScorecardPDF(ctx context.Context) ([]byte, error)

	// Workbook cache
	Workbook(ctx context.Context) workbook.Summary
	ReloadWorkbook(ctx context.Context) workbook.Summary
}
