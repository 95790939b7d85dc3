package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "plandash/internal/errors"
	"plandash/internal/exporter"
	"plandash/internal/infrastructure"
	"plandash/internal/services"
	apiv1 "plandash/pkg/contracts/api/v1"
)

const (
	contentTypePNG  = "image/png"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// DashboardHandler serves section views, charts and exports with RFC 7807
// errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	filters      *FilterParser
	csv          *exporter.CSVWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		filters:      NewFilterParser(),
		csv:          exporter.NewCSVWriter(logger),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// SectionRoutes returns the JSON section routes
func (h *DashboardHandler) SectionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/{section}", h.GetSection)
	return r
}

// WorkbookRoutes returns the workbook cache routes
func (h *DashboardHandler) WorkbookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetWorkbook)
	r.Post("/reload", h.ReloadWorkbook)
	return r
}

// ChartRoutes returns the PNG chart routes
func (h *DashboardHandler) ChartRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{section}/{chart}.png", h.GetChart)
	return r
}

// ExportRoutes returns the download routes
func (h *DashboardHandler) ExportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/costs/profitability.xlsx", h.ExportProfitability)
	r.Get("/goals/scorecard.pdf", h.ExportScorecard)
	r.Get("/{section}/{table}.csv", h.ExportTable)
	return r
}

// GetSection handles GET /api/sections/{section}
func (h *DashboardHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	f, err := h.filters.Parse(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(r.Context(), section, f)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, apiv1.Success(view))
}

// GetWorkbook handles GET /api/workbook
func (h *DashboardHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, apiv1.Success(h.service.Workbook(r.Context())))
}

// ReloadWorkbook handles POST /api/workbook/reload
func (h *DashboardHandler) ReloadWorkbook(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "reloading workbook",
		slog.String("request_id", infrastructure.GetTraceID(r.Context())))

	render.JSON(w, r, apiv1.Success(h.service.ReloadWorkbook(r.Context())))
}

// GetChart handles GET /charts/{section}/{chart}.png
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	chart := chi.URLParam(r, "chart")
	f, err := h.filters.Parse(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	png, err := h.service.Chart(r.Context(), section, chart, f)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	h.write(w, r, contentTypePNG, "", png)
}

// ExportTable handles GET /export/{section}/{table}.csv
func (h *DashboardHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	table := chi.URLParam(r, "table")
	f, err := h.filters.Parse(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	t, err := h.service.Table(r.Context(), section, table, f)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	var buf bytes.Buffer
	if err := h.csv.Write(&buf, exporter.WriteOptions{Headers: t.Headers, Records: t.Records(), BOMPrefix: true}); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.RenderFailedError("csv export", err))
		return
	}

	h.write(w, r, contentTypeCSV, fmt.Sprintf("%s_%s.csv", section, table), buf.Bytes())
}

// ExportProfitability handles GET /export/costs/profitability.xlsx
func (h *DashboardHandler) ExportProfitability(w http.ResponseWriter, r *http.Request) {
	f, err := h.filters.Parse(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.service.ProfitabilityWorkbook(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.write(w, r, contentTypeXLSX, "rentabilidad.xlsx", data)
}

// ExportScorecard handles GET /export/goals/scorecard.pdf
func (h *DashboardHandler) ExportScorecard(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ScorecardPDF(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.write(w, r, contentTypePDF, "programacion_metas.pdf", data)
}

func (h *DashboardHandler) write(w http.ResponseWriter, r *http.Request, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path))
	}
}

// mapServiceError converts service sentinel errors to API errors
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownSection):
		return apierrors.ErrSectionNotFound.WithDetails(err.Error())
	case errors.Is(err, services.ErrUnknownChart):
		return apierrors.ErrChartNotFound.WithDetails(err.Error())
	case errors.Is(err, services.ErrUnknownTable):
		return apierrors.ErrTableNotFound.WithDetails(err.Error())
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrInputNotFound),
		errors.Is(err, services.ErrProcessNotFound):
		return apierrors.NotFoundError(err.Error())
	case errors.Is(err, services.ErrNoData):
		return apierrors.ErrNoData.WithDetails(err.Error())
	case errors.Is(err, services.ErrInvalidScenario):
		return apierrors.NewValidationError(err.Error())
	default:
		return err
	}
}
