package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	apierrors "plandash/internal/errors"
	"plandash/internal/services"
)

//go:embed templates/*.html
var templateFiles embed.FS

// PageHandler renders the server-side HTML dashboard
type PageHandler struct {
	service      DashboardServiceInterface
	filters      *FilterParser
	tmpl         *template.Template
	version      string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// pageData is the template context of a section page
type pageData struct {
	View     *services.SectionView
	Sections []services.SectionInfo
	Query    string
	Version  string
}

// NewPageHandler parses the embedded templates and creates a page handler
func NewPageHandler(service DashboardServiceInterface, version string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	tmpl, err := template.New("section.html").Funcs(template.FuncMap{
		"display": services.Display,
		"chartURL": func(section services.Section, chart, query string) string {
			return withQuery(fmt.Sprintf("/charts/%s/%s.png", section, chart), query)
		},
		"csvURL": func(section services.Section, table, query string) string {
			return withQuery(fmt.Sprintf("/export/%s/%s.csv", section, table), query)
		},
		"withQuery": withQuery,
		"selected":  func(a, b interface{}) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return &PageHandler{
		service:      service,
		filters:      NewFilterParser(),
		tmpl:         tmpl,
		version:      version,
		logger:       logger.With(slog.String("handler", "page")),
		errorHandler: errorHandler,
	}, nil
}

// Routes returns the page routes
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{section}", h.ServeSection)
	return r
}

// RedirectToOverview redirects root requests to the first section
func RedirectToOverview(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/sections/"+string(services.SectionOverview), http.StatusTemporaryRedirect)
}

// ServeSection handles GET /sections/{section}
func (h *PageHandler) ServeSection(w http.ResponseWriter, r *http.Request) {
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

	data := pageData{
		View:     view,
		Sections: services.Sections(),
		Query:    view.Filters.Query().Encode(),
		Version:  h.version,
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("section", section),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.RenderFailedError("page", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	u := url.URL{Path: path, RawQuery: query}
	return u.String()
}
