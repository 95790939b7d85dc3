package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "plandash/internal/errors"
	"plandash/internal/services"
	"plandash/internal/shared/testutil"
	"plandash/internal/workbook"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) View(ctx context.Context, section string, f services.Filters) (*services.SectionView, error) {
	args := m.Called(section, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SectionView), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, section, chart string, f services.Filters) ([]byte, error) {
	args := m.Called(section, chart, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDashboardService) Table(ctx context.Context, section, table string, f services.Filters) (services.TableView, error) {
	args := m.Called(section, table, f)
	return args.Get(0).(services.TableView), args.Error(1)
}

func (m *MockDashboardService) ProfitabilityWorkbook(ctx context.Context, f services.Filters) ([]byte, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDashboardService) ScorecardPDF(ctx context.Context) ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDashboardService) Workbook(ctx context.Context) workbook.Summary {
	return m.Called().Get(0).(workbook.Summary)
}

func (m *MockDashboardService) ReloadWorkbook(ctx context.Context) workbook.Summary {
	return m.Called().Get(0).(workbook.Summary)
}

func newTestRouter(t *testing.T, svc DashboardServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	handler := NewDashboardHandler(svc, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/sections", handler.SectionRoutes())
	r.Mount("/api/workbook", handler.WorkbookRoutes())
	r.Mount("/charts", handler.ChartRoutes())
	r.Mount("/export", handler.ExportRoutes())
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleView() *services.SectionView {
	raw := 3.0
	return &services.SectionView{
		Section: services.SectionInfo{ID: services.SectionOverview, Title: "Resumen General"},
		KPIs:    []services.KPI{{Label: "Total de Productos", Value: "3", Raw: &raw}},
		Charts:  []services.ChartRef{{ID: "categories", Title: "Distribución por Categoría"}},
		Tables: []services.TableView{{
			ID:      "products",
			Title:   "Catálogo de Productos",
			Headers: []string{"ID_Producto", "TiempoProd_Total(min)"},
			Rows:    [][]interface{}{{"P001", 30.0}, {"P002", nil}},
		}},
		Warnings: []workbook.Warning{},
		Summary:  services.DataSummary{Products: 3, Categories: 2, Inputs: 2, Processes: 2, Months: 48},
	}
}

func TestDashboardHandler_GetSection(t *testing.T) {
	year := 2022
	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "section view",
			target: "/api/sections/overview",
			setupMock: func(m *MockDashboardService) {
				m.On("View", "overview", services.Filters{}).Return(sampleView(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name:   "filters are passed through",
			target: fmt.Sprintf("/api/sections/costs?year=%d&product=P002", year),
			setupMock: func(m *MockDashboardService) {
				m.On("View", "costs", services.Filters{Year: year, Product: "P002"}).Return(sampleView(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Total de Productos"`,
		},
		{
			name:   "unknown section",
			target: "/api/sections/reports",
			setupMock: func(m *MockDashboardService) {
				m.On("View", "reports", services.Filters{}).Return(nil, fmt.Errorf("%w: %q", services.ErrUnknownSection, "reports"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"SECTION_NOT_FOUND"`,
		},
		{
			name:   "unknown product",
			target: "/api/sections/products?product=P999",
			setupMock: func(m *MockDashboardService) {
				m.On("View", "products", services.Filters{Product: "P999"}).Return(nil, fmt.Errorf("%w: P999", services.ErrProductNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NOT_FOUND"`,
		},
		{
			name:   "scenario out of bounds",
			target: "/api/sections/simulation?price=999",
			setupMock: func(m *MockDashboardService) {
				price := 999.0
				m.On("View", "simulation", services.Filters{Price: &price}).Return(nil, fmt.Errorf("%w: price outside range", services.ErrInvalidScenario))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
		{
			name:           "malformed year",
			target:         "/api/sections/costs?year=abc",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"year must be an integer"`,
		},
		{
			name:           "efficiency out of range",
			target:         "/api/sections/simulation?efficiency=45",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"efficiency"`,
		},
		{
			name:   "internal error",
			target: "/api/sections/overview",
			setupMock: func(m *MockDashboardService) {
				m.On("View", "overview", services.Filters{}).Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDashboardService)
			tt.setupMock(mockService)

			rec := serve(newTestRouter(t, mockService), http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_SectionViewJSON(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("View", "overview", services.Filters{}).Return(sampleView(), nil)

	rec := serve(newTestRouter(t, mockService), http.MethodGet, "/api/sections/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string               `json:"status"`
		Data   services.SectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, services.SectionOverview, body.Data.Section.ID)
	require.Len(t, body.Data.Tables, 1)
	assert.Nil(t, body.Data.Tables[0].Rows[1][1])
}

func TestDashboardHandler_GetChart(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedType   string
		expectedBody   string
	}{
		{
			name:   "rendered chart",
			target: "/charts/overview/categories.png",
			setupMock: func(m *MockDashboardService) {
				m.On("Chart", "overview", "categories", services.Filters{}).Return(png, nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   contentTypePNG,
			expectedBody:   "PNG",
		},
		{
			name:   "hyphenated chart id",
			target: "/charts/costs/top-margin-pct.png?year=2023",
			setupMock: func(m *MockDashboardService) {
				m.On("Chart", "costs", "top-margin-pct", services.Filters{Year: 2023}).Return(png, nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   contentTypePNG,
			expectedBody:   "PNG",
		},
		{
			name:   "unknown chart",
			target: "/charts/overview/pie.png",
			setupMock: func(m *MockDashboardService) {
				m.On("Chart", "overview", "pie", services.Filters{}).Return(nil, fmt.Errorf("%w: overview/pie", services.ErrUnknownChart))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"CHART_NOT_FOUND"`,
		},
		{
			name:   "chart without data",
			target: "/charts/model/plan.png",
			setupMock: func(m *MockDashboardService) {
				m.On("Chart", "model", "plan", services.Filters{}).Return(nil, fmt.Errorf("%w: chart model/plan", services.ErrNoData))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"NO_DATA"`,
		},
		{
			name:   "render failure",
			target: "/charts/overview/lines.png",
			setupMock: func(m *MockDashboardService) {
				m.On("Chart", "overview", "lines", services.Filters{}).Return(nil,
					apierrors.NewRenderError("failed to render chart overview/lines", errors.New("font missing")).WithContext("chart", "lines"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error_code":"RENDER_FAILED"`,
		},
		{
			name:   "unexpected failure",
			target: "/charts/overview/lines.png",
			setupMock: func(m *MockDashboardService) {
				m.On("Chart", "overview", "lines", services.Filters{}).Return(nil, errors.New("disk on fire"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"title":"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDashboardService)
			tt.setupMock(mockService)

			rec := serve(newTestRouter(t, mockService), http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedType != "" {
				assert.Equal(t, tt.expectedType, rec.Header().Get("Content-Type"))
			}
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_ExportTable(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("Table", "overview", "products", services.Filters{}).Return(sampleView().Tables[0], nil)
	mockService.On("Table", "overview", "missing", services.Filters{}).Return(services.TableView{}, fmt.Errorf("%w: overview/missing", services.ErrUnknownTable))
	router := newTestRouter(t, mockService)

	rec := serve(router, http.MethodGet, "/export/overview/products.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "overview_products.csv")
	body := rec.Body.Bytes()
	assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "ID_Producto,TiempoProd_Total(min)\nP001,30.00\nP002,\n", string(body[3:]))

	rec = serve(router, http.MethodGet, "/export/overview/missing.csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"TABLE_NOT_FOUND"`)

	mockService.AssertExpectations(t)
}

func TestDashboardHandler_Documents(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("ProfitabilityWorkbook", services.Filters{Year: 2021}).Return([]byte("PK\x03\x04xlsx"), nil)
	mockService.On("ScorecardPDF").Return([]byte("%PDF-1.3"), nil)
	router := newTestRouter(t, mockService)

	rec := serve(router, http.MethodGet, "/export/costs/profitability.xlsx?year=2021")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rentabilidad.xlsx")

	rec = serve(router, http.MethodGet, "/export/goals/scorecard.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypePDF, rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())

	mockService.AssertExpectations(t)
}

func TestDashboardHandler_ProfitabilityWithoutData(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("ProfitabilityWorkbook", services.Filters{}).Return(nil, fmt.Errorf("%w: profitability workbook", services.ErrNoData))

	rec := serve(newTestRouter(t, mockService), http.MethodGet, "/export/costs/profitability.xlsx")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	mockService.AssertExpectations(t)
}

func TestDashboardHandler_ScorecardRenderFailure(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("ScorecardPDF").Return(nil, apierrors.NewRenderError("failed to lay out goal scorecard", errors.New("font missing")))

	rec := serve(newTestRouter(t, mockService), http.MethodGet, "/export/goals/scorecard.pdf")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"/errors/dashboard/render-failed"`)
	assert.Contains(t, rec.Body.String(), "failed to lay out goal scorecard")
	mockService.AssertExpectations(t)
}

func TestDashboardHandler_Workbook(t *testing.T) {
	summary := workbook.Summary{Readable: true, RowCounts: map[string]int{"SET_PRODUCTOS": 3}, Warnings: []workbook.Warning{}}
	mockService := new(MockDashboardService)
	mockService.On("Workbook").Return(summary)
	mockService.On("ReloadWorkbook").Return(summary)
	router := newTestRouter(t, mockService)

	rec := serve(router, http.MethodGet, "/api/workbook")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"SET_PRODUCTOS":3`)

	rec = serve(router, http.MethodPost, "/api/workbook/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"readable":true`)

	rec = serve(router, http.MethodGet, "/api/workbook/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	mockService.AssertExpectations(t)
}
