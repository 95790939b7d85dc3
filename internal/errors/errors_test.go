package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"section not found", ErrSectionNotFound, http.StatusNotFound, "SECTION_NOT_FOUND"},
		{"validation", ErrValidation("price", "out of range"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not found helper", NotFoundError("product P999"), http.StatusNotFound, "NOT_FOUND"},
		{"render", RenderFailedError("chart", errors.New("boom")), http.StatusInternalServerError, "RENDER_FAILED"},
		{"workbook", ErrWorkbookUnreadable, http.StatusServiceUnavailable, "WORKBOOK_UNREADABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestAPIError_WithDetailsCopies(t *testing.T) {
	detailed := ErrTableNotFound.WithDetails("ranking")
	assert.Equal(t, "ranking", detailed.Details)
	assert.Nil(t, ErrTableNotFound.Details)
}

func TestAppError(t *testing.T) {
	cause := errors.New("gonum: no data points")
	err := NewRenderError("failed to render chart costs/margins", cause).WithContext("chart", "margins")

	assert.Equal(t, "[RENDER] failed to render chart costs/margins: gonum: no data points", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "margins", err.Context["chart"])

	var appErr *AppError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrTypeRender, appErr.Type)
}

func TestErrorHandler_AppErrorProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/charts/costs/margins.png", nil)
	err := NewRenderError("failed to render chart costs/margins", errors.New("boom")).WithContext("chart", "margins")

	problem := newTestHandler().ErrorToProblem(err, req)
	assert.Equal(t, http.StatusInternalServerError, problem.Status)
	assert.Equal(t, TypeRenderFailed, problem.Type)
	assert.Equal(t, "failed to render chart costs/margins", problem.Detail)
	assert.Equal(t, "RENDER_FAILED", problem.Extensions["error_code"])
	assert.Equal(t, "margins", problem.Extensions["chart"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeNotFound, decoded["type"])
	assert.Equal(t, float64(404), decoded["status"])
	assert.Equal(t, "/x", decoded["instance"])
	assert.Equal(t, "abc", decoded["trace_id"])
	_, hasDetail := decoded["detail"]
	assert.False(t, hasDetail)
}
