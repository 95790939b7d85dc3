package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "plandash/internal/errors"
)

type sampleFilters struct {
	Product    string   `query:"product" validate:"omitempty,code"`
	Year       int      `query:"year" validate:"omitempty,gte=1900,lte=2100"`
	Efficiency *float64 `query:"efficiency" validate:"omitempty,gte=0,lte=30"`
}

func TestQueryValidator(t *testing.T) {
	v := NewQueryValidator()
	high := 45.0
	ok := 10.0

	tests := []struct {
		name       string
		input      sampleFilters
		wantErr    bool
		wantFields []string
	}{
		{"empty filters", sampleFilters{}, false, nil},
		{"valid filters", sampleFilters{Product: "P001", Year: 2022, Efficiency: &ok}, false, nil},
		{"bad code", sampleFilters{Product: "../etc"}, true, []string{"product"}},
		{"out of range", sampleFilters{Year: 1800, Efficiency: &high}, true, []string{"year", "efficiency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
