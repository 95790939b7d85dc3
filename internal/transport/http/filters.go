package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	apierrors "plandash/internal/errors"
	"plandash/internal/middleware"
	"plandash/internal/services"
)

// FilterParser decodes and validates the query filters of a request
type FilterParser struct {
	validator *middleware.QueryValidator
}

// NewFilterParser creates a filter parser
func NewFilterParser() *FilterParser {
	return &FilterParser{validator: middleware.NewQueryValidator()}
}

// Parse reads the section filters from the URL query. Values that are not
// numbers or fall outside their range yield a 400 APIError listing every
// offending parameter.
func (p *FilterParser) Parse(r *http.Request) (services.Filters, error) {
	q := r.URL.Query()
	var f services.Filters
	var problems []apierrors.ValidationError

	f.Product = strings.TrimSpace(q.Get("product"))
	f.Input = strings.TrimSpace(q.Get("input"))
	f.Process = strings.TrimSpace(q.Get("process"))
	f.SimProduct = strings.TrimSpace(q.Get("sim_product"))

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, apierrors.ValidationError{Field: "year", Message: "year must be an integer"})
		}
		f.Year = year
	}
	if v := q.Get("price"); v != "" {
		price, err := parseFloat(v)
		if err != nil {
			problems = append(problems, apierrors.ValidationError{Field: "price", Message: "price must be a number"})
		} else {
			f.Price = &price
		}
	}
	if v := q.Get("cost_reduction"); v != "" {
		pct, err := parseFloat(v)
		if err != nil {
			problems = append(problems, apierrors.ValidationError{Field: "cost_reduction", Message: "cost_reduction must be a number"})
		}
		f.CostReduction = pct
	}
	if v := q.Get("efficiency"); v != "" {
		pct, err := parseFloat(v)
		if err != nil {
			problems = append(problems, apierrors.ValidationError{Field: "efficiency", Message: "efficiency must be a number"})
		}
		f.Efficiency = pct
	}
	if v := q.Get("volume"); v != "" {
		volume, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, apierrors.ValidationError{Field: "volume", Message: "volume must be an integer"})
		} else {
			f.Volume = &volume
		}
	}

	if len(problems) > 0 {
		return services.Filters{}, apierrors.NewValidationErrors(problems)
	}
	if err := p.validator.ValidateStruct(f); err != nil {
		return services.Filters{}, err
	}
	return f, nil
}

var errNotFinite = errors.New("not a finite number")

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
