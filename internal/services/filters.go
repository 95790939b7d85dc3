package services

import (
	"net/url"
	"strconv"
)

// Filters are the user selections of a section. Zero values mean "use the
// section default".
type Filters struct {
	Product       string   `query:"product" validate:"omitempty,code"`
	Input         string   `query:"input" validate:"omitempty,code"`
	Process       string   `query:"process" validate:"omitempty,code"`
	Year          int      `query:"year" validate:"omitempty,gte=1900,lte=2100"`
	Price         *float64 `query:"price" validate:"omitempty,gt=0"`
	CostReduction float64  `query:"cost_reduction" validate:"gte=0,lte=50"`
	Efficiency    float64  `query:"efficiency" validate:"gte=0,lte=30"`
	Volume        *int     `query:"volume" validate:"omitempty,gte=0"`

	// SimProduct is the product the price and volume levers were chosen for.
	// The levers are ignored when it differs from Product.
	SimProduct string `query:"sim_product" validate:"omitempty,code"`
}

// Query encodes the non-zero filters as URL query values.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Product != "" {
		q.Set("product", f.Product)
	}
	if f.Input != "" {
		q.Set("input", f.Input)
	}
	if f.Process != "" {
		q.Set("process", f.Process)
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Price != nil {
		q.Set("price", strconv.FormatFloat(*f.Price, 'f', -1, 64))
	}
	if f.CostReduction != 0 {
		q.Set("cost_reduction", strconv.FormatFloat(f.CostReduction, 'f', -1, 64))
	}
	if f.Efficiency != 0 {
		q.Set("efficiency", strconv.FormatFloat(f.Efficiency, 'f', -1, 64))
	}
	if f.Volume != nil {
		q.Set("volume", strconv.Itoa(*f.Volume))
	}
	if f.SimProduct != "" {
		q.Set("sim_product", f.SimProduct)
	}
	return q
}
