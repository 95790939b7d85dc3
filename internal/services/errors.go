package services

import "errors"

// Dashboard service errors
var (
	// Lookup errors
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownChart   = errors.New("unknown chart")
	ErrUnknownTable   = errors.New("unknown table")

	// Catalog errors
	ErrProductNotFound = errors.New("product not found")
	ErrInputNotFound   = errors.New("input not found")
	ErrProcessNotFound = errors.New("process not found")

	// Data errors
	ErrNoData          = errors.New("no data available")
	ErrInvalidScenario = errors.New("invalid simulation scenario")
)
