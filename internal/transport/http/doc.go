// Package http implements the HTTP handlers of the dashboard. Handlers stay
// thin: they decode query filters, call the dashboard service and format the
// response as HTML, JSON, PNG, CSV, xlsx or PDF.
//
// # Routes
//
//	GET  /sections/{section}               HTML section page
//	GET  /api/sections/{section}           section view as JSON
//	GET  /charts/{section}/{chart}.png     chart image
//	GET  /export/{section}/{table}.csv     table as CSV with a UTF-8 BOM
//	GET  /export/costs/profitability.xlsx  profitability workbook
//	GET  /export/goals/scorecard.pdf       goal scorecard
//	GET  /api/workbook                     load summary
//	POST /api/workbook/reload              clear the cache and reload
//
// # Filters
//
// Every section route accepts the query filters product, input, process,
// year, price, cost_reduction, efficiency and volume. Malformed or out of
// range values answer 400.
//
// # Error Handling
//
// Errors follow RFC 7807 Problem Details. Service sentinel errors map to
// 404 for unknown sections, charts, tables and catalog ids, 422 when a view
// has no data and 400 for simulation levers outside their bounds.
package http
