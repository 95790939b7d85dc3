// Package app wires the planning dashboard together and runs it.
//
// NewApplication loads the configuration, initializes logging and
// OpenTelemetry, creates the workbook cache and the dashboard and health
// services, and builds the chi router:
//
//	/api/health, /api/health/ready, /api/health/live, /api/version
//	/api/sections/{section}        section view as JSON
//	/api/workbook, /api/workbook/reload
//	/sections/{section}            server-rendered HTML page
//	/charts/{section}/{chart}.png
//	/export/{section}/{table}.csv, /export/costs/profitability.xlsx,
//	/export/goals/scorecard.pdf
//	/metrics                       Prometheus scrape endpoint
//
// Run blocks until SIGINT or SIGTERM and then shuts the server and the
// telemetry providers down within the configured shutdown timeout.
// Initialization errors are returned; the package never calls os.Exit.
package app
