// Package services implements the dashboard logic between the HTTP handlers
// and the cached workbook.
//
// # Sections
//
// Each of the nine dashboard sections is built by a builder that reads one
// immutable workbook load and fills a SectionView:
//
//	- KPIs carry a formatted value and the raw number (nil when unavailable)
//	- Charts are referenced by id and rendered to PNG on request
//	- Tables are rendered as HTML and exported as CSV or xlsx
//	- Messages and Warnings explain what could not be shown
//
// A section never fails because the workbook is missing or incomplete; it
// degrades to informational messages. Errors are reserved for requests the
// caller can fix: unknown sections, charts or tables, unknown product ids
// and simulation levers outside their bounds.
//
// # Errors
//
// Services return the sentinel errors of this package wrapped with context.
// Handlers map them to API errors with errors.Is.
package services
