// Package shared holds helpers used by more than one package.
//
// The testutil subpackage builds planning workbooks for tests and captures
// slog records:
//
//	path := testutil.NewWorkbook().Products(20).Write(t)
//	logger, logs := testutil.NewTestLogger(t)
package shared
