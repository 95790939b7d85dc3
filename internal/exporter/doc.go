// Package exporter writes dashboard tables to downloadable files.
//
// CSVWriter writes any section table as CSV with a UTF-8 BOM so spreadsheet
// programs pick up the encoding. XLSXWriter writes multi-sheet workbooks with
// excelize, and ScorecardPDF lays out the goal scorecard with maroto.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.Write(rw, exporter.WriteOptions{
//		Headers:   []string{"Periodo_Index", "StockDisponible"},
//		Records:   records,
//		BOMPrefix: true,
//	})
package exporter
