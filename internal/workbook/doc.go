// Package workbook reads the ICATEX planning workbook into memory.
//
// The workbook holds the input sheets of the production-planning model
// (catalogs, bills of materials, process times, demand, capacity and stock)
// plus two output sheets written by the external solver. The solver sheets
// carry no labels, so product and process ids are rebuilt from row position
// using the catalog sheets.
//
// Loading never fails: a sheet that is missing or malformed becomes an empty
// table and a Warning, and the remaining sheets are still read. The Cache
// keeps one loaded Dataset per file identity (path, size and modification
// time) and shares a single in-flight load between concurrent callers.
package workbook
