package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WorkbookBuilder writes planning workbooks with predictable values.
//
// For product i (1-based), input j and process j, and period p:
//
//	BOM quantity         (i*j) % 3
//	process minutes      ((i+j) % 4) * 5
//	demand min / max     100*i + p / 200*i + p
//	price / input cost   50 + 10*i / 30 + 5*i
//	capacity / ot cost   1000*j + p / 2*j
//	stock / min usage    500 + 10*p / 20*j
//	production time      30*i, storage cost 1.5*i
//	category             Camisas (odd i) or Pantalones (even i)
//	results              production 10*i, sales 8*i, inventory 2*i
//	overtime             60*j minutes
type WorkbookBuilder struct {
	products  int
	inputs    int
	processes int
	periods   int

	resultRows   int
	overtimeRows int

	without map[string]bool
	dropped map[string]map[string]bool
	cells   map[string]map[string]interface{}
}

// NewWorkbook returns a builder for 3 products, 2 inputs, 2 processes and
// 48 periods.
func NewWorkbook() *WorkbookBuilder {
	return &WorkbookBuilder{
		products:     3,
		inputs:       2,
		processes:    2,
		periods:      48,
		resultRows:   -1,
		overtimeRows: -1,
		without:      make(map[string]bool),
		dropped:      make(map[string]map[string]bool),
		cells:        make(map[string]map[string]interface{}),
	}
}

// Products sets the number of products.
func (b *WorkbookBuilder) Products(n int) *WorkbookBuilder { b.products = n; return b }

// Inputs sets the number of inputs.
func (b *WorkbookBuilder) Inputs(n int) *WorkbookBuilder { b.inputs = n; return b }

// Processes sets the number of processes.
func (b *WorkbookBuilder) Processes(n int) *WorkbookBuilder { b.processes = n; return b }

// ResultRows overrides the number of RESULTADOS data rows.
func (b *WorkbookBuilder) ResultRows(n int) *WorkbookBuilder { b.resultRows = n; return b }

// OvertimeRows overrides the number of RES_HORAS_EXTRA data rows.
func (b *WorkbookBuilder) OvertimeRows(n int) *WorkbookBuilder { b.overtimeRows = n; return b }

// Without leaves a sheet out of the file.
func (b *WorkbookBuilder) Without(sheets ...string) *WorkbookBuilder {
	for _, s := range sheets {
		b.without[s] = true
	}
	return b
}

// DropColumn removes a column from a sheet.
func (b *WorkbookBuilder) DropColumn(sheet, column string) *WorkbookBuilder {
	if b.dropped[sheet] == nil {
		b.dropped[sheet] = make(map[string]bool)
	}
	b.dropped[sheet][column] = true
	return b
}

// SetCell overwrites one cell after the sheet is written, e.g. "B2".
func (b *WorkbookBuilder) SetCell(sheet, cell string, value interface{}) *WorkbookBuilder {
	if b.cells[sheet] == nil {
		b.cells[sheet] = make(map[string]interface{})
	}
	b.cells[sheet][cell] = value
	return b
}

// Write saves the workbook into a temp dir and returns its path.
func (b *WorkbookBuilder) Write(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	if err := b.WriteTo(path); err != nil {
		t.Fatalf("failed to write test workbook: %v", err)
	}
	return path
}

// WriteTo saves the workbook at path.
func (b *WorkbookBuilder) WriteTo(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	written := 0
	for _, s := range b.sheets() {
		if b.without[s.name] {
			continue
		}
		if written == 0 {
			if err := f.SetSheetName(first, s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		written++

		if err := b.writeSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	return f.SaveAs(path)
}

type fixtureSheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

func (b *WorkbookBuilder) writeSheet(f *excelize.File, s fixtureSheet) error {
	keep := make([]int, 0, len(s.header))
	for i, h := range s.header {
		if !b.dropped[s.name][h] {
			keep = append(keep, i)
		}
	}

	header := make([]interface{}, 0, len(keep))
	for _, i := range keep {
		header = append(header, s.header[i])
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}

	for r, row := range s.rows {
		values := make([]interface{}, 0, len(keep))
		for _, i := range keep {
			values = append(values, row[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &values); err != nil {
			return err
		}
	}

	for cell, v := range b.cells[s.name] {
		if err := f.SetCellValue(s.name, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// ProductID returns the id of the i-th product (1-based).
func ProductID(i int) string { return fmt.Sprintf("P%03d", i) }

// InputID returns the id of the j-th input (1-based).
func InputID(j int) string { return fmt.Sprintf("I%03d", j) }

// ProcessID returns the id of the j-th process (1-based).
func ProcessID(j int) string { return fmt.Sprintf("PR%03d", j) }

// ProductName returns the display name of the i-th product.
func ProductName(i int) string { return fmt.Sprintf("Producto %d", i) }

// Category returns the category of the i-th product.
func Category(i int) string {
	if i%2 == 1 {
		return "Camisas"
	}
	return "Pantalones"
}

func (b *WorkbookBuilder) sheets() []fixtureSheet {
	var (
		products  = fixtureSheet{name: "SET_PRODUCTOS", header: []string{"ID_Producto"}}
		months    = fixtureSheet{name: "SET_MESES", header: []string{"ID_Mes"}}
		inputs    = fixtureSheet{name: "SET_INSUMOS", header: []string{"ID_Insumo"}}
		processes = fixtureSheet{name: "SET_PROCESOS", header: []string{"ID_Proceso"}}
		bom       = fixtureSheet{name: "DAT_PI_MATRIX", header: []string{"ID_Producto"}}
		times     = fixtureSheet{name: "DAT_PP_MATRIX", header: []string{"ID_Producto"}}
		demand    = fixtureSheet{name: "DAT_PM_MATRIX", header: []string{"ID_Producto", "Periodo_Index", "DemandaMinima", "DemandaMaxima", "PrecioVenta", "CostoInsumo"}}
		capacity  = fixtureSheet{name: "DAT_PJM_MATRIX", header: []string{"ID_Proceso", "Periodo_Index", "CapacidadMinutos", "CostoHoraExtra"}}
		stock     = fixtureSheet{name: "DAT_KM_MATRIX", header: []string{"ID_Insumo", "Periodo_Index", "StockDisponible", "UsoMinimo"}}
		catalog   = fixtureSheet{name: "DAT_PRODUCTOS_FIJOS", header: []string{"ID_Producto", "Nombre_Producto", "Categoria", "Linea", "TiempoProd_Total(min)", "CostoAlmacen"}}
		results   = fixtureSheet{name: "RESULTADOS", header: []string{"Produccion", "Ventas", "Inventario"}}
		overtime  = fixtureSheet{name: "RES_HORAS_EXTRA", header: []string{"HorasExtrasMinutos"}}
	)

	for j := 1; j <= b.inputs; j++ {
		bom.header = append(bom.header, InputID(j))
		inputs.rows = append(inputs.rows, []interface{}{InputID(j)})
		for p := 1; p <= b.periods; p++ {
			stock.rows = append(stock.rows, []interface{}{InputID(j), p, 500 + 10*p, 20 * j})
		}
	}
	for j := 1; j <= b.processes; j++ {
		times.header = append(times.header, ProcessID(j))
		processes.rows = append(processes.rows, []interface{}{ProcessID(j)})
		for p := 1; p <= b.periods; p++ {
			capacity.rows = append(capacity.rows, []interface{}{ProcessID(j), p, 1000*j + p, 2 * j})
		}
	}
	for p := 1; p <= b.periods; p++ {
		months.rows = append(months.rows, []interface{}{p})
	}

	for i := 1; i <= b.products; i++ {
		id := ProductID(i)
		products.rows = append(products.rows, []interface{}{id})

		line := "Linea A"
		if i%2 == 0 {
			line = "Linea B"
		}
		catalog.rows = append(catalog.rows, []interface{}{id, ProductName(i), Category(i), line, 30 * i, 1.5 * float64(i)})

		bomRow := []interface{}{id}
		for j := 1; j <= b.inputs; j++ {
			bomRow = append(bomRow, (i*j)%3)
		}
		bom.rows = append(bom.rows, bomRow)

		timeRow := []interface{}{id}
		for j := 1; j <= b.processes; j++ {
			timeRow = append(timeRow, ((i+j)%4)*5)
		}
		times.rows = append(times.rows, timeRow)

		for p := 1; p <= b.periods; p++ {
			demand.rows = append(demand.rows, []interface{}{id, p, 100*i + p, 200*i + p, 50 + 10*i, 30 + 5*i})
		}
	}

	resultRows := b.resultRows
	if resultRows < 0 {
		resultRows = b.products * b.periods
	}
	for r := 0; r < resultRows; r++ {
		i := r/b.periods + 1
		results.rows = append(results.rows, []interface{}{10 * i, 8 * i, 2 * i})
	}

	overtimeRows := b.overtimeRows
	if overtimeRows < 0 {
		overtimeRows = b.processes * b.periods
	}
	for r := 0; r < overtimeRows; r++ {
		j := r/b.periods + 1
		overtime.rows = append(overtime.rows, []interface{}{60 * j})
	}

	return []fixtureSheet{products, months, inputs, processes, bom, times, demand, capacity, stock, catalog, results, overtime}
}
