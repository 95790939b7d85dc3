package workbook

import (
	"math"
	"strconv"
	"strings"
)

// Sheet names of the planning workbook.
const (
	SheetProducts       = "SET_PRODUCTOS"
	SheetMonths         = "SET_MESES"
	SheetInputs         = "SET_INSUMOS"
	SheetProcesses      = "SET_PROCESOS"
	SheetBOM            = "DAT_PI_MATRIX"
	SheetProcessTimes   = "DAT_PP_MATRIX"
	SheetDemand         = "DAT_PM_MATRIX"
	SheetCapacity       = "DAT_PJM_MATRIX"
	SheetStock          = "DAT_KM_MATRIX"
	SheetProductCatalog = "DAT_PRODUCTOS_FIJOS"

	SheetResults  = "RESULTADOS"
	SheetOvertime = "RES_HORAS_EXTRA"
)

// InputSheets lists the model input sheets in load order.
var InputSheets = []string{
	SheetProducts,
	SheetMonths,
	SheetInputs,
	SheetProcesses,
	SheetBOM,
	SheetProcessTimes,
	SheetDemand,
	SheetCapacity,
	SheetStock,
	SheetProductCatalog,
}

// Column names used across sheets.
const (
	ColProductID      = "ID_Producto"
	ColInputID        = "ID_Insumo"
	ColProcessID      = "ID_Proceso"
	ColPeriod         = "Periodo_Index"
	ColMinDemand      = "DemandaMinima"
	ColMaxDemand      = "DemandaMaxima"
	ColPrice          = "PrecioVenta"
	ColInputCost      = "CostoInsumo"
	ColCapacity       = "CapacidadMinutos"
	ColOvertimeCost   = "CostoHoraExtra"
	ColStock          = "StockDisponible"
	ColMinUsage       = "UsoMinimo"
	ColProductName    = "Nombre_Producto"
	ColCategory       = "Categoria"
	ColLine           = "Linea"
	ColProductionTime = "TiempoProd_Total(min)"
	ColStorageCost    = "CostoAlmacen"
)

// Table is a sheet read as text cells under a header row.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// EmptyTable returns a table with no header and no rows.
func EmptyTable(sheet string) *Table {
	return &Table{Sheet: sheet}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Index returns the position of a column, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Header {
		if h == col {
			return i
		}
	}
	return -1
}

// Has reports whether every named column is present.
func (t *Table) Has(cols ...string) bool {
	return len(t.Missing(cols...)) == 0
}

// Missing returns the named columns the table does not have, in order.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// Cell returns the trimmed text of a cell, or "" when the row or column
// does not exist.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// String returns a cell by column name.
func (t *Table) String(row int, col string) string {
	return t.Cell(row, t.Index(col))
}

// Float returns a cell by column name as a number. Empty, missing and
// non-numeric cells are NaN.
func (t *Table) Float(row int, col string) float64 {
	v, _ := parseNumber(t.Cell(row, t.Index(col)))
	return v
}

// Column returns every value of a column as text.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	values := make([]string, 0, t.Len())
	for r := range t.Rows {
		values = append(values, t.Cell(r, idx))
	}
	return values
}

// parseNumber converts a raw cell to float64. An empty cell is NaN and ok;
// text that is not a number is NaN and not ok.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN(), true
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// newTable builds a table from raw sheet rows. The first row is the header;
// rows with no content are dropped and short rows are kept as is.
func newTable(sheet string, rows [][]string) *Table {
	t := &Table{Sheet: sheet}
	if len(rows) == 0 {
		return t
	}

	t.Header = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		t.Header[i] = strings.TrimSpace(h)
	}

	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
