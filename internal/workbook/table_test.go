package workbook

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plandash/pkg/contracts/domain"
)

func TestNewTable(t *testing.T) {
	table := newTable("DAT_KM_MATRIX", [][]string{
		{" ID_Insumo ", "Periodo_Index", "StockDisponible"},
		{"I001", "1", "1,500.5"},
		{"", "", ""},
		{"I001", "2"},
		{"I002", "x", "abc"},
	})

	assert.Equal(t, []string{"ID_Insumo", "Periodo_Index", "StockDisponible"}, table.Header)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 1500.5, table.Float(0, "StockDisponible"))
	assert.True(t, math.IsNaN(table.Float(1, "StockDisponible")))
	assert.True(t, math.IsNaN(table.Float(2, "StockDisponible")))
	assert.True(t, math.IsNaN(table.Float(0, "Unknown")))
	assert.Equal(t, "I002", table.String(2, "ID_Insumo"))
	assert.Equal(t, []string{"I001", "I001", "I002"}, table.Column("ID_Insumo"))
	assert.Nil(t, table.Column("Unknown"))
}

func TestTable_Missing(t *testing.T) {
	table := &Table{Header: []string{"Mes", "DemandaMinima"}}

	assert.True(t, table.Has("Mes"))
	assert.False(t, table.Has("Mes", "DemandaMaxima"))
	assert.Equal(t, []string{"DemandaMaxima", "PrecioVenta"}, table.Missing("Mes", "DemandaMaxima", "PrecioVenta"))
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table
	assert.True(t, table.Empty())
	assert.Equal(t, -1, table.Index("x"))
	assert.Equal(t, "", table.Cell(0, 0))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"12", 12, true},
		{" 3.25 ", 3.25, true},
		{"1,000", 1000, true},
		{"-4e2", -400, true},
		{"", math.NaN(), true},
		{"n/a", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseNumber(tt.raw)
			assert.Equal(t, tt.valid, ok)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got))
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReconstruct(t *testing.T) {
	raw := [][]string{{"Produccion", "Ventas", "Inventario"}}
	for r := 0; r < 6; r++ {
		raw = append(raw, []string{"1", "2", ""})
	}
	layout := Layout{Labels: []string{"A", "B"}, Periods: 3}

	tables, w := reconstruct(SheetResults, raw, layout, productResultKinds)

	assert.Nil(t, w)
	sales := tables[domain.ResultSales]
	require.Len(t, sales, 6)
	assert.Equal(t, domain.ResultRow{ID: "B", Period: 2, Value: 2}, sales[4])
	assert.True(t, math.IsNaN(tables[domain.ResultInventory][0].Value))
}

func TestReconstruct_NoRows(t *testing.T) {
	tables, w := reconstruct(SheetOvertime, [][]string{{"HorasExtrasMinutos"}}, Layout{Labels: []string{"PR001"}, Periods: 48}, processResultKinds)

	require.NotNil(t, w)
	assert.Equal(t, "insufficient results: 0 rows, expected 48", w.Reason)
	assert.NotNil(t, tables[domain.ResultOvertime])
	assert.Empty(t, tables[domain.ResultOvertime])
}

func TestGeneratedLabels(t *testing.T) {
	assert.Equal(t, []string{"PR001", "PR002"}, generatedLabels("PR", 2))
	assert.Empty(t, generatedLabels("P", 0))
}
