package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Write(t *testing.T) {
	w := NewCSVWriter(nil)

	t.Run("with BOM prefix", func(t *testing.T) {
		var buf bytes.Buffer
		err := w.Write(&buf, WriteOptions{
			Headers:   []string{"Periodo_Index", "StockDisponible"},
			Records:   [][]string{{"1", "510.00"}, {"2", "520.00"}},
			BOMPrefix: true,
		})
		require.NoError(t, err)

		data := buf.Bytes()
		assert.True(t, bytes.HasPrefix(data, utf8BOM))

		records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Periodo_Index", "StockDisponible"},
			{"1", "510.00"},
			{"2", "520.00"},
		}, records)
	})

	t.Run("without BOM", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, w.Write(&buf, WriteOptions{Headers: []string{"a"}}))
		assert.Equal(t, "a\n", buf.String())
	})

	t.Run("quotes fields with commas", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, w.Write(&buf, WriteOptions{
			Records: [][]string{{"Camisa, manga larga", "1"}},
		}))
		assert.Equal(t, "\"Camisa, manga larga\",1\n", buf.String())
	})
}

func TestCSVWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exports", "inventario.csv")

	err := NewCSVWriter(nil).WriteFile(path, WriteOptions{
		Headers: []string{"ID", "Valor"},
		Records: [][]string{{"P001", "20.00"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Valor\nP001,20.00\n", string(data))
}
