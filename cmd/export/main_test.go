package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plandash/internal/services"
	"plandash/internal/shared/testutil"
)

func TestRun_WritesSectionExports(t *testing.T) {
	wb := testutil.NewWorkbook().Write(t)
	out := t.TempDir()
	var stdout bytes.Buffer

	err := run([]string{"-workbook", wb, "-out", out, "-sections", "overview,costs,goals"}, &stdout)
	require.NoError(t, err)

	for _, name := range []string{"overview_products.csv", "rentabilidad.xlsx", "programacion_metas.pdf"} {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, stdout.String(), filepath.Join(out, "overview_products.csv"))

	data, err := os.ReadFile(filepath.Join(out, "overview_products.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(data), "P001")
}

func TestRun_MissingWorkbookStillWritesGoals(t *testing.T) {
	out := t.TempDir()
	var stdout bytes.Buffer

	err := run([]string{"-workbook", filepath.Join(out, "absent.xlsx"), "-out", out, "-sections", "costs,goals"}, &stdout)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "programacion_metas.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "rentabilidad.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestSelectSections(t *testing.T) {
	all, err := selectSections("all")
	require.NoError(t, err)
	assert.Len(t, all, len(services.Sections()))

	some, err := selectSections("model, goals")
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, services.SectionModel, some[0].ID)

	_, err = selectSections("overview,nope")
	assert.ErrorIs(t, err, services.ErrUnknownSection)
}
