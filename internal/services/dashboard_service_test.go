package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"plandash/internal/config"
	"plandash/internal/shared/testutil"
	"plandash/internal/workbook"
)

func newTestService(t *testing.T, path string) *DashboardService {
	t.Helper()
	cfg := config.Default()
	logger, _ := testutil.NewTestLogger(t)
	cache := workbook.NewCache(workbook.NewLoader(cfg.Workbook, logger), path, nil, logger)
	return NewDashboardService(cache, SettingsFrom(cfg), nil, logger)
}

func kpiValue(v *SectionView, label string) (KPI, bool) {
	for _, k := range v.KPIs {
		if k.Label == label {
			return k, true
		}
	}
	return KPI{}, false
}

func tableByID(v *SectionView, id string) (TableView, bool) {
	for _, t := range v.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return TableView{}, false
}

func chartIDs(v *SectionView) []string {
	ids := make([]string, len(v.Charts))
	for i, c := range v.Charts {
		ids[i] = c.ID
	}
	return ids
}

func TestView_EverySectionBuilds(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	ctx := context.Background()

	for _, info := range Sections() {
		t.Run(string(info.ID), func(t *testing.T) {
			v, err := svc.View(ctx, string(info.ID), Filters{})
			require.NoError(t, err)
			assert.Equal(t, info, v.Section)
			assert.Equal(t, DataSummary{Products: 3, Categories: 2, Inputs: 2, Processes: 2, Months: 48}, v.Summary)
			assert.Empty(t, v.Warnings)
			for _, id := range chartIDs(v) {
				assert.True(t, chartDeclared(string(info.ID), id), "chart %s not declared", id)
			}
		})
	}
}

func TestView_MissingWorkbookDegrades(t *testing.T) {
	svc := newTestService(t, t.TempDir()+"/absent.xlsx")
	ctx := context.Background()

	for _, info := range Sections() {
		t.Run(string(info.ID), func(t *testing.T) {
			v, err := svc.View(ctx, string(info.ID), Filters{})
			require.NoError(t, err)
			if info.ID != SectionGoals {
				assert.Empty(t, v.Charts)
			}
		})
	}

	v, err := svc.View(ctx, string(SectionOverview), Filters{})
	require.NoError(t, err)
	k, ok := kpiValue(v, "Total de Productos")
	require.True(t, ok)
	assert.Equal(t, "0", k.Value)
	assert.NotEmpty(t, v.Messages)
}

func TestView_UnknownSection(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	_, err := svc.View(context.Background(), "reports", Filters{})
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestView_UnknownProduct(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	_, err := svc.View(context.Background(), string(SectionProducts), Filters{Product: "P999"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestView_ProductsDefaultsToFirstProduct(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	v, err := svc.View(context.Background(), string(SectionProducts), Filters{})
	require.NoError(t, err)

	assert.Equal(t, testutil.ProductID(1), v.Filters.Product)
	assert.Len(t, v.Options.Products, 3)
	assert.Equal(t, []int{2021, 2022, 2023, 2024}, v.Options.Years)
	assert.Equal(t, 2021, v.Filters.Year)
	k, ok := kpiValue(v, "Tiempo Producción")
	require.True(t, ok)
	assert.Equal(t, "30 min", k.Value)
}

func TestView_CostsRanksByMarginPct(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	v, err := svc.View(context.Background(), string(SectionCosts), Filters{})
	require.NoError(t, err)

	table, ok := tableByID(v, "profitability")
	require.True(t, ok)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, testutil.ProductID(3), table.Rows[0][0])
	assert.Equal(t, testutil.ProductID(1), table.Rows[2][0])

	periods, ok := tableByID(v, "periods")
	require.True(t, ok)
	assert.Len(t, periods.Rows, 12)
}

func TestView_CostsMissingPriceColumn(t *testing.T) {
	path := testutil.NewWorkbook().DropColumn(workbook.SheetDemand, workbook.ColPrice).Write(t)
	svc := newTestService(t, path)

	v, err := svc.View(context.Background(), string(SectionCosts), Filters{})
	require.NoError(t, err)
	assert.Empty(t, v.Tables)
	require.NotEmpty(t, v.Messages)
	assert.Contains(t, v.Messages[0], workbook.ColPrice)
}

func TestView_ModelWithResults(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	v, err := svc.View(context.Background(), string(SectionModel), Filters{})
	require.NoError(t, err)

	z, ok := kpiValue(v, "Valor óptimo de Z")
	require.True(t, ok)
	require.NotNil(t, z.Raw)
	assert.InDelta(t, 11256950.0, *z.Raw, 1e-6)

	total, ok := kpiValue(v, "Producción Total")
	require.True(t, ok)
	assert.InDelta(t, 2880.0, *total.Raw, 1e-9)

	production, ok := tableByID(v, "production")
	require.True(t, ok)
	require.Len(t, production.Rows, 3)
	assert.Equal(t, testutil.ProductID(1), production.Rows[0][0])
	assert.Equal(t, testutil.ProductName(1), production.Rows[0][1])
	assert.InDelta(t, 480.0, production.Rows[0][2], 1e-9)

	inventory, ok := tableByID(v, "inventory")
	require.True(t, ok)
	// P001: 8 units sold per period over 48 periods against an average of 2.
	assert.InDelta(t, 192.0, inventory.Rows[0][6], 1e-9)

	_, ok = tableByID(v, "objective")
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"overtime", "plan"}, chartIDs(v))
}

func TestView_ModelWithoutResults(t *testing.T) {
	path := testutil.NewWorkbook().Without(workbook.SheetResults, workbook.SheetOvertime).Write(t)
	svc := newTestService(t, path)

	v, err := svc.View(context.Background(), string(SectionModel), Filters{})
	require.NoError(t, err)

	_, ok := kpiValue(v, "Valor óptimo de Z")
	assert.False(t, ok)
	assert.Contains(t, v.Messages, "Ejecute el modelo en LINGO para obtener el valor de la función objetivo")
	assert.Empty(t, v.Tables)
	assert.Empty(t, v.Charts)
	assert.NotEmpty(t, v.Notes)
}

func TestView_SimulationDefaults(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	v, err := svc.View(context.Background(), string(SectionSimulation), Filters{})
	require.NoError(t, err)

	require.NotNil(t, v.Options.Simulation)
	b := v.Options.Simulation
	assert.InDelta(t, 30.0, b.PriceMin, 1e-9)
	assert.InDelta(t, 90.0, b.PriceMax, 1e-9)
	assert.Equal(t, 124, b.VolumeMin)
	assert.Equal(t, 269, b.VolumeMax)

	require.NotNil(t, v.Filters.Price)
	assert.InDelta(t, 60.0, *v.Filters.Price, 1e-9)
	impact, ok := kpiValue(v, "Impacto en Utilidad Total")
	require.True(t, ok)
	assert.InDelta(t, 0.0, *impact.Raw, 1e-9)

	sens, ok := tableByID(v, "sensitivity")
	require.True(t, ok)
	assert.Len(t, sens.Rows, 10)
}

func TestView_SimulationScenario(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	price := 70.0
	volume := 200
	v, err := svc.View(context.Background(), string(SectionSimulation), Filters{Price: &price, Volume: &volume, CostReduction: 20})
	require.NoError(t, err)

	cost, ok := kpiValue(v, "Costo Unitario Simulado")
	require.True(t, ok)
	assert.InDelta(t, 28.0, *cost.Raw, 1e-9)

	// (70 - 28) - (60 - 35) = 17 per unit.
	impact, ok := kpiValue(v, "Impacto en Utilidad Total")
	require.True(t, ok)
	assert.InDelta(t, 3400.0, *impact.Raw, 1e-9)
}

func TestView_SimulationRejectsOutOfRangePrice(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	price := 200.0
	_, err := svc.View(context.Background(), string(SectionSimulation), Filters{Price: &price})
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestView_SimulationProductSwitchResetsLevers(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	ctx := context.Background()

	first, err := svc.View(ctx, string(SectionSimulation), Filters{Product: "P001"})
	require.NoError(t, err)
	require.NotNil(t, first.Filters.Price)
	require.NotNil(t, first.Filters.Volume)
	assert.Equal(t, "P001", first.Filters.SimProduct)

	// The form sends back the P001 levers with P003 selected.
	v, err := svc.View(ctx, string(SectionSimulation), Filters{
		Product:    "P003",
		SimProduct: first.Filters.SimProduct,
		Price:      first.Filters.Price,
		Volume:     first.Filters.Volume,
	})
	require.NoError(t, err)

	b := v.Options.Simulation
	require.NotNil(t, b)
	assert.Equal(t, "P003", v.Filters.SimProduct)
	assert.InDelta(t, b.PriceDefault, *v.Filters.Price, 1e-9)
	assert.Equal(t, b.VolumeDefault, *v.Filters.Volume)
}

func TestView_SimulationSameProductKeepsLevers(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	price := 70.0
	volume := 200
	v, err := svc.View(context.Background(), string(SectionSimulation), Filters{
		Product: "P001", SimProduct: "P001", Price: &price, Volume: &volume,
	})
	require.NoError(t, err)
	assert.InDelta(t, 70.0, *v.Filters.Price, 1e-9)
	assert.Equal(t, 200, *v.Filters.Volume)
}

func TestView_Goals(t *testing.T) {
	svc := newTestService(t, t.TempDir()+"/absent.xlsx")
	v, err := svc.View(context.Background(), string(SectionGoals), Filters{})
	require.NoError(t, err)

	score, ok := kpiValue(v, "Puntuación General Ponderada")
	require.True(t, ok)
	assert.InDelta(t, 11.91, *score.Raw, 0.01)

	att, ok := kpiValue(v, "Cumplimiento Meta Utilidad")
	require.True(t, ok)
	assert.InDelta(t, 71.477, *att.Raw, 0.001)

	trade, ok := tableByID(v, "trade-offs")
	require.True(t, ok)
	require.Len(t, trade.Rows, 3)
	assert.Equal(t, "Balanceado (Modelo)", trade.Rows[1][0])
	assert.ElementsMatch(t, []string{"profit", "overtime", "trade-off"}, chartIDs(v))
}

func TestChart_RendersPNG(t *testing.T) {
	svc := newTestService(t, testutil.NewWorkbook().Write(t))
	png, err := svc.Chart(context.Background(), string(SectionOverview), "categories", Filters{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestChart_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testutil.NewWorkbook().Write(t))

	_, err := svc.Chart(ctx, string(SectionOverview), "pie", Filters{})
	assert.ErrorIs(t, err, ErrUnknownChart)

	_, err = svc.Chart(ctx, "nowhere", "categories", Filters{})
	assert.ErrorIs(t, err, ErrUnknownSection)

	empty := newTestService(t, t.TempDir()+"/absent.xlsx")
	_, err = empty.Chart(ctx, string(SectionOverview), "categories", Filters{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testutil.NewWorkbook().Write(t))

	table, err := svc.Table(ctx, string(SectionOverview), "products", Filters{})
	require.NoError(t, err)
	assert.Len(t, table.Records(), 3)

	_, err = svc.Table(ctx, string(SectionOverview), "missing", Filters{})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestProfitabilityWorkbook(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testutil.NewWorkbook().Write(t))

	data, err := svc.ProfitabilityWorkbook(ctx, Filters{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Rentabilidad", "Categorias", "Periodos"}, f.GetSheetList())

	rows, err := f.GetRows("Rentabilidad")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	empty := newTestService(t, t.TempDir()+"/absent.xlsx")
	_, err = empty.ProfitabilityWorkbook(ctx, Filters{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestScorecardPDF(t *testing.T) {
	svc := newTestService(t, t.TempDir()+"/absent.xlsx")
	pdf, err := svc.ScorecardPDF(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestWorkbookSummaryAndReload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testutil.NewWorkbook().Write(t))

	sum := svc.Workbook(ctx)
	assert.True(t, sum.Readable)
	assert.Equal(t, 3, sum.RowCounts[workbook.SheetProducts])

	reloaded := svc.ReloadWorkbook(ctx)
	assert.True(t, reloaded.Readable)
	assert.False(t, reloaded.LoadedAt.Before(sum.LoadedAt))
}

func TestFilters_Query(t *testing.T) {
	price := 55.5
	volume := 120
	q := Filters{Product: "P001", Year: 2022, Price: &price, Volume: &volume}.Query()
	assert.Equal(t, "P001", q.Get("product"))
	assert.Equal(t, "2022", q.Get("year"))
	assert.Equal(t, "55.5", q.Get("price"))
	assert.Equal(t, "120", q.Get("volume"))
	assert.Empty(t, q.Get("efficiency"))
}
