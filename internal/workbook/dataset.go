package workbook

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"plandash/pkg/contracts/domain"
)

// Warning is a non-fatal problem found while loading one sheet.
type Warning struct {
	Sheet  string `json:"sheet"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Sheet, w.Reason)
}

// Identity identifies one version of the workbook file.
type Identity struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Exists  bool      `json:"exists"`
}

// Equal reports whether two identities name the same file version.
func (i Identity) Equal(o Identity) bool {
	return i.Path == o.Path && i.Size == o.Size && i.ModTime.Equal(o.ModTime) && i.Exists == o.Exists
}

// IdentityOf stats path. A file that cannot be stat'ed has Exists false.
func IdentityOf(path string) Identity {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	id := Identity{Path: abs}
	info, err := os.Stat(abs)
	if err != nil {
		return id
	}
	id.Size = info.Size()
	id.ModTime = info.ModTime()
	id.Exists = true
	return id
}

// Dataset is one immutable load of the workbook.
type Dataset struct {
	Identity Identity
	LoadedAt time.Time
	Readable bool
	Horizon  domain.Horizon

	Tables map[string]*Table

	ProductIDs   []string
	Products     []domain.Product
	Inputs       []domain.Input
	Processes    []domain.Process
	BOM          []domain.BOMRow
	ProcessTimes []domain.ProcessTimeRow
	Demand       []domain.DemandRow
	Capacity     []domain.CapacityRow
	Stock        []domain.StockRow
	Results      map[domain.ResultKind][]domain.ResultRow

	Warnings []Warning
}

func newDataset(identity Identity, horizon domain.Horizon) *Dataset {
	ds := &Dataset{
		Identity: identity,
		LoadedAt: time.Now(),
		Horizon:  horizon,
		Tables:   make(map[string]*Table, len(InputSheets)),
		Results:  make(map[domain.ResultKind][]domain.ResultRow),
	}
	for _, name := range InputSheets {
		ds.Tables[name] = EmptyTable(name)
	}
	for _, k := range append(append([]domain.ResultKind{}, productResultKinds...), processResultKinds...) {
		ds.Results[k] = []domain.ResultRow{}
	}
	return ds
}

// Table returns a loaded sheet. Unknown names yield an empty table.
func (d *Dataset) Table(name string) *Table {
	if t, ok := d.Tables[name]; ok && t != nil {
		return t
	}
	return EmptyTable(name)
}

// Result returns one reconstructed solver table.
func (d *Dataset) Result(kind domain.ResultKind) []domain.ResultRow {
	return d.Results[kind]
}

// WarningsFor returns the warnings raised by any of the named sheets.
func (d *Dataset) WarningsFor(sheets ...string) []Warning {
	want := make(map[string]bool, len(sheets))
	for _, s := range sheets {
		want[s] = true
	}
	var out []Warning
	for _, w := range d.Warnings {
		if want[w.Sheet] {
			out = append(out, w)
		}
	}
	return out
}

// Product returns the catalog entry of a product id.
func (d *Dataset) Product(id string) (domain.Product, bool) {
	for _, p := range d.Products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// ProductByName returns the catalog entry with the given display name.
func (d *Dataset) ProductByName(name string) (domain.Product, bool) {
	for _, p := range d.Products {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Product{}, false
}

// ProductName returns the display name of a product id, or the id itself.
func (d *Dataset) ProductName(id string) string {
	if p, ok := d.Product(id); ok && p.Name != "" {
		return p.Name
	}
	return id
}

// Categories returns the distinct product categories in sorted order.
func (d *Dataset) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range d.Products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// Summary describes a load for the workbook status endpoint.
type Summary struct {
	Identity  Identity       `json:"identity"`
	LoadedAt  time.Time      `json:"loaded_at"`
	Readable  bool           `json:"readable"`
	RowCounts map[string]int `json:"row_counts"`
	Warnings  []Warning      `json:"warnings"`
}

// Summary reports row counts of every sheet and result table.
func (d *Dataset) Summary() Summary {
	counts := make(map[string]int, len(d.Tables)+len(d.Results))
	for name, t := range d.Tables {
		counts[name] = t.Len()
	}
	for kind, rows := range d.Results {
		counts[string(kind)] = len(rows)
	}
	warnings := d.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	return Summary{
		Identity:  d.Identity,
		LoadedAt:  d.LoadedAt,
		Readable:  d.Readable,
		RowCounts: counts,
		Warnings:  warnings,
	}
}

// decode fills the typed views from the raw tables. Sheets lacking their
// key columns are left undecoded and reported.
func (d *Dataset) decode() {
	d.ProductIDs = nonEmpty(d.Table(SheetProducts).Column(ColProductID))

	for _, id := range nonEmpty(d.Table(SheetInputs).Column(ColInputID)) {
		d.Inputs = append(d.Inputs, domain.Input{ID: id, Name: domain.InputName(id)})
	}
	for _, id := range nonEmpty(d.Table(SheetProcesses).Column(ColProcessID)) {
		d.Processes = append(d.Processes, domain.Process{ID: id, Name: domain.ProcessName(id)})
	}

	if t := d.keyed(SheetProductCatalog, ColProductID); t != nil {
		for r := range t.Rows {
			id := t.String(r, ColProductID)
			if id == "" {
				continue
			}
			d.Products = append(d.Products, domain.Product{
				ID:             id,
				Name:           t.String(r, ColProductName),
				Category:       t.String(r, ColCategory),
				Line:           t.String(r, ColLine),
				ProductionTime: t.Float(r, ColProductionTime),
				StorageCost:    t.Float(r, ColStorageCost),
			})
		}
	}

	if t := d.keyed(SheetBOM, ColProductID); t != nil {
		for r := range t.Rows {
			id := t.String(r, ColProductID)
			if id == "" {
				continue
			}
			d.BOM = append(d.BOM, domain.BOMRow{ProductID: id, Quantities: t.rowValues(r, ColProductID)})
		}
	}

	if t := d.keyed(SheetProcessTimes, ColProductID); t != nil {
		for r := range t.Rows {
			id := t.String(r, ColProductID)
			if id == "" {
				continue
			}
			d.ProcessTimes = append(d.ProcessTimes, domain.ProcessTimeRow{ProductID: id, Minutes: t.rowValues(r, ColProductID)})
		}
	}

	if t := d.keyed(SheetDemand, ColProductID, ColPeriod); t != nil {
		for r := range t.Rows {
			period, ok := periodAt(t, r)
			if !ok {
				continue
			}
			d.Demand = append(d.Demand, domain.DemandRow{
				ProductID: t.String(r, ColProductID),
				Period:    period,
				Year:      d.Horizon.Year(period),
				Month:     d.Horizon.Month(period),
				MinDemand: t.Float(r, ColMinDemand),
				MaxDemand: t.Float(r, ColMaxDemand),
				Price:     t.Float(r, ColPrice),
				InputCost: t.Float(r, ColInputCost),
			})
		}
	}

	if t := d.keyed(SheetCapacity, ColProcessID, ColPeriod); t != nil {
		for r := range t.Rows {
			period, ok := periodAt(t, r)
			if !ok {
				continue
			}
			d.Capacity = append(d.Capacity, domain.CapacityRow{
				ProcessID:    t.String(r, ColProcessID),
				Period:       period,
				Minutes:      t.Float(r, ColCapacity),
				OvertimeCost: t.Float(r, ColOvertimeCost),
			})
		}
	}

	if t := d.keyed(SheetStock, ColInputID, ColPeriod); t != nil {
		for r := range t.Rows {
			period, ok := periodAt(t, r)
			if !ok {
				continue
			}
			d.Stock = append(d.Stock, domain.StockRow{
				InputID:   t.String(r, ColInputID),
				Period:    period,
				Available: t.Float(r, ColStock),
				MinUsage:  t.Float(r, ColMinUsage),
			})
		}
	}
}

// keyed returns a non-empty sheet that has all key columns. A non-empty
// sheet lacking them gets a warning and nil.
func (d *Dataset) keyed(sheet string, keys ...string) *Table {
	t := d.Table(sheet)
	if t.Empty() {
		return nil
	}
	if missing := t.Missing(keys...); len(missing) > 0 {
		d.Warnings = append(d.Warnings, Warning{
			Sheet:  sheet,
			Reason: fmt.Sprintf("missing key columns %v", missing),
		})
		return nil
	}
	return t
}

// rowValues returns every numeric column of a row except the key column.
func (t *Table) rowValues(row int, key string) map[string]float64 {
	values := make(map[string]float64, len(t.Header))
	for c, h := range t.Header {
		if h == "" || h == key {
			continue
		}
		v, _ := parseNumber(t.Cell(row, c))
		values[h] = v
	}
	return values
}

func periodAt(t *Table, row int) (int, bool) {
	v := t.Float(row, ColPeriod)
	if math.IsNaN(v) || v < 1 {
		return 0, false
	}
	return int(v), true
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
