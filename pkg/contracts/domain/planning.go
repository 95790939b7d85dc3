package domain

// Product is one row of the fixed product catalog (DAT_PRODUCTOS_FIJOS).
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Line           string  `json:"line"`
	ProductionTime float64 `json:"production_time_min"`
	StorageCost    float64 `json:"storage_cost"`
}

// Input is a raw material.
type Input struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Process is a production process.
type Process struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BOMRow maps a product to the quantity it needs of each input code.
type BOMRow struct {
	ProductID  string             `json:"product_id"`
	Quantities map[string]float64 `json:"quantities"`
}

// ProcessTimeRow maps a product to the minutes it spends in each process code.
type ProcessTimeRow struct {
	ProductID string             `json:"product_id"`
	Minutes   map[string]float64 `json:"minutes"`
}

// DemandRow is one product/period entry of the demand and price matrix.
type DemandRow struct {
	ProductID  string  `json:"product_id"`
	Period     int     `json:"period"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	MinDemand  float64 `json:"min_demand"`
	MaxDemand  float64 `json:"max_demand"`
	Price      float64 `json:"price"`
	InputCost  float64 `json:"input_cost"`
}

// CapacityRow is one process/period entry of the capacity matrix.
type CapacityRow struct {
	ProcessID    string  `json:"process_id"`
	Period       int     `json:"period"`
	Minutes      float64 `json:"capacity_min"`
	OvertimeCost float64 `json:"overtime_cost"`
}

// StockRow is one input/period entry of the stock matrix.
type StockRow struct {
	InputID   string  `json:"input_id"`
	Period    int     `json:"period"`
	Available float64 `json:"available"`
	MinUsage  float64 `json:"min_usage"`
}

// ResultRow is a reconstructed solver output value. ID is a product or a
// process id depending on the table it belongs to.
type ResultRow struct {
	ID     string  `json:"id"`
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// ResultKind names the four reconstructed solver tables.
type ResultKind string

const (
	ResultProduction ResultKind = "RES_PRODUCCION"
	ResultSales      ResultKind = "RES_VENTAS"
	ResultInventory  ResultKind = "RES_INVENTARIO"
	ResultOvertime   ResultKind = "RES_H_EXTRAS"
)
