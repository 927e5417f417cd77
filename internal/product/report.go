package product

import "context"

const DefaultReportThreshold = 10

type StockLevel string

const (
	LevelOutOfStock StockLevel = "out_of_stock"
	LevelCritical   StockLevel = "critical"
	LevelLow        StockLevel = "low"
	LevelWarning    StockLevel = "warning"
)

// LevelOf buckets a stock quantity: 0, below 5, below 10, anything else.
func LevelOf(qty int) StockLevel {
	switch {
	case qty <= 0:
		return LevelOutOfStock
	case qty < 5:
		return LevelCritical
	case qty < 10:
		return LevelLow
	}
	return LevelWarning
}

type ReportSummary struct {
	TotalLowStockProducts int `json:"total_low_stock_products"`
	OutOfStockCount       int `json:"out_of_stock_count"`
	CriticalCount         int `json:"critical_count"`
	LowCount              int `json:"low_count"`
	WarningCount          int `json:"warning_count"`
	Threshold             int `json:"threshold"`
}

type ReportBuckets struct {
	OutOfStock []Product `json:"out_of_stock"`
	Critical   []Product `json:"critical"`
	Low        []Product `json:"low"`
	Warning    []Product `json:"warning"`
}

// LowStockReport is the payload of GET /products/inventory/low-stock.
// swagger:model LowStockReport
type LowStockReport struct {
	Summary     ReportSummary `json:"summary"`
	Products    ReportBuckets `json:"products"`
	AllProducts []Product     `json:"all_products"`
}

// BuildReport buckets products that are already below threshold.
func BuildReport(threshold int, ps []Product) *LowStockReport {
	rep := &LowStockReport{
		Products: ReportBuckets{
			OutOfStock: []Product{},
			Critical:   []Product{},
			Low:        []Product{},
			Warning:    []Product{},
		},
		AllProducts: ps,
	}
	if rep.AllProducts == nil {
		rep.AllProducts = []Product{}
	}
	for _, p := range ps {
		switch LevelOf(p.QuantityInStock) {
		case LevelOutOfStock:
			rep.Products.OutOfStock = append(rep.Products.OutOfStock, p)
		case LevelCritical:
			rep.Products.Critical = append(rep.Products.Critical, p)
		case LevelLow:
			rep.Products.Low = append(rep.Products.Low, p)
		default:
			rep.Products.Warning = append(rep.Products.Warning, p)
		}
	}
	rep.Summary = ReportSummary{
		TotalLowStockProducts: len(ps),
		OutOfStockCount:       len(rep.Products.OutOfStock),
		CriticalCount:         len(rep.Products.Critical),
		LowCount:              len(rep.Products.Low),
		WarningCount:          len(rep.Products.Warning),
		Threshold:             threshold,
	}
	return rep
}

// Report runs the low-stock query. A non-positive threshold falls back to
// DefaultReportThreshold.
func Report(ctx context.Context, repo Repository, threshold int) (*LowStockReport, error) {
	if threshold <= 0 {
		threshold = DefaultReportThreshold
	}
	ps, err := repo.LowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return BuildReport(threshold, ps), nil
}
