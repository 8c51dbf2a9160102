package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
)

// PeriodRequest parámetros de periodo de los reportes.
type PeriodRequest struct {
	Period    string `query:"period"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// PeriodDTO periodo resuelto.
type PeriodDTO struct {
	Token     string `json:"token"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// PeriodFromDomain convierte a DTO.
func PeriodFromDomain(p pharmacy.Period) PeriodDTO {
	return PeriodDTO{
		Token:     p.Token,
		StartDate: p.Start.Format(DateLayout),
		EndDate:   p.End.Format(DateLayout),
		Fallback:  p.Fallback,
	}
}

// ProfitGroupDTO acumulado de un grupo.
type ProfitGroupDTO struct {
	Key              string          `json:"key"`
	Name             string          `json:"name"`
	Revenue          decimal.Decimal `json:"revenue"`
	Cost             decimal.Decimal `json:"cost"`
	Profit           decimal.Decimal `json:"profit"`
	Quantity         int             `json:"quantity"`
	MarginPercent    decimal.Decimal `json:"margin_percent"`
	UnknownCostItems int             `json:"unknown_cost_items"`
}

// ProfitReportResponse rentabilidad agrupada de un periodo.
type ProfitReportResponse struct {
	Period  PeriodDTO        `json:"period"`
	GroupBy string           `json:"group_by"`
	Groups  []ProfitGroupDTO `json:"groups"`
	Totals  ProfitGroupDTO   `json:"totals"`
}

// ProfitGroupFromDomain convierte a DTO.
func ProfitGroupFromDomain(g pharmacy.GroupTotals) ProfitGroupDTO {
	return ProfitGroupDTO{
		Key:              g.Key,
		Name:             g.Name,
		Revenue:          g.Revenue.Round(2),
		Cost:             g.Cost.Round(2),
		Profit:           g.Profit.Round(2),
		Quantity:         g.Quantity,
		MarginPercent:    g.MarginPercent(),
		UnknownCostItems: g.UnknownCostItems,
	}
}

// DeadStockItemDTO medicamento sin ventas recientes.
type DeadStockItemDTO struct {
	MedicineID    int64           `json:"medicine_id"`
	MedicineName  string          `json:"medicine_name"`
	CategoryName  string          `json:"category_name"`
	TotalStock    int             `json:"total_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LastSaleDate  *string         `json:"last_sale_date"`
	DaysSinceSale *int            `json:"days_since_sale"`
}

// DeadStockResponse reporte de stock muerto.
type DeadStockResponse struct {
	ThresholdDays int                `json:"threshold_days"`
	Items         []DeadStockItemDTO `json:"items"`
	TotalValue    decimal.Decimal    `json:"total_value"`
}

// MarginAlertDTO línea vendida por debajo del costo.
type MarginAlertDTO struct {
	SaleID       int64           `json:"sale_id"`
	SaleItemID   int64           `json:"sale_item_id"`
	SaleDate     time.Time       `json:"sale_date"`
	MedicineName string          `json:"medicine_name"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int             `json:"quantity"`
	PriceAtSale  decimal.Decimal `json:"price_at_sale"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LossPerUnit  decimal.Decimal `json:"loss_per_unit"`
	Loss         decimal.Decimal `json:"loss"`
}

// MarginAlertsResponse alertas de margen del periodo.
type MarginAlertsResponse struct {
	Period    PeriodDTO        `json:"period"`
	Alerts    []MarginAlertDTO `json:"alerts"`
	TotalLoss decimal.Decimal  `json:"total_loss"`
}

// DailySalesDTO ventas de un día.
type DailySalesDTO struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Items  int             `json:"items"`
	Amount decimal.Decimal `json:"amount"`
}

// SalesReportResponse resumen de ventas del periodo con desglose diario.
type SalesReportResponse struct {
	Period     PeriodDTO       `json:"period"`
	TotalSales decimal.Decimal `json:"total_sales"`
	TotalItems int             `json:"total_items"`
	SaleCount  int             `json:"sale_count"`
	Daily      []DailySalesDTO `json:"daily"`
}

// ExpiryBucketDTO lotes en una ventana de vencimiento y su valor en riesgo.
type ExpiryBucketDTO struct {
	Batches []BatchResponse `json:"batches"`
	Value   decimal.Decimal `json:"value"`
}

// ExpiryReportResponse lotes vencidos y próximos a vencer.
type ExpiryReportResponse struct {
	Expired  ExpiryBucketDTO `json:"expired"`
	Within30 ExpiryBucketDTO `json:"within_30_days"`
	Within90 ExpiryBucketDTO `json:"within_90_days"`
}

// StockReportResponse medicamentos por estado de stock.
type StockReportResponse struct {
	OutOfStock []MedicineResponse `json:"out_of_stock"`
	LowStock   []MedicineResponse `json:"low_stock"`
	Healthy    []MedicineResponse `json:"healthy"`
	TotalValue decimal.Decimal    `json:"total_value"`
}

// DashboardResponse resumen operativo del día.
type DashboardResponse struct {
	TotalMedicines    int                `json:"total_medicines"`
	TodaySales        decimal.Decimal    `json:"today_sales"`
	TodaySaleCount    int                `json:"today_sale_count"`
	LowStockCount     int                `json:"low_stock_count"`
	ExpiringSoonCount int                `json:"expiring_soon_count"`
	RecentSales       []SaleResponse     `json:"recent_sales"`
	LowStockMedicines []MedicineResponse `json:"low_stock_medicines"`
	ExpiringBatches   []BatchResponse    `json:"expiring_batches"`
}
