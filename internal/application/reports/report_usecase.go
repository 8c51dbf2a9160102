// Package reports contiene los reportes de rentabilidad y operación de la farmacia.
// Todos son de solo lectura y se calculan sobre el libro de ventas y los lotes.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// DefaultDeadStockDays umbral por defecto cuando la configuración no define uno.
const DefaultDeadStockDays = 90

// Ventanas del reporte de vencimientos.
const (
	expiryNearDays = entity.ExpiringSoonDays
	expiryFarDays  = 90
)

// ReportUseCase agrupa los reportes de solo lectura.
type ReportUseCase struct {
	reports       repository.ReportRepository
	medicines     repository.MedicineRepository
	batches       repository.BatchRepository
	sales         repository.SaleRepository
	deadStockDays int
	log           *logger.Logger
	now           func() time.Time
}

// NewReportUseCase construye el caso de uso. deadStockDays <= 0 usa DefaultDeadStockDays.
func NewReportUseCase(
	reports repository.ReportRepository,
	medicines repository.MedicineRepository,
	batches repository.BatchRepository,
	sales repository.SaleRepository,
	deadStockDays int,
	log *logger.Logger,
) *ReportUseCase {
	if deadStockDays <= 0 {
		deadStockDays = DefaultDeadStockDays
	}
	return &ReportUseCase{
		reports:       reports,
		medicines:     medicines,
		batches:       batches,
		sales:         sales,
		deadStockDays: deadStockDays,
		log:           log.Component("reportes"),
		now:           time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// resolve interpreta el periodo pedido y deja constancia cuando se cae en hoy.
func (uc *ReportUseCase) resolve(in dto.PeriodRequest) pharmacy.Period {
	p := pharmacy.ResolvePeriod(in.Period, in.StartDate, in.EndDate, uc.now())
	if p.Fallback {
		uc.log.Warn().
			Str("period", in.Period).
			Str("start_date", in.StartDate).
			Str("end_date", in.EndDate).
			Msg("rango de fechas inválido, se usa el día de hoy")
	}
	return p
}

// ProfitReport rentabilidad del periodo agrupada por none|medicine|category.
func (uc *ReportUseCase) ProfitReport(ctx context.Context, in dto.PeriodRequest, groupBy string) (*dto.ProfitReportResponse, error) {
	by, ok := pharmacy.ParseGroupBy(groupBy)
	if !ok {
		return nil, fmt.Errorf("%w: group_by debe ser none, medicine o category", domain.ErrInvalidInput)
	}
	p := uc.resolve(in)
	lines, err := uc.reports.LedgerLines(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("reporte de rentabilidad: %w", err)
	}

	groups := pharmacy.GroupProfit(lines, p, by)
	out := make([]dto.ProfitGroupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.ProfitGroupFromDomain(g))
	}

	totals := pharmacy.GroupTotals{Key: pharmacy.KeyTotal, Name: "Total", Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
	if all := pharmacy.GroupProfit(lines, p, pharmacy.GroupNone); len(all) == 1 {
		totals = all[0]
	}
	return &dto.ProfitReportResponse{
		Period:  dto.PeriodFromDomain(p),
		GroupBy: string(by),
		Groups:  out,
		Totals:  dto.ProfitGroupFromDomain(totals),
	}, nil
}

// DeadStock medicamentos activos con existencias sin ventas en los últimos days días.
// days <= 0 usa el umbral configurado.
func (uc *ReportUseCase) DeadStock(ctx context.Context, days int) (*dto.DeadStockResponse, error) {
	if days <= 0 {
		days = uc.deadStockDays
	}
	meds, err := uc.medicines.List(ctx, repository.MedicineFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("stock muerto: %w", err)
	}
	lastSale, err := uc.reports.LastSaleByMedicine(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock muerto: %w", err)
	}

	entries := pharmacy.DetectDeadStock(meds, lastSale, uc.now(), days)
	resp := &dto.DeadStockResponse{ThresholdDays: days, Items: make([]dto.DeadStockItemDTO, 0, len(entries)), TotalValue: decimal.Zero}
	for _, e := range entries {
		item := dto.DeadStockItemDTO{
			MedicineID:    e.Medicine.ID,
			MedicineName:  e.Medicine.Name,
			CategoryName:  e.Medicine.CategoryName(),
			TotalStock:    e.TotalStock,
			StockValue:    e.StockValue.Round(2),
			DaysSinceSale: e.DaysSinceSale,
		}
		if e.LastSaleDate != nil {
			s := e.LastSaleDate.Format(dto.DateLayout)
			item.LastSaleDate = &s
		}
		resp.Items = append(resp.Items, item)
		resp.TotalValue = resp.TotalValue.Add(e.StockValue)
	}
	resp.TotalValue = resp.TotalValue.Round(2)
	return resp, nil
}

// MarginAlerts líneas vendidas por debajo del costo en el periodo.
func (uc *ReportUseCase) MarginAlerts(ctx context.Context, in dto.PeriodRequest) (*dto.MarginAlertsResponse, error) {
	p := uc.resolve(in)
	lines, err := uc.reports.LedgerLines(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("alertas de margen: %w", err)
	}
	alerts := pharmacy.DetectMarginAlerts(lines, p)
	resp := &dto.MarginAlertsResponse{Period: dto.PeriodFromDomain(p), Alerts: make([]dto.MarginAlertDTO, 0, len(alerts)), TotalLoss: decimal.Zero}
	for _, a := range alerts {
		batchNumber := ""
		if a.Item.Batch != nil {
			batchNumber = a.Item.Batch.BatchNumber
		}
		resp.Alerts = append(resp.Alerts, dto.MarginAlertDTO{
			SaleID:       a.Item.SaleID,
			SaleItemID:   a.Item.ID,
			SaleDate:     a.SaleDate,
			MedicineName: a.Item.DisplayName(),
			BatchNumber:  batchNumber,
			Quantity:     a.Item.Quantity,
			PriceAtSale:  a.Item.PriceAtSale,
			UnitCost:     a.UnitCost.Round(2),
			LossPerUnit:  a.LossPerUnit.Round(2),
			Loss:         a.Loss.Round(2),
		})
		resp.TotalLoss = resp.TotalLoss.Add(a.Loss)
	}
	resp.TotalLoss = resp.TotalLoss.Round(2)
	return resp, nil
}

// SalesReport totales del periodo con desglose por día.
func (uc *ReportUseCase) SalesReport(ctx context.Context, in dto.PeriodRequest) (*dto.SalesReportResponse, error) {
	p := uc.resolve(in)
	daily, err := uc.reports.DailySales(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("reporte de ventas: %w", err)
	}
	resp := &dto.SalesReportResponse{Period: dto.PeriodFromDomain(p), TotalSales: decimal.Zero, Daily: make([]dto.DailySalesDTO, 0, len(daily))}
	for _, d := range daily {
		resp.Daily = append(resp.Daily, dto.DailySalesDTO{
			Date:   d.Date.Format(dto.DateLayout),
			Count:  d.SaleCount,
			Items:  d.Items,
			Amount: d.Amount.Round(2),
		})
		resp.TotalSales = resp.TotalSales.Add(d.Amount)
		resp.TotalItems += d.Items
		resp.SaleCount += d.SaleCount
	}
	resp.TotalSales = resp.TotalSales.Round(2)
	return resp, nil
}

// ExpiryReport lotes activos con existencias: vencidos, que vencen en 30 días y entre 31 y 90.
func (uc *ReportUseCase) ExpiryReport(ctx context.Context) (*dto.ExpiryReportResponse, error) {
	batches, err := uc.batches.ListActiveInStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporte de vencimientos: %w", err)
	}
	today := uc.now()
	var expired, near, far []*entity.Batch
	for _, b := range batches {
		switch d := b.DaysUntilExpiry(today); {
		case d < 0:
			expired = append(expired, b)
		case d <= expiryNearDays:
			near = append(near, b)
		case d <= expiryFarDays:
			far = append(far, b)
		}
	}
	return &dto.ExpiryReportResponse{
		Expired:  expiryBucket(expired, today),
		Within30: expiryBucket(near, today),
		Within90: expiryBucket(far, today),
	}, nil
}

func expiryBucket(batches []*entity.Batch, today time.Time) dto.ExpiryBucketDTO {
	value := decimal.Zero
	for _, b := range batches {
		value = value.Add(b.StockValue())
	}
	return dto.ExpiryBucketDTO{Batches: dto.BatchesFromEntities(batches, today), Value: value.Round(2)}
}

// StockReport medicamentos activos por estado de stock y valor total del inventario.
func (uc *ReportUseCase) StockReport(ctx context.Context) (*dto.StockReportResponse, error) {
	meds, err := uc.medicines.List(ctx, repository.MedicineFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("reporte de stock: %w", err)
	}
	today := uc.now()
	resp := &dto.StockReportResponse{
		OutOfStock: []dto.MedicineResponse{},
		LowStock:   []dto.MedicineResponse{},
		Healthy:    []dto.MedicineResponse{},
		TotalValue: decimal.Zero,
	}
	for _, m := range meds {
		r := dto.MedicineFromEntity(m, today, false)
		switch {
		case m.IsOutOfStock():
			resp.OutOfStock = append(resp.OutOfStock, r)
		case m.IsLowStock():
			resp.LowStock = append(resp.LowStock, r)
		default:
			resp.Healthy = append(resp.Healthy, r)
		}
		resp.TotalValue = resp.TotalValue.Add(m.StockValue())
	}
	resp.TotalValue = resp.TotalValue.Round(2)
	return resp, nil
}

// lowStockFirst ordena por stock ascendente y luego por nombre.
func lowStockFirst(meds []*entity.Medicine) {
	sort.SliceStable(meds, func(i, j int) bool {
		si, sj := meds[i].TotalStock(), meds[j].TotalStock()
		if si != sj {
			return si < sj
		}
		return meds[i].Name < meds[j].Name
	})
}
