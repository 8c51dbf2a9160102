package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

const dashboardTop = 5 // filas de cada widget del dashboard

// Dashboard resumen operativo del día.
//
// Cuatro consultas en paralelo:
//  1. medicamentos activos con lotes → total, bajo stock
//  2. ventas del día                 → monto y cantidad
//  3. lotes activos con stock        → próximos a vencer
//  4. últimas ventas
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := uc.now()
	today := entity.DateOf(now)

	type medsResult struct {
		meds []*entity.Medicine
		err  error
	}
	type dailyResult struct {
		daily []repository.DailySalesResult
		err   error
	}
	type batchesResult struct {
		batches []*entity.Batch
		err     error
	}
	type salesResult struct {
		sales []*entity.Sale
		err   error
	}

	medsCh := make(chan medsResult, 1)
	dailyCh := make(chan dailyResult, 1)
	batchesCh := make(chan batchesResult, 1)
	salesCh := make(chan salesResult, 1)

	go func() {
		meds, err := uc.medicines.List(ctx, repository.MedicineFilter{ActiveOnly: true})
		medsCh <- medsResult{meds, err}
	}()
	go func() {
		daily, err := uc.reports.DailySales(ctx, today, today)
		dailyCh <- dailyResult{daily, err}
	}()
	go func() {
		batches, err := uc.batches.ListActiveInStock(ctx)
		batchesCh <- batchesResult{batches, err}
	}()
	go func() {
		sales, _, err := uc.sales.List(ctx, repository.SaleFilter{Limit: dashboardTop})
		salesCh <- salesResult{sales, err}
	}()

	meds := <-medsCh
	daily := <-dailyCh
	batches := <-batchesCh
	recent := <-salesCh

	if meds.err != nil {
		return nil, fmt.Errorf("dashboard: medicamentos: %w", meds.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", daily.err)
	}
	if batches.err != nil {
		return nil, fmt.Errorf("dashboard: lotes: %w", batches.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: últimas ventas: %w", recent.err)
	}

	resp := &dto.DashboardResponse{
		TotalMedicines:    len(meds.meds),
		TodaySales:        decimal.Zero,
		RecentSales:       make([]dto.SaleResponse, 0, len(recent.sales)),
		LowStockMedicines: []dto.MedicineResponse{},
		ExpiringBatches:   []dto.BatchResponse{},
	}
	for _, d := range daily.daily {
		resp.TodaySales = resp.TodaySales.Add(d.Amount)
		resp.TodaySaleCount += d.SaleCount
	}
	resp.TodaySales = resp.TodaySales.Round(2)

	var low []*entity.Medicine
	for _, m := range meds.meds {
		if m.IsLowStock() {
			low = append(low, m)
		}
	}
	resp.LowStockCount = len(low)
	lowStockFirst(low)
	for i, m := range low {
		if i == dashboardTop {
			break
		}
		resp.LowStockMedicines = append(resp.LowStockMedicines, dto.MedicineFromEntity(m, now, false))
	}

	// ListActiveInStock ya viene ordenado por vencimiento.
	for _, b := range batches.batches {
		if !b.IsExpiringSoon(now) {
			continue
		}
		resp.ExpiringSoonCount++
		if len(resp.ExpiringBatches) < dashboardTop {
			resp.ExpiringBatches = append(resp.ExpiringBatches, dto.BatchFromEntity(b, now))
		}
	}

	for _, s := range recent.sales {
		resp.RecentSales = append(resp.RecentSales, dto.SaleFromEntity(s, false))
	}
	return resp, nil
}
