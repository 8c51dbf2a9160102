package reports_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/reports"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenario
//
// Hoy: 2024-03-15.
//   Paracetamol (Analgésico)  lote P1: costo 5/u, precio 10/u, vence 2024-04-01
//   Amoxicilina (Antibiótico) lote X1: costo 20/u, precio 25/u, vence 2026-01-01
//   Vitamina C  (Analgésico)  lote D1: costo 2/u,  precio 5/u,  vence 2024-05-20
//   Jarabe Tos  (Analgésico)  lote E1: sin costo,  precio 8/u,  vencido 2024-03-01
//   Gasas       (Analgésico)  sin lotes
//
// Ventas:
//   2023-11-01  Vitamina C 1 @ 5
//   2024-03-10  Paracetamol 5 @ 12
//   2024-03-15  Paracetamol 10 @ 10, Amoxicilina 2 @ 15 (bajo costo), "Bolsa" 1 @ 2
// ──────────────────────────────────────────────────────────────────────────────

var today = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type scenario struct {
	uc          *reports.ReportUseCase
	paracetamol *entity.Medicine
	amoxicilina *entity.Medicine
	vitaminaC   *entity.Medicine
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	cats, meds, batches, saleRepo, reportRepo := store.Repositories()

	analgesico := &entity.Category{Name: "Analgésico"}
	antibiotico := &entity.Category{Name: "Antibiótico"}
	require.NoError(t, cats.Create(ctx, analgesico))
	require.NoError(t, cats.Create(ctx, antibiotico))

	newMed := func(name string, cat *entity.Category, upp, min int) *entity.Medicine {
		m := &entity.Medicine{Name: name, CategoryID: cat.ID, PackingType: entity.PackingStrip, UnitsPerPack: upp, MinStockLevel: min, IsActive: true}
		require.NoError(t, meds.Create(ctx, m))
		return m
	}
	newBatch := func(m *entity.Medicine, number string, purchase *decimal.Decimal, mrp string, stock int, expiry time.Time) *entity.Batch {
		b := &entity.Batch{MedicineID: m.ID, BatchNumber: number, ExpiryDate: expiry, PurchasePrice: purchase, MRP: dec(mrp), StockQuantity: stock, IsActive: true}
		require.NoError(t, batches.Create(ctx, b))
		return b
	}
	ptr := func(s string) *decimal.Decimal { d := dec(s); return &d }

	p := newMed("Paracetamol", analgesico, 10, 5)
	x := newMed("Amoxicilina", antibiotico, 10, 5)
	d := newMed("Vitamina C", analgesico, 1, 0)
	e := newMed("Jarabe Tos", analgesico, 1, 2)
	newMed("Gasas", analgesico, 1, 0)

	p1 := newBatch(p, "P1", ptr("50"), "100", 100, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	x1 := newBatch(x, "X1", ptr("200"), "250", 50, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	d1 := newBatch(d, "D1", ptr("2"), "5", 10, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	newBatch(e, "E1", nil, "8", 1, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	clock := today
	commit := sales.NewCommitSaleUseCase(memory.NewTxRunner(store), logger.Nop()).
		WithClock(func() time.Time { return clock })
	sell := func(at time.Time, lines ...sales.CartLine) {
		clock = at
		_, err := commit.Commit(ctx, sales.CommitSaleInput{Lines: lines})
		require.NoError(t, err)
	}
	line := func(b *entity.Batch, qty int, price string) sales.CartLine {
		id := b.ID
		return sales.CartLine{BatchID: &id, Quantity: qty, UnitPrice: dec(price)}
	}

	sell(time.Date(2023, 11, 1, 9, 0, 0, 0, time.UTC), line(d1, 1, "5"))
	sell(time.Date(2024, 3, 10, 16, 30, 0, 0, time.UTC), line(p1, 5, "12"))
	sell(today,
		line(p1, 10, "10"),
		line(x1, 2, "15"),
		sales.CartLine{ItemName: "Bolsa", Quantity: 1, UnitPrice: dec("2")},
	)

	uc := reports.NewReportUseCase(reportRepo, meds, batches, saleRepo, 0, logger.Nop()).
		WithClock(func() time.Time { return today })
	return &scenario{uc: uc, paracetamol: p, amoxicilina: x, vitaminaC: d}
}

func key(id int64) string { return strconv.FormatInt(id, 10) }

// ──────────────────────────────────────────────────────────────────────────────
// Rentabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestProfitReport_PorMedicamento(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.ProfitReport(context.Background(), dto.PeriodRequest{Period: pharmacy.PeriodWeek}, "medicine")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", r.Period.StartDate)
	assert.Equal(t, "medicine", r.GroupBy)

	require.Len(t, r.Groups, 3)
	assert.Equal(t, key(s.paracetamol.ID), r.Groups[0].Key)
	assert.True(t, dec("160").Equal(r.Groups[0].Revenue))
	assert.True(t, dec("75").Equal(r.Groups[0].Cost))
	assert.True(t, dec("85").Equal(r.Groups[0].Profit))
	assert.Equal(t, 15, r.Groups[0].Quantity)

	assert.Equal(t, pharmacy.KeyUnlisted, r.Groups[1].Key)
	assert.Equal(t, 1, r.Groups[1].UnknownCostItems)

	assert.Equal(t, key(s.amoxicilina.ID), r.Groups[2].Key)
	assert.True(t, dec("-10").Equal(r.Groups[2].Profit))

	assert.True(t, dec("192").Equal(r.Totals.Revenue))
	assert.True(t, dec("75").Equal(r.Totals.Profit))
	assert.Equal(t, 18, r.Totals.Quantity)
	assert.True(t, dec("39.06").Equal(r.Totals.MarginPercent))
}

func TestProfitReport_PorCategoriaHoy(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.ProfitReport(context.Background(), dto.PeriodRequest{}, "category")
	require.NoError(t, err)
	assert.Equal(t, pharmacy.PeriodToday, r.Period.Token)
	require.Len(t, r.Groups, 3)
	assert.Equal(t, "Analgésico", r.Groups[0].Name)
	assert.True(t, dec("50").Equal(r.Groups[0].Profit))
	assert.Equal(t, "Antibiótico", r.Groups[2].Name)
	assert.True(t, dec("132").Equal(r.Totals.Revenue))
}

func TestProfitReport_PeriodoSinVentas(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.ProfitReport(context.Background(), dto.PeriodRequest{Period: pharmacy.PeriodLastYear}, "")
	require.NoError(t, err)
	require.Len(t, r.Groups, 1) // la venta de noviembre de 2023
	assert.True(t, dec("5").Equal(r.Totals.Revenue))

	r, err = s.uc.ProfitReport(context.Background(), dto.PeriodRequest{Period: pharmacy.PeriodCustom, StartDate: "2020-01-01", EndDate: "2020-12-31"}, "")
	require.NoError(t, err)
	assert.Empty(t, r.Groups)
	assert.True(t, r.Totals.Revenue.IsZero())
	assert.True(t, r.Totals.MarginPercent.IsZero())
}

func TestProfitReport_CustomInvalidoCaeEnHoy(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.ProfitReport(context.Background(), dto.PeriodRequest{Period: pharmacy.PeriodCustom, StartDate: "2024-03-20", EndDate: "2024-03-01"}, "")
	require.NoError(t, err)
	assert.True(t, r.Period.Fallback)
	assert.Equal(t, "2024-03-15", r.Period.StartDate)
	assert.True(t, dec("132").Equal(r.Totals.Revenue))
}

func TestProfitReport_AgrupacionInvalida(t *testing.T) {
	s := newScenario(t)

	_, err := s.uc.ProfitReport(context.Background(), dto.PeriodRequest{}, "lote")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock muerto y alertas de margen
// ──────────────────────────────────────────────────────────────────────────────

func TestDeadStock_UmbralPorDefecto(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.DeadStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, reports.DefaultDeadStockDays, r.ThresholdDays)
	require.Len(t, r.Items, 2)

	assert.Equal(t, "Vitamina C", r.Items[0].MedicineName)
	assert.Equal(t, 9, r.Items[0].TotalStock)
	assert.True(t, dec("45").Equal(r.Items[0].StockValue))
	require.NotNil(t, r.Items[0].LastSaleDate)
	assert.Equal(t, "2023-11-01", *r.Items[0].LastSaleDate)
	require.NotNil(t, r.Items[0].DaysSinceSale)
	assert.Equal(t, 135, *r.Items[0].DaysSinceSale)

	assert.Equal(t, "Jarabe Tos", r.Items[1].MedicineName)
	assert.Nil(t, r.Items[1].LastSaleDate)
	assert.True(t, dec("53").Equal(r.TotalValue))
}

func TestDeadStock_UmbralExplicito(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.DeadStock(context.Background(), 200)
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Jarabe Tos", r.Items[0].MedicineName)
}

func TestMarginAlerts(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.MarginAlerts(context.Background(), dto.PeriodRequest{Period: pharmacy.PeriodMonth})
	require.NoError(t, err)
	require.Len(t, r.Alerts, 1)
	a := r.Alerts[0]
	assert.Equal(t, "Amoxicilina", a.MedicineName)
	assert.Equal(t, "X1", a.BatchNumber)
	assert.Equal(t, 2, a.Quantity)
	assert.True(t, dec("20").Equal(a.UnitCost))
	assert.True(t, dec("5").Equal(a.LossPerUnit))
	assert.True(t, dec("10").Equal(a.Loss))
	assert.True(t, dec("10").Equal(r.TotalLoss))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes operativos
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesReport_DesgloseDiario(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.SalesReport(context.Background(), dto.PeriodRequest{Period: pharmacy.PeriodMonth})
	require.NoError(t, err)
	assert.Equal(t, 2, r.SaleCount)
	assert.Equal(t, 18, r.TotalItems)
	assert.True(t, dec("192").Equal(r.TotalSales))
	require.Len(t, r.Daily, 2)
	assert.Equal(t, "2024-03-10", r.Daily[0].Date)
	assert.True(t, dec("60").Equal(r.Daily[0].Amount))
	assert.Equal(t, "2024-03-15", r.Daily[1].Date)
	assert.Equal(t, 13, r.Daily[1].Items)
}

func TestExpiryReport_Ventanas(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.ExpiryReport(context.Background())
	require.NoError(t, err)

	require.Len(t, r.Expired.Batches, 1)
	assert.Equal(t, "E1", r.Expired.Batches[0].BatchNumber)
	assert.True(t, dec("8").Equal(r.Expired.Value))

	require.Len(t, r.Within30.Batches, 1)
	assert.Equal(t, "P1", r.Within30.Batches[0].BatchNumber)
	assert.Equal(t, 85, r.Within30.Batches[0].StockQuantity)
	assert.True(t, dec("850").Equal(r.Within30.Value))

	require.Len(t, r.Within90.Batches, 1)
	assert.Equal(t, "D1", r.Within90.Batches[0].BatchNumber)
	assert.True(t, dec("45").Equal(r.Within90.Value))
}

func TestStockReport_Estados(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.StockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, r.OutOfStock, 1)
	assert.Equal(t, "Gasas", r.OutOfStock[0].Name)
	require.Len(t, r.LowStock, 1)
	assert.Equal(t, "Jarabe Tos", r.LowStock[0].Name)
	assert.Len(t, r.Healthy, 3)
	// 850 + 48×25 + 45 + 8
	assert.True(t, dec("2103").Equal(r.TotalValue))
}

func TestDashboard(t *testing.T) {
	s := newScenario(t)

	r, err := s.uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, r.TotalMedicines)
	assert.True(t, dec("132").Equal(r.TodaySales))
	assert.Equal(t, 1, r.TodaySaleCount)

	assert.Equal(t, 2, r.LowStockCount)
	require.Len(t, r.LowStockMedicines, 2)
	assert.Equal(t, "Gasas", r.LowStockMedicines[0].Name)
	assert.Equal(t, "Jarabe Tos", r.LowStockMedicines[1].Name)

	assert.Equal(t, 1, r.ExpiringSoonCount)
	require.Len(t, r.ExpiringBatches, 1)
	assert.Equal(t, "P1", r.ExpiringBatches[0].BatchNumber)

	require.Len(t, r.RecentSales, 3)
	assert.True(t, dec("132").Equal(r.RecentSales[0].TotalAmount))
}
