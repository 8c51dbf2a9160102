package pharmacy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var (
	tabletas = &entity.Category{ID: 1, Name: "Tableta"}
	jarabes  = &entity.Category{ID: 2, Name: "Jarabe"}
)

func medicine(id int64, name string, cat *entity.Category, upp int) *entity.Medicine {
	return &entity.Medicine{ID: id, Name: name, CategoryID: cat.ID, Category: cat, UnitsPerPack: upp, IsActive: true}
}

func batchOf(id int64, m *entity.Medicine, purchase *decimal.Decimal, mrp string) *entity.Batch {
	return &entity.Batch{ID: id, MedicineID: m.ID, Medicine: m, PurchasePrice: purchase, MRP: dec(mrp), IsActive: true}
}

func listed(b *entity.Batch, qty int, price string) *entity.SaleItem {
	id := b.ID
	return &entity.SaleItem{BatchID: &id, Batch: b, Quantity: qty, PriceAtSale: dec(price)}
}

func unlisted(name string, qty int, price string) *entity.SaleItem {
	return &entity.SaleItem{ItemName: name, Quantity: qty, PriceAtSale: dec(price)}
}

func at(d time.Time, it *entity.SaleItem) entity.LedgerLine {
	return entity.LedgerLine{SaleDate: d.Add(15 * time.Hour), Item: it}
}

// ──────────────────────────────────────────────────────────────────────────────
// ItemProfit / SaleProfit
// ──────────────────────────────────────────────────────────────────────────────

func TestItemProfit_VentaBajoCosto(t *testing.T) {
	m := medicine(1, "Paracetamol 500mg", tabletas, 10)
	b := batchOf(1, m, decPtr("50"), "100")

	p := pharmacy.ItemProfit(listed(b, 4, "4"))

	assert.True(t, p.CostKnown)
	assert.True(t, dec("16").Equal(p.Revenue))
	assert.True(t, dec("20").Equal(p.Cost))
	assert.True(t, dec("-4").Equal(p.Profit))
}

func TestItemProfit_NoListadoTieneCostoDesconocido(t *testing.T) {
	for _, qty := range []int{1, 3, 250} {
		p := pharmacy.ItemProfit(unlisted("Termómetro", qty, "7.25"))
		assert.False(t, p.CostKnown)
		assert.True(t, p.Cost.IsZero())
		assert.True(t, p.Profit.IsZero())
		assert.True(t, dec("7.25").Mul(decimal.NewFromInt(int64(qty))).Equal(p.Revenue))
	}
}

func TestItemProfit_SinPrecioDeCompra(t *testing.T) {
	m := medicine(1, "Ibuprofeno", tabletas, 10)
	p := pharmacy.ItemProfit(listed(batchOf(1, m, nil, "80"), 2, "9"))
	assert.False(t, p.CostKnown)
	assert.True(t, dec("18").Equal(p.Revenue))
	assert.True(t, p.Profit.IsZero())
}

func TestSaleProfit_SumaYPropagaCostoDesconocido(t *testing.T) {
	m := medicine(1, "Amoxicilina", tabletas, 10)
	b := batchOf(1, m, decPtr("30"), "60")

	known := pharmacy.SaleProfit([]*entity.SaleItem{listed(b, 10, "6"), listed(b, 5, "5")})
	assert.True(t, known.CostKnown)
	assert.True(t, dec("85").Equal(known.Revenue))
	assert.True(t, dec("45").Equal(known.Cost))
	assert.True(t, dec("40").Equal(known.Profit))

	mixed := pharmacy.SaleProfit([]*entity.SaleItem{listed(b, 10, "6"), unlisted("Gasa", 1, "3")})
	assert.False(t, mixed.CostKnown)
	assert.True(t, dec("63").Equal(mixed.Revenue))
	assert.True(t, dec("30").Equal(mixed.Cost))
}

func TestMarginPercent(t *testing.T) {
	assert.True(t, dec("25").Equal(pharmacy.MarginPercent(dec("25"), dec("100"))))
	assert.True(t, dec("33.33").Equal(pharmacy.MarginPercent(dec("1"), dec("3"))))
	assert.True(t, pharmacy.MarginPercent(dec("5"), decimal.Zero).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// GroupProfit
// ──────────────────────────────────────────────────────────────────────────────

func groupLines() []entity.LedgerLine {
	para := medicine(1, "Paracetamol", tabletas, 10)
	ibu := medicine(2, "Ibuprofeno", tabletas, 10)
	tos := medicine(3, "Jarabe para la tos", jarabes, 1)
	bPara := batchOf(10, para, decPtr("50"), "100") // costo 5, precio 10
	bIbu := batchOf(20, ibu, decPtr("20"), "40")    // costo 2
	bTos := batchOf(30, tos, nil, "12")             // costo desconocido

	return []entity.LedgerLine{
		at(date(2024, 3, 1), listed(bPara, 10, "10")), // 100 - 50
		at(date(2024, 3, 2), listed(bIbu, 5, "4")),    // 20 - 10
		at(date(2024, 3, 2), listed(bTos, 2, "12")),   // 24, costo desconocido
		at(date(2024, 3, 3), unlisted("Gasa", 1, "6")),
		at(date(2024, 2, 29), listed(bPara, 100, "10")), // fuera de rango
		at(date(2024, 3, 11), listed(bPara, 100, "10")), // fuera de rango
	}
}

func TestGroupProfit_SinAgrupar(t *testing.T) {
	p := pharmacy.ResolvePeriod("custom", "2024-03-01", "2024-03-10", date(2024, 3, 15))
	groups := pharmacy.GroupProfit(groupLines(), p, pharmacy.GroupNone)

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, pharmacy.KeyTotal, g.Key)
	assert.True(t, dec("150").Equal(g.Revenue))
	assert.True(t, dec("60").Equal(g.Cost))
	assert.True(t, dec("60").Equal(g.Profit))
	assert.Equal(t, 18, g.Quantity)
	assert.Equal(t, 2, g.UnknownCostItems)
	assert.True(t, dec("40").Equal(g.MarginPercent()))
}

func TestGroupProfit_PorMedicamento(t *testing.T) {
	p := pharmacy.ResolvePeriod("custom", "2024-03-01", "2024-03-10", date(2024, 3, 15))
	groups := pharmacy.GroupProfit(groupLines(), p, pharmacy.GroupMedicine)

	require.Len(t, groups, 4)
	assert.Equal(t, "Paracetamol", groups[0].Name)
	assert.True(t, dec("50").Equal(groups[0].Profit))
	assert.Equal(t, "Ibuprofeno", groups[1].Name)
	assert.True(t, dec("50").Equal(groups[1].MarginPercent()))

	byKey := map[string]pharmacy.GroupTotals{}
	for _, g := range groups {
		byKey[g.Key] = g
	}
	assert.True(t, dec("6").Equal(byKey[pharmacy.KeyUnlisted].Revenue))
	assert.Equal(t, 1, byKey["3"].UnknownCostItems)
}

func TestGroupProfit_PorCategoria(t *testing.T) {
	p := pharmacy.ResolvePeriod("custom", "2024-03-01", "2024-03-10", date(2024, 3, 15))
	groups := pharmacy.GroupProfit(groupLines(), p, pharmacy.GroupCategory)

	byKey := map[string]pharmacy.GroupTotals{}
	for _, g := range groups {
		byKey[g.Key] = g
	}
	require.Len(t, byKey, 3)
	assert.Equal(t, "Tableta", byKey["1"].Name)
	assert.True(t, dec("120").Equal(byKey["1"].Revenue))
	assert.True(t, dec("60").Equal(byKey["1"].Profit))
	assert.Equal(t, 15, byKey["1"].Quantity)
	assert.True(t, dec("24").Equal(byKey["2"].Revenue))
	assert.True(t, byKey["2"].MarginPercent().IsZero())
}

func TestParseGroupBy(t *testing.T) {
	g, ok := pharmacy.ParseGroupBy("")
	assert.True(t, ok)
	assert.Equal(t, pharmacy.GroupNone, g)
	_, ok = pharmacy.ParseGroupBy("supplier")
	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock muerto y alertas de margen
// ──────────────────────────────────────────────────────────────────────────────

func TestDetectDeadStock(t *testing.T) {
	today := date(2024, 6, 30)
	withStock := func(id int64, name string, stock int) *entity.Medicine {
		m := medicine(id, name, tabletas, 10)
		m.AttachBatches([]*entity.Batch{{ID: id * 10, MRP: dec("100"), StockQuantity: stock, IsActive: true}})
		return m
	}
	nunca := withStock(1, "Nunca vendido", 20)
	viejo := withStock(2, "Venta vieja", 5)
	reciente := withStock(3, "Venta reciente", 50)
	agotado := withStock(4, "Agotado", 0)
	inactivo := withStock(5, "Inactivo", 10)
	inactivo.IsActive = false
	limite := withStock(6, "En el límite", 1)

	lastSale := map[int64]time.Time{
		2: date(2024, 3, 1),
		3: date(2024, 6, 1),
		6: date(2024, 4, 1), // exactamente hoy − 90
	}
	meds := []*entity.Medicine{nunca, viejo, reciente, agotado, inactivo, limite}

	dead := pharmacy.DetectDeadStock(meds, lastSale, today, 90)

	require.Len(t, dead, 2)
	assert.Equal(t, "Nunca vendido", dead[0].Medicine.Name)
	assert.Nil(t, dead[0].LastSaleDate)
	assert.True(t, dec("200").Equal(dead[0].StockValue))
	assert.Equal(t, "Venta vieja", dead[1].Medicine.Name)
	require.NotNil(t, dead[1].DaysSinceSale)
	assert.Equal(t, 121, *dead[1].DaysSinceSale)
}

func TestDetectMarginAlerts(t *testing.T) {
	m := medicine(1, "Paracetamol 500mg", tabletas, 10)
	b := batchOf(1, m, decPtr("50"), "100")
	sinCosto := batchOf(2, m, nil, "100")
	costoCero := batchOf(3, m, decPtr("0"), "100")
	p := pharmacy.ResolvePeriod("custom", "2024-03-01", "2024-03-31", date(2024, 4, 1))

	lines := []entity.LedgerLine{
		at(date(2024, 3, 5), listed(b, 4, "4")),
		at(date(2024, 3, 6), listed(b, 4, "6")),
		at(date(2024, 3, 6), listed(sinCosto, 4, "1")),
		at(date(2024, 3, 6), listed(costoCero, 4, "0")),
		at(date(2024, 3, 6), unlisted("Gasa", 1, "0")),
		at(date(2024, 4, 2), listed(b, 10, "1")),
	}

	alerts := pharmacy.DetectMarginAlerts(lines, p)

	require.Len(t, alerts, 1)
	assert.True(t, dec("4").Equal(alerts[0].Loss))
	assert.True(t, dec("1").Equal(alerts[0].LossPerUnit))
	assert.True(t, dec("5").Equal(alerts[0].UnitCost))
}
