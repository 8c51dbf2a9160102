package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

var today = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Medicine: campos derivados de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestMedicine_StockDerivadoIgnoraLotesInactivos(t *testing.T) {
	m := &entity.Medicine{MinStockLevel: 10, UnitsPerPack: 10}
	m.AttachBatches([]*entity.Batch{
		{StockQuantity: 7, IsActive: true},
		{StockQuantity: 50, IsActive: false},
		{StockQuantity: 4, IsActive: true},
	})

	assert.Equal(t, 11, m.TotalStock())
	assert.False(t, m.IsLowStock())
	assert.False(t, m.IsOutOfStock())
}

func TestMedicine_BajoStockEnElUmbralExacto(t *testing.T) {
	cases := []struct {
		stock   int
		low     bool
		outOfIt bool
	}{
		{stock: 0, low: true, outOfIt: true},
		{stock: 9, low: true, outOfIt: false},
		{stock: 10, low: true, outOfIt: false},
		{stock: 11, low: false, outOfIt: false},
	}
	for _, c := range cases {
		m := &entity.Medicine{MinStockLevel: 10}
		m.AttachBatches([]*entity.Batch{{StockQuantity: c.stock, IsActive: true}})
		assert.Equal(t, c.low, m.IsLowStock(), "stock=%d", c.stock)
		assert.Equal(t, c.outOfIt, m.IsOutOfStock(), "stock=%d", c.stock)
	}
}

func TestMedicine_SinLotesEstaAgotado(t *testing.T) {
	m := &entity.Medicine{MinStockLevel: 0}
	assert.True(t, m.IsOutOfStock())
	assert.True(t, m.IsLowStock())
}

func TestMedicine_ValorDeStock(t *testing.T) {
	m := &entity.Medicine{UnitsPerPack: 10}
	m.AttachBatches([]*entity.Batch{
		{StockQuantity: 5, MRP: dec("100"), IsActive: true},
		{StockQuantity: 3, MRP: dec("50"), IsActive: true},
		{StockQuantity: 9, MRP: dec("100"), IsActive: false},
	})
	assert.True(t, dec("65").Equal(m.StockValue()), "5×10 + 3×5")
}

func TestIsValidPackingType(t *testing.T) {
	assert.True(t, entity.IsValidPackingType("Strip"))
	assert.True(t, entity.IsValidPackingType("Ampoule"))
	assert.False(t, entity.IsValidPackingType("strip"))
	assert.False(t, entity.IsValidPackingType(""))
}

// ──────────────────────────────────────────────────────────────────────────────
// Batch: vencimiento y precios
// ──────────────────────────────────────────────────────────────────────────────

func TestBatch_Vencimiento(t *testing.T) {
	cases := []struct {
		name     string
		expiry   time.Time
		expired  bool
		soon     bool
		daysLeft int
	}{
		{"vencido ayer", day(2024, 3, 14), true, false, -1},
		{"vence hoy", day(2024, 3, 15), false, false, 0},
		{"vence mañana", day(2024, 3, 16), false, true, 1},
		{"vence en 30 días", day(2024, 4, 14), false, true, 30},
		{"vence en 31 días", day(2024, 4, 15), false, false, 31},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &entity.Batch{ExpiryDate: c.expiry}
			assert.Equal(t, c.expired, b.IsExpired(today))
			assert.Equal(t, c.soon, b.IsExpiringSoon(today))
			assert.Equal(t, c.daysLeft, b.DaysUntilExpiry(today))
		})
	}
}

func TestBatch_PrecioUnitario(t *testing.T) {
	b := &entity.Batch{MRP: dec("100"), Medicine: &entity.Medicine{UnitsPerPack: 10}}
	assert.True(t, dec("10").Equal(b.UnitPrice()))

	// Sin medicamento o con units_per_pack inválido se usa el MRP completo.
	orphan := &entity.Batch{MRP: dec("100")}
	assert.True(t, dec("100").Equal(orphan.UnitPrice()))
	broken := &entity.Batch{MRP: dec("100"), Medicine: &entity.Medicine{UnitsPerPack: 0}}
	assert.True(t, dec("100").Equal(broken.UnitPrice()))
}

func TestBatch_CostoUnitarioDesconocido(t *testing.T) {
	price := dec("50")
	b := &entity.Batch{PurchasePrice: &price, Medicine: &entity.Medicine{UnitsPerPack: 10}}
	cost, ok := b.UnitCost()
	assert.True(t, ok)
	assert.True(t, dec("5").Equal(cost))

	_, ok = (&entity.Batch{Medicine: &entity.Medicine{UnitsPerPack: 10}}).UnitCost()
	assert.False(t, ok, "sin precio de compra el costo es desconocido")

	_, ok = (&entity.Batch{PurchasePrice: &price, Medicine: &entity.Medicine{UnitsPerPack: 0}}).UnitCost()
	assert.False(t, ok, "units_per_pack <= 0 hace el costo desconocido")
}

// ──────────────────────────────────────────────────────────────────────────────
// SaleItem
// ──────────────────────────────────────────────────────────────────────────────

func TestSaleItem_SubtotalYListado(t *testing.T) {
	id := int64(7)
	listed := &entity.SaleItem{BatchID: &id, Quantity: 5, PriceAtSale: dec("12")}
	unlisted := &entity.SaleItem{ItemName: "Curita", Quantity: 3, PriceAtSale: dec("1.5")}

	assert.True(t, listed.IsListed())
	assert.False(t, unlisted.IsListed())
	assert.True(t, dec("60").Equal(listed.Subtotal()))
	assert.True(t, dec("4.5").Equal(unlisted.Subtotal()))
	assert.Equal(t, "Curita", unlisted.DisplayName())

	s := &entity.Sale{Items: []*entity.SaleItem{listed, unlisted}}
	assert.Equal(t, 8, s.ItemCount())
}
