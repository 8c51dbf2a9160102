package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpiringSoonDays ventana (en días) para considerar un lote próximo a vencer.
const ExpiringSoonDays = 30

// Batch es un lote de un medicamento con su vencimiento, costo, precio y existencias.
// PurchasePrice y MRP son por empaque; StockQuantity en unidades base.
type Batch struct {
	ID            int64
	MedicineID    int64
	BatchNumber   string // único por medicamento
	ExpiryDate    time.Time
	PurchasePrice *decimal.Decimal // nil = costo desconocido
	MRP           decimal.Decimal
	StockQuantity int
	IsActive      bool
	CreatedAt     time.Time

	// Medicine se carga en joins; necesario para UnitPrice/UnitCost.
	Medicine *Medicine
}

// IsExpired indica expiry_date < today.
func (b *Batch) IsExpired(today time.Time) bool {
	return DateOf(b.ExpiryDate).Before(DateOf(today))
}

// DaysUntilExpiry días calendario hasta el vencimiento (negativo si ya venció).
func (b *Batch) DaysUntilExpiry(today time.Time) int {
	return DaysBetween(today, b.ExpiryDate)
}

// IsExpiringSoon indica 0 < días para vencer <= 30.
func (b *Batch) IsExpiringSoon(today time.Time) bool {
	d := b.DaysUntilExpiry(today)
	return d > 0 && d <= ExpiringSoonDays
}

// unitsPerPack devuelve las unidades por empaque del medicamento cargado, o 0 si no aplica.
func (b *Batch) unitsPerPack() int {
	if b.Medicine == nil || b.Medicine.UnitsPerPack <= 0 {
		return 0
	}
	return b.Medicine.UnitsPerPack
}

// UnitPrice precio por unidad base: MRP / units_per_pack.
// Si el medicamento no está cargado o units_per_pack <= 0 devuelve el MRP sin dividir.
func (b *Batch) UnitPrice() decimal.Decimal {
	upp := b.unitsPerPack()
	if upp == 0 {
		return b.MRP
	}
	return b.MRP.Div(decimal.NewFromInt(int64(upp)))
}

// UnitCost costo por unidad base. ok=false cuando el costo es desconocido
// (sin precio de compra o sin units_per_pack válido).
func (b *Batch) UnitCost() (cost decimal.Decimal, ok bool) {
	upp := b.unitsPerPack()
	if b.PurchasePrice == nil || upp == 0 {
		return decimal.Zero, false
	}
	return b.PurchasePrice.Div(decimal.NewFromInt(int64(upp))), true
}

// StockValue valor de las existencias al precio unitario de venta.
func (b *Batch) StockValue() decimal.Decimal {
	return b.UnitPrice().Mul(decimal.NewFromInt(int64(b.StockQuantity)))
}

// MedicineName nombre del medicamento cargado o "".
func (b *Batch) MedicineName() string {
	if b.Medicine == nil {
		return ""
	}
	return b.Medicine.Name
}
