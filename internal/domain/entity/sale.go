package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Longitudes máximas de los campos de texto libre de una venta.
const (
	MaxItemNameLen      = 100
	MaxCustomerNameLen  = 100
	MaxCustomerPhoneLen = 20
)

// Sale cabecera de una venta. TotalAmount se calcula y guarda al confirmar;
// nunca se recalcula desde los precios actuales del catálogo.
type Sale struct {
	ID            int64
	Reference     string // código público del comprobante (UUID)
	SaleDate      time.Time
	TotalAmount   decimal.Decimal
	CustomerName  string
	CustomerPhone string
	Items         []*SaleItem
}

// ItemCount suma las cantidades vendidas.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// SaleItem línea de venta. Listada (BatchID != nil) o no listada (ItemName libre).
type SaleItem struct {
	ID          int64
	SaleID      int64
	BatchID     *int64
	ItemName    string
	Quantity    int
	PriceAtSale decimal.Decimal

	// Batch (con su Medicine) se carga en lecturas; nil para no listados.
	Batch *Batch
}

// IsListed indica si la línea está ligada a un lote del inventario.
func (i *SaleItem) IsListed() bool { return i.BatchID != nil }

// Subtotal cantidad × precio de venta.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DisplayName nombre para mostrar: el del medicamento si es listado, si no el texto libre.
func (i *SaleItem) DisplayName() string {
	if i.Batch != nil && i.Batch.Medicine != nil {
		return i.Batch.Medicine.Name
	}
	return i.ItemName
}

// LedgerLine línea vendida junto con la fecha de su venta; insumo de los reportes.
type LedgerLine struct {
	SaleDate time.Time
	Item     *SaleItem
}
