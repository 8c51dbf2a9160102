package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de empaque admitidos.
const (
	PackingStrip   = "Strip"
	PackingBottle  = "Bottle"
	PackingVial    = "Vial"
	PackingAmpoule = "Ampoule"
	PackingTube    = "Tube"
	PackingBox     = "Box"
)

// PackingTypes lista los empaques válidos en el orden en que se ofrecen al usuario.
var PackingTypes = []string{PackingStrip, PackingBottle, PackingVial, PackingAmpoule, PackingTube, PackingBox}

// IsValidPackingType indica si s es un tipo de empaque conocido.
func IsValidPackingType(s string) bool {
	for _, p := range PackingTypes {
		if p == s {
			return true
		}
	}
	return false
}

// Medicine representa un medicamento del catálogo. El stock vive en sus lotes (Batch);
// las cantidades se expresan en unidades base (tabletas, ml, ...).
type Medicine struct {
	ID            int64
	Name          string
	CategoryID    int64
	PackingType   string
	UnitsPerPack  int // unidades base por empaque vendible (ej. 10 tabletas por tira)
	Manufacturer  string
	GenericName   string
	MinStockLevel int // umbral de alerta, en unidades base
	IsActive      bool
	CreatedAt     time.Time

	// Cargados por los repositorios cuando aplica.
	Category *Category
	Batches  []*Batch
}

// TotalStock suma el stock de los lotes activos.
func (m *Medicine) TotalStock() int {
	total := 0
	for _, b := range m.Batches {
		if b.IsActive {
			total += b.StockQuantity
		}
	}
	return total
}

// IsLowStock indica total_stock <= min_stock_level.
func (m *Medicine) IsLowStock() bool {
	return m.TotalStock() <= m.MinStockLevel
}

// IsOutOfStock indica total_stock == 0.
func (m *Medicine) IsOutOfStock() bool {
	return m.TotalStock() == 0
}

// StockValue suma stock × precio unitario de los lotes activos con existencias.
func (m *Medicine) StockValue() decimal.Decimal {
	total := decimal.Zero
	for _, b := range m.Batches {
		if b.IsActive && b.StockQuantity > 0 {
			total = total.Add(b.StockValue())
		}
	}
	return total
}

// CategoryName devuelve el nombre de la categoría cargada o "".
func (m *Medicine) CategoryName() string {
	if m.Category == nil {
		return ""
	}
	return m.Category.Name
}

// AttachBatches asigna los lotes al medicamento y enlaza cada lote con él.
func (m *Medicine) AttachBatches(batches []*Batch) {
	m.Batches = batches
	for _, b := range batches {
		b.Medicine = m
	}
}
