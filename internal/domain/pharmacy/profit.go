package pharmacy

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Profit resultado de rentabilidad. Cuando CostKnown es false, Cost y Profit valen
// cero pero NO significan equilibrio: el costo no pudo calcularse.
type Profit struct {
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal
	CostKnown bool
}

// Add suma componente a componente. El resultado conoce su costo solo si ambos lo conocen.
func (p Profit) Add(o Profit) Profit {
	return Profit{
		Revenue:   p.Revenue.Add(o.Revenue),
		Cost:      p.Cost.Add(o.Cost),
		Profit:    p.Profit.Add(o.Profit),
		CostKnown: p.CostKnown && o.CostKnown,
	}
}

// ItemProfit calcula ingreso, costo y ganancia de una línea.
// Necesita Item.Batch.Medicine cargado para las líneas listadas.
func ItemProfit(it *entity.SaleItem) Profit {
	revenue := it.Subtotal()
	if !it.IsListed() || it.Batch == nil {
		return Profit{Revenue: revenue, Cost: decimal.Zero, Profit: decimal.Zero}
	}
	unitCost, ok := it.Batch.UnitCost()
	if !ok {
		return Profit{Revenue: revenue, Cost: decimal.Zero, Profit: decimal.Zero}
	}
	cost := unitCost.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return Profit{Revenue: revenue, Cost: cost, Profit: revenue.Sub(cost), CostKnown: true}
}

// SaleProfit suma la rentabilidad de todas las líneas de una venta.
// Una venta sin líneas tiene costo conocido igual a cero.
func SaleProfit(items []*entity.SaleItem) Profit {
	total := Profit{Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero, CostKnown: true}
	for _, it := range items {
		total = total.Add(ItemProfit(it))
	}
	return total
}

// MarginPercent profit/revenue×100 redondeado a 2 decimales; 0 si revenue <= 0.
func MarginPercent(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}

// GroupBy dimensión de agrupación de la rentabilidad.
type GroupBy string

const (
	GroupNone     GroupBy = "none"
	GroupMedicine GroupBy = "medicine"
	GroupCategory GroupBy = "category"
)

// ParseGroupBy valida la dimensión; vacío equivale a GroupNone.
func ParseGroupBy(s string) (GroupBy, bool) {
	switch GroupBy(s) {
	case "", GroupNone:
		return GroupNone, true
	case GroupMedicine, GroupCategory:
		return GroupBy(s), true
	}
	return "", false
}

// Claves especiales de grupo.
const (
	KeyTotal    = "total"
	KeyUnlisted = "unlisted"
)

// GroupTotals acumulado de un grupo.
type GroupTotals struct {
	Key              string
	Name             string
	Revenue          decimal.Decimal
	Cost             decimal.Decimal
	Profit           decimal.Decimal
	Quantity         int
	UnknownCostItems int // líneas cuyo costo no se pudo calcular
}

// MarginPercent margen del grupo.
func (g GroupTotals) MarginPercent() decimal.Decimal {
	return MarginPercent(g.Profit, g.Revenue)
}

// GroupProfit agrega las líneas vendidas dentro del periodo según la dimensión.
// Devuelve los grupos ordenados por ganancia descendente (empates por clave).
func GroupProfit(lines []entity.LedgerLine, period Period, by GroupBy) []GroupTotals {
	groups := make(map[string]*GroupTotals)
	for _, ln := range lines {
		if ln.Item == nil || !period.Contains(ln.SaleDate) {
			continue
		}
		key, name := groupKey(ln.Item, by)
		g, ok := groups[key]
		if !ok {
			g = &GroupTotals{Key: key, Name: name, Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
			groups[key] = g
		}
		p := ItemProfit(ln.Item)
		g.Revenue = g.Revenue.Add(p.Revenue)
		g.Cost = g.Cost.Add(p.Cost)
		g.Profit = g.Profit.Add(p.Profit)
		g.Quantity += ln.Item.Quantity
		if !p.CostKnown {
			g.UnknownCostItems++
		}
	}

	out := make([]GroupTotals, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Profit.Cmp(out[j].Profit); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func groupKey(it *entity.SaleItem, by GroupBy) (key, name string) {
	if by == GroupNone || by == "" {
		return KeyTotal, "Total"
	}
	if !it.IsListed() || it.Batch == nil || it.Batch.Medicine == nil {
		return KeyUnlisted, "Artículos no listados"
	}
	med := it.Batch.Medicine
	if by == GroupCategory {
		name := "Sin categoría"
		if med.Category != nil {
			name = med.Category.Name
		}
		return strconv.FormatInt(med.CategoryID, 10), name
	}
	return strconv.FormatInt(med.ID, 10), med.Name
}

// DeadStockEntry medicamento sin ventas recientes con stock inmovilizado.
type DeadStockEntry struct {
	Medicine      *entity.Medicine
	LastSaleDate  *time.Time // nil si nunca se vendió
	DaysSinceSale *int
	TotalStock    int
	StockValue    decimal.Decimal
}

// DetectDeadStock marca como stock muerto cada medicamento activo con existencias cuya
// última venta no existe o es anterior a today − thresholdDays.
// lastSale mapea medicine_id → fecha de la venta más reciente.
func DetectDeadStock(meds []*entity.Medicine, lastSale map[int64]time.Time, today time.Time, thresholdDays int) []DeadStockEntry {
	cutoff := entity.DateOf(today).AddDate(0, 0, -thresholdDays)
	var out []DeadStockEntry
	for _, m := range meds {
		if !m.IsActive {
			continue
		}
		total := m.TotalStock()
		if total <= 0 {
			continue
		}
		entry := DeadStockEntry{Medicine: m, TotalStock: total, StockValue: m.StockValue()}
		if last, ok := lastSale[m.ID]; ok {
			if !entity.DateOf(last).Before(cutoff) {
				continue
			}
			l := last
			days := entity.DaysBetween(last, today)
			entry.LastSaleDate = &l
			entry.DaysSinceSale = &days
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StockValue.GreaterThan(out[j].StockValue)
	})
	return out
}

// MarginAlert línea listada vendida por debajo de su costo.
type MarginAlert struct {
	SaleDate    time.Time
	Item        *entity.SaleItem
	UnitCost    decimal.Decimal
	LossPerUnit decimal.Decimal
	Loss        decimal.Decimal // pérdida total de la línea (−profit)
}

// DetectMarginAlerts devuelve las líneas del periodo con costo conocido > 0 y ganancia < 0,
// ordenadas por pérdida total descendente.
func DetectMarginAlerts(lines []entity.LedgerLine, period Period) []MarginAlert {
	var out []MarginAlert
	for _, ln := range lines {
		if ln.Item == nil || !ln.Item.IsListed() || !period.Contains(ln.SaleDate) {
			continue
		}
		p := ItemProfit(ln.Item)
		if !p.CostKnown || !p.Cost.IsPositive() || !p.Profit.IsNegative() {
			continue
		}
		unitCost, _ := ln.Item.Batch.UnitCost()
		out = append(out, MarginAlert{
			SaleDate:    ln.SaleDate,
			Item:        ln.Item,
			UnitCost:    unitCost,
			LossPerUnit: unitCost.Sub(ln.Item.PriceAtSale),
			Loss:        p.Profit.Neg(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Loss.GreaterThan(out[j].Loss)
	})
	return out
}
