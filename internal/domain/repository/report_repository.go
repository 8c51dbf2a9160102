package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// DailySalesResult resultado crudo de ventas agrupadas por día calendario.
type DailySalesResult struct {
	Date      time.Time
	SaleCount int
	Items     int // unidades vendidas
	Amount    decimal.Decimal
}

// ReportRepository consultas de solo lectura para reportes. No modifica datos.
type ReportRepository interface {
	// LedgerLines líneas vendidas en [from, to] (día calendario, inclusivo) con lote,
	// medicamento y categoría cargados para las listadas.
	LedgerLines(ctx context.Context, from, to time.Time) ([]entity.LedgerLine, error)
	// LastSaleByMedicine fecha de la venta más reciente de cada medicamento vendido alguna vez.
	LastSaleByMedicine(ctx context.Context) (map[int64]time.Time, error)
	// DailySales ventas por día en [from, to], ordenadas por fecha ascendente; días sin ventas se omiten.
	DailySales(ctx context.Context, from, to time.Time) ([]DailySalesResult, error)
}
