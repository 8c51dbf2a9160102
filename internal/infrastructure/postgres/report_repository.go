package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes. Las agregaciones de rentabilidad
// se hacen en Go sobre LedgerLines para compartir la misma definición de costo.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// LedgerLines líneas vendidas en [from, to] por día calendario.
func (r *ReportRepo) LedgerLines(ctx context.Context, from, to time.Time) ([]entity.LedgerLine, error) {
	query := `SELECT ` + itemColumns + `, s.sale_date
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id ` + itemJoins + `
		WHERE s.sale_date >= $1::date AND s.sale_date < $2::date + 1
		ORDER BY s.sale_date, si.id`
	rows, err := r.q.Query(ctx, query, entity.DateOf(from), entity.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("ledger lines: %w", err)
	}
	defer rows.Close()
	var out []entity.LedgerLine
	for rows.Next() {
		var saleDate time.Time
		it, err := scanItem(rows, &saleDate)
		if err != nil {
			return nil, err
		}
		out = append(out, entity.LedgerLine{SaleDate: saleDate, Item: it})
	}
	return out, rows.Err()
}

// LastSaleByMedicine fecha de la última venta de cada medicamento con ventas listadas.
func (r *ReportRepo) LastSaleByMedicine(ctx context.Context) (map[int64]time.Time, error) {
	query := `
		SELECT b.medicine_id, MAX(s.sale_date)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN batches b ON b.id = si.batch_id
		GROUP BY b.medicine_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("last sale by medicine: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]time.Time)
	for rows.Next() {
		var id int64
		var last time.Time
		if err := rows.Scan(&id, &last); err != nil {
			return nil, err
		}
		out[id] = last
	}
	return out, rows.Err()
}

// DailySales ventas agrupadas por día calendario; los días sin ventas no aparecen.
func (r *ReportRepo) DailySales(ctx context.Context, from, to time.Time) ([]repository.DailySalesResult, error) {
	query := `
		SELECT s.sale_date::date AS day,
			COUNT(*)::int,
			COALESCE(SUM(q.units), 0)::int,
			COALESCE(SUM(s.total_amount), 0)
		FROM sales s
		LEFT JOIN (
			SELECT sale_id, SUM(quantity) AS units FROM sale_items GROUP BY sale_id
		) q ON q.sale_id = s.id
		WHERE s.sale_date >= $1::date AND s.sale_date < $2::date + 1
		GROUP BY day
		ORDER BY day`
	rows, err := r.q.Query(ctx, query, entity.DateOf(from), entity.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	defer rows.Close()
	var out []repository.DailySalesResult
	for rows.Next() {
		d := repository.DailySalesResult{Amount: decimal.Zero}
		if err := rows.Scan(&d.Date, &d.SaleCount, &d.Items, &d.Amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
