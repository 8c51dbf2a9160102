package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `s.id, s.reference, s.sale_date, s.total_amount, s.customer_name, s.customer_phone`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	if err := row.Scan(&s.ID, &s.Reference, &s.SaleDate, &s.TotalAmount, &s.CustomerName, &s.CustomerPhone); err != nil {
		return nil, err
	}
	return &s, nil
}

// itemColumns línea de venta con lote, medicamento y categoría opcionales (LEFT JOIN).
const itemColumns = `
	si.id, si.sale_id, si.batch_id, si.item_name, si.quantity, si.price_at_sale,
	b.batch_number, b.expiry_date, b.purchase_price, b.mrp, b.stock_quantity, b.is_active, b.created_at,
	m.id, m.name, m.category_id, m.packing_type, m.units_per_pack, m.min_stock_level, m.is_active,
	c.name`

const itemJoins = `
	LEFT JOIN batches b ON b.id = si.batch_id
	LEFT JOIN medicines m ON m.id = b.medicine_id
	LEFT JOIN categories c ON c.id = m.category_id`

// scanItem lee una fila de itemColumns; extra recibe columnas adicionales al final.
func scanItem(row pgx.Row, extra ...any) (*entity.SaleItem, error) {
	var it entity.SaleItem
	var (
		batchNumber                    *string
		expiry, batchCreated           *time.Time
		purchase                       decimal.NullDecimal
		mrp                            decimal.NullDecimal
		stock, upp, minStock           *int
		batchActive, medActive         *bool
		medID, categoryID              *int64
		medName, packing, categoryName *string
	)
	dest := []any{
		&it.ID, &it.SaleID, &it.BatchID, &it.ItemName, &it.Quantity, &it.PriceAtSale,
		&batchNumber, &expiry, &purchase, &mrp, &stock, &batchActive, &batchCreated,
		&medID, &medName, &categoryID, &packing, &upp, &minStock, &medActive,
		&categoryName,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if it.BatchID == nil || batchNumber == nil {
		return &it, nil
	}

	b := &entity.Batch{
		ID:            *it.BatchID,
		BatchNumber:   *batchNumber,
		ExpiryDate:    *expiry,
		PurchasePrice: fromNullDecimal(purchase),
		MRP:           mrp.Decimal,
		StockQuantity: *stock,
		IsActive:      *batchActive,
		CreatedAt:     *batchCreated,
	}
	if medID != nil {
		m := &entity.Medicine{
			ID:            *medID,
			Name:          *medName,
			CategoryID:    *categoryID,
			PackingType:   *packing,
			UnitsPerPack:  *upp,
			MinStockLevel: *minStock,
			IsActive:      *medActive,
		}
		if categoryName != nil {
			m.Category = &entity.Category{ID: *categoryID, Name: *categoryName}
		}
		b.MedicineID = m.ID
		b.Medicine = m
	}
	it.Batch = b
	return &it, nil
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (reference, sale_date, total_amount, customer_name, customer_phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, s.Reference, s.SaleDate, s.TotalAmount, s.CustomerName, s.CustomerPhone).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (sale_id, batch_id, item_name, quantity, price_at_sale)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, it.SaleID, it.BatchID, it.ItemName, it.Quantity, it.PriceAtSale).Scan(&it.ID)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrConflict
		case isCheckViolation(err):
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales s WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM sale_items si `+itemJoins+` WHERE si.sale_id = $1 ORDER BY si.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sale, nil
}

// List cabeceras por fecha descendente con sus líneas; las líneas de la página se traen con ANY.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	where := ""
	args := []any{}
	if f.Date != nil {
		args = append(args, entity.DateOf(*f.Date))
		where = ` WHERE s.sale_date >= $1::date AND s.sale_date < $1::date + 1`
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)::int FROM sales s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	query := `SELECT ` + saleColumns + ` FROM sales s` + where + ` ORDER BY s.sale_date DESC, s.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	out := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SaleRepo) attachItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(sales))
	byID := make(map[int64]*entity.Sale, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM sale_items si `+itemJoins+` WHERE si.sale_id = ANY($1) ORDER BY si.id`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		if s := byID[it.SaleID]; s != nil {
			s.Items = append(s.Items, it)
		}
	}
	return rows.Err()
}
