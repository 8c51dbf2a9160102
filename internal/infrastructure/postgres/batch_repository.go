package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `
	b.id, b.medicine_id, b.batch_number, b.expiry_date, b.purchase_price, b.mrp,
	b.stock_quantity, b.is_active, b.created_at`

// batchWithMedicine lote + medicamento + categoría en una sola fila.
const batchWithMedicine = `SELECT ` + batchColumns + `, ` + medicineColumns + `
	FROM batches b
	JOIN medicines m ON m.id = b.medicine_id
	JOIN categories c ON c.id = m.category_id`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var purchase decimal.NullDecimal
	if err := row.Scan(
		&b.ID, &b.MedicineID, &b.BatchNumber, &b.ExpiryDate, &purchase, &b.MRP,
		&b.StockQuantity, &b.IsActive, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.PurchasePrice = fromNullDecimal(purchase)
	return &b, nil
}

func scanBatchWithMedicine(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var m entity.Medicine
	var c entity.Category
	var purchase decimal.NullDecimal
	if err := row.Scan(
		&b.ID, &b.MedicineID, &b.BatchNumber, &b.ExpiryDate, &purchase, &b.MRP,
		&b.StockQuantity, &b.IsActive, &b.CreatedAt,
		&m.ID, &m.Name, &m.CategoryID, &m.PackingType, &m.UnitsPerPack, &m.Manufacturer,
		&m.GenericName, &m.MinStockLevel, &m.IsActive, &m.CreatedAt,
		&c.ID, &c.Name, &c.Description, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.PurchasePrice = fromNullDecimal(purchase)
	m.Category = &c
	b.Medicine = &m
	return &b, nil
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (medicine_id, batch_number, expiry_date, purchase_price, mrp, stock_quantity, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		b.MedicineID, b.BatchNumber, entity.DateOf(b.ExpiryDate), toNullDecimal(b.PurchasePrice), b.MRP,
		b.StockQuantity, b.IsActive, b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrConflict
		case isCheckViolation(err):
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id int64) (*entity.Batch, error) {
	return r.getOne(ctx, batchWithMedicine+` WHERE b.id = $1`, id)
}

// GetForUpdate bloquea solo la fila del lote; el medicamento se lee sin lock.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Batch, error) {
	return r.getOne(ctx, batchWithMedicine+` WHERE b.id = $1 FOR UPDATE OF b`, id)
}

func (r *BatchRepo) GetByMedicineAndNumber(ctx context.Context, medicineID int64, batchNumber string) (*entity.Batch, error) {
	return r.getOne(ctx, batchWithMedicine+` WHERE b.medicine_id = $1 AND b.batch_number = $2`, medicineID, batchNumber)
}

func (r *BatchRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Batch, error) {
	b, err := scanBatchWithMedicine(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update corrige vencimiento, precios y stock. medicine_id y batch_number no cambian.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	query := `
		UPDATE batches SET expiry_date = $2, purchase_price = $3, mrp = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		b.ID, entity.DateOf(b.ExpiryDate), toNullDecimal(b.PurchasePrice), b.MRP,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update batch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) AdjustStock(ctx context.Context, id int64, expected, qty int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE batches SET stock_quantity = $3 WHERE id = $1 AND stock_quantity = $2`,
		id, expected, qty,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("adjust batch stock: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("adjust batch stock: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *BatchRepo) SetActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE batches SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set batch active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock resta qty con guarda en el WHERE: nunca deja stock negativo aunque
// el llamador no haya bloqueado la fila.
func (r *BatchRepo) DecrementStock(ctx context.Context, id int64, qty int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE batches SET stock_quantity = stock_quantity - $2 WHERE id = $1 AND stock_quantity >= $2`,
		id, qty,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInsufficientStock
}

func (r *BatchRepo) ListByMedicine(ctx context.Context, medicineID int64) ([]*entity.Batch, error) {
	return r.list(ctx, batchWithMedicine+` WHERE b.medicine_id = $1 ORDER BY b.expiry_date, b.id`, medicineID)
}

func (r *BatchRepo) ListActiveInStock(ctx context.Context) ([]*entity.Batch, error) {
	return r.list(ctx, batchWithMedicine+`
		WHERE b.is_active AND b.stock_quantity > 0 AND m.is_active
		ORDER BY b.expiry_date, b.id`)
}

func (r *BatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatchWithMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
