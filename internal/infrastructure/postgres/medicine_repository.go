package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

// MedicineRepo implementación de MedicineRepository sobre PostgreSQL.
// Las lecturas cargan categoría y lotes; los lotes se traen en una segunda consulta con ANY.
type MedicineRepo struct {
	q Querier
}

// NewMedicineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMedicineRepository(q Querier) *MedicineRepo {
	return &MedicineRepo{q: q}
}

const medicineColumns = `
	m.id, m.name, m.category_id, m.packing_type, m.units_per_pack, m.manufacturer,
	m.generic_name, m.min_stock_level, m.is_active, m.created_at,
	c.id, c.name, c.description, c.created_at`

func scanMedicine(row pgx.Row) (*entity.Medicine, error) {
	var m entity.Medicine
	var c entity.Category
	if err := row.Scan(
		&m.ID, &m.Name, &m.CategoryID, &m.PackingType, &m.UnitsPerPack, &m.Manufacturer,
		&m.GenericName, &m.MinStockLevel, &m.IsActive, &m.CreatedAt,
		&c.ID, &c.Name, &c.Description, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Category = &c
	return &m, nil
}

func (r *MedicineRepo) Create(ctx context.Context, m *entity.Medicine) error {
	query := `
		INSERT INTO medicines (name, category_id, packing_type, units_per_pack, manufacturer, generic_name, min_stock_level, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.Name, m.CategoryID, m.PackingType, m.UnitsPerPack, m.Manufacturer,
		m.GenericName, m.MinStockLevel, m.IsActive, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (r *MedicineRepo) GetByID(ctx context.Context, id int64) (*entity.Medicine, error) {
	return r.getOne(ctx, `WHERE m.id = $1`, id)
}

func (r *MedicineRepo) FindActiveByName(ctx context.Context, name string) (*entity.Medicine, error) {
	return r.getOne(ctx, `WHERE m.is_active AND lower(m.name) = lower($1) ORDER BY m.id LIMIT 1`, name)
}

func (r *MedicineRepo) getOne(ctx context.Context, where string, arg any) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines m JOIN categories c ON c.id = m.category_id ` + where
	m, err := scanMedicine(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	if err := r.attachBatches(ctx, []*entity.Medicine{m}); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MedicineRepo) Update(ctx context.Context, m *entity.Medicine) error {
	query := `
		UPDATE medicines SET name = $2, category_id = $3, packing_type = $4, units_per_pack = $5,
			manufacturer = $6, generic_name = $7, min_stock_level = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.CategoryID, m.PackingType, m.UnitsPerPack, m.Manufacturer, m.GenericName, m.MinStockLevel,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update medicine: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MedicineRepo) SetActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE medicines SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set medicine active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MedicineRepo) List(ctx context.Context, f repository.MedicineFilter) ([]*entity.Medicine, error) {
	var (
		conds []string
		args  []any
	)
	if f.ActiveOnly {
		conds = append(conds, "m.is_active")
	}
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("m.category_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, containsPattern(s))
		conds = append(conds, fmt.Sprintf(`(m.name ILIKE $%d ESCAPE '\' OR m.generic_name ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}

	query := `SELECT ` + medicineColumns + ` FROM medicines m JOIN categories c ON c.id = m.category_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY m.name, m.id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()
	var out []*entity.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachBatches(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachBatches carga los lotes de todos los medicamentos en una sola consulta.
func (r *MedicineRepo) attachBatches(ctx context.Context, meds []*entity.Medicine) error {
	if len(meds) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(meds))
	byID := make(map[int64]*entity.Medicine, len(meds))
	for _, m := range meds {
		ids = append(ids, m.ID)
		byID[m.ID] = m
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+batchColumns+` FROM batches b WHERE b.medicine_id = ANY($1) ORDER BY b.expiry_date, b.id`, ids)
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	grouped := make(map[int64][]*entity.Batch, len(meds))
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return err
		}
		grouped[b.MedicineID] = append(grouped[b.MedicineID], b)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for id, m := range byID {
		m.AttachBatches(grouped[id])
	}
	return nil
}
