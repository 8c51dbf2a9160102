package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.MedicineRepository = (*MedicineRepo)(nil)
	_ repository.BatchRepository    = (*BatchRepo)(nil)
)

// ── Categorías ────────────────────────────────────────────────────────────────

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	var err error
	r.s.write(false, func() {
		for _, existing := range r.s.categories {
			if existing.Name == c.Name {
				err = domain.ErrDuplicate
				return
			}
		}
		c.ID = r.s.nextID("categories")
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		r.s.categories[c.ID] = *c
	})
	return err
}

func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	var c *entity.Category
	r.s.read(false, func() { c = r.s.category(id) })
	return c, nil
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var c *entity.Category
	r.s.read(false, func() {
		for id, existing := range r.s.categories {
			if existing.Name == name {
				c = r.s.category(id)
				return
			}
		}
	})
	return c, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	var err error
	r.s.write(false, func() {
		current, ok := r.s.categories[c.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		for id, existing := range r.s.categories {
			if id != c.ID && existing.Name == c.Name {
				err = domain.ErrDuplicate
				return
			}
		}
		current.Name = c.Name
		current.Description = c.Description
		r.s.categories[c.ID] = current
	})
	return err
}

func (r *CategoryRepo) Delete(_ context.Context, id int64) error {
	var err error
	r.s.write(false, func() {
		if _, ok := r.s.categories[id]; !ok {
			err = domain.ErrNotFound
			return
		}
		for _, m := range r.s.medicines {
			if m.CategoryID == id {
				err = domain.ErrConflict
				return
			}
		}
		delete(r.s.categories, id)
	})
	return err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	r.s.read(false, func() {
		for id := range r.s.categories {
			out = append(out, r.s.category(id))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) CountMedicines(_ context.Context, categoryID int64) (int, error) {
	n := 0
	r.s.read(false, func() {
		for _, m := range r.s.medicines {
			if m.CategoryID == categoryID {
				n++
			}
		}
	})
	return n, nil
}

// ── Medicamentos ──────────────────────────────────────────────────────────────

// MedicineRepo implementación en memoria de MedicineRepository.
type MedicineRepo struct{ s *Store }

func (r *MedicineRepo) Create(_ context.Context, m *entity.Medicine) error {
	var err error
	r.s.write(false, func() {
		if _, ok := r.s.categories[m.CategoryID]; !ok {
			err = domain.ErrConflict
			return
		}
		m.ID = r.s.nextID("medicines")
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		stored := *m
		stored.Category, stored.Batches = nil, nil
		r.s.medicines[m.ID] = stored
	})
	return err
}

func (r *MedicineRepo) GetByID(_ context.Context, id int64) (*entity.Medicine, error) {
	var m *entity.Medicine
	r.s.read(false, func() { m = r.s.medicine(id, true) })
	return m, nil
}

func (r *MedicineRepo) FindActiveByName(_ context.Context, name string) (*entity.Medicine, error) {
	var m *entity.Medicine
	r.s.read(false, func() {
		for id, existing := range r.s.medicines {
			if existing.IsActive && strings.EqualFold(existing.Name, name) {
				m = r.s.medicine(id, true)
				return
			}
		}
	})
	return m, nil
}

func (r *MedicineRepo) Update(_ context.Context, m *entity.Medicine) error {
	var err error
	r.s.write(false, func() {
		current, ok := r.s.medicines[m.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if _, ok := r.s.categories[m.CategoryID]; !ok {
			err = domain.ErrConflict
			return
		}
		current.Name = m.Name
		current.CategoryID = m.CategoryID
		current.PackingType = m.PackingType
		current.UnitsPerPack = m.UnitsPerPack
		current.Manufacturer = m.Manufacturer
		current.GenericName = m.GenericName
		current.MinStockLevel = m.MinStockLevel
		r.s.medicines[m.ID] = current
	})
	return err
}

func (r *MedicineRepo) SetActive(_ context.Context, id int64, active bool) error {
	var err error
	r.s.write(false, func() {
		m, ok := r.s.medicines[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		m.IsActive = active
		r.s.medicines[id] = m
	})
	return err
}

func (r *MedicineRepo) List(_ context.Context, f repository.MedicineFilter) ([]*entity.Medicine, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Medicine
	r.s.read(false, func() {
		for id, m := range r.s.medicines {
			if f.ActiveOnly && !m.IsActive {
				continue
			}
			if f.CategoryID != 0 && m.CategoryID != f.CategoryID {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(m.Name), search) &&
				!strings.Contains(strings.ToLower(m.GenericName), search) {
				continue
			}
			out = append(out, r.s.medicine(id, true))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

// BatchRepo implementación en memoria de BatchRepository. Dentro de RunSale opera sin lock propio.
type BatchRepo struct {
	s    *Store
	inTx bool
}

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	var err error
	r.s.write(r.inTx, func() {
		if _, ok := r.s.medicines[b.MedicineID]; !ok {
			err = domain.ErrConflict
			return
		}
		for _, existing := range r.s.batches {
			if existing.MedicineID == b.MedicineID && existing.BatchNumber == b.BatchNumber {
				err = domain.ErrDuplicate
				return
			}
		}
		b.ID = r.s.nextID("batches")
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now()
		}
		r.s.batches[b.ID] = storedBatch(b)
	})
	return err
}

func storedBatch(b *entity.Batch) entity.Batch {
	stored := *b
	stored.Medicine = nil
	if b.PurchasePrice != nil {
		p := *b.PurchasePrice
		stored.PurchasePrice = &p
	}
	return stored
}

func (r *BatchRepo) GetByID(_ context.Context, id int64) (*entity.Batch, error) {
	var b *entity.Batch
	r.s.read(r.inTx, func() { b = r.s.batch(id) })
	return b, nil
}

// GetForUpdate en memoria equivale a GetByID: RunSale ya tiene el lock exclusivo.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) GetByMedicineAndNumber(_ context.Context, medicineID int64, batchNumber string) (*entity.Batch, error) {
	var b *entity.Batch
	r.s.read(r.inTx, func() {
		for id, existing := range r.s.batches {
			if existing.MedicineID == medicineID && existing.BatchNumber == batchNumber {
				b = r.s.batch(id)
				return
			}
		}
	})
	return b, nil
}

func (r *BatchRepo) Update(_ context.Context, b *entity.Batch) error {
	var err error
	r.s.write(r.inTx, func() {
		current, ok := r.s.batches[b.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		next := storedBatch(b)
		next.MedicineID = current.MedicineID
		next.BatchNumber = current.BatchNumber
		next.StockQuantity = current.StockQuantity
		next.IsActive = current.IsActive
		next.CreatedAt = current.CreatedAt
		r.s.batches[b.ID] = next
	})
	return err
}

func (r *BatchRepo) AdjustStock(_ context.Context, id int64, expected, qty int) error {
	if qty < 0 {
		return domain.ErrInvalidInput
	}
	var err error
	r.s.write(r.inTx, func() {
		b, ok := r.s.batches[id]
		switch {
		case !ok:
			err = domain.ErrNotFound
		case b.StockQuantity != expected:
			err = domain.ErrConflict
		default:
			b.StockQuantity = qty
			r.s.batches[id] = b
		}
	})
	return err
}

func (r *BatchRepo) SetActive(_ context.Context, id int64, active bool) error {
	var err error
	r.s.write(r.inTx, func() {
		b, ok := r.s.batches[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		b.IsActive = active
		r.s.batches[id] = b
	})
	return err
}

func (r *BatchRepo) DecrementStock(_ context.Context, id int64, qty int) error {
	var err error
	r.s.write(r.inTx, func() {
		b, ok := r.s.batches[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if b.StockQuantity < qty {
			err = domain.ErrInsufficientStock
			return
		}
		b.StockQuantity -= qty
		r.s.batches[id] = b
	})
	return err
}

func (r *BatchRepo) ListByMedicine(_ context.Context, medicineID int64) ([]*entity.Batch, error) {
	var out []*entity.Batch
	r.s.read(r.inTx, func() {
		m := r.s.medicine(medicineID, true)
		if m != nil {
			out = m.Batches
		}
	})
	return out, nil
}

func (r *BatchRepo) ListActiveInStock(_ context.Context) ([]*entity.Batch, error) {
	var out []*entity.Batch
	r.s.read(r.inTx, func() {
		for id, b := range r.s.batches {
			if !b.IsActive || b.StockQuantity <= 0 {
				continue
			}
			if m, ok := r.s.medicines[b.MedicineID]; !ok || !m.IsActive {
				continue
			}
			out = append(out, r.s.batch(id))
		}
	})
	sortByExpiry(out)
	return out, nil
}
