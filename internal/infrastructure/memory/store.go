// Package memory implementa los repositorios sobre mapas en memoria.
// Se usa en tests y en modo demo (STORAGE_DRIVER=memory); los datos se pierden al reiniciar.
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
// Las entidades se guardan por valor y se devuelven copias hidratadas.
type Store struct {
	mu         sync.RWMutex
	categories map[int64]entity.Category
	medicines  map[int64]entity.Medicine
	batches    map[int64]entity.Batch
	sales      map[int64]entity.Sale
	items      map[int64]entity.SaleItem
	seq        map[string]int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		categories: make(map[int64]entity.Category),
		medicines:  make(map[int64]entity.Medicine),
		batches:    make(map[int64]entity.Batch),
		sales:      make(map[int64]entity.Sale),
		items:      make(map[int64]entity.SaleItem),
		seq:        make(map[string]int64),
	}
}

// Repositories construye los repositorios que comparten este almacén.
func (s *Store) Repositories() (*CategoryRepo, *MedicineRepo, *BatchRepo, *SaleRepo, *ReportRepo) {
	return &CategoryRepo{s: s}, &MedicineRepo{s: s}, &BatchRepo{s: s}, &SaleRepo{s: s}, &ReportRepo{s: s}
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// read y write toman el lock salvo que la operación ya corra dentro de RunSale.
func (s *Store) read(inTx bool, fn func()) {
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

func (s *Store) write(inTx bool, fn func()) {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

type snapshot struct {
	categories map[int64]entity.Category
	medicines  map[int64]entity.Medicine
	batches    map[int64]entity.Batch
	sales      map[int64]entity.Sale
	items      map[int64]entity.SaleItem
	seq        map[string]int64
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		categories: cloneMap(s.categories),
		medicines:  cloneMap(s.medicines),
		batches:    cloneMap(s.batches),
		sales:      cloneMap(s.sales),
		items:      cloneMap(s.items),
		seq:        cloneMap(s.seq),
	}
}

func (s *Store) restore(snap snapshot) {
	s.categories = snap.categories
	s.medicines = snap.medicines
	s.batches = snap.batches
	s.sales = snap.sales
	s.items = snap.items
	s.seq = snap.seq
}

// ── hidratación (requiere lock tomado) ────────────────────────────────────────

func (s *Store) category(id int64) *entity.Category {
	c, ok := s.categories[id]
	if !ok {
		return nil
	}
	return &c
}

func (s *Store) medicine(id int64, withBatches bool) *entity.Medicine {
	m, ok := s.medicines[id]
	if !ok {
		return nil
	}
	m.Category = s.category(m.CategoryID)
	m.Batches = nil
	if withBatches {
		m.AttachBatches(s.batchesOf(id))
	}
	return &m
}

// batchesOf lotes del medicamento (sin Medicine) por vencimiento ascendente.
func (s *Store) batchesOf(medicineID int64) []*entity.Batch {
	var out []*entity.Batch
	for _, b := range s.batches {
		if b.MedicineID == medicineID {
			b := b
			b.Medicine = nil
			out = append(out, &b)
		}
	}
	sortByExpiry(out)
	return out
}

func (s *Store) batch(id int64) *entity.Batch {
	b, ok := s.batches[id]
	if !ok {
		return nil
	}
	b.Medicine = s.medicine(b.MedicineID, false)
	return &b
}

func (s *Store) sale(id int64) *entity.Sale {
	sale, ok := s.sales[id]
	if !ok {
		return nil
	}
	sale.Items = s.itemsOf(id)
	return &sale
}

func (s *Store) itemsOf(saleID int64) []*entity.SaleItem {
	var out []*entity.SaleItem
	for _, it := range s.items {
		if it.SaleID != saleID {
			continue
		}
		it := it
		it.Batch = nil
		if it.BatchID != nil {
			it.Batch = s.batch(*it.BatchID)
		}
		out = append(out, &it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortByExpiry(batches []*entity.Batch) {
	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
		}
		return batches[i].ID < batches[j].ID
	})
}
