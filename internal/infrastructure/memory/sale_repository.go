package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository   = (*SaleRepo)(nil)
	_ repository.ReportRepository = (*ReportRepo)(nil)
	_ sales.TxRunner              = (*TxRunner)(nil)
)

// SaleRepo implementación en memoria de SaleRepository.
type SaleRepo struct {
	s    *Store
	inTx bool
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	var err error
	r.s.write(r.inTx, func() {
		for _, existing := range r.s.sales {
			if sale.Reference != "" && existing.Reference == sale.Reference {
				err = domain.ErrDuplicate
				return
			}
		}
		sale.ID = r.s.nextID("sales")
		stored := *sale
		stored.Items = nil
		r.s.sales[sale.ID] = stored
	})
	return err
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	var err error
	r.s.write(r.inTx, func() {
		if _, ok := r.s.sales[item.SaleID]; !ok {
			err = domain.ErrConflict
			return
		}
		if item.BatchID != nil {
			if _, ok := r.s.batches[*item.BatchID]; !ok {
				err = domain.ErrConflict
				return
			}
		}
		item.ID = r.s.nextID("sale_items")
		stored := *item
		stored.Batch = nil
		if item.BatchID != nil {
			id := *item.BatchID
			stored.BatchID = &id
		}
		r.s.items[item.ID] = stored
	})
	return err
}

func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	var sale *entity.Sale
	r.s.read(r.inTx, func() { sale = r.s.sale(id) })
	return sale, nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	var all []*entity.Sale
	r.s.read(r.inTx, func() {
		for id, s := range r.s.sales {
			if f.Date != nil && !entity.DateOf(s.SaleDate).Equal(entity.DateOf(*f.Date)) {
				continue
			}
			all = append(all, r.s.sale(id))
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].SaleDate.Equal(all[j].SaleDate) {
			return all[i].SaleDate.After(all[j].SaleDate)
		}
		return all[i].ID > all[j].ID
	})
	total := len(all)
	if f.Offset >= total {
		return []*entity.Sale{}, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

// ReportRepo implementación en memoria de ReportRepository.
type ReportRepo struct{ s *Store }

func inRange(t, from, to time.Time) bool {
	d := entity.DateOf(t)
	return !d.Before(entity.DateOf(from)) && !d.After(entity.DateOf(to))
}

func (r *ReportRepo) LedgerLines(_ context.Context, from, to time.Time) ([]entity.LedgerLine, error) {
	var out []entity.LedgerLine
	r.s.read(false, func() {
		for id, sale := range r.s.sales {
			if !inRange(sale.SaleDate, from, to) {
				continue
			}
			for _, it := range r.s.itemsOf(id) {
				out = append(out, entity.LedgerLine{SaleDate: sale.SaleDate, Item: it})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.Before(out[j].SaleDate)
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	return out, nil
}

func (r *ReportRepo) LastSaleByMedicine(_ context.Context) (map[int64]time.Time, error) {
	out := make(map[int64]time.Time)
	r.s.read(false, func() {
		for _, it := range r.s.items {
			if it.BatchID == nil {
				continue
			}
			b, ok := r.s.batches[*it.BatchID]
			if !ok {
				continue
			}
			sale := r.s.sales[it.SaleID]
			if last, ok := out[b.MedicineID]; !ok || sale.SaleDate.After(last) {
				out[b.MedicineID] = sale.SaleDate
			}
		}
	})
	return out, nil
}

func (r *ReportRepo) DailySales(_ context.Context, from, to time.Time) ([]repository.DailySalesResult, error) {
	byDay := make(map[time.Time]*repository.DailySalesResult)
	r.s.read(false, func() {
		for id, sale := range r.s.sales {
			if !inRange(sale.SaleDate, from, to) {
				continue
			}
			day := entity.DateOf(sale.SaleDate)
			d, ok := byDay[day]
			if !ok {
				d = &repository.DailySalesResult{Date: day, Amount: decimal.Zero}
				byDay[day] = d
			}
			d.SaleCount++
			d.Amount = d.Amount.Add(sale.TotalAmount)
			for _, it := range r.s.items {
				if it.SaleID == id {
					d.Items += it.Quantity
				}
			}
		}
	})
	out := make([]repository.DailySalesResult, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// TxRunner ejecuta la venta con el lock exclusivo del almacén; si fn falla
// restaura el estado previo completo.
type TxRunner struct{ s *Store }

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (t *TxRunner) RunSale(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	saleRepo repository.SaleRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(&BatchRepo{s: t.s, inTx: true}, &SaleRepo{s: t.s, inTx: true}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}
