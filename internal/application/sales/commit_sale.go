package sales

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// UnlistedDefaultName nombre usado cuando una línea no listada llega sin descripción.
const UnlistedDefaultName = "Artículo no listado"

// CartLine línea pedida por el punto de venta. Con BatchID es listada; sin él, no listada
// y se usa ItemName. UnitPrice es el precio cobrado (puede diferir del MRP del lote).
type CartLine struct {
	BatchID   *int64
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CommitSaleInput carrito completo.
type CommitSaleInput struct {
	CustomerName  string
	CustomerPhone string
	Lines         []CartLine
}

// CommitSaleUseCase convierte un carrito en una venta confirmada descontando stock de
// los lotes de forma atómica: o se guarda todo o nada.
type CommitSaleUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewCommitSaleUseCase construye el caso de uso.
func NewCommitSaleUseCase(txRunner TxRunner, log *logger.Logger) *CommitSaleUseCase {
	return &CommitSaleUseCase{txRunner: txRunner, log: log.Component("ventas"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *CommitSaleUseCase) WithClock(now func() time.Time) *CommitSaleUseCase {
	uc.now = now
	return uc
}

// Commit valida todas las líneas, luego dentro de una transacción bloquea cada lote listado,
// verifica y descuenta su stock en el orden recibido, y persiste cabecera y líneas.
// Errores: *domain.LineError que envuelve ErrInvalidInput, ErrNotFound o ErrInsufficientStock;
// ErrConflict si la transacción no pudo completarse por concurrencia.
func (uc *CommitSaleUseCase) Commit(ctx context.Context, in CommitSaleInput) (*entity.Sale, error) {
	lines, total, err := validateCart(in.Lines)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	var created *entity.Sale
	err = uc.txRunner.RunSale(ctx, func(
		batchRepo repository.BatchRepository,
		saleRepo repository.SaleRepository,
	) error {
		sale := &entity.Sale{
			Reference:     uuid.NewString(),
			SaleDate:      now,
			TotalAmount:   total,
			CustomerName:  truncate(strings.TrimSpace(in.CustomerName), entity.MaxCustomerNameLen),
			CustomerPhone: truncate(strings.TrimSpace(in.CustomerPhone), entity.MaxCustomerPhoneLen),
			Items:         make([]*entity.SaleItem, 0, len(lines)),
		}

		for i, ln := range lines {
			item := &entity.SaleItem{Quantity: ln.Quantity, PriceAtSale: ln.UnitPrice}
			if ln.BatchID == nil {
				item.ItemName = ln.ItemName
				sale.Items = append(sale.Items, item)
				continue
			}
			batch, err := uc.allocate(ctx, batchRepo, i+1, *ln.BatchID, ln.Quantity, now)
			if err != nil {
				return err
			}
			batchID := batch.ID
			item.BatchID = &batchID
			item.Batch = batch
			sale.Items = append(sale.Items, item)
		}

		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			item.SaleID = sale.ID
			if err := saleRepo.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		created = sale
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("kind", domain.Kind(err)).Int("lines", len(lines)).Msg("venta rechazada")
		return nil, err
	}

	uc.log.Info().
		Int64("sale_id", created.ID).
		Str("reference", created.Reference).
		Str("total", created.TotalAmount.StringFixed(2)).
		Int("lines", len(created.Items)).
		Msg("venta confirmada")
	return created, nil
}

// allocate bloquea el lote, verifica existencias y descuenta qty.
func (uc *CommitSaleUseCase) allocate(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	line int,
	batchID int64,
	qty int,
	now time.Time,
) (*entity.Batch, error) {
	batch, err := batchRepo.GetForUpdate(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.NewLineError(line, domain.ErrNotFound, "lote no encontrado: %d", batchID)
	}
	if batch.StockQuantity < qty {
		return nil, insufficient(line, batch)
	}
	if !batch.IsActive || batch.IsExpired(now) {
		uc.log.Warn().
			Int64("batch_id", batch.ID).
			Str("batch_number", batch.BatchNumber).
			Bool("active", batch.IsActive).
			Time("expiry_date", batch.ExpiryDate).
			Msg("venta desde lote vencido o retirado")
	}
	if err := batchRepo.DecrementStock(ctx, batch.ID, qty); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, insufficient(line, batch)
		}
		return nil, err
	}
	batch.StockQuantity -= qty
	return batch, nil
}

func insufficient(line int, b *entity.Batch) error {
	name := b.MedicineName()
	if name == "" {
		name = "lote " + b.BatchNumber
	}
	return domain.NewLineError(line, domain.ErrInsufficientStock,
		"stock insuficiente para %s. Disponible: %d", name, b.StockQuantity)
}

// validateCart revisa todas las líneas antes de tocar la base de datos y normaliza
// los nombres de las no listadas. Devuelve el total de la venta.
func validateCart(in []CartLine) ([]CartLine, decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, decimal.Zero, domain.NewLineError(0, domain.ErrInvalidInput, "la venta no tiene artículos")
	}
	lines := make([]CartLine, len(in))
	total := decimal.Zero
	for i, ln := range in {
		n := i + 1
		if ln.Quantity <= 0 {
			return nil, decimal.Zero, domain.NewLineError(n, domain.ErrInvalidInput,
				"cantidad inválida: debe ser un número positivo")
		}
		if ln.UnitPrice.IsNegative() {
			return nil, decimal.Zero, domain.NewLineError(n, domain.ErrInvalidInput,
				"precio inválido: no puede ser negativo")
		}
		if ln.BatchID != nil && *ln.BatchID <= 0 {
			return nil, decimal.Zero, domain.NewLineError(n, domain.ErrInvalidInput,
				"identificador de lote inválido: %d", *ln.BatchID)
		}
		if ln.BatchID == nil {
			name := strings.TrimSpace(ln.ItemName)
			if name == "" {
				name = UnlistedDefaultName
			}
			ln.ItemName = truncate(name, entity.MaxItemNameLen)
		} else {
			ln.ItemName = ""
		}
		// price_at_sale y total_amount se guardan con 2 decimales
		ln.UnitPrice = ln.UnitPrice.Round(2)
		lines[i] = ln
		total = total.Add(ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return lines, total, nil
}

// truncate corta s a max runas.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
