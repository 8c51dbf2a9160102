package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// BatchUseCase alta, corrección y retiro de lotes.
type BatchUseCase struct {
	batches   repository.BatchRepository
	medicines repository.MedicineRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(batches repository.BatchRepository, medicines repository.MedicineRepository, log *logger.Logger) *BatchUseCase {
	return &BatchUseCase{batches: batches, medicines: medicines, log: log.Component("lotes"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *BatchUseCase) WithClock(now func() time.Time) *BatchUseCase {
	uc.now = now
	return uc
}

// Create registra un lote recibido. (medicine_id, batch_number) es único.
func (uc *BatchUseCase) Create(ctx context.Context, in dto.BatchRequest) (*dto.BatchResponse, error) {
	number := strings.TrimSpace(in.BatchNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: batch_number es obligatorio", domain.ErrInvalidInput)
	}
	if in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity no puede ser negativo", domain.ErrInvalidInput)
	}
	fields, err := validateBatchFields(in.ExpiryDate, in.PurchasePrice, in.MRP)
	if err != nil {
		return nil, err
	}
	m, err := uc.medicines.GetByID(ctx, in.MedicineID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: medicamento %d no existe", domain.ErrInvalidInput, in.MedicineID)
	}
	existing, err := uc.batches.GetByMedicineAndNumber(ctx, m.ID, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el lote %q ya existe para %s", domain.ErrDuplicate, number, m.Name)
	}

	b := &entity.Batch{
		MedicineID:    m.ID,
		BatchNumber:   number,
		ExpiryDate:    fields.expiry,
		PurchasePrice: fields.purchase,
		MRP:           fields.mrp,
		StockQuantity: in.StockQuantity,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	if err := uc.batches.Create(ctx, b); err != nil {
		return nil, err
	}
	today := uc.now()
	if b.IsExpired(today) {
		uc.log.Warn().Int64("batch_id", b.ID).Str("batch_number", number).Msg("lote registrado ya vencido")
	}
	return uc.get(ctx, b.ID)
}

// Update corrige precio y vencimiento de un lote existente.
// El medicamento y el número de lote no cambian. El stock solo se toca si la
// petición trae stock_quantity, y la corrección falla con ErrConflict si una
// venta movió el stock desde la lectura.
func (uc *BatchUseCase) Update(ctx context.Context, id int64, in dto.BatchUpdateRequest) (*dto.BatchResponse, error) {
	b, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if in.StockQuantity != nil && *in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity no puede ser negativo", domain.ErrInvalidInput)
	}
	fields, err := validateBatchFields(in.ExpiryDate, in.PurchasePrice, in.MRP)
	if err != nil {
		return nil, err
	}
	b.ExpiryDate = fields.expiry
	b.PurchasePrice = fields.purchase
	b.MRP = fields.mrp
	if err := uc.batches.Update(ctx, b); err != nil {
		return nil, err
	}
	if in.StockQuantity != nil && *in.StockQuantity != b.StockQuantity {
		if err := uc.batches.AdjustStock(ctx, id, b.StockQuantity, *in.StockQuantity); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, fmt.Errorf("%w: el stock del lote cambió durante la corrección, vuelva a consultarlo", domain.ErrConflict)
			}
			return nil, err
		}
		uc.log.Info().
			Int64("batch_id", id).
			Int("from", b.StockQuantity).
			Int("to", *in.StockQuantity).
			Msg("corrección manual de stock")
	}
	return uc.get(ctx, id)
}

// Retire marca el lote como inactivo; deja de contar en stock y no se ofrece en búsquedas.
func (uc *BatchUseCase) Retire(ctx context.Context, id int64) error {
	b, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrNotFound
	}
	return uc.batches.SetActive(ctx, id, false)
}

func (uc *BatchUseCase) get(ctx context.Context, id int64) (*dto.BatchResponse, error) {
	b, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	r := dto.BatchFromEntity(b, uc.now())
	return &r, nil
}

type batchFields struct {
	expiry   time.Time
	purchase *decimal.Decimal
	mrp      decimal.Decimal
}

// validateBatchFields valida y normaliza los importes a 2 decimales, la escala de las columnas.
func validateBatchFields(expiryDate string, purchase *decimal.Decimal, mrp decimal.Decimal) (batchFields, error) {
	expiry, err := time.Parse(dto.DateLayout, strings.TrimSpace(expiryDate))
	if err != nil {
		return batchFields{}, fmt.Errorf("%w: expiry_date debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
	}
	mrp = mrp.Round(2)
	if !mrp.GreaterThan(decimal.Zero) {
		return batchFields{}, fmt.Errorf("%w: mrp debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if purchase != nil {
		if purchase.IsNegative() {
			return batchFields{}, fmt.Errorf("%w: purchase_price no puede ser negativo", domain.ErrInvalidInput)
		}
		rounded := purchase.Round(2)
		purchase = &rounded
	}
	return batchFields{expiry: expiry, purchase: purchase, mrp: mrp}, nil
}
