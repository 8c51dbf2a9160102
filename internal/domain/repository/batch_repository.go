package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para Batch (DIP).
// Usable con pool o dentro de una transacción.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id int64) (*entity.Batch, error)
	// GetForUpdate obtiene el lote con su medicamento y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Batch, error)
	GetByMedicineAndNumber(ctx context.Context, medicineID int64, batchNumber string) (*entity.Batch, error)
	// Update escribe vencimiento y precios; no toca el stock.
	Update(ctx context.Context, batch *entity.Batch) error
	// AdjustStock fija el stock a qty solo si sigue valiendo expected; si no, ErrConflict.
	AdjustStock(ctx context.Context, id int64, expected, qty int) error
	SetActive(ctx context.Context, id int64, active bool) error
	// DecrementStock resta qty si hay existencias suficientes; devuelve ErrInsufficientStock si no.
	DecrementStock(ctx context.Context, id int64, qty int) error
	ListByMedicine(ctx context.Context, medicineID int64) ([]*entity.Batch, error)
	// ListActiveInStock lotes activos con stock > 0 (con Medicine cargado), ordenados por vencimiento.
	ListActiveInStock(ctx context.Context) ([]*entity.Batch, error)
}
