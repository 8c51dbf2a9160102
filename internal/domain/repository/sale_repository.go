package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	Date   *time.Time // fecha calendario exacta, nil = todas
	Limit  int
	Offset int
}

// SaleRepository define el puerto de persistencia para Sale y SaleItem (DIP).
type SaleRepository interface {
	// Create inserta la cabecera y asigna ID.
	Create(ctx context.Context, sale *entity.Sale) error
	// CreateItem inserta una línea y asigna ID.
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID devuelve la venta con sus líneas (y lote/medicamento de las listadas).
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	// List devuelve cabeceras ordenadas por fecha descendente y el total sin paginar.
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
}
