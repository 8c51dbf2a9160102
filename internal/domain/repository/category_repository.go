package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Category, error)
	// CountMedicines cuenta medicamentos (activos o no) asociados a la categoría.
	CountMedicines(ctx context.Context, categoryID int64) (int, error)
}
