package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// MedicineFilter filtros de listado. Los filtros sobre stock derivado se aplican
// en la capa de aplicación después de cargar los lotes.
type MedicineFilter struct {
	CategoryID int64  // 0 = todas
	Search     string // coincidencia parcial en nombre o genérico
	ActiveOnly bool
	Limit      int // 0 = sin límite
}

// MedicineRepository define el puerto de persistencia para Medicine (DIP).
// Las lecturas devuelven el medicamento con Category y Batches cargados.
type MedicineRepository interface {
	Create(ctx context.Context, medicine *entity.Medicine) error
	GetByID(ctx context.Context, id int64) (*entity.Medicine, error)
	// FindActiveByName búsqueda exacta sin distinguir mayúsculas entre medicamentos activos.
	FindActiveByName(ctx context.Context, name string) (*entity.Medicine, error)
	Update(ctx context.Context, medicine *entity.Medicine) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, filter MedicineFilter) ([]*entity.Medicine, error)
}
