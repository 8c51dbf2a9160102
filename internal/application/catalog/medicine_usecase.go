package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/pharmacy"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// Límites de la búsqueda rápida del punto de venta.
const (
	searchMinChars     = 2
	searchDefaultLimit = 20
	searchMaxLimit     = 50
)

// Filtros de stock del listado.
const (
	StockFilterLow = "low"
	StockFilterOut = "out"
	StockFilterOK  = "ok"
)

// MedicineUseCase casos de uso del catálogo de medicamentos.
type MedicineUseCase struct {
	medicines  repository.MedicineRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewMedicineUseCase construye el caso de uso.
func NewMedicineUseCase(medicines repository.MedicineRepository, categories repository.CategoryRepository) *MedicineUseCase {
	return &MedicineUseCase{medicines: medicines, categories: categories, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *MedicineUseCase) WithClock(now func() time.Time) *MedicineUseCase {
	uc.now = now
	return uc
}

// Create da de alta un medicamento activo.
func (uc *MedicineUseCase) Create(ctx context.Context, in dto.MedicineRequest) (*dto.MedicineResponse, error) {
	m := &entity.Medicine{IsActive: true, CreatedAt: time.Now()}
	if err := uc.apply(ctx, m, in); err != nil {
		return nil, err
	}
	if err := uc.medicines.Create(ctx, m); err != nil {
		return nil, err
	}
	return uc.Get(ctx, m.ID)
}

// Update modifica los datos del medicamento (no su stock, que vive en los lotes).
func (uc *MedicineUseCase) Update(ctx context.Context, id int64, in dto.MedicineRequest) (*dto.MedicineResponse, error) {
	m, err := uc.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.apply(ctx, m, in); err != nil {
		return nil, err
	}
	if err := uc.medicines.Update(ctx, m); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// apply valida la entrada y la copia sobre m.
func (uc *MedicineUseCase) apply(ctx context.Context, m *entity.Medicine, in dto.MedicineRequest) error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "" || utf8.RuneCountInString(name) > 200:
		return fmt.Errorf("%w: nombre obligatorio (máx. 200 caracteres)", domain.ErrInvalidInput)
	case !entity.IsValidPackingType(in.PackingType):
		return fmt.Errorf("%w: tipo de empaque %q no válido", domain.ErrInvalidInput, in.PackingType)
	case in.UnitsPerPack <= 0:
		return fmt.Errorf("%w: units_per_pack debe ser mayor que cero", domain.ErrInvalidInput)
	case in.MinStockLevel < 0:
		return fmt.Errorf("%w: min_stock_level no puede ser negativo", domain.ErrInvalidInput)
	}
	cat, err := uc.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: categoría %d no existe", domain.ErrInvalidInput, in.CategoryID)
	}
	other, err := uc.medicines.FindActiveByName(ctx, name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != m.ID {
		return fmt.Errorf("%w: ya existe un medicamento activo llamado %q", domain.ErrDuplicate, name)
	}

	m.Name = name
	m.CategoryID = cat.ID
	m.Category = cat
	m.PackingType = in.PackingType
	m.UnitsPerPack = in.UnitsPerPack
	m.Manufacturer = strings.TrimSpace(in.Manufacturer)
	m.GenericName = strings.TrimSpace(in.GenericName)
	m.MinStockLevel = in.MinStockLevel
	return nil
}

// Deactivate baja lógica: el medicamento deja de contar en stock y búsquedas
// pero sigue referenciado por las ventas históricas.
func (uc *MedicineUseCase) Deactivate(ctx context.Context, id int64) error {
	m, err := uc.medicines.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ErrNotFound
	}
	return uc.medicines.SetActive(ctx, id, false)
}

// Get devuelve el medicamento con todos sus lotes y campos derivados.
func (uc *MedicineUseCase) Get(ctx context.Context, id int64) (*dto.MedicineResponse, error) {
	m, err := uc.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	r := dto.MedicineFromEntity(m, uc.now(), true)
	return &r, nil
}

// List lista medicamentos activos con filtros. El filtro de stock se evalúa sobre los
// campos derivados después de acotar por activos/categoría/búsqueda en el repositorio.
func (uc *MedicineUseCase) List(ctx context.Context, in dto.MedicineListRequest) ([]dto.MedicineResponse, error) {
	switch in.Stock {
	case "", StockFilterLow, StockFilterOut, StockFilterOK:
	default:
		return nil, fmt.Errorf("%w: filtro de stock %q no válido", domain.ErrInvalidInput, in.Stock)
	}
	list, err := uc.medicines.List(ctx, repository.MedicineFilter{
		CategoryID: in.CategoryID,
		Search:     strings.TrimSpace(in.Search),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	filtered := list[:0]
	for _, m := range list {
		if matchesStockFilter(m, in.Stock) {
			filtered = append(filtered, m)
		}
	}
	return dto.MedicinesFromEntities(filtered, uc.now()), nil
}

func matchesStockFilter(m *entity.Medicine, filter string) bool {
	switch filter {
	case StockFilterOut:
		return m.IsOutOfStock()
	case StockFilterLow:
		return m.IsLowStock() && !m.IsOutOfStock()
	case StockFilterOK:
		return !m.IsLowStock()
	default:
		return true
	}
}

// Search búsqueda rápida para el punto de venta: mínimo 2 caracteres, límite máximo 50,
// cada resultado trae solo sus lotes disponibles en orden FEFO.
func (uc *MedicineUseCase) Search(ctx context.Context, q string, limit int) ([]dto.MedicineResponse, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < searchMinChars {
		return []dto.MedicineResponse{}, nil
	}
	if limit <= 0 {
		limit = searchDefaultLimit
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}
	list, err := uc.medicines.List(ctx, repository.MedicineFilter{Search: q, ActiveOnly: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	today := uc.now()
	out := make([]dto.MedicineResponse, 0, len(list))
	for _, m := range list {
		r := dto.MedicineFromEntity(m, today, false)
		r.Batches = dto.BatchesFromEntities(pharmacy.AvailableFEFO(m.Batches, today), today)
		out = append(out, r)
	}
	return out, nil
}

// AvailableBatches lotes vendibles hoy del medicamento (activos, con stock, no vencidos),
// ordenados por vencimiento ascendente.
func (uc *MedicineUseCase) AvailableBatches(ctx context.Context, medicineID int64) ([]dto.BatchResponse, error) {
	m, err := uc.medicines.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if !m.IsActive {
		return []dto.BatchResponse{}, nil
	}
	today := uc.now()
	return dto.BatchesFromEntities(pharmacy.AvailableFEFO(m.Batches, today), today), nil
}
