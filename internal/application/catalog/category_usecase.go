package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría. El nombre es obligatorio y único.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la categoría es obligatorio", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe la categoría %q", domain.ErrDuplicate, name)
	}
	c := &entity.Category{Name: name, Description: strings.TrimSpace(in.Description), CreatedAt: time.Now()}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	r := dto.CategoryFromEntity(c, 0)
	return &r, nil
}

// Update modifica nombre y descripción.
func (uc *CategoryUseCase) Update(ctx context.Context, id int64, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la categoría es obligatorio", domain.ErrInvalidInput)
	}
	if name != c.Name {
		other, err := uc.repo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, fmt.Errorf("%w: ya existe la categoría %q", domain.ErrDuplicate, name)
		}
	}
	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	count, err := uc.repo.CountMedicines(ctx, id)
	if err != nil {
		return nil, err
	}
	r := dto.CategoryFromEntity(c, count)
	return &r, nil
}

// Delete elimina la categoría; se rechaza si tiene medicamentos asociados.
func (uc *CategoryUseCase) Delete(ctx context.Context, id int64) error {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	count, err := uc.repo.CountMedicines(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: la categoría %q tiene %d medicamento(s)", domain.ErrConflict, c.Name, count)
	}
	return uc.repo.Delete(ctx, id)
}

// List devuelve todas las categorías con su conteo de medicamentos.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		count, err := uc.repo.CountMedicines(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.CategoryFromEntity(c, count))
	}
	return out, nil
}
