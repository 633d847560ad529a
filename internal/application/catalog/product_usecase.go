package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/dto"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock no se edita aquí:
// solo lo escribe el motor de movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto activo con stock cero.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrValidation
	}
	if in.Price.IsNegative() || in.ReorderLevel < 0 || in.ReorderQty < 0 {
		return nil, domain.ErrValidation
	}
	existing, err := uc.repo.GetBySKU(in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		BrandID:      in.BrandID,
		CategoryID:   in.CategoryID,
		Unit:         in.Unit,
		Description:  in.Description,
		Price:        in.Price,
		IsActive:     true,
		ReorderLevel: in.ReorderLevel,
		ReorderQty:   in.ReorderQty,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos editables de un producto. No permite tocar el
// stock (derivado del libro de movimientos).
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrValidation
		}
		product.Price = *in.Price
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return nil, domain.ErrValidation
		}
		product.ReorderLevel = *in.ReorderLevel
	}
	if in.ReorderQty != nil {
		if *in.ReorderQty < 0 {
			return nil, domain.ErrValidation
		}
		product.ReorderQty = *in.ReorderQty
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return uc.GetByID(id)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		BrandID:        p.BrandID,
		CategoryID:     p.CategoryID,
		Unit:           p.Unit,
		Description:    p.Description,
		Price:          p.Price,
		IsActive:       p.IsActive,
		ReorderLevel:   p.ReorderLevel,
		ReorderQty:     p.ReorderQty,
		RemainingStock: p.RemainingStock,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
