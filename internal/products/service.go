package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

// Service exposes catalog reads and admin product management.
type Service interface {
	ListCatalog(ctx context.Context) ([]ProductDTO, error)
	ListAll(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name         string
	NameAR       string
	Description  string
	PriceHalalas int64
	ImageURL     string
	IsActive     bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name         *string
	NameAR       *string
	Description  *string
	PriceHalalas *int64
	ImageURL     *string
	IsActive     *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCatalog(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing catalog")
	}
	return NewProductDTOs(products), nil
}

func (s *service) ListAll(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return NewProductDTOs(products), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return NewProductDTO(found), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(input.Name, input.NameAR, input.PriceHalalas); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &models.Product{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		NameAR:       strings.TrimSpace(input.NameAR),
		Description:  input.Description,
		PriceHalalas: input.PriceHalalas,
		ImageURL:     input.ImageURL,
		IsActive:     input.IsActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return NewProductDTO(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var dto *ProductDTO
	// Load and save share a transaction so concurrent admin edits cannot
	// interleave.
	err := s.repo.Transact(ctx, func(repo *Repository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}

		if input.Name != nil {
			existing.Name = strings.TrimSpace(*input.Name)
		}
		if input.NameAR != nil {
			existing.NameAR = strings.TrimSpace(*input.NameAR)
		}
		if input.Description != nil {
			existing.Description = *input.Description
		}
		if input.PriceHalalas != nil {
			existing.PriceHalalas = *input.PriceHalalas
		}
		if input.ImageURL != nil {
			existing.ImageURL = *input.ImageURL
		}
		if input.IsActive != nil {
			existing.IsActive = *input.IsActive
		}
		if err := validateProductFields(existing.Name, existing.NameAR, existing.PriceHalalas); err != nil {
			return err
		}

		updated, err := repo.Update(ctx, existing)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
		}
		dto = NewProductDTO(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func validateProductFields(name, nameAR string, priceHalalas int64) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(nameAR) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name_ar is required")
	}
	if priceHalalas <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_halalas must be positive")
	}
	return nil
}
