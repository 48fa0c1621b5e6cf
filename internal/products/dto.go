package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/tbostore/storefront-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients. Prices stay in the
// canonical minor unit; display conversion happens at the response edge.
type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	NameAR       string    `json:"name_ar"`
	Description  string    `json:"description,omitempty"`
	PriceHalalas int64     `json:"price_halalas"`
	ImageURL     string    `json:"image_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:           product.ID,
		Name:         product.Name,
		NameAR:       product.NameAR,
		Description:  product.Description,
		PriceHalalas: product.PriceHalalas,
		ImageURL:     product.ImageURL,
		IsActive:     product.IsActive,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models.
func NewProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
