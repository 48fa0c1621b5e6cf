package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. Price is stored in halalas, the minor unit of
// the canonical currency.
type Product struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	NameAR       string    `gorm:"column:name_ar;not null"`
	Description  string    `gorm:"column:description"`
	PriceHalalas int64     `gorm:"column:price_halalas;not null"`
	ImageURL     string    `gorm:"column:image_url"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
