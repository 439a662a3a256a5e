package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryConsole     ProductCategory = "Console"
	CategoryGame        ProductCategory = "Game"
	CategoryAccessory   ProductCategory = "Accessory"
	CategoryMerchandise ProductCategory = "Merchandise"
)

// ProductCategories lists every accepted category in display order.
var ProductCategories = []ProductCategory{
	CategoryConsole,
	CategoryGame,
	CategoryAccessory,
	CategoryMerchandise,
}

func (c ProductCategory) IsValid() bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Rating and NumReviews are derived from Reviews
// and only written by the rating aggregator.
type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       float64         `gorm:"not null;check:price >= 0" json:"price"`
	Category    ProductCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	ImageURL    string          `gorm:"not null" json:"imageUrl"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Brand       string          `gorm:"not null;index" json:"brand"`
	Rating      float64         `gorm:"not null;default:0" json:"rating"`
	NumReviews  int             `gorm:"not null;default:0" json:"numReviews"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Reviews []Review `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews"`
}

func (Product) TableName() string {
	return "products"
}
