package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review belongs to exactly one product. A user may review a product once,
// enforced by idx_reviews_product_user.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_reviews_product_user" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_product_user" json:"user"`
	Name      string    `gorm:"not null" json:"name"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Review) TableName() string {
	return "reviews"
}
