package model

import "time"

// CartItem is one line of a signed-in shopper's mirrored cart. Title, price,
// image and stock are the snapshot taken when the line was first added.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"product"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"imageUrl"`
	Stock     int       `json:"stock"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Position  int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
