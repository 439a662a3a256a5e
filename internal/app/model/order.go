package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentPayPal     PaymentMethod = "PayPal"
)

// ShippingAddress is stored inline on the order row.
type ShippingAddress struct {
	Address    string `gorm:"column:shipping_address;not null" json:"address"`
	City       string `gorm:"column:shipping_city;not null" json:"city"`
	PostalCode string `gorm:"column:shipping_postal_code;not null" json:"postalCode"`
	Country    string `gorm:"column:shipping_country;not null" json:"country"`
}

// PaymentResult is the processor confirmation recorded verbatim on payment.
type PaymentResult struct {
	ID           string `gorm:"column:payment_id" json:"id"`
	Status       string `gorm:"column:payment_status" json:"status"`
	UpdateTime   string `gorm:"column:payment_update_time" json:"update_time"`
	EmailAddress string `gorm:"column:payment_email_address" json:"email_address"`
}

// Order is the frozen result of checkout. OrderItems never change after
// creation; only the paid and delivered transitions mutate an order.
type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"userId"`
	ShippingAddress ShippingAddress `gorm:"embedded" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"paymentMethod"`
	PaymentResult   PaymentResult   `gorm:"embedded" json:"paymentResult"`
	ItemsPrice      float64         `gorm:"not null;default:0" json:"itemsPrice"`
	ShippingPrice   float64         `gorm:"not null;default:0" json:"shippingPrice"`
	TotalPrice      float64         `gorm:"not null;default:0" json:"totalPrice"`
	IsPaid          bool            `gorm:"not null;default:false" json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `gorm:"not null;default:false" json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the product as it was sold. ProductID is not a foreign
// key so deleting a product leaves historical orders intact.
type OrderItem struct {
	ID        uint    `gorm:"primarykey" json:"-"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	ProductID uint    `gorm:"not null;index" json:"product"`
	Title     string  `gorm:"not null" json:"title"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	ImageURL  string  `gorm:"not null" json:"imageUrl"`
	Price     float64 `gorm:"not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
