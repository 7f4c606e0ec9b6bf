package model

import (
	"time"
)

// Order is one cart line item placed by a user. A multi-item order
// produces one row per line, all owned by the same user.
type Order struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	ProductName string    `json:"product_name" gorm:"type:varchar(255);not null"`
	Size        string    `json:"size" gorm:"type:varchar(50)"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(50);not null"`
	Address     string    `json:"address" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}
