package models

import "time"

// Product is a catalog entry owned by exactly one user.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Price       float64   `gorm:"type:double precision;not null;check:price >= 0" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the singular table name the bulk loader targets.
func (Product) TableName() string {
	return "product"
}

// ProductColumns is the column order used by the bulk CSV loader.
var ProductColumns = []string{"name", "price", "description", "owner_id", "created_at", "updated_at"}
