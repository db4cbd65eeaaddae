package models

// UserProduct records that OwnerID likes ProductID.
// The pair is the primary key, so a user holds at most one relation per product.
type UserProduct struct {
	OwnerID   uint `gorm:"primaryKey;autoIncrement:false" json:"owner_id"`
	ProductID uint `gorm:"primaryKey;autoIncrement:false;index" json:"product_id"`

	Owner   *User    `gorm:"foreignKey:OwnerID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

// TableName returns the join table name.
func (UserProduct) TableName() string {
	return "user_product"
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	ProductID uint `json:"product_id"`
	Liked     bool `json:"liked"`
}
