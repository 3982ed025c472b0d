package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Role struct {
	Name string `gorm:"primaryKey" json:"name"`
}

type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name             string    `gorm:"not null"                  json:"name"`
	Surname          string    `gorm:"not null"                  json:"surname"`
	Phone            string    `gorm:"not null"                  json:"phone"`
	Email            string    `gorm:"uniqueIndex;not null"      json:"email"`
	HashedPassword   string    `gorm:"not null"                  json:"-"`
	Sale             *float64  `                                 json:"sale"`
	RoleName         string    `gorm:"index;not null"            json:"role"`
	Role             Role      `gorm:"foreignKey:RoleName;references:Name" json:"-"`
	RefreshTokenHash *string   `                                 json:"-"`
	CreatedAt        time.Time `                                 json:"createdAt"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"      json:"name"`
	Description string    `gorm:"not null"                  json:"description"`
	CreatedAt   time.Time `                                 json:"createdAt"`
}

type Product struct {
	ID              uint             `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name            string           `gorm:"not null"                   json:"name"`
	Description     string           `gorm:"not null"                   json:"description"`
	Price           decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	CategoryID      uint             `gorm:"index;not null"             json:"categoryId"`
	Category        Category         `                                  json:"-"`
	Characteristics []Characteristic `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time        `                                  json:"createdAt"`
}

type Characteristic struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"            json:"-"`
	ProductID uint   `gorm:"uniqueIndex:idx_product_key;not null" json:"-"`
	Key       string `gorm:"uniqueIndex:idx_product_key;not null" json:"key"`
	Value     string `gorm:"not null"                            json:"value"`
}

type Thematic struct {
	Name     string    `gorm:"primaryKey"                  json:"name"`
	Products []Product `gorm:"many2many:thematic_products" json:"-"`
}

type Basket struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID   uint      `gorm:"uniqueIndex;not null"      json:"userId"`
	Products []Product `gorm:"many2many:basket_products" json:"-"`
}

type Order struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID    uint            `gorm:"index;not null"            json:"userId"`
	User      *User           `                                 json:"-"`
	Products  []Product       `gorm:"many2many:order_products"  json:"-"`
	Status    OrderStatus     `gorm:"not null;default:0"        json:"status"`
	Deadline  time.Time       `gorm:"type:date;not null"        json:"deadline"`
	Sum       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"sum"`
	CreatedAt time.Time       `                                 json:"createdAt"`
}

// Join rows are written explicitly by the repositories.

type BasketProduct struct {
	BasketID  uint `gorm:"primaryKey"`
	ProductID uint `gorm:"primaryKey;index"`
}

type OrderProduct struct {
	OrderID   uint `gorm:"primaryKey"`
	ProductID uint `gorm:"primaryKey;index"`
}

type ThematicProduct struct {
	ThematicName string `gorm:"primaryKey"`
	ProductID    uint   `gorm:"primaryKey;index"`
}
