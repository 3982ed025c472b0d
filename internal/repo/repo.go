package repo

import "gorm.io/gorm"

// GormRepo runs every query through DB.WithContext so request cancellation
// reaches the driver. Lookups by key return gorm.ErrRecordNotFound.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Characteristics", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func preloadProducts(db *gorm.DB) *gorm.DB {
	return db.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("products.id ASC")
	}).Preload("Products.Category").Preload("Products.Characteristics", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}
