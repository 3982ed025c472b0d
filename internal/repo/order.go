package repo

import (
	"context"

	"github.com/Skotchmaster/zefir_shop/internal/models"
	"gorm.io/gorm"
)

// CreateOrder stores the order and links o.Products, which must already exist.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Products").Create(o).Error; err != nil {
			return err
		}
		rows := make([]models.OrderProduct, 0, len(o.Products))
		for _, p := range o.Products {
			rows = append(rows, models.OrderProduct{OrderID: o.ID, ProductID: p.ID})
		}
		return tx.Create(&rows).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := preloadProducts(r.DB.WithContext(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOrders returns all orders when userID is nil, otherwise the user's own.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uint) ([]models.Order, error) {
	q := preloadProducts(r.DB.WithContext(ctx)).Order("id ASC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var items []models.Order
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
