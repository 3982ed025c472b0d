package repo

import (
	"context"
	"sort"

	"github.com/Skotchmaster/zefir_shop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListProducts loads every product with its category and characteristics.
func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := preloadProduct(r.DB.WithContext(ctx)).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := preloadProduct(r.DB.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs returns the products that exist among ids, ordered by id.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Product
	if err := preloadProduct(r.DB.WithContext(ctx)).Where("id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ProductExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ProductOrdered reports whether any order lists the product.
func (r *GormRepo) ProductOrdered(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.OrderProduct{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Category").Create(p).Error
}

// UpdateProduct overwrites the scalar fields and upserts characteristics by
// key. Characteristics not named in chars are kept.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product, chars map[string]string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"category_id": p.CategoryID,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		keys := make([]string, 0, len(chars))
		for k := range chars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ch := models.Characteristic{ProductID: p.ID, Key: k, Value: chars[k]}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&ch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteProduct detaches the product from baskets and thematics before
// removing it. Callers check order references first.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		joins := []any{&models.BasketProduct{}, &models.ThematicProduct{}, &models.Characteristic{}}
		for _, j := range joins {
			if err := tx.Where("product_id = ?", id).Delete(j).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
