package repo

import (
	"context"

	"github.com/Skotchmaster/zefir_shop/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) ListThematics(ctx context.Context) ([]models.Thematic, error) {
	var items []models.Thematic
	if err := preloadProducts(r.DB.WithContext(ctx)).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListThematicNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.DB.WithContext(ctx).Model(&models.Thematic{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *GormRepo) ThematicProductIDs(ctx context.Context, name string) ([]uint, error) {
	var ids []uint
	if err := r.DB.WithContext(ctx).Model(&models.ThematicProduct{}).
		Where("thematic_name = ?", name).
		Order("product_id ASC").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormRepo) ThematicExists(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Thematic{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateThematic stores the group and links the given, already resolved, products.
func (r *GormRepo) CreateThematic(ctx context.Context, name string, productIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products").Create(&models.Thematic{Name: name}).Error; err != nil {
			return err
		}
		if len(productIDs) == 0 {
			return nil
		}
		rows := make([]models.ThematicProduct, 0, len(productIDs))
		for _, id := range productIDs {
			rows = append(rows, models.ThematicProduct{ThematicName: name, ProductID: id})
		}
		return tx.Create(&rows).Error
	})
}

func (r *GormRepo) DeleteThematic(ctx context.Context, name string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thematic_name = ?", name).Delete(&models.ThematicProduct{}).Error; err != nil {
			return err
		}
		res := tx.Where("name = ?", name).Delete(&models.Thematic{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
