package repo

import (
	"context"

	"github.com/Skotchmaster/zefir_shop/internal/models"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) GetBasketByUser(ctx context.Context, userID uint) (*models.Basket, error) {
	var b models.Basket
	if err := preloadProducts(r.DB.WithContext(ctx)).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) BasketIDByUser(ctx context.Context, userID uint) (uint, error) {
	var b models.Basket
	if err := r.DB.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&b).Error; err != nil {
		return 0, err
	}
	return b.ID, nil
}

// AddToBasket is a no-op when the product is already there.
func (r *GormRepo) AddToBasket(ctx context.Context, basketID, productID uint) error {
	row := models.BasketProduct{BasketID: basketID, ProductID: productID}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *GormRepo) RemoveFromBasket(ctx context.Context, basketID, productID uint) error {
	return r.DB.WithContext(ctx).
		Where("basket_id = ? AND product_id = ?", basketID, productID).
		Delete(&models.BasketProduct{}).Error
}
