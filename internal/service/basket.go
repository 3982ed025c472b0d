package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
)

type BasketService struct {
	Repo *repo.GormRepo
}

func (s *BasketService) GetBasket(ctx context.Context, userID uint) (*models.Basket, error) {
	b, err := s.Repo.GetBasketByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No such basket")
	}
	return b, err
}

// AddProduct is idempotent.
func (s *BasketService) AddProduct(ctx context.Context, userID, productID uint) (*models.Basket, error) {
	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return nil, apperr.NotFound("No such product")
	}
	basketID, err := s.basketID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddToBasket(ctx, basketID, productID); err != nil {
		return nil, fmt.Errorf("add to basket: %w", err)
	}
	return s.GetBasket(ctx, userID)
}

// RemoveProduct does nothing when the product is not in the basket.
func (s *BasketService) RemoveProduct(ctx context.Context, userID, productID uint) (*models.Basket, error) {
	basketID, err := s.basketID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RemoveFromBasket(ctx, basketID, productID); err != nil {
		return nil, fmt.Errorf("remove from basket: %w", err)
	}
	return s.GetBasket(ctx, userID)
}

func (s *BasketService) basketID(ctx context.Context, userID uint) (uint, error) {
	id, err := s.Repo.BasketIDByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFound("No such basket")
	}
	if err != nil {
		return 0, fmt.Errorf("find basket: %w", err)
	}
	return id, nil
}
