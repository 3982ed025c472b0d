package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
)

const msgNoCategory = "Can't find category with such name"

type CategoryService struct {
	Repo *repo.GormRepo
}

type CategoryInput struct {
	Name        string
	Description string
}

func (in CategoryInput) validate() error {
	var errs apperr.Collector
	errs.Check(strings.TrimSpace(in.Name) != "", "Name", "Name can't be null or empty")
	errs.Check(strings.TrimSpace(in.Description) != "", "Description", "Description can't be null or empty")
	return errs.Err()
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, name string) (*models.Category, error) {
	cat, err := s.Repo.GetCategoryByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(msgNoCategory)
	}
	return cat, err
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	taken, err := s.Repo.CategoryNameTaken(ctx, in.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, apperr.BadRequest("Name", "Category with such name already exists")
	}

	cat := &models.Category{Name: in.Name, Description: in.Description}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, name string, in CategoryInput) (*models.Category, error) {
	cat, err := s.GetCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	taken, err := s.Repo.CategoryNameTaken(ctx, in.Name, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return nil, apperr.BadRequest("Name", "Category with such name already exists")
	}

	cat.Name = in.Name
	cat.Description = in.Description
	if err := s.Repo.UpdateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

// DeleteCategory refuses to orphan products.
func (s *CategoryService) DeleteCategory(ctx context.Context, name string) error {
	cat, err := s.GetCategory(ctx, name)
	if err != nil {
		return err
	}
	n, err := s.Repo.CountCategoryProducts(ctx, cat.ID)
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if n > 0 {
		return apperr.BadRequest("Name", "Category has products")
	}
	if err := s.Repo.DeleteCategory(ctx, cat.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(msgNoCategory)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
