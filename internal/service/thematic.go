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

type ThematicService struct {
	Repo *repo.GormRepo
}

func (s *ThematicService) ListThematics(ctx context.Context) ([]models.Thematic, error) {
	return s.Repo.ListThematics(ctx)
}

// CreateThematic links the products that exist among productIDs and drops
// the rest.
func (s *ThematicService) CreateThematic(ctx context.Context, name string, productIDs []uint) (*models.Thematic, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.BadRequest("Name", "Name can't be null or empty")
	}
	exists, err := s.Repo.ThematicExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check thematic: %w", err)
	}
	if exists {
		return nil, apperr.BadRequest("Name", "Thematic with such name already exists")
	}

	products, err := s.Repo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	if err := s.Repo.CreateThematic(ctx, name, ids); err != nil {
		return nil, fmt.Errorf("create thematic: %w", err)
	}
	return &models.Thematic{Name: name, Products: products}, nil
}

func (s *ThematicService) DeleteThematic(ctx context.Context, name string) error {
	if err := s.Repo.DeleteThematic(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("No such thematic")
		}
		return fmt.Errorf("delete thematic: %w", err)
	}
	return nil
}
