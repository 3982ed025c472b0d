package models

import (
	"fmt"

	"gorm.io/gorm"
)

func setupJoinTables(db *gorm.DB) error {
	joins := []struct {
		model any
		field string
		join  any
	}{
		{&Basket{}, "Products", &BasketProduct{}},
		{&Order{}, "Products", &OrderProduct{}},
		{&Thematic{}, "Products", &ThematicProduct{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return fmt.Errorf("setup join table %T: %w", j.join, err)
		}
	}
	return nil
}

// Migrate creates the schema and seeds the well-known roles.
func Migrate(db *gorm.DB) error {
	if err := setupJoinTables(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&Role{},
		&User{},
		&Category{},
		&Product{},
		&Characteristic{},
		&Thematic{},
		&Basket{},
		&Order{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, name := range []string{RoleUser, RoleAdmin} {
		if err := db.FirstOrCreate(&Role{Name: name}, Role{Name: name}).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}
