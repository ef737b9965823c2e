package account

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureCatalog inserts the groups and permissions that are missing. Existing rows are left as they are.
func EnsureCatalog(ctx context.Context, db *gorm.DB, groupNames []string, permissions []Permission) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range groupNames {
			g := Group{Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&g).Error; err != nil {
				return fmt.Errorf("failed to ensure group %s: %w", name, err)
			}
		}
		for i := range permissions {
			p := permissions[i]
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
				return fmt.Errorf("failed to ensure permission %s: %w", p.Codename, err)
			}
		}
		return nil
	})
}
