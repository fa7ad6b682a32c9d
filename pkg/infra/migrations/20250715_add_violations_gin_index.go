package migrations

import (
	"github.com/NeuralTrust/ImageGuard/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250715_add_violations_gin_index",
		Name: "Index violation labels for containment queries",

		Up: func(db *gorm.DB) error {
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_moderation_reports_violations
				ON moderation_reports USING GIN (violations);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP INDEX IF EXISTS idx_moderation_reports_violations;`).Error
		},
	})
}
