package migrations

import (
	"github.com/NeuralTrust/ImageGuard/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250601_create_moderation_reports",
		Name: "Create moderation_reports table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS moderation_reports (
					id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					status            TEXT NOT NULL,
					image_path        TEXT NOT NULL,
					final_decision    TEXT NOT NULL,
					violations        JSONB NOT NULL DEFAULT '[]',
					agent_results     JSONB,
					confidence_scores JSONB,
					detailed_report   JSONB,
					error_message     TEXT,
					rationale         TEXT,
					fingerprint       TEXT,
					created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_moderation_reports_decision
				ON moderation_reports (final_decision, created_at DESC);
			`).Error; err != nil {
				return err
			}

			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_moderation_reports_fingerprint
				ON moderation_reports (fingerprint);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS moderation_reports;`).Error
		},
	})
}
