package database

import (
	"github.com/dzuokumor/Civic-voice/internal/config"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Report{},
		&model.ReportAttachment{},
		&model.VerificationLog{},
		&model.DataPurchase{},
		&model.SystemSetting{},
	)
	if err != nil {
		return err
	}

	// Composite index backing the credential lookup in the tracking gateway
	db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_reference_passphrase ON reports(reference_code, passphrase)")

	return nil
}
