package store_test

import (
	"testing"

	"github.com/dzuokumor/Civic-voice/internal/database"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a fresh in-memory database per test. A single
// connection keeps the :memory: database alive across the pool.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	return store.NewStore(db)
}

func validReport() store.NewReport {
	return store.NewReport{
		Title:       "Broken streetlight on Main St",
		Category:    "infrastructure",
		Description: "The light has been out for two weeks.",
		Latitude:    45.4215,
		Longitude:   -75.6972,
		Language:    "en",
	}
}
