package store

import (
	"errors"
	"strconv"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting keys seeded by EnsureDefaults.
const (
	SettingDataPriceCents    = "data_price_cents"
	SettingDownloadExpiryHrs = "download_expiry_hours"
	SettingReportsPerPage    = "reports_per_page"
	SettingMaxReportsPerPage = "max_reports_per_page"
)

// SettingDefault is one key's bootstrap value and description.
type SettingDefault struct {
	Value       string
	Description string
}

// DefaultSettings is the table EnsureDefaults seeds at startup.
var DefaultSettings = map[string]SettingDefault{
	SettingDataPriceCents:    {"50", "Price charged per exported report, in cents"},
	SettingDownloadExpiryHrs: {"24", "Hours a purchased download token stays valid"},
	SettingReportsPerPage:    {"10", "Default page size for report listings"},
	SettingMaxReportsPerPage: {"100", "Upper bound on caller-supplied page sizes"},
}

// BootstrapSettings builds a seed map with operator-configured values in
// place of the built-in defaults. EnsureDefaults never overwrites an existing
// row, so configuration only takes effect on first boot; after that the
// settings table is the source of truth.
func BootstrapSettings(priceCents int64, expiryHours, perPage, maxPerPage int) map[string]SettingDefault {
	seeds := make(map[string]SettingDefault, len(DefaultSettings))
	for key, def := range DefaultSettings {
		seeds[key] = def
	}
	apply := func(key string, v int64) {
		def := seeds[key]
		def.Value = strconv.FormatInt(v, 10)
		seeds[key] = def
	}
	apply(SettingDataPriceCents, priceCents)
	apply(SettingDownloadExpiryHrs, int64(expiryHours))
	apply(SettingReportsPerPage, int64(perPage))
	apply(SettingMaxReportsPerPage, int64(maxPerPage))
	return seeds
}

// EnsureDefaults seeds any missing system settings. It is idempotent and
// never overwrites an operator-tuned value; call it once during process
// initialization.
func (s *Store) EnsureDefaults(defaults map[string]SettingDefault) error {
	for key, def := range defaults {
		setting := model.SystemSetting{
			ID:          uuid.New().String(),
			Key:         key,
			Value:       def.Value,
			Description: def.Description,
		}
		err := s.db.Where("key = ?", key).FirstOrCreate(&setting, model.SystemSetting{Key: key}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSettingInt returns the integer value of a setting, or fallback when the
// key is missing or malformed.
func (s *Store) GetSettingInt(key string, fallback int64) int64 {
	var setting model.SystemSetting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// SetSetting inserts or updates one setting value.
func (s *Store) SetSetting(key, value, description string) error {
	var setting model.SystemSetting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&model.SystemSetting{
			ID:          uuid.New().String(),
			Key:         key,
			Value:       value,
			Description: description,
		}).Error
	}
	if err != nil {
		return err
	}
	setting.Value = value
	setting.UpdatedAt = time.Now().UTC()
	if description != "" {
		setting.Description = description
	}
	return s.db.Save(&setting).Error
}

// DownloadValidity reads the configured token validity window.
func (s *Store) DownloadValidity() time.Duration {
	hours := s.GetSettingInt(SettingDownloadExpiryHrs, 24)
	return time.Duration(hours) * time.Hour
}
