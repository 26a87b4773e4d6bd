package store

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys the rest of the system relies on. Each is independently
// persisted and independently defaulted when absent.
const (
	SettingSpreadsheetID = "spreadsheet_id"
	SettingExpensesSheet = "expenses_sheet"
	SettingIncomeSheet   = "income_sheet"
	SettingAutoSync      = "auto_sync"
)

// Default sheet names used when the setting is absent.
const (
	DefaultExpensesSheet = "Expenses"
	DefaultIncomeSheet   = "Income"
)

// GetSetting returns the stored value, or fallback when the key is
// absent.
func (s *Store) GetSetting(key, fallback string) (string, error) {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// SetSetting upserts one key/value pair.
func (s *Store) SetSetting(key, value string) error {
	err := s.db.
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.Setting{Key: key, Value: value}).Error
	if err != nil {
		return conflict(fmt.Sprintf("set setting %q", key), err)
	}
	return nil
}

// GetBoolSetting reads a boolean-valued setting.
func (s *Store) GetBoolSetting(key string, fallback bool) (bool, error) {
	raw, err := s.GetSetting(key, strconv.FormatBool(fallback))
	if err != nil {
		return fallback, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

// SetBoolSetting writes a boolean-valued setting.
func (s *Store) SetBoolSetting(key string, value bool) error {
	return s.SetSetting(key, strconv.FormatBool(value))
}
