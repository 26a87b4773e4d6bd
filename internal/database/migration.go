package database

import (
	"fmt"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models, then
// backfills timestamps on rows written before sync support existed.
// The sync layer assumes every expense and income row carries a
// well-formed updated_at by the time it runs.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Expense{},
		&models.Income{},
		&models.Setting{},
		&models.PendingChange{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := backfillTimestamps(db); err != nil {
		return fmt.Errorf("backfill timestamps: %w", err)
	}
	return nil
}

func backfillTimestamps(db *gorm.DB) error {
	now := util.NowStamp()

	// historical expenses may predate updated_at; reuse created_at so
	// they do not spuriously win merges against the remote side
	if err := db.Model(&models.Expense{}).
		Where("updated_at = '' OR updated_at IS NULL").
		Where("created_at <> '' AND created_at IS NOT NULL").
		Update("updated_at", gorm.Expr("created_at")).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Expense{}).
		Where("updated_at = '' OR updated_at IS NULL").
		Updates(map[string]interface{}{"created_at": now, "updated_at": now}).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Income{}).
		Where("updated_at = '' OR updated_at IS NULL").
		Update("updated_at", now).Error; err != nil {
		return err
	}
	return nil
}
