package store

import (
	"fmt"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
)

// Enqueue appends one pending-change entry and fires the change
// callback. Single-record mutators record their entries inside their
// own transactions; this is the path for bulk operations.
func (s *Store) Enqueue(kind string) error {
	entry := models.PendingChange{Type: kind, CreatedAt: s.stamp()}
	if err := s.db.Create(&entry).Error; err != nil {
		return conflict("enqueue change", err)
	}
	s.notify(true)
	return nil
}

// NoteImport records a single pending entry for a bulk import or
// restore, but only when automatic sync is enabled.
func (s *Store) NoteImport() error {
	enabled, err := s.GetBoolSetting(SettingAutoSync, false)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	return s.Enqueue(models.ChangeImport)
}

// PendingCount reports how many changes await a successful push.
func (s *Store) PendingCount() (int64, error) {
	var n int64
	if err := s.db.Model(&models.PendingChange{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count pending changes: %w", err)
	}
	return n, nil
}

// DrainPending clears the queue in one atomic statement. Callers invoke
// it only after a confirmed successful push; a failed push leaves the
// queue intact so delivery stays at-least-once.
func (s *Store) DrainPending() error {
	if err := s.db.Where("1 = 1").Delete(&models.PendingChange{}).Error; err != nil {
		return conflict("drain pending changes", err)
	}
	return nil
}
