// Package store is the single write path for every persistent record.
// All mutation runs inside one gorm transaction and receives its
// timestamps here, so no caller ever sets updated_at by hand and no
// partial write is observable by a concurrent reader.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"gorm.io/gorm"
)

var (
	// ErrStorageUnavailable means the storage medium could not be
	// opened. Fatal to the caller, never retried.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrWriteConflict means an atomic scope could not complete. The
	// store never retries; the caller may retry the whole operation.
	ErrWriteConflict = errors.New("write conflict")
	// ErrNotFound means the keyed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation means a malformed record was rejected before any
	// write reached the store.
	ErrValidation = errors.New("validation failed")
)

type Store struct {
	db *gorm.DB

	clockMu   sync.Mutex
	lastStamp string

	onChange func()
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OnChange registers a callback invoked after a pending change has been
// recorded. The sync scheduler uses it as its enqueue signal.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// stamp returns the current instant as a sortable string, bumped by one
// millisecond whenever a naive wall-clock read would not sort strictly
// after the previous stamp issued by this process. That keeps
// updated_at strictly increasing across rapid successive mutations.
func (s *Store) stamp() string {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	now := util.NowStamp()
	if now <= s.lastStamp {
		if prev, err := util.ParseStamp(s.lastStamp); err == nil {
			now = util.FormatStamp(prev.Add(time.Millisecond))
		}
	}
	s.lastStamp = now
	return now
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func conflict(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrWriteConflict, err)
}

// noteChange appends a pending-change entry inside tx, but only when
// automatic sync is enabled; users who never enable sync never
// accumulate entries. Reports whether an entry was recorded.
func noteChange(tx *gorm.DB, kind, stamp string) (bool, error) {
	var setting models.Setting
	err := tx.First(&setting, "key = ?", SettingAutoSync).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if setting.Value != "true" {
		return false, nil
	}
	if err := tx.Create(&models.PendingChange{Type: kind, CreatedAt: stamp}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) notify(changed bool) {
	if changed && s.onChange != nil {
		s.onChange()
	}
}
