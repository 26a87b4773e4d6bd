package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseInput carries the caller-provided fields of a new expense.
// The store assigns the id and both timestamps.
type ExpenseInput struct {
	Month     int
	Name      string
	Amount    decimal.Decimal
	Category  string
	Completed bool
}

func (in *ExpenseInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.ValidateMonth(in.Month); err != nil {
		return invalid(err)
	}
	if err := util.ValidateName(in.Name); err != nil {
		return invalid(err)
	}
	if err := util.ValidateAmount(in.Amount); err != nil {
		return invalid(err)
	}
	if err := util.ValidateCategory(in.Category); err != nil {
		return invalid(err)
	}
	return nil
}

// AddExpense validates and stores a new expense, stamping created_at
// and updated_at with the same instant.
func (s *Store) AddExpense(in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	stamp := s.stamp()
	expense := models.Expense{
		Month:     in.Month,
		Name:      in.Name,
		Amount:    in.Amount,
		Category:  in.Category,
		Completed: in.Completed,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	var changed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		var noteErr error
		changed, noteErr = noteChange(tx, models.ChangeExpense, stamp)
		return noteErr
	})
	if err != nil {
		return nil, conflict("add expense", err)
	}

	s.notify(changed)
	return &expense, nil
}

// ExpensePatch is a partial update; nil fields are left untouched.
type ExpensePatch struct {
	Month     *int
	Name      *string
	Amount    *decimal.Decimal
	Category  *string
	Completed *bool
}

func (p *ExpensePatch) validate() error {
	if p.Month != nil {
		if err := util.ValidateMonth(*p.Month); err != nil {
			return invalid(err)
		}
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		if err := util.ValidateName(trimmed); err != nil {
			return invalid(err)
		}
		p.Name = &trimmed
	}
	if p.Amount != nil {
		if err := util.ValidateAmount(*p.Amount); err != nil {
			return invalid(err)
		}
	}
	if p.Category != nil {
		if err := util.ValidateCategory(*p.Category); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// UpdateExpense applies a patch in one read-modify-write scope,
// refreshing updated_at only; created_at is never rewritten.
func (s *Store) UpdateExpense(id uint, patch ExpensePatch) (*models.Expense, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var expense models.Expense
	var changed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			return err
		}
		if patch.Month != nil {
			expense.Month = *patch.Month
		}
		if patch.Name != nil {
			expense.Name = *patch.Name
		}
		if patch.Amount != nil {
			expense.Amount = *patch.Amount
		}
		if patch.Category != nil {
			expense.Category = *patch.Category
		}
		if patch.Completed != nil {
			expense.Completed = *patch.Completed
		}
		stamp := s.stamp()
		expense.UpdatedAt = stamp
		if err := tx.Save(&expense).Error; err != nil {
			return err
		}
		var noteErr error
		changed, noteErr = noteChange(tx, models.ChangeExpense, stamp)
		return noteErr
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("update expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, conflict("update expense", err)
	}

	s.notify(changed)
	return &expense, nil
}

// SoftDeleteExpense tombstones an expense: a normal update that sets
// deleted_at and refreshes updated_at, leaving every other field alone.
// The row stays in storage so a later push propagates the deletion.
// Deleting an already-tombstoned expense is a no-op.
func (s *Store) SoftDeleteExpense(id uint) (*models.Expense, error) {
	var expense models.Expense
	var changed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			return err
		}
		if expense.Deleted() {
			return nil
		}
		stamp := s.stamp()
		expense.DeletedAt = stamp
		expense.UpdatedAt = stamp
		if err := tx.Save(&expense).Error; err != nil {
			return err
		}
		var noteErr error
		changed, noteErr = noteChange(tx, models.ChangeExpense, stamp)
		return noteErr
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("delete expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, conflict("delete expense", err)
	}

	s.notify(changed)
	return &expense, nil
}

// GetExpense returns the expense with the given id, tombstoned or not.
func (s *Store) GetExpense(id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("expense %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &expense, nil
}

// ExpensesByMonth lists live expenses for one month via the month
// index, newest first.
func (s *Store) ExpensesByMonth(month int) ([]models.Expense, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalid(err)
	}
	var expenses []models.Expense
	if err := s.db.
		Where("month = ? AND deleted_at = ''", month).
		Order("created_at DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses for month %d: %w", month, err)
	}
	return expenses, nil
}

// ListExpenses lists every expense in push order (month, then creation
// time). Tombstoned rows are excluded unless includeDeleted is set;
// full exports and pushes always include them.
func (s *Store) ListExpenses(includeDeleted bool) ([]models.Expense, error) {
	q := s.db.Order("month ASC, created_at ASC, id ASC")
	if !includeDeleted {
		q = q.Where("deleted_at = ''")
	}
	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// MergeExpense applies a pull/import candidate using last-write-wins.
// Candidate timestamps are copied verbatim, never restamped, so a newer
// remote tombstone can win and mark a local record deleted, while a
// local-only record the remote has never seen is always preserved.
// Reports whether the local store changed.
func (s *Store) MergeExpense(candidate models.Expense) (bool, error) {
	if candidate.ID == 0 {
		return false, invalid(errors.New("merge candidate missing id"))
	}
	if err := util.ValidateMonth(candidate.Month); err != nil {
		return false, invalid(err)
	}
	candidate.Name = strings.TrimSpace(candidate.Name)
	if candidate.Name == "" {
		return false, invalid(errors.New("merge candidate missing name"))
	}
	candidate.Category = models.NormalizeCategory(candidate.Category)

	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Expense
		err := tx.First(&current, candidate.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applied = true
			return tx.Create(&candidate).Error
		}
		if err != nil {
			return err
		}
		// strictly greater, ties keep the local record
		if candidate.UpdatedAt > current.UpdatedAt {
			applied = true
			return tx.Save(&candidate).Error
		}
		return nil
	})
	if err != nil {
		return false, conflict("merge expense", err)
	}
	return applied, nil
}
