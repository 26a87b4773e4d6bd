package store

import (
	"errors"
	"fmt"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"
	"github.com/IAmMasterCraft/expense-tracker/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SetIncome upserts the income for one month. There is at most one
// income row per month and no delete operation, only overwrite.
func (s *Store) SetIncome(month int, amount decimal.Decimal) (*models.Income, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalid(err)
	}
	if err := util.ValidateAmount(amount); err != nil {
		return nil, invalid(err)
	}

	var income models.Income
	var changed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		stamp := s.stamp()
		err := tx.First(&income, "month = ?", month).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			income = models.Income{Month: month, Amount: amount, UpdatedAt: stamp}
			if err := tx.Create(&income).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			income.Amount = amount
			income.UpdatedAt = stamp
			if err := tx.Save(&income).Error; err != nil {
				return err
			}
		}
		var noteErr error
		changed, noteErr = noteChange(tx, models.ChangeIncome, stamp)
		return noteErr
	})
	if err != nil {
		return nil, conflict("set income", err)
	}

	s.notify(changed)
	return &income, nil
}

// GetIncome returns the income row for a month, or ErrNotFound.
func (s *Store) GetIncome(month int) (*models.Income, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalid(err)
	}
	var income models.Income
	if err := s.db.First(&income, "month = ?", month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("income for month %d: %w", month, ErrNotFound)
		}
		return nil, fmt.Errorf("get income: %w", err)
	}
	return &income, nil
}

// ListIncomes returns all income rows ordered by month.
func (s *Store) ListIncomes() ([]models.Income, error) {
	var incomes []models.Income
	if err := s.db.Order("month ASC").Find(&incomes).Error; err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return incomes, nil
}

// MergeIncome applies a pull/import candidate keyed by month with the
// same strictly-greater rule as MergeExpense. The candidate's
// updated_at is copied verbatim. Reports whether the store changed.
func (s *Store) MergeIncome(candidate models.Income) (bool, error) {
	if err := util.ValidateMonth(candidate.Month); err != nil {
		return false, invalid(err)
	}

	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Income
		err := tx.First(&current, "month = ?", candidate.Month).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applied = true
			return tx.Create(&candidate).Error
		}
		if err != nil {
			return err
		}
		if candidate.UpdatedAt > current.UpdatedAt {
			applied = true
			return tx.Save(&candidate).Error
		}
		return nil
	})
	if err != nil {
		return false, conflict("merge income", err)
	}
	return applied, nil
}
