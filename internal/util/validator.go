package util

import (
	"fmt"
	"strings"

	"github.com/IAmMasterCraft/expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// maxAmount caps single amounts at ten million, which is generous for a
// personal budget and catches unit mistakes in imported data.
var maxAmount = decimal.NewFromInt(10_000_000)

// ValidateMonth verifies the month is within 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return nil
}

// ValidateAmount verifies the amount is non-negative and within bounds.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", amount)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ValidateName verifies the expense name is non-empty after trimming.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("name too long, max 255 characters")
	}
	return nil
}

// ValidateCategory verifies the category is one of the fixed set.
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if !models.ValidCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}
	return nil
}
