package models

import "github.com/shopspring/decimal"

// Expense is one budgeted expense within a month.
// Timestamps are stored as fixed-width sortable UTC strings so the
// reconciler can compare writes lexicographically. DeletedAt is a
// tombstone: an empty string means the record is live, anything else is
// the instant it was deleted. Tombstoned rows stay in storage so the
// backup sheet eventually observes the deletion.
type Expense struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Month     int             `gorm:"index;not null" json:"month"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Category  string          `gorm:"size:32;not null" json:"category"`
	Completed bool            `json:"completed"`
	CreatedAt string          `gorm:"size:32" json:"created_at"`
	UpdatedAt string          `gorm:"size:32;index" json:"updated_at"`
	DeletedAt string          `gorm:"size:32;default:''" json:"deleted_at"`
}

// Deleted reports whether the expense has been tombstoned.
func (e *Expense) Deleted() bool {
	return e.DeletedAt != ""
}
