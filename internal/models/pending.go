package models

// Change kinds recorded in the pending queue.
const (
	ChangeExpense = "expense"
	ChangeIncome  = "income"
	ChangeImport  = "import"
)

// PendingChange marks a local mutation that has not yet reached the
// backup sheet. Rows are only ever appended, and bulk-cleared after a
// confirmed successful push; a failed push leaves them in place so the
// next attempt still carries all pending work.
type PendingChange struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Type      string `gorm:"size:16;not null" json:"type"`
	CreatedAt string `gorm:"size:32" json:"created_at"`
}
