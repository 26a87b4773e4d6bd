package models

import "github.com/shopspring/decimal"

// Income is the earned amount for one month of the year. The month is
// the primary key, so writing an existing month replaces it. Incomes
// have no tombstone concept; the only supported mutation is overwrite.
type Income struct {
	Month     int             `gorm:"primaryKey;autoIncrement:false" json:"month"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	UpdatedAt string          `gorm:"size:32" json:"updated_at"`
}
