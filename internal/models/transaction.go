package models

import "time"

// TransactionType is the direction of money movement.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction direction.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single recorded money movement. Transactions created by
// the scheduler carry the originating rule and its occurrence number; the
// pair is unique so an occurrence can never be materialized twice.
type Transaction struct {
	Base
	UserID   string          `gorm:"size:36;not null;index" json:"user_id"`
	Type     TransactionType `gorm:"size:16;not null" json:"type"`
	Category string          `gorm:"size:100;not null;index" json:"category"`
	Amount   int64           `gorm:"type:bigint;not null" json:"amount"`
	Note     string          `gorm:"size:500" json:"note"`
	Date     time.Time       `gorm:"not null;index" json:"date"`

	RecurringID *string `gorm:"size:36;uniqueIndex:idx_transactions_recurring_occurrence" json:"recurring_id,omitempty"`
	Occurrence  *int    `gorm:"uniqueIndex:idx_transactions_recurring_occurrence" json:"occurrence,omitempty"`
}
