package models

import "time"

// Frequency is the repeat interval of a recurring rule.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// DeactivationReason records why a rule stopped firing.
type DeactivationReason string

const (
	DeactivationNone           DeactivationReason = ""
	DeactivationEndDateReached DeactivationReason = "end_date_reached"
	DeactivationOccurrences    DeactivationReason = "occurrences_reached"
	DeactivationManual         DeactivationReason = "manual"
)

// RecurringTransaction is a template that materializes a Transaction on a
// schedule. Version is bumped on every execution and guards concurrent
// updates of the same rule.
type RecurringTransaction struct {
	Base
	UserID       string          `gorm:"size:36;not null;index" json:"user_id"`
	TemplateName string          `gorm:"size:100;not null" json:"template_name"`
	Type         TransactionType `gorm:"size:16;not null" json:"type"`
	Category     string          `gorm:"size:100;not null" json:"category"`
	Amount       int64           `gorm:"type:bigint;not null" json:"amount"`
	Note         string          `gorm:"size:500" json:"note"`
	Frequency    Frequency       `gorm:"size:16;not null" json:"frequency"`

	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Occurrences *int       `json:"occurrences,omitempty"`

	ExecutedCount int        `gorm:"not null" json:"executed_count"`
	LastExecuted  *time.Time `json:"last_executed,omitempty"`
	NextExecution *time.Time `gorm:"index" json:"next_execution,omitempty"`

	IsActive           bool               `gorm:"not null;index" json:"is_active"`
	DeactivationReason DeactivationReason `gorm:"size:32" json:"deactivation_reason,omitempty"`

	NotifyBeforeExecution bool `gorm:"not null" json:"notify_before_execution"`
	NotifyDays            int  `gorm:"not null" json:"notify_days"`

	Version int64 `gorm:"not null" json:"version"`
}

// TransactionNote is the note written on transactions materialized from r.
func (r *RecurringTransaction) TransactionNote() string {
	return r.Note + " (Auto - " + r.TemplateName + ")"
}
