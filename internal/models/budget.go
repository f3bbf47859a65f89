package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// DefaultAlertThresholds are applied when a budget is created without any.
var DefaultAlertThresholds = Thresholds{80, 100, 120}

// Thresholds is an ordered list of alert percentages, stored as a JSON array.
type Thresholds []int

// Value implements driver.Valuer.
func (t Thresholds) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]int(t))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (t *Thresholds) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = Thresholds{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("thresholds: unsupported scan type %T", src)
	}
	var out []int
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	*t = out
	return nil
}

// GormDataType stores thresholds as text on every dialect.
func (Thresholds) GormDataType() string { return "text" }

// Budget caps spending in one category, or overall when CategoryName is nil,
// over a weekly, monthly, or yearly window.
type Budget struct {
	Base
	UserID              string       `gorm:"size:36;not null;index" json:"user_id"`
	CategoryName        *string      `gorm:"size:100" json:"category_name"`
	Amount              int64        `gorm:"type:bigint;not null" json:"amount"`
	Period              BudgetPeriod `gorm:"size:16;not null" json:"period"`
	StartDate           time.Time    `gorm:"not null" json:"start_date"`
	AlertThresholds     Thresholds   `gorm:"not null" json:"alert_thresholds" swaggertype:"array,integer"`
	NotificationEnabled bool         `gorm:"not null" json:"notification_enabled"`
	IsActive            bool         `gorm:"not null;index" json:"is_active"`
}

// Label is the human name of the budget scope.
func (b *Budget) Label() string {
	if b.CategoryName == nil || *b.CategoryName == "" {
		return "overall"
	}
	return *b.CategoryName
}
