// Package budgetalert evaluates spending against a budget's ceiling and
// alert thresholds.
package budgetalert

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"finman/internal/models"
)

// Severity levels used when surfacing an evaluation to the user.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// notifyFrom is the percentage at which a budget starts showing up in the
// notification feed.
const notifyFrom = 80

var hundred = decimal.NewFromInt(100)

// Evaluation is the derived alert state of a budget for one spending total.
type Evaluation struct {
	Percentage   int   `json:"percentage"`
	Triggered    []int `json:"triggered_alerts"`
	IsOverBudget bool  `json:"is_over_budget"`
}

// Evaluate computes the rounded percentage of amount consumed by spending,
// the thresholds that percentage has reached, and whether it is over 100.
// Thresholds are only reported when notifications are enabled.
func Evaluate(b *models.Budget, spending int64) Evaluation {
	eval := Evaluation{Triggered: []int{}}
	if b.Amount <= 0 {
		return eval
	}

	pct := decimal.NewFromInt(spending).
		Mul(hundred).
		DivRound(decimal.NewFromInt(b.Amount), 8).
		Round(0)
	eval.Percentage = int(pct.IntPart())
	eval.IsOverBudget = eval.Percentage > 100

	if b.NotificationEnabled {
		for _, t := range b.AlertThresholds {
			if eval.Percentage >= t {
				eval.Triggered = append(eval.Triggered, t)
			}
		}
	}
	return eval
}

// Severity maps a percentage to the notification severity, or "" when the
// budget is not worth surfacing yet.
func Severity(percentage int) string {
	switch {
	case percentage >= 100:
		return SeverityError
	case percentage >= notifyFrom:
		return SeverityWarning
	}
	return ""
}

// Message renders a one-line summary of an evaluation for the given budget.
func Message(b *models.Budget, e Evaluation) string {
	if e.IsOverBudget {
		return fmt.Sprintf("Over %s budget by %d%%", b.Label(), e.Percentage-100)
	}
	return fmt.Sprintf("Reached %d%% of %s budget", e.Percentage, b.Label())
}

// ValidateThresholds rejects non-positive and duplicate thresholds.
func ValidateThresholds(thresholds []int) error {
	seen := make(map[int]struct{}, len(thresholds))
	for _, t := range thresholds {
		if t <= 0 {
			return errors.New("alert thresholds must be positive")
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("duplicate alert threshold %d", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}
