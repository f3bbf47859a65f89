package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finman/internal/models"
	"finman/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh owner id. Users live outside this service, so
// fixtures only need an opaque identifier.
func NewUserID() string {
	return uuid.New()
}

// CreateTestTransaction records a transaction of the given type, category
// and amount at date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, category string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		Type:     txType,
		Category: category,
		Amount:   amount,
		Note:     fmt.Sprintf("test transaction %d", nextID()),
		Date:     date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active budget with the default thresholds and
// notifications enabled. A nil category makes it an overall budget.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, category *string, amount int64, period models.BudgetPeriod, startDate time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:              userID,
		CategoryName:        category,
		Amount:              amount,
		Period:              period,
		StartDate:           startDate.UTC(),
		AlertThresholds:     append(models.Thresholds{}, models.DefaultAlertThresholds...),
		NotificationEnabled: true,
		IsActive:            true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestRecurring creates an active expense rule whose first execution
// is its start date.
func CreateTestRecurring(t *testing.T, db *gorm.DB, userID string, freq models.Frequency, startDate time.Time) *models.RecurringTransaction {
	t.Helper()

	start := startDate.UTC()
	rule := &models.RecurringTransaction{
		UserID:        userID,
		TemplateName:  fmt.Sprintf("Test Rule %d", nextID()),
		Type:          models.TransactionTypeExpense,
		Category:      "Bills",
		Amount:        50000,
		Note:          "test",
		Frequency:     freq,
		StartDate:     start,
		NextExecution: &start,
		IsActive:      true,
		NotifyDays:    1,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return rule
}

// CreateTestGoal creates a goal with the given target and saved amount.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target, current int64, deadline time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline.UTC(),
		Priority:      models.GoalPriorityMedium,
		IsAchieved:    current >= target,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
