package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/timewindow"
)

// spendingAggregator sums expense transactions over budget windows.
type spendingAggregator struct {
	db *gorm.DB
}

// NewSpendingAggregator creates a new SpendingAggregator.
func NewSpendingAggregator(db *gorm.DB) SpendingAggregator {
	return &spendingAggregator{db: db}
}

// expenses scopes a query to the owner's expenses inside the window,
// optionally narrowed to one category.
func (s *spendingAggregator) expenses(userID string, category *string, w timewindow.Window) *gorm.DB {
	q := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?",
			userID, models.TransactionTypeExpense, w.Start, w.End)
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	return q
}

// CurrentSpending sums expenses in the period window containing anchor.
func (s *spendingAggregator) CurrentSpending(userID string, category *string, period models.BudgetPeriod, anchor time.Time) (int64, timewindow.Window, error) {
	w, err := timewindow.For(timewindow.Period(period), anchor)
	if err != nil {
		return 0, timewindow.Window{}, apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error())
	}
	spent, err := s.SpendingInWindow(userID, category, w)
	return spent, w, err
}

// SpendingInWindow sums expenses in w. An empty set sums to zero.
func (s *spendingAggregator) SpendingInWindow(userID string, category *string, w timewindow.Window) (int64, error) {
	var spent int64
	if err := s.expenses(userID, category, w).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&spent).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// LatestExpenseAt returns the date of the newest matching expense, or nil.
func (s *spendingAggregator) LatestExpenseAt(userID string, category *string, w timewindow.Window) (*time.Time, error) {
	var latest []models.Transaction
	if err := s.expenses(userID, category, w).
		Order("date DESC").
		Limit(1).
		Find(&latest).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(latest) == 0 {
		return nil, nil
	}
	return &latest[0].Date, nil
}

// RecentExpenses returns up to limit matching expenses, newest first.
func (s *spendingAggregator) RecentExpenses(userID string, category *string, w timewindow.Window, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.expenses(userID, category, w).
		Order("date DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}
