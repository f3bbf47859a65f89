package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"finman/internal/budgetalert"
	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/timewindow"
)

const recentExpensesLimit = 10

// budgetService handles budget-related business logic.
type budgetService struct {
	db       *gorm.DB
	spending SpendingAggregator
	clock    timewindow.Clock
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, spending SpendingAggregator, clock timewindow.Clock) BudgetServicer {
	return &budgetService{db: db, spending: spending, clock: clock}
}

// CreateBudget creates a budget for a category, or an overall budget when
// the category is nil.
func (s *budgetService) CreateBudget(userID string, input BudgetInput) (*models.Budget, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !timewindow.Period(input.Period).Valid() {
		return nil, apperrors.ErrInvalidPeriod
	}

	thresholds := models.Thresholds(input.AlertThresholds)
	if len(thresholds) == 0 {
		thresholds = append(models.Thresholds{}, models.DefaultAlertThresholds...)
	}
	if err := budgetalert.ValidateThresholds(thresholds); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidThresholds, err.Error())
	}

	category := normalizeCategory(input.CategoryName)
	if err := s.ensureNoActiveDuplicate(userID, "", category, input.Period); err != nil {
		return nil, err
	}

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = timewindow.StartOfDay(s.clock.Now())
	}
	notify := true
	if input.NotificationEnabled != nil {
		notify = *input.NotificationEnabled
	}

	budget := &models.Budget{
		UserID:              userID,
		CategoryName:        category,
		Amount:              input.Amount,
		Period:              input.Period,
		StartDate:           startDate.UTC(),
		AlertThresholds:     thresholds,
		NotificationEnabled: notify,
		IsActive:            true,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

func normalizeCategory(category *string) *string {
	if category == nil || *category == "" {
		return nil
	}
	return category
}

// ensureNoActiveDuplicate enforces one active budget per owner, category and
// period. excludeID skips the budget being updated.
func (s *budgetService) ensureNoActiveDuplicate(userID, excludeID string, category *string, period models.BudgetPeriod) error {
	q := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND period = ? AND is_active = ?", userID, period, true)
	if category == nil {
		q = q.Where("category_name IS NULL")
	} else {
		q = q.Where("category_name = ?", *category)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateBudget
	}
	return nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
	isActive *bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	result, err := pagination.Fetch[models.Budget](base, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(userID, budgetID string, update BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *update.Amount
	}
	if update.Period != nil {
		if !timewindow.Period(*update.Period).Valid() {
			return nil, apperrors.ErrInvalidPeriod
		}
		updates["period"] = *update.Period
	}
	if update.AlertThresholds != nil {
		if err := budgetalert.ValidateThresholds(update.AlertThresholds); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidThresholds, err.Error())
		}
		updates["alert_thresholds"] = models.Thresholds(update.AlertThresholds)
	}
	if update.NotificationEnabled != nil {
		updates["notification_enabled"] = *update.NotificationEnabled
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	// The (category, period) slot must stay free whenever the result is active.
	willBeActive := budget.IsActive
	if update.IsActive != nil {
		willBeActive = *update.IsActive
	}
	period := budget.Period
	if update.Period != nil {
		period = *update.Period
	}
	if willBeActive && (!budget.IsActive || period != budget.Period) {
		if err := s.ensureNoActiveDuplicate(userID, budget.ID, budget.CategoryName, period); err != nil {
			return nil, err
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// windowAnchor is the reference instant for a budget's current window. A
// budget that has not started yet is measured over its first window.
func windowAnchor(b *models.Budget, ref time.Time) time.Time {
	if ref.Before(b.StartDate) {
		return b.StartDate
	}
	return ref
}

// progress evaluates one budget against its spending at ref.
func (s *budgetService) progress(b *models.Budget, ref time.Time) (*BudgetProgress, error) {
	spent, window, err := s.spending.CurrentSpending(b.UserID, b.CategoryName, b.Period, windowAnchor(b, ref))
	if err != nil {
		return nil, err
	}
	eval := budgetalert.Evaluate(b, spent)

	return &BudgetProgress{
		BudgetID:        b.ID,
		CategoryName:    b.Label(),
		Period:          b.Period,
		Budgeted:        b.Amount,
		Spent:           spent,
		Remaining:       b.Amount - spent,
		Percentage:      eval.Percentage,
		TriggeredAlerts: eval.Triggered,
		IsOverBudget:    eval.IsOverBudget,
		Window:          window,
	}, nil
}

// GetBudgetProgress calculates spending vs budget for the window containing
// ref, with the most recent expenses of that window.
func (s *budgetService) GetBudgetProgress(userID, budgetID string, ref time.Time) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	p, err := s.progress(budget, ref)
	if err != nil {
		return nil, err
	}

	recent, err := s.spending.RecentExpenses(userID, budget.CategoryName, p.Window, recentExpensesLimit)
	if err != nil {
		return nil, err
	}
	p.RecentTransactions = recent
	return p, nil
}

// FindActive returns the user's active budgets.
func (s *budgetService) FindActive(userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetStatus evaluates every active budget and summarises the totals.
func (s *budgetService) GetBudgetStatus(userID string, ref time.Time) (*BudgetStatus, error) {
	budgets, err := s.FindActive(userID)
	if err != nil {
		return nil, err
	}

	status := &BudgetStatus{Budgets: make([]BudgetProgress, 0, len(budgets))}
	for i := range budgets {
		p, err := s.progress(&budgets[i], ref)
		if err != nil {
			return nil, err
		}
		status.Budgets = append(status.Budgets, *p)

		status.Summary.TotalBudget += p.Budgeted
		status.Summary.TotalSpending += p.Spent
		if p.IsOverBudget {
			status.Summary.OverBudgetCount++
		}
	}
	status.Summary.TotalRemaining = status.Summary.TotalBudget - status.Summary.TotalSpending
	status.Summary.Percentage = budgetalert.Evaluate(
		&models.Budget{Amount: status.Summary.TotalBudget}, status.Summary.TotalSpending,
	).Percentage

	return status, nil
}

// GetAlerts lists active budgets whose spending has reached at least one
// alert threshold.
func (s *budgetService) GetAlerts(userID string, ref time.Time) ([]BudgetAlert, error) {
	budgets, err := s.FindActive(userID)
	if err != nil {
		return nil, err
	}

	alerts := make([]BudgetAlert, 0)
	for i := range budgets {
		b := &budgets[i]
		if !b.NotificationEnabled {
			continue
		}
		spent, _, err := s.spending.CurrentSpending(userID, b.CategoryName, b.Period, windowAnchor(b, ref))
		if err != nil {
			return nil, err
		}
		eval := budgetalert.Evaluate(b, spent)
		if len(eval.Triggered) == 0 {
			continue
		}
		alerts = append(alerts, BudgetAlert{
			BudgetID:        b.ID,
			CategoryName:    b.Label(),
			Amount:          b.Amount,
			CurrentSpending: spent,
			Percentage:      eval.Percentage,
			TriggeredAlerts: eval.Triggered,
			IsOverBudget:    eval.IsOverBudget,
			Message:         budgetalert.Message(b, eval),
		})
	}
	return alerts, nil
}
