package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/timewindow"
)

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Type        *models.TransactionType
	Category    *string
	MinAmount   *int64
	MaxAmount   *int64
	RecurringID *string
}

// TransactionUpdate holds the optional fields of a transaction update.
type TransactionUpdate struct {
	Type     *models.TransactionType
	Category *string
	Amount   *int64
	Note     *string
	Date     *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, transactionType models.TransactionType, category string, amount int64, note string, date time.Time) (*models.Transaction, error)
	// RecordTransaction inserts t using tx so it commits or rolls back with
	// the caller's unit of work.
	RecordTransaction(tx *gorm.DB, t *models.Transaction) error
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// SpendingAggregator sums expenses over budget windows.
type SpendingAggregator interface {
	// CurrentSpending sums the owner's expenses in the period window containing
	// anchor. A nil category covers every expense category.
	CurrentSpending(userID string, category *string, period models.BudgetPeriod, anchor time.Time) (int64, timewindow.Window, error)
	SpendingInWindow(userID string, category *string, window timewindow.Window) (int64, error)
	LatestExpenseAt(userID string, category *string, window timewindow.Window) (*time.Time, error)
	RecentExpenses(userID string, category *string, window timewindow.Window, limit int) ([]models.Transaction, error)
}

// BudgetInput holds the fields of a new budget.
type BudgetInput struct {
	CategoryName        *string
	Amount              int64
	Period              models.BudgetPeriod
	StartDate           time.Time
	AlertThresholds     []int
	NotificationEnabled *bool
}

// BudgetUpdate holds the optional fields of a budget update.
type BudgetUpdate struct {
	Amount              *int64
	Period              *models.BudgetPeriod
	AlertThresholds     []int
	NotificationEnabled *bool
	IsActive            *bool
}

// BudgetProgress contains spending vs budget data for a budget's current period.
type BudgetProgress struct {
	BudgetID           string               `json:"budget_id"`
	CategoryName       string               `json:"category_name"`
	Period             models.BudgetPeriod  `json:"period"`
	Budgeted           int64                `json:"budgeted"`
	Spent              int64                `json:"spent"`
	Remaining          int64                `json:"remaining"`
	Percentage         int                  `json:"percentage"`
	TriggeredAlerts    []int                `json:"triggered_alerts"`
	IsOverBudget       bool                 `json:"is_over_budget"`
	Window             timewindow.Window    `json:"date_range"`
	RecentTransactions []models.Transaction `json:"recent_transactions,omitempty"`
}

// BudgetSummary aggregates every active budget of a user.
type BudgetSummary struct {
	TotalBudget     int64 `json:"total_budget"`
	TotalSpending   int64 `json:"total_spending"`
	TotalRemaining  int64 `json:"total_remaining"`
	OverBudgetCount int   `json:"over_budget_count"`
	Percentage      int   `json:"percentage"`
}

// BudgetStatus is the overview of all active budgets.
type BudgetStatus struct {
	Budgets []BudgetProgress `json:"budgets"`
	Summary BudgetSummary    `json:"summary"`
}

// BudgetAlert is an active budget whose spending has crossed a threshold.
type BudgetAlert struct {
	BudgetID        string `json:"budget_id"`
	CategoryName    string `json:"category_name"`
	Amount          int64  `json:"amount"`
	CurrentSpending int64  `json:"current_spending"`
	Percentage      int    `json:"percentage"`
	TriggeredAlerts []int  `json:"triggered_alerts"`
	IsOverBudget    bool   `json:"is_over_budget"`
	Message         string `json:"message"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, input BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string, ref time.Time) (*BudgetProgress, error)
	GetBudgetStatus(userID string, ref time.Time) (*BudgetStatus, error)
	GetAlerts(userID string, ref time.Time) ([]BudgetAlert, error)
	FindActive(userID string) ([]models.Budget, error)
}

// RecurringInput holds the fields of a new recurring rule.
type RecurringInput struct {
	TemplateName          string
	Type                  models.TransactionType
	Category              string
	Amount                int64
	Note                  string
	Frequency             models.Frequency
	StartDate             time.Time
	EndDate               *time.Time
	Occurrences           *int
	NotifyBeforeExecution bool
	NotifyDays            *int
}

// RecurringUpdate holds the optional fields of a recurring rule update.
type RecurringUpdate struct {
	TemplateName          *string
	Category              *string
	Amount                *int64
	Note                  *string
	Frequency             *models.Frequency
	EndDate               *time.Time
	Occurrences           *int
	IsActive              *bool
	NotifyBeforeExecution *bool
	NotifyDays            *int
}

// Execution outcomes reported per rule.
const (
	ExecutionStatusExecuted = "executed"
	ExecutionStatusSkipped  = "skipped"
	ExecutionStatusFailed   = "failed"
)

// ExecutionResult is the outcome of running one rule.
type ExecutionResult struct {
	RecurringID   string `json:"recurring_id"`
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// BatchResult summarises one pass over every due rule.
type BatchResult struct {
	RunAt    time.Time         `json:"run_at"`
	Executed int               `json:"executed"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
	Results  []ExecutionResult `json:"results"`
}

// Execution is the product of a manual run: the updated rule and the
// transaction it created.
type Execution struct {
	Recurring   *models.RecurringTransaction `json:"recurring"`
	Transaction *models.Transaction          `json:"transaction"`
}

// RecurringServicer defines the contract for recurring rules and their execution.
type RecurringServicer interface {
	CreateRecurring(userID string, input RecurringInput) (*models.RecurringTransaction, error)
	GetUserRecurring(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error)
	GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error)
	UpdateRecurring(userID, recurringID string, update RecurringUpdate) (*models.RecurringTransaction, error)
	DeleteRecurring(userID, recurringID string) error
	GetUpcoming(userID string, days int) ([]models.RecurringTransaction, error)
	FindActiveDue(now time.Time) ([]models.RecurringTransaction, error)
	ExecuteNow(ctx context.Context, userID, recurringID string) (*Execution, error)
	ExecutePending(ctx context.Context) (*BatchResult, error)
}

// GoalInput holds the fields of a new goal.
type GoalInput struct {
	Name          string
	Description   string
	TargetAmount  int64
	CurrentAmount int64
	Deadline      time.Time
	Priority      models.GoalPriority
	Icon          string
	Color         string
}

// GoalUpdate holds the optional fields of a goal update.
type GoalUpdate struct {
	Name         *string
	Description  *string
	TargetAmount *int64
	Deadline     *time.Time
	Priority     *models.GoalPriority
	Icon         *string
	Color        *string
}

// GoalStats aggregates every goal of a user.
type GoalStats struct {
	TotalGoals           int     `json:"total_goals"`
	AchievedGoals        int     `json:"achieved_goals"`
	ActiveGoals          int     `json:"active_goals"`
	TotalTargetAmount    int64   `json:"total_target_amount"`
	TotalCurrentAmount   int64   `json:"total_current_amount"`
	TotalRemainingAmount int64   `json:"total_remaining_amount"`
	OverallProgress      float64 `json:"overall_progress"`
	UpcomingDeadlines    int     `json:"upcoming_deadlines"`
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	CreateGoal(userID string, input GoalInput) (*models.Goal, error)
	GetUserGoals(userID string, page pagination.PageRequest, isAchieved *bool) (*pagination.PageResponse[models.Goal], error)
	GetGoalByID(userID, goalID string) (*models.Goal, error)
	UpdateGoal(userID, goalID string, update GoalUpdate) (*models.Goal, error)
	DeleteGoal(userID, goalID string) error
	AddAmount(userID, goalID string, amount int64) (*models.Goal, error)
	GetGoalStats(userID string) (*GoalStats, error)
	ListGoals(userID string) ([]models.Goal, error)
}

// Notification is one entry of the user's feed.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Time      string    `json:"time"`
	Read      bool      `json:"read"`
}

// NotificationFeed is the assembled feed returned to clients.
type NotificationFeed struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// NotificationServicer assembles the notification feed.
type NotificationServicer interface {
	GetNotifications(ctx context.Context, userID string) (*NotificationFeed, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
