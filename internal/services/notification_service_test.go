package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"finman/internal/models"
	"finman/internal/testutil"
	"finman/internal/timewindow"
)

func newNotificationTestService(db *gorm.DB, limit int) NotificationServicer {
	clock := timewindow.NewFixedClock(wednesday)
	spending := NewSpendingAggregator(db)
	transactions := NewTransactionService(db, clock)
	return NewNotificationService(
		NewBudgetService(db, spending, clock),
		spending,
		NewGoalService(db, clock),
		NewRecurringService(db, transactions, nil, clock),
		transactions,
		clock,
		NotificationConfig{LargeTransactionThreshold: 1000000, Limit: limit},
	)
}

// seedFeed creates one item of every kind plus near misses that must not
// show up in the feed.
func seedFeed(t *testing.T, db *gorm.DB, userID string) map[string]string {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := map[string]string{}

	food := testutil.CreateTestBudget(t, db, userID, strPtr("Food"), 1000000, models.BudgetPeriodMonthly, start)
	rent := testutil.CreateTestBudget(t, db, userID, strPtr("Rent"), 1000000, models.BudgetPeriodMonthly, start)
	testutil.CreateTestBudget(t, db, userID, strPtr("Fun"), 1000000, models.BudgetPeriodMonthly, start)
	ids["food"], ids["rent"] = food.ID, rent.ID

	testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeExpense, "Food", 850000, wednesday.AddDate(0, 0, -2))
	bigRent := testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeExpense, "Rent", 1200000, wednesday.AddDate(0, 0, -1))
	testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeExpense, "Fun", 100, wednesday)
	ids["big_rent"] = bigRent.ID

	for i := 1; i <= 4; i++ {
		testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeIncome, "Salary", 2000000, wednesday.Add(-time.Duration(i)*time.Hour))
	}
	testutil.CreateTestTransaction(t, db, userID, models.TransactionTypeIncome, "Salary", 2000000, wednesday.AddDate(0, 0, -8))

	done := testutil.CreateTestGoal(t, db, userID, 1000, 1000, wednesday.AddDate(0, 1, 0))
	nearly := testutil.CreateTestGoal(t, db, userID, 1000, 850, wednesday.AddDate(0, 1, 0))
	testutil.CreateTestGoal(t, db, userID, 1000, 500, wednesday.AddDate(0, 1, 0))
	ids["done"], ids["nearly"] = done.ID, nearly.ID

	overdue := testutil.CreateTestRecurring(t, db, userID, models.FrequencyMonthly, wednesday.AddDate(0, 0, -1))
	upcoming := testutil.CreateTestRecurring(t, db, userID, models.FrequencyMonthly, wednesday.AddDate(0, 0, 2))
	testutil.CreateTestRecurring(t, db, userID, models.FrequencyMonthly, wednesday.AddDate(0, 0, 10))
	ids["overdue"], ids["upcoming"] = overdue.ID, upcoming.ID

	return ids
}

func TestGetNotifications(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newNotificationTestService(db, 50)
	userID := testutil.NewUserID()
	ids := seedFeed(t, db, userID)
	// Another user's data never leaks in.
	seedFeed(t, db, testutil.NewUserID())

	feed, err := svc.GetNotifications(context.Background(), userID)
	testutil.AssertNoError(t, err)

	byID := make(map[string]Notification)
	counts := make(map[string]int)
	for _, n := range feed.Notifications {
		byID[n.ID] = n
		counts[strings.SplitN(n.ID, "-", 2)[0]]++
		if n.Read || n.Time == "" {
			t.Errorf("notification %s should be unread with a relative time", n.ID)
		}
	}

	if len(feed.Notifications) != 10 || feed.UnreadCount != 10 {
		t.Fatalf("expected 10 notifications, got %d (unread %d)", len(feed.Notifications), feed.UnreadCount)
	}

	expect := map[string]string{
		"budget-" + ids["food"]:                 NotificationWarning,
		"budget-" + ids["rent"]:                 NotificationError,
		"goal-completed-" + ids["done"]:         NotificationSuccess,
		"goal-progress-" + ids["nearly"]:        NotificationInfo,
		"recurring-overdue-" + ids["overdue"]:   NotificationWarning,
		"recurring-upcoming-" + ids["upcoming"]: NotificationInfo,
		"large-expense-" + ids["big_rent"]:      NotificationInfo,
	}
	for id, typ := range expect {
		n, ok := byID[id]
		if !ok {
			t.Errorf("missing notification %s", id)
			continue
		}
		if n.Type != typ {
			t.Errorf("notification %s: expected type %s, got %s", id, typ, n.Type)
		}
	}
	if counts["large"] != 4 {
		t.Errorf("expected 1 large expense and 3 large incomes, got %d", counts["large"])
	}

	food := byID["budget-"+ids["food"]]
	if !food.CreatedAt.Equal(wednesday.AddDate(0, 0, -2)) {
		t.Errorf("budget timestamp should be the latest expense, got %v", food.CreatedAt)
	}
	overdue := byID["recurring-overdue-"+ids["overdue"]]
	if !overdue.CreatedAt.Equal(wednesday.AddDate(0, 0, -1)) {
		t.Errorf("overdue timestamp should be the next execution, got %v", overdue.CreatedAt)
	}

	for i := 1; i < len(feed.Notifications); i++ {
		if feed.Notifications[i].CreatedAt.After(feed.Notifications[i-1].CreatedAt) {
			t.Fatalf("feed not sorted newest first at %d", i)
		}
	}
}

func TestGetNotifications_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newNotificationTestService(db, 3)
	userID := testutil.NewUserID()
	seedFeed(t, db, userID)

	feed, err := svc.GetNotifications(context.Background(), userID)
	testutil.AssertNoError(t, err)
	if len(feed.Notifications) != 3 || feed.UnreadCount != 3 {
		t.Errorf("expected 3 notifications, got %d", len(feed.Notifications))
	}
}

func TestGetNotifications_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newNotificationTestService(db, 10)

	feed, err := svc.GetNotifications(context.Background(), testutil.NewUserID())
	testutil.AssertNoError(t, err)
	if feed.Notifications == nil || len(feed.Notifications) != 0 || feed.UnreadCount != 0 {
		t.Errorf("expected an empty, non-nil feed, got %+v", feed)
	}
}
