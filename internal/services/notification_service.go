package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"finman/internal/budgetalert"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/timewindow"
)

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

const (
	goalNotifyFrom       = 80
	recurringNotifyDays  = 3
	largeTransactionDays = 7
	largeTransactionMax  = 3
)

// notificationService assembles the feed from budgets, goals, recurring
// rules and recent large transactions.
type notificationService struct {
	budgets      BudgetServicer
	spending     SpendingAggregator
	goals        GoalServicer
	recurring    RecurringServicer
	transactions TransactionServicer
	clock        timewindow.Clock

	largeThreshold int64
	limit          int
}

// NotificationConfig tunes the feed.
type NotificationConfig struct {
	LargeTransactionThreshold int64
	Limit                     int
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(
	budgets BudgetServicer,
	spending SpendingAggregator,
	goals GoalServicer,
	recurring RecurringServicer,
	transactions TransactionServicer,
	clock timewindow.Clock,
	cfg NotificationConfig,
) NotificationServicer {
	if cfg.LargeTransactionThreshold <= 0 {
		cfg.LargeTransactionThreshold = 1000000
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	return &notificationService{
		budgets:        budgets,
		spending:       spending,
		goals:          goals,
		recurring:      recurring,
		transactions:   transactions,
		clock:          clock,
		largeThreshold: cfg.LargeTransactionThreshold,
		limit:          cfg.Limit,
	}
}

// GetNotifications builds the user's feed, newest first.
func (s *notificationService) GetNotifications(ctx context.Context, userID string) (*NotificationFeed, error) {
	now := s.clock.Now()

	var budgetItems, goalItems, recurringItems, largeItems []Notification
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		budgetItems, err = s.budgetNotifications(userID, now)
		return err
	})
	g.Go(func() (err error) {
		goalItems, err = s.goalNotifications(userID)
		return err
	})
	g.Go(func() (err error) {
		recurringItems, err = s.recurringNotifications(userID, now)
		return err
	})
	g.Go(func() (err error) {
		largeItems, err = s.largeTransactionNotifications(userID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var all []Notification
	for _, group := range [][]Notification{budgetItems, goalItems, recurringItems, largeItems} {
		for _, n := range group {
			if _, dup := seen[n.ID]; dup {
				continue
			}
			seen[n.ID] = struct{}{}
			all = append(all, n)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > s.limit {
		all = all[:s.limit]
	}
	for i := range all {
		all[i].Time = humanize.RelTime(all[i].CreatedAt, now, "ago", "from now")
	}
	if all == nil {
		all = []Notification{}
	}

	return &NotificationFeed{Notifications: all, UnreadCount: len(all)}, nil
}

func (s *notificationService) budgetNotifications(userID string, now time.Time) ([]Notification, error) {
	budgets, err := s.budgets.FindActive(userID)
	if err != nil {
		return nil, err
	}

	var out []Notification
	for i := range budgets {
		b := &budgets[i]
		spent, window, err := s.spending.CurrentSpending(userID, b.CategoryName, b.Period, windowAnchor(b, now))
		if err != nil {
			return nil, err
		}
		eval := budgetalert.Evaluate(b, spent)
		severity := budgetalert.Severity(eval.Percentage)
		if severity == "" {
			continue
		}

		at := b.UpdatedAt
		latest, err := s.spending.LatestExpenseAt(userID, b.CategoryName, window)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			at = *latest
		}

		title := "Budget warning"
		if severity == budgetalert.SeverityError {
			title = "Budget exceeded"
		}
		out = append(out, Notification{
			ID:    "budget-" + b.ID,
			Type:  severity,
			Title: title,
			Message: fmt.Sprintf("%s: %d%% (%s/%s)",
				b.Label(), eval.Percentage, humanize.Comma(spent), humanize.Comma(b.Amount)),
			CreatedAt: at,
		})
	}
	return out, nil
}

func (s *notificationService) goalNotifications(userID string) ([]Notification, error) {
	goals, err := s.goals.ListGoals(userID)
	if err != nil {
		return nil, err
	}

	var out []Notification
	for i := range goals {
		g := &goals[i]
		pct := g.ProgressPercentage()
		switch {
		case pct >= 100:
			out = append(out, Notification{
				ID:        "goal-completed-" + g.ID,
				Type:      NotificationSuccess,
				Title:     "Goal reached",
				Message:   fmt.Sprintf("Congratulations! You reached your goal %q", g.Name),
				CreatedAt: g.UpdatedAt,
			})
		case pct >= goalNotifyFrom:
			out = append(out, Notification{
				ID:    "goal-progress-" + g.ID,
				Type:  NotificationInfo,
				Title: "Goal almost reached",
				Message: fmt.Sprintf("Goal %q: %.0f%% (%s/%s)",
					g.Name, pct, humanize.Comma(g.CurrentAmount), humanize.Comma(g.TargetAmount)),
				CreatedAt: g.UpdatedAt,
			})
		}
	}
	return out, nil
}

func (s *notificationService) recurringNotifications(userID string, now time.Time) ([]Notification, error) {
	rules, err := s.recurring.GetUpcoming(userID, recurringNotifyDays)
	if err != nil {
		return nil, err
	}

	var out []Notification
	for i := range rules {
		r := &rules[i]
		if r.NextExecution == nil {
			continue
		}
		next := *r.NextExecution
		if !next.After(now) {
			out = append(out, Notification{
				ID:        "recurring-overdue-" + r.ID,
				Type:      NotificationWarning,
				Title:     "Recurring transaction overdue",
				Message:   fmt.Sprintf("%q was due %s", r.TemplateName, humanize.RelTime(next, now, "ago", "from now")),
				CreatedAt: next,
			})
			continue
		}
		out = append(out, Notification{
			ID:        "recurring-upcoming-" + r.ID,
			Type:      NotificationInfo,
			Title:     "Recurring transaction coming up",
			Message:   fmt.Sprintf("%q runs %s", r.TemplateName, humanize.RelTime(next, now, "ago", "from now")),
			CreatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *notificationService) largeTransactionNotifications(userID string, now time.Time) ([]Notification, error) {
	since := now.AddDate(0, 0, -largeTransactionDays)
	page := pagination.PageRequest{Page: 1, PageSize: largeTransactionMax}

	var out []Notification
	for _, txType := range []models.TransactionType{models.TransactionTypeExpense, models.TransactionTypeIncome} {
		txType := txType
		result, err := s.transactions.GetUserTransactions(userID, page, TransactionFilter{
			FromDate:  &since,
			Type:      &txType,
			MinAmount: &s.largeThreshold,
		})
		if err != nil {
			return nil, err
		}

		for _, t := range result.Data {
			note := t.Note
			if note == "" {
				note = "no note"
			}
			n := Notification{CreatedAt: t.Date}
			if txType == models.TransactionTypeExpense {
				n.ID = "large-expense-" + t.ID
				n.Type = NotificationInfo
				n.Title = "Large expense"
				n.Message = fmt.Sprintf("You spent %s on %q - %s", humanize.Comma(t.Amount), t.Category, note)
			} else {
				n.ID = "large-income-" + t.ID
				n.Type = NotificationSuccess
				n.Title = "Large income"
				n.Message = fmt.Sprintf("You received %s from %q - %s", humanize.Comma(t.Amount), t.Category, note)
			}
			out = append(out, n)
		}
	}
	return out, nil
}
