package services

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/timewindow"
)

const (
	defaultGoalIcon  = "🎯"
	defaultGoalColor = "#3B82F6"

	deadlineHorizonDays = 30
)

// goalService handles savings goals.
type goalService struct {
	db    *gorm.DB
	clock timewindow.Clock
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB, clock timewindow.Clock) GoalServicer {
	return &goalService{db: db, clock: clock}
}

// CreateGoal creates a savings goal.
func (s *goalService) CreateGoal(userID string, input GoalInput) (*models.Goal, error) {
	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	case input.TargetAmount <= 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	case input.CurrentAmount < 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount cannot be negative")
	case input.Deadline.IsZero():
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "deadline is required")
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		Description:   input.Description,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: input.CurrentAmount,
		Deadline:      input.Deadline.UTC(),
		Priority:      input.Priority,
		Icon:          input.Icon,
		Color:         input.Color,
	}
	if goal.Priority == "" {
		goal.Priority = models.GoalPriorityMedium
	}
	if goal.Icon == "" {
		goal.Icon = defaultGoalIcon
	}
	if goal.Color == "" {
		goal.Color = defaultGoalColor
	}
	s.markAchieved(goal)

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// markAchieved flags g once the current amount covers the target.
func (s *goalService) markAchieved(g *models.Goal) {
	if g.IsAchieved || g.CurrentAmount < g.TargetAmount {
		return
	}
	now := s.clock.Now()
	g.IsAchieved = true
	g.AchievedDate = &now
}

// GetUserGoals returns a paginated list of goals ordered by deadline.
func (s *goalService) GetUserGoals(userID string, page pagination.PageRequest, isAchieved *bool) (*pagination.PageResponse[models.Goal], error) {
	base := s.db.Model(&models.Goal{}).Where("user_id = ?", userID)
	if isAchieved != nil {
		base = base.Where("is_achieved = ?", *isAchieved)
	}

	result, err := pagination.Fetch[models.Goal](base, page, "deadline ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// ListGoals returns every goal of the user.
func (s *goalService) ListGoals(userID string) ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Where("user_id = ?", userID).Order("deadline ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetGoalByID returns a goal by ID if it belongs to the user.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal edits a goal. Raising the target above the saved amount does
// not revoke an achievement.
func (s *goalService) UpdateGoal(userID, goalID string, update GoalUpdate) (*models.Goal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
		}
		updates["name"] = name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.TargetAmount != nil {
		if *update.TargetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
		}
		updates["target_amount"] = *update.TargetAmount
		goal.TargetAmount = *update.TargetAmount
	}
	if update.Deadline != nil {
		updates["deadline"] = update.Deadline.UTC()
	}
	if update.Priority != nil {
		updates["priority"] = *update.Priority
	}
	if update.Icon != nil {
		updates["icon"] = *update.Icon
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}

	if !goal.IsAchieved {
		s.markAchieved(goal)
		if goal.IsAchieved {
			updates["is_achieved"] = true
			updates["achieved_date"] = goal.AchievedDate
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetGoalByID(userID, goalID)
}

// DeleteGoal soft-deletes a goal.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddAmount adds a contribution to a goal and marks it achieved once the
// target is reached.
func (s *goalService) AddAmount(userID, goalID string, amount int64) (*models.Goal, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var goal models.Goal
		if err := tx.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrGoalNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		goal.CurrentAmount += amount
		s.markAchieved(&goal)

		if err := tx.Model(&goal).Updates(map[string]interface{}{
			"current_amount": goal.CurrentAmount,
			"is_achieved":    goal.IsAchieved,
			"achieved_date":  goal.AchievedDate,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetGoalByID(userID, goalID)
}

// GetGoalStats aggregates every goal of the user.
func (s *goalService) GetGoalStats(userID string) (*GoalStats, error) {
	goals, err := s.ListGoals(userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	horizon := now.AddDate(0, 0, deadlineHorizonDays)
	stats := &GoalStats{TotalGoals: len(goals)}
	for i := range goals {
		g := &goals[i]
		stats.TotalTargetAmount += g.TargetAmount
		stats.TotalCurrentAmount += g.CurrentAmount
		stats.TotalRemainingAmount += g.RemainingAmount()
		if g.IsAchieved {
			stats.AchievedGoals++
			continue
		}
		stats.ActiveGoals++
		if !g.Deadline.Before(now) && !g.Deadline.After(horizon) {
			stats.UpcomingDeadlines++
		}
	}
	if stats.TotalTargetAmount > 0 {
		pct := float64(stats.TotalCurrentAmount) / float64(stats.TotalTargetAmount) * 100
		stats.OverallProgress = math.Round(pct*10) / 10
	}
	return stats, nil
}
