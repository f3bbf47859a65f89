package models

import (
	"math"
	"time"
)

// GoalPriority ranks savings goals.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// Goal is a savings target.
type Goal struct {
	Base
	UserID        string       `gorm:"size:36;not null;index" json:"user_id"`
	Name          string       `gorm:"size:100;not null" json:"name"`
	Description   string       `gorm:"size:500" json:"description"`
	TargetAmount  int64        `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64        `gorm:"type:bigint;not null" json:"current_amount"`
	Deadline      time.Time    `gorm:"not null;index" json:"deadline"`
	Priority      GoalPriority `gorm:"size:16;not null" json:"priority"`
	Icon          string       `gorm:"size:16" json:"icon"`
	Color         string       `gorm:"size:7" json:"color"`
	IsAchieved    bool         `gorm:"not null;index" json:"is_achieved"`
	AchievedDate  *time.Time   `json:"achieved_date,omitempty"`
}

// ProgressPercentage is current over target as a percentage, capped at 100.
func (g *Goal) ProgressPercentage() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return math.Min(float64(g.CurrentAmount)/float64(g.TargetAmount)*100, 100)
}

// RemainingAmount is how much is still missing, never negative.
func (g *Goal) RemainingAmount() int64 {
	if g.CurrentAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.CurrentAmount
}

// DaysRemaining counts whole days until the deadline, rounded up.
func (g *Goal) DaysRemaining(now time.Time) int {
	if g.IsAchieved {
		return 0
	}
	d := g.Deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// MonthlySaving suggests how much to set aside per 30 days to hit the deadline.
func (g *Goal) MonthlySaving(now time.Time) int64 {
	if g.IsAchieved {
		return 0
	}
	remaining := g.TargetAmount - g.CurrentAmount
	days := g.DaysRemaining(now)
	if days <= 0 {
		return remaining
	}
	return int64(math.Ceil(float64(remaining) / (float64(days) / 30)))
}
