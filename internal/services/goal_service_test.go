package services

import (
	"testing"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/testutil"
	"finman/internal/timewindow"
)

func newGoalTestService(db *gorm.DB) GoalServicer {
	return NewGoalService(db, timewindow.NewFixedClock(wednesday))
}

func TestCreateGoal(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newGoalTestService(db)

		goal, err := svc.CreateGoal(testutil.NewUserID(), GoalInput{
			Name:         "Laptop",
			TargetAmount: 2000000,
			Deadline:     wednesday.AddDate(0, 6, 0),
		})
		testutil.AssertNoError(t, err)
		if goal.Priority != models.GoalPriorityMedium || goal.Icon != "🎯" || goal.Color != "#3B82F6" {
			t.Errorf("expected defaults, got %+v", goal)
		}
		if goal.IsAchieved {
			t.Error("new goal should not be achieved")
		}
	})

	t.Run("already_funded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newGoalTestService(db)

		goal, err := svc.CreateGoal(testutil.NewUserID(), GoalInput{
			Name: "Bike", TargetAmount: 100, CurrentAmount: 100, Deadline: wednesday,
		})
		testutil.AssertNoError(t, err)
		if !goal.IsAchieved || goal.AchievedDate == nil {
			t.Error("expected goal to be achieved on creation")
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newGoalTestService(db)

		_, err := svc.CreateGoal(testutil.NewUserID(), GoalInput{Name: "", TargetAmount: 1, Deadline: wednesday})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
		_, err = svc.CreateGoal(testutil.NewUserID(), GoalInput{Name: "X", TargetAmount: 0, Deadline: wednesday})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
		_, err = svc.CreateGoal(testutil.NewUserID(), GoalInput{Name: "X", TargetAmount: 1})
		testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
	})
}

func TestGetUserGoals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newGoalTestService(db)
	userID := testutil.NewUserID()

	late := testutil.CreateTestGoal(t, db, userID, 100, 0, wednesday.AddDate(1, 0, 0))
	early := testutil.CreateTestGoal(t, db, userID, 100, 0, wednesday.AddDate(0, 1, 0))
	testutil.CreateTestGoal(t, db, userID, 100, 100, wednesday.AddDate(0, 2, 0))

	result, err := svc.GetUserGoals(userID, pagination.PageRequest{}, nil)
	testutil.AssertNoError(t, err)
	if result.TotalItems != 3 || result.Data[0].ID != early.ID || result.Data[2].ID != late.ID {
		t.Errorf("expected goals ordered by deadline, got %+v", result.Data)
	}

	achieved := true
	result, err = svc.GetUserGoals(userID, pagination.PageRequest{}, &achieved)
	testutil.AssertNoError(t, err)
	if result.TotalItems != 1 {
		t.Errorf("expected 1 achieved goal, got %d", result.TotalItems)
	}
}

func TestAddAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newGoalTestService(db)
	userID := testutil.NewUserID()
	goal := testutil.CreateTestGoal(t, db, userID, 1000, 500, wednesday.AddDate(0, 1, 0))

	updated, err := svc.AddAmount(userID, goal.ID, 300)
	testutil.AssertNoError(t, err)
	if updated.CurrentAmount != 800 || updated.IsAchieved {
		t.Errorf("unexpected goal after partial contribution: %+v", updated)
	}

	updated, err = svc.AddAmount(userID, goal.ID, 300)
	testutil.AssertNoError(t, err)
	if updated.CurrentAmount != 1100 || !updated.IsAchieved || updated.AchievedDate == nil {
		t.Errorf("expected achieved goal, got %+v", updated)
	}

	_, err = svc.AddAmount(userID, goal.ID, 0)
	testutil.AssertAppError(t, err, apperrors.ErrInvalidInput)
	_, err = svc.AddAmount(testutil.NewUserID(), goal.ID, 10)
	testutil.AssertAppError(t, err, apperrors.ErrGoalNotFound)
}

func TestUpdateGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newGoalTestService(db)
	userID := testutil.NewUserID()
	goal := testutil.CreateTestGoal(t, db, userID, 1000, 600, wednesday.AddDate(0, 1, 0))

	target := int64(500)
	name := "Smaller goal"
	updated, err := svc.UpdateGoal(userID, goal.ID, GoalUpdate{TargetAmount: &target, Name: &name})
	testutil.AssertNoError(t, err)
	if updated.Name != name || updated.TargetAmount != 500 {
		t.Errorf("unexpected update %+v", updated)
	}
	if !updated.IsAchieved {
		t.Error("lowering the target below the saved amount should achieve the goal")
	}
}

func TestDeleteGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newGoalTestService(db)
	userID := testutil.NewUserID()
	goal := testutil.CreateTestGoal(t, db, userID, 1000, 0, wednesday)

	testutil.AssertNoError(t, svc.DeleteGoal(userID, goal.ID))
	_, err := svc.GetGoalByID(userID, goal.ID)
	testutil.AssertAppError(t, err, apperrors.ErrGoalNotFound)
}

func TestGetGoalStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newGoalTestService(db)
	userID := testutil.NewUserID()

	testutil.CreateTestGoal(t, db, userID, 1000, 1000, wednesday.AddDate(0, 0, 5))
	testutil.CreateTestGoal(t, db, userID, 2000, 500, wednesday.AddDate(0, 0, 10))
	testutil.CreateTestGoal(t, db, userID, 3000, 0, wednesday.AddDate(0, 3, 0))

	stats, err := svc.GetGoalStats(userID)
	testutil.AssertNoError(t, err)

	if stats.TotalGoals != 3 || stats.AchievedGoals != 1 || stats.ActiveGoals != 2 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.TotalTargetAmount != 6000 || stats.TotalCurrentAmount != 1500 || stats.TotalRemainingAmount != 4500 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if stats.OverallProgress != 25 {
		t.Errorf("expected 25%% overall, got %v", stats.OverallProgress)
	}
	if stats.UpcomingDeadlines != 1 {
		t.Errorf("expected 1 upcoming deadline, got %d", stats.UpcomingDeadlines)
	}
}
