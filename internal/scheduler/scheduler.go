// Package scheduler drives one pass of recurring transaction execution
// against the Finman API.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"finman/internal/client"
)

// PendingExecutor defines the API operation the scheduler needs.
type PendingExecutor interface {
	ExecutePending(ctx context.Context) (*client.BatchResult, error)
}

// RuleFailure is a rule the API could not execute.
type RuleFailure struct {
	RecurringID string
	UserID      string
	Error       string
}

// RunResult contains the outcome of a scheduler run.
type RunResult struct {
	Executed int
	Skipped  int
	Failures []RuleFailure
	Duration time.Duration
}

// Scheduler triggers execution of every due recurring transaction.
type Scheduler struct {
	client PendingExecutor
	logger *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(client PendingExecutor, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{client: client, logger: logger}
}

// Run executes a single pass and reports per-rule failures. Only transport
// or API errors are returned; failed rules are part of the result.
func (s *Scheduler) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	batch, err := s.client.ExecutePending(ctx)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Executed: batch.Executed, Skipped: batch.Skipped}
	for _, r := range batch.Results {
		if r.Success {
			s.logger.Debugw("rule processed",
				"recurring_id", r.RecurringID,
				"status", r.Status,
				"transaction_id", r.TransactionID,
			)
			continue
		}
		result.Failures = append(result.Failures, RuleFailure{
			RecurringID: r.RecurringID,
			UserID:      r.UserID,
			Error:       r.Error,
		})
	}
	result.Duration = time.Since(start)

	if batch.Executed == 0 && len(result.Failures) == 0 {
		s.logger.Info("no recurring transactions due")
	}
	return result, nil
}
