package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/events"
	"finman/internal/logger"
	"finman/internal/models"
	"finman/internal/recurrence"
)

// ExecutePending runs every rule that is due at the current time. Each rule
// is executed in its own database transaction; a failing rule is reported
// and left due for the next pass without affecting the others.
func (s *recurringService) ExecutePending(ctx context.Context) (*BatchResult, error) {
	now := s.clock.Now()
	log := logger.Get()

	due, err := s.FindActiveDue(now)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		RunAt:   now,
		Results: make([]ExecutionResult, 0, len(due)),
	}
	for i := range due {
		var res ExecutionResult
		if err := ctx.Err(); err != nil {
			res = ExecutionResult{
				RecurringID: due[i].ID,
				UserID:      due[i].UserID,
				Status:      ExecutionStatusFailed,
				Error:       err.Error(),
			}
		} else {
			res = s.executeDue(ctx, due[i].ID, now)
		}

		switch res.Status {
		case ExecutionStatusExecuted:
			batch.Executed++
		case ExecutionStatusSkipped:
			batch.Skipped++
		default:
			batch.Failed++
			log.Warnw("recurring execution failed",
				"recurring_id", res.RecurringID,
				"user_id", res.UserID,
				"error", res.Error,
			)
		}
		batch.Results = append(batch.Results, res)
	}

	log.Infow("recurring execution pass finished",
		"run_at", now,
		"selected", len(due),
		"executed", batch.Executed,
		"skipped", batch.Skipped,
		"failed", batch.Failed,
	)
	return batch, nil
}

// executeDue reloads one rule inside a transaction and materializes it if it
// is still due. A rule that has run its course is deactivated instead.
func (s *recurringService) executeDue(ctx context.Context, recurringID string, now time.Time) ExecutionResult {
	res := ExecutionResult{RecurringID: recurringID}
	var exec *Execution

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule models.RecurringTransaction
		if err := tx.Where("id = ?", recurringID).First(&rule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		res.UserID = rule.UserID

		if !recurrence.IsDue(&rule, now) {
			if !rule.IsActive {
				return nil
			}
			reason := recurrence.TerminationReason(&rule, now)
			if reason == models.DeactivationNone {
				return nil
			}
			prevVersion := rule.Version
			recurrence.Deactivate(&rule, reason)
			return saveRule(tx, &rule, prevVersion)
		}

		var err error
		exec, err = s.materialize(tx, &rule, now)
		return err
	})

	switch {
	case err != nil:
		res.Status = ExecutionStatusFailed
		res.Error = err.Error()
	case exec == nil:
		res.Status = ExecutionStatusSkipped
		res.Success = true
	default:
		res.Status = ExecutionStatusExecuted
		res.Success = true
		res.TransactionID = exec.Transaction.ID
		s.publish(ctx, exec, false)
	}
	return res
}

// ExecuteNow materializes one occurrence of a rule immediately, regardless
// of its schedule. An inactive rule stays inactive.
func (s *recurringService) ExecuteNow(ctx context.Context, userID, recurringID string) (*Execution, error) {
	now := s.clock.Now()
	var exec *Execution

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rule, err := findRule(tx, userID, recurringID)
		if err != nil {
			return err
		}
		exec, err = s.materialize(tx, rule, now)
		return err
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(ctx, exec, true)
	return exec, nil
}

// materialize records the next occurrence of r as a transaction and
// advances r, both through tx.
func (s *recurringService) materialize(tx *gorm.DB, r *models.RecurringTransaction, now time.Time) (*Execution, error) {
	recurringID := r.ID
	occurrence := r.ExecutedCount + 1

	transaction := &models.Transaction{
		UserID:      r.UserID,
		Type:        r.Type,
		Category:    r.Category,
		Amount:      r.Amount,
		Note:        r.TransactionNote(),
		Date:        now,
		RecurringID: &recurringID,
		Occurrence:  &occurrence,
	}
	if err := s.transactions.RecordTransaction(tx, transaction); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMaterializationFailed, err)
	}

	prevVersion := r.Version
	if err := recurrence.RecordExecution(r, now); err != nil {
		return nil, ruleError(err)
	}
	if err := saveRule(tx, r, prevVersion); err != nil {
		return nil, err
	}

	return &Execution{Recurring: r, Transaction: transaction}, nil
}

// publish announces a committed execution. Delivery failures are logged only.
func (s *recurringService) publish(ctx context.Context, exec *Execution, manual bool) {
	r, t := exec.Recurring, exec.Transaction
	log := logger.Get()

	log.Infow("recurring transaction executed",
		"recurring_id", r.ID,
		"user_id", r.UserID,
		"transaction_id", t.ID,
		"occurrence", r.ExecutedCount,
		"manual", manual,
		"is_active", r.IsActive,
	)

	err := s.publisher.PublishRecurringExecuted(ctx, &events.RecurringExecuted{
		RecurringID:   r.ID,
		UserID:        r.UserID,
		TransactionID: t.ID,
		Occurrence:    r.ExecutedCount,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Category:      t.Category,
		ExecutedAt:    t.Date,
		NextExecution: r.NextExecution,
		IsActive:      r.IsActive,
		Manual:        manual,
	})
	if err != nil {
		log.Warnw("failed to publish recurring executed event",
			"recurring_id", r.ID,
			"error", err,
		)
	}
}
