package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/events"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/recurrence"
	"finman/internal/timewindow"
)

const defaultNotifyDays = 1

// recurringService manages recurring rules and executes them.
type recurringService struct {
	db           *gorm.DB
	transactions TransactionServicer
	publisher    events.Publisher
	clock        timewindow.Clock
}

// NewRecurringService creates a new RecurringServicer. A nil publisher
// discards execution events.
func NewRecurringService(db *gorm.DB, transactions TransactionServicer, publisher events.Publisher, clock timewindow.Clock) RecurringServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &recurringService{
		db:           db,
		transactions: transactions,
		publisher:    publisher,
		clock:        clock,
	}
}

// ruleError maps a schedule validation failure to an AppError.
func ruleError(err error) error {
	if errors.Is(err, recurrence.ErrUnknownFrequency) {
		return apperrors.ErrInvalidFrequency
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// CreateRecurring stores a new rule and seeds its first execution.
func (s *recurringService) CreateRecurring(userID string, input RecurringInput) (*models.RecurringTransaction, error) {
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	now := s.clock.Now()
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = now
	}
	notifyDays := defaultNotifyDays
	if input.NotifyDays != nil {
		notifyDays = *input.NotifyDays
	}

	rule := &models.RecurringTransaction{
		UserID:                userID,
		TemplateName:          strings.TrimSpace(input.TemplateName),
		Type:                  input.Type,
		Category:              strings.TrimSpace(input.Category),
		Amount:                input.Amount,
		Note:                  input.Note,
		Frequency:             input.Frequency,
		StartDate:             startDate.UTC(),
		EndDate:               utcPtr(input.EndDate),
		Occurrences:           input.Occurrences,
		NotifyBeforeExecution: input.NotifyBeforeExecution,
		NotifyDays:            notifyDays,
	}
	if err := recurrence.Validate(rule); err != nil {
		return nil, ruleError(err)
	}
	recurrence.Activate(rule, now)

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// GetUserRecurring returns a paginated list of the user's rules.
func (s *recurringService) GetUserRecurring(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error) {
	base := s.db.Model(&models.RecurringTransaction{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	result, err := pagination.Fetch[models.RecurringTransaction](base, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetRecurringByID returns a rule by ID if it belongs to the user.
func (s *recurringService) GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	return findRule(s.db, userID, recurringID)
}

func findRule(db *gorm.DB, userID, recurringID string) (*models.RecurringTransaction, error) {
	var rule models.RecurringTransaction
	if err := db.Where("id = ? AND user_id = ?", recurringID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRecurring edits a rule. Changing the frequency or re-activating the
// rule reseeds its next execution; deactivating it records a manual stop.
func (s *recurringService) UpdateRecurring(userID, recurringID string, update RecurringUpdate) (*models.RecurringTransaction, error) {
	rule, err := s.GetRecurringByID(userID, recurringID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	prevVersion := rule.Version
	wasActive := rule.IsActive
	reschedule := false

	if update.TemplateName != nil {
		rule.TemplateName = strings.TrimSpace(*update.TemplateName)
	}
	if update.Category != nil {
		rule.Category = strings.TrimSpace(*update.Category)
	}
	if update.Amount != nil {
		rule.Amount = *update.Amount
	}
	if update.Note != nil {
		rule.Note = *update.Note
	}
	if update.Frequency != nil && *update.Frequency != rule.Frequency {
		rule.Frequency = *update.Frequency
		reschedule = true
	}
	if update.EndDate != nil {
		rule.EndDate = utcPtr(update.EndDate)
	}
	if update.Occurrences != nil {
		rule.Occurrences = update.Occurrences
	}
	if update.NotifyBeforeExecution != nil {
		rule.NotifyBeforeExecution = *update.NotifyBeforeExecution
	}
	if update.NotifyDays != nil {
		rule.NotifyDays = *update.NotifyDays
	}
	if err := recurrence.Validate(rule); err != nil {
		return nil, ruleError(err)
	}

	switch {
	case update.IsActive != nil && !*update.IsActive:
		if wasActive {
			recurrence.Deactivate(rule, models.DeactivationManual)
		}
	case update.IsActive != nil && !wasActive, reschedule && wasActive:
		recurrence.Activate(rule, now)
	case wasActive:
		if reason := recurrence.TerminationReason(rule, now); reason != models.DeactivationNone {
			recurrence.Deactivate(rule, reason)
		}
	}

	if err := saveRule(s.db, rule, prevVersion); err != nil {
		return nil, err
	}
	return s.GetRecurringByID(userID, recurringID)
}

// saveRule writes every mutable column of r, provided the stored version is
// still prevVersion, and bumps the version.
func saveRule(db *gorm.DB, r *models.RecurringTransaction, prevVersion int64) error {
	res := db.Model(&models.RecurringTransaction{}).
		Where("id = ? AND version = ?", r.ID, prevVersion).
		Updates(map[string]interface{}{
			"template_name":           r.TemplateName,
			"category":                r.Category,
			"amount":                  r.Amount,
			"note":                    r.Note,
			"frequency":               r.Frequency,
			"end_date":                r.EndDate,
			"occurrences":             r.Occurrences,
			"executed_count":          r.ExecutedCount,
			"last_executed":           r.LastExecuted,
			"next_execution":          r.NextExecution,
			"is_active":               r.IsActive,
			"deactivation_reason":     r.DeactivationReason,
			"notify_before_execution": r.NotifyBeforeExecution,
			"notify_days":             r.NotifyDays,
			"version":                 prevVersion + 1,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrExecutionConflict
	}
	r.Version = prevVersion + 1
	return nil
}

// DeleteRecurring soft-deletes a rule. Transactions it already produced are kept.
func (s *recurringService) DeleteRecurring(userID, recurringID string) error {
	rule, err := s.GetRecurringByID(userID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUpcoming returns the user's active rules firing within the next days days.
func (s *recurringService) GetUpcoming(userID string, days int) ([]models.RecurringTransaction, error) {
	if days < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be at least 1")
	}
	limit := s.clock.Now().AddDate(0, 0, days)

	var rules []models.RecurringTransaction
	if err := s.db.Where("user_id = ? AND is_active = ? AND next_execution IS NOT NULL AND next_execution <= ?",
		userID, true, limit).
		Order("next_execution ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

// FindActiveDue returns every active rule, across all users, whose next
// execution is at or before now.
func (s *recurringService) FindActiveDue(now time.Time) ([]models.RecurringTransaction, error) {
	var rules []models.RecurringTransaction
	if err := s.db.Where("is_active = ? AND next_execution IS NOT NULL AND next_execution <= ?", true, now.UTC()).
		Order("next_execution ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}
