package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/timewindow"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db    *gorm.DB
	clock timewindow.Clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, clock timewindow.Clock) TransactionServicer {
	return &transactionService{db: db, clock: clock}
}

// CreateTransaction records a manual transaction for the user.
func (s *transactionService) CreateTransaction(
	userID string,
	transactionType models.TransactionType,
	category string,
	amount int64,
	note string,
	date time.Time,
) (*models.Transaction, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}

	transaction := &models.Transaction{
		UserID:   userID,
		Type:     transactionType,
		Category: strings.TrimSpace(category),
		Amount:   amount,
		Note:     note,
		Date:     date.UTC(),
	}
	if err := validateTransaction(transaction); err != nil {
		return nil, err
	}

	if err := s.RecordTransaction(s.db, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// RecordTransaction inserts a transaction with the given database handle,
// which may be an open transaction owned by the caller.
func (s *transactionService) RecordTransaction(tx *gorm.DB, transaction *models.Transaction) error {
	if err := validateTransaction(transaction); err != nil {
		return err
	}
	if err := tx.Create(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func validateTransaction(t *models.Transaction) error {
	if t.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !t.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if t.Category == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	return nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	result, err := pagination.Fetch[models.Transaction](base, page, "date DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.RecurringID != nil {
		q = q.Where("recurring_id = ?", *f.RecurringID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction edits a transaction. Scheduled transactions keep the
// type and amount of the rule that produced them.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.RecurringID != nil && (update.Type != nil || update.Amount != nil) {
		return nil, apperrors.ErrTransactionNotEditable
	}

	updates := make(map[string]interface{})
	if update.Type != nil {
		if !update.Type.Valid() {
			return nil, apperrors.ErrInvalidTransactionType
		}
		updates["type"] = *update.Type
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
		}
		updates["category"] = category
	}
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *update.Amount
	}
	if update.Note != nil {
		updates["note"] = *update.Note
	}
	if update.Date != nil {
		updates["date"] = update.Date.UTC()
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
