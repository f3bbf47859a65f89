package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, transactionType models.TransactionType, category string, amount int64, note string, date time.Time) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID string, update services.TransactionUpdate) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(userID string, transactionType models.TransactionType, category string, amount int64, note string, date time.Time) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, transactionType, category, amount, note, date)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) RecordTransaction(_ *gorm.DB, _ *models.Transaction) error {
	return nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, update services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, update)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotDate time.Time
		svc := &mockTransactionService{
			createTransactionFn: func(userID string, txType models.TransactionType, category string, amount int64, note string, date time.Time) (*models.Transaction, error) {
				gotDate = date
				return &models.Transaction{
					Base:     models.Base{ID: testID},
					UserID:   userID,
					Type:     txType,
					Category: category,
					Amount:   amount,
					Note:     note,
					Date:     date,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(svc, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","category":"Food","amount":5000,"note":"Lunch","date":"2024-03-10"}`)

		assertStatus(t, rec, http.StatusCreated)
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["category"] != "Food" || tx["amount"].(float64) != 5000 {
			t.Errorf("unexpected transaction %v", tx)
		}
		if !gotDate.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected parsed date, got %v", gotDate)
		}
		audit.assertLogged(t, "CREATE_TRANSACTION", testID)
	})

	t.Run("omitted date is passed as zero", func(t *testing.T) {
		var gotDate time.Time
		svc := &mockTransactionService{
			createTransactionFn: func(_ string, _ models.TransactionType, _ string, _ int64, _ string, date time.Time) (*models.Transaction, error) {
				gotDate = date
				return &models.Transaction{}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"type":"income","category":"Salary","amount":1}`)
		assertStatus(t, rec, http.StatusCreated)
		if !gotDate.IsZero() {
			t.Errorf("expected zero date, got %v", gotDate)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"type":"expense","category":"Food","amount":0}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"type":"transfer","category":"Food","amount":10}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"type":"expense","category":"Food","amount":10,"date":"yesterday"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := gin.New()
		r.POST("/transactions", NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}).CreateTransaction)

		rec := doRequest(r, "POST", "/transactions", `{"type":"expense","category":"Food","amount":10}`)
		assertStatus(t, rec, http.StatusUnauthorized)
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("passes filter params to service", func(t *testing.T) {
		var got services.TransactionFilter
		svc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Transaction{{Base: models.Base{ID: testID}}}, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?type=expense&category=Rent&min_amount=100&from_date=2024-03-01&recurring_id="+testID, "")
		assertStatus(t, rec, http.StatusOK)

		if got.Type == nil || *got.Type != models.TransactionTypeExpense {
			t.Errorf("expected expense filter, got %v", got.Type)
		}
		if got.Category == nil || *got.Category != "Rent" {
			t.Errorf("expected category filter, got %v", got.Category)
		}
		if got.MinAmount == nil || *got.MinAmount != 100 {
			t.Errorf("expected min_amount 100, got %v", got.MinAmount)
		}
		if got.FromDate == nil || got.ToDate != nil {
			t.Errorf("expected only from_date, got %v %v", got.FromDate, got.ToDate)
		}
		if got.RecurringID == nil || *got.RecurringID != testID {
			t.Errorf("expected recurring filter, got %v", got.RecurringID)
		}
		if parseJSON(t, rec)["total_items"].(float64) != 1 {
			t.Error("expected total_items 1")
		}
	})

	for name, query := range map[string]string{
		"invalid type":       "type=transfer",
		"invalid date":       "to_date=tomorrow",
		"invalid min_amount": "min_amount=abc",
		"invalid page size":  "page_size=1000",
	} {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", "/transactions?"+query, "")
			assertStatus(t, rec, http.StatusBadRequest)
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionByIDFn: func(_, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testID, "")
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/42", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var got services.TransactionUpdate
		svc := &mockTransactionService{
			updateTransactionFn: func(_, _ string, update services.TransactionUpdate) (*models.Transaction, error) {
				got = update
				return &models.Transaction{Note: *update.Note}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(svc, audit))

		rec := doRequest(r, "PUT", "/transactions/"+testID, `{"note":"paid"}`)
		assertStatus(t, rec, http.StatusOK)
		if got.Amount != nil || got.Type != nil || got.Date != nil {
			t.Errorf("unexpected fields in update %+v", got)
		}
		audit.assertLogged(t, "UPDATE_TRANSACTION", testID)
	})

	t.Run("returns 400 when scheduled transaction is locked", func(t *testing.T) {
		svc := &mockTransactionService{
			updateTransactionFn: func(_, _ string, _ services.TransactionUpdate) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotEditable
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/transactions/"+testID, `{"amount":5}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_EDITABLE")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	audit := &mockAuditService{}
	r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, audit))

	rec := doRequest(r, "DELETE", "/transactions/"+testID, "")
	assertStatus(t, rec, http.StatusOK)
	audit.assertLogged(t, "DELETE_TRANSACTION", testID)
}
