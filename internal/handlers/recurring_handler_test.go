package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finman/internal/errors"
	"finman/internal/models"
	"finman/internal/pagination"
	"finman/internal/services"
)

// --- mock recurring service ---

type mockRecurringService struct {
	createRecurringFn  func(userID string, input services.RecurringInput) (*models.RecurringTransaction, error)
	getUserRecurringFn func(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error)
	getRecurringByIDFn func(userID, recurringID string) (*models.RecurringTransaction, error)
	updateRecurringFn  func(userID, recurringID string, update services.RecurringUpdate) (*models.RecurringTransaction, error)
	deleteRecurringFn  func(userID, recurringID string) error
	getUpcomingFn      func(userID string, days int) ([]models.RecurringTransaction, error)
	executeNowFn       func(ctx context.Context, userID, recurringID string) (*services.Execution, error)
	executePendingFn   func(ctx context.Context) (*services.BatchResult, error)
}

func (m *mockRecurringService) CreateRecurring(userID string, input services.RecurringInput) (*models.RecurringTransaction, error) {
	if m.createRecurringFn != nil {
		return m.createRecurringFn(userID, input)
	}
	return &models.RecurringTransaction{}, nil
}

func (m *mockRecurringService) GetUserRecurring(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error) {
	if m.getUserRecurringFn != nil {
		return m.getUserRecurringFn(userID, page, isActive)
	}
	resp := pagination.NewPageResponse([]models.RecurringTransaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockRecurringService) GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	if m.getRecurringByIDFn != nil {
		return m.getRecurringByIDFn(userID, recurringID)
	}
	return &models.RecurringTransaction{}, nil
}

func (m *mockRecurringService) UpdateRecurring(userID, recurringID string, update services.RecurringUpdate) (*models.RecurringTransaction, error) {
	if m.updateRecurringFn != nil {
		return m.updateRecurringFn(userID, recurringID, update)
	}
	return &models.RecurringTransaction{}, nil
}

func (m *mockRecurringService) DeleteRecurring(userID, recurringID string) error {
	if m.deleteRecurringFn != nil {
		return m.deleteRecurringFn(userID, recurringID)
	}
	return nil
}

func (m *mockRecurringService) GetUpcoming(userID string, days int) ([]models.RecurringTransaction, error) {
	if m.getUpcomingFn != nil {
		return m.getUpcomingFn(userID, days)
	}
	return []models.RecurringTransaction{}, nil
}

func (m *mockRecurringService) FindActiveDue(_ time.Time) ([]models.RecurringTransaction, error) {
	return nil, nil
}

func (m *mockRecurringService) ExecuteNow(ctx context.Context, userID, recurringID string) (*services.Execution, error) {
	if m.executeNowFn != nil {
		return m.executeNowFn(ctx, userID, recurringID)
	}
	return &services.Execution{Recurring: &models.RecurringTransaction{}, Transaction: &models.Transaction{}}, nil
}

func (m *mockRecurringService) ExecutePending(ctx context.Context) (*services.BatchResult, error) {
	if m.executePendingFn != nil {
		return m.executePendingFn(ctx)
	}
	return &services.BatchResult{Results: []services.ExecutionResult{}}, nil
}

var _ services.RecurringServicer = (*mockRecurringService)(nil)

func setupRecurringRouter(handler *RecurringHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/recurring", handler.CreateRecurring)
	auth.GET("/recurring", handler.GetRecurring)
	auth.GET("/recurring/upcoming", handler.GetUpcoming)
	auth.GET("/recurring/:id", handler.GetRecurringByID)
	auth.PUT("/recurring/:id", handler.UpdateRecurring)
	auth.DELETE("/recurring/:id", handler.DeleteRecurring)
	auth.POST("/recurring/:id/execute", handler.ExecuteNow)
	return r
}

func TestRecurringHandler_CreateRecurring(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.RecurringInput
		svc := &mockRecurringService{
			createRecurringFn: func(userID string, input services.RecurringInput) (*models.RecurringTransaction, error) {
				got = input
				next := input.StartDate
				return &models.RecurringTransaction{
					Base:          models.Base{ID: testID},
					UserID:        userID,
					TemplateName:  input.TemplateName,
					Frequency:     input.Frequency,
					Amount:        input.Amount,
					NextExecution: &next,
					IsActive:      true,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupRecurringRouter(NewRecurringHandler(svc, audit))

		rec := doRequest(r, "POST", "/recurring",
			`{"template_name":"Rent","type":"expense","category":"Housing","amount":1500000,"frequency":"monthly","start_date":"2024-01-31","end_date":"2024-12-31","occurrences":12}`)

		assertStatus(t, rec, http.StatusCreated)
		rule := parseJSON(t, rec)["recurring"].(map[string]interface{})
		if rule["template_name"] != "Rent" || rule["is_active"] != true {
			t.Errorf("unexpected rule %v", rule)
		}
		if got.EndDate == nil || got.Occurrences == nil || *got.Occurrences != 12 {
			t.Errorf("expected end date and occurrences, got %+v", got)
		}
		if !got.StartDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected start %v", got.StartDate)
		}
		audit.assertLogged(t, "CREATE_RECURRING", testID)
	})

	t.Run("returns 400 on unknown frequency", func(t *testing.T) {
		r := setupRecurringRouter(NewRecurringHandler(&mockRecurringService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/recurring",
			`{"template_name":"Rent","type":"expense","category":"Housing","amount":1,"frequency":"hourly"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns service validation errors", func(t *testing.T) {
		svc := &mockRecurringService{
			createRecurringFn: func(_ string, _ services.RecurringInput) (*models.RecurringTransaction, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must be after start date")
			},
		}
		r := setupRecurringRouter(NewRecurringHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/recurring",
			`{"template_name":"Rent","type":"expense","category":"Housing","amount":1,"frequency":"daily","start_date":"2024-02-01","end_date":"2024-01-01"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestRecurringHandler_GetRecurring(t *testing.T) {
	var gotActive *bool
	svc := &mockRecurringService{
		getUserRecurringFn: func(_ string, _ pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error) {
			gotActive = isActive
			resp := pagination.NewPageResponse([]models.RecurringTransaction{}, 1, 20, 0)
			return &resp, nil
		},
	}
	r := setupRecurringRouter(NewRecurringHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/recurring?is_active=false", "")
	assertStatus(t, rec, http.StatusOK)
	if gotActive == nil || *gotActive {
		t.Errorf("expected is_active=false filter, got %v", gotActive)
	}
}

func TestRecurringHandler_UpdateRecurring(t *testing.T) {
	t.Run("pauses a rule", func(t *testing.T) {
		var got services.RecurringUpdate
		svc := &mockRecurringService{
			updateRecurringFn: func(_, _ string, update services.RecurringUpdate) (*models.RecurringTransaction, error) {
				got = update
				return &models.RecurringTransaction{DeactivationReason: models.DeactivationManual}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupRecurringRouter(NewRecurringHandler(svc, audit))

		rec := doRequest(r, "PUT", "/recurring/"+testID, `{"is_active":false}`)
		assertStatus(t, rec, http.StatusOK)
		if got.IsActive == nil || *got.IsActive {
			t.Errorf("expected is_active=false, got %+v", got)
		}
		audit.assertLogged(t, "UPDATE_RECURRING", testID)
	})

	t.Run("returns 409 on conflict", func(t *testing.T) {
		svc := &mockRecurringService{
			updateRecurringFn: func(_, _ string, _ services.RecurringUpdate) (*models.RecurringTransaction, error) {
				return nil, apperrors.ErrExecutionConflict
			},
		}
		r := setupRecurringRouter(NewRecurringHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/recurring/"+testID, `{"amount":10}`)
		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "EXECUTION_CONFLICT")
	})
}

func TestRecurringHandler_DeleteRecurring(t *testing.T) {
	svc := &mockRecurringService{
		deleteRecurringFn: func(_, _ string) error { return apperrors.ErrRecurringNotFound },
	}
	r := setupRecurringRouter(NewRecurringHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "DELETE", "/recurring/"+testID, "")
	assertStatus(t, rec, http.StatusNotFound)
	assertErrorCode(t, parseJSON(t, rec), "RECURRING_NOT_FOUND")
}

func TestRecurringHandler_GetUpcoming(t *testing.T) {
	t.Run("defaults to a week", func(t *testing.T) {
		var gotDays int
		svc := &mockRecurringService{
			getUpcomingFn: func(_ string, days int) ([]models.RecurringTransaction, error) {
				gotDays = days
				return []models.RecurringTransaction{}, nil
			},
		}
		r := setupRecurringRouter(NewRecurringHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/recurring/upcoming", "")
		assertStatus(t, rec, http.StatusOK)
		if gotDays != 7 {
			t.Errorf("expected 7 days, got %d", gotDays)
		}
	})

	t.Run("returns 400 on non-numeric days", func(t *testing.T) {
		r := setupRecurringRouter(NewRecurringHandler(&mockRecurringService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/recurring/upcoming?days=soon", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestRecurringHandler_ExecuteNow(t *testing.T) {
	t.Run("returns 201 with the new transaction", func(t *testing.T) {
		svc := &mockRecurringService{
			executeNowFn: func(_ context.Context, userID, recurringID string) (*services.Execution, error) {
				return &services.Execution{
					Recurring:   &models.RecurringTransaction{Base: models.Base{ID: recurringID}, ExecutedCount: 1},
					Transaction: &models.Transaction{Base: models.Base{ID: "tx-1"}, UserID: userID},
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupRecurringRouter(NewRecurringHandler(svc, audit))

		rec := doRequest(r, "POST", "/recurring/"+testID+"/execute", "")
		assertStatus(t, rec, http.StatusCreated)
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["id"] != "tx-1" {
			t.Errorf("unexpected transaction %v", tx)
		}
		audit.assertLogged(t, "EXECUTE_RECURRING", testID)
	})

	t.Run("returns 500 when materialization fails", func(t *testing.T) {
		svc := &mockRecurringService{
			executeNowFn: func(_ context.Context, _, _ string) (*services.Execution, error) {
				return nil, apperrors.ErrMaterializationFailed
			},
		}
		r := setupRecurringRouter(NewRecurringHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/recurring/"+testID+"/execute", "")
		assertStatus(t, rec, http.StatusInternalServerError)
		assertErrorCode(t, parseJSON(t, rec), "MATERIALIZATION_FAILED")
	})
}
