package services

import (
	"testing"

	"finman/internal/models"
	"finman/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	userID := testutil.NewUserID()

	svc.Log(userID, "CREATE_BUDGET", "budget", "b-1", "127.0.0.1", map[string]interface{}{"amount": 500})
	svc.Log(userID, "DELETE_BUDGET", "budget", "b-1", "127.0.0.1", nil)

	var entries []models.AuditLog
	testutil.AssertNoError(t, db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&entries).Error)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	byAction := map[string]models.AuditLog{}
	for _, e := range entries {
		byAction[e.Action] = e
	}
	if got := byAction["CREATE_BUDGET"].Changes; got != `{"amount":500}` {
		t.Errorf("unexpected changes %q", got)
	}
	if got := byAction["DELETE_BUDGET"].Changes; got != "" {
		t.Errorf("expected no changes, got %q", got)
	}
}
