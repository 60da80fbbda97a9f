package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
)

func TestEditSessionBuildsGateForStaff(t *testing.T) {
	storage := editsession.NewMemoryStorage()
	if err := storage.Put(context.Background(), editsession.FlagKey, "true"); err != nil {
		t.Fatalf("seed storage: %v", err)
	}
	userID := uuid.NewString()
	if err := storage.Put(context.Background(), editsession.OwnerKey, userID); err != nil {
		t.Fatalf("seed storage: %v", err)
	}

	var canEdit bool
	handler := EditSession(storage, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gate := EditGateFromContext(r.Context())
		if gate == nil {
			t.Fatal("expected gate in context")
		}
		canEdit = gate.CanEdit()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithRole(WithUserID(req.Context(), userID), enums.RoleStaff)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))
	if !canEdit {
		t.Fatal("expected staff with edit flag on to be able to edit")
	}
}

func TestEditSessionAnonymousCannotEdit(t *testing.T) {
	storage := editsession.NewMemoryStorage()
	_ = storage.Put(context.Background(), editsession.FlagKey, "true")

	var state editsession.State
	handler := EditSession(storage, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = EditGateFromContext(r.Context()).State()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if state.Active {
		t.Fatal("anonymous visitor must never be in edit mode")
	}
	if state.Role != enums.RoleNone {
		t.Fatalf("expected role none, got %s", state.Role)
	}
}
