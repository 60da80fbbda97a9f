package editsession

import (
	"context"
	"errors"
	"testing"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

var (
	adminCred    = Credential{Authenticated: true, UserID: "u-admin", Role: enums.RoleAdmin}
	staffCred    = Credential{Authenticated: true, UserID: "u-staff", Role: enums.RoleStaff}
	customerCred = Credential{Authenticated: true, UserID: "u-cust", Role: enums.RoleCustomer}
)

func newGate(t *testing.T, storage Storage, cred Credential) *Gate {
	t.Helper()
	g, err := NewGate(context.Background(), storage, cred)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return g
}

func TestToggleAsCustomerIsNoop(t *testing.T) {
	storage := NewMemoryStorage()
	g := newGate(t, storage, customerCred)

	if g.CanEdit() {
		t.Fatal("customer must not start in edit mode")
	}
	state, err := g.Toggle(context.Background())
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if state.Active || g.CanEdit() {
		t.Fatal("customer toggle must stay inactive")
	}
	if v, _ := storage.Get(context.Background(), FlagKey); v == flagOn {
		t.Fatal("customer toggle must not write the flag")
	}
}

func TestToggleAnonymousIsNoop(t *testing.T) {
	g := newGate(t, NewMemoryStorage(), Anonymous)
	if _, err := g.Toggle(context.Background()); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if g.CanEdit() {
		t.Fatal("anonymous visitor can never edit")
	}
	if g.State().Role != enums.RoleNone {
		t.Fatalf("expected role none, got %s", g.State().Role)
	}
}

func TestToggleAsStaffMirrorsStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	g := newGate(t, storage, staffCred)

	state, err := g.Toggle(ctx)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !state.Active || !g.CanEdit() {
		t.Fatal("staff toggle should enable edit mode")
	}
	if v, _ := storage.Get(ctx, FlagKey); v != "true" {
		t.Fatalf("expected flag \"true\", got %q", v)
	}

	if _, err := g.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if g.CanEdit() {
		t.Fatal("second toggle should disable edit mode")
	}
	if v, _ := storage.Get(ctx, FlagKey); v != "false" {
		t.Fatalf("expected flag \"false\", got %q", v)
	}
}

func TestReloadWithinSessionPreservesFlag(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	first := newGate(t, storage, adminCred)
	if _, err := first.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	reloaded := newGate(t, storage, adminCred)
	if !reloaded.CanEdit() {
		t.Fatal("same user reload should keep edit mode")
	}
}

func TestAuthenticateAsDifferentUserResets(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	g := newGate(t, storage, adminCred)
	if _, err := g.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := g.Authenticate(ctx, staffCred); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if g.CanEdit() {
		t.Fatal("a different user must not inherit edit mode")
	}
	if v, _ := storage.Get(ctx, FlagKey); v != "false" {
		t.Fatalf("expected flag reset, got %q", v)
	}

	if err := g.Authenticate(ctx, adminCred); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if g.CanEdit() {
		t.Fatal("reset flag must stay off after switching back")
	}
}

func TestAuthenticateAsIneligibleResets(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	g := newGate(t, storage, staffCred)
	if _, err := g.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	demoted := staffCred
	demoted.Role = enums.RoleCustomer
	if err := g.Authenticate(ctx, demoted); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if g.CanEdit() {
		t.Fatal("demoted user must lose edit mode")
	}
	if v, _ := storage.Get(ctx, FlagKey); v != "false" {
		t.Fatalf("expected flag reset, got %q", v)
	}
}

func TestHandleExternalChangeAndSubscribe(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	g := newGate(t, storage, adminCred)

	var seen []State
	unsubscribe := g.Subscribe(func(s State) { seen = append(seen, s) })

	// Another tab turned edit mode on.
	_ = storage.Put(ctx, FlagKey, "true")
	_ = storage.Put(ctx, OwnerKey, adminCred.UserID)
	if err := g.HandleExternalChange(ctx); err != nil {
		t.Fatalf("external change: %v", err)
	}
	if !g.CanEdit() {
		t.Fatal("expected external change to enable edit mode")
	}

	if err := g.HandleExternalChange(ctx); err != nil {
		t.Fatalf("external change: %v", err)
	}
	if len(seen) != 1 || !seen[0].Active {
		t.Fatalf("expected exactly one activation notification, got %v", seen)
	}

	unsubscribe()
	unsubscribe()
	if _, err := g.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("unsubscribed listener should not be notified, got %v", seen)
	}
}

func TestCorruptFlagTreatedAsOff(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.Put(ctx, FlagKey, "{garbage")
	_ = storage.Put(ctx, OwnerKey, adminCred.UserID)

	g := newGate(t, storage, adminCred)
	if g.CanEdit() {
		t.Fatal("unparseable flag must read as off")
	}
}

type failingStorage struct{ *MemoryStorage }

func (f *failingStorage) Put(context.Context, string, string) error {
	return errors.New("storage full")
}

func TestToggleStorageFailureKeepsState(t *testing.T) {
	storage := &failingStorage{MemoryStorage: NewMemoryStorage()}
	g := newGate(t, storage, adminCred)

	if _, err := g.Toggle(context.Background()); err == nil {
		t.Fatal("expected storage error")
	}
	if g.CanEdit() {
		t.Fatal("failed toggle must not enable edit mode")
	}
}

func TestNewGateRequiresStorage(t *testing.T) {
	if _, err := NewGate(context.Background(), nil, adminCred); err == nil {
		t.Fatal("expected error without storage")
	}
}
