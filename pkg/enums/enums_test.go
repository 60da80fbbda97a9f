package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Staff ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != RoleStaff {
		t.Fatalf("expected staff got %s", role)
	}
	if _, err := ParseRole("none"); err == nil {
		t.Fatal("none is not a persisted role")
	}
}

func TestRoleCanEditContent(t *testing.T) {
	cases := map[Role]bool{
		RoleAdmin:    true,
		RoleStaff:    true,
		RoleCustomer: false,
		RoleNone:     false,
		Role(""):     false,
	}
	for role, want := range cases {
		if got := role.CanEditContent(); got != want {
			t.Fatalf("role %q expected %v got %v", role, want, got)
		}
	}
}

func TestContentTypesComplete(t *testing.T) {
	types := ContentTypes()
	if len(types) != 16 {
		t.Fatalf("expected 16 content types got %d", len(types))
	}
	for _, ct := range types {
		parsed, err := ParseContentType(ct.String())
		if err != nil || parsed != ct {
			t.Fatalf("round trip failed for %s", ct)
		}
	}
	if ContentType("banner").IsValid() {
		t.Fatal("unexpected valid content type")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	if !OrderStatusPending.CanTransitionTo(OrderStatusConfirmed) {
		t.Fatal("pending should move to confirmed")
	}
	if OrderStatusCompleted.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("completed orders are terminal")
	}
	if OrderStatusReady.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("ready orders cannot be cancelled")
	}
}
