package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/go-chi/chi/v5"
)

type sampleBody struct {
	Code  string `json:"code" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"A","extra":1}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	if details["code"] != "is required" {
		t.Fatalf("unexpected code message %q", details["code"])
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email message %q", details["email"])
	}
}

func TestDecodeJSONDocument(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"Hi","extra":{"nested":true}}`))
	doc, err := DecodeJSONDocument(req)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["title"] != "Hi" {
		t.Fatalf("unexpected doc %v", doc)
	}

	for _, raw := range []string{`[1,2]`, `null`, `{bad`} {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(raw))
		if _, err := DecodeJSONDocument(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", raw, err)
		}
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	if v, err := ParseQueryInt(req, "limit", 10, 1, 100); err != nil || v != 5 {
		t.Fatalf("expected 5, got %d (%v)", v, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if v, _ := ParseQueryInt(req, "limit", 10, 1, 100); v != 10 {
		t.Fatalf("expected default 10, got %d", v)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestParseUUIDParam(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "not-a-uuid")
	if _, err := ParseUUIDParam(req, "id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	req = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "5f0f1c1e-7d0e-4d33-9a43-5b8a3f1d2c10")
	if _, err := ParseUUIDParam(req, "id"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func withParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestSanitizeStringIsRuneSafe(t *testing.T) {
	if got := SanitizeString("  café\x00 latte \n", 0); got != "café latte" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := SanitizeString("crème brûlée", 4); got != "crèm" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailing(t *testing.T) {
	for _, raw := range []string{``, `{"code":"A"}{"code":"B"}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		var body sampleBody
		if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
}
