package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
)

type fakeAPI struct {
	mu         sync.Mutex
	editActive bool
	orders     []map[string]any
	orderKeys  []string
	puts       []map[string]any
	contact    map[string]any
	hoursPuts  []json.RawMessage
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, data any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "latte4ever" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"invalid credentials"}}`))
			return
		}
		write(w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user":          map[string]any{"email": body["email"], "role": "staff"},
		})
	})
	mux.HandleFunc("GET /api/v1/edit-mode", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		write(w, http.StatusOK, map[string]any{"active": f.editActive, "role": "staff"})
	})
	mux.HandleFunc("GET /api/v1/menu/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "flat-white":
			write(w, http.StatusOK, map[string]any{"id": "flat-white", "name": "Flat White", "description": "Velvety", "price": 4.5, "category": "coffee", "isAvailable": true})
		case "scone":
			write(w, http.StatusOK, map[string]any{"id": "scone", "name": "Scone", "price": 3.0, "isAvailable": false})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("PUT /api/v1/menu/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.puts = append(f.puts, body)
		f.mu.Unlock()
		write(w, http.StatusOK, body)
	})
	mux.HandleFunc("GET /api/v1/contact-info", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		write(w, http.StatusOK, f.contact)
	})
	mux.HandleFunc("PUT /api/v1/contact-info", func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		var patch map[string]any
		_ = json.Unmarshal(raw, &patch)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.hoursPuts = append(f.hoursPuts, raw)
		for k, v := range patch {
			f.contact[k] = v
		}
		write(w, http.StatusOK, f.contact)
	})
	mux.HandleFunc("POST /api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.orders = append(f.orders, body)
		f.orderKeys = append(f.orderKeys, r.Header.Get("Idempotency-Key"))
		f.mu.Unlock()
		write(w, http.StatusCreated, map[string]any{"orderNumber": "ORD-1", "status": "pending", "total": body["total"]})
	})
	return mux
}

func run(t *testing.T, apiURL, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", apiURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) (*fakeAPI, string, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(envHome, home)
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return api, srv.URL + "/api/v1", home
}

func TestLoginStoresCredentials(t *testing.T) {
	_, apiURL, home := setup(t)

	out, err := run(t, apiURL, "latte4ever\n", "login", "--email", "barista@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as barista@example.com (staff)")

	storage, err := cart.NewFileStorage(home)
	require.NoError(t, err)
	creds, err := loadCredentials(storage)
	require.NoError(t, err)
	assert.Equal(t, "access-1", creds.AccessToken)
	assert.Equal(t, "refresh-1", creds.RefreshToken)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, apiURL, _ := setup(t)
	_, err := run(t, apiURL, "wrong\n", "login", "--email", "barista@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestCartPersistsBetweenRuns(t *testing.T) {
	_, apiURL, _ := setup(t)

	_, err := run(t, apiURL, "", "cart", "add", "flat-white", "--qty", "2")
	require.NoError(t, err)

	out, err := run(t, apiURL, "", "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Flat White")
	assert.Contains(t, out, "Total: 9.00")

	_, err = run(t, apiURL, "", "cart", "set", "flat-white", "0")
	require.NoError(t, err)
	out, err = run(t, apiURL, "", "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty")
}

func TestCartRejectsUnavailableItem(t *testing.T) {
	_, apiURL, _ := setup(t)
	_, err := run(t, apiURL, "", "cart", "add", "scone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestCheckoutSendsOrderAndClearsCart(t *testing.T) {
	api, apiURL, _ := setup(t)

	_, err := run(t, apiURL, "", "cart", "add", "flat-white")
	require.NoError(t, err)

	out, err := run(t, apiURL, "", "checkout", "--name", "Ada", "--email", "ada@example.com", "--phone", "555-0100")
	require.NoError(t, err)
	assert.Contains(t, out, "Order ORD-1 placed")

	require.Len(t, api.orders, 1)
	assert.NotEmpty(t, api.orderKeys[0])
	assert.Equal(t, "Ada", api.orders[0]["customerName"])
	items, ok := api.orders[0]["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)

	_, err = run(t, apiURL, "", "checkout", "--name", "Ada", "--email", "ada@example.com", "--phone", "555-0100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestEditRequiresEditMode(t *testing.T) {
	api, apiURL, _ := setup(t)

	_, err := run(t, apiURL, "", "edit", "menu-item", "flat-white", "--set", "price=5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edit mode is off")
	assert.Empty(t, api.puts)
}

func TestEditSubmitsMergedRecord(t *testing.T) {
	api, apiURL, _ := setup(t)
	api.editActive = true

	out, err := run(t, apiURL, "", "edit", "menu-item", "flat-white", "--set", "price=5.25")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved menu-item")

	require.Len(t, api.puts, 1)
	assert.Equal(t, 5.25, api.puts[0]["price"])
	assert.Equal(t, "Flat White", api.puts[0]["name"])
}

func TestEditOpeningHoursSendsOnlyHours(t *testing.T) {
	api, apiURL, _ := setup(t)
	api.editActive = true
	api.contact = map[string]any{
		"addressCity":  "Pune",
		"phone":        "555",
		"updatedAt":    "2026-01-01T00:00:00Z",
		"openingHours": map[string]any{"monday": "8-17", "tuesday": "8-17"},
	}

	for range 2 {
		_, err := run(t, apiURL, "", "edit", "opening-hours", "--set", "monday=9-18")
		require.NoError(t, err)
	}

	require.Len(t, api.hoursPuts, 2)
	assert.JSONEq(t, `{"openingHours":{"monday":"9-18","tuesday":"8-17"}}`, string(api.hoursPuts[0]))
	assert.JSONEq(t, string(api.hoursPuts[0]), string(api.hoursPuts[1]))
	assert.Equal(t, "Pune", api.contact["addressCity"])
}

func TestEditFieldsListing(t *testing.T) {
	_, apiURL, _ := setup(t)
	out, err := run(t, apiURL, "", "edit", "menu-item", "--fields")
	require.NoError(t, err)
	assert.Contains(t, out, "price")
	assert.Contains(t, out, "category")
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"name=Mocha", "description=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Mocha", "description": "a=b"}, got)

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=x"})
	assert.Error(t, err)
}
