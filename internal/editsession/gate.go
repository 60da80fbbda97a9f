package editsession

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

const (
	// FlagKey holds "true" or "false" in session storage.
	FlagKey = "cafe_edit_mode"
	// OwnerKey holds the id of the user who set the flag.
	OwnerKey = "cafe_edit_owner"

	flagOn  = "true"
	flagOff = "false"
)

// Storage is the session-scoped key-value store that mirrors the edit flag.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// Credential is the authentication state the gate derives the actor role from.
type Credential struct {
	Authenticated bool
	UserID        string
	Role          enums.Role
}

// Anonymous is the credential of a signed-out visitor.
var Anonymous = Credential{Role: enums.RoleNone}

func (c Credential) role() enums.Role {
	if !c.Authenticated || !c.Role.IsValid() {
		return enums.RoleNone
	}
	return c.Role
}

func (c Credential) eligible() bool {
	return c.Authenticated && c.UserID != "" && c.role().CanEditContent()
}

// State is a snapshot of the edit session. Active is only true for admin and staff.
type State struct {
	Active bool       `json:"active"`
	Role   enums.Role `json:"role"`
}

// Gate decides whether in-place editing is available to the current actor.
// It is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	storage Storage
	cred    Credential
	active  bool

	subs   map[int]func(State)
	nextID int
}

// NewGate builds a gate for cred and derives its state from storage.
func NewGate(ctx context.Context, storage Storage, cred Credential) (*Gate, error) {
	if storage == nil {
		return nil, fmt.Errorf("session storage is required")
	}
	g := &Gate{storage: storage, cred: cred, subs: map[int]func(State){}}
	if err := g.derive(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// CanEdit reports whether the actor is authenticated as admin or staff and has edit mode on.
func (g *Gate) CanEdit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active && g.cred.eligible()
}

// State returns the current snapshot.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Gate) snapshot() State {
	return State{Active: g.active && g.cred.eligible(), Role: g.cred.role()}
}

// Toggle flips edit mode for eligible actors. For everyone else it is a no-op.
func (g *Gate) Toggle(ctx context.Context) (State, error) {
	g.mu.Lock()
	if !g.cred.eligible() {
		state := g.snapshot()
		g.mu.Unlock()
		return state, nil
	}
	before := g.snapshot()
	next := !g.active
	if err := g.write(ctx, next); err != nil {
		g.mu.Unlock()
		return before, err
	}
	g.active = next
	after := g.snapshot()
	subs := g.subscribers()
	g.mu.Unlock()

	notify(subs, before, after)
	return after, nil
}

// Authenticate swaps in a fresh credential. The flag is reset when the new
// actor is ineligible or did not set it.
func (g *Gate) Authenticate(ctx context.Context, cred Credential) error {
	g.mu.Lock()
	g.cred = cred
	g.mu.Unlock()
	return g.derive(ctx)
}

// HandleExternalChange re-reads storage after it was changed elsewhere.
func (g *Gate) HandleExternalChange(ctx context.Context) error {
	return g.derive(ctx)
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (g *Gate) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.subs[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subs, id)
			g.mu.Unlock()
		})
	}
}

func (g *Gate) derive(ctx context.Context) error {
	g.mu.Lock()
	before := g.snapshot()

	flag, err := g.storage.Get(ctx, FlagKey)
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("read edit flag: %w", err)
	}
	owner, err := g.storage.Get(ctx, OwnerKey)
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("read edit owner: %w", err)
	}

	stored := strings.TrimSpace(flag) == flagOn
	active := stored && g.cred.eligible() && owner == g.cred.UserID
	if stored && !active {
		if err := g.write(ctx, false); err != nil {
			g.mu.Unlock()
			return err
		}
	}
	g.active = active
	after := g.snapshot()
	subs := g.subscribers()
	g.mu.Unlock()

	notify(subs, before, after)
	return nil
}

// write must be called with g.mu held.
func (g *Gate) write(ctx context.Context, active bool) error {
	value, owner := flagOff, ""
	if active {
		value, owner = flagOn, g.cred.UserID
	}
	if err := g.storage.Put(ctx, FlagKey, value); err != nil {
		return fmt.Errorf("write edit flag: %w", err)
	}
	if err := g.storage.Put(ctx, OwnerKey, owner); err != nil {
		return fmt.Errorf("write edit owner: %w", err)
	}
	return nil
}

func (g *Gate) subscribers() []func(State) {
	ids := make([]int, 0, len(g.subs))
	for id := range g.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(State), 0, len(ids))
	for _, id := range ids {
		out = append(out, g.subs[id])
	}
	return out
}

func notify(subs []func(State), before, after State) {
	if before == after {
		return
	}
	for _, fn := range subs {
		fn(after)
	}
}
