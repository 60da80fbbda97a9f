// Package region wraps rendered fragments so they become click-to-edit
// targets while an edit session is active.
package region

import (
	"fmt"
	"html"
	"io"
	"sort"
	"sync"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
)

// Gate is the part of the edit session a region depends on.
type Gate interface {
	CanEdit() bool
	Subscribe(fn func(editsession.State)) func()
}

// Fragment is anything that renders itself.
type Fragment interface {
	Render(w io.Writer) error
}

// Clicker is implemented by fragments with a native click behaviour.
type Clicker interface {
	Click()
}

// FragmentFunc adapts a function to Fragment.
type FragmentFunc func(w io.Writer) error

func (f FragmentFunc) Render(w io.Writer) error { return f(w) }

// HTML is a trusted, pre-rendered markup fragment.
type HTML string

func (h HTML) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(h))
	return err
}

// Option configures a Region.
type Option func(*Region)

// Disabled forces pass-through regardless of the edit session.
func Disabled() Option {
	return func(r *Region) { r.disabled = true }
}

// WithLabel sets the overlay caption.
func WithLabel(label string) Option {
	return func(r *Region) { r.label = label }
}

// WithAttr adds a data-* attribute to the overlay wrapper.
func WithAttr(name, value string) Option {
	return func(r *Region) { r.attrs[name] = value }
}

// OnVisibilityChange is called after a gate notification flips editability.
func OnVisibilityChange(fn func(editable bool)) Option {
	return func(r *Region) { r.onChange = fn }
}

// Region decorates a fragment with an edit overlay.
type Region struct {
	gate     Gate
	fragment Fragment
	onEdit   func()
	disabled bool
	label    string
	attrs    map[string]string
	onChange func(bool)

	mu          sync.Mutex
	editable    bool // last value seen by refresh
	unsubscribe func()
}

// New wraps fragment. onEdit is invoked with no arguments on click while editable.
func New(gate Gate, fragment Fragment, onEdit func(), opts ...Option) *Region {
	r := &Region{
		gate:     gate,
		fragment: fragment,
		onEdit:   onEdit,
		label:    "Edit",
		attrs:    map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.editable = r.evaluate()
	return r
}

func (r *Region) evaluate() bool {
	return !r.disabled && r.gate != nil && r.onEdit != nil && r.gate.CanEdit()
}

// Editable asks the gate on every call. The value cached by refresh only
// decides when OnVisibilityChange fires.
func (r *Region) Editable() bool {
	return r.evaluate()
}

// Render writes the fragment, wrapped in the overlay when editable.
func (r *Region) Render(w io.Writer) error {
	if r.fragment == nil {
		return nil
	}
	if !r.Editable() {
		return r.fragment.Render(w)
	}

	if _, err := fmt.Fprintf(w, `<div class="editable-region" data-editable="true"%s>`, r.renderAttrs()); err != nil {
		return err
	}
	if err := r.fragment.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		`<button type="button" class="editable-overlay" aria-label="%[1]s"><span class="editable-overlay__label">%[1]s</span></button></div>`,
		html.EscapeString(r.label))
	return err
}

func (r *Region) renderAttrs() string {
	if len(r.attrs) == 0 {
		return ""
	}
	names := make([]string, 0, len(r.attrs))
	for name := range r.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for _, name := range names {
		out += fmt.Sprintf(` data-%s="%s"`, html.EscapeString(name), html.EscapeString(r.attrs[name]))
	}
	return out
}

// Click routes a click. While editable the native behaviour is suppressed and
// onEdit runs; it returns true in that case.
func (r *Region) Click() bool {
	if r.Editable() {
		r.onEdit()
		return true
	}
	if c, ok := r.fragment.(Clicker); ok {
		c.Click()
	}
	return false
}

// Mount subscribes the region to gate notifications.
func (r *Region) Mount() {
	if r.gate == nil {
		return
	}
	r.mu.Lock()
	if r.unsubscribe != nil {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	unsubscribe := r.gate.Subscribe(func(editsession.State) { r.refresh() })

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
	r.refresh()
}

// Unmount stops gate notifications.
func (r *Region) Unmount() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (r *Region) refresh() {
	next := r.evaluate()
	r.mu.Lock()
	changed := next != r.editable
	r.editable = next
	onChange := r.onChange
	r.mu.Unlock()
	if changed && onChange != nil {
		onChange(next)
	}
}
