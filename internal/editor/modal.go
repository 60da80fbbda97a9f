package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

// FallbackMessage is shown when a failed save carries no server message.
const FallbackMessage = "Failed to save changes"

// Record is a content record: field name to value.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record id, accepting either "id" or "_id".
func (r Record) ID() string {
	for _, key := range []string{"id", "_id"} {
		switch v := r[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Updater sends a content update and returns the stored record.
type Updater interface {
	Update(ctx context.Context, method, path string, body map[string]any) (map[string]any, error)
}

// Modal is one open editor for a single record.
type Modal struct {
	spec    Spec
	path    string
	initial Record
	client  Updater
	onSave  func(Record)

	mu         sync.Mutex
	values     Record
	submitting bool
	closed     bool
	message    string
	fieldErrs  map[string]string
}

// Open builds a modal for contentType seeded from initial. Network targets
// need a client; per-id targets need the record id.
func Open(contentType enums.ContentType, initial Record, client Updater, onSave func(Record)) (*Modal, error) {
	spec, err := Lookup(contentType)
	if err != nil {
		return nil, err
	}
	if initial == nil {
		initial = Record{}
	}
	path, err := spec.Path(initial.ID())
	if err != nil {
		return nil, err
	}
	if !spec.Target.Local && client == nil {
		return nil, fmt.Errorf("content client is required for %s", contentType)
	}

	values := Record{}
	for _, f := range spec.Fields {
		if v, ok := initial[f.Name]; ok {
			values[f.Name] = v
		}
	}

	return &Modal{
		spec:    spec,
		path:    path,
		initial: initial.Clone(),
		client:  client,
		onSave:  onSave,
		values:  values,
	}, nil
}

func (m *Modal) Spec() Spec { return m.spec }

// Values returns a copy of the current form values.
func (m *Modal) Values() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Clone()
}

// Value returns the current value of one field.
func (m *Modal) Value(name string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name]
}

// Set edits one field of the type's field set.
func (m *Modal) Set(name string, value any) error {
	if _, ok := m.spec.Field(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[name] = value
	return nil
}

// Submitting reports whether a save is in flight; the submit control is disabled meanwhile.
func (m *Modal) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

func (m *Modal) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Message is the notice shown after the last failed submit.
func (m *Modal) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// FieldErrors returns the validation problems of the last submit.
func (m *Modal) FieldErrors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.fieldErrs))
	for k, v := range m.fieldErrs {
		out[k] = v
	}
	return out
}

// Close dismisses the modal. A response arriving afterwards is ignored.
func (m *Modal) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// body is the initial record overlaid with the normalized values, so an
// unchanged record submits identically every time.
func (m *Modal) body(normalized Record) map[string]any {
	merged := m.initial.Clone()
	for k, v := range normalized {
		merged[k] = v
	}
	if m.spec.Target.Wrap != "" {
		return map[string]any{m.spec.Target.Wrap: map[string]any(merged)}
	}
	return merged
}

// Submit validates and saves. Validation failures return a *ValidationError
// without sending anything. API failures keep the modal open with its values.
func (m *Modal) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	normalized, err := Validate(m.spec, m.values)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			m.fieldErrs = verr.Fields
		}
		m.message = err.Error()
		m.mu.Unlock()
		return err
	}
	m.fieldErrs = nil
	m.message = ""
	m.submitting = true
	body := m.body(normalized)
	m.mu.Unlock()

	var updated Record
	if m.spec.Target.Local {
		updated = Record(body)
	} else {
		resp, err := m.client.Update(ctx, m.spec.Target.Method, m.path, body)

		m.mu.Lock()
		m.submitting = false
		if m.closed {
			m.mu.Unlock()
			return ErrClosed
		}
		if err != nil {
			m.message = messageFor(err)
			m.mu.Unlock()
			return err
		}
		m.mu.Unlock()
		updated = m.unwrap(resp, body)
	}

	if m.onSave != nil {
		m.onSave(updated)
	}

	m.mu.Lock()
	m.submitting = false
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Modal) unwrap(resp map[string]any, sent map[string]any) Record {
	if resp == nil {
		resp = sent
	}
	if key := m.spec.Target.Wrap; key != "" {
		if inner, ok := resp[key].(map[string]any); ok {
			return Record(inner)
		}
		if inner, ok := sent[key].(map[string]any); ok {
			return Record(inner)
		}
	}
	return Record(resp)
}

// publicMessager is implemented by API errors that carry a server message.
type publicMessager interface {
	PublicMessage() string
}

func messageFor(err error) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := strings.TrimSpace(pm.PublicMessage()); msg != "" {
			return msg
		}
	}
	return FallbackMessage
}
