package content

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Record is an opaque content document.
type Record map[string]any

// Fields the server owns. They are stripped from stored payloads and set on output.
var serverFields = []string{"id", "_id", "createdAt", "updatedAt"}

var policy = bluemonday.UGCPolicy()

// clean returns a copy of rec without server-owned fields and with markup sanitized.
func clean(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = sanitizeValue(v)
	}
	for _, key := range serverFields {
		delete(out, key)
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, "<>") {
			return policy.Sanitize(val)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = sanitizeValue(inner)
		}
		return out
	default:
		return v
	}
}

func merge(base, over Record) Record {
	out := make(Record, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func present(payload map[string]any, id string, createdAt, updatedAt time.Time) Record {
	out := make(Record, len(payload)+3)
	for k, v := range payload {
		out[k] = v
	}
	if id != "" {
		out["id"] = id
	}
	if !createdAt.IsZero() {
		out["createdAt"] = createdAt.UTC().Format(time.RFC3339)
	}
	if !updatedAt.IsZero() {
		out["updatedAt"] = updatedAt.UTC().Format(time.RFC3339)
	}
	return out
}
