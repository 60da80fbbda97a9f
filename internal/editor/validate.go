package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownType    = errors.New("unknown content type")
	ErrUnknownField   = errors.New("field is not editable for this content type")
	ErrMissingID      = errors.New("record id is required for this content type")
	ErrSubmitInFlight = errors.New("a save is already in progress")
	ErrClosed         = errors.New("editor is closed")
)

// ValidationError maps field names to problems. No request is sent while one is present.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks values against spec and returns the normalized values.
// Numeric fields are coerced to numbers and ratings are clamped to 1..5.
func Validate(spec Spec, values Record) (Record, error) {
	out := make(Record, len(values))
	problems := map[string]string{}

	for _, f := range spec.Fields {
		raw, present := values[f.Name]
		if isEmpty(raw) {
			if f.Required {
				problems[f.Name] = f.Label + " is required"
			}
			if present {
				out[f.Name] = raw
			}
			continue
		}

		switch {
		case f.Name == "rating":
			n, err := toNumber(raw)
			if err != nil {
				problems[f.Name] = f.Label + " must be a number"
				continue
			}
			out[f.Name] = clampRating(n)
		case f.Kind == KindNumber:
			n, err := toNumber(raw)
			if err != nil {
				problems[f.Name] = f.Label + " must be a number"
				continue
			}
			out[f.Name] = n
		case f.Kind == KindCheckbox:
			b, err := toBool(raw)
			if err != nil {
				problems[f.Name] = f.Label + " must be true or false"
				continue
			}
			out[f.Name] = b
		case f.Kind == KindSelect && f.Name != "rating":
			s := strings.TrimSpace(fmt.Sprint(raw))
			if !contains(f.Options, s) {
				problems[f.Name] = fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Options, ", "))
				continue
			}
			out[f.Name] = s
		default:
			out[f.Name] = raw
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	return out, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func toNumber(v any) (float64, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}

func clampRating(n float64) int {
	r := int(math.Round(n))
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	}
	return false, fmt.Errorf("not a bool: %T", v)
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
