package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter bounded by [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a whole number between %d and %d", key, min, max).
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}
