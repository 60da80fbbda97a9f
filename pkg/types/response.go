// Package types holds the JSON envelopes shared by the café API handlers and
// the cafectl client: {"data": ...} on success and {"error": {...}} otherwise.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of a failed response. Details is set only for codes
// that allow them, such as per-field validation messages.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
