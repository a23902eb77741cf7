package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the remote API with its rejection
// reason extracted from the usual payload shapes.
type APIError struct {
	StatusCode int
	Message    string

	// Cross-restaurant cart conflict payload.
	Conflict          bool
	CurrentRestaurant string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an *APIError if there is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if msg := string(body); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}

	if raw, ok := fields["conflict"]; ok {
		json.Unmarshal(raw, &apiErr.Conflict)
	}
	if raw, ok := fields["current_restaurant"]; ok {
		json.Unmarshal(raw, &apiErr.CurrentRestaurant)
	}

	// The backend reports errors under several keys; take the first
	// human-readable one.
	for _, key := range []string{"error", "detail", "message"} {
		if msg := asString(fields[key]); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	if msg := firstOfList(fields["non_field_errors"]); msg != "" {
		apiErr.Message = msg
		return apiErr
	}
	// Fall back to the first field error, serializer-style.
	for key, raw := range fields {
		if key == "conflict" || key == "current_restaurant" {
			continue
		}
		if msg := firstOfList(raw); msg != "" {
			apiErr.Message = key + ": " + msg
			return apiErr
		}
		if msg := asString(raw); msg != "" {
			apiErr.Message = key + ": " + msg
			return apiErr
		}
	}
	return apiErr
}

func asString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstOfList(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return ""
	}
	return list[0]
}
