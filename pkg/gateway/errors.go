package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/me/linkshort/pkg/model"
)

// errorMessage extracts a human-readable message from a failed response.
// Order: JSON "message", JSON "title", the JSON object itself, raw text,
// and finally "HTTP <status>".
func errorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Sprintf("HTTP %d", status)
	}

	var payload map[string]any
	if json.Unmarshal(trimmed, &payload) == nil && payload != nil {
		if msg, ok := payload["message"].(string); ok && msg != "" {
			return msg
		}
		if title, ok := payload["title"].(string); ok && title != "" {
			return title
		}
	}
	return string(trimmed)
}

// statusError builds the normalized error for a non-2xx response.
func statusError(op string, status int, body []byte) *model.Error {
	kind := model.KindTransport
	if status == http.StatusUnauthorized {
		kind = model.KindAuth
	}
	return &model.Error{
		Kind:    kind,
		Op:      op,
		Status:  status,
		Message: errorMessage(status, body),
	}
}

// transportError normalizes a failure that produced no HTTP response.
func transportError(op string, err error) *model.Error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	}
	return &model.Error{Kind: model.KindTransport, Op: op, Message: msg, Err: err}
}
