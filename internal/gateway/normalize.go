package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/sessiongate/internal/core/domain"
)

// messageFields are checked in order for a human-readable error message.
var messageFields = []string{"message", "detail", "error"}

// kindForStatus maps a non-2xx HTTP status to an error kind.
func kindForStatus(status int) domain.ErrorKind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return domain.KindValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.KindAuth
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusConflict:
		return domain.KindConflict
	case status >= 500:
		return domain.KindServer
	default:
		return domain.KindValidation
	}
}

// messageFromBody extracts the first non-empty string message field.
// Anything else yields the generic fallback.
func messageFromBody(body []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.MessageRequestFailed
	}
	for _, field := range messageFields {
		if s, ok := doc[field].(string); ok && s != "" {
			return s
		}
	}
	return domain.MessageRequestFailed
}

// normalizeStatus builds the error for a non-2xx response.
func normalizeStatus(op string, status int, body []byte) *domain.AuthError {
	return domain.NewAuthError(kindForStatus(status), op, messageFromBody(body)).
		WithStatus(status)
}

// normalizeTransport builds the error for a request that got no response.
func normalizeTransport(op string, err error) *domain.AuthError {
	return domain.NewAuthError(domain.KindNetwork, op, domain.MessageNetwork).WithCause(err)
}

// normalizePayload builds the error for a 2xx response that cannot be used.
func normalizePayload(op string, status int, err error) *domain.AuthError {
	return domain.NewAuthError(domain.KindServer, op, domain.MessageRequestFailed).
		WithStatus(status).
		WithCause(err)
}

// outcome is the metric label for a call result.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
