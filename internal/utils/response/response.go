// Package response provides helpers for writing consistent JSON output
// and for turning store errors into the messages users actually see.
//
// The store never produces user-visible text; this package is the only
// place where an error kind becomes a sentence.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aanand-mishra/academic-records/internal/storage"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope for every command's output.
//
//	{ "status": "ok", "data": { ... } }
//	{ "status": "error", "error": "field roll is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Status string constants — use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as indented JSON followed by a newline.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// OK wraps a successful result.
func OK(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// GeneralError wraps any error into the standard envelope.
func GeneralError(err error) Response {
	return Response{Status: StatusError, Error: Message(err)}
}

// Message maps an error to the text shown to the user, based on its kind.
func Message(err error) string {
	var verr *storage.ValidationError

	switch {
	case errors.As(err, &verr):
		return ValidationError(verr.Fields).Error
	case errors.Is(err, storage.ErrValidation):
		return "the store rejected an invalid value"
	case errors.Is(err, storage.ErrDuplicateKey):
		return "a student with this roll number already exists"
	case errors.Is(err, storage.ErrNotFound):
		return "record not found"
	case errors.Is(err, storage.ErrStoreUnavailable):
		return "record store is unavailable: " + err.Error()
	default:
		return err.Error()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts the rejected fields into a single human-readable
// Response. Each field becomes a plain English sentence; sentences are
// joined with ", ".
//
//	{ "status": "error", "error": "field name is required, field dob must be a date in YYYY-MM-DD form" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(fields []storage.FieldError) Response {
	msgs := make([]string, 0, len(fields))

	for _, f := range fields {
		switch f.Tag {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("field %s is required", f.Field))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("field %s must be a date in YYYY-MM-DD form", f.Field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s",
				f.Field, strings.Join(strings.Fields(f.Param), ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", f.Field))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
	}
}
