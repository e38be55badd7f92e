package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"docvault/internal/domain"
)

// RespondNoContent writes a 204 with no body
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondJSON writes a JSON response with the given status code.
// The body is marshaled before any header is written so an encoding
// failure still yields a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Problem is an RFC 7807 body. Extra keys are flattened next to the
// standard members.
type Problem struct {
	Type   string
	Title  string
	Status int
	Detail string
	Extra  map[string]any
}

// NewProblem fills Type and Title from the status code
func NewProblem(status int, detail string) Problem {
	return Problem{
		Type:   problemTypes[status],
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func (p Problem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		m[k] = v
	}
	typ := p.Type
	if typ == "" {
		typ = "about:blank"
	}
	m["type"] = typ
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	return json.Marshal(m)
}

// Internal reports whether the problem hides a server-side failure
func (p Problem) Internal() bool {
	return p.Status >= http.StatusInternalServerError
}

// RespondProblem writes p as application/problem+json
func RespondProblem(w http.ResponseWriter, p Problem) {
	payload, err := json.Marshal(p)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

// RespondError writes a problem with no extra members
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondProblem(w, NewProblem(status, detail))
}

// ProblemFor maps a service error to the response a client sees.
// Server-side failures carry a generic detail; callers log the cause.
func ProblemFor(err error) Problem {
	var (
		conflictErr  *domain.ConflictError
		integrityErr *domain.IntegrityError
		tooLarge     *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return NewProblem(http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrValidation):
		return NewProblem(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return NewProblem(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return NewProblem(http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return NewProblem(http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		p := NewProblem(http.StatusConflict, conflictErr.Error())
		p.Extra = map[string]any{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		}
		return p
	case errors.As(err, &integrityErr):
		return NewProblem(http.StatusInternalServerError, "data integrity violation")
	default:
		return NewProblem(http.StatusInternalServerError, "internal server error")
	}
}

var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1",
	http.StatusUnauthorized:          "https://datatracker.ietf.org/doc/html/rfc7235#section-3.1",
	http.StatusForbidden:             "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.3",
	http.StatusNotFound:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4",
	http.StatusConflict:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.8",
	http.StatusRequestEntityTooLarge: "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.11",
	http.StatusInternalServerError:   "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1",
	http.StatusServiceUnavailable:    "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.4",
}
