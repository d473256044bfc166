package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. Unknown fields are
// rejected so typos surface as 400s.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("Request body is empty")
		case errors.As(err, &maxErr):
			return badRequest("Request body too large")
		default:
			return badRequest("Invalid request body: " + err.Error())
		}
	}
	if dec.More() {
		return badRequest("Request body must contain a single JSON object")
	}
	return nil
}

// Amount accepts a JSON number or string and normalizes it with
// core.ParseAmount, so "1.234,56" and 1234.56 are the same value.
type Amount struct {
	decimal.Decimal
	set bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return fmt.Errorf("amount %s: %w", string(b), err)
	}
	a.Decimal, a.set = d, true
	return nil
}

// Set reports whether the field was present in the body.
func (a Amount) Set() bool { return a.set }

// parseFilter reads list query parameters.
func parseFilter(q url.Values) (ledger.Filter, error) {
	f := ledger.Filter{
		ProjectID: sanitizeInput(q.Get("projectId")),
		Category:  strings.ToLower(sanitizeInput(q.Get("category"))),
		Status:    strings.ToLower(sanitizeInput(q.Get("status"))),
	}

	var err error
	if f.From, err = parseDateParam(q, "startDate"); err != nil {
		return f, err
	}
	if f.To, err = parseDateParam(q, "endDate"); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From.Time) {
		return f, badRequest("endDate must not be before startDate")
	}
	if f.Page, err = parseIntParam(q, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = parseIntParam(q, "limit"); err != nil {
		return f, err
	}
	return f.Normalize(), nil
}

func parseDateParam(q url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, badRequest(fmt.Sprintf("%s must be YYYY-MM-DD", key))
	}
	return d, nil
}

func parseIntParam(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

// parseBoolParam treats "true", "1" and "yes" as true.
func parseBoolParam(q url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(q.Get(key))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func idParam(r *http.Request) string {
	return sanitizeInput(chi.URLParam(r, "id"))
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
