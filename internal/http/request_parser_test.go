package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    ledger.Filter
		wantErr string
	}{
		{
			name:  "defaults",
			query: url.Values{},
			want:  ledger.Filter{Page: 1, Limit: ledger.DefaultLimit},
		},
		{
			name: "all values",
			query: url.Values{
				"projectId": {"p1"}, "category": {"Bonus"}, "status": {"ACTIVE"},
				"startDate": {"2026-01-01"}, "endDate": {"2026-03-31"},
				"page": {"2"}, "limit": {"5"},
			},
			want: ledger.Filter{
				ProjectID: "p1", Category: "bonus", Status: "active",
				From: core.NewDate(2026, 1, 1), To: core.NewDate(2026, 3, 31),
				Page: 2, Limit: 5,
			},
		},
		{
			name:  "limit is capped",
			query: url.Values{"limit": {"5000"}},
			want:  ledger.Filter{Page: 1, Limit: ledger.MaxLimit},
		},
		{
			name:    "bad start date",
			query:   url.Values{"startDate": {"01/02/2026"}},
			wantErr: "startDate must be YYYY-MM-DD",
		},
		{
			name:    "end before start",
			query:   url.Values{"startDate": {"2026-02-01"}, "endDate": {"2026-01-01"}},
			wantErr: "endDate must not be before startDate",
		},
		{
			name:    "non numeric page",
			query:   url.Values{"page": {"two"}},
			wantErr: "page must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.query)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ProjectID != tt.want.ProjectID || got.Category != tt.want.Category || got.Status != tt.want.Status ||
				!got.From.Equal(tt.want.From.Time) || !got.To.Equal(tt.want.To.Time) ||
				got.Page != tt.want.Page || got.Limit != tt.want.Limit {
				t.Errorf("parseFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBoolParam(t *testing.T) {
	for v, want := range map[string]bool{"true": true, "1": true, "YES": true, "false": false, "": false, "maybe": false} {
		if got := parseBoolParam(url.Values{"actionable": {v}}, "actionable"); got != want {
			t.Errorf("parseBoolParam(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Amount Amount `json:"amount"`
		Note   string `json:"note"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "number", body: `{"amount": 12.5}`, want: "12.5"},
		{name: "european string", body: `{"amount": "1.234,56"}`, want: "1234.56"},
		{name: "rounded", body: `{"amount": "12.345"}`, want: "12.35"},
		{name: "empty body", body: ``, wantErr: "Request body is empty"},
		{name: "unknown field", body: `{"amount": 1, "extra": true}`, wantErr: "Invalid request body"},
		{name: "bad amount", body: `{"amount": "abc"}`, wantErr: "Invalid request body"},
		{name: "negative amount", body: `{"amount": -5}`, wantErr: "Invalid request body"},
		{name: "two objects", body: `{"amount": 1}{"amount": 2}`, wantErr: "single JSON object"},
		{name: "too large", body: `{"note": "` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := decodeJSON(httptest.NewRecorder(), r, &p)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.Amount.Set() || !p.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("amount = %s, want %s", p.Amount.String(), tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2\tend", "line1\nline2\tend"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
