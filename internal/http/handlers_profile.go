package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Ledger.Profile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(p).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Ledger.UpdateProfile(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Message("Profile updated").Data(p).Write(w)
}

// handleActivity serves GET /activity?limit=.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query(), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	feed, err := s.deps.Ledger.Activity(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if feed == nil {
		feed = []core.Activity{}
	}
	NewResponse().Data(feed).Write(w)
}
