package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/drawcal/application"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/relation"
	"github.com/felixgeelhaar/drawcal/infrastructure/logging"
)

const defaultLatest = 6

// StatusClientClosedRequest is reported when the client went away before
// the response was ready.
const StatusClientClosedRequest = 499

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// WeeksResponse is the body of /api/weeks/{year}/{week}.
type WeeksResponse struct {
	Base  calendar.WeekKey   `json:"base"`
	Weeks []calendar.WeekKey `json:"weeks"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	set, err := s.service.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// parseQuery reads a search request. Without am and pm both sessions are
// searched.
func parseQuery(r *http.Request) (application.Query, error) {
	params := r.URL.Query()
	q := application.Query{
		Relation: r.PathValue("relation"),
		Day:      params.Get("day"),
		Number:   params.Get("number"),
		Number2:  params.Get("number2"),
	}

	am, amSet, err := boolParam(params.Get("am"), "am")
	if err != nil {
		return q, err
	}
	pm, pmSet, err := boolParam(params.Get("pm"), "pm")
	if err != nil {
		return q, err
	}
	if !amSet && !pmSet {
		q.Sessions = relation.BothSessions()
	} else {
		q.Sessions = relation.Sessions{AM: am, PM: pm}
	}

	if q.Years.From, err = intParam(params.Get("from"), "from"); err != nil {
		return q, err
	}
	if q.Years.To, err = intParam(params.Get("to"), "to"); err != nil {
		return q, err
	}
	return q, nil
}

func boolParam(raw, name string) (value, set bool, err error) {
	if raw == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("%w: %s must be true or false, got %q", calendar.ErrInvalidArgument, name, raw)
	}
	return v, true, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", calendar.ErrInvalidArgument, name, raw)
	}
	return v, nil
}

func (s *Server) handleRelations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Relations())
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.PathValue("year"), "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := s.service.Year(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	n := defaultLatest
	if raw := r.URL.Query().Get("n"); raw != "" {
		var err error
		if n, err = intParam(raw, "n"); err != nil {
			writeError(w, r, err)
			return
		}
	}
	records, err := s.service.Latest(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.PathValue("year"), "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	week, err := intParam(r.PathValue("week"), "week")
	if err != nil {
		writeError(w, r, err)
		return
	}
	weeks, err := s.service.Neighborhood(year, week)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WeeksResponse{
		Base:  calendar.WeekKey{Year: year, Week: week},
		Weeks: weeks,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.config.Version})
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, calendar.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, calendar.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrStorageFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	switch status {
	case StatusClientClosedRequest:
		msg = "request canceled"
	case http.StatusServiceUnavailable:
		msg = "storage unavailable"
	case http.StatusInternalServerError:
		msg = "internal error"
	}

	if status == StatusClientClosedRequest {
		logging.Debug().
			Add(logging.RequestID(requestIDFrom(r.Context()))).
			Add(logging.Path(r.URL.Path)).
			Msg("request canceled by client")
	}
	if status >= http.StatusInternalServerError {
		logging.Error().
			Add(logging.RequestID(requestIDFrom(r.Context()))).
			Add(logging.Path(r.URL.Path)).
			Add(logging.ErrorField(err)).
			Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
