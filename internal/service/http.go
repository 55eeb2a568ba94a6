package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"canteen-backend/internal/menu"
	"canteen-backend/internal/serviceutil"
)

const defaultFindLimit = 10

type errorResponse struct {
	Error string `json:"error"`
}

func (s MenuService) writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		s.tel.ReportWarning("http.write-json", err)
	}
}

// writeError maps err to a status code. Internal failures are logged by the
// caller and never leak their message.
func (s MenuService) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, menu.ErrInvalidWeekday):
		s.writeJson(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrMenuNotFound):
		s.writeJson(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		s.writeJson(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Handler routes the public menu endpoints, refreshes require adminToken as
// a bearer token.
func (s MenuService) Handler(adminToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /menu/info", s.handleMenuInfo)
	mux.HandleFunc("GET /menu/search", s.handleFindDinners)
	mux.HandleFunc("GET /menu/{weekday}", s.handleDayMenu)
	mux.Handle("POST /menu/refresh", serviceutil.VerifyAccessToken(
		adminToken,
		http.HandlerFunc(s.handleRefresh),
	))
	return mux
}

func (s MenuService) handleMenuInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.GetMenuInfo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, info)
}

func (s MenuService) handleDayMenu(w http.ResponseWriter, r *http.Request) {
	weekday, err := menu.ParseWeekday(r.PathValue("weekday"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	day, err := s.GetDayMenu(r.Context(), weekday)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, day)
}

func (s MenuService) handleFindDinners(w http.ResponseWriter, r *http.Request) {
	limit := defaultFindLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeJson(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	matches, err := s.FindDinners(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if matches == nil {
		matches = []DinnerMatch{}
	}
	s.writeJson(w, http.StatusOK, matches)
}

func (s MenuService) handleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := s.Refresh(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, report)
}
