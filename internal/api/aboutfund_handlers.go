package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/orchestrator"
	"github.com/fundwatch/fundwatch/internal/schedule"
)

type startAboutFundRequest struct {
	TotalFunds     int    `json:"total_funds"`
	FirstOrderBook string `json:"first_orderbook"`
}

type navigationRequest struct {
	ISIN      string `json:"isin"`
	OrderBook string `json:"orderbook"`
	Index     int    `json:"index"`
	URL       string `json:"url"`
}

type stepsRequest struct {
	OrderBook string   `json:"orderbook"`
	Steps     []string `json:"steps"`
}

type aboutFundStatusResponse struct {
	SessionID            string `json:"session_id"`
	Status               string `json:"status"`
	TotalFunds           int    `json:"total_funds"`
	NavigationsCompleted int    `json:"navigations_completed"`
	NavigationsFailed    int    `json:"navigations_failed"`
	CurrentOrderBook     string `json:"current_orderbook,omitempty"`
	CurrentISIN          string `json:"current_isin,omitempty"`
}

type stepView struct {
	Kind   string    `json:"kind"`
	FireAt time.Time `json:"fire_at"`
}

func (s *Server) startAboutFundSession(w http.ResponseWriter, r *http.Request) {
	var req startAboutFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TotalFunds <= 0 {
		writeError(s.logger, w, http.StatusBadRequest, "total_funds must be > 0")
		return
	}
	id, err := s.orch.StartAboutFundSession(req.TotalFunds, event.OrderBookID(req.FirstOrderBook))
	if err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, map[string]string{"session_id": id.String()})
}

func (s *Server) getActiveAboutFundSession(w http.ResponseWriter, _ *http.Request) {
	id, ok := s.aboutLog.ActiveSession()
	if !ok {
		writeError(s.logger, w, http.StatusNotFound, "no active about-fund session")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String()})
}

func (s *Server) aboutFundSessionID(w http.ResponseWriter, r *http.Request) (event.AboutFundSessionID, bool) {
	id, err := event.ParseAboutFundSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid session id")
		return event.AboutFundSessionID{}, false
	}
	return id, true
}

func (s *Server) getAboutFundSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	if len(s.aboutLog.SessionEvents(id)) == 0 {
		writeError(s.logger, w, http.StatusNotFound, "session not found")
		return
	}
	resp := aboutFundStatusResponse{
		SessionID:            id.String(),
		Status:               string(s.aboutLog.SessionStatus(id)),
		TotalFunds:           s.aboutLog.TotalFunds(id),
		NavigationsCompleted: s.aboutLog.NavigationsCompleted(id),
		NavigationsFailed:    s.aboutLog.NavigationsFailed(id),
	}
	if nav, found := s.aboutLog.LastNavigation(id); found {
		resp.CurrentOrderBook = string(nav.OrderBook)
		resp.CurrentISIN = string(nav.ISIN)
	}
	writeJSON(s.logger, w, http.StatusOK, resp)
}

func (s *Server) getAboutFundSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	events := s.aboutLog.SessionEvents(id)
	if len(events) == 0 {
		writeError(s.logger, w, http.StatusNotFound, "session not found")
		return
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{
			Kind:       string(e.Kind()),
			OccurredAt: e.OccurredAt(),
			Detail:     e,
		})
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{"events": views})
}

func (s *Server) beginNavigation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderBook == "" {
		writeError(s.logger, w, http.StatusBadRequest, "orderbook required")
		return
	}
	err := s.orch.BeginNavigation(id, event.ISIN(req.ISIN), event.OrderBookID(req.OrderBook), req.Index, req.URL)
	if err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusAccepted, map[string]string{"session_id": id.String()})
}

func (s *Server) completeNavigation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	if err := s.orch.CompleteNavigation(id); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String()})
}

func (s *Server) failNavigation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeError(s.logger, w, http.StatusBadRequest, "reason required")
		return
	}
	if err := s.orch.FailNavigation(id, req.Reason); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String()})
}

func (s *Server) scheduleSteps(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	var req stepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderBook == "" {
		writeError(s.logger, w, http.StatusBadRequest, "orderbook required")
		return
	}
	kinds := make([]schedule.StepKind, 0, len(req.Steps))
	for _, step := range req.Steps {
		kinds = append(kinds, schedule.StepKind(step))
	}
	if len(kinds) == 0 {
		kinds = schedule.DefaultStepSequence()
	}
	sched, err := s.orch.ScheduleSteps(id, event.OrderBookID(req.OrderBook), kinds)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, orchestrator.ErrSessionNotActive) {
			status = http.StatusConflict
		}
		writeError(s.logger, w, status, err.Error())
		return
	}
	views := make([]stepView, 0, len(sched.Steps))
	for _, step := range sched.Steps {
		views = append(views, stepView{Kind: string(step.Kind), FireAt: step.FireAt})
	}
	writeJSON(s.logger, w, http.StatusAccepted, map[string]any{
		"session_id": id.String(),
		"orderbook":  string(sched.OrderBook),
		"steps":      views,
		"stop_time":  sched.StopTime,
	})
}

func (s *Server) completeAboutFundSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	if err := s.orch.CompleteAboutFundSession(id); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String(), "status": "completed"})
}

func (s *Server) cancelAboutFundSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.aboutFundSessionID(w, r)
	if !ok {
		return
	}
	reason := "cancelled via API"
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Reason != "" {
		reason = req.Reason
	}
	if err := s.orch.CancelAboutFundSession(id, reason); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String(), "status": "cancelled"})
}
