package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fundwatch/fundwatch/internal/event"
)

type crawlStatusResponse struct {
	SessionID        string `json:"session_id"`
	Status           string `json:"status"`
	CompletedBatches int    `json:"completed_batches"`
	FailedBatches    int    `json:"failed_batches"`
	FundsLoaded      int    `json:"funds_loaded"`
}

type eventView struct {
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     any       `json:"detail"`
}

type pendingBatchView struct {
	Batch       int       `json:"batch"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) startCrawlSession(w http.ResponseWriter, _ *http.Request) {
	id, err := s.orch.StartSession()
	if err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusCreated, map[string]string{"session_id": id.String()})
}

func (s *Server) getActiveCrawlSession(w http.ResponseWriter, _ *http.Request) {
	id, ok := s.crawlLog.ActiveSession()
	if !ok {
		writeError(s.logger, w, http.StatusNotFound, "no active crawl session")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String()})
}

func (s *Server) crawlSessionID(w http.ResponseWriter, r *http.Request) (event.CrawlSessionID, bool) {
	id, err := event.ParseCrawlSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid session id")
		return event.CrawlSessionID{}, false
	}
	return id, true
}

func (s *Server) getCrawlSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	if len(s.crawlLog.SessionEvents(id)) == 0 {
		writeError(s.logger, w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, crawlStatusResponse{
		SessionID:        id.String(),
		Status:           string(s.crawlLog.SessionStatus(id)),
		CompletedBatches: s.crawlLog.CompletedBatchCount(id),
		FailedBatches:    s.crawlLog.FailedBatchCount(id),
		FundsLoaded:      s.crawlLog.TotalFundsLoaded(id),
	})
}

func (s *Server) getCrawlSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	events := s.crawlLog.SessionEvents(id)
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

func (s *Server) getPendingBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	pending := s.crawlLog.PendingBatchLoads(id)
	views := make([]pendingBatchView, 0, len(pending))
	for _, p := range pending {
		views = append(views, pendingBatchView{Batch: int(p.Batch), ScheduledAt: p.ScheduledAt})
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]any{"pending": views})
}

func (s *Server) scheduleNextBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	batch, delay, err := s.orch.ScheduleNextBatch(id)
	if err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusAccepted, map[string]any{
		"batch":         int(batch),
		"delay_seconds": delay.Seconds(),
	})
}

func (s *Server) completeCrawlSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	if err := s.orch.CompleteSession(id); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String(), "status": "completed"})
}

func (s *Server) failCrawlSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeError(s.logger, w, http.StatusBadRequest, "reason required")
		return
	}
	if err := s.orch.FailSession(id, req.Reason); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String(), "status": "failed"})
}

func (s *Server) cancelCrawlSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	reason := "cancelled via API"
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Reason != "" {
		reason = req.Reason
	}
	if err := s.orch.CancelSession(id, reason); err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"session_id": id.String(), "status": "cancelled"})
}

func (s *Server) scheduleDailyRecrawl(w http.ResponseWriter, r *http.Request) {
	id, ok := s.crawlSessionID(w, r)
	if !ok {
		return
	}
	next, err := s.orch.ScheduleDailyRecrawl(id)
	if err != nil {
		writeError(s.logger, w, statusFromError(err), err.Error())
		return
	}
	writeJSON(s.logger, w, http.StatusAccepted, map[string]any{
		"session_id":    id.String(),
		"scheduled_for": next,
	})
}
