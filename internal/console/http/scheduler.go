package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/httpx"
)

// SchedulerHandler exposes the freshness scheduler's lifecycle.
type SchedulerHandler struct {
	Scheduler *service.Scheduler
	Now       func() time.Time
}

func (h *SchedulerHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// HandleStatus handles GET /v1/scheduler/status
//
//	@Summary		Scheduler Status
//	@Tags			Scheduler
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.SchedulerStatus
//	@Router			/v1/scheduler/status [get].
func (h *SchedulerHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, toSchedulerStatus(h.Scheduler.Status()))
}

// HandleStart handles POST /v1/scheduler/start
//
//	@Summary		Start Scheduler
//	@Tags			Scheduler
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.SchedulerStatus
//	@Failure		409	{object}	consolesdk.APIError	"scheduler_state"
//	@Router			/v1/scheduler/start [post].
func (h *SchedulerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.Scheduler.Start(); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSchedulerStatus(h.Scheduler.Status()))
}

// HandleStop handles POST /v1/scheduler/stop
//
//	@Summary		Stop Scheduler
//	@Tags			Scheduler
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.SchedulerStatus
//	@Failure		409	{object}	consolesdk.APIError	"scheduler_state"
//	@Router			/v1/scheduler/stop [post].
func (h *SchedulerHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.Scheduler.Stop(); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSchedulerStatus(h.Scheduler.Status()))
}

// HandleTrigger handles POST /v1/scheduler/trigger
//
//	@Summary		Run Check Now
//	@Description	Runs one refresh pass immediately, whether or not the timer is running, and returns its full report.
//	@Tags			Scheduler
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.TickReport
//	@Router			/v1/scheduler/trigger [post].
func (h *SchedulerHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	report := h.Scheduler.TriggerNow(r.Context())
	httpx.WriteJSON(w, http.StatusOK, toTickReport(report))
}

// HandleConfig handles PUT /v1/scheduler/config
//
//	@Summary		Update Scheduler Config
//	@Description	Updates the poll interval and/or expiry threshold, in minutes. A running timer picks up the new interval at once.
//	@Tags			Scheduler
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			request	body		consolesdk.SchedulerConfigRequest	true	"Fields to change"
//	@Success		200		{object}	consolesdk.SchedulerStatus
//	@Failure		400		{object}	consolesdk.APIError	"invalid_request"
//	@Router			/v1/scheduler/config [put].
func (h *SchedulerHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	var req consolesdk.SchedulerConfigRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		consolesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	var interval, threshold *time.Duration
	if req.IntervalMinutes != nil {
		d := minutes(*req.IntervalMinutes)
		interval = &d
	}
	if req.ThresholdMinutes != nil {
		d := minutes(*req.ThresholdMinutes)
		threshold = &d
	}

	if _, err := h.Scheduler.UpdateConfig(interval, threshold); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSchedulerStatus(h.Scheduler.Status()))
}

// HandleHistory handles GET /v1/scheduler/history
//
//	@Summary		Scheduler History
//	@Description	Lifecycle and check events, newest first.
//	@Tags			Scheduler
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			limit	query		int	false	"Maximum events (default 20, max 100)"
//	@Success		200		{object}	consolesdk.SchedulerHistoryResponse
//	@Router			/v1/scheduler/history [get].
func (h *SchedulerHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events := h.Scheduler.History(limit)

	out := consolesdk.SchedulerHistoryResponse{Events: make([]consolesdk.SchedulerEvent, 0, len(events))}
	for _, e := range events {
		ev := consolesdk.SchedulerEvent{
			Timestamp: e.At,
			Type:      string(e.Type),
			Message:   e.Message,
		}
		if e.Data != nil {
			if raw, err := json.Marshal(e.Data); err == nil {
				ev.Data = raw
			}
		}
		out.Events = append(out.Events, ev)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleExpiring handles GET /v1/scheduler/expiring
//
//	@Summary		Expiring Tokens
//	@Description	Access tokens that expire within the window, soonest first.
//	@Tags			Scheduler
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			minutes	query		int	false	"Window; defaults to the configured threshold"
//	@Success		200		{object}	consolesdk.ExpiringResponse
//	@Router			/v1/scheduler/expiring [get].
func (h *SchedulerHandler) HandleExpiring(w http.ResponseWriter, r *http.Request) {
	window := h.Scheduler.Status().Config.Threshold
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			consolesdk.ErrInvalidRequest.WithDescription("minutes must be a positive integer").WriteError(w)
			return
		}
		window = time.Duration(n) * time.Minute
	}

	tokens, err := h.Scheduler.Expiring(r.Context(), window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for i := range tokens {
		tokens[i] = tokens[i].Truncated()
	}

	httpx.WriteJSON(w, http.StatusOK, consolesdk.ExpiringResponse{
		ThresholdMinutes: window.Minutes(),
		Tokens:           toTokens(tokens, h.now()),
	})
}
