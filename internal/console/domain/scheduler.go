package domain

import "time"

type EventType string

const (
	EventSchedulerStarted EventType = "scheduler_started"
	EventSchedulerStopped EventType = "scheduler_stopped"
	EventConfigUpdated    EventType = "config_updated"
	EventCheckComplete    EventType = "check_complete"
	EventCheckAborted     EventType = "check_aborted"
)

// SchedulerEvent is one entry in the scheduler's history ring.
type SchedulerEvent struct {
	At      time.Time `json:"timestamp"`
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// RTOrigin says where the refresh token used for an exchange came from.
type RTOrigin string

const (
	OriginRefreshRecord RTOrigin = "refresh_record"
	OriginEmbedded      RTOrigin = "embedded"
	OriginFOCIFamily    RTOrigin = "foci_family"
)

// RefreshResult is the outcome of refreshing one expiring access token.
type RefreshResult struct {
	TokenID    string   `json:"token_id"`
	UPN        string   `json:"upn,omitempty"`
	ClientID   string   `json:"client_id"`
	Audience   string   `json:"audience"`
	RTOrigin   RTOrigin `json:"rt_origin,omitempty"`
	NewTokenID string   `json:"new_token_id,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (r RefreshResult) OK() bool { return r.Error == "" }
