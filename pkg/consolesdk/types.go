package consolesdk

import (
	"encoding/json"
	"time"
)

// ErrorResponse documents the error body; APIError is what clients decode.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database  string `json:"database"`
	Scheduler string `json:"scheduler"`
}

// ============================================================================
// Tokens
// ============================================================================

// Token is a stored credential. Secret and EmbeddedRefresh are truncated
// unless the full reveal was requested.
type Token struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	ClientID        string            `json:"client_id"`
	ClientName      string            `json:"client_name,omitempty"`
	UPN             string            `json:"upn,omitempty"`
	Scope           string            `json:"scope,omitempty"`
	Audience        string            `json:"audience,omitempty"`
	Secret          string            `json:"token"`
	EmbeddedRefresh string            `json:"refresh_token,omitempty"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty"`
	Expired         bool              `json:"expired"`
	IsActive        bool              `json:"is_active"`
	Source          string            `json:"source"`
	ParentID        string            `json:"parent_id,omitempty"`
	Classification  string            `json:"classification,omitempty"`
	PRTBound        bool              `json:"is_prt_bound,omitempty"`
	DisplayName     string            `json:"display_name,omitempty"`
	SourceType      string            `json:"source_type,omitempty"`
	CachePath       string            `json:"cache_path,omitempty"`
	ImportedFrom    string            `json:"imported_from,omitempty"`
	TenantID        string            `json:"tenant_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	LastUsedAt      *time.Time        `json:"last_used_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

type ListTokensResponse struct {
	Tokens []Token `json:"tokens"`
	Count  int     `json:"count"`
}

// ListTokensOptions filter GET /v1/tokens. Zero values are not sent.
type ListTokensOptions struct {
	Kind       string
	UPN        string
	Audience   string
	ClientID   string
	ActiveOnly bool
	Limit      int
}

type TokenStats struct {
	Total            int64            `json:"total"`
	ByKind           map[string]int64 `json:"by_kind"`
	ByClassification map[string]int64 `json:"by_classification"`
	Expired          int64            `json:"expired"`
	RefreshUsed      int64            `json:"refresh_used"`
	RefreshUnused    int64            `json:"refresh_unused"`
}

type ImportResponse struct {
	Imported   int               `json:"imported"`
	Skipped    int               `json:"skipped"`
	Expired    int               `json:"expired"`
	Duplicates int               `json:"duplicates"`
	ByKind     map[string]int    `json:"by_kind"`
	TokenIDs   []string          `json:"token_ids"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
}

type ImportJWTRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	Activate     bool   `json:"activate,omitempty"`
}

type ImportRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	UPN          string `json:"upn,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
	PRTBound     bool   `json:"is_prt_bound,omitempty"`
}

type DeleteExpiredResponse struct {
	Deleted int64 `json:"deleted"`
}

// ============================================================================
// Audiences
// ============================================================================

type ResolveRequest struct {
	Audience string `json:"audience"`
	UPN      string `json:"upn,omitempty"`
	Reveal   bool   `json:"reveal,omitempty"`
}

type ResolveResponse struct {
	TokenID     string     `json:"token_id"`
	UPN         string     `json:"upn"`
	ClientID    string     `json:"client_id"`
	Audience    string     `json:"audience"`
	AccessToken string     `json:"access_token,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Via         string     `json:"via"`
}

type AudienceStatus struct {
	Key       string     `json:"key"`
	Resource  string     `json:"resource"`
	Available bool       `json:"available"`
	TokenID   string     `json:"token_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

type AudiencesResponse struct {
	UPN           string           `json:"upn"`
	FOCIAvailable bool             `json:"foci_available"`
	Audiences     []AudienceStatus `json:"audiences"`
}

// ============================================================================
// Clients and refresh tokens
// ============================================================================

type ClientInfo struct {
	ClientID    string `json:"client_id"`
	DisplayName string `json:"display_name"`
	FOCI        bool   `json:"foci"`
}

type ListClientsResponse struct {
	Clients []ClientInfo `json:"clients"`
	Count   int          `json:"count"`
	FOCI    int          `json:"foci_count"`
}

type UseRefreshRequest struct {
	ClientID string `json:"client_id,omitempty"` // defaults to the token's own client
	Scope    string `json:"scope,omitempty"`     // resource URL or scope string
	Activate bool   `json:"activate,omitempty"`
}

type UseRefreshResponse struct {
	Token     Token  `json:"token"`
	Rotated   bool   `json:"refresh_token_rotated"`
	Scope     string `json:"scope"`
	ExpiresIn int64  `json:"expires_in"`
}

type FOCITarget struct {
	ClientID    string `json:"client_id"`
	DisplayName string `json:"display_name"`
	IsCurrent   bool   `json:"is_current"`
}

type FOCITargetsResponse struct {
	TokenID string       `json:"token_id"`
	Targets []FOCITarget `json:"targets"`
}

type RefreshStats struct {
	Total  int64 `json:"total_refresh_tokens"`
	FOCI   int64 `json:"foci_refresh_tokens"`
	Used   int64 `json:"used_refresh_tokens"`
	Unused int64 `json:"unused_refresh_tokens"`
}

// ============================================================================
// Scheduler
// ============================================================================

type RefreshResult struct {
	TokenID    string `json:"token_id"`
	UPN        string `json:"upn,omitempty"`
	ClientID   string `json:"client_id"`
	Audience   string `json:"audience"`
	RTOrigin   string `json:"rt_origin,omitempty"`
	NewTokenID string `json:"new_token_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type TickReport struct {
	StartedAt  time.Time       `json:"started_at"`
	DurationMS int64           `json:"duration_ms"`
	Candidates int             `json:"candidates"`
	Refreshed  int             `json:"refreshed"`
	Failed     int             `json:"failed"`
	Superseded int             `json:"superseded,omitempty"`
	Results    []RefreshResult `json:"results,omitempty"`
	Aborted    bool            `json:"aborted,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type SchedulerStatus struct {
	Running          bool        `json:"running"`
	IntervalMinutes  float64     `json:"interval_minutes"`
	ThresholdMinutes float64     `json:"threshold_minutes"`
	LastRunAt        *time.Time  `json:"last_run_at,omitempty"`
	NextRunAt        *time.Time  `json:"next_run_at,omitempty"`
	LastReport       *TickReport `json:"last_report,omitempty"`
	Ticks            int         `json:"ticks"`
	TotalRefreshed   int         `json:"total_refreshed"`
	TotalFailed      int         `json:"total_failed"`
}

// SchedulerConfigRequest updates the fields that are set.
type SchedulerConfigRequest struct {
	IntervalMinutes  *float64 `json:"interval_minutes,omitempty"`
	ThresholdMinutes *float64 `json:"threshold_minutes,omitempty"`
}

type SchedulerEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type SchedulerHistoryResponse struct {
	Events []SchedulerEvent `json:"events"`
}

type ExpiringResponse struct {
	ThresholdMinutes float64 `json:"threshold_minutes"`
	Tokens           []Token `json:"tokens"`
}

// ============================================================================
// Operators
// ============================================================================

type TOTPEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"otpauth_url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type TOTPVerifyRequest struct {
	Code string `json:"code"`
}

type APIKeyResponse struct {
	APIKey string `json:"api_key"`
}
