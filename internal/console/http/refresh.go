package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/httpx"
)

// RefreshHandler handles direct refresh-token redemption.
type RefreshHandler struct {
	TokenService *service.TokenService
	Now          func() time.Time
}

func (h *RefreshHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// HandleUse handles POST /v1/refresh/{id}/use
//
//	@Summary		Use Refresh Token
//	@Description	Redeems the refresh token as client_id (defaults to its own client) for scope (defaults to Graph). Redeeming as another client requires both to be FOCI members.
//	@Description	A rotated refresh token replaces the stored one.
//	@Tags			Refresh Tokens
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id		path		string						true	"Refresh token ID"
//	@Param			request	body		consolesdk.UseRefreshRequest	false	"Target client and scope"
//	@Success		201		{object}	consolesdk.UseRefreshResponse
//	@Failure		400		{object}	consolesdk.APIError	"not_refresh_token"
//	@Failure		404		{object}	consolesdk.APIError	"not_found"
//	@Failure		409		{object}	consolesdk.APIError	"client_not_in_family"
//	@Failure		502		{object}	consolesdk.APIError	"exchange_failed, invalid_token_received"
//	@Router			/v1/refresh/{id}/use [post].
func (h *RefreshHandler) HandleUse(w http.ResponseWriter, r *http.Request) {
	var req consolesdk.UseRefreshRequest
	// An empty body redeems as the token's own client for Graph.
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		consolesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	tok, outcome, err := h.TokenService.UseRefreshToken(r.Context(), r.PathValue("id"), service.UseRefreshRequest{
		TargetClientID: req.ClientID,
		Scope:          req.Scope,
		Activate:       req.Activate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, consolesdk.UseRefreshResponse{
		Token:     toToken(tok.Truncated(), h.now()),
		Rotated:   outcome.Rotated,
		Scope:     outcome.Scope,
		ExpiresIn: outcome.ExpiresIn,
	})
}

// HandleFOCITargets handles GET /v1/refresh/{id}/foci-targets
//
//	@Summary		FOCI Targets
//	@Description	Lists the clients a FOCI refresh token can be redeemed as.
//	@Tags			Refresh Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id	path		string	true	"Refresh token ID"
//	@Success		200	{object}	consolesdk.FOCITargetsResponse
//	@Failure		400	{object}	consolesdk.APIError	"not_refresh_token"
//	@Failure		409	{object}	consolesdk.APIError	"client_not_in_family"
//	@Router			/v1/refresh/{id}/foci-targets [get].
func (h *RefreshHandler) HandleFOCITargets(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	targets, err := h.TokenService.FOCITargets(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := consolesdk.FOCITargetsResponse{TokenID: id, Targets: make([]consolesdk.FOCITarget, 0, len(targets))}
	for _, t := range targets {
		out.Targets = append(out.Targets, consolesdk.FOCITarget{
			ClientID:    t.ClientID,
			DisplayName: t.DisplayName,
			IsCurrent:   t.Current,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleStats handles GET /v1/refresh/stats
//
//	@Summary		Refresh Token Statistics
//	@Tags			Refresh Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.RefreshStats
//	@Router			/v1/refresh/stats [get].
func (h *RefreshHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.TokenService.RefreshStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, consolesdk.RefreshStats{
		Total:  stats.Total,
		FOCI:   stats.FOCI,
		Used:   stats.Used,
		Unused: stats.Unused,
	})
}
