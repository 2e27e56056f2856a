package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/httpx"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

// AudiencesHandler serves token resolution and the client registry.
type AudiencesHandler struct {
	Resolver *service.Resolver
}

// HandleResolve handles POST /v1/audiences/resolve
//
//	@Summary		Resolve Token
//	@Description	Returns an unexpired access token for the audience: the active token when it fits, else the stored token with the latest expiry, else one minted through a FOCI exchange.
//	@Description	Without upn the active token's identity is used. The raw token is only returned with reveal=true.
//	@Tags			Audiences
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			request	body		consolesdk.ResolveRequest	true	"Audience, optional UPN"
//	@Success		200		{object}	consolesdk.ResolveResponse
//	@Failure		409		{object}	consolesdk.APIError	"no_active_context, no_refresh_token, cross_identity_tokens_available"
//	@Failure		502		{object}	consolesdk.APIError	"exchange_failed, invalid_token_received"
//	@Failure		504		{object}	consolesdk.APIError	"upstream_timeout"
//	@Router			/v1/audiences/resolve [post].
func (h *AudiencesHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req consolesdk.ResolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		consolesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if strings.TrimSpace(req.Audience) == "" {
		consolesdk.ErrInvalidRequest.WithDescription("audience is required").WriteError(w)
		return
	}

	tok, err := h.Resolver.Resolve(r.Context(), req.Audience, req.UPN)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := consolesdk.ResolveResponse{
		TokenID:   tok.TokenID,
		UPN:       tok.UPN,
		ClientID:  tok.ClientID,
		Audience:  tok.Audience,
		ExpiresAt: tok.ExpiresAt,
		Via:       string(tok.Via),
	}
	if req.Reveal {
		out.AccessToken = tok.AccessToken
		slogx.FromContext(r.Context()).Info("token secret revealed", "token_id", tok.TokenID)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleList handles GET /v1/audiences
//
//	@Summary		Audience Availability
//	@Description	Reports, per well-known audience, whether the identity holds a live token or could mint one.
//	@Tags			Audiences
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			upn	query		string	false	"Identity; defaults to the active token's"
//	@Success		200	{object}	consolesdk.AudiencesResponse
//	@Failure		409	{object}	consolesdk.APIError	"no_active_context"
//	@Router			/v1/audiences [get].
func (h *AudiencesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	report, err := h.Resolver.ListAvailableAudiences(r.Context(), r.URL.Query().Get("upn"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := consolesdk.AudiencesResponse{
		UPN:           report.Identity,
		FOCIAvailable: report.FOCIAvailable,
		Audiences:     make([]consolesdk.AudienceStatus, 0, len(report.Audiences)),
	}
	for _, a := range report.Audiences {
		out.Audiences = append(out.Audiences, consolesdk.AudienceStatus{
			Key:       a.Key,
			Resource:  a.Resource,
			Available: a.Available,
			TokenID:   a.TokenID,
			ExpiresAt: a.ExpiresAt,
			Reason:    a.Reason,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ClientsHandler godoc
//
//	@Summary		List Clients
//	@Description	Lists the known first-party clients and their FOCI membership.
//	@Tags			Clients
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			foci	query		bool	false	"Only FOCI members"
//	@Success		200		{object}	consolesdk.ListClientsResponse
//	@Router			/v1/clients [get].
func ClientsHandler(w http.ResponseWriter, r *http.Request) {
	apps := entra.Apps()
	if r.URL.Query().Get("foci") == "true" {
		apps = entra.FOCIApps()
	}

	out := consolesdk.ListClientsResponse{Clients: make([]consolesdk.ClientInfo, 0, len(apps))}
	for _, app := range apps {
		out.Clients = append(out.Clients, consolesdk.ClientInfo{
			ClientID:    app.ClientID,
			DisplayName: app.DisplayName,
			FOCI:        app.FOCI,
		})
		if app.FOCI {
			out.FOCI++
		}
	}
	out.Count = len(out.Clients)
	httpx.WriteJSON(w, http.StatusOK, out)
}
