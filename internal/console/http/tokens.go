package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/httpx"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

// TokensHandler handles the token pool endpoints.
type TokensHandler struct {
	TokenService *service.TokenService
	Now          func() time.Time
}

func (h *TokensHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// HandleList handles GET /v1/tokens
//
//	@Summary		List Tokens
//	@Description	Lists stored tokens ordered by expiry, newest first. Secrets are truncated.
//	@Tags			Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			kind		query		string	false	"access_token, refresh_token or ngc_token"
//	@Param			upn			query		string	false	"Identity filter"
//	@Param			audience	query		string	false	"Audience substring"
//	@Param			client_id	query		string	false	"Client ID filter"
//	@Param			active_only	query		bool	false	"Only the active token"
//	@Param			limit		query		int		false	"Maximum results"
//	@Success		200			{object}	consolesdk.ListTokensResponse
//	@Failure		400			{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens [get].
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := service.ListFilter{
		Kind:       domain.TokenKind(q.Get("kind")),
		UPN:        q.Get("upn"),
		Audience:   q.Get("audience"),
		ClientID:   q.Get("client_id"),
		ActiveOnly: q.Get("active_only") == "true",
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			consolesdk.ErrInvalidRequest.WithDescription("limit must be a non-negative integer").WriteError(w)
			return
		}
		filter.Limit = n
	}

	tokens, err := h.TokenService.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, consolesdk.ListTokensResponse{
		Tokens: toTokens(tokens, h.now()),
		Count:  len(tokens),
	})
}

// HandleGet handles GET /v1/tokens/{id}
//
//	@Summary		Get Token
//	@Description	Returns one token. Secrets are truncated unless full=true.
//	@Tags			Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id		path		string	true	"Token ID"
//	@Param			full	query		bool	false	"Reveal the full secret and embedded refresh token"
//	@Success		200		{object}	consolesdk.Token
//	@Failure		404		{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens/{id} [get].
func (h *TokensHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	full := r.URL.Query().Get("full") == "true"

	tok, err := h.TokenService.Get(r.Context(), r.PathValue("id"), full)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if full {
		slogx.FromContext(r.Context()).Info("token secret revealed", "token_id", tok.ID)
	}

	httpx.WriteJSON(w, http.StatusOK, toToken(tok, h.now()))
}

// HandleActive handles GET /v1/tokens/active
//
//	@Summary		Get Active Token
//	@Description	Returns the token that supplies the default identity.
//	@Tags			Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.Token
//	@Failure		404	{object}	consolesdk.ErrorResponse	"no token is active"
//	@Router			/v1/tokens/active [get].
func (h *TokensHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	tok, err := h.TokenService.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toToken(tok, h.now()))
}

// HandleActivate handles POST /v1/tokens/{id}/activate
//
//	@Summary		Activate Token
//	@Description	Makes the token active. Any previously active token is deactivated.
//	@Tags			Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			id	path		string	true	"Token ID"
//	@Success		200	{object}	consolesdk.Token
//	@Failure		404	{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens/{id}/activate [post].
func (h *TokensHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	tok, err := h.TokenService.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toToken(tok, h.now()))
}

// HandleDelete handles DELETE /v1/tokens/{id}
//
//	@Summary		Delete Token
//	@Tags			Tokens
//	@Security		APIKeyAuth
//	@Param			id	path	string	true	"Token ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens/{id} [delete].
func (h *TokensHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.TokenService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteExpired handles DELETE /v1/tokens/expired
//
//	@Summary		Delete Expired Tokens
//	@Description	Removes expired access tokens. Tokens still carrying a refresh token are kept.
//	@Tags			Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.DeleteExpiredResponse
//	@Router			/v1/tokens/expired [delete].
func (h *TokensHandler) HandleDeleteExpired(w http.ResponseWriter, r *http.Request) {
	n, err := h.TokenService.DeleteExpired(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, consolesdk.DeleteExpiredResponse{Deleted: n})
}

// HandleStats handles GET /v1/tokens/stats
//
//	@Summary		Token Statistics
//	@Tags			Tokens
//	@Produce		json
//	@Security		APIKeyAuth
//	@Success		200	{object}	consolesdk.TokenStats
//	@Router			/v1/tokens/stats [get].
func (h *TokensHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.TokenService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats := consolesdk.TokenStats{
		Total:            counts.Total,
		ByKind:           make(map[string]int64, len(counts.ByKind)),
		ByClassification: make(map[string]int64, len(counts.ByClassification)),
		Expired:          counts.Expired,
		RefreshUsed:      counts.RefreshUsed,
		RefreshUnused:    counts.RefreshUnused,
	}
	for k, v := range counts.ByKind {
		stats.ByKind[string(k)] = v
	}
	for k, v := range counts.ByClassification {
		stats.ByClassification[string(k)] = v
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// HandleImport handles POST /v1/tokens/import
//
//	@Summary		Import Broker Export
//	@Description	Imports the JSON written by the broker cache extraction tooling. Expired access tokens and cache paths already stored are skipped.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			filename	query		string	false	"Recorded as the import source"
//	@Param			request		body		object	true	"Broker export: {metadata, tokens}"
//	@Success		201			{object}	consolesdk.ImportResponse
//	@Failure		400			{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens/import [post].
func (h *TokensHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	// Exports carry fields we do not store, so unknown fields are allowed.
	var export service.BrokerExport
	if err := json.NewDecoder(io.LimitReader(r.Body, httpx.MaxBodyBytes)).Decode(&export); err != nil {
		consolesdk.ErrInvalidJSON.WriteError(w)
		return
	}

	res, err := h.TokenService.ImportBroker(r.Context(), export, strings.TrimSpace(r.URL.Query().Get("filename")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := consolesdk.ImportResponse{
		Imported:   res.Imported,
		Skipped:    res.Skipped,
		Expired:    res.Expired,
		Duplicates: res.Duplicates,
		ByKind:     make(map[string]int, len(res.ByKind)),
		TokenIDs:   res.TokenIDs,
		Message:    res.Message,
		Errors:     res.Errors,
	}
	for k, v := range res.ByKind {
		out.ByKind[string(k)] = v
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

// HandleImportJWT handles POST /v1/tokens/import-jwt
//
//	@Summary		Import Access Token
//	@Description	Stores a raw access token JWT. Audience, identity and expiry come from its claims.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			request	body		consolesdk.ImportJWTRequest	true	"Access token and optional refresh token"
//	@Success		201		{object}	consolesdk.Token
//	@Failure		400		{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens/import-jwt [post].
func (h *TokensHandler) HandleImportJWT(w http.ResponseWriter, r *http.Request) {
	var req consolesdk.ImportJWTRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		consolesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	tok, err := h.TokenService.ImportJWT(r.Context(), service.ImportJWTRequest{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ClientID:     req.ClientID,
		Activate:     req.Activate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toToken(tok.Truncated(), h.now()))
}

// HandleImportRefresh handles POST /v1/tokens/import-refresh
//
//	@Summary		Import Refresh Token
//	@Description	Stores a raw refresh token. The identity cannot be read from the opaque value, so pass the UPN.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			request	body		consolesdk.ImportRefreshRequest	true	"Refresh token, client ID, UPN"
//	@Success		201		{object}	consolesdk.Token
//	@Failure		400		{object}	consolesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokens/import-refresh [post].
func (h *TokensHandler) HandleImportRefresh(w http.ResponseWriter, r *http.Request) {
	var req consolesdk.ImportRefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		consolesdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	tok, err := h.TokenService.ImportRefresh(r.Context(), service.ImportRefreshRequest{
		RefreshToken: req.RefreshToken,
		ClientID:     req.ClientID,
		UPN:          req.UPN,
		TenantID:     req.TenantID,
		PRTBound:     req.PRTBound,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toToken(tok.Truncated(), h.now()))
}
