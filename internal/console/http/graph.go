package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/specter/internal/console/cache"
	"github.com/aussiebroadwan/specter/internal/console/upstream"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/httpx"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

// GraphHandler proxies cached reads against Microsoft Graph.
type GraphHandler struct {
	Caller  *upstream.Caller
	BaseURL string // e.g. https://graph.microsoft.com
}

// HandleMe handles GET /v1/graph/me
//
//	@Summary		Graph /me
//	@Description	Fetches /v1.0/me as the identity with a resolved Graph token. Responses are cached per identity.
//	@Tags			Graph
//	@Produce		json
//	@Security		APIKeyAuth
//	@Param			upn	query		string	false	"Identity; defaults to the active token's"
//	@Success		200	{object}	object	"Graph user object"
//	@Failure		409	{object}	consolesdk.APIError	"no_active_context, no_refresh_token"
//	@Failure		502	{object}	consolesdk.APIError	"exchange_failed, upstream_error"
//	@Router			/v1/graph/me [get].
func (h *GraphHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	var me json.RawMessage
	err := h.Caller.GetJSON(r.Context(), upstream.Request{
		Audience:  entra.AudienceGraph,
		Identity:  r.URL.Query().Get("upn"),
		URL:       strings.TrimSuffix(h.BaseURL, "/") + "/v1.0/me",
		Operation: "graph.me",
	}, &me)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, me)
}

// CacheHandler godoc
//
//	@Summary		Clear Response Cache
//	@Description	Drops cached upstream responses for one identity, or all of them when upn is omitted.
//	@Tags			Graph
//	@Security		APIKeyAuth
//	@Param			upn	query	string	false	"Identity"
//	@Success		204	"Cleared"
//	@Router			/v1/cache [delete].
func CacheHandler(c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upn := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("upn")))
		c.DeleteScope(upn)
		slogx.FromContext(r.Context()).Info("response cache cleared", "upn", upn)
		w.WriteHeader(http.StatusNoContent)
	}
}
