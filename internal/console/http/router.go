package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/cache"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/upstream"
	"github.com/aussiebroadwan/specter/pkg/httpx"
	"github.com/aussiebroadwan/specter/pkg/slogx"

	_ "github.com/aussiebroadwan/specter/api/console" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService    *service.TokenService
	Resolver        *service.Resolver
	Scheduler       *service.Scheduler
	OperatorService *service.OperatorService
	Upstream        *upstream.Caller
	Cache           cache.Cache
	GraphBaseURL    string
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		GraphBaseURL: "https://graph.microsoft.com",
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerAudiences()
	r.registerRefresh()
	r.registerScheduler()
	r.registerUpstream()
	r.registerOperators()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Specter Token Console API
//	@version		0.1.0
//	@description	Token pool, audience resolution and FOCI exchange for captured Entra ID tokens.
//	@description
//	@description				Responses routinely carry token material and are never cacheable.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/specter
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						Authorization
//	@description				Operator API key. Format: "Bearer sk_...". Send X-OTP as well once TOTP is enabled.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with operator authentication and a per-operator limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.OperatorService),
		httpx.RateLimitByOperator(limit),
	)
}

func (r *Router) registerTokens() {
	h := &TokensHandler{TokenService: r.TokenService}

	r.Mux.Handle("GET /v1/tokens", r.secured(h.HandleList, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/tokens/active", r.secured(h.HandleActive, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/tokens/stats", r.secured(h.HandleStats, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/tokens/{id}", r.secured(h.HandleGet, httpx.ModerateLimit))

	r.Mux.Handle("POST /v1/tokens/import", r.secured(h.HandleImport, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/tokens/import-jwt", r.secured(h.HandleImportJWT, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/tokens/import-refresh", r.secured(h.HandleImportRefresh, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/tokens/{id}/activate", r.secured(h.HandleActivate, httpx.ModerateLimit))

	r.Mux.Handle("DELETE /v1/tokens/expired", r.secured(h.HandleDeleteExpired, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/tokens/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerAudiences() {
	h := &AudiencesHandler{Resolver: r.Resolver}

	r.Mux.Handle("GET /v1/audiences", r.secured(h.HandleList, httpx.ModerateLimit))

	// Resolution may hit the token endpoint.
	r.Mux.Handle("POST /v1/audiences/resolve", r.secured(h.HandleResolve, httpx.ExchangeLimit))

	r.Mux.Handle("GET /v1/clients", r.secured(ClientsHandler, httpx.ModerateLimit))
}

func (r *Router) registerRefresh() {
	h := &RefreshHandler{TokenService: r.TokenService}

	r.Mux.Handle("POST /v1/refresh/{id}/use", r.secured(h.HandleUse, httpx.ExchangeLimit))
	r.Mux.Handle("GET /v1/refresh/{id}/foci-targets", r.secured(h.HandleFOCITargets, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/refresh/stats", r.secured(h.HandleStats, httpx.ModerateLimit))
}

func (r *Router) registerScheduler() {
	h := &SchedulerHandler{Scheduler: r.Scheduler}

	r.Mux.Handle("GET /v1/scheduler/status", r.secured(h.HandleStatus, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/scheduler/start", r.secured(h.HandleStart, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/scheduler/stop", r.secured(h.HandleStop, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/scheduler/trigger", r.secured(h.HandleTrigger, httpx.ExchangeLimit))
	r.Mux.Handle("PUT /v1/scheduler/config", r.secured(h.HandleConfig, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/scheduler/history", r.secured(h.HandleHistory, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/scheduler/expiring", r.secured(h.HandleExpiring, httpx.ModerateLimit))
}

func (r *Router) registerUpstream() {
	h := &GraphHandler{Caller: r.Upstream, BaseURL: r.GraphBaseURL}

	r.Mux.Handle("GET /v1/graph/me", r.secured(h.HandleMe, httpx.ExchangeLimit))
	r.Mux.Handle("DELETE /v1/cache", r.secured(CacheHandler(r.Cache), httpx.ModerateLimit))
}

func (r *Router) registerOperators() {
	h := &OperatorsHandler{OperatorService: r.OperatorService}

	// Credential changes get the strict limit.
	r.Mux.Handle("POST /v1/operators/me/totp/enroll", r.secured(h.HandleEnrollTOTP, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/operators/me/totp/verify", r.secured(h.HandleVerifyTOTP, httpx.StrictLimit))
	r.Mux.Handle("POST /v1/operators/me/api-key", r.secured(h.HandleRotateAPIKey, httpx.StrictLimit))
}

func (r *Router) registerSystem() {
	schedulerRunning := func() bool {
		return r.Scheduler != nil && r.Scheduler.Status().Running
	}

	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store.Ping, schedulerRunning),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
