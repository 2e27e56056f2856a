package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	consolesdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, consolesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe. Fails with 503 when the token store is unreachable; the scheduler state is informational.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	consolesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	consolesdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	ping func(context.Context) error,
	schedulerRunning func() bool,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &consolesdk.HealthChecks{
			Database:  "ok",
			Scheduler: "stopped",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if schedulerRunning != nil && schedulerRunning() {
			checks.Scheduler = "running"
		}

		httpx.WriteJSON(w, statusCode, consolesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
