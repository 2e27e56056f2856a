package consolesdk

import (
	"context"
	"net/http"
	"strconv"
)

func (c *Client) SchedulerStatus(ctx context.Context) (*SchedulerStatus, error) {
	var out SchedulerStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/scheduler/status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartScheduler(ctx context.Context) (*SchedulerStatus, error) {
	var out SchedulerStatus
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scheduler/start", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StopScheduler(ctx context.Context) (*SchedulerStatus, error) {
	var out SchedulerStatus
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scheduler/stop", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerScheduler runs one check now, whether or not the timer is running,
// and returns its full report.
func (c *Client) TriggerScheduler(ctx context.Context) (*TickReport, error) {
	var out TickReport
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scheduler/trigger", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSchedulerConfig(ctx context.Context, req SchedulerConfigRequest) (*SchedulerStatus, error) {
	var out SchedulerStatus
	if err := c.doJSON(ctx, http.MethodPut, "/v1/scheduler/config", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SchedulerHistory returns up to limit events, newest first. limit 0 uses
// the server default.
func (c *Client) SchedulerHistory(ctx context.Context, limit int) (*SchedulerHistoryResponse, error) {
	path := "/v1/scheduler/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out SchedulerHistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExpiringTokens lists access tokens expiring within minutes, or within the
// configured threshold when minutes is 0.
func (c *Client) ExpiringTokens(ctx context.Context, minutes int) (*ExpiringResponse, error) {
	path := "/v1/scheduler/expiring"
	if minutes > 0 {
		path += "?minutes=" + strconv.Itoa(minutes)
	}

	var out ExpiringResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
