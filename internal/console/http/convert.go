package http

import (
	"time"

	"github.com/aussiebroadwan/specter/internal/console/domain"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/pkg/consolesdk"
	"github.com/aussiebroadwan/specter/pkg/entra"
)

func toToken(t domain.Token, now time.Time) consolesdk.Token {
	return consolesdk.Token{
		ID:              t.ID,
		Kind:            string(t.Kind),
		ClientID:        t.ClientID,
		ClientName:      entra.DisplayName(t.ClientID),
		UPN:             t.UPN,
		Scope:           t.Scope,
		Audience:        t.Audience,
		Secret:          t.Secret,
		EmbeddedRefresh: t.EmbeddedRefresh,
		ExpiresAt:       t.ExpiresAt,
		Expired:         t.IsExpired(now),
		IsActive:        t.IsActive,
		Source:          string(t.Source),
		ParentID:        t.ParentID,
		Classification:  string(t.Classification),
		PRTBound:        t.PRTBound,
		DisplayName:     t.DisplayName,
		SourceType:      t.SourceType,
		CachePath:       t.BrokerCachePath,
		ImportedFrom:    t.ImportedFrom,
		TenantID:        t.TenantID,
		Metadata:        t.Metadata,
		LastUsedAt:      t.LastUsedAt,
		CreatedAt:       t.CreatedAt,
	}
}

func toTokens(ts []domain.Token, now time.Time) []consolesdk.Token {
	out := make([]consolesdk.Token, len(ts))
	for i, t := range ts {
		out[i] = toToken(t, now)
	}
	return out
}

func toTickReport(r service.TickReport) consolesdk.TickReport {
	out := consolesdk.TickReport{
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Candidates: r.Candidates,
		Refreshed:  r.Refreshed,
		Failed:     r.Failed,
		Superseded: r.Superseded,
		Aborted:    r.Aborted,
		Error:      r.Error,
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, consolesdk.RefreshResult{
			TokenID:    res.TokenID,
			UPN:        res.UPN,
			ClientID:   res.ClientID,
			Audience:   res.Audience,
			RTOrigin:   string(res.RTOrigin),
			NewTokenID: res.NewTokenID,
			Error:      res.Error,
		})
	}
	return out
}

func toSchedulerStatus(s service.SchedulerStatus) consolesdk.SchedulerStatus {
	out := consolesdk.SchedulerStatus{
		Running:          s.Running,
		IntervalMinutes:  s.Config.Interval.Minutes(),
		ThresholdMinutes: s.Config.Threshold.Minutes(),
		LastRunAt:        s.LastRunAt,
		NextRunAt:        s.NextRunAt,
		Ticks:            s.Ticks,
		TotalRefreshed:   s.TotalRefreshed,
		TotalFailed:      s.TotalFailed,
	}
	if s.LastReport != nil {
		r := toTickReport(*s.LastReport)
		out.LastReport = &r
	}
	return out
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
