package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/cache"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/internal/console/upstream"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/stretchr/testify/require"
)

type stubTokens struct {
	err   error
	calls atomic.Int32
}

func (s *stubTokens) Resolve(_ context.Context, audience, identity string) (service.UsableToken, error) {
	s.calls.Add(1)
	if s.err != nil {
		return service.UsableToken{}, s.err
	}
	if identity == "" {
		identity = "alice@contoso.com"
	}
	return service.UsableToken{
		UPN:         identity,
		Audience:    audience,
		AccessToken: "token-for-" + identity,
	}, nil
}

type fakeGraph struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeGraph(t *testing.T, handler http.HandlerFunc) *fakeGraph {
	t.Helper()
	g := &fakeGraph{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(g.Close)
	return g
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"userPrincipalName":"` + r.Header.Get("Authorization")[len("Bearer token-for-"):] + `"}`))
}

type me struct {
	UserPrincipalName string `json:"userPrincipalName"`
}

func TestGetJSONCachesPerIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := newFakeGraph(t, meHandler)
	tokens := &stubTokens{}
	caller := upstream.NewCaller(tokens, cache.NewMemory(time.Minute), nil, time.Second)

	req := upstream.Request{
		Audience:  entra.AudienceGraph,
		URL:       graph.URL + "/v1.0/me",
		Operation: "graph.me",
	}

	var first, second me
	require.NoError(t, caller.GetJSON(ctx, req, &first))
	require.NoError(t, caller.GetJSON(ctx, req, &second))
	require.Equal(t, "alice@contoso.com", first.UserPrincipalName)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, graph.hits.Load())
	require.EqualValues(t, 2, tokens.calls.Load())

	req.Identity = "bob@contoso.com"
	var bob me
	require.NoError(t, caller.GetJSON(ctx, req, &bob))
	require.Equal(t, "bob@contoso.com", bob.UserPrincipalName)
	require.EqualValues(t, 2, graph.hits.Load())
}

func TestGetJSONParamsAreKeyed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := newFakeGraph(t, meHandler)
	caller := upstream.NewCaller(&stubTokens{}, cache.NewMemory(time.Minute), nil, time.Second)

	for _, top := range []int{5, 10, 5} {
		err := caller.GetJSON(ctx, upstream.Request{
			Audience:  entra.AudienceGraph,
			URL:       graph.URL + "/v1.0/me",
			Operation: "graph.me",
			Params:    map[string]int{"top": top},
		}, nil)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, graph.hits.Load())
}

func TestGetJSONStatusErrorIsNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := newFakeGraph(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"Authorization_RequestDenied"}}`))
	})
	caller := upstream.NewCaller(&stubTokens{}, cache.NewMemory(time.Minute), nil, time.Second)
	req := upstream.Request{Audience: entra.AudienceGraph, URL: graph.URL, Operation: "graph.me"}

	for range 2 {
		var out me
		err := caller.GetJSON(ctx, req, &out)

		var serr *upstream.StatusError
		require.True(t, errors.As(err, &serr))
		require.Equal(t, http.StatusForbidden, serr.StatusCode)
		require.Contains(t, string(serr.Body), "Authorization_RequestDenied")
	}
	require.EqualValues(t, 2, graph.hits.Load())
}

func TestGetJSONTimeout(t *testing.T) {
	t.Parallel()

	graph := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	caller := upstream.NewCaller(&stubTokens{}, nil, nil, 50*time.Millisecond)

	err := caller.GetJSON(context.Background(), upstream.Request{
		Audience:  entra.AudienceGraph,
		URL:       graph.URL,
		Operation: "graph.me",
	}, nil)
	require.ErrorIs(t, err, entra.ErrUpstreamTimeout)
}

func TestGetJSONResolutionErrorsPassThrough(t *testing.T) {
	t.Parallel()

	graph := newFakeGraph(t, meHandler)
	caller := upstream.NewCaller(&stubTokens{err: service.ErrNoActiveContext}, cache.NewMemory(0), nil, 0)

	err := caller.GetJSON(context.Background(), upstream.Request{
		Audience:  entra.AudienceGraph,
		URL:       graph.URL,
		Operation: "graph.me",
	}, nil)
	require.ErrorIs(t, err, service.ErrNoActiveContext)
	require.Zero(t, graph.hits.Load())
}
