// Package entratest runs a fake identity-platform token endpoint for tests.
package entratest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/jwtx/jwtxtest"
)

// Call is one grant request received by the fake.
type Call struct {
	GrantType    string
	ClientID     string
	RefreshToken string
	Scope        string
	RequestID    string
}

// Response is what the fake answers with. Body is JSON encoded.
type Response struct {
	Status int
	Body   any
	Delay  time.Duration
}

// Server is a fake /oauth2/v2.0/token endpoint.
type Server struct {
	*httptest.Server

	// UPN is placed in minted tokens by the default responder.
	UPN string

	mu      sync.Mutex
	calls   []Call
	respond func(Call) Response
}

// NewServer starts a fake that, by default, mints a one-hour access token for
// the resource named in the scope and hands back the submitted refresh token.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{UPN: "alice@contoso.com"}
	s.respond = s.defaultResponse
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Client returns an entra.Client pointed at the fake.
func (s *Server) Client() *entra.Client {
	return entra.NewClient(entra.ClientConfig{Authority: s.URL, Timeout: 5 * time.Second})
}

// Respond replaces the responder.
func (s *Server) Respond(fn func(Call) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = fn
}

// Calls returns a copy of the received grant requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Minted builds the success body the default responder would send, letting
// tests tweak individual fields.
func (s *Server) Minted(c Call) map[string]any {
	resource, _ := strings.CutSuffix(firstScope(c.Scope), "/.default")
	return map[string]any{
		"token_type": "Bearer",
		"scope":      c.Scope,
		"expires_in": 3599,
		"access_token": jwtxtest.Mint(jwtxtest.Options{
			Audience: resource,
			UPN:      s.UPN,
			ClientID: c.ClientID,
			Scope:    "User.Read",
		}),
		"refresh_token": c.RefreshToken,
		"foci":          "1",
	}
}

// Error returns an AADSTS style error response.
func Error(status int, code, description string) Response {
	return Response{Status: status, Body: map[string]any{
		"error":             code,
		"error_description": description,
		"error_codes":       []int{50076},
		"trace_id":          "00000000-0000-0000-0000-000000000001",
		"correlation_id":    "00000000-0000-0000-0000-000000000002",
	}}
}

func (s *Server) defaultResponse(c Call) Response {
	return Response{Status: http.StatusOK, Body: s.Minted(c)}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	call := Call{
		GrantType:    r.PostForm.Get("grant_type"),
		ClientID:     r.PostForm.Get("client_id"),
		RefreshToken: r.PostForm.Get("refresh_token"),
		Scope:        r.PostForm.Get("scope"),
		RequestID:    r.Header.Get("client-request-id"),
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	respond := s.respond
	s.mu.Unlock()

	resp := respond(call)
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp.Body)
}

func firstScope(scope string) string {
	if f := strings.Fields(scope); len(f) > 0 {
		return f[0]
	}
	return ""
}
