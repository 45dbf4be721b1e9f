package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/holonet/swapi-gateway/internal/testutil"
	"github.com/holonet/swapi-gateway/pkg/auth"
	"github.com/holonet/swapi-gateway/pkg/cache"
	"github.com/holonet/swapi-gateway/pkg/resolve"
	"github.com/holonet/swapi-gateway/pkg/store"
	"github.com/holonet/swapi-gateway/pkg/upstream"
)

// testGateway runs the full router against a mock upstream catalog, an
// in-memory cache and an in-memory document store.
type testGateway struct {
	server *httptest.Server
	mock   *testutil.MockCatalog
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	mock := testutil.NewMockCatalog()
	t.Cleanup(mock.Close)

	client, err := upstream.New(upstream.Config{
		BaseURL:   mock.URL(),
		UserAgent: "swapi-gateway-test/1.0",
		Timeout:   5 * time.Second,
		Retry: upstream.RetryConfig{
			MaxAttempts:       1,
			InitialBackoff:    10 * time.Millisecond,
			MaxBackoff:        50 * time.Millisecond,
			BackoffMultiplier: 2,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create upstream client: %v", err)
	}

	documents, err := store.Open("")
	if err != nil {
		t.Fatalf("Failed to open document store: %v", err)
	}
	t.Cleanup(func() { documents.Close() })

	tokens, err := auth.NewManager("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("Failed to create token manager: %v", err)
	}

	resolver := resolve.NewResolver(cache.NewMemoryStore(), client, 5)
	router := NewRouter(Deps{
		Upstream: client,
		Expander: resolve.NewExpander(resolver),
		Store:    documents,
		Tokens:   tokens,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testGateway{server: server, mock: mock}
}

// do issues a request against the gateway and decodes the JSON body into out
// (when out is non-nil).
func (g *testGateway) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, g.server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response for %s %s: %v", method, path, err)
		}
	}
	return resp
}

// registerAndLogin creates an account and returns its access token.
func (g *testGateway) registerAndLogin(t *testing.T, username, password string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": password}
	resp := g.do(t, http.MethodPost, "/register", "", creds, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register returned %d", resp.StatusCode)
	}

	var tokenResp map[string]string
	resp = g.do(t, http.MethodPost, "/token", "", creds, &tokenResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token returned %d", resp.StatusCode)
	}
	if tokenResp["access_token"] == "" {
		t.Fatal("no access token issued")
	}
	return tokenResp["access_token"]
}
