package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/holonet/swapi-gateway/internal/testutil"
)

func newTestClient(t *testing.T, mock *testutil.MockCatalog) *Client {
	t.Helper()

	client, err := New(Config{
		BaseURL:   mock.URL(),
		UserAgent: "swapi-gateway-test/1.0",
		Timeout:   5 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    10 * time.Millisecond,
			MaxBackoff:        50 * time.Millisecond,
			BackoffMultiplier: 2,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New without base URL should fail")
	}
}

func TestGetCollection(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetListing("people", `{
		"count": 2,
		"next": "https://swapi.dev/api/people/?page=2",
		"previous": null,
		"results": [{"name": "Luke Skywalker"}, {"name": "C-3PO"}]
	}`)

	client := newTestClient(t, mock)
	page, err := client.GetCollection(context.Background(), "people", "")
	if err != nil {
		t.Fatalf("GetCollection failed: %v", err)
	}

	if page.Count != 2 {
		t.Errorf("Count = %d, want 2", page.Count)
	}
	if page.Next == nil || *page.Next != "https://swapi.dev/api/people/?page=2" {
		t.Errorf("Next = %v, want upstream next link", page.Next)
	}
	if page.Previous != nil {
		t.Errorf("Previous = %v, want nil", page.Previous)
	}
	if len(page.Results) != 2 || page.Results[0]["name"] != "Luke Skywalker" {
		t.Errorf("unexpected results: %v", page.Results)
	}
}

func TestGetCollection_SearchEscaped(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	var gotQuery string
	mock.SetHandler("/people", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 0, "results": []}`))
	})

	client := newTestClient(t, mock)
	if _, err := client.GetCollection(context.Background(), "people", "luke sky"); err != nil {
		t.Fatalf("GetCollection failed: %v", err)
	}
	if gotQuery != "search=luke+sky" {
		t.Errorf("query = %q, want search=luke+sky", gotQuery)
	}
}

func TestGetRecord(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker", "height": "172"}`)

	client := newTestClient(t, mock)
	record, err := client.GetRecord(context.Background(), "people", 1)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if record["name"] != "Luke Skywalker" {
		t.Errorf("name = %v, want Luke Skywalker", record["name"])
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	client := newTestClient(t, mock)
	_, err := client.GetRecord(context.Background(), "people", 404)
	if err == nil {
		t.Fatal("expected error on 404")
	}

	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("error is %T, want *Error", err)
	}
	if ue.StatusCode != http.StatusNotFound || ue.ErrorClass != ErrorClassClient {
		t.Errorf("got status %d class %s, want 404 client", ue.StatusCode, ue.ErrorClass)
	}
	if count := mock.PathCount("/people/404"); count != 1 {
		t.Errorf("4xx retried: %d requests, want 1", count)
	}
}

func TestGet_ServerErrorRetried(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	// Fail twice, then succeed.
	attempts := 0
	mock.SetHandler("/people/1", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "Luke Skywalker"}`))
	})

	client := newTestClient(t, mock)
	record, err := client.GetRecord(context.Background(), "people", 1)
	if err != nil {
		t.Fatalf("GetRecord failed after retries: %v", err)
	}
	if record["name"] != "Luke Skywalker" {
		t.Errorf("name = %v, want Luke Skywalker", record["name"])
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestGet_RetryExhausted(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetResponse("/people/1", testutil.MockResponse{StatusCode: http.StatusServiceUnavailable})

	client := newTestClient(t, mock)
	_, err := client.GetRecord(context.Background(), "people", 1)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if count := mock.PathCount("/people/1"); count != 3 {
		t.Errorf("made %d attempts, want 3", count)
	}
}

func TestGet_ContextCancelledDuringBackoff(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetResponse("/people/1", testutil.MockResponse{StatusCode: http.StatusInternalServerError})

	client, err := New(Config{
		BaseURL: mock.URL(),
		Timeout: 5 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    time.Second,
			MaxBackoff:        time.Second,
			BackoffMultiplier: 2,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.GetRecord(ctx, "people", 1)
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
}
