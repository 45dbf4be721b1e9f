package resolve

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/holonet/swapi-gateway/internal/testutil"
	"github.com/holonet/swapi-gateway/pkg/cache"
	"github.com/holonet/swapi-gateway/pkg/upstream"
)

// failingStore is a cache.Store whose backend is down: every operation
// errors.
type failingStore struct{}

func (failingStore) Get(context.Context, cache.Key) ([]byte, error) {
	return nil, errors.New("cache backend down")
}

func (failingStore) Set(context.Context, cache.Key, []byte, time.Duration) error {
	return errors.New("cache backend down")
}

func (failingStore) Delete(context.Context, cache.Key) error {
	return errors.New("cache backend down")
}

func newTestResolver(t *testing.T, mock *testutil.MockCatalog) *Resolver {
	t.Helper()

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

	return NewResolver(cache.NewMemoryStore(), client, 5)
}

func TestResolve_ListInOrder(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker"}`)
	mock.SetRecord("people", 2, `{"name": "C-3PO"}`)

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("films", "people")

	film := Record{
		"title":      "A New Hope",
		"characters": []any{"https://swapi.dev/api/people/1/", "https://swapi.dev/api/people/2/"},
	}
	resolver.Resolve(context.Background(), rel, []Record{film})

	characters, ok := film["characters"].([]any)
	if !ok {
		t.Fatalf("characters is %T, want []any", film["characters"])
	}
	if len(characters) != 2 {
		t.Fatalf("got %d characters, want 2", len(characters))
	}

	first, ok := characters[0].(Record)
	if !ok {
		t.Fatalf("characters[0] is %T, want a resolved record", characters[0])
	}
	if first["name"] != "Luke Skywalker" {
		t.Errorf("characters[0] name = %v, want Luke Skywalker", first["name"])
	}
	second, ok := characters[1].(Record)
	if !ok {
		t.Fatalf("characters[1] is %T, want a resolved record", characters[1])
	}
	if second["name"] != "C-3PO" {
		t.Errorf("characters[1] name = %v, want C-3PO", second["name"])
	}
}

func TestResolve_DegradesFailedReference(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker"}`)
	// people/99 is not configured, so the mock answers 404.

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("films", "people")

	film := Record{
		"characters": []any{"https://swapi.dev/api/people/1/", "https://swapi.dev/api/people/99/"},
	}
	resolver.Resolve(context.Background(), rel, []Record{film})

	characters := film["characters"].([]any)
	if len(characters) != 2 {
		t.Fatalf("got %d characters, want 2 (degraded entries keep their slot)", len(characters))
	}

	if _, ok := characters[0].(Record); !ok {
		t.Errorf("characters[0] should have resolved, got %T", characters[0])
	}
	if ref, ok := characters[1].(string); !ok || ref != "https://swapi.dev/api/people/99/" {
		t.Errorf("characters[1] = %v, want original reference string", characters[1])
	}
}

func TestResolve_CacheHitSkipsUpstream(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker"}`)

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("films", "people")

	for i := 0; i < 2; i++ {
		film := Record{"characters": []any{"https://swapi.dev/api/people/1/"}}
		resolver.Resolve(context.Background(), rel, []Record{film})

		characters := film["characters"].([]any)
		person, ok := characters[0].(Record)
		if !ok || person["name"] != "Luke Skywalker" {
			t.Fatalf("resolution %d failed: %v", i+1, characters[0])
		}
	}

	if count := mock.PathCount("/people/1"); count != 1 {
		t.Errorf("upstream fetched %d times, want 1 (second resolution must hit the cache)", count)
	}
}

func TestResolve_CacheFailureStillResolves(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker"}`)

	client, err := upstream.New(upstream.Config{
		BaseURL: mock.URL(),
		Timeout: 5 * time.Second,
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

	// Cache reads and writes both fail; resolution must fall through to
	// upstream and still return the fetched record.
	resolver := NewResolver(failingStore{}, client, 5)
	rel, _ := Lookup("films", "people")

	film := Record{"characters": []any{"https://swapi.dev/api/people/1/"}}
	resolver.Resolve(context.Background(), rel, []Record{film})

	characters := film["characters"].([]any)
	person, ok := characters[0].(Record)
	if !ok {
		t.Fatalf("characters[0] is %T, want a resolved record despite cache failure", characters[0])
	}
	if person["name"] != "Luke Skywalker" {
		t.Errorf("name = %v, want Luke Skywalker", person["name"])
	}

	// Nothing was cached, so a second resolution fetches again.
	film2 := Record{"characters": []any{"https://swapi.dev/api/people/1/"}}
	resolver.Resolve(context.Background(), rel, []Record{film2})

	if count := mock.PathCount("/people/1"); count != 2 {
		t.Errorf("upstream fetched %d times, want 2 (failed cache writes store nothing)", count)
	}
}

func TestResolve_TimeoutDegrades(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker"}`)
	mock.SetResponse("/people/2", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"name": "C-3PO"}`,
		Delay:      500 * time.Millisecond,
	})

	client, err := upstream.New(upstream.Config{
		BaseURL: mock.URL(),
		Timeout: 50 * time.Millisecond,
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

	resolver := NewResolver(cache.NewMemoryStore(), client, 5)
	rel, _ := Lookup("films", "people")

	film := Record{"characters": []any{
		"https://swapi.dev/api/people/1/",
		"https://swapi.dev/api/people/2/",
	}}
	resolver.Resolve(context.Background(), rel, []Record{film})

	characters := film["characters"].([]any)

	// A timed-out reference degrades like a non-success status: the
	// original string is kept and siblings still resolve.
	if _, ok := characters[0].(Record); !ok {
		t.Errorf("characters[0] should resolve, got %T", characters[0])
	}
	if ref, ok := characters[1].(string); !ok || ref != "https://swapi.dev/api/people/2/" {
		t.Errorf("characters[1] = %v, want original reference kept after timeout", characters[1])
	}
}

func TestResolve_Singular(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("planets", 1, `{"name": "Tatooine"}`)

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("people", "homeworld")

	person := Record{
		"name":      "Luke Skywalker",
		"homeworld": "https://swapi.dev/api/planets/1/",
	}
	resolver.Resolve(context.Background(), rel, []Record{person})

	homeworld, ok := person["homeworld"].(Record)
	if !ok {
		t.Fatalf("homeworld is %T, want a resolved record", person["homeworld"])
	}
	if homeworld["name"] != "Tatooine" {
		t.Errorf("homeworld name = %v, want Tatooine", homeworld["name"])
	}
}

func TestResolve_SingularAbsentField(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("people", "homeworld")

	person := Record{"name": "Luke Skywalker"}
	resolver.Resolve(context.Background(), rel, []Record{person})

	if _, exists := person["homeworld"]; exists {
		t.Errorf("absent singular field should stay absent, got %v", person["homeworld"])
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("no upstream request expected, got %d", mock.GetRequestCount())
	}
}

func TestResolve_MalformedReference(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("films", "people")

	film := Record{"characters": []any{"not-a-reference"}}
	resolver.Resolve(context.Background(), rel, []Record{film})

	characters := film["characters"].([]any)
	if ref, ok := characters[0].(string); !ok || ref != "not-a-reference" {
		t.Errorf("malformed reference should be kept verbatim, got %v", characters[0])
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("malformed reference must not reach upstream, got %d requests", mock.GetRequestCount())
	}
}

func TestResolve_NormalizesFieldShapes(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("films", 1, `{"title": "A New Hope"}`)

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("people", "films")

	// A lone string normalizes to a one-element list.
	person := Record{"films": "https://swapi.dev/api/films/1/"}
	resolver.Resolve(context.Background(), rel, []Record{person})

	films, ok := person["films"].([]any)
	if !ok || len(films) != 1 {
		t.Fatalf("lone string should become a one-element list, got %v", person["films"])
	}
	if film, ok := films[0].(Record); !ok || film["title"] != "A New Hope" {
		t.Errorf("films[0] = %v, want resolved film record", films[0])
	}

	// Absent field normalizes to an empty list.
	empty := Record{"name": "nobody"}
	resolver.Resolve(context.Background(), rel, []Record{empty})
	if films, ok := empty["films"].([]any); !ok || len(films) != 0 {
		t.Errorf("absent list field should become empty list, got %v", empty["films"])
	}
}

func TestResolve_Idempotent(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()

	mock.SetRecord("people", 1, `{"name": "Luke Skywalker"}`)

	resolver := newTestResolver(t, mock)
	rel, _ := Lookup("films", "people")

	film := Record{"characters": []any{"https://swapi.dev/api/people/1/"}}
	resolver.Resolve(context.Background(), rel, []Record{film})
	// Second pass over already-resolved records must leave them alone.
	resolver.Resolve(context.Background(), rel, []Record{film})

	characters := film["characters"].([]any)
	if len(characters) != 1 {
		t.Fatalf("got %d characters, want 1", len(characters))
	}
	person, ok := characters[0].(Record)
	if !ok || person["name"] != "Luke Skywalker" {
		t.Errorf("resolved record should pass through unchanged, got %v", characters[0])
	}
	if count := mock.PathCount("/people/1"); count != 1 {
		t.Errorf("upstream fetched %d times, want 1", count)
	}
}
