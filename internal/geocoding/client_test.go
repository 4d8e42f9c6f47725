package geocoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "whatson-backend") {
			t.Errorf("unexpected User-Agent: %s", ua)
		}
		// The postcode must be whitespace-stripped and concatenated.
		if q := r.URL.Query().Get("q"); q != "10 Downing StreetSW1A2AA" {
			t.Errorf("unexpected query: %q", q)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]searchResult{
			{Lat: "51.5034", Lon: "-0.1276", DisplayName: "10 Downing Street, London"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test@example.com", WithRateLimit(100))

	coords, err := client.Resolve(context.Background(), "10 Downing Street", "SW1A 2AA")
	require.NoError(t, err)
	assert.InDelta(t, 51.5034, coords.Lat, 1e-6)
	assert.InDelta(t, -0.1276, coords.Lng, 1e-6)
}

func TestResolve_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test@example.com", WithRateLimit(100))

	_, err := client.Resolve(context.Background(), "nowhere at all", "ZZ99ZZ")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestResolve_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test@example.com", WithRateLimit(100))

	_, err := client.Resolve(context.Background(), "10 Downing Street", "SW1A 2AA")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolve_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test@example.com", WithRateLimit(100))

	_, err := client.Resolve(context.Background(), "10 Downing Street", "SW1A 2AA")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolve_BadCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]searchResult{{Lat: "999", Lon: "0"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test@example.com", WithRateLimit(100))

	_, err := client.Resolve(context.Background(), "somewhere", "AB12CD")
	assert.ErrorIs(t, err, ErrUnavailable)
}
