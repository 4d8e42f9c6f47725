// Package geocoding resolves free-text addresses to coordinates through a
// Nominatim-compatible HTTP API.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/whatson-events/whatson-backend/internal/geo"
)

const (
	// DefaultBaseURL is the public Nominatim endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the service per OSM usage policy.
	DefaultUserAgent = "whatson-backend/1.0"
	// DefaultTimeout for a single lookup.
	DefaultTimeout = 5 * time.Second
	// DefaultRateLimit is 1 request per second (OSM policy).
	DefaultRateLimit = rate.Limit(1.0)
)

// ErrNoResults is returned when the geocoder finds nothing for the query.
// Callers surface it as a validation error, not a server failure.
var ErrNoResults = errors.New("no geocoding results found")

// ErrUnavailable wraps every other lookup failure: network errors, quota
// rejections and malformed responses.
var ErrUnavailable = errors.New("geocoding service unavailable")

// Client is a forward-geocoding client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets a custom request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a geocoding client. email is appended to the
// User-Agent header per OSM usage policy.
func NewClient(baseURL, email string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		userAgent:  fmt.Sprintf("%s (%s)", DefaultUserAgent, email),
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve geocodes an address plus postal code. The postcode is stripped
// of whitespace and concatenated onto the address, and the highest-ranked
// result wins. It returns ErrNoResults when the service reports zero
// matches and wraps every other failure in ErrUnavailable.
func (c *Client) Resolve(ctx context.Context, address, postcode string) (geo.Coordinates, error) {
	query := address + stripWhitespace(postcode)
	if query == "" {
		return geo.Coordinates{}, fmt.Errorf("%w: empty query", ErrUnavailable)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	requestURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinates{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return geo.Coordinates{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: bad latitude %q", ErrUnavailable, results[0].Lat)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: bad longitude %q", ErrUnavailable, results[0].Lon)
	}

	coords := geo.Coordinates{Lat: lat, Lng: lng}
	if !coords.Valid() {
		return geo.Coordinates{}, fmt.Errorf("%w: out-of-range coordinates", ErrUnavailable)
	}
	return coords, nil
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
