package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"reisekosten/internal/cache"
)

// Route holds a one-way distance lookup between two addresses.
type Route struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	OriginAddress   string  `json:"origin_address"`
	DestAddress     string  `json:"destination_address"`
}

var (
	ErrNoAPIKey      = errors.New("routing: no API key configured")
	ErrNoRoute       = errors.New("routing: no route found")
	ErrRequestDenied = errors.New("routing: request denied")
	ErrQuotaExceeded = errors.New("routing: query limit exceeded")
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

// Client queries the Google Maps Directions API for driving distances.
// One-way lookups are cached; round trips are derived by the caller.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	routes     *cache.LRUCache[Route]
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, cacheSize int, cacheTTL time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		routes:     cache.NewLRUCache[Route](cacheSize, cacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether distance lookups can be performed.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []struct {
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
			StartAddress string `json:"start_address"`
			EndAddress   string `json:"end_address"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route resolves the one-way driving route between two free-form addresses.
func (c *Client) Route(ctx context.Context, origin, destination string) (Route, error) {
	if !c.Enabled() {
		return Route{}, ErrNoAPIKey
	}

	key := origin + "|" + destination
	if cached, ok := c.routes.Get(key); ok {
		slog.DebugContext(ctx, "Route cache hit", "origin", origin, "destination", destination)
		return cached, nil
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", "driving")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Route{}, fmt.Errorf("build directions request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("directions request: unexpected status %d", resp.StatusCode)
	}

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return Route{}, fmt.Errorf("decode directions response: %w", err)
	}

	switch dr.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return Route{}, ErrNoRoute
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return Route{}, ErrQuotaExceeded
	case "REQUEST_DENIED":
		return Route{}, fmt.Errorf("%w: %s", ErrRequestDenied, dr.ErrorMessage)
	default:
		return Route{}, fmt.Errorf("directions status %s: %s", dr.Status, dr.ErrorMessage)
	}

	if len(dr.Routes) == 0 || len(dr.Routes[0].Legs) == 0 {
		return Route{}, ErrNoRoute
	}

	var meters, seconds int
	leg := dr.Routes[0].Legs[0]
	for _, l := range dr.Routes[0].Legs {
		meters += l.Distance.Value
		seconds += l.Duration.Value
	}

	route := Route{
		DistanceKm:      roundKm(meters),
		DurationMinutes: int(math.Round(float64(seconds) / 60)),
		OriginAddress:   leg.StartAddress,
		DestAddress:     dr.Routes[0].Legs[len(dr.Routes[0].Legs)-1].EndAddress,
	}

	c.routes.Set(key, route)
	slog.InfoContext(ctx, "Route resolved",
		"origin", origin,
		"destination", destination,
		"distance_km", route.DistanceKm,
		"duration_min", route.DurationMinutes)

	return route, nil
}

// roundKm converts meters to kilometers with one decimal place.
func roundKm(meters int) float64 {
	return math.Round(float64(meters)/100) / 10
}
