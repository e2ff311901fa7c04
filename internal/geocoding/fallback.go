package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// jitterDegrees spreads comuna-level results so every ungeocoded property
// in a comuna does not collapse onto one point. ±0.005° is roughly 500m.
const jitterDegrees = 0.005

// NominatimClient geocodes free-text place names. Used only by the
// comuna-level fallback, never for rol lookups.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &NominatimClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Search geocodes a place name and returns the top hit.
func (c *NominatimClient) Search(ctx context.Context, query string) (lat, lng float64, err error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1&countrycodes=cl", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch geocode data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no results for %q", query)
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}
	lng, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}
	return lat, lng, nil
}

// ComunaFallback is the last strategy in the chain: geocode the comuna
// name alone and jitter the result. The Result carries an explicit
// warning because the coordinates are approximate.
type ComunaFallback struct {
	client *NominatimClient
}

func NewComunaFallback(client *NominatimClient) *ComunaFallback {
	return &ComunaFallback{
		client: client,
	}
}

func (f *ComunaFallback) Name() string {
	return MethodFallback
}

func (f *ComunaFallback) Geocode(ctx context.Context, rol, comuna string) (*Result, error) {
	if comuna == "" {
		return nil, fmt.Errorf("comuna is empty")
	}

	lat, lng, err := f.client.Search(ctx, comuna+", Chile")
	if err != nil {
		return nil, fmt.Errorf("comuna geocode: %w", err)
	}

	// Uniform jitter in ±jitterDegrees on each axis. The top-level
	// rand functions are safe for the concurrent handler and worker
	// callers that share one strategy instance.
	lat += (rand.Float64()*2 - 1) * jitterDegrees
	lng += (rand.Float64()*2 - 1) * jitterDegrees

	return &Result{
		Lat:     lat,
		Lng:     lng,
		Method:  MethodFallback,
		Warning: "Coordenadas aproximadas a nivel de comuna",
	}, nil
}
