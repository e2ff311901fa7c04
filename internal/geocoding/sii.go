package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SIIClient resolves coordinates through the auto-geocode-by-rol service.
// This is the first and most authoritative step of the fallback chain.
type SIIClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

type siiGeocodeResponse struct {
	Found      bool    `json:"found"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Direccion  string  `json:"direccion,omitempty"`
	Superficie float64 `json:"superficie,omitempty"`
	Avaluo     int64   `json:"avaluo,omitempty"`
}

func NewSIIClient(baseURL, userAgent string, timeout time.Duration) *SIIClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SIIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

func (c *SIIClient) Name() string {
	return MethodAPIGeocoding
}

// Geocode looks the rol up in the SII geocoding API.
func (c *SIIClient) Geocode(ctx context.Context, rol, comuna string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/geocode?rol=%s&comuna=%s", c.baseURL, url.QueryEscape(rol), url.QueryEscape(comuna))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch geocode data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("rol not found: %s", rol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var data siiGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !data.Found {
		return nil, fmt.Errorf("no geocode result for rol %s", rol)
	}

	return &Result{
		Lat:        data.Lat,
		Lng:        data.Lng,
		Method:     MethodAPIGeocoding,
		Address:    data.Direccion,
		Superficie: data.Superficie,
		Avaluo:     data.Avaluo,
	}, nil
}
