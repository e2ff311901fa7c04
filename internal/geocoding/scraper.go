package geocoding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Scraper extracts coordinates and property enrichment from the public
// property-registry portal when the geocoding API comes up empty. It only
// joins the fallback chain when administratively enabled, since scraping
// is slower and more brittle than the API.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

var (
	coordsPattern  = regexp.MustCompile(`data-lat="(-?\d+\.?\d*)"\s+data-lng="(-?\d+\.?\d*)"`)
	addressPattern = regexp.MustCompile(`<span id="direccion">([^<]+)</span>`)
	surfacePattern = regexp.MustCompile(`<span id="superficie">(\d+\.?\d*)</span>`)
	avaluoPattern  = regexp.MustCompile(`<span id="avaluo">(\d+)</span>`)
)

func NewScraper(baseURL, userAgent string, timeout time.Duration) *Scraper {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

func (s *Scraper) Name() string {
	return MethodScraping
}

// Geocode fetches the property page for the rol and scrapes coordinates
// plus whatever enrichment fields the page exposes.
func (s *Scraper) Geocode(ctx context.Context, rol, comuna string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/avalos/propiedad?rol=%s&comuna=%s", s.baseURL, url.QueryEscape(rol), url.QueryEscape(comuna))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch property page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read property page: %w", err)
	}

	return s.parsePage(string(body), rol)
}

func (s *Scraper) parsePage(page, rol string) (*Result, error) {
	m := coordsPattern.FindStringSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("no coordinates found on property page for rol %s", rol)
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, fmt.Errorf("parse scraped lat %q: %w", m[1], err)
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, fmt.Errorf("parse scraped lng %q: %w", m[2], err)
	}

	result := &Result{
		Lat:    lat,
		Lng:    lng,
		Method: MethodScraping,
	}

	if m := addressPattern.FindStringSubmatch(page); m != nil {
		result.Address = strings.TrimSpace(m[1])
	}
	if m := surfacePattern.FindStringSubmatch(page); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.Superficie = v
		}
	}
	if m := avaluoPattern.FindStringSubmatch(page); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			result.Avaluo = v
		}
	}

	return result, nil
}
