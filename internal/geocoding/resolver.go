package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
)

// Resolution methods, cheapest and most authoritative first.
const (
	MethodAPIGeocoding = "api_geocoding"
	MethodScraping     = "scraping"
	MethodFallback     = "fallback"
)

var (
	// ErrInvalidRol rejects malformed rol values before any network call.
	ErrInvalidRol = errors.New("rol must match the pattern digits-digits (e.g. 123-45)")
	// ErrNoResult signals that every strategy was exhausted.
	ErrNoResult = errors.New("no geocoding strategy produced a result")
)

// rolPattern: 1-6 digit block number, dash, 1-2 digit parcel number.
var rolPattern = regexp.MustCompile(`^\d{1,6}-\d{1,2}$`)

// Result is what a strategy produces. Only lat/lng are guaranteed;
// scraping may enrich with address, surface and assessed value, and the
// comuna fallback attaches a warning because its coordinates are
// approximate.
type Result struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Rol        string  `json:"rol"`
	Comuna     string  `json:"comuna"`
	Method     string  `json:"-"`
	Address    string  `json:"address,omitempty"`
	Superficie float64 `json:"superficie,omitempty"`
	Avaluo     int64   `json:"avaluo,omitempty"`
	Warning    string  `json:"warning,omitempty"`
}

// Strategy is one way of turning (rol, comuna) into coordinates.
// Implementations return an error for both hard failures and "no result";
// the resolver treats them the same and moves on.
type Strategy interface {
	Name() string
	Geocode(ctx context.Context, rol, comuna string) (*Result, error)
}

// Resolver runs an ordered strategy chain. Strategies run sequentially —
// never in parallel — so the cheap authoritative sources are consulted
// before scraping or approximation, and no external call is wasted.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// ValidRol reports whether rol matches the required pattern.
func ValidRol(rol string) bool {
	return rolPattern.MatchString(rol)
}

// Resolve tries each strategy in order until one succeeds. Strategy
// failures are logged and swallowed; only exhaustion of the whole chain
// is an error, which carries the original rol/comuna for diagnostics.
func (r *Resolver) Resolve(ctx context.Context, rol, comuna string) (*Result, error) {
	if !ValidRol(rol) {
		return nil, ErrInvalidRol
	}

	for _, strategy := range r.strategies {
		result, err := strategy.Geocode(ctx, rol, comuna)
		if err != nil {
			log.Printf("Geocoding strategy %s failed for rol=%s comuna=%s: %v", strategy.Name(), rol, comuna, err)
			continue
		}
		if result == nil {
			continue
		}
		result.Rol = rol
		result.Comuna = comuna
		return result, nil
	}

	return nil, fmt.Errorf("%w (rol=%s, comuna=%s)", ErrNoResult, rol, comuna)
}
