// Package interfaces holds compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...
package interfaces

import (
	"github.com/referenciales/referenciales/internal/geocoding"
)

// =============================================================================
// Geocoding Strategies
// =============================================================================

// Every member of the resolution chain must implement Strategy
var _ geocoding.Strategy = (*geocoding.SIIClient)(nil)
var _ geocoding.Strategy = (*geocoding.Scraper)(nil)
var _ geocoding.Strategy = (*geocoding.ComunaFallback)(nil)
