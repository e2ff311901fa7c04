package config

// Default paths and service endpoints
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./referenciales.db"

	// DefaultSIIBaseURL is the geocode-by-rol service endpoint
	DefaultSIIBaseURL = "https://api.sii-geo.cl"

	// DefaultNominatimBaseURL serves the comuna-level fallback geocoding
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultScraperBaseURL is the property-registry portal scraped as a
	// secondary geocoding source
	DefaultScraperBaseURL = "https://www4.sii.cl"

	DefaultGeocodingUserAgent = "referenciales.cl/1.0 (https://github.com/referenciales/referenciales)"
)

// Default map viewport: metropolitan Santiago
const (
	DefaultMapCenterLat = -33.4489
	DefaultMapCenterLng = -70.6693
	DefaultMapZoom      = 10
)
