package mapfeed

// PopupField describes one field the map popup shows, so frontends can
// render without hardcoding the schema.
type PopupField struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Format string `json:"format,omitempty"` // "currency", "date", "number"
}

// Config is the static payload of the public map-config endpoint.
type Config struct {
	Center        Center       `json:"center"`
	DefaultZoom   int          `json:"defaultZoom"`
	MinZoom       int          `json:"minZoom"`
	MaxZoom       int          `json:"maxZoom"`
	TileURL       string       `json:"tileUrl"`
	Attribution   string       `json:"attribution"`
	PopupFields   []PopupField `json:"popupFields"`
	Documentation string       `json:"documentation"`
}

// NewConfig builds the map configuration from the configured viewport.
func NewConfig(center Center, defaultZoom int) Config {
	return Config{
		Center:      center,
		DefaultZoom: defaultZoom,
		MinZoom:     4,
		MaxZoom:     18,
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
		PopupFields: []PopupField{
			{Key: "predio", Label: "Predio"},
			{Key: "comuna", Label: "Comuna"},
			{Key: "rol", Label: "Rol"},
			{Key: "fechaescritura", Label: "Fecha escritura", Format: "date"},
			{Key: "monto", Label: "Monto", Format: "currency"},
			{Key: "superficie", Label: "Superficie (m²)", Format: "number"},
			{Key: "cbr", Label: "Conservador"},
			{Key: "fojas", Label: "Fojas"},
			{Key: "numero", Label: "Número", Format: "number"},
			{Key: "anio", Label: "Año", Format: "number"},
		},
		Documentation: "GET /api/public/map-data returns sanitized referencial points. " +
			"Optional query filters: comuna (case-insensitive), anio, limit. " +
			"Party names and submitter identity are never included.",
	}
}
