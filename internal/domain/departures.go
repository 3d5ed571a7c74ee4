package domain

import "time"

// GeoCoordinates is an immutable WGS84 position.
type GeoCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StopEvent is one scheduled departure at a stop.
// Estimated is nil when the provider has no real-time data for the service.
// No ordering between Scheduled and Estimated is assumed.
type StopEvent struct {
	Type        string     `json:"type"`
	Line        string     `json:"line"`
	Destination string     `json:"destination"`
	Scheduled   time.Time  `json:"scheduled"`
	Estimated   *time.Time `json:"estimated"`
}

// Stop is a public transport stop with its upcoming departures in upstream order.
type Stop struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Location   GeoCoordinates `json:"location"`
	Departures []StopEvent    `json:"departures"`
}

// DeparturesResult bundles the stops found for a target together with the
// label of the provider that produced them.
type DeparturesResult struct {
	Stops  []Stop
	source string
}

// NewDeparturesResult creates a result bundle. An empty source is replaced by
// UnknownSource so that a result never goes out without provenance.
func NewDeparturesResult(source string, stops []Stop) *DeparturesResult {
	if source == "" {
		source = UnknownSource
	}
	if stops == nil {
		stops = []Stop{}
	}
	return &DeparturesResult{Stops: stops, source: source}
}

// Source returns the provider label. It is never empty.
func (r *DeparturesResult) Source() string {
	return r.source
}

const UnknownSource = "unknown"
