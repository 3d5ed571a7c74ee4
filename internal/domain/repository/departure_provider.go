package repository

import (
	"context"
	"iter"

	"github.com/lpt-gateway/internal/domain"
)

// DepartureProvider is the capability every upstream protocol adapter offers.
//
// The listing methods return single-use lazy sequences. A non-nil error
// element ends the sequence. Stops without departures are never yielded and
// do not count toward maxStops; each stop carries at most maxDepartures events.
type DepartureProvider interface {
	// Source returns the human readable label of the provider.
	Source() string

	// ResolveLocation geocodes an address or free text. The first upstream
	// match is authoritative. Zero matches fail with
	// errors.ErrNoGeoCoordinatesForLocation.
	ResolveLocation(ctx context.Context, location string) (domain.GeoCoordinates, error)

	// ListNearbyDepartures yields stops with departures around a position.
	ListNearbyDepartures(ctx context.Context, geo domain.GeoCoordinates, maxStops, maxDepartures int) iter.Seq2[domain.Stop, error]

	// ListDeparturesForLocation yields stops with departures for an address
	// or free text.
	ListDeparturesForLocation(ctx context.Context, location string, maxStops, maxDepartures int) iter.Seq2[domain.Stop, error]
}

// ProviderRegistry resolves configured providers.
type ProviderRegistry interface {
	// GetByName fails with errors.ErrUnknownProvider for unregistered names.
	GetByName(ctx context.Context, name string) (DepartureProvider, error)

	// GetByPostalCode fails with errors.ErrNoProviderForPostalCode for
	// unmapped postal codes.
	GetByPostalCode(ctx context.Context, postalCode int) (DepartureProvider, error)

	// Names lists the loaded providers in declaration order.
	Names(ctx context.Context) []string
}
