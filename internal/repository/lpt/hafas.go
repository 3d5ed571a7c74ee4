package lpt

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/infrastructure/hafas"
	apperrors "github.com/lpt-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

// HafasAPI is the subset of the HAFAS ReST client used by HafasProvider.
type HafasAPI interface {
	Locations(ctx context.Context, input, locType string) (*hafas.LocationList, error)
	NearbyStops(ctx context.Context, lat, lon float64) (*hafas.LocationList, error)
	DepartureBoard(ctx context.Context, stopID string) (*hafas.DepartureBoard, error)
}

// HafasProvider adapts a HAFAS endpoint.
//
// A HAFAS departure can be operated by several products at once, each
// product becomes its own StopEvent. When an address cannot be geocoded,
// ListDeparturesForLocation yields an empty sequence instead of an error.
type HafasProvider struct {
	client   HafasAPI
	source   string
	location *time.Location
	logger   *zap.Logger
}

func NewHafasProvider(client HafasAPI, source string, location *time.Location, logger *zap.Logger) *HafasProvider {
	if location == nil {
		location = time.Local
	}
	return &HafasProvider{
		client:   client,
		source:   source,
		location: location,
		logger:   logger,
	}
}

func (p *HafasProvider) Source() string {
	return p.source
}

// ResolveLocation returns the position of the first address match.
func (p *HafasProvider) ResolveLocation(ctx context.Context, location string) (domain.GeoCoordinates, error) {
	list, err := p.client.Locations(ctx, location, "A")
	if err != nil {
		return domain.GeoCoordinates{}, upstreamError(err)
	}
	if len(list.CoordLocation) == 0 {
		return domain.GeoCoordinates{}, apperrors.ErrNoGeoCoordinatesForLocation.WithDetail("location", location)
	}

	first := list.CoordLocation[0]
	return domain.GeoCoordinates{Latitude: first.Lat, Longitude: first.Lon}, nil
}

func (p *HafasProvider) ListNearbyDepartures(
	ctx context.Context,
	geo domain.GeoCoordinates,
	maxStops, maxDepartures int,
) iter.Seq2[domain.Stop, error] {
	maxStops, maxDepartures = normalizeLimits(maxStops, maxDepartures)

	candidates := func(yield func(domain.Stop, error) bool) {
		nearby, err := p.client.NearbyStops(ctx, geo.Latitude, geo.Longitude)
		if err != nil {
			yield(domain.Stop{}, upstreamError(err))
			return
		}

		for _, stopLocation := range nearby.StopLocation {
			if err := ctx.Err(); err != nil {
				yield(domain.Stop{}, err)
				return
			}
			if stopLocation.ID == "" {
				p.logger.Warn("Skipping stop location without id", zap.String("name", stopLocation.Name))
				continue
			}

			board, err := p.client.DepartureBoard(ctx, stopLocation.ID)
			if err != nil {
				p.logger.Warn("Skipping stop, departure board unavailable",
					zap.String("stop_id", stopLocation.ID),
					zap.Error(err))
				continue
			}

			stop := domain.Stop{
				ID:   stopLocation.ID,
				Name: stopLocation.Name,
				Location: domain.GeoCoordinates{
					Latitude:  stopLocation.Lat,
					Longitude: stopLocation.Lon,
				},
				Departures: collectEvents(board.Departure, maxDepartures, p.stopEvents, p.logger, stopLocation.ID),
			}
			if !yield(stop, nil) {
				return
			}
		}
	}

	return singleUse(limitStops(candidates, maxStops))
}

// ListDeparturesForLocation treats a failed geocoding as "no results".
func (p *HafasProvider) ListDeparturesForLocation(
	ctx context.Context,
	location string,
	maxStops, maxDepartures int,
) iter.Seq2[domain.Stop, error] {
	return singleUse(func(yield func(domain.Stop, error) bool) {
		geo, err := p.ResolveLocation(ctx, location)
		if errors.Is(err, apperrors.ErrNoGeoCoordinatesForLocation) {
			p.logger.Info("No geo coordinates for location", zap.String("location", location))
			return
		}
		if err != nil {
			yield(domain.Stop{}, err)
			return
		}

		for stop, err := range p.ListNearbyDepartures(ctx, geo, maxStops, maxDepartures) {
			if !yield(stop, err) {
				return
			}
		}
	})
}

// stopEvents expands a departure into one event per product.
func (p *HafasProvider) stopEvents(departure hafas.Departure) ([]domain.StopEvent, error) {
	if len(departure.Product) == 0 {
		return nil, fmt.Errorf("departure has no product")
	}

	scheduled, err := parseDateAndTime(departure.Date, departure.Time, p.location)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled time: %w", err)
	}

	var estimated *time.Time
	if departure.RTTime != nil && *departure.RTTime != "" {
		date := departure.Date
		if departure.RTDate != nil && *departure.RTDate != "" {
			date = *departure.RTDate
		}
		t, err := parseDateAndTime(date, *departure.RTTime, p.location)
		if err != nil {
			return nil, fmt.Errorf("invalid real-time: %w", err)
		}
		estimated = &t
	}

	events := make([]domain.StopEvent, 0, len(departure.Product))
	for _, product := range departure.Product {
		event := domain.StopEvent{
			Type:        firstNonEmpty(product.CatOutL, product.CatOut, product.CatOutS),
			Line:        firstNonEmpty(product.Line, product.Name),
			Destination: departure.Direction,
			Scheduled:   scheduled,
		}
		if estimated != nil {
			e := *estimated
			event.Estimated = &e
		}
		events = append(events, event)
	}
	return events, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
