package lpt

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/infrastructure/trias"
	apperrors "github.com/lpt-gateway/internal/pkg/errors"
	"github.com/lpt-gateway/internal/pkg/utils"
	"go.uber.org/zap"
)

// TriasAPI is the subset of the TRIAS client used by TriasProvider.
type TriasAPI interface {
	GeoCoordinates(ctx context.Context, address string) (*trias.GeoPosition, error)
	Stops(ctx context.Context, position trias.GeoPosition) (*trias.LocationInformationResponse, error)
	StopEvents(ctx context.Context, stopPointRef string) (*trias.StopEventResponse, error)
}

// TriasProvider adapts a TRIAS endpoint.
//
// With fixAddress set, German umlauts and ß in address text are
// transliterated before geocoding. When an address cannot be geocoded,
// ListDeparturesForLocation yields ErrNoGeoCoordinatesForLocation.
type TriasProvider struct {
	client     TriasAPI
	source     string
	fixAddress bool
	location   *time.Location
	logger     *zap.Logger
}

func NewTriasProvider(client TriasAPI, source string, fixAddress bool, location *time.Location, logger *zap.Logger) *TriasProvider {
	if location == nil {
		location = time.Local
	}
	return &TriasProvider{
		client:     client,
		source:     source,
		fixAddress: fixAddress,
		location:   location,
		logger:     logger,
	}
}

func (p *TriasProvider) Source() string {
	return p.source
}

func (p *TriasProvider) ResolveLocation(ctx context.Context, location string) (domain.GeoCoordinates, error) {
	query := location
	if p.fixAddress {
		query = utils.FoldGermanUmlauts(query)
	}

	position, err := p.client.GeoCoordinates(ctx, query)
	if err != nil {
		return domain.GeoCoordinates{}, upstreamError(err)
	}
	if position == nil {
		return domain.GeoCoordinates{}, apperrors.ErrNoGeoCoordinatesForLocation.WithDetail("location", location)
	}

	return domain.GeoCoordinates{Latitude: position.Latitude, Longitude: position.Longitude}, nil
}

func (p *TriasProvider) ListNearbyDepartures(
	ctx context.Context,
	geo domain.GeoCoordinates,
	maxStops, maxDepartures int,
) iter.Seq2[domain.Stop, error] {
	maxStops, maxDepartures = normalizeLimits(maxStops, maxDepartures)

	candidates := func(yield func(domain.Stop, error) bool) {
		response, err := p.client.Stops(ctx, trias.GeoPosition{Latitude: geo.Latitude, Longitude: geo.Longitude})
		if err != nil {
			yield(domain.Stop{}, upstreamError(err))
			return
		}

		for i, result := range response.Location {
			if err := ctx.Err(); err != nil {
				yield(domain.Stop{}, err)
				return
			}

			stop, err := p.stop(result.Location)
			if err != nil {
				p.logger.Warn("Skipping malformed location", zap.Int("index", i), zap.Error(err))
				continue
			}

			events, err := p.client.StopEvents(ctx, stop.ID)
			if err != nil {
				p.logger.Warn("Skipping stop, stop events unavailable",
					zap.String("stop_id", stop.ID),
					zap.Error(err))
				continue
			}

			stop.Departures = collectEvents(events.StopEventResult, maxDepartures, p.stopEvent, p.logger, stop.ID)
			if !yield(stop, nil) {
				return
			}
		}
	}

	return singleUse(limitStops(candidates, maxStops))
}

func (p *TriasProvider) ListDeparturesForLocation(
	ctx context.Context,
	location string,
	maxStops, maxDepartures int,
) iter.Seq2[domain.Stop, error] {
	return departuresForLocation(ctx, p, location, maxStops, maxDepartures)
}

func (p *TriasProvider) stop(location trias.Location) (domain.Stop, error) {
	if location.StopPoint == nil || location.StopPoint.StopPointRef == "" {
		return domain.Stop{}, fmt.Errorf("location has no stop point reference")
	}
	if location.GeoPosition == nil {
		return domain.Stop{}, fmt.Errorf("stop point %s has no geo position", location.StopPoint.StopPointRef)
	}

	return domain.Stop{
		ID:   location.StopPoint.StopPointRef,
		Name: location.StopPoint.StopPointName.Text,
		Location: domain.GeoCoordinates{
			Latitude:  location.GeoPosition.Latitude,
			Longitude: location.GeoPosition.Longitude,
		},
	}, nil
}

func (p *TriasProvider) stopEvent(result trias.StopEventResult) ([]domain.StopEvent, error) {
	call := result.StopEvent.ThisCall.CallAtStop
	if call.ServiceDeparture == nil {
		return nil, fmt.Errorf("stop event has no service departure")
	}

	scheduled, err := parseDateTime(call.ServiceDeparture.TimetabledTime, p.location)
	if err != nil {
		return nil, fmt.Errorf("invalid timetabled time: %w", err)
	}

	var estimated *time.Time
	if raw := call.ServiceDeparture.EstimatedTime; raw != nil {
		t, err := parseDateTime(*raw, p.location)
		if err != nil {
			return nil, fmt.Errorf("invalid estimated time: %w", err)
		}
		estimated = &t
	}

	service := result.StopEvent.Service
	return []domain.StopEvent{{
		Type:        firstNonEmpty(service.Mode.Name.Text, service.Mode.PtMode),
		Line:        service.PublishedLineName.Text,
		Destination: service.DestinationText.Text,
		Scheduled:   scheduled,
		Estimated:   estimated,
	}}, nil
}
