package lpt

import (
	"context"
	"iter"
	"time"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/infrastructure/hafas"
	"github.com/lpt-gateway/internal/infrastructure/trias"
	"github.com/stretchr/testify/mock"
)

var testLocation = time.FixedZone("CET", 3600)

type MockHafasAPI struct {
	mock.Mock
}

func (m *MockHafasAPI) Locations(ctx context.Context, input, locType string) (*hafas.LocationList, error) {
	args := m.Called(ctx, input, locType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hafas.LocationList), args.Error(1)
}

func (m *MockHafasAPI) NearbyStops(ctx context.Context, lat, lon float64) (*hafas.LocationList, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hafas.LocationList), args.Error(1)
}

func (m *MockHafasAPI) DepartureBoard(ctx context.Context, stopID string) (*hafas.DepartureBoard, error) {
	args := m.Called(ctx, stopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hafas.DepartureBoard), args.Error(1)
}

type MockTriasAPI struct {
	mock.Mock
}

func (m *MockTriasAPI) GeoCoordinates(ctx context.Context, address string) (*trias.GeoPosition, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trias.GeoPosition), args.Error(1)
}

func (m *MockTriasAPI) Stops(ctx context.Context, position trias.GeoPosition) (*trias.LocationInformationResponse, error) {
	args := m.Called(ctx, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trias.LocationInformationResponse), args.Error(1)
}

func (m *MockTriasAPI) StopEvents(ctx context.Context, stopPointRef string) (*trias.StopEventResponse, error) {
	args := m.Called(ctx, stopPointRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trias.StopEventResponse), args.Error(1)
}

// drain materializes a sequence, stopping at the first error.
func drain(seq iter.Seq2[domain.Stop, error]) ([]domain.Stop, error) {
	var stops []domain.Stop
	for stop, err := range seq {
		if err != nil {
			return stops, err
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

func strPtr(s string) *string {
	return &s
}
