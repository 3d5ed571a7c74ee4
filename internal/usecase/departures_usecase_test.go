package usecase_test

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	apperrors "github.com/lpt-gateway/internal/pkg/errors"
	"github.com/lpt-gateway/internal/usecase"
)

type MockProviderRegistry struct {
	mock.Mock
}

func (m *MockProviderRegistry) GetByName(ctx context.Context, name string) (repository.DepartureProvider, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.DepartureProvider), args.Error(1)
}

func (m *MockProviderRegistry) GetByPostalCode(ctx context.Context, postalCode int) (repository.DepartureProvider, error) {
	args := m.Called(ctx, postalCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.DepartureProvider), args.Error(1)
}

func (m *MockProviderRegistry) Names(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

type MockDepartureProvider struct {
	mock.Mock
}

func (m *MockDepartureProvider) Source() string {
	return m.Called().String(0)
}

func (m *MockDepartureProvider) ResolveLocation(ctx context.Context, location string) (domain.GeoCoordinates, error) {
	args := m.Called(ctx, location)
	return args.Get(0).(domain.GeoCoordinates), args.Error(1)
}

func (m *MockDepartureProvider) ListNearbyDepartures(ctx context.Context, geo domain.GeoCoordinates, maxStops, maxDepartures int) iter.Seq2[domain.Stop, error] {
	args := m.Called(ctx, geo, maxStops, maxDepartures)
	return args.Get(0).(iter.Seq2[domain.Stop, error])
}

func (m *MockDepartureProvider) ListDeparturesForLocation(ctx context.Context, location string, maxStops, maxDepartures int) iter.Seq2[domain.Stop, error] {
	args := m.Called(ctx, location, maxStops, maxDepartures)
	return args.Get(0).(iter.Seq2[domain.Stop, error])
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func seqOf(err error, stops ...domain.Stop) iter.Seq2[domain.Stop, error] {
	return func(yield func(domain.Stop, error) bool) {
		for _, s := range stops {
			if !yield(s, nil) {
				return
			}
		}
		if err != nil {
			yield(domain.Stop{}, err)
		}
	}
}

func newProvider(source string) *MockDepartureProvider {
	p := &MockDepartureProvider{}
	p.On("Source").Return(source)
	return p
}

var sampleStop = domain.Stop{
	ID:   "S1",
	Name: "Alexanderplatz",
	Departures: []domain.StopEvent{
		{Type: "Tram", Line: "M4", Destination: "Zingster Str.", Scheduled: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)},
	},
}

func intPtr(v int) *int { return &v }

func TestDeparturesUseCase_GetDepartures_Address(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	address := domain.Address{Street: "Alexanderplatz", HouseNumber: "1", ZipCode: "10500", City: "Berlin"}

	t.Run("routes by postal code", func(t *testing.T) {
		providerX := newProvider("ProviderX")
		providerX.On("ListDeparturesForLocation", ctx, "Alexanderplatz 1, 10500 Berlin", 3, 3).
			Return(seqOf(nil, sampleStop))

		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 10500).Return(providerX, nil)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 3)

		result, err := uc.GetDepartures(ctx, address, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "ProviderX", result.Source())
		require.Len(t, result.Stops, 1)
		assert.Equal(t, "S1", result.Stops[0].ID)
		registry.AssertExpectations(t)
		providerX.AssertExpectations(t)
	})

	t.Run("unmapped postal code falls back", func(t *testing.T) {
		general := newProvider("General")
		general.On("ListDeparturesForLocation", ctx, "Dorfstr. 2, 99999 Irgendwo", 5, 2).
			Return(seqOf(nil, sampleStop))

		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 99999).Return(nil, apperrors.ErrNoProviderForPostalCode)
		registry.On("GetByName", ctx, "general").Return(general, nil)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 3)

		result, err := uc.GetDepartures(ctx,
			&domain.Address{Street: "Dorfstr.", HouseNumber: "2", ZipCode: "99999", City: "Irgendwo"},
			intPtr(5), intPtr(2))
		require.NoError(t, err)
		assert.Equal(t, "General", result.Source())
		registry.AssertExpectations(t)
		general.AssertExpectations(t)
	})

	t.Run("no fallback registered", func(t *testing.T) {
		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 10500).Return(nil, apperrors.ErrNoProviderForPostalCode)
		registry.On("GetByName", ctx, "general").Return(nil, apperrors.ErrUnknownProvider)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "", 3, 3)

		_, err := uc.GetDepartures(ctx, address, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrNoProviderAvailable)
	})

	t.Run("missing postal code", func(t *testing.T) {
		uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, nil, logger, "general", 3, 3)

		_, err := uc.GetDepartures(ctx, domain.Address{Street: "Hauptstr.", City: "Kiel"}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrMissingPostalCode)
	})

	t.Run("invalid postal code", func(t *testing.T) {
		uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, nil, logger, "general", 3, 3)

		_, err := uc.GetDepartures(ctx, domain.Address{Street: "Hauptstr.", ZipCode: "D-241", City: "Kiel"}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPostalCode)
	})

	t.Run("geocoding miss is an empty result", func(t *testing.T) {
		provider := newProvider("DELFI")
		provider.On("ListDeparturesForLocation", ctx, address.String(), 3, 3).
			Return(seqOf(apperrors.ErrNoGeoCoordinatesForLocation))

		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 10500).Return(provider, nil)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 3)

		result, err := uc.GetDepartures(ctx, address, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "DELFI", result.Source())
		assert.Empty(t, result.Stops)
	})

	t.Run("upstream failure propagates", func(t *testing.T) {
		provider := newProvider("DELFI")
		provider.On("ListDeparturesForLocation", ctx, address.String(), 3, 3).
			Return(seqOf(apperrors.ErrUpstreamError, sampleStop))

		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 10500).Return(provider, nil)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 3)

		result, err := uc.GetDepartures(ctx, address, nil, nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperrors.ErrUpstreamError)
	})
}

func TestDeparturesUseCase_GetDepartures_Text(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("extracts postal code", func(t *testing.T) {
		provider := newProvider("VBB")
		provider.On("ListDeparturesForLocation", ctx, "Karl-Marx-Allee 1, 10178 Berlin", 3, 3).
			Return(seqOf(nil, sampleStop))

		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 10178).Return(provider, nil)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 3)

		result, err := uc.GetDepartures(ctx, "Karl-Marx-Allee 1, 10178 Berlin", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "VBB", result.Source())
	})

	t.Run("no postal code in text", func(t *testing.T) {
		uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, nil, logger, "general", 3, 3)

		_, err := uc.GetDepartures(ctx, "Karl-Marx-Allee 1, Berlin", nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrMissingPostalCode)
	})
}

func TestDeparturesUseCase_GetDepartures_Coordinates(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	geo := domain.GeoCoordinates{Latitude: 52.52, Longitude: 13.41}

	targets := map[string]interface{}{
		"geo coordinates": geo,
		"pointer":         &geo,
		"array pair":      [2]float64{52.52, 13.41},
		"slice pair":      []float64{52.52, 13.41},
	}

	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			general := newProvider("General")
			general.On("ListNearbyDepartures", ctx, geo, 3, 4).Return(seqOf(nil, sampleStop))

			registry := &MockProviderRegistry{}
			registry.On("GetByName", ctx, "general").Return(general, nil)

			uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 4)

			result, err := uc.GetDepartures(ctx, target, nil, intPtr(0))
			require.NoError(t, err)
			assert.Equal(t, "General", result.Source())
			assert.Len(t, result.Stops, 1)
			registry.AssertNotCalled(t, "GetByPostalCode", mock.Anything, mock.Anything)
		})
	}

	t.Run("fallback missing", func(t *testing.T) {
		registry := &MockProviderRegistry{}
		registry.On("GetByName", ctx, "general").Return(nil, apperrors.ErrUnknownProvider)

		uc := usecase.NewDeparturesUseCase(registry, nil, logger, "general", 3, 3)

		_, err := uc.GetDepartures(ctx, geo, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrNoProviderAvailable)
	})

	t.Run("out of range", func(t *testing.T) {
		uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, nil, logger, "general", 3, 3)

		_, err := uc.GetDepartures(ctx, [2]float64{123, 13}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCoordinates)
	})
}

func TestDeparturesUseCase_GetDepartures_Unsupported(t *testing.T) {
	uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, nil, zap.NewNop(), "general", 3, 3)

	for _, target := range []interface{}{nil, 42, []float64{1, 2, 3}, (*domain.Address)(nil), struct{}{}} {
		_, err := uc.GetDepartures(context.Background(), target, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedTargetType)
	}
}

func TestDeparturesUseCase_GetDeparturesForAddressID(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("loads stored address", func(t *testing.T) {
		addressRepo := &MockAddressRepository{}
		addressRepo.On("GetByID", ctx, int64(7)).Return(&domain.Address{
			ID: 7, Street: "Marktplatz", HouseNumber: "1", ZipCode: "38300", City: "Wolfenbüttel",
		}, nil)

		provider := newProvider("VBN")
		provider.On("ListDeparturesForLocation", ctx, "Marktplatz 1, 38300 Wolfenbüttel", 3, 3).
			Return(seqOf(nil, sampleStop))

		registry := &MockProviderRegistry{}
		registry.On("GetByPostalCode", ctx, 38300).Return(provider, nil)

		uc := usecase.NewDeparturesUseCase(registry, addressRepo, logger, "general", 3, 3)

		result, err := uc.GetDeparturesForAddressID(ctx, 7, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "VBN", result.Source())
		addressRepo.AssertExpectations(t)
	})

	t.Run("address not found", func(t *testing.T) {
		addressRepo := &MockAddressRepository{}
		addressRepo.On("GetByID", ctx, int64(8)).Return(nil, apperrors.ErrAddressNotFound)

		uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, addressRepo, logger, "general", 3, 3)

		_, err := uc.GetDeparturesForAddressID(ctx, 8, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrAddressNotFound)
	})

	t.Run("no address store", func(t *testing.T) {
		uc := usecase.NewDeparturesUseCase(&MockProviderRegistry{}, nil, logger, "general", 3, 3)

		_, err := uc.GetDeparturesForAddressID(ctx, 1, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})
}

func TestDeparturesUseCase_Providers(t *testing.T) {
	ctx := context.Background()

	registry := &MockProviderRegistry{}
	registry.On("Names", ctx).Return([]string{"vbb", "general"})
	registry.On("GetByName", ctx, "vbb").Return(newProvider("VBB"), nil)
	registry.On("GetByName", ctx, "general").Return(newProvider("DELFI"), nil)

	uc := usecase.NewDeparturesUseCase(registry, nil, zap.NewNop(), "general", 3, 3)

	resp := uc.Providers(ctx)
	assert.Equal(t, "general", resp.Fallback)
	require.Len(t, resp.Providers, 2)
	assert.Equal(t, "vbb", resp.Providers[0].Name)
	assert.Equal(t, "VBB", resp.Providers[0].Source)
	assert.Equal(t, "DELFI", resp.Providers[1].Source)
}

