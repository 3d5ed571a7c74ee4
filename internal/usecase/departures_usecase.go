package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	"github.com/lpt-gateway/internal/pkg/errors"
	"github.com/lpt-gateway/internal/pkg/utils"
	"github.com/lpt-gateway/internal/usecase/dto"
	"go.uber.org/zap"
)

// DefaultFallbackProvider is the provider used when postal code routing fails.
const DefaultFallbackProvider = "general"

var postalCodePattern = regexp.MustCompile(`\b\d{5}\b`)

// DeparturesUseCase dispatches departure queries to the provider
// responsible for a target and materializes the result.
type DeparturesUseCase struct {
	registry      repository.ProviderRegistry
	addressRepo   repository.AddressRepository
	logger        *zap.Logger
	fallback      string
	maxStops      int
	maxDepartures int
}

// NewDeparturesUseCase creates the facade. addressRepo may be nil when no
// address store is configured.
func NewDeparturesUseCase(
	registry repository.ProviderRegistry,
	addressRepo repository.AddressRepository,
	logger *zap.Logger,
	fallback string,
	maxStops, maxDepartures int,
) *DeparturesUseCase {
	if fallback == "" {
		fallback = DefaultFallbackProvider
	}
	if maxStops <= 0 {
		maxStops = 3
	}
	if maxDepartures <= 0 {
		maxDepartures = 3
	}
	return &DeparturesUseCase{
		registry:      registry,
		addressRepo:   addressRepo,
		logger:        logger,
		fallback:      fallback,
		maxStops:      maxStops,
		maxDepartures: maxDepartures,
	}
}

// GetDepartures returns departures near target.
//
// Supported targets: domain.Address, free text (string) containing a
// postal code, domain.GeoCoordinates and raw [lat, lon] pairs
// ([2]float64 or a []float64 of length two). Nil limits fall back to the
// configured defaults.
func (uc *DeparturesUseCase) GetDepartures(
	ctx context.Context,
	target interface{},
	maxStops, maxDepartures *int,
) (*domain.DeparturesResult, error) {
	stops, departures := uc.limits(maxStops, maxDepartures)

	switch t := target.(type) {
	case domain.Address:
		return uc.forAddress(ctx, t, stops, departures)
	case *domain.Address:
		if t == nil {
			break
		}
		return uc.forAddress(ctx, *t, stops, departures)
	case string:
		return uc.forText(ctx, t, stops, departures)
	case domain.GeoCoordinates:
		return uc.forCoordinates(ctx, t, stops, departures)
	case *domain.GeoCoordinates:
		if t == nil {
			break
		}
		return uc.forCoordinates(ctx, *t, stops, departures)
	case [2]float64:
		return uc.forCoordinates(ctx, domain.GeoCoordinates{Latitude: t[0], Longitude: t[1]}, stops, departures)
	case []float64:
		if len(t) != 2 {
			break
		}
		return uc.forCoordinates(ctx, domain.GeoCoordinates{Latitude: t[0], Longitude: t[1]}, stops, departures)
	}

	return nil, errors.ErrUnsupportedTargetType.WithDetail("type", targetTypeName(target))
}

// GetDeparturesForAddressID looks up a stored address and dispatches it.
func (uc *DeparturesUseCase) GetDeparturesForAddressID(
	ctx context.Context,
	addressID int64,
	maxStops, maxDepartures *int,
) (*domain.DeparturesResult, error) {
	if uc.addressRepo == nil {
		return nil, errors.ErrInvalidRequest.WithDetail("address", "address store is not configured")
	}

	address, err := uc.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		uc.logger.Error("Failed to get address", zap.Int64("address_id", addressID), zap.Error(err))
		return nil, err
	}

	return uc.GetDepartures(ctx, *address, maxStops, maxDepartures)
}

// Providers lists the loaded providers.
func (uc *DeparturesUseCase) Providers(ctx context.Context) dto.ProvidersResponse {
	names := uc.registry.Names(ctx)
	resp := dto.ProvidersResponse{
		Fallback:  uc.fallback,
		Providers: make([]dto.ProviderDTO, 0, len(names)),
	}
	for _, name := range names {
		provider, err := uc.registry.GetByName(ctx, name)
		if err != nil {
			continue
		}
		resp.Providers = append(resp.Providers, dto.ProviderDTO{Name: name, Source: provider.Source()})
	}
	return resp
}

func (uc *DeparturesUseCase) forAddress(ctx context.Context, address domain.Address, maxStops, maxDepartures int) (*domain.DeparturesResult, error) {
	zip := strings.TrimSpace(address.ZipCode)
	if zip == "" {
		return nil, errors.ErrMissingPostalCode
	}
	postalCode, err := strconv.Atoi(zip)
	if err != nil {
		return nil, errors.ErrInvalidPostalCode.WithDetail("zip_code", address.ZipCode)
	}

	return uc.forLocation(ctx, postalCode, address.String(), maxStops, maxDepartures)
}

func (uc *DeparturesUseCase) forText(ctx context.Context, text string, maxStops, maxDepartures int) (*domain.DeparturesResult, error) {
	match := postalCodePattern.FindString(text)
	if match == "" {
		return nil, errors.ErrMissingPostalCode.WithDetail("text", text)
	}
	postalCode, err := strconv.Atoi(match)
	if err != nil {
		return nil, errors.ErrInvalidPostalCode.WithDetail("text", text)
	}

	return uc.forLocation(ctx, postalCode, text, maxStops, maxDepartures)
}

func (uc *DeparturesUseCase) forLocation(
	ctx context.Context,
	postalCode int,
	location string,
	maxStops, maxDepartures int,
) (*domain.DeparturesResult, error) {
	provider, err := uc.providerForPostalCode(ctx, postalCode)
	if err != nil {
		return nil, err
	}

	return uc.collect(provider, provider.ListDeparturesForLocation(ctx, location, maxStops, maxDepartures))
}

func (uc *DeparturesUseCase) forCoordinates(
	ctx context.Context,
	geo domain.GeoCoordinates,
	maxStops, maxDepartures int,
) (*domain.DeparturesResult, error) {
	if !utils.ValidateCoordinates(geo.Latitude, geo.Longitude) {
		return nil, errors.ErrInvalidCoordinates
	}

	provider, err := uc.fallbackProvider(ctx)
	if err != nil {
		return nil, err
	}

	return uc.collect(provider, provider.ListNearbyDepartures(ctx, geo, maxStops, maxDepartures))
}

func (uc *DeparturesUseCase) providerForPostalCode(ctx context.Context, postalCode int) (repository.DepartureProvider, error) {
	provider, err := uc.registry.GetByPostalCode(ctx, postalCode)
	if err == nil {
		return provider, nil
	}
	if !stderrors.Is(err, errors.ErrNoProviderForPostalCode) {
		return nil, err
	}

	uc.logger.Info("No provider for postal code, using fallback",
		zap.Int("postal_code", postalCode),
		zap.String("fallback", uc.fallback))
	return uc.fallbackProvider(ctx)
}

func (uc *DeparturesUseCase) fallbackProvider(ctx context.Context) (repository.DepartureProvider, error) {
	provider, err := uc.registry.GetByName(ctx, uc.fallback)
	if stderrors.Is(err, errors.ErrUnknownProvider) {
		return nil, errors.ErrNoProviderAvailable.WithDetail("fallback", uc.fallback)
	}
	return provider, err
}

// collect drains seq. A geocoding miss is reported as an empty result.
func (uc *DeparturesUseCase) collect(
	provider repository.DepartureProvider,
	seq iter.Seq2[domain.Stop, error],
) (*domain.DeparturesResult, error) {
	var stops []domain.Stop
	for stop, err := range seq {
		if stderrors.Is(err, errors.ErrNoGeoCoordinatesForLocation) {
			uc.logger.Info("Location could not be geocoded", zap.String("source", provider.Source()), zap.Error(err))
			break
		}
		if err != nil {
			uc.logger.Error("Failed to list departures", zap.String("source", provider.Source()), zap.Error(err))
			return nil, err
		}
		stops = append(stops, stop)
	}

	return domain.NewDeparturesResult(provider.Source(), stops), nil
}

func (uc *DeparturesUseCase) limits(maxStops, maxDepartures *int) (int, int) {
	stops, departures := uc.maxStops, uc.maxDepartures
	if maxStops != nil && *maxStops > 0 {
		stops = *maxStops
	}
	if maxDepartures != nil && *maxDepartures > 0 {
		departures = *maxDepartures
	}
	return stops, departures
}

func targetTypeName(target interface{}) string {
	return fmt.Sprintf("%T", target)
}
