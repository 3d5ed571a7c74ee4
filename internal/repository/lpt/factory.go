package lpt

import (
	"fmt"
	"time"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	"github.com/lpt-gateway/internal/infrastructure/hafas"
	"github.com/lpt-gateway/internal/infrastructure/trias"
	"go.uber.org/zap"
)

// ProviderFactory builds a provider from its configuration.
type ProviderFactory func(cfg domain.ProviderConfig) (repository.DepartureProvider, error)

type FactoryOptions struct {
	// Location interprets upstream timestamps without zone offset.
	Location *time.Location
	// Timeout per upstream HTTP request, zero means the client default.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewProviderFactory returns the factory creating HTTP backed adapters.
func NewProviderFactory(opts FactoryOptions) ProviderFactory {
	return func(cfg domain.ProviderConfig) (repository.DepartureProvider, error) {
		return NewProvider(cfg, opts)
	}
}

// NewProvider dispatches on the protocol type of cfg.
func NewProvider(cfg domain.ProviderConfig, opts FactoryOptions) (repository.DepartureProvider, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.With(zap.String("provider", cfg.Name), zap.String("protocol", string(cfg.ProtocolType)))

	switch cfg.ProtocolType {
	case domain.ProtocolHAFAS:
		client := hafas.NewClient(hafas.Config{
			BaseURL:   cfg.Endpoint,
			AccessID:  cfg.Credential(domain.CredentialAccessID),
			Version:   cfg.Version,
			UserAgent: cfg.UserAgent,
			Timeout:   opts.Timeout,
		}, logger)
		return NewHafasProvider(client, cfg.Source, opts.Location, logger), nil

	case domain.ProtocolTRIAS:
		client := trias.NewClient(trias.Config{
			URL:          cfg.Endpoint,
			RequestorRef: cfg.Credential(domain.CredentialRequestorRef),
			Version:      cfg.Version,
			UserAgent:    cfg.UserAgent,
			Validate:     cfg.Validate,
			Debug:        cfg.Debug,
			Timeout:      opts.Timeout,
		}, logger)
		return NewTriasProvider(client, cfg.Source, cfg.FixAddressEncoding, opts.Location, logger), nil

	default:
		return nil, fmt.Errorf("unsupported protocol type %q", cfg.ProtocolType)
	}
}
