package lpt

import (
	"context"
	"sync"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	apperrors "github.com/lpt-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

// ProviderInfo describes a loaded provider.
type ProviderInfo struct {
	Name     string
	Protocol domain.ProtocolType
	Source   string
}

// Registry owns the configured providers and the postal code routing table.
//
// The provider document is read on first use, exactly once, even under
// concurrent first access. Callers arriving during the load block until it
// completes. Afterwards the registry is read-only.
type Registry struct {
	loader  DocumentLoader
	factory ProviderFactory
	logger  *zap.Logger

	once      sync.Once
	providers map[string]repository.DepartureProvider
	infos     []ProviderInfo
	postal    map[int]string
}

func NewRegistry(loader DocumentLoader, factory ProviderFactory, logger *zap.Logger) *Registry {
	return &Registry{
		loader:  loader,
		factory: factory,
		logger:  logger,
	}
}

// Load forces the one-time load. Later calls return immediately.
func (r *Registry) Load(ctx context.Context) {
	r.once.Do(func() {
		// Shared by all callers, detached from the first caller's cancellation.
		r.load(context.WithoutCancel(ctx))
	})
}

func (r *Registry) GetByName(ctx context.Context, name string) (repository.DepartureProvider, error) {
	r.Load(ctx)

	provider, ok := r.providers[name]
	if !ok {
		return nil, apperrors.ErrUnknownProvider.WithDetail("name", name)
	}
	return provider, nil
}

func (r *Registry) GetByPostalCode(ctx context.Context, postalCode int) (repository.DepartureProvider, error) {
	r.Load(ctx)

	name, ok := r.postal[postalCode]
	if !ok {
		return nil, apperrors.ErrNoProviderForPostalCode.WithDetail("postal_code", postalCode)
	}
	return r.GetByName(ctx, name)
}

func (r *Registry) Names(ctx context.Context) []string {
	r.Load(ctx)

	names := make([]string, len(r.infos))
	for i, info := range r.infos {
		names[i] = info.Name
	}
	return names
}

// Providers lists the loaded providers in declaration order.
func (r *Registry) Providers(ctx context.Context) []ProviderInfo {
	r.Load(ctx)

	out := make([]ProviderInfo, len(r.infos))
	copy(out, r.infos)
	return out
}

func (r *Registry) load(ctx context.Context) {
	r.providers = make(map[string]repository.DepartureProvider)
	r.postal = make(map[int]string)

	doc, err := r.loader.Load(ctx)
	if err != nil {
		r.logger.Error("Failed to load provider document, no providers available", zap.Error(err))
		return
	}

	for _, client := range doc.Clients {
		r.loadClient(client)
	}
	for _, mapping := range doc.Map {
		r.loadMapping(mapping)
	}

	r.logger.Info("Provider registry loaded",
		zap.Int("providers", len(r.providers)),
		zap.Int("postal_codes", len(r.postal)))
}

func (r *Registry) loadClient(client ClientEntry) {
	log := r.logger.With(zap.String("provider", client.Name))
	log.Info("Loading provider")

	if client.Err != nil {
		log.Error("Skipping malformed provider entry", zap.Error(client.Err))
		return
	}

	cfg, err := client.Entry.ToConfig(client.Name)
	if err != nil {
		log.Error("Skipping invalid provider entry", zap.Error(err))
		return
	}

	provider, err := r.factory(cfg)
	if err != nil {
		log.Error("Failed to create provider", zap.Error(err))
		return
	}

	if _, exists := r.providers[client.Name]; exists {
		log.Warn("Duplicate provider name, replacing previous entry")
		for i := range r.infos {
			if r.infos[i].Name == client.Name {
				r.infos = append(r.infos[:i], r.infos[i+1:]...)
				break
			}
		}
	}
	r.providers[client.Name] = provider
	r.infos = append(r.infos, ProviderInfo{Name: client.Name, Protocol: cfg.ProtocolType, Source: provider.Source()})
}

func (r *Registry) loadMapping(mapping MappingEntry) {
	log := r.logger.With(zap.String("provider", mapping.Provider))
	log.Info("Mapping postal codes", zap.Int("ranges", len(mapping.Ranges)))

	if mapping.Err != nil {
		log.Error("Skipping malformed postal code ranges", zap.Error(mapping.Err))
	}
	if _, ok := r.providers[mapping.Provider]; !ok {
		log.Warn("Postal codes mapped to unregistered provider, ignoring mapping")
		return
	}

	for _, rng := range mapping.Ranges {
		if err := rng.Validate(); err != nil {
			log.Error("Skipping invalid postal code range", zap.Error(err))
			continue
		}
		duplicates := 0
		for code := rng.Start; code <= rng.End; code++ {
			if _, taken := r.postal[code]; taken {
				duplicates++
			}
			r.postal[code] = mapping.Provider
		}
		if duplicates > 0 {
			log.Warn("Duplicate postal codes, later mapping wins",
				zap.Int("start", rng.Start),
				zap.Int("end", rng.End),
				zap.Int("duplicates", duplicates))
		}
	}
}
