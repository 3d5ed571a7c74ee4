package handler_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lpt-gateway/internal/delivery/http/handler"
	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	apperrors "github.com/lpt-gateway/internal/pkg/errors"
	"github.com/lpt-gateway/internal/usecase"
	"github.com/lpt-gateway/internal/usecase/dto"
)

type fakeProvider struct {
	source string
	stops  []domain.Stop
	calls  []string
	ctx    context.Context
}

func (p *fakeProvider) Source() string { return p.source }

func (p *fakeProvider) ResolveLocation(context.Context, string) (domain.GeoCoordinates, error) {
	return domain.GeoCoordinates{}, nil
}

func (p *fakeProvider) ListNearbyDepartures(ctx context.Context, geo domain.GeoCoordinates, _, _ int) iter.Seq2[domain.Stop, error] {
	p.ctx = ctx
	p.calls = append(p.calls, "nearby")
	return p.seq()
}

func (p *fakeProvider) ListDeparturesForLocation(ctx context.Context, location string, _, _ int) iter.Seq2[domain.Stop, error] {
	p.ctx = ctx
	p.calls = append(p.calls, location)
	return p.seq()
}

func (p *fakeProvider) seq() iter.Seq2[domain.Stop, error] {
	return func(yield func(domain.Stop, error) bool) {
		for _, s := range p.stops {
			if !yield(s, nil) {
				return
			}
		}
	}
}

type fakeRegistry struct {
	providers map[string]repository.DepartureProvider
	postal    map[int]string
}

func (r *fakeRegistry) GetByName(_ context.Context, name string) (repository.DepartureProvider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, apperrors.ErrUnknownProvider
}

func (r *fakeRegistry) GetByPostalCode(ctx context.Context, code int) (repository.DepartureProvider, error) {
	name, ok := r.postal[code]
	if !ok {
		return nil, apperrors.ErrNoProviderForPostalCode
	}
	return r.GetByName(ctx, name)
}

func (r *fakeRegistry) Names(context.Context) []string {
	return []string{"vbb"}
}

func newTestApp(t *testing.T, withFallback bool, middlewares ...fiber.Handler) (*fiber.App, *fakeProvider) {
	t.Helper()

	estimated := time.Date(2024, 5, 2, 10, 2, 0, 0, time.UTC)
	vbb := &fakeProvider{
		source: "VBB",
		stops: []domain.Stop{{
			ID:       "900100003",
			Name:     "S+U Alexanderplatz",
			Location: domain.GeoCoordinates{Latitude: 52.5219, Longitude: 13.4111},
			Departures: []domain.StopEvent{
				{Type: "Tram", Line: "M4", Destination: "Zingster Str.", Scheduled: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), Estimated: &estimated},
				{Type: "Bus", Line: "200", Destination: "Michelangelostr.", Scheduled: time.Date(2024, 5, 2, 10, 5, 0, 0, time.UTC)},
			},
		}},
	}
	registry := &fakeRegistry{
		providers: map[string]repository.DepartureProvider{"vbb": vbb},
		postal:    map[int]string{10178: "vbb"},
	}
	if withFallback {
		registry.providers["general"] = vbb
	}

	uc := usecase.NewDeparturesUseCase(registry, nil, zap.NewNop(), "general", 3, 3)
	h := handler.NewDeparturesHandler(uc, zap.NewNop())

	app := fiber.New()
	for _, m := range middlewares {
		app.Use(m)
	}
	app.Post("/api/v1/departures", h.GetDepartures)
	app.Get("/api/v1/departures", h.SearchDepartures)
	app.Get("/api/v1/providers", h.ListProviders)
	return app, vbb
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
}

func TestDeparturesHandler_GetDepartures(t *testing.T) {
	t.Run("postal address as json", func(t *testing.T) {
		app, provider := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(
			`{"street":"Alexanderplatz","houseNumber":"1","zipCode":"10178","city":"Berlin","stops":2}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		decodeBody(t, resp, &body)
		assert.Equal(t, "VBB", body["source"])

		stops := body["stops"].([]interface{})
		require.Len(t, stops, 1)
		stop := stops[0].(map[string]interface{})
		assert.Equal(t, "900100003", stop["id"])
		assert.Equal(t, []interface{}{52.5219, 13.4111}, stop["geo"])

		departures := stop["departures"].([]interface{})
		require.Len(t, departures, 2)
		first := departures[0].(map[string]interface{})
		assert.Equal(t, "2024-05-02T10:00:00Z", first["scheduled"])
		assert.Equal(t, "2024-05-02T10:02:00Z", first["estimated"])
		second := departures[1].(map[string]interface{})
		assert.Contains(t, second, "estimated")
		assert.Nil(t, second["estimated"])

		assert.Equal(t, []string{"Alexanderplatz 1, 10178 Berlin"}, provider.calls)
	})

	t.Run("xml negotiation", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(
			`{"text":"Alexanderplatz 1, 10178 Berlin"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/xml")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "xml")

		var body dto.DeparturesResponse
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, xml.Unmarshal(raw, &body))
		assert.Equal(t, "VBB", body.Source)
		require.Len(t, body.Stops, 1)
		assert.Equal(t, 52.5219, body.Stops[0].Latitude)
		assert.Len(t, body.Stops[0].Departures, 2)
	})

	t.Run("coordinates use fallback provider", func(t *testing.T) {
		app, provider := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(`{"lat":52.52,"lon":13.41}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"nearby"}, provider.calls)
	})

	t.Run("no provider available", func(t *testing.T) {
		app, _ := newTestApp(t, false)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(
			`{"street":"Dorfstr.","zipCode":"99999","city":"Irgendwo"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body map[string]map[string]interface{}
		decodeBody(t, resp, &body)
		assert.Equal(t, "NO_PROVIDER_AVAILABLE", body["error"]["code"])
	})

	t.Run("invalid postal code", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(
			`{"street":"Hauptstr.","zipCode":"ABCDE","city":"Kiel"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation error", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(`{"lat":123,"lon":13}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]map[string]interface{}
		decodeBody(t, resp, &body)
		assert.Equal(t, "INVALID_REQUEST", body["error"]["code"])
	})

	t.Run("address id without store", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(`{"address":12}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty request", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeparturesHandler_SearchDepartures(t *testing.T) {
	t.Run("free text", func(t *testing.T) {
		app, provider := newTestApp(t, true)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/departures?q=Alexanderplatz%201%2C%2010178%20Berlin&departures=1", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"Alexanderplatz 1, 10178 Berlin"}, provider.calls)
	})

	t.Run("malformed number", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/departures?lat=north&lon=13.4", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("text without postal code", func(t *testing.T) {
		app, _ := newTestApp(t, true)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/departures?q=Berlin", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeparturesHandler_ListProviders(t *testing.T) {
	app, _ := newTestApp(t, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.ProvidersResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "general", body.Fallback)
	require.Len(t, body.Providers, 1)
	assert.Equal(t, dto.ProviderDTO{Name: "vbb", Source: "VBB"}, body.Providers[0])
}

type ctxKey struct{}

func TestDeparturesHandler_UsesUserContext(t *testing.T) {
	tagContext := func(c *fiber.Ctx) error {
		c.SetUserContext(context.WithValue(c.UserContext(), ctxKey{}, "req-42"))
		return c.Next()
	}

	t.Run("post", func(t *testing.T) {
		app, vbb := newTestApp(t, true, tagContext)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/departures", strings.NewReader(`{"lat": 52.52, "lon": 13.41}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, vbb.ctx)
		assert.Equal(t, "req-42", vbb.ctx.Value(ctxKey{}))
	})

	t.Run("get", func(t *testing.T) {
		app, vbb := newTestApp(t, true, tagContext)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/departures?q=Alexanderplatz%2010178%20Berlin", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, vbb.ctx)
		assert.Equal(t, "req-42", vbb.ctx.Value(ctxKey{}))
	})
}
