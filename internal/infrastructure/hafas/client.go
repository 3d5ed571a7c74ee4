package hafas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultVersion = "1.23"

// Config configures a HAFAS ReST client.
type Config struct {
	BaseURL   string
	AccessID  string
	Version   string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to a HAFAS ReST endpoint. Requests go to
// {BaseURL}/{Version}/{service}.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessID   string
	version    string
	userAgent  string
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accessID:   cfg.AccessID,
		version:    cfg.Version,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// Locations searches locations by free text. locType restricts the result
// kind ("A" addresses, "S" stops, "ALL"), empty means any.
func (c *Client) Locations(ctx context.Context, input, locType string) (*LocationList, error) {
	params := url.Values{}
	params.Set("input", input)
	if locType != "" {
		params.Set("type", locType)
	}

	var list LocationList
	if err := c.get(ctx, "location.name", params, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}
	return &list, nil
}

// NearbyStops returns the stops around a position ordered by distance.
func (c *Client) NearbyStops(ctx context.Context, lat, lon float64) (*LocationList, error) {
	params := url.Values{}
	params.Set("originCoordLat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("originCoordLong", strconv.FormatFloat(lon, 'f', -1, 64))

	var list LocationList
	if err := c.get(ctx, "location.nearbystops", params, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch nearby stops: %w", err)
	}
	return &list, nil
}

// DepartureBoard returns the next departures of a stop.
func (c *Client) DepartureBoard(ctx context.Context, stopID string) (*DepartureBoard, error) {
	params := url.Values{}
	params.Set("id", stopID)

	var board DepartureBoard
	if err := c.get(ctx, "departureBoard", params, &board); err != nil {
		return nil, fmt.Errorf("failed to fetch departure board: %w", err)
	}
	return &board, nil
}

func (c *Client) get(ctx context.Context, service string, params url.Values, out interface{}) error {
	params.Set("accessId", c.accessID)
	params.Set("format", "json")
	reqURL := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.version, service, params.Encode())

	c.logger.Debug("Calling HAFAS API", zap.String("service", service))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("HAFAS API returned error",
			zap.String("service", service),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("hafas API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorCode != "" {
		return fmt.Errorf("hafas API error %s: %s", apiErr.ErrorCode, apiErr.ErrorText)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
