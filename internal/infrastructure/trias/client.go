package trias

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultVersion = "1.1"

	namespaceTrias = "http://www.vdv.de/trias"
	namespaceSiri  = "http://www.siri.org.uk/siri"

	// Radius in meters for stop searches around a position.
	defaultStopRadius = 1000
	// Upper bound of stops requested per geo search.
	defaultStopResults = 10
	// Upper bound of events requested per stop.
	defaultEventResults = 10
)

// Config configures a TRIAS client.
type Config struct {
	URL          string
	RequestorRef string
	Version      string
	UserAgent    string
	Validate     bool
	Debug        bool
	Timeout      time.Duration
}

// Client sends TRIAS requests as XML over HTTP POST.
type Client struct {
	httpClient   *http.Client
	url          string
	requestorRef string
	version      string
	userAgent    string
	validate     bool
	debug        bool
	logger       *zap.Logger
	now          func() time.Time
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		url:          cfg.URL,
		requestorRef: cfg.RequestorRef,
		version:      cfg.Version,
		userAgent:    cfg.UserAgent,
		validate:     cfg.Validate,
		debug:        cfg.Debug,
		logger:       logger,
		now:          time.Now,
	}
}

// GeoCoordinates geocodes an address. A nil position without error means
// the service found no match.
func (c *Client) GeoCoordinates(ctx context.Context, address string) (*GeoPosition, error) {
	doc, err := c.send(ctx, requestPayload{
		LocationInformationRequest: &locationInformationRequest{
			InitialInput: initialInput{LocationName: address},
			Restrictions: locationRestrict{Type: "address", NumberOfResults: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	response := doc.ServiceDelivery.DeliveryPayload.LocationInformationResponse
	if response == nil {
		return nil, nil
	}
	for _, result := range response.Location {
		if result.Location.GeoPosition != nil {
			return result.Location.GeoPosition, nil
		}
	}
	return nil, nil
}

// Stops lists the stops around a position.
func (c *Client) Stops(ctx context.Context, position GeoPosition) (*LocationInformationResponse, error) {
	doc, err := c.send(ctx, requestPayload{
		LocationInformationRequest: &locationInformationRequest{
			InitialInput: initialInput{
				GeoRestriction: &geoRestriction{
					Circle: circle{Center: position, Radius: defaultStopRadius},
				},
			},
			Restrictions: locationRestrict{Type: "stop", NumberOfResults: defaultStopResults},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stops: %w", err)
	}

	response := doc.ServiceDelivery.DeliveryPayload.LocationInformationResponse
	if response == nil {
		return &LocationInformationResponse{}, nil
	}
	return response, nil
}

// StopEvents lists the upcoming departures of a stop point.
func (c *Client) StopEvents(ctx context.Context, stopPointRef string) (*StopEventResponse, error) {
	doc, err := c.send(ctx, requestPayload{
		StopEventRequest: &stopEventRequest{
			Location: stopEventLocation{LocationRef: locationRef{StopPointRef: stopPointRef}},
			Params: stopEventParams{
				NumberOfResults:     defaultEventResults,
				StopEventType:       "departure",
				IncludeRealtimeData: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stop events: %w", err)
	}

	response := doc.ServiceDelivery.DeliveryPayload.StopEventResponse
	if response == nil {
		return &StopEventResponse{}, nil
	}
	return response, nil
}

func (c *Client) send(ctx context.Context, payload requestPayload) (*Document, error) {
	body, err := xml.Marshal(requestDocument{
		Version:   c.version,
		Xmlns:     namespaceTrias,
		XmlnsSiri: namespaceSiri,
		ServiceRequest: serviceRequest{
			RequestTimestamp: c.now().UTC().Format(time.RFC3339),
			RequestorRef:     c.requestorRef,
			RequestPayload:   payload,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	body = append([]byte(xml.Header), body...)

	if c.debug {
		c.logger.Debug("TRIAS request", zap.String("url", c.url), zap.ByteString("body", body))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("TRIAS response", zap.Int("status_code", resp.StatusCode), zap.ByteString("body", respBody))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("TRIAS API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("trias API error: status %d", resp.StatusCode)
	}

	var doc Document
	if err := xml.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if c.validate {
		if err := validateDocument(&doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// validateDocument rejects deliveries the service itself flagged as failed
// and payloads carrying error messages. *_NORESULTS messages mean an empty
// result and pass.
func validateDocument(doc *Document) error {
	if status := doc.ServiceDelivery.Status; status != nil && !*status {
		return fmt.Errorf("trias API error: service delivery status is false")
	}

	var messages []ErrorMessage
	payload := doc.ServiceDelivery.DeliveryPayload
	if payload.LocationInformationResponse != nil {
		messages = append(messages, payload.LocationInformationResponse.ErrorMessage...)
	}
	if payload.StopEventResponse != nil {
		messages = append(messages, payload.StopEventResponse.ErrorMessage...)
	}
	for _, msg := range messages {
		if isNoResults(msg) {
			continue
		}
		return fmt.Errorf("trias API error %s: %s", msg.Code, msg.Text.Text)
	}
	return nil
}

func isNoResults(msg ErrorMessage) bool {
	return strings.HasSuffix(strings.TrimSpace(msg.Text.Text), "_NORESULTS")
}
