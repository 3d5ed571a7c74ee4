package lpt

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/domain/repository"
	apperrors "github.com/lpt-gateway/internal/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultMaxStops      = 3
	DefaultMaxDepartures = 3
)

func normalizeLimits(maxStops, maxDepartures int) (int, int) {
	if maxStops <= 0 {
		maxStops = DefaultMaxStops
	}
	if maxDepartures <= 0 {
		maxDepartures = DefaultMaxDepartures
	}
	return maxStops, maxDepartures
}

// limitStops drops stops without departures and ends the sequence after
// maxStops stops were yielded. Skipped stops do not consume the quota.
// The first error is passed on and ends the sequence.
func limitStops(seq iter.Seq2[domain.Stop, error], maxStops int) iter.Seq2[domain.Stop, error] {
	return func(yield func(domain.Stop, error) bool) {
		yielded := 0
		for stop, err := range seq {
			if err != nil {
				yield(domain.Stop{}, err)
				return
			}
			if len(stop.Departures) == 0 {
				continue
			}
			if !yield(stop, nil) {
				return
			}
			yielded++
			if yielded >= maxStops {
				return
			}
		}
	}
}

// singleUse makes a sequence non-restartable: ranging over it a second
// time yields nothing and triggers no upstream calls.
func singleUse(seq iter.Seq2[domain.Stop, error]) iter.Seq2[domain.Stop, error] {
	var used atomic.Bool
	return func(yield func(domain.Stop, error) bool) {
		if used.Swap(true) {
			return
		}
		seq(yield)
	}
}

// failed is a sequence yielding only err.
func failed(err error) iter.Seq2[domain.Stop, error] {
	return singleUse(func(yield func(domain.Stop, error) bool) {
		yield(domain.Stop{}, err)
	})
}

// departuresForLocation is the default composition of ResolveLocation and
// ListNearbyDepartures. Geocoding errors, including
// ErrNoGeoCoordinatesForLocation, are yielded to the caller.
func departuresForLocation(
	ctx context.Context,
	p repository.DepartureProvider,
	location string,
	maxStops, maxDepartures int,
) iter.Seq2[domain.Stop, error] {
	return singleUse(func(yield func(domain.Stop, error) bool) {
		geo, err := p.ResolveLocation(ctx, location)
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

// collectEvents converts upstream records into stop events, keeping at most
// limit events. The buffer is sized by the records, not by limit. Records that fail to parse are logged and skipped; they do not
// count toward limit.
func collectEvents[T any](
	records []T,
	limit int,
	parse func(T) ([]domain.StopEvent, error),
	logger *zap.Logger,
	stopID string,
) []domain.StopEvent {
	events := make([]domain.StopEvent, 0, min(limit, len(records)))
	for i, record := range records {
		parsed, err := parse(record)
		if err != nil {
			logger.Warn("Skipping malformed departure",
				zap.String("stop_id", stopID),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		for _, event := range parsed {
			if len(events) >= limit {
				return events
			}
			events = append(events, event)
		}
		if len(events) >= limit {
			break
		}
	}
	return events
}

// upstreamError marks err as a failed provider call.
func upstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrUpstreamError, err)
}

const localDateTimeLayout = "2006-01-02T15:04:05"

// parseDateTime parses an xs:dateTime. Values without zone offset are
// interpreted in loc.
func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation(localDateTimeLayout, value, loc)
}

// parseDateAndTime combines a YYYY-MM-DD date and a HH:MM[:SS] time in loc.
func parseDateAndTime(date, clock string, loc *time.Location) (time.Time, error) {
	if len(clock) == len("15:04") {
		clock += ":00"
	}
	return time.ParseInLocation(localDateTimeLayout, date+"T"+clock, loc)
}
