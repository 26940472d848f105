package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/citypage-weather/internal/client"
	"github.com/kjstillabower/citypage-weather/internal/mapper"
	"github.com/kjstillabower/citypage-weather/internal/observability"
)

// WeatherService fetches a citypage document and maps it to current conditions.
type WeatherService struct {
	fetcher client.Fetcher
	logger  *zap.Logger
}

// NewWeatherService creates a WeatherService. A nil logger disables logging.
func NewWeatherService(fetcher client.Fetcher, logger *zap.Logger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{fetcher: fetcher, logger: logger}
}

// GetConditions performs one fetch of url and maps the body. Errors are
// returned unchanged in kind: transport failures from the fetcher, *mapper.MappingError
// from mapping.
func (s *WeatherService) GetConditions(ctx context.Context, url string) (*Conditions, error) {
	start := time.Now()
	logger := s.logger.With(zap.String("url", url))
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		logger = logger.With(zap.String("correlation_id", corrID))
	}

	logger.Debug("fetching citypage document")
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Warn("fetch failed", zap.Error(err))
		return nil, err
	}
	logger.Debug("document fetched", zap.Int("bytes", len(body)), zap.Duration("duration", time.Since(start)))

	cc, err := mapper.Parse(body)
	if err != nil {
		observability.MappingTotal.WithLabelValues(mappingLabel(err)).Inc()
		logger.Warn("mapping failed", zap.Error(err))
		return nil, fmt.Errorf("map %s: %w", url, err)
	}
	observability.MappingTotal.WithLabelValues("success").Inc()

	if cc.Timestamp != nil {
		logger.Debug("document mapped", zap.Time("observed_at", *cc.Timestamp))
	} else {
		logger.Debug("document mapped without observation time")
	}
	return NewConditions(cc), nil
}

func mappingLabel(err error) string {
	switch {
	case errors.Is(err, mapper.ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, mapper.ErrMalformed):
		return "malformed"
	default:
		return "error"
	}
}
