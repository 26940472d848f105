package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/kjstillabower/citypage-weather/internal/client"
	"github.com/kjstillabower/citypage-weather/internal/mapper"
	"github.com/kjstillabower/citypage-weather/internal/service"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as runErrorsTotal labels.
const (
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryNotFound         ErrorCategory = "not_found"
	ErrorCategoryUpstream4xx      ErrorCategory = "upstream_4xx"
	ErrorCategoryUpstream5xx      ErrorCategory = "upstream_5xx"
	ErrorCategoryMalformed        ErrorCategory = "malformed"
	ErrorCategoryInvalidTimestamp ErrorCategory = "invalid_timestamp"
	ErrorCategoryUnavailable      ErrorCategory = "field_unavailable"
	ErrorCategorySerialization    ErrorCategory = "serialization"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// CategorizeError maps a run error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	var te *client.TransportError
	if errors.As(err, &te) {
		switch {
		case te.StatusCode == http.StatusNotFound:
			return ErrorCategoryNotFound
		case te.StatusCode >= 500:
			return ErrorCategoryUpstream5xx
		case te.StatusCode != 0:
			return ErrorCategoryUpstream4xx
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			return ErrorCategoryTimeout
		default:
			return ErrorCategoryNetwork
		}
	}

	switch {
	case errors.Is(err, mapper.ErrInvalidTimestamp):
		return ErrorCategoryInvalidTimestamp
	case errors.Is(err, mapper.ErrMalformed):
		return ErrorCategoryMalformed
	case errors.Is(err, service.ErrFieldUnavailable):
		return ErrorCategoryUnavailable
	case errors.Is(err, service.ErrSerialization):
		return ErrorCategorySerialization
	}
	return ErrorCategoryUnknown
}
