package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kjstillabower/citypage-weather/internal/models"
)

var (
	ErrFieldUnavailable = errors.New("field unavailable")
	ErrSerialization    = errors.New("serialization failed")
)

// QueryError reports a requested reading that the observation does not carry.
type QueryError struct {
	Field string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s not available", fieldLabels[e.Field])
}

func (e *QueryError) Unwrap() error {
	return ErrFieldUnavailable
}

var fieldLabels = map[string]string{
	"temperature":      "temperature",
	"relativeHumidity": "relative humidity",
}

// Conditions answers queries over one mapped observation.
type Conditions struct {
	current models.CurrentConditions
}

func NewConditions(cc models.CurrentConditions) *Conditions {
	return &Conditions{current: cc}
}

// Current returns the underlying record.
func (c *Conditions) Current() models.CurrentConditions {
	return c.current
}

// Temperature returns the temperature reading, or a *QueryError when the
// element or its value is missing.
func (c *Conditions) Temperature() (models.Value, error) {
	return readingOf("temperature", c.current.Temperature)
}

// RelativeHumidity returns the relative humidity reading, or a *QueryError
// when the element or its value is missing.
func (c *Conditions) RelativeHumidity() (models.Value, error) {
	return readingOf("relativeHumidity", c.current.RelativeHumidity)
}

// JSON encodes the record on one line; absent fields have no key.
func (c *Conditions) JSON() (string, error) {
	b, err := json.Marshal(c.current)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return string(b), nil
}

func readingOf(field string, m *models.Measurement) (models.Value, error) {
	if m == nil || m.Value == nil {
		return models.Value{}, &QueryError{Field: field}
	}
	return *m.Value, nil
}
