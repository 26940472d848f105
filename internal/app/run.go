package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kjstillabower/citypage-weather/internal/config"
	"github.com/kjstillabower/citypage-weather/internal/observability"
	"github.com/kjstillabower/citypage-weather/internal/service"
)

// ConditionsGetter is the part of service.WeatherService that Run needs.
type ConditionsGetter interface {
	GetConditions(ctx context.Context, url string) (*service.Conditions, error)
}

// Run fetches cfg.URL once and writes one line to out according to cfg.Mode.
// Nothing is written to out on error; the caller renders the error with WriteError.
func Run(ctx context.Context, cfg *config.Config, svc ConditionsGetter, out io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("run", zap.String("url", cfg.URL), zap.Stringer("mode", cfg.Mode))

	conditions, err := svc.GetConditions(ctx, cfg.URL)
	if err != nil {
		return err
	}

	line, err := render(conditions, cfg.Mode)
	observability.RecordQuery(cfg.Mode.String(), err)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, line); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func render(c *service.Conditions, mode config.Mode) (string, error) {
	switch mode {
	case config.ModeTemperature:
		v, err := c.Temperature()
		if err != nil {
			return "", err
		}
		return v.String(), nil
	case config.ModeRelativeHumidity:
		v, err := c.RelativeHumidity()
		if err != nil {
			return "", err
		}
		return v.String(), nil
	default:
		return c.JSON()
	}
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// WriteError writes {"error":"<message>"} on one line and counts the failure.
func WriteError(w io.Writer, err error) {
	observability.RunErrorsTotal.WithLabelValues(string(CategorizeError(err))).Inc()
	b, mErr := json.Marshal(errorEnvelope{Error: err.Error()})
	if mErr != nil {
		b = []byte(`{"error":"unrepresentable error"}`)
	}
	fmt.Fprintln(w, string(b))
}
