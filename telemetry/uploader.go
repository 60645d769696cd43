package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gr-butler/windmeter/config"
	logger "github.com/sirupsen/logrus"
)

var ErrUnknownBackend = errors.New("unknown telemetry backend")

// NewUploader returns the uploader for cfg.Backend. In test mode nothing leaves
// the box and values are only logged.
func NewUploader(cfg config.TelemetryConfig, hostname string, test bool) (Uploader, error) {
	if test {
		logger.Info("TEST MODE, telemetry is logged only")
		return DryRun{}, nil
	}
	switch cfg.Backend {
	case config.BackendThingSpeak:
		return NewThingSpeak(cfg.URL, cfg.Timeout), nil
	case config.BackendMQTT:
		return NewMQTT(cfg, hostname), nil
	case config.BackendInflux:
		return NewInflux(cfg.URL, cfg.InfluxOrg, cfg.InfluxBucket, hostname, cfg.Timeout), nil
	case config.BackendLog:
		return DryRun{}, nil
	}
	return nil, fmt.Errorf("%w [%v]", ErrUnknownBackend, cfg.Backend)
}

// DryRun logs the value and reports success.
type DryRun struct{}

func (DryRun) WriteField(_ context.Context, channelID string, field int, value float64, _ string) (int, error) {
	logger.Infof("Channel [%v] field%d [%v] (not sent)", channelID, field, value)
	return http.StatusOK, nil
}
