package telemetry

import (
	"context"
	"net/http"

	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/convert"
	"github.com/gr-butler/windmeter/metrics"
	logger "github.com/sirupsen/logrus"
)

type Outcome int

const (
	Failed Outcome = iota
	Sent
)

func (o Outcome) String() string {
	if o == Sent {
		return "sent"
	}
	return "failed"
}

// Uploader writes one value to a field of a telemetry channel and returns
// an HTTP style status code, 200 meaning the value was stored.
type Uploader interface {
	WriteField(ctx context.Context, channelID string, field int, value float64, writeKey string) (int, error)
}

// Indicator is the telemetry status LED.
type Indicator interface {
	Set(on bool)
}

type Reporter struct {
	uploader Uploader
	status   Indicator
	cfg      config.TelemetryConfig
}

func NewReporter(uploader Uploader, status Indicator, cfg config.TelemetryConfig) *Reporter {
	return &Reporter{
		uploader: uploader,
		status:   status,
		cfg:      cfg,
	}
}

// Report uploads the wind speed of m once. There is no retry, the next
// attempt is the next scheduled report.
func (r *Reporter) Report(ctx context.Context, m convert.Measurement) Outcome {
	logger.Infof("Sending wind speed [%.1f] to channel [%v]", m.WindSpeed, r.cfg.ChannelID)

	code, err := r.uploader.WriteField(ctx, r.cfg.ChannelID, r.cfg.Field, m.WindSpeed, r.cfg.WriteKey)
	outcome := Failed
	if code == http.StatusOK {
		outcome = Sent
		logger.Info("Successfully sent")
	} else {
		logger.Errorf("Sent with error [%v] [%v]", code, err)
	}

	r.status.Set(outcome == Sent)
	metrics.Reports.WithLabelValues(outcome.String()).Inc()
	return outcome
}
