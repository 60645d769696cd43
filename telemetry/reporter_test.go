package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	channelID string
	field     int
	value     float64
	writeKey  string
}

type fakeUploader struct {
	code  int
	err   error
	calls []call
}

func (f *fakeUploader) WriteField(_ context.Context, channelID string, field int, value float64, writeKey string) (int, error) {
	f.calls = append(f.calls, call{channelID, field, value, writeKey})
	return f.code, f.err
}

type fakeLed struct {
	sets []bool
}

func (f *fakeLed) Set(on bool) { f.sets = append(f.sets, on) }

func testTelemetry() config.TelemetryConfig {
	return config.TelemetryConfig{ChannelID: "42", WriteKey: "KEY", Field: 1}
}

func TestReportSent(t *testing.T) {
	up := &fakeUploader{code: http.StatusOK}
	led := &fakeLed{}
	r := NewReporter(up, led, testTelemetry())

	out := r.Report(context.Background(), convert.Measurement{WindSpeed: 25})
	assert.Equal(t, Sent, out)
	require.Len(t, up.calls, 1)
	assert.Equal(t, call{"42", 1, 25, "KEY"}, up.calls[0])
	assert.Equal(t, []bool{true}, led.sets)
}

func TestReportFailed(t *testing.T) {
	tests := []struct {
		name string
		code int
		err  error
	}{
		{"server error", http.StatusInternalServerError, errors.New("boom")},
		{"not inserted", NotInserted, ErrNotInserted},
		{"transport", 0, errors.New("no route to host")},
		{"forbidden", http.StatusForbidden, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{code: tt.code, err: tt.err}
			led := &fakeLed{}
			r := NewReporter(up, led, testTelemetry())

			assert.Equal(t, Failed, r.Report(context.Background(), convert.Measurement{WindSpeed: 3}))
			assert.Len(t, up.calls, 1)
			assert.Equal(t, []bool{false}, led.sets)
		})
	}
}

func TestReportTracksLastOutcome(t *testing.T) {
	up := &fakeUploader{code: http.StatusOK}
	led := &fakeLed{}
	r := NewReporter(up, led, testTelemetry())

	r.Report(context.Background(), convert.Measurement{})
	up.code = http.StatusBadGateway
	r.Report(context.Background(), convert.Measurement{})
	up.code = http.StatusOK
	r.Report(context.Background(), convert.Measurement{})
	assert.Equal(t, []bool{true, false, true}, led.sets)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "sent", Sent.String())
	assert.Equal(t, "failed", Failed.String())
}

func TestNewUploader(t *testing.T) {
	cfg := testTelemetry()

	cfg.Backend = config.BackendThingSpeak
	up, err := NewUploader(cfg, "host", false)
	require.NoError(t, err)
	assert.IsType(t, &ThingSpeak{}, up)

	up, err = NewUploader(cfg, "host", true)
	require.NoError(t, err)
	assert.IsType(t, DryRun{}, up)

	cfg.Backend = config.BackendMQTT
	cfg.MQTTBroker = "tcp://localhost:1883"
	up, err = NewUploader(cfg, "host", false)
	require.NoError(t, err)
	assert.IsType(t, &MQTT{}, up)

	cfg.Backend = config.BackendInflux
	up, err = NewUploader(cfg, "host", false)
	require.NoError(t, err)
	assert.IsType(t, &Influx{}, up)

	cfg.Backend = config.BackendLog
	up, err = NewUploader(cfg, "host", false)
	require.NoError(t, err)
	assert.IsType(t, DryRun{}, up)

	cfg.Backend = "smoke"
	_, err = NewUploader(cfg, "host", false)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestDryRun(t *testing.T) {
	code, err := DryRun{}.WriteField(context.Background(), "1", 1, 2.5, "KEY")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
}
