package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	ihttp "github.com/influxdata/influxdb-client-go/v2/api/http"
)

// Influx writes to an InfluxDB 2 bucket. The channel id becomes a tag and the
// write key is the API token.
type Influx struct {
	url     string
	org     string
	bucket  string
	host    string
	timeout time.Duration
	client  influxdb2.Client
	token   string
}

func NewInflux(url, org, bucket, host string, timeout time.Duration) *Influx {
	return &Influx{
		url:     url,
		org:     org,
		bucket:  bucket,
		host:    host,
		timeout: timeout,
	}
}

func (i *Influx) connect(token string) influxdb2.Client {
	if i.client != nil && i.token == token {
		return i.client
	}
	if i.client != nil {
		i.client.Close()
	}
	opts := influxdb2.DefaultOptions()
	if i.timeout > 0 {
		opts.SetHTTPRequestTimeout(requestTimeout(i.timeout))
	}
	i.client = influxdb2.NewClientWithOptions(i.url, token, opts)
	i.token = token
	return i.client
}

// requestTimeout is the client timeout in whole seconds, rounded up so a
// sub second timeout does not become 0.
func requestTimeout(d time.Duration) uint {
	return uint(math.Ceil(d.Seconds()))
}

func (i *Influx) WriteField(ctx context.Context, channelID string, field int, value float64, writeKey string) (int, error) {
	w := i.connect(writeKey).WriteAPIBlocking(i.org, i.bucket)
	p := influxdb2.NewPoint("wind",
		map[string]string{"channel": channelID, "host": i.host},
		map[string]interface{}{fmt.Sprintf("field%d", field): value},
		time.Now())
	if err := w.WritePoint(ctx, p); err != nil {
		var herr *ihttp.Error
		if errors.As(err, &herr) && herr.StatusCode != 0 {
			return herr.StatusCode, err
		}
		return http.StatusServiceUnavailable, err
	}
	return http.StatusOK, nil
}

func (i *Influx) Close() error {
	if i.client != nil {
		i.client.Close()
		i.client = nil
	}
	return nil
}
