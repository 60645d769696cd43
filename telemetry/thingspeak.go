package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	logger "github.com/sirupsen/logrus"
)

/*
https://www.mathworks.com/help/thingspeak/writedata.html

GET https://api.thingspeak.com/update?api_key=<write key>&field1=<value>

The write key identifies the channel. The reply body is the new entry id, or 0
when the update was refused, which happens when writing faster than the
channel allows (15s on a free account).
*/

// NotInserted is returned when ThingSpeak accepted the request but stored nothing.
const NotInserted = -401

var ErrNotInserted = errors.New("thingspeak: entry not inserted")

type update struct {
	APIKey string   `url:"api_key"`
	Field1 *float64 `url:"field1,omitempty"`
	Field2 *float64 `url:"field2,omitempty"`
	Field3 *float64 `url:"field3,omitempty"`
	Field4 *float64 `url:"field4,omitempty"`
	Field5 *float64 `url:"field5,omitempty"`
	Field6 *float64 `url:"field6,omitempty"`
	Field7 *float64 `url:"field7,omitempty"`
	Field8 *float64 `url:"field8,omitempty"`
}

func (u *update) set(field int, value float64) error {
	v := &value
	switch field {
	case 1:
		u.Field1 = v
	case 2:
		u.Field2 = v
	case 3:
		u.Field3 = v
	case 4:
		u.Field4 = v
	case 5:
		u.Field5 = v
	case 6:
		u.Field6 = v
	case 7:
		u.Field7 = v
	case 8:
		u.Field8 = v
	default:
		return fmt.Errorf("thingspeak: no field %d", field)
	}
	return nil
}

type ThingSpeak struct {
	client  *http.Client
	baseURL string
}

func NewThingSpeak(baseURL string, timeout time.Duration) *ThingSpeak {
	return &ThingSpeak{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (t *ThingSpeak) WriteField(ctx context.Context, channelID string, field int, value float64, writeKey string) (int, error) {
	u := update{APIKey: writeKey}
	if err := u.set(field, value); err != nil {
		return 0, err
	}
	vals, err := query.Values(u)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/update?"+vals.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("thingspeak: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64))
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("thingspeak: HTTP [%v]", resp.Status)
	}
	entry := strings.TrimSpace(string(body))
	if entry == "0" {
		return NotInserted, ErrNotInserted
	}
	logger.Debugf("ThingSpeak channel [%v] entry [%v]", channelID, entry)
	return resp.StatusCode, nil
}
