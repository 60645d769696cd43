package connectivity

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gr-butler/windmeter/config"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLed struct {
	sets []bool
}

func (f *fakeLed) Set(on bool) { f.sets = append(f.sets, on) }

type udpConn struct {
	net.Conn
}

func (udpConn) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(192, 168, 1, 23), Port: 40000}
}

type fakeDialer struct {
	up    bool
	dials []string
}

func (f *fakeDialer) dial(_ context.Context, network, address string) (net.Conn, error) {
	f.dials = append(f.dials, network+" "+address)
	if !f.up {
		return nil, errors.New("network is unreachable")
	}
	c, _ := net.Pipe()
	if network == "udp" {
		return udpConn{c}, nil
	}
	return c, nil
}

func testMonitor(d *fakeDialer, led *fakeLed, clock clockwork.Clock) *Monitor {
	cfg := config.ConnectivityConfig{
		Probe:         "api.thingspeak.com:80",
		CheckInterval: 10 * time.Second,
		Timeout:       time.Second,
	}
	return NewMonitor(cfg, led, clock).WithDial(d.dial)
}

func TestProbe(t *testing.T) {
	d := &fakeDialer{up: true}
	led := &fakeLed{}
	m := testMonitor(d, led, clockwork.NewFakeClock())

	assert.False(t, m.IsConnected())
	assert.True(t, m.Probe())
	assert.True(t, m.IsConnected())
	assert.Equal(t, []string{"tcp api.thingspeak.com:80"}, d.dials)

	d.up = false
	assert.False(t, m.Probe())
	assert.False(t, m.IsConnected())
	assert.Equal(t, []bool{true, false}, led.sets)
}

func TestCheckConnectionRateLimited(t *testing.T) {
	d := &fakeDialer{up: true}
	clock := clockwork.NewFakeClock()
	m := testMonitor(d, &fakeLed{}, clock)

	m.CheckConnection()
	assert.Len(t, d.dials, 1)
	assert.True(t, m.IsConnected())

	clock.Advance(5 * time.Second)
	d.up = false
	m.CheckConnection()
	assert.Len(t, d.dials, 1)
	assert.True(t, m.IsConnected(), "cached until next check")

	clock.Advance(5 * time.Second)
	m.CheckConnection()
	assert.Len(t, d.dials, 2)
	assert.False(t, m.IsConnected())
}

func TestLocalIP(t *testing.T) {
	d := &fakeDialer{up: true}
	m := testMonitor(d, &fakeLed{}, clockwork.NewFakeClock())

	ip, err := m.LocalIP()
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.23", ip.String())
	assert.Equal(t, []string{"udp api.thingspeak.com:80"}, d.dials)

	d.up = false
	_, err = m.LocalIP()
	assert.Error(t, err)
}

func TestOctets(t *testing.T) {
	assert.Equal(t, []string{"192", "168", "1", "23"}, Octets(net.IPv4(192, 168, 1, 23)))
	assert.Equal(t, []string{"10", "0", "0", "0"}, Octets(net.ParseIP("10.0.0.0")))
	assert.Nil(t, Octets(net.ParseIP("::1")))
}
