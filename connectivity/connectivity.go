package connectivity

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/metrics"
	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Indicator is the connection status LED.
type Indicator interface {
	Set(on bool)
}

// Monitor tracks whether the uplink is usable. A TCP connect to the probe
// address stands in for the network stack link status.
type Monitor struct {
	clock     clockwork.Clock
	dial      DialFunc
	led       Indicator
	probe     string
	interval  time.Duration
	timeout   time.Duration
	connected bool
	checked   time.Time
	probed    bool
}

func NewMonitor(cfg config.ConnectivityConfig, led Indicator, clock clockwork.Clock) *Monitor {
	d := &net.Dialer{}
	return &Monitor{
		clock:    clock,
		dial:     d.DialContext,
		led:      led,
		probe:    cfg.Probe,
		interval: cfg.CheckInterval,
		timeout:  cfg.Timeout,
	}
}

// WithDial replaces the dialer, used by tests.
func (m *Monitor) WithDial(dial DialFunc) *Monitor {
	m.dial = dial
	return m
}

func (m *Monitor) IsConnected() bool {
	return m.connected
}

// CheckConnection probes the link at most once per check interval.
func (m *Monitor) CheckConnection() {
	if m.probed && m.clock.Since(m.checked) < m.interval {
		return
	}
	m.Probe()
}

// Probe checks the link now and updates the LED on any change.
func (m *Monitor) Probe() bool {
	m.probed = true
	m.checked = m.clock.Now()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	conn, err := m.dial(ctx, "tcp", m.probe)
	up := err == nil
	if up {
		conn.Close()
	}

	if up != m.connected {
		if up {
			logger.Infof("Connected, probe [%v] reachable", m.probe)
		} else {
			logger.Warnf("Connection lost, probe [%v] [%v]", m.probe, err)
		}
	}
	m.connected = up
	m.led.Set(up)
	if up {
		metrics.Connected.Set(1)
	} else {
		metrics.Connected.Set(0)
	}
	return up
}

// LocalIP returns the address used to reach the probe host. No packets are
// sent, a UDP dial only selects the route.
func (m *Monitor) LocalIP() (net.IP, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	conn, err := m.dial(ctx, "udp", m.probe)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, &net.AddrError{Err: "not a UDP address", Addr: conn.LocalAddr().String()}
	}
	return addr.IP, nil
}

// Octets splits an IPv4 address into its four decimal parts.
func Octets(ip net.IP) []string {
	v4 := ip.To4()
	if v4 == nil {
		return nil
	}
	out := make([]string, 0, net.IPv4len)
	for _, b := range v4 {
		out = append(out, strconv.Itoa(int(b)))
	}
	return out
}
