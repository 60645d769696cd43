package main

import (
	"net"
	"time"

	"github.com/gr-butler/windmeter/connectivity"
	"github.com/gr-butler/windmeter/env"
	logger "github.com/sirupsen/logrus"
)

type textRenderer interface {
	RenderText(text string) bool
}

type prober interface {
	Probe() bool
	LocalIP() (net.IP, error)
}

// satisfied by clockwork.Clock
type sleeper interface {
	Sleep(d time.Duration)
}

type flickerer interface {
	Flicker(pulses int)
}

// boot shows "con..." while the link comes up, then the local address one
// octet at a time.
func boot(r textRenderer, m prober, clock sleeper, leds ...flickerer) {
	for _, l := range leds {
		l.Flicker(3)
	}

	r.RenderText("con...")
	if !m.Probe() {
		logger.Warn("No connection at boot, carrying on")
		r.RenderText("")
		return
	}

	ip, err := m.LocalIP()
	if err != nil {
		logger.Errorf("Failed to get local address [%v]", err)
	} else {
		logger.Infof("Local address [%v]", ip)
		for _, o := range connectivity.Octets(ip) {
			r.RenderText(o)
			clock.Sleep(env.IPOctetDisplay)
		}
	}
	r.RenderText("")
}
