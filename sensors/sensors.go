package sensors

import (
	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/led"
	"github.com/gr-butler/windmeter/max7219"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

/*
 * Hardware owns the buses and the devices hanging off them.
 */

type Hardware struct {
	Bus           i2c.BusCloser
	Port          spi.PortCloser
	Loop          *CurrentLoop
	Display       *max7219.Dev
	TelemetryLed  *led.LED
	ConnectionLed *led.LED
}

func Open(hw config.HardwareConfig) (*Hardware, error) {
	h := &Hardware{}

	if _, err := host.Init(); err != nil {
		logger.Errorf("Failed to init host drivers [%v]", err)
		return nil, err
	}

	// an empty name opens the first bus found
	bus, err := i2creg.Open(hw.I2CBus)
	if err != nil {
		logger.Errorf("Failed to open I²C [%v]", err)
		return nil, err
	}
	h.Bus = bus

	h.Loop, err = NewCurrentLoop(bus, hw)
	if err != nil {
		h.Close()
		return nil, err
	}

	logger.Info("Starting MAX7219 display")
	port, err := spireg.Open(hw.SPIPort)
	if err != nil {
		logger.Errorf("Failed to open SPI [%v]", err)
		h.Close()
		return nil, err
	}
	h.Port = port

	h.Display, err = max7219.Connect(port, hw.DisplayIntensity)
	if err != nil {
		logger.Errorf("Failed to start display [%v]", err)
		h.Close()
		return nil, err
	}

	// failed LEDs are not critical
	h.TelemetryLed = led.NewLED("Telemetry", hw.TelemetryLed)
	h.ConnectionLed = led.NewLED("Connection", hw.ConnectionLed)

	return h, nil
}

func (h *Hardware) Close() {
	if h.Display != nil {
		_ = h.Display.Shutdown()
	}
	if h.Loop != nil {
		_ = h.Loop.Halt()
	}
	if h.Port != nil {
		_ = h.Port.Close()
	}
	if h.Bus != nil {
		_ = h.Bus.Close()
	}
}
