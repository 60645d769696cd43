package sensors

import (
	"fmt"

	"github.com/gr-butler/windmeter/config"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

/*
The LSI anemometer drives a 4-20mA loop into a current to voltage converter,
0-5V out. That goes single ended into the ADS1115 at gain 2/3 (+/- 6.144V), so
the code is effectively 15 bit, 0..32767, 0.1875mV per step.
*/

var channels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

type CurrentLoop struct {
	pin     ads1x15.PinADC
	channel int
}

func NewCurrentLoop(bus i2c.Bus, hw config.HardwareConfig) (*CurrentLoop, error) {
	ch, err := Channel(hw.ADCChannel)
	if err != nil {
		return nil, err
	}

	logger.Infof("Starting LSI current loop ADC I2C [%x] channel [%v]", hw.ADCAddress, hw.ADCChannel)
	opts := ads1x15.DefaultOpts
	opts.I2cAddress = hw.ADCAddress
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		logger.Errorf("Failed to open ADS1115 [%v]", err)
		return nil, err
	}

	maxV := physic.ElectricPotential(hw.ADCMaxVoltage * float64(physic.Volt))
	pin, err := adc.PinForChannel(ch, maxV, 1*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		logger.Errorf("Failed to get ADC channel [%v] [%v]", hw.ADCChannel, err)
		return nil, err
	}

	return &CurrentLoop{pin: pin, channel: hw.ADCChannel}, nil
}

// Read does a single ended conversion and returns the raw code.
func (c *CurrentLoop) Read() (int, error) {
	sample, err := c.pin.Read()
	if err != nil {
		return 0, err
	}
	return int(sample.Raw), nil
}

func (c *CurrentLoop) Halt() error {
	return c.pin.Halt()
}

func (c *CurrentLoop) String() string {
	return fmt.Sprintf("LSI current loop on ADC channel %d", c.channel)
}

func Channel(n int) (ads1x15.Channel, error) {
	if n < 0 || n >= len(channels) {
		return 0, fmt.Errorf("no ADS1115 single ended channel %d", n)
	}
	return channels[n], nil
}
