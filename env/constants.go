package env

import "time"

const (
	GPIO02 = "GPIO02" // SDA
	GPIO03 = "GPIO03" // SCL
	GPIO08 = "GPIO08" // CE0  MAX7219 LOAD
	GPIO10 = "GPIO10" // MOSI MAX7219 DIN
	GPIO11 = "GPIO11" // SCLK MAX7219 CLK
	GPIO19 = "GPIO19" // telemetry status LED
	GPIO20 = "GPIO20" // connection status LED

	TelemetryLed  = GPIO19
	ConnectionLed = GPIO20

	// ADS1115 on the default address, gain 2/3 (+/- 6.144V).
	// 16 bit on +/- 6.144V = 15 bit on 6.144V, 6.144V*2 / 2^16 = 0.1875mV
	ADS1115Address    uint16  = 0x48
	ADS1115MaxVoltage float64 = 6.144
	ADS1115MvStep     float64 = 0.1875
	LSIChannel                = 0

	// LSI current to voltage converter, 4-20mA over 0-5V
	LSIMinVolt = 0.0
	LSIMaxVolt = 5.0
	LSIMinMamp = 4.0
	LSIMaxMamp = 20.0

	// wind speed = (50/16) * (mA - 4)
	LSISpeedGain     = 50.0 / 16.0
	LSISpeedZeroMamp = 4.0
	LSIMinSpeed      = 0.0
	LSIMaxSpeed      = 50.0

	// NAMUR NE43 loop fault thresholds
	LoopFaultBelowMamp = 3.6
	LoopFaultAboveMamp = 21.0

	EMAFilterAlpha = 50

	SampleInterval = time.Millisecond * 1000
	ReportInterval = time.Millisecond * 60000
	LoopIdle       = time.Millisecond * 10

	ConnectionCheckInterval = time.Second * 10
	ConnectionTimeout       = time.Second * 5
	ConnectionProbe         = "api.thingspeak.com:80"

	DisplayIntensity = 8
	IPOctetDisplay   = time.Second * 2

	ThingSpeakURL    = "https://api.thingspeak.com"
	TelemetryField   = 1
	TelemetryTimeout = time.Second * 30

	HostnamePrefix = "lsiwindmeter"
)
