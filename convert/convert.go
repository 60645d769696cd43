package convert

import (
	"cmp"
	"math"

	"github.com/gr-butler/windmeter/config"
)

/*
The LSI anemometer is a 4-20mA current loop. A shunt turns the loop current
into 0-5V which the ADS1115 reads, so the chain is

	ADC code -> mV -> uA (linear map) -> mA -> wind speed (m/s)

Every stage saturates rather than failing, so there is always something to
display even with a broken loop. The loop current is classified before it is
clamped so a wiring fault can at least be reported.
*/

// Fault classifies the unclamped loop current.
type Fault int

const (
	FaultNone      Fault = iota
	FaultOpenLoop        // below the fault threshold, broken wire or dead sensor
	FaultOverRange       // above the fault threshold, short or wrong shunt
	FaultSensor          // the ADC read failed, the reading is not from the loop
)

func (f Fault) String() string {
	switch f {
	case FaultOpenLoop:
		return "open loop"
	case FaultOverRange:
		return "over range"
	case FaultSensor:
		return "sensor error"
	default:
		return "ok"
	}
}

// Measurement is the result of one pipeline tick.
type Measurement struct {
	Filtered   int     // filtered ADC code
	Millivolts int     // shunt voltage
	Milliamps  float64 // loop current, clamped, 2 decimals
	WindSpeed  float64 // m/s, clamped, 1 decimal
	Fault      Fault
}

// Convert maps a filtered ADC code to a measurement using cal.
func Convert(filtered int, cal config.CalibrationConfig) Measurement {
	m := Measurement{Filtered: filtered}

	m.Millivolts = int(float64(filtered) * cal.MvPerStep)

	minUA, maxUA := milli(cal.MampMin), milli(cal.MampMax)
	ua := Interpolate(m.Millivolts, milli(cal.VoltMin), milli(cal.VoltMax), minUA, maxUA)
	m.Fault = Classify(float64(ua)/1000, cal)
	ua = Clamp(ua, minUA, maxUA)
	m.Milliamps = Clamp(Round(float64(ua)/1000, 2), cal.MampMin, cal.MampMax)

	speed := WindSpeed(m.Milliamps, cal)
	speed = Clamp(speed, cal.SpeedMin, cal.SpeedMax)
	m.WindSpeed = Clamp(Round(speed, 1), cal.SpeedMin, cal.SpeedMax)

	return m
}

// WindSpeed applies the linear sensor formula, gain * (mA - zero).
func WindSpeed(mamp float64, cal config.CalibrationConfig) float64 {
	return cal.SpeedGain * (mamp - cal.SpeedZeroMamp)
}

// Classify reports loop currents outside the fault thresholds.
// A zero threshold disables that check.
func Classify(mamp float64, cal config.CalibrationConfig) Fault {
	if cal.FaultBelow > 0 && mamp < cal.FaultBelow {
		return FaultOpenLoop
	}
	if cal.FaultAbove > 0 && mamp > cal.FaultAbove {
		return FaultOverRange
	}
	return FaultNone
}

// Interpolate re-maps x from [inMin, inMax] to [outMin, outMax] in integer
// maths. The result is not limited to the output range.
func Interpolate(x, inMin, inMax, outMin, outMax int) int {
	if inMax == inMin {
		return outMin
	}
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func milli(v float64) int {
	return int(math.Round(v * 1000))
}
