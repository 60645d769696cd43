package convert

import (
	"testing"

	"github.com/gr-butler/windmeter/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMidScale(t *testing.T) {
	cal := config.DefaultCalibration()

	// 13334 * 0.1875 = 2500.125mV -> 2500mV -> 12000uA
	m := Convert(13334, cal)
	assert.Equal(t, 2500, m.Millivolts)
	assert.Equal(t, 12.0, m.Milliamps)
	assert.Equal(t, 25.0, m.WindSpeed)
	assert.Equal(t, FaultNone, m.Fault)
}

func TestWindSpeedFormula(t *testing.T) {
	cal := config.DefaultCalibration()
	assert.Equal(t, 25.0, WindSpeed(12.00, cal))
	assert.Equal(t, 0.0, WindSpeed(4.00, cal))
	assert.Equal(t, 50.0, WindSpeed(20.00, cal))
}

func TestConvertBelowMinimum(t *testing.T) {
	cal := config.DefaultCalibration()

	for _, code := range []int{0, -100, -3000} {
		m := Convert(code, cal)
		assert.Equal(t, cal.MampMin, m.Milliamps, "code %v", code)
		assert.Equal(t, cal.SpeedMin, m.WindSpeed, "code %v", code)
	}

	// -3000 * 0.1875 = -562mV -> 2202uA, well under 3.6mA
	assert.Equal(t, FaultOpenLoop, Convert(-3000, cal).Fault)
	// a zero reading is the bottom of the range, not a fault
	assert.Equal(t, FaultNone, Convert(0, cal).Fault)
}

func TestConvertAboveMaximum(t *testing.T) {
	cal := config.DefaultCalibration()

	// 26667 * 0.1875 = 5000mV, exactly 20mA
	m := Convert(26667, cal)
	assert.Equal(t, cal.MampMax, m.Milliamps)
	assert.Equal(t, cal.SpeedMax, m.WindSpeed)
	assert.Equal(t, FaultNone, m.Fault)

	// full scale is 6143mV -> 23657uA
	m = Convert(32767, cal)
	assert.Equal(t, cal.MampMax, m.Milliamps)
	assert.Equal(t, cal.SpeedMax, m.WindSpeed)
	assert.Equal(t, FaultOverRange, m.Fault)
}

func TestConvertAlwaysInRange(t *testing.T) {
	cal := config.DefaultCalibration()
	for code := -32768; code <= 32767; code += 97 {
		m := Convert(code, cal)
		require.GreaterOrEqual(t, m.WindSpeed, cal.SpeedMin)
		require.LessOrEqual(t, m.WindSpeed, cal.SpeedMax)
		require.GreaterOrEqual(t, m.Milliamps, cal.MampMin)
		require.LessOrEqual(t, m.Milliamps, cal.MampMax)
	}
}

func TestConvertRounding(t *testing.T) {
	cal := config.DefaultCalibration()

	// 10000 * 0.1875 = 1875mV -> 1875*16000/5000 + 4000 = 10000uA
	m := Convert(10000, cal)
	assert.Equal(t, 10.0, m.Milliamps)
	// (50/16) * 6 = 18.75 -> 18.8
	assert.Equal(t, 18.8, m.WindSpeed)
}

func TestConvertCustomCalibration(t *testing.T) {
	cal := config.DefaultCalibration()
	cal.SpeedMax = 30
	m := Convert(26667, cal)
	assert.Equal(t, 30.0, m.WindSpeed)
}

func TestInterpolate(t *testing.T) {
	assert.Equal(t, 4000, Interpolate(0, 0, 5000, 4000, 20000))
	assert.Equal(t, 20000, Interpolate(5000, 0, 5000, 4000, 20000))
	assert.Equal(t, 12000, Interpolate(2500, 0, 5000, 4000, 20000))
	// not limited to the output range
	assert.Equal(t, 23200, Interpolate(6000, 0, 5000, 4000, 20000))
	// degenerate input range
	assert.Equal(t, 4000, Interpolate(1234, 10, 10, 4000, 20000))
}

func TestClassifyDisabled(t *testing.T) {
	cal := config.DefaultCalibration()
	cal.FaultBelow, cal.FaultAbove = 0, 0
	assert.Equal(t, FaultNone, Classify(0, cal))
	assert.Equal(t, FaultNone, Classify(100, cal))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.35, Round(12.345000001, 2))
	assert.Equal(t, 0.1, Round(0.05, 1))
	assert.Equal(t, -0.1, Round(-0.05, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
}

func TestFaultString(t *testing.T) {
	assert.Equal(t, "ok", FaultNone.String())
	assert.Equal(t, "open loop", FaultOpenLoop.String())
	assert.Equal(t, "over range", FaultOverRange.String())
	assert.Equal(t, "sensor error", FaultSensor.String())
}
