package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type char struct {
	ch byte
	dp bool
}

type fakeDevice struct {
	clears    int
	writes    int
	intensity int
	digits    [Digits]char
	fail      bool
}

func (f *fakeDevice) Clear() error {
	f.clears++
	f.digits = [Digits]char{}
	if f.fail {
		return errors.New("bus")
	}
	return nil
}

func (f *fakeDevice) SetIntensity(level int) error {
	f.intensity = level
	return nil
}

func (f *fakeDevice) SetChar(pos int, ch byte, dp bool) error {
	f.writes++
	f.digits[pos] = char{ch, dp}
	if f.fail {
		return errors.New("bus")
	}
	return nil
}

// shown returns the display left to right, with points inline.
func (f *fakeDevice) shown() string {
	out := ""
	for i := Digits - 1; i >= 0; i-- {
		out += string(f.digits[i].ch)
		if f.digits[i].dp {
			out += "."
		}
	}
	return out
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in     float64
		digits string
		dot    int
	}{
		{3.14, "314", 1},
		{0, "000", 1},
		{25, "2500", 2},
		{12.3, "1230", 2},
		{999999, "99999900", 6},
		{1234567, "12345670", 7},
		{12345678, "12345678", NoDot},
		{123456789, "99999999", NoDot},
		{-1.5, "-150", 2},
		{-123456, "-1234560", 7},
		{-1234567, "-1234567", NoDot},
		{-123456789, "-9999999", NoDot},
	}
	for _, tt := range tests {
		digits, dot := FormatNumber(tt.in)
		assert.Equal(t, tt.digits, digits, "value %v", tt.in)
		assert.Equal(t, tt.dot, dot, "value %v", tt.in)
		assert.LessOrEqual(t, len(digits), Digits, "value %v", tt.in)
	}
}

func TestFormatText(t *testing.T) {
	assert.Equal(t, "con...", FormatText("con..."))
	assert.Equal(t, "abcdefgh", FormatText("abcdefghijk"))
	assert.Equal(t, "", FormatText(""))
}

func TestRenderNumberPlacesDot(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev)

	require.True(t, r.RenderNumber(3.14))
	assert.Equal(t, char{'4', false}, dev.digits[0])
	assert.Equal(t, char{'1', false}, dev.digits[1])
	assert.Equal(t, char{'3', true}, dev.digits[2])
	for i := 3; i < Digits; i++ {
		assert.Equal(t, char{' ', false}, dev.digits[i])
	}
	assert.Equal(t, "     3.14", dev.shown())
	assert.Equal(t, State{Last: "314", Dot: 1}, r.state)
}

func TestRenderSaturates(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev)

	require.True(t, r.RenderNumber(123456789))
	assert.Equal(t, "99999999", dev.shown())
	for i := 0; i < Digits; i++ {
		assert.False(t, dev.digits[i].dp)
	}
}

func TestRenderSuppressesRedraw(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev)

	assert.True(t, r.RenderNumber(12.3))
	assert.False(t, r.RenderNumber(12.3))
	assert.Equal(t, 1, dev.clears)
	assert.Equal(t, Digits, dev.writes)

	assert.True(t, r.RenderNumber(12.4))
	assert.Equal(t, 2, dev.clears)
	assert.Equal(t, 2*Digits, dev.writes)
}

func TestRenderSameDigitsDifferentDot(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev)

	// both strip to "12345670"
	require.True(t, r.RenderNumber(1234567))
	require.True(t, r.RenderNumber(123456.7))
	assert.Equal(t, 2, dev.clears)
}

func TestRenderText(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev)

	require.True(t, r.RenderText("con..."))
	assert.Equal(t, "  con...", dev.shown())
	require.True(t, r.RenderText("192"))
	assert.Equal(t, "     192", dev.shown())
	assert.False(t, r.RenderText("192"))
}

func TestRenderEmptyTextInitiallySuppressed(t *testing.T) {
	dev := &fakeDevice{}
	r := NewRenderer(dev)

	assert.False(t, r.RenderText(""))
	assert.Equal(t, 0, dev.clears)

	require.True(t, r.RenderText("a"))
	require.True(t, r.RenderText(""))
	assert.Equal(t, "        ", dev.shown())
}

func TestRenderDeviceErrorsAreAbsorbed(t *testing.T) {
	dev := &fakeDevice{fail: true}
	r := NewRenderer(dev)

	assert.True(t, r.RenderNumber(1))
	assert.Equal(t, Digits, dev.writes)
	assert.False(t, r.RenderNumber(1))
}
