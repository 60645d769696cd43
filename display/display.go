package display

import (
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
)

const (
	Digits = 8
	Max    = 99999999
	Min    = -9999999 // one digit goes to the sign
	NoDot  = -1
)

// Device is an 8 digit, 7 segment display. Position 0 is the rightmost digit.
type Device interface {
	Clear() error
	SetIntensity(level int) error
	SetChar(pos int, ch byte, dp bool) error
}

// State is what is currently on the display.
type State struct {
	Last string
	Dot  int
}

// Renderer only touches the device when the content changes.
type Renderer struct {
	dev   Device
	state State
}

func NewRenderer(dev Device) *Renderer {
	return &Renderer{
		dev:   dev,
		state: State{Last: "", Dot: NoDot},
	}
}

// RenderText shows the first 8 characters of text. It reports whether the
// display was redrawn.
func (r *Renderer) RenderText(text string) bool {
	return r.draw(FormatText(text), NoDot)
}

// RenderNumber shows v with as many decimals as fit. It reports whether the
// display was redrawn.
func (r *Renderer) RenderNumber(v float64) bool {
	digits, dot := FormatNumber(v)
	return r.draw(digits, dot)
}

func FormatText(text string) string {
	if len(text) > Digits {
		return text[:Digits]
	}
	return text
}

// FormatNumber formats v to fit the display and strips the decimal point.
// dot is the index in digits where the point was, or NoDot.
func FormatNumber(v float64) (digits string, dot int) {
	var s string
	switch {
	case v > Max:
		s = fmt.Sprintf("%.0f", float64(Max))
	case v > 9999999:
		s = fmt.Sprintf("%.0f", v)
	case v > 999999:
		s = fmt.Sprintf("%.1f", v)
	case v < Min:
		s = fmt.Sprintf("%.0f", float64(Min))
	case v < -999999:
		s = fmt.Sprintf("%.0f", v)
	case v < -99999:
		s = fmt.Sprintf("%.1f", v)
	default:
		s = fmt.Sprintf("%.2f", v)
	}

	dot = strings.IndexByte(s, '.')
	if dot < 0 {
		return s, NoDot
	}
	return s[:dot] + s[dot+1:], dot
}

func (r *Renderer) draw(s string, dot int) bool {
	if s == r.state.Last && dot == r.state.Dot {
		return false
	}
	logger.Debugf("Display [%v] dot [%v]", s, dot)
	r.state = State{Last: s, Dot: dot}

	if err := r.dev.Clear(); err != nil {
		logger.Errorf("Display clear failed [%v]", err)
	}
	n := len(s)
	for i := 0; i < Digits; i++ {
		ch, dp := byte(' '), false
		if i < n {
			ch = s[n-1-i]
			// the point sits after the digit that preceded it in the string
			dp = dot != NoDot && dot == n-i
		}
		if err := r.dev.SetChar(i, ch, dp); err != nil {
			logger.Errorf("Display write failed at [%v] [%v]", i, err)
		}
	}
	return true
}
