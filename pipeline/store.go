package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/gr-butler/windmeter/buffer"
	"github.com/gr-butler/windmeter/convert"
)

// Store holds the latest measurement. Writes replace it whole so a reader
// never sees half a tick.
type Store struct {
	last   atomic.Pointer[convert.Measurement]
	recent *buffer.Window
}

// NewStore keeps the last window wind speeds for the average and gust.
func NewStore(window int) *Store {
	return &Store{recent: buffer.NewWindow(window)}
}

func (s *Store) Set(m convert.Measurement) {
	s.last.Store(&m)
	if s.recent != nil {
		s.recent.Add(m.WindSpeed)
	}
}

// Last returns the latest measurement, or the zero value before the first tick.
func (s *Store) Last() convert.Measurement {
	if m := s.last.Load(); m != nil {
		return *m
	}
	return convert.Measurement{}
}

// Recent summarises the wind speeds in the window.
func (s *Store) Recent() buffer.Summary {
	if s.recent == nil {
		return buffer.Summary{}
	}
	return s.recent.Summary()
}

// LastData is the human readable form of the latest measurement.
func (s *Store) LastData() string {
	return fmt.Sprintf("Wind speed: %0.2f m/s", s.Last().WindSpeed)
}
