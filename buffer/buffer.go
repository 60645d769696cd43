package buffer

import (
	"math"
	"sync"
)

type Summary struct {
	Average float64
	Minimum float64
	Maximum float64
	Count   int
}

// Window is a circular buffer over the most recent samples.
type Window struct {
	lock     sync.Mutex
	data     []float64
	position int
	count    int
}

func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{data: make([]float64, size)}
}

func (w *Window) Add(val float64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data[w.position] = val
	w.position++
	if w.position == len(w.data) {
		w.position = 0
	}
	if w.count < len(w.data) {
		w.count++
	}
}

// Summary covers only the samples added so far, an empty window gives zeros.
func (w *Window) Summary() Summary {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.count == 0 {
		return Summary{}
	}
	min := math.MaxFloat64
	max := -math.MaxFloat64
	sum := 0.0
	for _, x := range w.data[:w.count] {
		sum += x
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	return Summary{
		Average: sum / float64(w.count),
		Minimum: min,
		Maximum: max,
		Count:   w.count,
	}
}
