package filter

/*
Exponential moving average, Y = (1-alpha)*Y + alpha*Ynew.

alpha is held as a weight out of 64 so the division becomes a 6 bit shift and
the whole thing stays in integer maths. 64 passes samples straight through,
0 freezes the output.
*/

const (
	Shift    = 6
	MaxAlpha = 1 << Shift
)

// Smooth returns the next filtered value for a new raw sample.
// alpha must be within [0, MaxAlpha].
func Smooth(raw, prior, alpha int) int {
	return ((MaxAlpha-alpha)*prior + alpha*raw) >> Shift
}

// EMA holds the running filtered value. The zero value starts at 0.
type EMA struct {
	alpha int
	value int
}

func NewEMA(alpha int) *EMA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > MaxAlpha {
		alpha = MaxAlpha
	}
	return &EMA{alpha: alpha}
}

// Update folds raw into the running value and returns it.
func (e *EMA) Update(raw int) int {
	e.value = Smooth(raw, e.value, e.alpha)
	return e.value
}
