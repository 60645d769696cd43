package led

import (
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// LED is a status indicator on a GPIO pin. A missing pin is not critical,
// the LED then just tracks its state.
type LED struct {
	Name    string
	lock    sync.Mutex
	on      bool
	gpioPin gpio.PinIO
}

func NewLED(name string, GPIOPin string) *LED {
	logger.Infof("Creating new LED on pin [%v] called [%v]", GPIOPin, name)
	p := gpioreg.ByName(GPIOPin)
	if p == nil {
		logger.Errorf("Failed to find %v pin", GPIOPin)
		return New(name, nil)
	}
	return New(name, p)
}

func New(name string, pin gpio.PinIO) *LED {
	l := &LED{
		Name:    name,
		gpioPin: pin,
	}
	l.out(gpio.Low)
	return l
}

func (l *LED) out(level gpio.Level) {
	if l.gpioPin == nil {
		return
	}
	if err := l.gpioPin.Out(level); err != nil {
		logger.Errorf("LED [%v] write failed [%v]", l.Name, err)
	}
}

func (l *LED) Set(on bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = on
	l.out(gpio.Level(on))
}

func (l *LED) isOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}

// Flicker pulses the LED and leaves it in its previous state, used at boot
// to show the pin is wired.
func (l *LED) Flicker(pulses int) {
	if pulses < 1 || pulses > 100 {
		// reject daft or excessive requests
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	for i := 0; i < pulses; i++ {
		l.out(gpio.High)
		time.Sleep(time.Millisecond * 100)
		l.out(gpio.Low)
		time.Sleep(time.Millisecond * 100)
	}
	l.out(gpio.Level(l.on))
}
