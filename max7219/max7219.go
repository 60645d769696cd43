package max7219

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

/*
MAX7219 8 digit LED driver. Every command is a 16 bit word, register address
then data, clocked in MSB first and latched on the rising edge of LOAD (CS).

Decode mode is left off so any character in the segment table can be shown,
digit registers then take segments as DP A B C D E F G, MSB first.
*/

const (
	regNoop        = 0x00
	regDigit0      = 0x01
	regDecodeMode  = 0x09
	regIntensity   = 0x0A
	regScanLimit   = 0x0B
	regShutdown    = 0x0C
	regDisplayTest = 0x0F

	Digits       = 8
	MaxIntensity = 15

	dpBit = 0x80

	MaxSpeed = 10 * physic.MegaHertz
)

// segments for the characters a 7 segment digit can draw, anything else is blank
var segments = map[byte]byte{
	'0': 0x7E, '1': 0x30, '2': 0x6D, '3': 0x79, '4': 0x33,
	'5': 0x5B, '6': 0x5F, '7': 0x70, '8': 0x7F, '9': 0x7B,
	'A': 0x77, 'a': 0x77, 'B': 0x1F, 'b': 0x1F, 'C': 0x4E, 'c': 0x0D,
	'D': 0x3D, 'd': 0x3D, 'E': 0x4F, 'e': 0x4F, 'F': 0x47, 'f': 0x47,
	'H': 0x37, 'h': 0x17, 'L': 0x0E, 'l': 0x06, 'n': 0x15, 'N': 0x15,
	'o': 0x1D, 'O': 0x7E, 'P': 0x67, 'p': 0x67, 'U': 0x3E, 'u': 0x1C,
	'-': 0x01, '_': 0x08, '.': 0x80, ' ': 0x00,
}

// Segments returns the segment pattern for ch, without the decimal point.
func Segments(ch byte) byte {
	return segments[ch]
}

type Dev struct {
	c spi.Conn
}

// New wakes the chip, shows all 8 digits at the given intensity and clears it.
func New(c spi.Conn, intensity int) (*Dev, error) {
	d := &Dev{c: c}
	setup := [][2]byte{
		{regDisplayTest, 0x00},
		{regDecodeMode, 0x00},
		{regScanLimit, Digits - 1},
		{regShutdown, 0x01},
	}
	for _, cmd := range setup {
		if err := d.write(cmd[0], cmd[1]); err != nil {
			return nil, fmt.Errorf("max7219 init: %w", err)
		}
	}
	if err := d.SetIntensity(intensity); err != nil {
		return nil, err
	}
	if err := d.Clear(); err != nil {
		return nil, err
	}
	logger.Infof("MAX7219 ready on [%v] intensity [%v]", c, intensity)
	return d, nil
}

// Connect opens a MAX7219 on an SPI port.
func Connect(p spi.Port, intensity int) (*Dev, error) {
	c, err := p.Connect(MaxSpeed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("max7219 connect: %w", err)
	}
	return New(c, intensity)
}

func (d *Dev) write(reg, data byte) error {
	return d.c.Tx([]byte{reg, data}, nil)
}

func (d *Dev) Clear() error {
	for i := 0; i < Digits; i++ {
		if err := d.write(byte(regDigit0+i), 0x00); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) SetIntensity(level int) error {
	if level < 0 || level > MaxIntensity {
		return fmt.Errorf("max7219: intensity %d out of range", level)
	}
	return d.write(regIntensity, byte(level))
}

// SetChar draws ch at pos, 0 being the rightmost digit.
func (d *Dev) SetChar(pos int, ch byte, dp bool) error {
	if pos < 0 || pos >= Digits {
		return fmt.Errorf("max7219: digit %d out of range", pos)
	}
	v := Segments(ch)
	if dp {
		v |= dpBit
	}
	return d.write(byte(regDigit0+pos), v)
}

// Shutdown blanks the display and puts the chip into low power mode.
func (d *Dev) Shutdown() error {
	return d.write(regShutdown, 0x00)
}

func (d *Dev) String() string {
	return fmt.Sprintf("MAX7219{%v}", d.c)
}
