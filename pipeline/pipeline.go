package pipeline

import (
	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/convert"
	"github.com/gr-butler/windmeter/filter"
	"github.com/gr-butler/windmeter/metrics"
	logger "github.com/sirupsen/logrus"
)

// Sensor returns a raw ADC code.
type Sensor interface {
	Read() (int, error)
}

type Renderer interface {
	RenderNumber(v float64) bool
}

// Pipeline is sample -> filter -> convert -> store -> display.
type Pipeline struct {
	sensor    Sensor
	renderer  Renderer
	cal       config.CalibrationConfig
	ema       *filter.EMA
	store     *Store
	verbose   bool
	lastFault convert.Fault
}

func New(sensor Sensor, renderer Renderer, cal config.CalibrationConfig, store *Store, verbose bool) *Pipeline {
	return &Pipeline{
		sensor:   sensor,
		renderer: renderer,
		cal:      cal,
		ema:      filter.NewEMA(cal.FilterAlpha),
		store:    store,
		verbose:  verbose,
	}
}

// Tick takes one sample through the pipeline and returns the new measurement.
func (p *Pipeline) Tick() convert.Measurement {
	raw, err := p.sensor.Read()
	if err != nil {
		// a dead bus reads as zero, as the firmware did, but is flagged
		logger.Errorf("ADC read failed [%v]", err)
		metrics.SensorErrors.Inc()
		raw = 0
	}

	filtered := p.ema.Update(raw)
	m := convert.Convert(filtered, p.cal)
	if err != nil {
		m.Fault = convert.FaultSensor
	}

	if p.verbose {
		logger.Infof("LSI ADC raw [%v] filtered [%v] mV [%v] mA [%.2f] wind [%.1f]",
			raw, filtered, m.Millivolts, m.Milliamps, m.WindSpeed)
	}
	if m.Fault != p.lastFault {
		if m.Fault == convert.FaultNone {
			logger.Infof("Current loop recovered [%.2f mA]", m.Milliamps)
		} else {
			logger.Warnf("Current loop fault [%v] filtered ADC [%v]", m.Fault, filtered)
		}
		p.lastFault = m.Fault
	}

	p.store.Set(m)
	p.renderer.RenderNumber(m.WindSpeed)

	metrics.ADCRaw.Set(float64(raw))
	metrics.ADCFiltered.Set(float64(filtered))
	metrics.LoopCurrent.Set(m.Milliamps)
	metrics.WindSpeed.Set(m.WindSpeed)
	metrics.LoopFault.Set(float64(m.Fault))
	recent := p.store.Recent()
	metrics.WindSpeedAvg.Set(recent.Average)
	metrics.WindGust.Set(recent.Maximum)

	return m
}

func (p *Pipeline) Last() convert.Measurement {
	return p.store.Last()
}
