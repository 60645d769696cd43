package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
)

var WindSpeed = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windspeed",
		Help: "Wind speed m/s",
	},
)

var WindGust = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windgust",
		Help: "Highest wind speed in the report window m/s",
	},
)

var WindSpeedAvg = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "windspeed_avg",
		Help: "Average wind speed over the report window m/s",
	},
)

var LoopCurrent = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "loop_current_ma",
		Help: "Anemometer current loop mA",
	},
)

var ADCRaw = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "adc_raw",
		Help: "Last raw ADC code",
	},
)

var ADCFiltered = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "adc_filtered",
		Help: "EMA filtered ADC code",
	},
)

var LoopFault = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "loop_fault",
		Help: "Current loop fault, 0 ok, 1 open loop, 2 over range, 3 sensor error",
	},
)

var SensorErrors = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sensor_read_errors_total",
		Help: "ADC reads that failed",
	},
)

var Reports = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telemetry_reports_total",
		Help: "Telemetry uploads by outcome",
	},
	[]string{"outcome"},
)

var Connected = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "network_connected",
		Help: "1 when the network probe succeeds",
	},
)

func init() {
	logger.Info("Initialize prometheus...")
	prometheus.MustRegister(
		WindSpeed,
		WindGust,
		WindSpeedAvg,
		LoopCurrent,
		ADCRaw,
		ADCFiltered,
		LoopFault,
		SensorErrors,
		Reports,
		Connected,
	)
}
