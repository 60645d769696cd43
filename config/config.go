package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gr-butler/windmeter/env"
	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configName = "windmeter"
	envPrefix  = "WINDMETER"
)

var ErrInvalid = errors.New("invalid configuration")

// Telemetry backends
const (
	BackendThingSpeak = "thingspeak"
	BackendMQTT       = "mqtt"
	BackendInflux     = "influx"
	BackendLog        = "log"
)

// Config is read once at startup and never modified afterwards.
type Config struct {
	DeviceID     int                `mapstructure:"device_id" yaml:"device_id"`
	LogLevel     string             `mapstructure:"log_level" yaml:"log_level"`
	Test         bool               `mapstructure:"test" yaml:"test"`
	Debug        DebugConfig        `mapstructure:"debug" yaml:"debug"`
	Calibration  CalibrationConfig  `mapstructure:"calibration" yaml:"calibration"`
	Schedule     ScheduleConfig     `mapstructure:"schedule" yaml:"schedule"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry" yaml:"telemetry"`
	Hardware     HardwareConfig     `mapstructure:"hardware" yaml:"hardware"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity" yaml:"connectivity"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`

	DumpConfig bool `mapstructure:"-" yaml:"-"`
}

type DebugConfig struct {
	Sensor bool `mapstructure:"sensor" yaml:"sensor"` // log every pipeline stage
}

// CalibrationConfig turns an ADC code into a wind speed.
type CalibrationConfig struct {
	MvPerStep     float64 `mapstructure:"mv_per_step" yaml:"mv_per_step"`
	VoltMin       float64 `mapstructure:"volt_min" yaml:"volt_min"`
	VoltMax       float64 `mapstructure:"volt_max" yaml:"volt_max"`
	MampMin       float64 `mapstructure:"mamp_min" yaml:"mamp_min"`
	MampMax       float64 `mapstructure:"mamp_max" yaml:"mamp_max"`
	SpeedGain     float64 `mapstructure:"speed_gain" yaml:"speed_gain"`
	SpeedZeroMamp float64 `mapstructure:"speed_zero_mamp" yaml:"speed_zero_mamp"`
	SpeedMin      float64 `mapstructure:"speed_min" yaml:"speed_min"`
	SpeedMax      float64 `mapstructure:"speed_max" yaml:"speed_max"`
	FilterAlpha   int     `mapstructure:"filter_alpha" yaml:"filter_alpha"`
	FaultBelow    float64 `mapstructure:"fault_below_mamp" yaml:"fault_below_mamp"`
	FaultAbove    float64 `mapstructure:"fault_above_mamp" yaml:"fault_above_mamp"`
}

type ScheduleConfig struct {
	SampleInterval time.Duration `mapstructure:"sample_interval" yaml:"sample_interval"`
	ReportInterval time.Duration `mapstructure:"report_interval" yaml:"report_interval"`
	LoopIdle       time.Duration `mapstructure:"loop_idle" yaml:"loop_idle"`
}

type TelemetryConfig struct {
	Backend      string        `mapstructure:"backend" yaml:"backend"`
	ChannelID    string        `mapstructure:"channel_id" yaml:"channel_id"`
	WriteKey     string        `mapstructure:"write_key" yaml:"write_key"`
	Field        int           `mapstructure:"field" yaml:"field"`
	URL          string        `mapstructure:"url" yaml:"url"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MQTTBroker   string        `mapstructure:"mqtt_broker" yaml:"mqtt_broker"`
	MQTTClientID string        `mapstructure:"mqtt_client_id" yaml:"mqtt_client_id"` // defaults to the hostname
	MQTTUsername string        `mapstructure:"mqtt_username" yaml:"mqtt_username"`
	MQTTPassword string        `mapstructure:"mqtt_password" yaml:"mqtt_password"`
	InfluxOrg    string        `mapstructure:"influx_org" yaml:"influx_org"`
	InfluxBucket string        `mapstructure:"influx_bucket" yaml:"influx_bucket"`
}

type HardwareConfig struct {
	I2CBus           string  `mapstructure:"i2c_bus" yaml:"i2c_bus"`
	ADCAddress       uint16  `mapstructure:"adc_address" yaml:"adc_address"`
	ADCChannel       int     `mapstructure:"adc_channel" yaml:"adc_channel"`
	ADCMaxVoltage    float64 `mapstructure:"adc_max_voltage" yaml:"adc_max_voltage"`
	SPIPort          string  `mapstructure:"spi_port" yaml:"spi_port"`
	DisplayIntensity int     `mapstructure:"display_intensity" yaml:"display_intensity"`
	TelemetryLed     string  `mapstructure:"telemetry_led" yaml:"telemetry_led"`
	ConnectionLed    string  `mapstructure:"connection_led" yaml:"connection_led"`
}

type ConnectivityConfig struct {
	Probe         string        `mapstructure:"probe" yaml:"probe"`
	CheckInterval time.Duration `mapstructure:"check_interval" yaml:"check_interval"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type HTTPConfig struct {
	Listen  string        `mapstructure:"listen" yaml:"listen"`
	Metrics bool          `mapstructure:"metrics" yaml:"metrics"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device_id", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("test", false)
	v.SetDefault("debug.sensor", false)

	v.SetDefault("calibration.mv_per_step", env.ADS1115MvStep)
	v.SetDefault("calibration.volt_min", env.LSIMinVolt)
	v.SetDefault("calibration.volt_max", env.LSIMaxVolt)
	v.SetDefault("calibration.mamp_min", env.LSIMinMamp)
	v.SetDefault("calibration.mamp_max", env.LSIMaxMamp)
	v.SetDefault("calibration.speed_gain", env.LSISpeedGain)
	v.SetDefault("calibration.speed_zero_mamp", env.LSISpeedZeroMamp)
	v.SetDefault("calibration.speed_min", env.LSIMinSpeed)
	v.SetDefault("calibration.speed_max", env.LSIMaxSpeed)
	v.SetDefault("calibration.filter_alpha", env.EMAFilterAlpha)
	v.SetDefault("calibration.fault_below_mamp", env.LoopFaultBelowMamp)
	v.SetDefault("calibration.fault_above_mamp", env.LoopFaultAboveMamp)

	v.SetDefault("schedule.sample_interval", env.SampleInterval)
	v.SetDefault("schedule.report_interval", env.ReportInterval)
	v.SetDefault("schedule.loop_idle", env.LoopIdle)

	v.SetDefault("telemetry.backend", BackendThingSpeak)
	v.SetDefault("telemetry.channel_id", "")
	v.SetDefault("telemetry.write_key", "")
	v.SetDefault("telemetry.field", env.TelemetryField)
	v.SetDefault("telemetry.url", env.ThingSpeakURL)
	v.SetDefault("telemetry.timeout", env.TelemetryTimeout)
	v.SetDefault("telemetry.mqtt_broker", "tcp://mqtt3.thingspeak.com:1883")
	v.SetDefault("telemetry.mqtt_client_id", "")
	v.SetDefault("telemetry.mqtt_username", "")
	v.SetDefault("telemetry.mqtt_password", "")
	v.SetDefault("telemetry.influx_org", "")
	v.SetDefault("telemetry.influx_bucket", "wind")

	v.SetDefault("hardware.i2c_bus", "")
	v.SetDefault("hardware.adc_address", env.ADS1115Address)
	v.SetDefault("hardware.adc_channel", env.LSIChannel)
	v.SetDefault("hardware.adc_max_voltage", env.ADS1115MaxVoltage)
	v.SetDefault("hardware.spi_port", "")
	v.SetDefault("hardware.display_intensity", env.DisplayIntensity)
	v.SetDefault("hardware.telemetry_led", env.TelemetryLed)
	v.SetDefault("hardware.connection_led", env.ConnectionLed)

	v.SetDefault("connectivity.probe", env.ConnectionProbe)
	v.SetDefault("connectivity.check_interval", env.ConnectionCheckInterval)
	v.SetDefault("connectivity.timeout", env.ConnectionTimeout)

	v.SetDefault("http.listen", ":80")
	v.SetDefault("http.metrics", true)
	v.SetDefault("http.timeout", time.Second*5)
}

// Load builds the configuration from defaults, an optional config file, a .env
// file, WINDMETER_* environment variables and the command line, in that order.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	configFile := fs.String("config", "", "configuration file (yaml or toml)")
	fs.Bool("test", false, "test mode, telemetry is logged and not sent")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.Bool("debug-sensor", false, "log every pipeline stage")
	fs.Int("device-id", 0, "device id, used for the hostname")
	fs.String("listen", "", "status server listen address")
	dump := fs.Bool("dump-config", false, "print the effective configuration and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// credentials usually live in .env next to the binary
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded [%v]", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc/windmeter")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("No config file found, using defaults")
	} else {
		logger.Infof("Using config file [%v]", v.ConfigFileUsed())
	}

	binds := map[string]string{
		"test":         "test",
		"log_level":    "log-level",
		"debug.sensor": "debug-sensor",
		"device_id":    "device-id",
		"http.listen":  "listen",
	}
	for key, flag := range binds {
		f := fs.Lookup(flag)
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %v: %w", flag, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DumpConfig = *dump
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, a...))
}

func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level [%v]", c.LogLevel)
	}
	if err := c.Calibration.Validate(); err != nil {
		return err
	}
	if c.Schedule.SampleInterval <= 0 || c.Schedule.ReportInterval <= 0 {
		return invalid("schedule intervals must be positive")
	}
	if c.Schedule.LoopIdle < 0 {
		return invalid("schedule.loop_idle must not be negative")
	}
	if c.Connectivity.CheckInterval <= 0 || c.Connectivity.Timeout <= 0 {
		return invalid("connectivity.check_interval and connectivity.timeout must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		return invalid("http.timeout must be positive")
	}
	if c.Telemetry.Timeout <= 0 {
		return invalid("telemetry.timeout must be positive")
	}
	switch c.Telemetry.Backend {
	case BackendThingSpeak, BackendMQTT, BackendInflux, BackendLog:
	default:
		return invalid("telemetry.backend [%v]", c.Telemetry.Backend)
	}
	if c.Telemetry.Backend == BackendMQTT && (c.Telemetry.MQTTUsername == "" || c.Telemetry.MQTTPassword == "") {
		return invalid("telemetry.mqtt_username and telemetry.mqtt_password are required by the mqtt backend")
	}
	if c.Telemetry.Field < 1 || c.Telemetry.Field > 8 {
		return invalid("telemetry.field [%v] must be 1..8", c.Telemetry.Field)
	}
	if c.Hardware.DisplayIntensity < 0 || c.Hardware.DisplayIntensity > 15 {
		return invalid("hardware.display_intensity [%v] must be 0..15", c.Hardware.DisplayIntensity)
	}
	if c.Hardware.ADCChannel < 0 || c.Hardware.ADCChannel > 3 {
		return invalid("hardware.adc_channel [%v] must be 0..3", c.Hardware.ADCChannel)
	}
	return nil
}

func (c CalibrationConfig) Validate() error {
	if c.FilterAlpha < 0 || c.FilterAlpha > 64 {
		return invalid("calibration.filter_alpha [%v] must be 0..64", c.FilterAlpha)
	}
	if c.MvPerStep <= 0 {
		return invalid("calibration.mv_per_step must be positive")
	}
	if c.VoltMax <= c.VoltMin {
		return invalid("calibration volt range [%v, %v]", c.VoltMin, c.VoltMax)
	}
	if c.MampMax <= c.MampMin {
		return invalid("calibration mamp range [%v, %v]", c.MampMin, c.MampMax)
	}
	if c.SpeedMax < c.SpeedMin {
		return invalid("calibration speed range [%v, %v]", c.SpeedMin, c.SpeedMax)
	}
	return nil
}

// DefaultCalibration returns the calibration of a stock LSI anemometer on an ADS1115.
func DefaultCalibration() CalibrationConfig {
	return CalibrationConfig{
		MvPerStep:     env.ADS1115MvStep,
		VoltMin:       env.LSIMinVolt,
		VoltMax:       env.LSIMaxVolt,
		MampMin:       env.LSIMinMamp,
		MampMax:       env.LSIMaxMamp,
		SpeedGain:     env.LSISpeedGain,
		SpeedZeroMamp: env.LSISpeedZeroMamp,
		SpeedMin:      env.LSIMinSpeed,
		SpeedMax:      env.LSIMaxSpeed,
		FilterAlpha:   env.EMAFilterAlpha,
		FaultBelow:    env.LoopFaultBelowMamp,
		FaultAbove:    env.LoopFaultAboveMamp,
	}
}

// Dump writes the effective configuration as yaml, with the write key masked.
func Dump(w io.Writer, c *Config) error {
	masked := *c
	if masked.Telemetry.WriteKey != "" {
		masked.Telemetry.WriteKey = "********"
	}
	if masked.Telemetry.MQTTPassword != "" {
		masked.Telemetry.MQTTPassword = "********"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return err
	}
	return enc.Close()
}
