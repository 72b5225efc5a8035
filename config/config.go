// Package config holds the settings of a tellersim invocation and loads them
// from defaults, a YAML file, a .env file, the environment, and flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sarchlab/tellersim/variate"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TELLERSIM"

// DefaultEnvFile is the .env file read when none is named.
const DefaultEnvFile = ".env"

// ErrInvalidConfig is returned when settings cannot describe a run.
var ErrInvalidConfig = errors.New("invalid config")

// Config is everything a run or a set of replications needs.
type Config struct {
	Customers    int            `mapstructure:"customers" yaml:"customers"`
	Seed         *int64         `mapstructure:"seed" yaml:"seed,omitempty"`
	Interarrival variate.Bounds `mapstructure:"interarrival" yaml:"interarrival"`
	Service      variate.Bounds `mapstructure:"service" yaml:"service"`
	Replications int            `mapstructure:"replications" yaml:"replications"`
	Verbose      bool           `mapstructure:"verbose" yaml:"verbose"`
	Output       Output         `mapstructure:"output" yaml:"output"`
	Monitor      Monitor        `mapstructure:"monitor" yaml:"monitor"`
}

// Output selects the files a run writes.
type Output struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	CSV     bool   `mapstructure:"csv" yaml:"csv"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
	Charts  bool   `mapstructure:"charts" yaml:"charts"`
	Record  bool   `mapstructure:"record" yaml:"record"`
	Trace   bool   `mapstructure:"trace" yaml:"trace"`
}

// Monitor configures the HTTP monitor.
type Monitor struct {
	Enabled     bool `mapstructure:"enabled" yaml:"enabled"`
	Port        int  `mapstructure:"port" yaml:"port"`
	OpenBrowser bool `mapstructure:"open_browser" yaml:"open_browser"`
}

// Default returns the settings of a plain run: 500 customers, interarrival
// times in [1, 8] and service times in [1, 6] minutes.
func Default() Config {
	return Config{
		Customers:    500,
		Interarrival: variate.DefaultInterarrival,
		Service:      variate.DefaultService,
		Replications: 10,
		Output: Output{
			Dir:     "data",
			CSV:     true,
			Metrics: true,
			Charts:  true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("customers", d.Customers)
	v.SetDefault("interarrival.min", d.Interarrival.Min)
	v.SetDefault("interarrival.max", d.Interarrival.Max)
	v.SetDefault("service.min", d.Service.Min)
	v.SetDefault("service.max", d.Service.Max)
	v.SetDefault("replications", d.Replications)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.csv", d.Output.CSV)
	v.SetDefault("output.metrics", d.Output.Metrics)
	v.SetDefault("output.charts", d.Output.Charts)
	v.SetDefault("output.record", d.Output.Record)
	v.SetDefault("output.trace", d.Output.Trace)
	v.SetDefault("monitor.enabled", d.Monitor.Enabled)
	v.SetDefault("monitor.port", d.Monitor.Port)
	v.SetDefault("monitor.open_browser", d.Monitor.OpenBrowser)
}

// LoadEnvFile exports the variables of a .env file into the process
// environment. Variables already set are kept. A missing file is an error
// only if required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		path = DefaultEnvFile
	}

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}

	return nil
}

// ReadFile merges a YAML config file into v.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// Load resolves the settings held by v, with the environment layered on top
// of defaults and any config file, and validates them.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("seed"); err != nil {
		return Config{}, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Customers <= 0 {
		return fmt.Errorf("%w: customers must be positive, got %d",
			ErrInvalidConfig, c.Customers)
	}

	if err := c.Interarrival.Validate(); err != nil {
		return fmt.Errorf("%w: interarrival: %w", ErrInvalidConfig, err)
	}

	if err := c.Service.Validate(); err != nil {
		return fmt.Errorf("%w: service: %w", ErrInvalidConfig, err)
	}

	if c.Replications <= 0 {
		return fmt.Errorf("%w: replications must be positive, got %d",
			ErrInvalidConfig, c.Replications)
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		return fmt.Errorf("%w: monitor port %d out of range",
			ErrInvalidConfig, c.Monitor.Port)
	}

	return nil
}

// Seeds returns the seeds of n replications. They count up from the
// configured seed, or from the given fallback if no seed is configured.
func (c Config) Seeds(n int, fallback int64) []int64 {
	base := fallback
	if c.Seed != nil {
		base = *c.Seed
	}

	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = base + int64(i)
	}

	return seeds
}
