package eph

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables that override the configuration, e.g. EPH_INPUT_ROOT.
const EnvPrefix = "EPH"

// Config holds every setting of a run. Precedence: DefaultConfig < YAML file < environment < command line.
type Config struct {
	InputRoot     string `yaml:"input_root" split_words:"true" validate:"required"`
	InputEncoding string `yaml:"input_encoding" split_words:"true" validate:"oneof=latin1 utf-8"`
	Pattern       string `yaml:"pattern" split_words:"true" validate:"required"`
	OutputRoot    string `yaml:"output_root" split_words:"true" validate:"required"`
	FirstYear     int    `yaml:"first_year" split_words:"true" validate:"gte=2003"`
	LastYear      int    `yaml:"last_year" split_words:"true" validate:"gtefield=FirstYear"`

	Geographies  Geographies `yaml:"geographies" split_words:"true" validate:"min=1"`
	AgeBreaks    []float64   `yaml:"age_breaks" split_words:"true"`
	AgeLabels    []string    `yaml:"age_labels" split_words:"true" validate:"min=1"`
	DecimalComma bool        `yaml:"decimal_comma" split_words:"true"`

	Outputs     []Output `yaml:"outputs" ignored:"true" validate:"min=1,dive"`
	FloatFormat string   `yaml:"float_format" split_words:"true"`
	Workers     int      `yaml:"workers" split_words:"true" validate:"gte=1"`
	Workbook    string   `yaml:"workbook" split_words:"true"`
	ChartFormat string   `yaml:"chart_format" split_words:"true" validate:"oneof=html png"`

	LogLevel  string `yaml:"log_level" split_words:"true" validate:"oneof=trace debug info warn error"`
	LogFormat string `yaml:"log_format" split_words:"true" validate:"oneof=console json"`

	DB DBConfig `yaml:"db"`
}

// Output is one aggregate table: the statistics of Statistic grouped by Keys, written to OutputRoot/Dir/Name.csv.
type Output struct {
	Name      string   `yaml:"name" validate:"required"`
	Dir       string   `yaml:"dir"`
	Keys      []string `yaml:"keys" validate:"min=1"`
	Statistic string   `yaml:"statistic" validate:"oneof=rates income"`
}

// DBConfig is the optional database sink. An empty Dialect disables it.
type DBConfig struct {
	Dialect  string `yaml:"dialect" split_words:"true" validate:"omitempty,oneof=clickhouse postgres"`
	Host     string `yaml:"host" split_words:"true" validate:"required_with=Dialect"`
	Port     int    `yaml:"port" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	Database string `yaml:"database" split_words:"true"`
	Schema   string `yaml:"schema" split_words:"true"`
}

// FileName is the location of the output table under root.
func (o Output) FileName(root string) string {
	return filepath.Join(root, o.Dir, o.Name+".csv")
}

// DefaultOutputs are the tables of the labor-force and income report: overall by area and period, and by
// sex, age bracket and education level by year, period and area.
func DefaultOutputs() []Output {
	const (
		overall = "salidas"
		breaks  = "salidas_punto2_global"
	)

	base := []string{ColGeographyName, ColPeriod}
	byYear := []string{ColYear, ColPeriod, ColGeographyName}

	outs := []Output{
		{Name: "tasas", Dir: overall, Keys: base, Statistic: Rates},
		{Name: "ingresos", Dir: overall, Keys: base, Statistic: Income},
	}

	breakdowns := []struct{ suffix, col string }{
		{"sexo", ColSexName},
		{"grupo_edad", ColAgeBracket},
		{"nivel_educativo", ColEducationName},
	}

	for _, stat := range []struct{ prefix, statistic string }{{"tasas_por_", Rates}, {"ingreso_por_", Income}} {
		for _, b := range breakdowns {
			keys := append(append([]string{}, byYear...), b.col)
			outs = append(outs, Output{Name: stat.prefix + b.suffix, Dir: breaks, Keys: keys, Statistic: stat.statistic})
		}
	}

	return outs
}

func DefaultConfig() *Config {
	return &Config{
		InputRoot:     ".",
		InputEncoding: Latin1,
		Pattern:       FilePattern,
		OutputRoot:    ".",
		FirstYear:     2016,
		LastYear:      2025,
		Geographies:   DefaultGeographies(),
		AgeBreaks:     append([]float64{}, DefaultAgeBreaks...),
		AgeLabels:     append([]string{}, DefaultAgeLabels...),
		Outputs:       DefaultOutputs(),
		Workers:       1,
		ChartFormat:   "html",
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// LoadConfig reads the configuration with ReadConfig and validates it.
func LoadConfig(fileName string) (*Config, error) {
	cfg, e := ReadConfig(fileName)
	if e != nil {
		return nil, e
	}

	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	return cfg, nil
}

// ReadConfig starts from DefaultConfig and applies the YAML file fileName (if not empty) and then the
// environment. The result is not validated, so that callers may override it first.
func ReadConfig(fileName string) (*Config, error) {
	cfg := DefaultConfig()

	if fileName != "" {
		data, e := os.ReadFile(fileName)
		if e != nil {
			return nil, fmt.Errorf("reading config: %w", e)
		}

		// a map in the file replaces the default rather than merging into it
		cfg.Geographies = nil
		if e := yaml.Unmarshal(data, cfg); e != nil {
			return nil, fmt.Errorf("parsing config %s: %w", fileName, e)
		}

		if cfg.Geographies == nil {
			cfg.Geographies = DefaultGeographies()
		}
	}

	if e := envconfig.Process(EnvPrefix, cfg); e != nil {
		return nil, fmt.Errorf("config from environment: %w", e)
	}

	return cfg, nil
}

// Validate checks field constraints and the consistency of the age brackets and outputs.
func (c *Config) Validate() error {
	if e := validator.New().Struct(c); e != nil {
		return fmt.Errorf("invalid config: %w", e)
	}

	if len(c.AgeLabels) != len(c.AgeBreaks)+1 {
		return fmt.Errorf("invalid config: %d age labels for %d age breaks", len(c.AgeLabels), len(c.AgeBreaks))
	}

	if !sort.Float64sAreSorted(c.AgeBreaks) {
		return fmt.Errorf("invalid config: age breaks %v are not increasing", c.AgeBreaks)
	}

	known := append(append([]string{}, Columns...),
		ColGeographyName, ColPeriod, ColSexName, ColAgeBracket, ColEducationName)

	seen := make(map[string]bool)
	for _, o := range c.Outputs {
		if seen[o.Name] {
			return fmt.Errorf("invalid config: duplicate output %s", o.Name)
		}
		seen[o.Name] = true

		for _, k := range o.Keys {
			if !has(k, known) {
				return fmt.Errorf("invalid config: output %s: %w: %s", o.Name, ErrColumnNotFound, k)
			}
		}
	}

	return nil
}

// Years lists the years from FirstYear to LastYear.
func (c *Config) Years() []int {
	var years []int
	for year := c.FirstYear; year <= c.LastYear; year++ {
		years = append(years, year)
	}

	return years
}
