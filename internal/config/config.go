package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/invlap/internal/analysis"
	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

const (
	DefaultN          = 50
	DefaultNoiseLevel = 1e-3
	DefaultLambdaReg  = 1e-2
	DefaultNumModes   = 300
	DefaultNumSV      = 200
	DefaultDraws      = 5
)

type Config struct {
	Experiment string         `yaml:"experiment"`
	N          int            `yaml:"n"`
	Dim        int            `yaml:"dim"`
	Stencil    string         `yaml:"stencil"`
	Solution   string         `yaml:"solution"`
	NoiseLevel float64        `yaml:"noise_level"`
	LambdaReg  float64        `yaml:"lambda_reg"`
	NumModes   int            `yaml:"num_modes"`
	NumSV      int            `yaml:"num_sv"`
	Seed       int64          `yaml:"seed"`
	Draws      int            `yaml:"draws"`
	Workers    int            `yaml:"workers"`
	Spectral   SpectralConfig `yaml:"spectral"`
	Sweep      RangeConfig    `yaml:"sweep"`
	Lambdas    RangeConfig    `yaml:"lambdas"`
	Boundary   BoundaryConfig `yaml:"boundary"`
}

type SpectralConfig struct {
	Method     string  `yaml:"method"`
	Tol        float64 `yaml:"tol"`
	MaxIter    int     `yaml:"max_iter"`
	Oversample int     `yaml:"oversample"`
	DenseLimit int     `yaml:"dense_limit"`
}

// RangeConfig is a log-spaced range.
type RangeConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
}

type BoundaryConfig struct {
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
}

func DefaultConfig() *Config {
	spectral := analysis.DefaultOptions()
	return &Config{
		Experiment: "inverse",
		N:          DefaultN,
		Dim:        2,
		Stencil:    string(operator.StencilKron),
		Solution:   "sinsin",
		NoiseLevel: DefaultNoiseLevel,
		LambdaReg:  DefaultLambdaReg,
		NumModes:   DefaultNumModes,
		NumSV:      DefaultNumSV,
		Draws:      DefaultDraws,
		Spectral: SpectralConfig{
			Method:     string(spectral.Method),
			Tol:        spectral.Tol,
			MaxIter:    spectral.MaxIter,
			Oversample: spectral.Oversample,
			DenseLimit: spectral.DenseLimit,
		},
		Sweep:    RangeConfig{Min: 1e-6, Max: 1e-2, Points: 8},
		Lambdas:  RangeConfig{Min: 1e-8, Max: 1e4, Points: 13},
		Boundary: BoundaryConfig{Left: 0, Right: 1},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes the file over cfg; keys absent from the file keep their
// current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Size returns the number of unknowns M = N^dim.
func (c *Config) Size() int {
	return int(math.Pow(float64(c.N), float64(c.Dim)))
}

func (c *Config) Grid() (grid.Grid, error) {
	return grid.New(c.N, c.Dim)
}

func (c *Config) SpectralOptions() (analysis.Options, error) {
	method, err := analysis.ParseMethod(c.Spectral.Method)
	if err != nil {
		return analysis.Options{}, err
	}
	opts := analysis.DefaultOptions()
	opts.Method = method
	if c.Spectral.Tol > 0 {
		opts.Tol = c.Spectral.Tol
	}
	if c.Spectral.MaxIter > 0 {
		opts.MaxIter = c.Spectral.MaxIter
	}
	if c.Spectral.Oversample > 0 {
		opts.Oversample = c.Spectral.Oversample
	}
	if c.Spectral.DenseLimit > 0 {
		opts.DenseLimit = c.Spectral.DenseLimit
	}
	return opts, nil
}

// Validate rejects a configuration before any solve is attempted. Rank
// options are only checked for the experiments that use them.
func (c *Config) Validate() error {
	if c.Experiment == "boundary" {
		if c.N < 2 {
			return &numeric.ConfigError{Field: "n", Value: c.N, Reason: "grid resolution must be >= 2"}
		}
	} else if _, err := c.Grid(); err != nil {
		return err
	}
	if _, err := operator.ParseStencil(c.Stencil); err != nil {
		return err
	}
	if _, err := forward.Lookup(c.Solution); err != nil {
		return err
	}
	if _, err := c.SpectralOptions(); err != nil {
		return err
	}
	if c.NoiseLevel < 0 || math.IsNaN(c.NoiseLevel) {
		return &numeric.ConfigError{Field: "noise_level", Value: c.NoiseLevel, Reason: "must be >= 0"}
	}
	if c.LambdaReg < 0 || math.IsNaN(c.LambdaReg) {
		return &numeric.ConfigError{Field: "lambda_reg", Value: c.LambdaReg, Reason: "must be >= 0"}
	}

	m := c.Size()
	switch c.Experiment {
	case "spectrum":
		if c.NumModes < 1 || c.NumModes > m {
			return &numeric.ConfigError{Field: "num_modes", Value: c.NumModes, Reason: "must be in [1, N^dim]"}
		}
	case "conditioning":
		if c.NumSV < 1 || c.NumSV > m {
			return &numeric.ConfigError{Field: "num_sv", Value: c.NumSV, Reason: "must be in [1, N^dim]"}
		}
		if c.Draws < 1 {
			return &numeric.ConfigError{Field: "draws", Value: c.Draws, Reason: "must be >= 1"}
		}
		if err := c.Sweep.validate("sweep"); err != nil {
			return err
		}
	case "lambda-sweep":
		if err := c.Lambdas.validate("lambdas"); err != nil {
			return err
		}
	}
	return nil
}

func (r RangeConfig) validate(field string) error {
	if r.Min <= 0 || r.Max < r.Min {
		return &numeric.ConfigError{Field: field, Value: [2]float64{r.Min, r.Max}, Reason: "need 0 < min <= max"}
	}
	if r.Points < 1 {
		return &numeric.ConfigError{Field: field + ".points", Value: r.Points, Reason: "must be >= 1"}
	}
	return nil
}

// Values returns the log-spaced points of the range.
func (r RangeConfig) Values() []float64 {
	return analysis.LogSpace(r.Min, r.Max, r.Points)
}
