package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"dipctl/internal/dynamo"
	"dipctl/internal/pso"
	"dipctl/internal/smc"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultFmax     = 150.0
	DefaultBeta     = 1.0
)

type Config struct {
	Variant    string  `yaml:"variant"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Seed       int64   `yaml:"seed"`

	Gains     []float64        `yaml:"gains"`
	InitState InitStateConfig  `yaml:"init_state"`
	Control   ControllerConfig `yaml:"controller"`
	Tuner     TunerConfig      `yaml:"tuner"`
}

type InitStateConfig struct {
	Pos    float64 `yaml:"pos"`
	Theta1 float64 `yaml:"theta1"`
	Theta2 float64 `yaml:"theta2"`
	Vel    float64 `yaml:"vel"`
	Omega1 float64 `yaml:"omega1"`
	Omega2 float64 `yaml:"omega2"`
}

type ControllerConfig struct {
	Fmax          float64 `yaml:"fmax"`
	Beta          float64 `yaml:"beta"`
	Switch        string  `yaml:"switch"`
	BoundaryLayer float64 `yaml:"boundary_layer"`
	Feedforward   bool    `yaml:"feedforward"`
}

type TunerConfig struct {
	SwarmSize         int       `yaml:"swarm_size"`
	MaxIterations     int       `yaml:"max_iterations"`
	Inertia           float64   `yaml:"inertia"`
	Cognitive         float64   `yaml:"cognitive"`
	Social            float64   `yaml:"social"`
	ConvergenceEps    float64   `yaml:"convergence_eps"`
	ConvergenceWindow int       `yaml:"convergence_window"`
	TimeoutSeconds    float64   `yaml:"timeout_seconds"`
	Workers           int       `yaml:"workers"`
	BoundsLow         []float64 `yaml:"bounds_low"`
	BoundsHigh        []float64 `yaml:"bounds_high"`

	Robust          bool    `yaml:"robust"`
	NominalWeight   float64 `yaml:"nominal_weight"`
	ModerateWeight  float64 `yaml:"moderate_weight"`
	LargeWeight     float64 `yaml:"large_weight"`
	StabilityWeight float64 `yaml:"stability_weight"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant:    string(smc.VariantClassical),
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		InitState:  InitStateConfig{Theta1: 0.1, Theta2: 0.05},
		Control: ControllerConfig{
			Fmax:          DefaultFmax,
			Beta:          DefaultBeta,
			Switch:        "tanh",
			BoundaryLayer: 0.02,
			Feedforward:   true,
		},
		Tuner: TunerConfig{
			SwarmSize:         40,
			MaxIterations:     200,
			Inertia:           0.7,
			Cognitive:         1.5,
			Social:            1.5,
			ConvergenceEps:    1e-6,
			ConvergenceWindow: 20,
			Workers:           0,
			NominalWeight:     0.5,
			ModerateWeight:    0.3,
			LargeWeight:       0.2,
			StabilityWeight:   0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	variant := smc.Variant(c.Variant)
	if !variant.Valid() {
		return fmt.Errorf("unknown variant %q", c.Variant)
	}
	if c.Dt <= 0 || c.Duration <= 0 {
		return fmt.Errorf("dt and duration must be positive, got dt=%v duration=%v", c.Dt, c.Duration)
	}
	if c.Control.Fmax <= 0 {
		return fmt.Errorf("fmax must be positive, got %v", c.Control.Fmax)
	}
	if c.Control.Beta <= 0 {
		return fmt.Errorf("beta must be positive, got %v", c.Control.Beta)
	}
	switch c.Control.Switch {
	case "", "tanh", "linear":
	default:
		return fmt.Errorf("unknown switching function %q", c.Control.Switch)
	}
	if len(c.Gains) > 0 {
		if err := smc.Validate(variant, c.Gains, c.GainBounds()); err != nil {
			return err
		}
	}
	return nil
}

// GainBounds returns the search box for the configured variant, taking the
// tuner's explicit bounds when both sides are present and well-formed.
func (c *Config) GainBounds() smc.Bounds {
	n := smc.Variant(c.Variant).GainCount()
	if len(c.Tuner.BoundsLow) == n && len(c.Tuner.BoundsHigh) == n {
		return smc.Bounds{Low: c.Tuner.BoundsLow, High: c.Tuner.BoundsHigh}
	}
	return smc.DefaultBounds(smc.Variant(c.Variant))
}

func (c *Config) GetInitState() dynamo.State {
	return dynamo.State{
		c.InitState.Pos, c.InitState.Theta1, c.InitState.Theta2,
		c.InitState.Vel, c.InitState.Omega1, c.InitState.Omega2,
	}
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Seed:          c.Seed,
		ValidateState: true,
	}
}

// ControlOptions maps the yaml controller section onto the law options. The
// model provider is attached by the caller so the config layer stays free of
// plant construction.
func (c *Config) ControlOptions(model smc.ModelProvider) smc.Options {
	opt := smc.DefaultOptions()
	opt.Fmax = c.Control.Fmax
	opt.Dt = c.Dt
	opt.Beta = c.Control.Beta
	if c.Control.BoundaryLayer > 0 {
		opt.BoundaryLayer = c.Control.BoundaryLayer
	}
	if c.Control.Switch == "linear" {
		opt.Switch = smc.SwitchLinear
	}
	if c.Control.Feedforward {
		opt.Model = model
	}
	return opt
}

func (c *Config) TunerConfig() pso.Config {
	t := c.Tuner
	cfg := pso.DefaultConfig(c.GainBounds())
	if t.SwarmSize > 0 {
		cfg.SwarmSize = t.SwarmSize
	}
	if t.MaxIterations > 0 {
		cfg.MaxIterations = t.MaxIterations
	}
	if t.Inertia > 0 {
		cfg.Inertia = t.Inertia
	}
	if t.Cognitive > 0 {
		cfg.Cognitive = t.Cognitive
	}
	if t.Social > 0 {
		cfg.Social = t.Social
	}
	if t.ConvergenceEps > 0 {
		cfg.ConvergenceEps = t.ConvergenceEps
	}
	cfg.ConvergenceWindow = t.ConvergenceWindow
	if t.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(t.TimeoutSeconds * float64(time.Second))
	}
	cfg.Workers = t.Workers
	cfg.Seed = c.Seed
	return cfg
}

// Scenarios returns the robust-mode rollout set, or a single nominal
// scenario built from the configured initial state when robust is off.
func (c *Config) Scenarios() []pso.Scenario {
	if !c.Tuner.Robust {
		return nil
	}
	return pso.DefaultScenarios(c.Tuner.NominalWeight, c.Tuner.ModerateWeight, c.Tuner.LargeWeight)
}
