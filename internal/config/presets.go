package config

// Presets are hand-tuned starting points per variant. Gains follow each
// variant's declared order; the tuner sections inherit defaults unless a
// preset overrides them.
var Presets = map[string]map[string]*Config{
	"classical": {
		"nominal": {
			Variant: "classical", Integrator: "rk4", Dt: 0.01, Duration: 10.0,
			Gains:     []float64{8.0, 6.0, 3.0, 3.0, 40.0, 2.0},
			InitState: InitStateConfig{Theta1: 0.05, Theta2: 0.03},
		},
		"aggressive": {
			Variant: "classical", Integrator: "rk4", Dt: 0.005, Duration: 10.0,
			Gains:     []float64{12.0, 9.0, 4.0, 4.0, 120.0, 6.0},
			InitState: InitStateConfig{Theta1: 0.25, Theta2: 0.20},
		},
		"smooth": {
			Variant: "classical", Integrator: "rk4", Dt: 0.01, Duration: 15.0,
			Gains:     []float64{6.0, 5.0, 2.5, 2.5, 25.0, 3.0},
			InitState: InitStateConfig{Theta1: 0.10, Theta2: 0.05},
			Control:   ControllerConfig{Fmax: 150, Beta: 1.0, Switch: "tanh", BoundaryLayer: 0.05, Feedforward: true},
		},
	},
	"adaptive": {
		"nominal": {
			Variant: "adaptive", Integrator: "rk4", Dt: 0.01, Duration: 10.0,
			Gains:     []float64{8.0, 6.0, 3.0, 3.0, 2.0},
			InitState: InitStateConfig{Theta1: 0.10, Theta2: 0.05},
		},
		"degraded": {
			Variant: "adaptive", Integrator: "rk4", Dt: 0.01, Duration: 15.0,
			Gains:     []float64{8.0, 6.0, 3.0, 3.0, 4.0},
			InitState: InitStateConfig{Theta1: 0.15, Theta2: 0.10, Omega1: 0.3},
			Control:   ControllerConfig{Fmax: 150, Beta: 0.78, Switch: "tanh", BoundaryLayer: 0.02, Feedforward: true},
		},
	},
	"sta": {
		"nominal": {
			Variant: "sta", Integrator: "rk4", Dt: 0.005, Duration: 10.0,
			Gains:     []float64{35.0, 18.0, 8.0, 6.0, 3.0, 3.0},
			InitState: InitStateConfig{Theta1: 0.10, Theta2: 0.05},
		},
		"quiet": {
			Variant: "sta", Integrator: "rk4", Dt: 0.005, Duration: 20.0,
			Gains:     []float64{20.0, 10.0, 6.0, 5.0, 2.5, 2.5},
			InitState: InitStateConfig{Theta1: 0.05, Theta2: 0.03},
		},
	},
	"hybrid": {
		"nominal": {
			Variant: "hybrid", Integrator: "rk4", Dt: 0.01, Duration: 10.0,
			Gains:     []float64{8.0, 3.0, 6.0, 3.0},
			InitState: InitStateConfig{Theta1: 0.10, Theta2: 0.05},
		},
		"recover": {
			Variant: "hybrid", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			Gains:     []float64{10.0, 4.0, 8.0, 4.0},
			InitState: InitStateConfig{Pos: 0.5, Theta1: 0.30, Theta2: 0.25, Omega1: 0.8, Omega2: 0.6},
		},
	},
}

func GetPreset(variant, preset string) *Config {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	cfg, ok := variantPresets[preset]
	if !ok {
		return nil
	}
	out := *cfg
	if out.Control.Fmax == 0 {
		out.Control = DefaultConfig().Control
	}
	if out.Tuner.SwarmSize == 0 {
		out.Tuner = DefaultConfig().Tuner
	}
	return &out
}

func ListPresets(variant string) []string {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variantPresets))
	for name := range variantPresets {
		names = append(names, name)
	}
	return names
}
