package config

import "sort"

// Presets are named scenarios. Units are dimensionless with G = 1.
var Presets = map[string]*Config{
	// Equal masses with a slight tilt out of the plane. Chaotic over the
	// full span.
	"chaos": {
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{-1, 0, 0.1}, Velocity: []float64{0, 0.3, 0}},
			{Mass: 1, Position: []float64{1, 0, -0.1}, Velocity: []float64{0, -0.3, 0}},
			{Mass: 1, Position: []float64{0, 1, 0}, Velocity: []float64{0, 0, 0.1}},
		},
		TStart: 0, TEnd: 120, Samples: DefaultSamples, G: 1,
		Solver: SolverConfig{RTol: 1e-9, ATol: 1e-9},
	},
	// Chenciner-Montgomery periodic orbit, period about 6.3259.
	"figure8": {
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{0.97000436, -0.24308753, 0}, Velocity: []float64{0.4662036850, 0.4323657300, 0}},
			{Mass: 1, Position: []float64{-0.97000436, 0.24308753, 0}, Velocity: []float64{0.4662036850, 0.4323657300, 0}},
			{Mass: 1, Position: []float64{0, 0, 0}, Velocity: []float64{-0.93240737, -0.86473146, 0}},
		},
		TStart: 0, TEnd: 20, Samples: 1000, G: 1,
		Solver: SolverConfig{RTol: 1e-9, ATol: 1e-9},
	},
	// Equilateral triangle rotating rigidly about its centre.
	"lagrange": {
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{0, 1, 0}, Velocity: []float64{-0.7598356857, 0, 0}},
			{Mass: 1, Position: []float64{-0.8660254038, -0.5, 0}, Velocity: []float64{0.3799178428, -0.6580370064, 0}},
			{Mass: 1, Position: []float64{0.8660254038, -0.5, 0}, Velocity: []float64{0.3799178428, 0.6580370064, 0}},
		},
		TStart: 0, TEnd: 20, Samples: 1000, G: 1,
		Solver: SolverConfig{RTol: 1e-9, ATol: 1e-9},
	},
	// Two equal masses on a circular orbit, period 2*pi/sqrt(2).
	"binary": {
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{-0.5, 0, 0}, Velocity: []float64{0, -0.7071067812, 0}},
			{Mass: 1, Position: []float64{0.5, 0, 0}, Velocity: []float64{0, 0.7071067812, 0}},
		},
		TStart: 0, TEnd: 20, Samples: 1000, G: 1,
		Solver: SolverConfig{RTol: 1e-9, ATol: 1e-9},
	},
	// Three masses released from rest. Stops well before the first close
	// encounter.
	"collapse": {
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{0, 0, 0}, Velocity: []float64{0, 0, 0}},
			{Mass: 1, Position: []float64{1, 0, 0}, Velocity: []float64{0, 0, 0}},
			{Mass: 1, Position: []float64{0, 1, 0}, Velocity: []float64{0, 0, 0}},
		},
		TStart: 0, TEnd: 0.5, Samples: 101, G: 1,
		Solver: SolverConfig{RTol: 1e-9, ATol: 1e-9},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	out.Name = name
	return out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
