package sim

import (
	"fmt"
	"math"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{dynamo.ErrInvalidInput}, args...)...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks a problem and configuration without doing any
// integration work. Every error wraps dynamo.ErrInvalidInput.
func Validate(p Problem, cfg Config) error {
	if len(p.Bodies) == 0 {
		return invalid("no bodies")
	}
	for i, b := range p.Bodies {
		if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
			return invalid("body %d: mass must be positive and finite, got %g", i, b.Mass)
		}
		for _, v := range []float64{b.Position.X, b.Position.Y, b.Position.Z, b.Velocity.X, b.Velocity.Y, b.Velocity.Z} {
			if !finite(v) {
				return invalid("body %d: non-finite initial condition", i)
			}
		}
	}

	if !finite(p.TStart) || !finite(p.TEnd) {
		return invalid("time span must be finite")
	}
	if p.TEnd <= p.TStart {
		return invalid("t_end (%g) must be greater than t_start (%g)", p.TEnd, p.TStart)
	}

	if len(p.Grid) == 0 {
		return invalid("time grid is empty")
	}
	for k, tm := range p.Grid {
		if !finite(tm) || tm < p.TStart || tm > p.TEnd {
			return invalid("grid time %g at index %d outside [%g, %g]", tm, k, p.TStart, p.TEnd)
		}
		if k > 0 && tm <= p.Grid[k-1] {
			return invalid("grid not strictly increasing at index %d (%g after %g)", k, tm, p.Grid[k-1])
		}
	}

	if cfg.MaxSamples > 0 {
		if size := ExpectedSize(len(p.Bodies), len(p.Grid)); size.Samples > cfg.MaxSamples {
			return invalid("trajectory would hold %d samples, limit is %d", size.Samples, cfg.MaxSamples)
		}
	}

	return validateConfig(cfg)
}

func validateConfig(cfg Config) error {
	if cfg.Accel == nil {
		if !(cfg.G > 0) || math.IsInf(cfg.G, 0) {
			return invalid("gravitational constant must be positive, got %g", cfg.G)
		}
		switch cfg.Field {
		case FieldDirect, "":
		case FieldBarnesHut:
			if !(cfg.Theta >= 0) {
				return invalid("barnes-hut theta must be non-negative, got %g", cfg.Theta)
			}
		default:
			return invalid("unknown field %q", cfg.Field)
		}
	}
	if !(cfg.Softening >= 0) {
		return invalid("softening must be non-negative, got %g", cfg.Softening)
	}
	if !(cfg.Tolerances.Abs > 0) {
		return invalid("absolute tolerance must be positive, got %g", cfg.Tolerances.Abs)
	}
	if !(cfg.Tolerances.Rel >= 0) {
		return invalid("relative tolerance must be non-negative, got %g", cfg.Tolerances.Rel)
	}
	if !(cfg.MaxStep >= 0) || !(cfg.MinStep >= 0) || !(cfg.InitialStep >= 0) {
		return invalid("step sizes must be non-negative")
	}
	if cfg.MaxStep > 0 && cfg.MinStep > cfg.MaxStep {
		return invalid("min step %g exceeds max step %g", cfg.MinStep, cfg.MaxStep)
	}
	if cfg.MaxSteps < 0 {
		return invalid("max steps must be non-negative, got %d", cfg.MaxSteps)
	}
	return nil
}
