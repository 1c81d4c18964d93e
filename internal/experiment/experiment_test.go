package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/rbrnka/three-body-problem/internal/config"
	"github.com/rbrnka/three-body-problem/internal/dynamo"
)

func TestRun_Preset(t *testing.T) {
	cfg := config.GetPreset("binary")
	cfg.TEnd = 5
	cfg.Samples = 51

	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Trajectory.Len() != 51 {
		t.Errorf("expected 51 samples, got %d", res.Trajectory.Len())
	}
	if res.Metrics["energy_drift"] > 1e-7 {
		t.Errorf("energy drift too high: %e", res.Metrics["energy_drift"])
	}
	if _, ok := res.Metrics["min_separation"]; !ok {
		t.Error("missing min_separation metric")
	}
}

func TestRun_CollisionKeepsPartialResult(t *testing.T) {
	cfg := config.GetPreset("binary")
	cfg.Bodies[0].Velocity = []float64{0, 0, 0}
	cfg.Bodies[1].Velocity = []float64{0, 0, 0}
	cfg.TEnd = 2
	cfg.Samples = 41

	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	res, err := exp.Run(context.Background())
	if err == nil {
		t.Fatal("expected head-on collision to fail")
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if res == nil || res.Trajectory.Len() == 0 || res.Trajectory.Len() >= 41 {
		t.Errorf("expected a non-empty partial trajectory, got %+v", res)
	}
}

func TestRun_InvalidScenario(t *testing.T) {
	cfg := config.GetPreset("binary")
	cfg.Bodies[0].Mass = -1

	exp, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if !errors.Is(err, dynamo.ErrInvalidInput) || res != nil {
		t.Errorf("expected ErrInvalidInput with no result, got %v / %+v", err, res)
	}

	cfg.Bodies[0].Position = []float64{1}
	if _, err := New(cfg); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for short vector, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	exp, err := New(config.GetPreset("collapse"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
