package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rbrnka/three-body-problem/internal/analysis"
	"github.com/rbrnka/three-body-problem/internal/config"
	"github.com/rbrnka/three-body-problem/internal/experiment"
	"github.com/rbrnka/three-body-problem/internal/export"
	"github.com/rbrnka/three-body-problem/internal/metrics"
	"github.com/rbrnka/three-body-problem/internal/physics"
	"github.com/rbrnka/three-body-problem/internal/sim"
	"github.com/rbrnka/three-body-problem/internal/storage"
	"github.com/rbrnka/three-body-problem/internal/viz"
)

// loadScenario resolves the preset argument, then the config file, then any
// explicitly set flags, each overriding the previous.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.TEnd = duration
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("rtol") {
		cfg.Solver.RTol = rtol
	}
	if flags.Changed("atol") {
		cfg.Solver.ATol = atol
	}
	if flags.Changed("g") {
		cfg.G = gravity
	}
	if flags.Changed("softening") {
		cfg.Softening = softening
	}
	if flags.Changed("max-step") {
		cfg.Solver.MaxStep = maxStep
	}
	if flags.Changed("field") {
		cfg.Field = fieldKind
	}
	if flags.Changed("theta") {
		cfg.Theta = theta
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", exp.Problem())
	res, runErr := exp.Run(context.Background())
	if res == nil {
		return runErr
	}

	tr := res.Trajectory
	runID := "(not saved)"
	if !noSave {
		meta := metadataFor(cfg, exp.SimConfig(), res.Metrics, runErr)
		runID, err = storage.New(dataDir).Save(meta, tr)
		if err != nil {
			return err
		}
	}

	rows := []viz.Row{
		{Label: "run id", Value: runID},
		{Label: "status", Value: viz.Status(runErr)},
		{Label: "elapsed", Value: res.Elapsed.String()},
		{Label: "samples", Value: strconv.Itoa(tr.Len())},
		{Label: "steps", Value: fmt.Sprintf("%d accepted, %d rejected", tr.Stats.Steps, tr.Stats.Rejected)},
		{Label: "evaluations", Value: strconv.Itoa(tr.Stats.Evaluations)},
	}
	rows = append(rows, metricRows(res.Metrics)...)
	title := cfg.Name
	if title == "" {
		title = "run"
	}
	fmt.Println(viz.Summary(title, rows))

	if tr.Len() > 1 {
		field := physics.Field{G: exp.SimConfig().G, Softening: exp.SimConfig().Softening}
		fmt.Println(viz.Subtle.Render("energy error ") + viz.SparklineChart(metrics.EnergyError(tr, field), 60))
	}

	return runErr
}

func metadataFor(cfg *config.Config, sc sim.Config, m map[string]float64, runErr error) storage.RunMetadata {
	meta := storage.RunMetadata{
		Preset:    cfg.Name,
		TStart:    cfg.TStart,
		TEnd:      cfg.TEnd,
		G:         sc.G,
		Softening: sc.Softening,
		Field:     string(sc.Field),
		RTol:      sc.Tolerances.Rel,
		ATol:      sc.Tolerances.Abs,
		Metrics:   m,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	return meta
}

var metricOrder = []string{"energy_drift", "momentum_drift", "angular_momentum_drift", "min_separation", "containment"}

func metricRows(m map[string]float64) []viz.Row {
	rows := make([]viz.Row, 0, len(m))
	for _, name := range metricOrder {
		if v, ok := m[name]; ok {
			rows = append(rows, viz.Row{Label: name, Value: fmt.Sprintf("%.6g", v)})
		}
	}
	return rows
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tBODIES\tSAMPLES\tSPAN\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t[%g, %g]\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Masses),
			run.Samples,
			run.TStart, run.TEnd,
			status,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	status := viz.StatusOK.Render("ok")
	if meta.Error != "" {
		status = viz.StatusFailed.Render(meta.Error)
	}

	rows := []viz.Row{
		{Label: "preset", Value: meta.Preset},
		{Label: "created", Value: meta.Timestamp.Format("2006-01-02 15:04:05")},
		{Label: "status", Value: status},
		{Label: "masses", Value: fmt.Sprint(meta.Masses)},
		{Label: "span", Value: fmt.Sprintf("[%g, %g]", meta.TStart, meta.TEnd)},
		{Label: "samples", Value: strconv.Itoa(meta.Samples)},
		{Label: "G", Value: fmt.Sprintf("%g", meta.G)},
		{Label: "softening", Value: fmt.Sprintf("%g", meta.Softening)},
		{Label: "field", Value: meta.Field},
		{Label: "tolerances", Value: fmt.Sprintf("rtol %g, atol %g", meta.RTol, meta.ATol)},
		{Label: "steps", Value: fmt.Sprintf("%d accepted, %d rejected", meta.Stats.Steps, meta.Stats.Rejected)},
		{Label: "evaluations", Value: strconv.Itoa(meta.Stats.Evaluations)},
		{Label: "last step", Value: fmt.Sprintf("%g", meta.Stats.LastStep)},
	}
	rows = append(rows, metricRows(meta.Metrics)...)
	fmt.Println(viz.Summary("run "+meta.ID, rows))
	return nil
}

// component extracts one coordinate of a body track as a series.
func component(tr *sim.Trajectory, b int, axis string) ([]float64, error) {
	if b < 0 || b >= tr.NumBodies() {
		return nil, fmt.Errorf("body %d out of range (run has %d bodies)", b, tr.NumBodies())
	}

	track := tr.Bodies[b]
	out := make([]float64, tr.Len())
	for k := range out {
		p, v := track.Positions[k], track.Velocities[k]
		switch axis {
		case "x":
			out[k] = p.X
		case "y":
			out[k] = p.Y
		case "z":
			out[k] = p.Z
		case "vx":
			out[k] = v.X
		case "vy":
			out[k] = v.Y
		case "vz":
			out[k] = v.Z
		default:
			return nil, fmt.Errorf("unknown axis %q", axis)
		}
	}
	return out, nil
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, tr, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d, t=[%g, %g]\n\n", tr.Len(), tr.Times[0], tr.Times[tr.Len()-1])

	var (
		data    []float64
		caption string
	)
	if plotEnergy {
		data = metrics.EnergyError(tr, physics.Field{G: meta.G, Softening: meta.Softening})
		caption = "relative energy error vs time"
	} else {
		data, err = component(tr, body, axis)
		if err != nil {
			return err
		}
		caption = fmt.Sprintf("body %d %s vs time", body, axis)
	}

	fmt.Println(viz.Plot(data, caption, width, height))
	return nil
}

func orbitRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := analysis.OrbitASCII(tr, analysis.Plane(plane), width, height)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%s plane)", meta.ID, plane)))
	fmt.Print(out)
	return nil
}

func periodRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data, err := component(tr, body, axis)
	if err != nil {
		return err
	}

	period, err := analysis.DominantPeriod(tr.Times, data)
	if err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(data)
	fmt.Println(viz.Plot(ps[:len(ps)/4+1], fmt.Sprintf("power spectrum (body %d %s)", body, axis), width, 12))
	fmt.Println()
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dominant period: %.6g\n", period)
	fmt.Printf("frequency: %.6g\n", 1/period)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tSPAN\tSAMPLES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t[%g, %g]\t%d\n", name, len(p.Bodies), p.TStart, p.TEnd, p.Samples)
	}
	return w.Flush()
}

func initScenario(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if err := config.Save(args[1], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.ExportJSON(os.Stdout, meta, tr)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(f, meta, tr); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", meta.ID, outFile)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	svg, err := export.OrbitSVG(tr, analysis.Plane(plane), width, height)
	if err != nil {
		return err
	}

	if outFile == "" {
		fmt.Print(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", meta.ID, outFile)
	return nil
}

func lyapunovRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	p, err := cfg.Problem()
	if err != nil {
		return err
	}

	fmt.Printf("estimating lyapunov exponent for %s over [%g, %g] in %d windows...\n", cfg.Name, p.TStart, p.TEnd, windows)
	res, err := analysis.Lyapunov(p, cfg.SimConfig(), perturbation, windows)
	if err != nil {
		return err
	}

	fmt.Println(viz.Plot(res.Estimates, "running estimate", width, 10))
	fmt.Println()
	fmt.Printf("largest lyapunov exponent: %.4f\n", res.Exponent)
	if res.Exponent > 0 {
		fmt.Printf("e-folding time: %.4g\n", 1/res.Exponent)
	}
	return nil
}

func batchRun(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	problems := make([]sim.Problem, len(names))
	for i, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		p, err := cfg.Problem()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		problems[i] = p
	}

	simCfg := sim.DefaultConfig()
	results := sim.RunBatch(cmd.Context(), problems, simCfg, workers)

	field := physics.Field{G: simCfg.G}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSAMPLES\tSTEPS\tENERGY DRIFT\tMIN SEP\tSTATUS")
	for i, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		if r.Trajectory == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s\n", names[i], status)
			continue
		}

		tr := r.Trajectory
		m := metrics.Evaluate(tr, metrics.NewEnergyDrift(field, tr.Masses()), metrics.NewMinSeparation())
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3g\t%.4g\t%s\n",
			names[i], tr.Len(), tr.Stats.Steps, m["energy_drift"], m["min_separation"], status)
	}
	return w.Flush()
}
