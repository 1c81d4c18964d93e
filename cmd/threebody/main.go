package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultDataDir = ".threebody"

var (
	dataDir string

	// run / lyapunov
	configFile   string
	duration     float64
	samples      int
	rtol         float64
	atol         float64
	gravity      float64
	softening    float64
	maxStep      float64
	fieldKind    string
	theta        float64
	noSave       bool
	windows      int
	perturbation float64

	// plot / orbit / period
	body       int
	axis       string
	plotEnergy bool
	plane      string
	width      int
	height     int

	// export-json
	outFile string

	// batch
	workers int
)

// main loads an optional .env, registers the commands and runs the CLI.
// THREEBODY_DATA overrides the default data directory.
func main() {
	_ = godotenv.Load()

	defaultData := defaultDataDir
	if v := os.Getenv("THREEBODY_DATA"); v != "" {
		defaultData = v
	}

	rootCmd := &cobra.Command{
		Use:          "threebody",
		Short:        "gravitational three-body trajectory engine",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation from a preset or config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body coordinate or the energy error over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&body, "body", 0, "body index")
	plotCmd.Flags().StringVar(&axis, "axis", "x", "coordinate: x, y, z, vx, vy or vz")
	plotCmd.Flags().BoolVar(&plotEnergy, "energy", false, "plot relative energy error instead")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 12, "plot height")

	orbitCmd := &cobra.Command{
		Use:   "orbit [run_id]",
		Short: "draw all orbits projected onto a plane",
		Args:  cobra.ExactArgs(1),
		RunE:  orbitRun,
	}
	orbitCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane: xy, xz or yz")
	orbitCmd.Flags().IntVar(&width, "width", 80, "canvas width")
	orbitCmd.Flags().IntVar(&height, "height", 30, "canvas height")

	periodCmd := &cobra.Command{
		Use:   "period [run_id]",
		Short: "dominant period of a body coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  periodRun,
	}
	periodCmd.Flags().IntVar(&body, "body", 0, "body index")
	periodCmd.Flags().StringVar(&axis, "axis", "x", "coordinate: x, y, z, vx, vy or vz")
	periodCmd.Flags().IntVar(&width, "width", 80, "plot width")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [preset] [file]",
		Short: "write a preset to a YAML scenario file",
		Args:  cobra.ExactArgs(2),
		RunE:  initScenario,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export projected orbits to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane: xy, xz or yz")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 600, "image height")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [preset]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lyapunovRun,
	}
	addScenarioFlags(lyapunovCmd)
	lyapunovCmd.Flags().IntVar(&windows, "windows", 40, "renormalisation windows")
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation")
	lyapunovCmd.Flags().IntVar(&width, "width", 80, "plot width")

	batchCmd := &cobra.Command{
		Use:   "batch [preset...]",
		Short: "run several presets concurrently (all presets by default)",
		RunE:  batchRun,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default: number of CPUs)")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, orbitCmd, periodCmd, presetsCmd, initCmd, exportJSONCmd, exportSVGCmd, lyapunovCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().Float64Var(&duration, "time", 0, "end time")
	cmd.Flags().IntVar(&samples, "samples", 0, "number of output samples")
	cmd.Flags().Float64Var(&rtol, "rtol", 0, "relative tolerance")
	cmd.Flags().Float64Var(&atol, "atol", 0, "absolute tolerance")
	cmd.Flags().Float64Var(&gravity, "g", 0, "gravitational constant")
	cmd.Flags().Float64Var(&softening, "softening", 0, "Plummer softening length")
	cmd.Flags().Float64Var(&maxStep, "max-step", 0, "largest solver step")
	cmd.Flags().StringVar(&fieldKind, "field", "", "force model: direct or barneshut")
	cmd.Flags().Float64Var(&theta, "theta", 0, "Barnes-Hut opening angle")
}
