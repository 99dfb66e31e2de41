package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/kinsim/internal/config"
	"github.com/san-kum/kinsim/internal/integrators"
	"github.com/san-kum/kinsim/internal/plot"
)

var (
	dataDir  string
	logLevel string
	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))

	configFile string
	method     string
	rtol       float64
	atol       float64
	dt         float64
	maxSteps   int
	resolution int
	t1         float64
	noSave     bool
	showPlot   bool

	species    []string
	outputFile string
	chartTitle string
	chartW     int
	chartH     int
	prominence float64
	xSpecies   string
	ySpecies   string
	timeUnit   string
	concUnit   string
	conserve   map[string]string

	sweepReaction int
	sweepScales   []float64
	sweepParallel int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kinsim",
		Short:         "mass-action chemical kinetics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "simulate a preset or a scenario file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", true, "print a terminal chart")
	addUnitFlags(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [preset]",
		Short: "simulate and replay the trajectory in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchScenario,
	}
	addSolverFlags(watchCmd)
	addUnitFlags(watchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "terminal chart of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&species, "species", nil, "species to draw (default all)")
	addUnitFlags(plotCmd)

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render a stored run to PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (.png or .svg)")
	chartCmd.Flags().StringSliceVar(&species, "species", nil, "species to draw (default all)")
	chartCmd.Flags().StringVar(&chartTitle, "title", "", "chart title (default run scenario)")
	chartCmd.Flags().IntVar(&chartW, "width", 1024, "width in pixels")
	chartCmd.Flags().IntVar(&chartH, "height", 600, "height in pixels")
	addUnitFlags(chartCmd)
	_ = chartCmd.MarkFlagRequired("output")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "peaks, periods and ranges of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&prominence, "prominence", 0, "minimum peak prominence (default 1% of range)")
	analyzeCmd.Flags().StringVar(&xSpecies, "x", "", "species on the x axis of a phase portrait")
	analyzeCmd.Flags().StringVar(&ySpecies, "y", "", "species on the y axis of a phase portrait")
	analyzeCmd.Flags().StringToStringVar(&conserve, "conserve", nil, "weighted total to check for drift, e.g. A=1,X=1,Y=1,B=1")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "rerun a scenario with one rate constant scaled",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepReaction, "reaction", 0, "index of the reaction to scale")
	sweepCmd.Flags().Float64SliceVar(&sweepScales, "scale", []float64{0.5, 1, 2}, "rate constant factors")
	sweepCmd.Flags().IntVar(&sweepParallel, "parallel", 0, "runs in flight (default all)")

	rootCmd.AddCommand(runCmd, watchCmd, presetsCmd, listCmd, plotCmd, chartCmd, exportCSVCmd, exportJSONCmd, analyzeCmd, sweepCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "solver: "+strings.Join(integrators.Names(), ", "))
	cmd.Flags().Float64Var(&rtol, "rtol", integrators.DefaultRelTol, "relative tolerance")
	cmd.Flags().Float64Var(&atol, "atol", integrators.DefaultAbsTol, "absolute tolerance")
	cmd.Flags().Float64Var(&dt, "dt", 0, "step for fixed-step solvers (default sample spacing)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget")
	cmd.Flags().IntVar(&resolution, "resolution", config.DefaultResolution, "number of samples")
	cmd.Flags().Float64Var(&t1, "t1", 0, "end time")
}

func addUnitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&timeUnit, "time-unit", plot.DefaultTimeUnit, "time unit on the x axis")
	cmd.Flags().StringVar(&concUnit, "concentration-unit", plot.DefaultConcentrationUnit, "concentration unit on the y axis")
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	return nil
}

// loadScenario resolves the scenario from --config or a preset name and
// applies the flags the user actually set.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var s *config.Scenario
	switch {
	case configFile != "":
		var err error
		s, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	case len(args) == 1:
		s = config.GetPreset(args[0])
		if s == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", args[0], strings.Join(config.ListPresets(), ", "))
		}
	default:
		return nil, fmt.Errorf("name a preset or pass --config (presets: %s)", strings.Join(config.ListPresets(), ", "))
	}
	if s.Name == "" {
		s.Name = "run"
	}

	f := cmd.Flags()
	if f.Changed("method") {
		s.Solver.Method = method
	}
	if f.Changed("rtol") {
		s.Solver.RelTol = rtol
	}
	if f.Changed("atol") {
		s.Solver.AbsTol = atol
	}
	if f.Changed("dt") {
		s.Solver.Dt = dt
	}
	if f.Changed("max-steps") {
		s.Solver.MaxSteps = maxSteps
	}
	if f.Changed("resolution") {
		s.Resolution = resolution
	}
	if f.Changed("t1") {
		s.Span[1] = t1
	}
	if f.Changed("time-unit") {
		s.Units.Time = timeUnit
	}
	if f.Changed("concentration-unit") {
		s.Units.Concentration = concUnit
	}

	logger.Debug("scenario loaded",
		"name", s.Name,
		"reactions", len(s.Reactions),
		"method", s.Solver.Method,
		"span", s.Span,
		"resolution", s.Resolution)
	return s, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tREACTIONS\tMETHOD\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, len(p.Reactions), p.Solver.Method, p.Description)
	}
	return w.Flush()
}
