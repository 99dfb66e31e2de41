package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinsim/internal/analysis"
	"github.com/san-kum/kinsim/internal/plot"
	"github.com/san-kum/kinsim/internal/sim"
	"github.com/san-kum/kinsim/internal/storage"
	"github.com/san-kum/kinsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tCREATED\tSPECIES\tSPAN\tMETHOD\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t[%g, %g]\t%s\t%s\n",
			run.ID,
			run.Scenario,
			humanize.Time(run.Timestamp),
			len(run.Species),
			run.Span[0], run.Span[1],
			run.Stats.Method,
			humanize.Comma(int64(run.Stats.Steps)),
		)
	}
	return w.Flush()
}

// loadRun reads a stored trajectory, narrowed to --species when given.
func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(species) > 0 {
		if traj, err = traj.Select(species...); err != nil {
			return nil, nil, err
		}
	}
	return meta, traj, nil
}

// plotOptions takes the units stored with the run unless the user set
// them on the command line.
func plotOptions(cmd *cobra.Command, meta *storage.RunMetadata) plot.Options {
	opts := plot.Options{
		Title:             meta.Scenario,
		TimeUnit:          meta.TimeUnit,
		ConcentrationUnit: meta.ConcentrationUnit,
	}
	if cmd.Flags().Changed("time-unit") {
		opts.TimeUnit = timeUnit
	}
	if cmd.Flags().Changed("concentration-unit") {
		opts.ConcentrationUnit = concUnit
	}
	return opts
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n\n", viz.Title.Render(meta.Scenario), viz.Subtle.Render(meta.ID))
	fmt.Println(plot.ASCII(traj, 70, 15, plotOptions(cmd, meta)))
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	format, err := plot.FormatFromPath(outputFile)
	if err != nil {
		return err
	}

	opts := plotOptions(cmd, meta)
	opts.Width, opts.Height = chartW, chartH
	if chartTitle != "" {
		opts.Title = chartTitle
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := plot.Render(f, traj, format, opts); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s chart to %s\n", format, outputFile)
	return nil
}

// output opens --output, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outputFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outputFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	_, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, traj); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, traj); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s\n", viz.Title.Render(meta.Scenario), viz.Subtle.Render(meta.ID))
	printStats(meta.Stats)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tMIN\tMAX\tFINAL\tPEAKS\tOSCILLATES\tPERIOD")
	for _, name := range traj.Species {
		series, _ := traj.Series(name)
		lo, hi := series[0], series[0]
		for _, v := range series {
			lo = min(lo, v)
			hi = max(hi, v)
		}

		minProm := prominence
		if minProm <= 0 {
			minProm = 0.01 * (hi - lo)
		}
		peaks := analysis.Peaks(series, traj.Times, minProm)

		oscillates, period := "no", "-"
		if analysis.Oscillates(series, 2, minProm) {
			oscillates = "yes"
			if p := analysis.DominantPeriod(series, traj.Times); p > 0 {
				period = fmt.Sprintf("%.4g", p)
			}
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%d\t%s\t%s\n", name, lo, hi, series[len(series)-1], len(peaks), oscillates, period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(conserve) > 0 {
		initial, drift, err := conservedDrift(traj, conserve)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(viz.MetricLabel.Render("moiety") + viz.MetricValue.Render(fmt.Sprintf("%.6g", initial)))
		fmt.Println(viz.MetricLabel.Render("max drift") + viz.MetricValue.Render(fmt.Sprintf("%.3g", drift)))
	}

	if xSpecies == "" && ySpecies == "" {
		return nil
	}
	if xSpecies == "" || ySpecies == "" {
		return fmt.Errorf("phase portrait needs both --x and --y")
	}
	portrait, err := analysis.PhasePortrait(traj, xSpecies, ySpecies)
	if err != nil {
		return err
	}
	fmt.Printf("\nphase portrait %s vs %s\n", ySpecies, xSpecies)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))
	return nil
}

// conservedDrift evaluates the weighted total given as species=weight
// pairs and returns its starting value and largest deviation.
func conservedDrift(traj *sim.Trajectory, weights map[string]string) (float64, float64, error) {
	parsed := make(map[string]float64, len(weights))
	for name, raw := range weights {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("--conserve %s=%s: %w", name, raw, err)
		}
		parsed[name] = v
	}
	totals, err := analysis.MassBalance(traj, parsed)
	if err != nil {
		return 0, 0, err
	}
	if len(totals) == 0 {
		return 0, 0, nil
	}
	return totals[0], analysis.MaxDrift(totals), nil
}
