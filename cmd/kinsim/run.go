package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinsim/internal/config"
	"github.com/san-kum/kinsim/internal/plot"
	"github.com/san-kum/kinsim/internal/sim"
	"github.com/san-kum/kinsim/internal/storage"
	"github.com/san-kum/kinsim/internal/sweep"
	"github.com/san-kum/kinsim/internal/viz"
)

func simulate(s *config.Scenario) (*sim.Trajectory, error) {
	traj, err := s.Run(sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Info("simulation finished", "scenario", s.Name, "stats", traj.Stats.String())
	return traj, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	traj, err := simulate(s)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(s.Name))
	printStats(traj.Stats)
	printFinal(traj)

	if showPlot {
		shown := traj
		if len(s.Plot) > 0 {
			if shown, err = traj.Select(s.Plot...); err != nil {
				return err
			}
		}
		fmt.Println()
		fmt.Println(plot.ASCII(shown, 70, 15, s.PlotOptions()))
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runMetadata(s, traj), traj)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun saved: %s\n", runID)
	return nil
}

func runMetadata(s *config.Scenario, traj *sim.Trajectory) storage.RunMetadata {
	meta := storage.RunMetadata{
		Scenario: s.Name,
		Held:     s.Hold,
		Initial:  s.Initial,
		Span:     s.Span,
		RelTol:   s.Solver.RelTol,
		AbsTol:   s.Solver.AbsTol,
		Metrics:  map[string]float64{},

		TimeUnit:          s.Units.Time,
		ConcentrationUnit: s.Units.Concentration,
	}
	if reactions, err := s.BuildReactions(); err == nil {
		for _, r := range reactions {
			meta.Reactions = append(meta.Reactions, r.String())
		}
	}
	for name, v := range traj.Final() {
		meta.Metrics["final_"+name] = v
	}
	return meta
}

func printStats(st sim.Stats) {
	row := func(label, value string) {
		fmt.Println(viz.MetricLabel.Render(label) + viz.MetricValue.Render(value))
	}
	row("method", st.Method)
	row("steps", humanize.Comma(int64(st.Steps)))
	row("rejected", humanize.Comma(int64(st.Rejected)))
	row("rhs evals", humanize.Comma(int64(st.Evaluations)))
	if st.JacobianEvals > 0 {
		row("jacobians", humanize.Comma(int64(st.JacobianEvals)))
	}
}

func printFinal(traj *sim.Trajectory) {
	final := traj.Final()
	names := make([]string, 0, len(final))
	for name := range final {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tFINAL")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, final[name])
	}
	w.Flush()
}

func watchScenario(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	traj, err := simulate(s)
	if err != nil {
		return err
	}
	if len(s.Plot) > 0 {
		if traj, err = traj.Select(s.Plot...); err != nil {
			return err
		}
	}
	return viz.Play(s.Name, traj, s.PlotOptions())
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	reactions, err := s.BuildReactions()
	if err != nil {
		return err
	}
	if sweepReaction < 0 || sweepReaction >= len(reactions) {
		return fmt.Errorf("--reaction %d out of range (scenario has %d reactions)", sweepReaction, len(reactions))
	}

	base := sweep.Base{
		Reactions:  reactions,
		Hold:       s.Hold,
		Initial:    s.Initial,
		Span:       s.Span,
		Resolution: s.Resolution,
		Options:    append(s.Options(), sim.WithLogger(logger)),
		Logger:     logger,
	}
	points := sweep.Scales(sweepReaction, sweepScales...)

	fmt.Printf("%s: scaling %s\n\n", viz.Title.Render(s.Name), reactions[sweepReaction])
	results, err := sweep.Run(cmd.Context(), base, points, sweepParallel)
	if err != nil {
		return err
	}

	columns := s.Plot
	if len(columns) == 0 {
		for _, r := range results {
			if r.Trajectory != nil {
				columns = r.Trajectory.Species
				break
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "POINT\tSTEPS")
	for _, name := range columns {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\n", r.Point, r.Err)
			continue
		}
		final := r.Trajectory.Final()
		fmt.Fprintf(w, "%s\t%s", r.Point, humanize.Comma(int64(r.Trajectory.Stats.Steps)))
		for _, name := range columns {
			fmt.Fprintf(w, "\t%.6g", final[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
