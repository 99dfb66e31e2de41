// Package sweep runs one network under many rate-constant settings.
package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kinsim/internal/kinetics"
	"github.com/san-kum/kinsim/internal/sim"
)

// Base is the experiment every point starts from.
type Base struct {
	Reactions  []*kinetics.Reaction
	Hold       []string
	Initial    map[string]float64
	Span       [2]float64
	Resolution int
	Options    []sim.Option
	Logger     *slog.Logger
}

// Point multiplies the forward rate constant of reaction i by Scale[i].
// Reactions without an entry keep their rate.
type Point struct {
	Scale map[int]float64
}

func (p Point) String() string {
	idx := make([]int, 0, len(p.Scale))
	for i := range p.Scale {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	s := ""
	for n, i := range idx {
		if n > 0 {
			s += " "
		}
		s += fmt.Sprintf("r%d*%g", i, p.Scale[i])
	}
	if s == "" {
		return "base"
	}
	return s
}

// Result is one point's outcome. A solver failure is reported in Err and
// does not stop the other points.
type Result struct {
	Point      Point
	Trajectory *sim.Trajectory
	Err        error
}

// Run simulates every point with at most limit runs in flight (limit <= 0
// means unbounded). Results keep the order of points. Configuration
// errors in any point abort before anything runs; cancelling ctx stops
// new runs from starting but never interrupts one in progress.
func Run(ctx context.Context, base Base, points []Point, limit int) ([]Result, error) {
	logger := base.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	networks := make([]*kinetics.Network, len(points))
	for i, p := range points {
		net, err := build(base, p)
		if err != nil {
			return nil, fmt.Errorf("sweep: point %d (%s): %w", i, p, err)
		}
		networks[i] = net
	}

	results := make([]Result, len(points))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, p := range points {
		if gctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			traj, err := sim.Simulate(networks[i], base.Initial, base.Span, base.Resolution, base.Options...)
			results[i] = Result{Point: p, Trajectory: traj, Err: err}
			if err != nil {
				logger.Warn("sweep point failed", "point", p.String(), "error", err)
			} else {
				logger.Debug("sweep point finished", "point", p.String(), "steps", traj.Stats.Steps)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func build(base Base, p Point) (*kinetics.Network, error) {
	reactions := make([]*kinetics.Reaction, len(base.Reactions))
	copy(reactions, base.Reactions)

	for i, factor := range p.Scale {
		if i < 0 || i >= len(reactions) {
			return nil, kinetics.Errorf("reaction index %d out of range [0, %d)", i, len(reactions))
		}
		r, err := reactions[i].WithRateConstant(reactions[i].RateConstant() * factor)
		if err != nil {
			return nil, err
		}
		reactions[i] = r
	}

	net, err := kinetics.NewNetwork(reactions...)
	if err != nil {
		return nil, err
	}
	if len(base.Hold) > 0 {
		if err := net.Hold(base.Hold...); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Scales builds one point per factor, each scaling the same reaction.
func Scales(reaction int, factors ...float64) []Point {
	points := make([]Point, len(factors))
	for i, f := range factors {
		points[i] = Point{Scale: map[int]float64{reaction: f}}
	}
	return points
}
