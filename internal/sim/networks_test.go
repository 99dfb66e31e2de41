package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinsim/internal/analysis"
	"github.com/san-kum/kinsim/internal/dynamo"
	"github.com/san-kum/kinsim/internal/kinetics"
	"github.com/san-kum/kinsim/internal/sim"
)

func reaction(reactants, products map[string]int, k float64, opts ...kinetics.ReactionOption) *kinetics.Reaction {
	r, err := kinetics.NewReaction(reactants, products, k, opts...)
	Expect(err).NotTo(HaveOccurred())
	return r
}

func lotkaVolterra() *kinetics.Network {
	net, err := kinetics.NewNetwork(
		reaction(map[string]int{"A": 1, "X": 1}, map[string]int{"X": 2}, 0.06),
		reaction(map[string]int{"X": 1, "Y": 1}, map[string]int{"Y": 2}, 0.6),
		reaction(map[string]int{"Y": 1}, map[string]int{"B": 1}, 0.06),
	)
	Expect(err).NotTo(HaveOccurred())
	return net
}

func oregonator() *kinetics.Network {
	net, err := kinetics.NewNetwork(
		reaction(map[string]int{"A": 1, "Y": 1}, map[string]int{"X": 1, "P": 1}, 1.28),
		reaction(map[string]int{"X": 1, "Y": 1}, map[string]int{"P": 2}, 8e5),
		reaction(map[string]int{"A": 1, "X": 1}, map[string]int{"X": 2, "Z": 2}, 8),
		reaction(map[string]int{"X": 2}, map[string]int{"A": 1, "P": 1}, 2e3),
		reaction(map[string]int{"Z": 1, "B": 1}, map[string]int{"Y": 1}, 1),
	)
	Expect(err).NotTo(HaveOccurred())
	return net
}

var _ = Describe("Simulate", func() {
	Context("Lotka-Volterra autocatalysis", func() {
		var initial map[string]float64

		BeforeEach(func() {
			initial = map[string]float64{"A": 8, "X": 0.1, "Y": 0.05}
		})

		It("oscillates in both prey and predator with the food supply buffered", func() {
			net := lotkaVolterra()
			Expect(net.Hold("A")).To(Succeed())

			traj, err := sim.Simulate(net, initial, [2]float64{0, 600}, 6001)
			Expect(err).NotTo(HaveOccurred())

			for _, name := range []string{"X", "Y"} {
				series, ok := traj.Series(name)
				Expect(ok).To(BeTrue())
				Expect(len(analysis.Peaks(series, traj.Times, 1e-3))).To(BeNumerically(">=", 2), name)

				period := analysis.DominantPeriod(series, traj.Times)
				Expect(period).To(BeNumerically(">", 10), name)
				Expect(period).To(BeNumerically("<", 300), name)
			}
		})

		It("oscillates in both prey and predator while A is consumed", func() {
			traj, err := sim.Simulate(lotkaVolterra(), initial, [2]float64{0, 1000}, 2000)
			Expect(err).NotTo(HaveOccurred())

			for _, name := range []string{"X", "Y"} {
				series, ok := traj.Series(name)
				Expect(ok).To(BeTrue())
				Expect(len(analysis.Peaks(series, traj.Times, 0.01))).To(BeNumerically(">=", 2), name)
				Expect(analysis.Oscillates(series, 2, 0.01)).To(BeTrue(), name)
			}
		})

		It("conserves A + X + Y + B when A is consumed", func() {
			traj, err := sim.Simulate(lotkaVolterra(), initial, [2]float64{0, 400}, 801,
				sim.WithTolerance(1e-8, 1e-11))
			Expect(err).NotTo(HaveOccurred())

			totals, err := analysis.MassBalance(traj, map[string]float64{"A": 1, "X": 1, "Y": 1, "B": 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(analysis.MaxDrift(totals)).To(BeNumerically("<", 1e-6))

			a, _ := traj.Series("A")
			Expect(a[len(a)-1]).To(BeNumerically("<", a[0]))
		})

		It("orders species by first appearance", func() {
			traj, err := sim.Simulate(lotkaVolterra(), initial, [2]float64{0, 1}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Species).To(Equal([]string{"A", "X", "Y", "B"}))
		})
	})

	Context("Oregonator", func() {
		It("integrates the stiff network with the Rosenbrock method", func() {
			initial := map[string]float64{"A": 0.06, "Z": 2e-5, "B": 0.06}

			traj, err := sim.Simulate(oregonator(), initial, [2]float64{0, 60}, 601,
				sim.WithMethod("rosenbrock23"), sim.WithTolerance(1e-6, 1e-12))
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Stats.JacobianEvals).To(BeNumerically(">", 0))

			for _, row := range traj.Concentrations {
				Expect(dynamo.State(row).IsValid()).To(BeTrue())
			}

			b, _ := traj.Series("B")
			Expect(b[len(b)-1]).To(BeNumerically("<=", b[0]+1e-12))
		})

		It("gives up under a tight step budget instead of returning a partial result", func() {
			initial := map[string]float64{"A": 0.06, "Z": 2e-5, "B": 0.06}

			traj, err := sim.Simulate(oregonator(), initial, [2]float64{0, 600}, 601,
				sim.WithMaxSteps(50))
			Expect(traj).To(BeNil())
			Expect(errors.Is(err, sim.ErrIntegration)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrMaxSteps)).To(BeTrue())
		})
	})

	Context("invalid reactions", func() {
		It("rejects a zero stoichiometric coefficient", func() {
			_, err := kinetics.NewReaction(map[string]int{"A": 0}, map[string]int{"B": 1}, 1)
			Expect(err).To(MatchError(kinetics.ErrConfiguration))
		})
	})

	Context("first-order decay", func() {
		It("tracks the analytic solution", func() {
			net, err := kinetics.NewNetwork(reaction(map[string]int{"A": 1}, map[string]int{"B": 1}, 1))
			Expect(err).NotTo(HaveOccurred())

			traj, err := sim.Simulate(net, map[string]float64{"A": 1}, [2]float64{0, 5}, 50)
			Expect(err).NotTo(HaveOccurred())

			final := traj.Final()
			Expect(final["A"]).To(BeNumerically("~", math.Exp(-5), 1e-6))
			Expect(final["A"] + final["B"]).To(BeNumerically("~", 1, 1e-9))
		})
	})
})
