package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/physics"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

func dist(a, b r3.Vec) float64 { return r3.Norm(r3.Sub(a, b)) }

func figureEight() sim.Problem {
	v3 := r3.Vec{X: -0.93240737, Y: -0.86473146}
	v12 := r3.Scale(-0.5, v3)
	return sim.Problem{
		Bodies: []sim.Body{
			{Mass: 1, Position: r3.Vec{X: 0.97000436, Y: -0.24308753}, Velocity: v12},
			{Mass: 1, Position: r3.Vec{X: -0.97000436, Y: 0.24308753}, Velocity: v12},
			{Mass: 1, Velocity: v3},
		},
		TStart: 0,
		TEnd:   6.3259,
		Grid:   sim.Linspace(0, 6.3259, 200),
	}
}

func chaotic(tEnd float64, samples int) sim.Problem {
	return sim.Problem{
		Bodies: []sim.Body{
			{Mass: 1, Position: r3.Vec{X: -1, Z: 0.1}, Velocity: r3.Vec{Y: 0.3}},
			{Mass: 1, Position: r3.Vec{X: 1, Z: -0.1}, Velocity: r3.Vec{Y: -0.3}},
			{Mass: 1, Position: r3.Vec{Y: 1}, Velocity: r3.Vec{Z: 0.1}},
		},
		TStart: 0,
		TEnd:   tEnd,
		Grid:   sim.Linspace(0, tEnd, samples),
	}
}

var _ = Describe("Run", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Describe("trajectory shape", func() {
		It("samples every body on every grid time", func() {
			p := chaotic(10, 101)
			tr, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(tr.Times).To(Equal(p.Grid))
			Expect(tr.NumBodies()).To(Equal(3))
			for _, b := range tr.Bodies {
				Expect(b.Positions).To(HaveLen(len(p.Grid)))
				Expect(b.Velocities).To(HaveLen(len(p.Grid)))
			}
			Expect(tr.Masses()).To(Equal([]float64{1, 1, 1}))
			Expect(tr.Stats.Steps).To(BeNumerically(">", 0))
		})

		It("starts from the initial conditions exactly", func() {
			p := chaotic(1, 5)
			tr, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())

			for i, b := range p.Bodies {
				Expect(tr.Bodies[i].Positions[0]).To(Equal(b.Position))
				Expect(tr.Bodies[i].Velocities[0]).To(Equal(b.Velocity))
			}
		})

		It("honours a grid that does not start at t_start", func() {
			p := chaotic(2, 0)
			p.Grid = []float64{0.5, 1.0, 2.0}
			tr, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Times).To(Equal([]float64{0.5, 1.0, 2.0}))
		})
	})

	Describe("circular two-body orbit", func() {
		It("returns to its starting positions after one period", func() {
			// Separation d, masses m: v = sqrt(G m / 2d), T = 2 pi sqrt(d^3 / (G (m1 + m2))).
			d, m := 1.0, 1.0
			v := math.Sqrt(m / (2 * d))
			period := 2 * math.Pi * math.Sqrt(d*d*d/(2*m))

			tr, err := sim.Simulate(
				[]float64{m, m},
				[]r3.Vec{{X: -d / 2}, {X: d / 2}},
				[]r3.Vec{{Y: -v}, {Y: v}},
				0, period, sim.Linspace(0, period, 101), cfg,
			)
			Expect(err).NotTo(HaveOccurred())

			last := tr.Len() - 1
			for _, b := range tr.Bodies {
				Expect(dist(b.Positions[last], b.Positions[0])).To(BeNumerically("<", 1e-6))
			}

			// Halfway round, the bodies have swapped sides.
			half := tr.Bodies[0].Positions[50]
			Expect(dist(half, r3.Vec{X: d / 2})).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("conservation laws", func() {
		It("conserves momentum and energy on the figure-eight orbit", func() {
			p := figureEight()
			tr, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())

			field := physics.NewField()
			masses := tr.Masses()
			e0 := field.Energy(masses, tr.Positions(0), tr.Velocities(0))
			p0 := physics.Momentum(masses, tr.Velocities(0))
			l0 := physics.AngularMomentum(masses, tr.Positions(0), tr.Velocities(0))

			for k := 0; k < tr.Len(); k++ {
				e := field.Energy(masses, tr.Positions(k), tr.Velocities(k))
				Expect(math.Abs((e-e0)/e0)).To(BeNumerically("<", 1e-6), "energy at t=%v", tr.Times[k])

				pk := physics.Momentum(masses, tr.Velocities(k))
				Expect(dist(pk, p0)).To(BeNumerically("<", 1e-10), "momentum at t=%v", tr.Times[k])

				lk := physics.AngularMomentum(masses, tr.Positions(k), tr.Velocities(k))
				Expect(dist(lk, l0)).To(BeNumerically("<", 1e-6), "angular momentum at t=%v", tr.Times[k])
			}
		})

		It("moves the centre of mass uniformly", func() {
			tr, err := sim.Run(chaotic(20, 50), cfg)
			Expect(err).NotTo(HaveOccurred())

			masses := tr.Masses()
			total := 0.0
			for _, m := range masses {
				total += m
			}
			c0 := physics.CenterOfMass(masses, tr.Positions(0))
			drift := r3.Scale(1/total, physics.Momentum(masses, tr.Velocities(0)))

			for k, tm := range tr.Times {
				want := r3.Add(c0, r3.Scale(tm, drift))
				Expect(dist(physics.CenterOfMass(masses, tr.Positions(k)), want)).To(BeNumerically("<", 1e-9))
			}
		})
	})

	Describe("a single body", func() {
		It("stays at rest at its initial position", func() {
			pos := r3.Vec{X: 1, Y: -2, Z: 3}
			tr, err := sim.Simulate([]float64{5}, []r3.Vec{pos}, []r3.Vec{{}}, 0, 10, sim.Linspace(0, 10, 21), cfg)
			Expect(err).NotTo(HaveOccurred())

			for k := 0; k < tr.Len(); k++ {
				Expect(tr.Bodies[0].Positions[k]).To(Equal(pos))
				Expect(tr.Bodies[0].Velocities[k]).To(Equal(r3.Vec{}))
			}
		})

		It("drifts uniformly when given a velocity", func() {
			vel := r3.Vec{X: 0.5}
			tr, err := sim.Simulate([]float64{1}, []r3.Vec{{}}, []r3.Vec{vel}, 0, 4, sim.Linspace(0, 4, 9), cfg)
			Expect(err).NotTo(HaveOccurred())

			for k, tm := range tr.Times {
				Expect(dist(tr.Bodies[0].Positions[k], r3.Scale(tm, vel))).To(BeNumerically("<", 1e-12))
			}
		})
	})

	Describe("three bodies released from rest", func() {
		It("moves every body toward the centroid", func() {
			tr, err := sim.Simulate(
				[]float64{1, 1, 1},
				[]r3.Vec{{X: 1}, {X: -1}, {Y: 1}},
				[]r3.Vec{{}, {}, {}},
				0, 0.5, sim.Linspace(0, 0.5, 6), cfg,
			)
			Expect(err).NotTo(HaveOccurred())

			centroid := r3.Vec{Y: 1.0 / 3.0}
			for i, b := range tr.Bodies {
				for k := 1; k < tr.Len(); k++ {
					Expect(dist(b.Positions[k], centroid)).To(
						BeNumerically("<", dist(b.Positions[k-1], centroid)),
						"body %d sample %d", i, k,
					)
				}
			}
		})
	})

	Describe("permutation invariance", func() {
		It("produces the same trajectories after relabelling the bodies", func() {
			p := chaotic(10, 101)
			swapped := p
			swapped.Bodies = []sim.Body{p.Bodies[2], p.Bodies[1], p.Bodies[0]}

			a, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.Run(swapped, cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := range a.Bodies {
				j := 2 - i
				for k := 0; k < a.Len(); k++ {
					Expect(dist(a.Bodies[i].Positions[k], b.Bodies[j].Positions[k])).To(BeNumerically("<", 1e-6))
					Expect(dist(a.Bodies[i].Velocities[k], b.Bodies[j].Velocities[k])).To(BeNumerically("<", 1e-6))
				}
			}
		})
	})

	Describe("alternative fields", func() {
		It("matches the direct sum with an exact Barnes-Hut tree", func() {
			direct, err := sim.Run(chaotic(5, 11), cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Field = sim.FieldBarnesHut
			cfg.Theta = 0
			tree, err := sim.Run(chaotic(5, 11), cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := range direct.Bodies {
				last := direct.Len() - 1
				Expect(dist(direct.Bodies[i].Positions[last], tree.Bodies[i].Positions[last])).To(BeNumerically("<", 1e-6))
			}
		})

		It("tracks the direct sum with unequal masses and an opening angle", func() {
			p := chaotic(0.5, 11)
			for i, m := range []float64{1, 2, 3} {
				p.Bodies[i].Mass = m
			}
			direct, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Field = sim.FieldBarnesHut
			cfg.Theta = 0.5
			tree, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())

			for k := 0; k < direct.Len(); k++ {
				for i := range direct.Bodies {
					Expect(dist(direct.Bodies[i].Positions[k], tree.Bodies[i].Positions[k])).To(BeNumerically("<", 1e-6),
						"body %d at t=%v", i, direct.Times[k])
				}
			}
		})

		It("softens the Barnes-Hut field like the direct one", func() {
			cfg.Field = sim.FieldBarnesHut
			cfg.Softening = 0.1
			masses := []float64{1, 1}
			tr, err := sim.Simulate(
				masses,
				[]r3.Vec{{X: -1}, {X: 1}},
				[]r3.Vec{{}, {}},
				0, 3, sim.Linspace(0, 3, 31), cfg,
			)
			Expect(err).NotTo(HaveOccurred())

			field := physics.Field{G: cfg.G, Softening: cfg.Softening}
			e0 := field.Energy(masses, tr.Positions(0), tr.Velocities(0))
			for k := 1; k < tr.Len(); k++ {
				e := field.Energy(masses, tr.Positions(k), tr.Velocities(k))
				Expect(math.Abs((e-e0)/e0)).To(BeNumerically("<", 1e-5), "energy at t=%v", tr.Times[k])
			}
		})

		It("survives a head-on encounter when softened", func() {
			cfg.Softening = 0.1
			tr, err := sim.Simulate(
				[]float64{1, 1},
				[]r3.Vec{{X: -1}, {X: 1}},
				[]r3.Vec{{}, {}},
				0, 3, sim.Linspace(0, 3, 31), cfg,
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(31))
		})
	})
})

var _ = Describe("input validation", func() {
	var (
		cfg   sim.Config
		calls int
	)

	BeforeEach(func() {
		calls = 0
		cfg = sim.DefaultConfig()
		field := physics.NewField()
		cfg.Accel = func(masses []float64, positions []r3.Vec) []r3.Vec {
			calls++
			return field.Accelerations(masses, positions)
		}
	})

	expectInvalid := func(tr *sim.Trajectory, err error) {
		Expect(err).To(MatchError(dynamo.ErrInvalidInput))
		Expect(tr).To(BeNil())
		Expect(calls).To(BeZero(), "no integration work may happen before validation")
	}

	DescribeTable("rejects bad problems before integrating",
		func(mutate func(p *sim.Problem)) {
			p := chaotic(10, 11)
			mutate(&p)
			tr, err := sim.Run(p, cfg)
			expectInvalid(tr, err)
		},
		Entry("grid time after t_end", func(p *sim.Problem) { p.Grid = append(p.Grid, 10.5) }),
		Entry("grid time before t_start", func(p *sim.Problem) { p.Grid[0] = -0.1 }),
		Entry("non-monotonic grid", func(p *sim.Problem) { p.Grid[3], p.Grid[4] = p.Grid[4], p.Grid[3] }),
		Entry("repeated grid time", func(p *sim.Problem) { p.Grid[4] = p.Grid[3] }),
		Entry("empty grid", func(p *sim.Problem) { p.Grid = nil }),
		Entry("zero mass", func(p *sim.Problem) { p.Bodies[1].Mass = 0 }),
		Entry("negative mass", func(p *sim.Problem) { p.Bodies[2].Mass = -1 }),
		Entry("NaN mass", func(p *sim.Problem) { p.Bodies[0].Mass = math.NaN() }),
		Entry("non-finite position", func(p *sim.Problem) { p.Bodies[0].Position.X = math.Inf(1) }),
		Entry("no bodies", func(p *sim.Problem) { p.Bodies = nil }),
		Entry("reversed span", func(p *sim.Problem) { p.TStart, p.TEnd = p.TEnd, p.TStart }),
	)

	DescribeTable("rejects bad configuration",
		func(mutate func(c *sim.Config)) {
			mutate(&cfg)
			tr, err := sim.Run(chaotic(10, 11), cfg)
			expectInvalid(tr, err)
		},
		Entry("zero absolute tolerance", func(c *sim.Config) { c.Tolerances.Abs = 0 }),
		Entry("negative relative tolerance", func(c *sim.Config) { c.Tolerances.Rel = -1 }),
		Entry("negative softening", func(c *sim.Config) { c.Softening = -0.1 }),
		Entry("min step above max step", func(c *sim.Config) { c.MinStep, c.MaxStep = 1, 0.1 }),
		Entry("negative step budget", func(c *sim.Config) { c.MaxSteps = -1 }),
		Entry("sample ceiling", func(c *sim.Config) { c.MaxSamples = 10 }),
	)

	It("rejects an unknown field and a non-positive G", func() {
		cfg.Accel = nil
		cfg.Field = "octree"
		_, err := sim.Run(chaotic(1, 3), cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidInput))

		cfg.Field = sim.FieldDirect
		cfg.G = 0
		_, err = sim.Run(chaotic(1, 3), cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidInput))
	})

	It("rejects mismatched slice lengths", func() {
		tr, err := sim.Simulate(
			[]float64{1, 1, 1},
			[]r3.Vec{{X: 1}, {X: -1}},
			[]r3.Vec{{}, {}, {}},
			0, 1, []float64{0, 1}, cfg,
		)
		expectInvalid(tr, err)
	})
})

var _ = Describe("integration failures", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	It("reports coincident bodies as a numerical blowup", func() {
		tr, err := sim.Simulate(
			[]float64{1, 1},
			[]r3.Vec{{X: 1}, {X: 1}},
			[]r3.Vec{{}, {}},
			0, 1, []float64{0, 1}, cfg,
		)
		Expect(errors.Is(err, dynamo.ErrNumericalBlowup)).To(BeTrue(), "got %v", err)
		Expect(tr).NotTo(BeNil())
		Expect(tr.Len()).To(BeZero())
	})

	It("returns the partial trajectory when a head-on collision stalls the solver", func() {
		grid := sim.Linspace(0, 3, 31)
		tr, err := sim.Simulate(
			[]float64{1, 1},
			[]r3.Vec{{X: -1}, {X: 1}},
			[]r3.Vec{{}, {}},
			0, 3, grid, cfg,
		)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, dynamo.ErrIntegrationDivergence) || errors.Is(err, dynamo.ErrNumericalBlowup)).
			To(BeTrue(), "got %v", err)

		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())

		Expect(tr.Len()).To(BeNumerically(">", 0))
		Expect(tr.Len()).To(BeNumerically("<", len(grid)))
		Expect(tr.Times).To(Equal(grid[:tr.Len()]))
		for _, b := range tr.Bodies {
			Expect(b.Positions).To(HaveLen(tr.Len()))
		}
		Expect(tr.Times[tr.Len()-1]).To(BeNumerically("<=", simErr.Time))
	})

	It("stops when the step budget runs out", func() {
		cfg.MaxSteps = 10
		p := chaotic(120, 2000)
		tr, err := sim.Run(p, cfg)
		Expect(err).To(MatchError(dynamo.ErrStepBudgetExceeded))
		Expect(tr.Len()).To(BeNumerically("<", len(p.Grid)))
	})
})
