package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

var _ = Describe("Assemble", func() {
	It("splits flat samples into per-body tracks", func() {
		states := []dynamo.State{
			dynamo.Pack([]r3.Vec{{X: 1}, {Y: 2}}, []r3.Vec{{Z: 3}, {X: 4}}),
			dynamo.Pack([]r3.Vec{{X: 5}, {Y: 6}}, []r3.Vec{{Z: 7}, {X: 8}}),
		}

		tr, err := sim.Assemble([]float64{0, 1}, states, []float64{2, 3})
		Expect(err).NotTo(HaveOccurred())

		Expect(tr.Bodies[0].Mass).To(Equal(2.0))
		Expect(tr.Bodies[1].Positions).To(Equal([]r3.Vec{{Y: 2}, {Y: 6}}))
		Expect(tr.Bodies[0].Velocities).To(Equal([]r3.Vec{{Z: 3}, {Z: 7}}))
		Expect(tr.State(1)).To(Equal(states[1]))
	})

	It("does not alias the caller's time slice", func() {
		times := []float64{0, 1}
		states := []dynamo.State{dynamo.NewState(1), dynamo.NewState(1)}
		tr, err := sim.Assemble(times, states, []float64{1})
		Expect(err).NotTo(HaveOccurred())

		times[1] = 99
		Expect(tr.Times[1]).To(Equal(1.0))
	})

	It("rejects mismatched inputs", func() {
		_, err := sim.Assemble([]float64{0}, nil, []float64{1})
		Expect(err).To(MatchError(dynamo.ErrInvalidInput))

		_, err = sim.Assemble([]float64{0}, []dynamo.State{dynamo.NewState(2)}, []float64{1})
		Expect(err).To(MatchError(dynamo.ErrInvalidInput))
	})
})

var _ = Describe("ExpectedSize", func() {
	It("scales with bodies and grid length", func() {
		size := sim.ExpectedSize(3, 2000)
		Expect(size.Samples).To(Equal(6000))
		Expect(size.Bytes).To(Equal(int64(2000*8 + 6000*48)))
	})
})

var _ = Describe("Linspace", func() {
	DescribeTable("spacing",
		func(start, end float64, n int, want []float64) {
			Expect(sim.Linspace(start, end, n)).To(Equal(want))
		},
		Entry("five points", 0.0, 1.0, 5, []float64{0, 0.25, 0.5, 0.75, 1}),
		Entry("single point", 2.0, 3.0, 1, []float64{2}),
		Entry("no points", 0.0, 1.0, 0, nil),
	)

	It("ends exactly on the span end", func() {
		grid := sim.Linspace(0, 120, 2000)
		Expect(grid[len(grid)-1]).To(Equal(120.0))
	})
})
