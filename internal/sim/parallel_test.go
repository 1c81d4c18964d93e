package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

var _ = Describe("RunBatch", func() {
	perturbed := func(dx float64) sim.Problem {
		p := chaotic(5, 26)
		p.Bodies = append([]sim.Body(nil), p.Bodies...)
		p.Bodies[0].Position = r3.Add(p.Bodies[0].Position, r3.Vec{X: dx})
		return p
	}

	It("matches sequential runs", func() {
		cfg := sim.DefaultConfig()
		problems := []sim.Problem{perturbed(0), perturbed(1e-3), perturbed(2e-3), perturbed(3e-3)}

		results := sim.RunBatch(context.Background(), problems, cfg, 2)
		Expect(results).To(HaveLen(len(problems)))

		for i, p := range problems {
			want, err := sim.Run(p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].Err).NotTo(HaveOccurred())
			Expect(results[i].Trajectory.Bodies).To(Equal(want.Bodies))
		}
	})

	It("keeps per-problem errors separate", func() {
		bad := perturbed(0)
		bad.Bodies = append([]sim.Body(nil), bad.Bodies...)
		bad.Bodies[1].Mass = 0

		results := sim.RunBatch(context.Background(), []sim.Problem{perturbed(0), bad}, sim.DefaultConfig(), 0)
		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[1].Err).To(MatchError(dynamo.ErrInvalidInput))
	})

	It("starts nothing once the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := sim.RunBatch(ctx, []sim.Problem{perturbed(0), perturbed(1)}, sim.DefaultConfig(), 1)
		for _, r := range results {
			if r.Err != nil {
				Expect(r.Err).To(MatchError(context.Canceled))
				Expect(r.Trajectory).To(BeNil())
			}
		}
	})
})
