package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physarum/internal/sim"
)

var _ = Describe("Ensemble", func() {
	It("runs one member per seed", func() {
		ens := sim.NewEnsemble(16, 16, 0.2, nil, 3, 100)
		results, err := ens.Run(context.Background(), 30, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))

		for i, r := range results {
			Expect(r.Seed).To(Equal(int64(100 + i)))
			Expect(r.History).To(HaveLen(3))
			Expect(r.Final.Step).To(Equal(30))
		}
	})

	It("matches a standalone engine with the same seed", func() {
		results, err := sim.NewEnsemble(16, 16, 0.2, nil, 2, 9).Run(context.Background(), 12, 0)
		Expect(err).NotTo(HaveOccurred())

		e, err := sim.New(16, 16, 0.2, nil, sim.WithSeed(10))
		Expect(err).NotTo(HaveOccurred())
		stepN(e, 12)
		Expect(results[1].Final).To(Equal(e.Stats()))
	})

	It("propagates construction errors", func() {
		_, err := sim.NewEnsemble(0, 16, 0.2, nil, 2, 1).Run(context.Background(), 5, 0)
		Expect(err).To(HaveOccurred())
	})

	It("summarises a column across runs", func() {
		results := []sim.RunResult{{}, {}, {}}
		for i := range results {
			results[i].Final.TrailMean = float64(i + 1)
		}
		s, err := sim.Summarize(results, "trail_mean")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Mean).To(Equal(2.0))
		Expect(s.Std).To(Equal(1.0))
		Expect(s.Min).To(Equal(1.0))
		Expect(s.Max).To(Equal(3.0))

		_, err = sim.Summarize(results, "bogus")
		Expect(err).To(HaveOccurred())
	})
})
