package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physarum/internal/agents"
	"github.com/san-kum/physarum/internal/compute"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/sim"
	"github.com/san-kum/physarum/internal/slime"
)

func stepN(e *sim.Engine, n int) {
	GinkgoHelper()
	for i := 0; i < n; i++ {
		Expect(e.Step()).To(Succeed())
	}
}

func clearField(e *sim.Engine) {
	f := e.Field()
	clear(f.Trail)
	clear(f.Nutrient)
}

func paramValue(e *sim.Engine, name string) float64 {
	GinkgoHelper()
	v, ok := e.ParameterSet().Get(name)
	Expect(ok).To(BeTrue(), "missing parameter %s", name)
	return v
}

var _ = Describe("Engine", func() {
	Describe("construction", func() {
		DescribeTable("rejects invalid arguments",
			func(w, h int, fraction float64, field string) {
				e, err := sim.New(w, h, fraction, nil)
				Expect(e).To(BeNil())
				Expect(errors.Is(err, slime.ErrConfig)).To(BeTrue())

				var cfgErr *slime.ConfigError
				Expect(errors.As(err, &cfgErr)).To(BeTrue())
				Expect(cfgErr.Field).To(Equal(field))
			},
			Entry("zero width", 0, 10, 0.1, "width"),
			Entry("negative height", 10, -1, 0.1, "height"),
			Entry("zero fraction", 10, 10, 0.0, "agent_fraction"),
			Entry("fraction above one", 10, 10, 1.5, "agent_fraction"),
			Entry("NaN fraction", 10, 10, math.NaN(), "agent_fraction"),
		)

		It("rejects unknown overrides", func() {
			_, err := sim.New(10, 10, 0.1, map[string]float64{"viscosity": 1})
			Expect(errors.Is(err, slime.ErrConfig)).To(BeTrue())
			Expect(errors.Is(err, slime.ErrUnknownParameter)).To(BeTrue())
		})

		It("sizes the population from the agent fraction", func() {
			e, err := sim.New(10, 10, 0.5, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.AgentCount()).To(Equal(50))

			e, err = sim.New(3, 3, 0.1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.AgentCount()).To(Equal(1))
		})

		It("exposes the profile's parameters in order", func() {
			e, err := sim.New(8, 8, 0.1, map[string]float64{params.SensorOffset: 2})
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0)
			for _, p := range e.Parameters() {
				names = append(names, p.Name)
			}
			Expect(names).To(Equal(params.Classic.Keys))
			Expect(paramValue(e, params.SensorOffset)).To(Equal(2.0))
			Expect(paramValue(e, params.TrailDecay)).To(Equal(0.3))
		})

		It("allocates nutrient only for nutrient profiles", func() {
			classic, err := sim.New(8, 6, 0.1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(classic.NutrientMap()).To(BeNil())

			extended, err := sim.New(8, 6, 0.1, nil, sim.WithProfile(params.Extended))
			Expect(err).NotTo(HaveOccurred())
			Expect(extended.NutrientMap()).To(HaveLen(8 * 6 * params.NutrientChannels))
			Expect(extended.TrailMap()).To(HaveLen(48))
		})

		It("returns snapshots the caller may modify", func() {
			e, err := sim.New(4, 4, 0.5, nil)
			Expect(err).NotTo(HaveOccurred())
			m := e.TrailMap()
			m[0] = 99
			Expect(e.TrailMap()[0]).NotTo(Equal(float32(99)))
		})
	})

	Describe("determinism", func() {
		newEngine := func(seed int64, backend compute.Backend) *sim.Engine {
			GinkgoHelper()
			e, err := sim.New(48, 40, 0.2, nil,
				sim.WithSeed(seed),
				sim.WithProfile(params.Extended),
				sim.WithBackend(backend))
			Expect(err).NotTo(HaveOccurred())
			return e
		}

		agentsOf := func(e *sim.Engine) []agents.Agent {
			out := make([]agents.Agent, e.AgentCount())
			for i := range out {
				out[i] = e.Agent(i)
			}
			return out
		}

		It("reproduces a run from the same seed", func() {
			a := newEngine(42, compute.NewSerialBackend())
			b := newEngine(42, compute.NewSerialBackend())
			stepN(a, 20)
			stepN(b, 20)

			Expect(a.TrailMap()).To(Equal(b.TrailMap()))
			Expect(a.NutrientMap()).To(Equal(b.NutrientMap()))
			Expect(agentsOf(a)).To(Equal(agentsOf(b)))
		})

		It("diverges for different seeds", func() {
			a := newEngine(1, compute.NewSerialBackend())
			b := newEngine(2, compute.NewSerialBackend())
			Expect(a.TrailMap()).NotTo(Equal(b.TrailMap()))
		})

		It("does not depend on how the step is split across workers", func() {
			serial := newEngine(7, compute.NewSerialBackend())
			parallel := newEngine(7, compute.NewCPUBackendWorkers(4).WithMinChunk(16))

			for i := 0; i < 15; i++ {
				Expect(serial.Step()).To(Succeed())
				Expect(parallel.Step()).To(Succeed())
				Expect(parallel.TrailMap()).To(Equal(serial.TrailMap()), "step %d", i+1)
			}
			Expect(parallel.NutrientMap()).To(Equal(serial.NutrientMap()))
			Expect(agentsOf(parallel)).To(Equal(agentsOf(serial)))
		})

		It("reset restores the seeded state", func() {
			e := newEngine(5, compute.NewSerialBackend())
			initial := e.TrailMap()
			stepN(e, 5)
			Expect(e.StepCount()).To(Equal(5))

			e.Reset()
			Expect(e.StepCount()).To(Equal(0))
			Expect(e.TrailMap()).To(Equal(initial))
		})
	})

	Describe("stepping", func() {
		It("keeps the trail within [0, max_density]", func() {
			e, err := sim.New(32, 32, 0.3, map[string]float64{params.DepositAmount: 5})
			Expect(err).NotTo(HaveOccurred())
			limit := float32(paramValue(e, params.MaxDensity))

			for i := 0; i < 40; i++ {
				Expect(e.Step()).To(Succeed())
				for _, v := range e.TrailMap() {
					Expect(v).To(And(BeNumerically(">=", 0), BeNumerically("<=", limit)))
				}
			}
		})

		It("keeps every agent on the torus", func() {
			e, err := sim.New(17, 9, 0.5, map[string]float64{params.StepSize: 4.5},
				sim.WithProfile(params.Extended))
			Expect(err).NotTo(HaveOccurred())
			stepN(e, 25)

			for i := 0; i < e.AgentCount(); i++ {
				a := e.Agent(i)
				Expect(a.X).To(And(BeNumerically(">=", 0), BeNumerically("<", 17)))
				Expect(a.Y).To(And(BeNumerically(">=", 0), BeNumerically("<", 9)))
				Expect(a.Heading).To(And(BeNumerically(">=", 0), BeNumerically("<", 2*math.Pi)))
			}
		})

		It("moves a lone agent forward toward the strongest sensor", func() {
			e, err := sim.NewFromAgents(20, 20,
				[]agents.Agent{{X: 5, Y: 5, Heading: 0}},
				map[string]float64{
					params.SensorOffset:  1,
					params.StepSize:      1,
					params.DepositAmount: 1,
					params.TrailDecay:    0,
				},
				sim.WithProfile(params.Minimal))
			Expect(err).NotTo(HaveOccurred())
			clearField(e)
			e.Field().Trail[5*20+6] = 1

			Expect(e.Step()).To(Succeed())

			a := e.Agent(0)
			Expect(a.X).To(BeNumerically("~", 6, 1e-6))
			Expect(a.Y).To(BeNumerically("~", 5, 1e-6))
			Expect(a.Heading).To(Equal(float32(0)))
			Expect(e.TrailMap()[5*20+6]).To(BeNumerically("~", 2, 1e-6))
		})

		It("turns toward whichever side sensor leads", func() {
			overrides := map[string]float64{
				params.SensorAngle:   math.Pi / 4,
				params.SensorOffset:  3,
				params.RotationAngle: math.Pi / 8,
			}
			for _, tc := range []struct {
				x, y    int
				heading float64
			}{
				{12, 12, math.Pi / 8},          // left sensor, heading+angle
				{12, 8, 2*math.Pi - math.Pi/8}, // right sensor, heading-angle
			} {
				e, err := sim.NewFromAgents(20, 20,
					[]agents.Agent{{X: 10, Y: 10, Heading: 0}}, overrides,
					sim.WithProfile(params.Minimal))
				Expect(err).NotTo(HaveOccurred())
				clearField(e)
				e.Field().Trail[tc.y*20+tc.x] = 1

				Expect(e.Step()).To(Succeed())
				Expect(e.Agent(0).Heading).To(BeNumerically("~", tc.heading, 1e-5))
			}
		})

		It("saturates rather than overflowing an uncapped trail", func() {
			e, err := sim.NewFromAgents(8, 8,
				[]agents.Agent{{X: 1, Y: 1}, {X: 1, Y: 1}},
				map[string]float64{params.DepositAmount: 3e38, params.StepSize: 0},
				sim.WithProfile(params.Minimal))
			Expect(err).NotTo(HaveOccurred())

			stepN(e, 3)
			for _, v := range e.TrailMap() {
				Expect(math.IsInf(float64(v), 0) || math.IsNaN(float64(v))).To(BeFalse())
			}
			Expect(e.TrailMap()[1*8+1]).To(BeNumerically(">", 1e38))
		})

		It("wraps a move across the left edge", func() {
			e, err := sim.NewFromAgents(10, 10,
				[]agents.Agent{{X: 0, Y: 4, Heading: math.Pi}},
				map[string]float64{params.StepSize: 3},
				sim.WithProfile(params.Minimal))
			Expect(err).NotTo(HaveOccurred())
			clearField(e)

			Expect(e.Step()).To(Succeed())

			a := e.Agent(0)
			Expect(a.X).To(BeNumerically("~", 7, 1e-4))
			Expect(a.Y).To(BeNumerically("~", 4, 1e-4))
			// deposit 3, then decay by 0.3
			Expect(e.TrailMap()[4*10+7]).To(BeNumerically("~", 2.1, 1e-5))
		})

		It("keeps the heading when all sensors tie", func() {
			e, err := sim.NewFromAgents(12, 12,
				[]agents.Agent{{X: 6, Y: 6, Heading: 0.5}}, nil)
			Expect(err).NotTo(HaveOccurred())
			clearField(e)

			Expect(e.Step()).To(Succeed())
			Expect(e.Agent(0).Heading).To(Equal(float32(0.5)))
		})

		It("only decays the field when there are no agents", func() {
			e, err := sim.NewFromAgents(8, 8, nil, nil, sim.WithProfile(params.Minimal))
			Expect(err).NotTo(HaveOccurred())
			Expect(e.AgentCount()).To(BeZero())

			before := e.TrailMap()
			Expect(e.Step()).To(Succeed())
			after := e.TrailMap()
			for i := range before {
				Expect(after[i]).To(BeNumerically("~", before[i]*0.7, 1e-6))
			}
			Expect(e.AgentDensityMap()).To(HaveEach(float32(0)))
		})

		It("reports divergence and stays diverged", func() {
			e, err := sim.NewFromAgents(8, 8, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			e.Field().Trail[2*8+3] = float32(math.NaN())

			err = e.Step()
			Expect(errors.Is(err, slime.ErrDiverged)).To(BeTrue())

			var div *slime.SimulationDivergedError
			Expect(errors.As(err, &div)).To(BeTrue())
			Expect(div.Step).To(Equal(1))
			Expect(div.Grid).To(Equal("trail"))
			Expect(div.X).To(Equal(3))
			Expect(div.Y).To(Equal(2))

			Expect(e.Step()).To(MatchError(err))
			Expect(e.StepCount()).To(Equal(1))
		})

		It("decays nutrient in nutrient profiles", func() {
			e, err := sim.NewFromAgents(16, 16, nil,
				map[string]float64{params.NutrientDecay: 0.5},
				sim.WithProfile(params.Extended))
			Expect(err).NotTo(HaveOccurred())

			before := e.Stats().NutrientTotal
			Expect(before).To(BeNumerically(">", 0))
			Expect(e.Step()).To(Succeed())
			Expect(e.Stats().NutrientTotal).To(BeNumerically("~", before/2, before*1e-5))
		})
	})

	Describe("spectrum", func() {
		It("finds a dominant wavelength once a network forms", func() {
			e, err := sim.New(64, 48, 0.2, nil, sim.WithSeed(9))
			Expect(err).NotTo(HaveOccurred())
			stepN(e, 30)

			s := e.Spectrum()
			Expect(s.Radial).To(HaveLen(48/2 + 1))
			Expect(s.Peak).To(BeNumerically(">", 0))
			Expect(s.Wavelength).To(BeNumerically("~", 48.0/float64(s.Peak), 1e-9))
		})
	})

	Describe("run loop", func() {
		It("stops when the callback returns false", func() {
			e, err := sim.New(16, 16, 0.1, nil)
			Expect(err).NotTo(HaveOccurred())

			err = e.Run(context.Background(), 100, func(e *sim.Engine) bool {
				return e.StepCount() < 3
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.StepCount()).To(Equal(3))
		})

		It("honours cancellation", func() {
			e, err := sim.New(16, 16, 0.1, nil)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(e.Run(ctx, 10, nil)).To(MatchError(context.Canceled))
			Expect(e.StepCount()).To(BeZero())
		})
	})

	Describe("parameters", func() {
		var e *sim.Engine

		BeforeEach(func() {
			var err error
			e, err = sim.New(16, 16, 0.1, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("applies a valid update", func() {
			Expect(e.UpdateParameters(map[string]float64{
				params.SensorAngle: 1,
				params.MaxDensity:  0,
			})).To(Succeed())
			Expect(paramValue(e, params.SensorAngle)).To(Equal(1.0))
			Expect(paramValue(e, params.MaxDensity)).To(Equal(0.0))
		})

		DescribeTable("rejects the whole update",
			func(update map[string]float64, sentinel error) {
				before := e.Parameters()
				err := e.UpdateParameters(update)
				Expect(errors.Is(err, sentinel)).To(BeTrue(), "got %v", err)
				Expect(e.Parameters()).To(Equal(before))
			},
			Entry("unknown key", map[string]float64{params.TrailDecay: 0.5, "viscosity": 1}, slime.ErrUnknownParameter),
			Entry("key outside the profile", map[string]float64{params.Attraction: 2}, slime.ErrUnknownParameter),
			Entry("decay above one", map[string]float64{params.SensorOffset: 3, params.TrailDecay: 1.5}, slime.ErrParameterBounds),
			Entry("negative decay", map[string]float64{params.TrailDecay: -0.1}, slime.ErrParameterBounds),
			Entry("NaN", map[string]float64{params.StepSize: math.NaN()}, slime.ErrParameterBounds),
		)

		It("nudges values by their rule", func() {
			Expect(e.AdjustParameter(params.DepositAmount, 1)).To(Succeed())
			Expect(paramValue(e, params.DepositAmount)).To(Equal(4.0))

			Expect(e.AdjustParameter(params.TrailDecay, 1)).To(Succeed())
			Expect(paramValue(e, params.TrailDecay)).To(BeNumerically("~", 0.33, 1e-12))

			Expect(e.AdjustParameter(params.TrailDecay, -1)).To(Succeed())
			Expect(paramValue(e, params.TrailDecay)).To(BeNumerically("~", 0.297, 1e-12))
		})

		It("clamps nudges to the parameter's range", func() {
			Expect(e.UpdateParameters(map[string]float64{params.TrailDecay: 1})).To(Succeed())
			Expect(e.AdjustParameter(params.TrailDecay, 1)).To(Succeed())
			Expect(paramValue(e, params.TrailDecay)).To(Equal(1.0))

			Expect(e.UpdateParameters(map[string]float64{params.StepSize: 0})).To(Succeed())
			Expect(e.AdjustParameter(params.StepSize, -1)).To(Succeed())
			Expect(paramValue(e, params.StepSize)).To(Equal(0.0))
		})

		It("rejects unknown names", func() {
			err := e.AdjustParameter("viscosity", 1)
			var unknown *slime.UnknownParameterError
			Expect(errors.As(err, &unknown)).To(BeTrue())
			Expect(unknown.Name).To(Equal("viscosity"))
		})

		It("takes effect on the next step", func() {
			Expect(e.UpdateParameters(map[string]float64{params.TrailDecay: 1})).To(Succeed())
			clearField(e)
			Expect(e.Step()).To(Succeed())
			Expect(e.TrailMap()).To(HaveEach(float32(0)))
		})
	})
})
