package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/shape"
	"github.com/san-kum/isecsim/internal/sim"
	"github.com/san-kum/isecsim/internal/thermal"
)

type layerSpec struct {
	kind         isec.Kind
	volume       float64
	density      float64
	specificHeat float64
	temperature  float64
	power        float64
}

func buildStack(logger logrus.FieldLogger, specs ...layerSpec) *isec.Stack {
	st := isec.NewStack(isec.WithLogger(logger))
	for _, s := range specs {
		rec := isec.Record{
			CrossSectionArea: 1,
			Height:           1,
			Volume:           s.volume,
			ShapeFamily:      shape.Cylinder,
			MaterialName:     "test",
			Conductivity:     0.5,
			Density:          s.density,
			SpecificHeat:     s.specificHeat,
		}
		l, err := isec.NewLayer(s.kind, rec, s.power, isec.WithTemperature(s.temperature))
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Stack(l)).To(Succeed())
	}
	return st
}

func storage(volume, density, c, temp float64) layerSpec {
	return layerSpec{kind: isec.KindStorage, volume: volume, density: density, specificHeat: c, temperature: temp}
}

func energy(st *isec.Stack) float64 {
	var e float64
	for _, l := range st.Layers() {
		e += l.HeatCapacity() * l.Temperature()
	}
	return e
}

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		logger *logrus.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger, _ = logtest.NewNullLogger()
	})

	run := func(st *isec.Stack, dt float64, steps int) *sim.Result {
		result, err := sim.New(st, sim.WithLogger(logger)).Run(ctx, sim.Config{TimeStep: dt, Steps: steps, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	Context("with an insulated two-layer storage column", func() {
		var st *isec.Stack

		BeforeEach(func() {
			st = buildStack(logger,
				storage(10, 1, 1, 0),  // C = 10 J/K
				storage(5, 2, 3, 100), // C = 30 J/K
			)
		})

		It("conserves thermal energy", func() {
			before := energy(st)
			result := run(st, 1, 250)

			Expect(result.StepsTaken).To(Equal(250))
			Expect(energy(st)).To(BeNumerically("~", before, 1e-9*before))
		})

		It("converges monotonically to the heat-capacity weighted mean", func() {
			result := run(st, 1, 300)

			prevGap := 100.0
			for i := 1; i < len(result.Snapshots); i++ {
				prev, cur := result.Snapshots[i-1].Temperatures, result.Snapshots[i].Temperatures
				Expect(cur[0]).To(BeNumerically(">=", prev[0]))
				Expect(cur[1]).To(BeNumerically("<=", prev[1]))
				gap := cur[1] - cur[0]
				Expect(gap).To(BeNumerically("<=", prevGap))
				prevGap = gap
			}

			equilibrium := (10*0.0 + 30*100.0) / 40
			final := result.Final().Temperatures
			Expect(final[0]).To(BeNumerically("~", equilibrium, 1e-5))
			Expect(final[1]).To(BeNumerically("~", equilibrium, 1e-5))
		})
	})

	It("computes every flux from the previous temperatures before updating any", func() {
		st := buildStack(logger,
			storage(10, 1, 1, 0),
			storage(10, 1, 1, 100),
			storage(10, 1, 1, 0),
		)
		result := run(st, 1, 1)

		final := result.Final()
		Expect(final.Fluxes).To(Equal([]float64{50, -100, 50}))
		Expect(final.Temperatures).To(Equal([]float64{5, 90, 5}))
	})

	It("lets boundary layers exchange with their single neighbour only", func() {
		st := buildStack(logger,
			storage(10, 1, 1, 20),
			storage(10, 1, 1, 60),
			storage(10, 1, 1, 20),
		)
		run(st, 0.01, 1)

		sep := thermal.Separation(1, 1)
		fromMiddle := thermal.Flux(0.5, 1, sep, 60, 20)
		Expect(st.Layer(0).HeatFlux()).To(Equal(fromMiddle))
		Expect(st.Layer(2).HeatFlux()).To(Equal(fromMiddle))
		Expect(st.Layer(1).HeatFlux()).To(Equal(-2 * fromMiddle))
	})

	It("adds the source power on top of conduction", func() {
		st := buildStack(logger,
			storage(10, 1, 1, 0),
			layerSpec{kind: isec.KindSource, volume: 10, density: 1, specificHeat: 1, temperature: 0, power: 10},
		)
		result := run(st, 1, 1)

		a, b := st.Layer(0), st.Layer(1)
		Expect(a.HeatFlux()).To(BeZero())
		Expect(b.HeatFlux()).To(Equal(10.0))
		Expect(a.Temperature()).To(BeZero())
		Expect(b.Temperature()).To(BeNumerically("~", 1.0, 1e-12))
		Expect(result.Final().Temperatures).To(Equal([]float64{0, 1}))
	})

	It("heats the whole column by the generated energy", func() {
		st := buildStack(logger,
			storage(10, 1, 1, 20),
			layerSpec{kind: isec.KindSource, volume: 10, density: 1, specificHeat: 1, temperature: 20, power: 4},
			layerSpec{kind: isec.KindSink, volume: 10, density: 1, specificHeat: 1, temperature: 20},
		)
		before := energy(st)
		run(st, 0.5, 40)

		Expect(energy(st)).To(BeNumerically("~", before+4*0.5*40, 1e-8))
	})
})
