package sim

import (
	"context"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/isecsim/internal/isec"
)

// Driver advances a stack with a fixed time step. Each step first computes
// the flux of every layer from the previous temperatures, then updates every
// temperature from those fluxes.
type Driver struct {
	stack     *isec.Stack
	metrics   []Metric
	observers []Observer
	logger    log.FieldLogger
	step      int
	time      float64
}

type Option func(*Driver)

func WithLogger(l log.FieldLogger) Option {
	return func(d *Driver) { d.logger = l }
}

func New(stack *isec.Stack, opts ...Option) *Driver {
	d := &Driver{
		stack:     stack,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) Stack() *isec.Stack { return d.stack }

// Run advances the stack cfg.Steps times from its current temperatures.
// Any failure is fatal to the run. The stack is left at the last completed
// step: a step that diverges is undone before ErrUnstable is returned.
func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	d.stack.Seal()
	d.step, d.time = 0, 0

	result := &Result{
		Snapshots: make([]Snapshot, 0, cfg.Steps+1),
		Metrics:   make(map[string]float64),
	}

	for _, m := range d.metrics {
		m.Reset()
	}

	initial := d.Snapshot()
	result.Snapshots = append(result.Snapshots, initial)
	d.observe(initial)

	d.logger.WithFields(log.Fields{
		"layers":    d.stack.Len(),
		"time_step": cfg.TimeStep,
		"steps":     cfg.Steps,
	}).Info("simulation started")

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, &StepError{Step: d.step, Time: d.time, Wrapped: ctx.Err()}
		default:
		}

		prev := d.stack.Temperatures()
		snap := d.Step(cfg.TimeStep)

		if cfg.ValidateState && !snap.IsValid() {
			d.rollback(prev, cfg.TimeStep)
			return result, &StepError{Step: snap.Step, Time: snap.Time, Wrapped: ErrUnstable}
		}

		result.StepsTaken++
		result.Snapshots = append(result.Snapshots, snap)
		d.observe(snap)
	}

	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	d.logger.WithFields(log.Fields{
		"steps":        result.StepsTaken,
		"temperatures": formatTemps(result.Final().Temperatures),
	}).Info("simulation finished")

	return result, nil
}

// Step performs one explicit Euler step of dt seconds and returns the new
// snapshot.
func (d *Driver) Step(dt float64) Snapshot {
	d.stack.Seal()

	// flux pass: reads temperatures, writes fluxes
	for i, layer := range d.stack.Layers() {
		layer.UpdateFlux(d.stack.Below(i), d.stack.Above(i))
	}
	// temperature pass: reads fluxes, writes temperatures
	for _, layer := range d.stack.Layers() {
		layer.UpdateTemperature(dt)
	}

	d.step++
	d.time = float64(d.step) * dt

	snap := d.Snapshot()
	for i, t := range snap.Temperatures {
		d.logger.WithFields(log.Fields{
			"step":  snap.Step,
			"layer": i,
			"flux":  snap.Fluxes[i],
		}).Debugf("layer temperature: %.6f", t)
	}
	return snap
}

// Snapshot captures the current state without advancing.
func (d *Driver) Snapshot() Snapshot {
	return Snapshot{
		Step:         d.step,
		Time:         d.time,
		Temperatures: d.stack.Temperatures(),
		Fluxes:       d.stack.Fluxes(),
	}
}

// Reset restores the given temperatures and rewinds the clock.
func (d *Driver) Reset(temperatures []float64) error {
	if err := d.stack.Restore(temperatures); err != nil {
		return err
	}
	d.step, d.time = 0, 0
	return nil
}

// rollback undoes the step that produced non-finite temperatures.
func (d *Driver) rollback(prev []float64, dt float64) {
	// prev has one entry per layer, so Restore cannot fail here
	_ = d.stack.Restore(prev)
	d.step--
	d.time = float64(d.step) * dt
}

func (d *Driver) observe(snap Snapshot) {
	for _, m := range d.metrics {
		m.Observe(d.stack, snap)
	}
	for _, obs := range d.observers {
		obs.OnStep(snap)
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.TimeStep > 0) || math.IsInf(cfg.TimeStep, 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidTimeStep, cfg.TimeStep)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidSteps, cfg.Steps)
	}
	return nil
}

func formatTemps(temps []float64) string {
	s := "["
	for i, t := range temps {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%.3f", t)
	}
	return s + "]"
}
