package scheduler

import (
	"context"
	"time"

	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/convert"
	"github.com/gr-butler/windmeter/telemetry"
	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

type Pipeline interface {
	Tick() convert.Measurement
	Last() convert.Measurement
}

type Reporter interface {
	Report(ctx context.Context, m convert.Measurement) telemetry.Outcome
}

type Connectivity interface {
	IsConnected() bool
	CheckConnection()
}

// Servicer handles outside requests, such as the status server.
type Servicer interface {
	Service()
}

// State holds the last fire time of each gate in milliseconds since start.
// The counter wraps after about 49 days, elapsed time is computed with
// unsigned subtraction so the gates keep working across the wrap.
type State struct {
	LastSample uint32
	LastReport uint32
}

type Scheduler struct {
	pipeline Pipeline
	reporter Reporter
	link     Connectivity
	servicer Servicer
	clock    clockwork.Clock
	start    time.Time
	sample   uint32
	report   uint32
	idle     time.Duration
	State    State
}

func New(p Pipeline, r Reporter, link Connectivity, servicer Servicer, cfg config.ScheduleConfig, clock clockwork.Clock) *Scheduler {
	s := &Scheduler{
		pipeline: p,
		reporter: r,
		link:     link,
		servicer: servicer,
		clock:    clock,
		start:    clock.Now(),
		sample:   uint32(cfg.SampleInterval.Milliseconds()),
		report:   uint32(cfg.ReportInterval.Milliseconds()),
		idle:     cfg.LoopIdle,
	}
	now := s.millis()
	s.State = State{LastSample: now, LastReport: now}
	return s
}

func (s *Scheduler) millis() uint32 {
	return uint32(s.clock.Since(s.start).Milliseconds())
}

// due reports whether more than interval ms have passed since last.
func due(now, last, interval uint32) bool {
	return now-last > interval
}

// Step runs one loop iteration: connectivity upkeep, outside requests, a
// pipeline tick when due, then a report when due and connected.
func (s *Scheduler) Step(ctx context.Context) (sampled, reported bool) {
	s.link.CheckConnection()
	if s.servicer != nil {
		s.servicer.Service()
	}

	now := s.millis()
	if due(now, s.State.LastSample, s.sample) {
		s.pipeline.Tick()
		s.State.LastSample = now
		sampled = true
	}

	// a disconnected link leaves the gate open so the report goes out as
	// soon as the link is back
	if s.link.IsConnected() && due(now, s.State.LastReport, s.report) {
		s.reporter.Report(ctx, s.pipeline.Last())
		s.State.LastReport = now
		reported = true
	}
	return sampled, reported
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Infof("Sampling every [%vms], reporting every [%vms]", s.sample, s.report)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return ctx.Err()
		default:
		}
		s.Step(ctx)
		s.clock.Sleep(s.idle)
	}
}
