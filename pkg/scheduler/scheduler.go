// Package scheduler is the constraint engine: it builds weekly assignments,
// re-solves around locked placements, pairs partners and validates manual edits.
//
// Every operation is a pure function of the availability store and its
// arguments. The Scheduler keeps no schedule between calls; callers that want
// undo simply retain earlier Schedule values.
package scheduler

import (
	"errors"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/logger"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// Options bounds the backtracking search
type Options struct {
	// MaxSteps caps the number of decisions applied. The search always
	// runs until its first complete assignment, whatever the cap.
	MaxSteps int `koanf:"max_steps"`
	// MaxCandidates caps the ranked options kept per slot. It never exceeds
	// the member count.
	MaxCandidates int `koanf:"max_candidates"`
}

// DefaultOptions returns the limits used when none are configured
func DefaultOptions() Options {
	return Options{MaxSteps: 2000, MaxCandidates: 16}
}

// Recorder receives one observation per finished operation
type Recorder interface {
	ObserveOperation(op, outcome string, elapsed time.Duration, steps, unassigned int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, time.Duration, int, int) {}

// Scheduler handles the logic of assigning members to slots
type Scheduler struct {
	store *availability.Store
	eval  Evaluator
	opts  Options
	log   logger.Logger
	rec   Recorder
}

// Option customises a Scheduler
type Option func(*Scheduler)

// WithOptions overrides the search limits
func WithOptions(o Options) Option {
	return func(s *Scheduler) {
		def := DefaultOptions()
		if o.MaxSteps <= 0 {
			o.MaxSteps = def.MaxSteps
		}
		if o.MaxCandidates <= 0 {
			o.MaxCandidates = def.MaxCandidates
		}
		s.opts = o
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.rec = r
		}
	}
}

// NewScheduler creates a new scheduler instance over a built store
func NewScheduler(store *availability.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store: store,
		eval:  NewEvaluator(store),
		opts:  DefaultOptions(),
		log:   logger.NopLogger{},
		rec:   nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store returns the availability store the scheduler was built with
func (s *Scheduler) Store() *availability.Store {
	return s.store
}

// Evaluator returns the shared constraint evaluator
func (s *Scheduler) Evaluator() Evaluator {
	return s.eval
}

func (s *Scheduler) observe(op string, start time.Time, steps int, out models.Schedule, err error) {
	outcome := "ok"
	var inputErr *models.InputError
	switch {
	case err == nil:
	case errors.As(err, &inputErr):
		outcome = "input_error"
	case errors.Is(err, models.ErrInfeasible):
		outcome = "infeasible"
	default:
		outcome = "error"
	}
	s.rec.ObserveOperation(op, outcome, time.Since(start), steps, len(out.Unassigned))
}
