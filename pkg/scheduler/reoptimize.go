package scheduler

import (
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// Reoptimize keeps every pair in locked, discards all other assignments of
// sched and re-solves the rest of the week around them. The result depends
// only on the active days and the lock set, so repeating the call is a no-op.
func (s *Scheduler) Reoptimize(sched models.Schedule, locked []models.Lock) (models.Schedule, error) {
	start := time.Now()
	if err := s.checkLayout(sched); err != nil {
		s.observe("reoptimize", start, 0, models.Schedule{}, err)
		return models.Schedule{}, err
	}
	out, steps, err := s.solve(sched.Days, locked)
	s.observe("reoptimize", start, steps, out, err)
	if err != nil {
		return models.Schedule{}, err
	}
	s.log.Debugf("reoptimized %d days around %d locks, %d unassigned", len(out.Days), len(out.Locked), len(out.Unassigned))
	return out, nil
}
