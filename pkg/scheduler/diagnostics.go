package scheduler

import (
	"fmt"
	"math"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// Diagnose explains every slot of sched that has an open seat by counting
// why each roster member could not take it.
func (s *Scheduler) Diagnose(sched models.Schedule) []models.ConflictReason {
	sched = s.view(sched)
	var out []models.ConflictReason
	for _, a := range sched.Slots {
		if len(a.Members) >= 2 {
			continue
		}
		slot := a.Slot
		var reasons []string

		unavailableCount := 0
		scheduledCount := 0
		unwillingCount := 0
		excludedCount := 0

		for _, m := range s.store.Members() {
			if contains(a.Members, m.ID) {
				continue
			}
			v := s.eval.Evaluate(sched, m.ID, slot)
			switch {
			case v.Violated(ExcludedMember):
				excludedCount++
			case v.Violated(Unavailable):
				unavailableCount++
			case v.Violated(AlreadyScheduled):
				scheduledCount++
			case !v.AutoEligible():
				unwillingCount++
			}
		}

		if unavailableCount > 0 {
			reasons = append(reasons, fmt.Sprintf("%d members were not available", unavailableCount))
		}
		if scheduledCount > 0 {
			reasons = append(reasons, fmt.Sprintf("%d members already had a shift", scheduledCount))
		}
		if unwillingCount > 0 {
			label := "open"
			if s.store.Category(slot.Time) == models.Closing {
				label = "close"
			}
			reasons = append(reasons, fmt.Sprintf("%d members prefer not to %s", unwillingCount, label))
		}
		if excludedCount > 0 {
			reasons = append(reasons, fmt.Sprintf("%d members were excluded", excludedCount))
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "no members on the roster")
		}

		out = append(out, models.ConflictReason{
			Slot:    slot,
			Missing: 2 - len(a.Members),
			Reasons: reasons,
		})
	}
	return out
}

// FairnessScore returns a percentage (0-100) representing how evenly shifts
// are spread over the schedulable members. 100% means every member holds the
// same number of shifts.
func (s *Scheduler) FairnessScore(sched models.Schedule) float64 {
	counts := make(map[string]int)
	for _, a := range sched.Slots {
		for _, id := range a.Members {
			counts[id]++
		}
	}

	var shifts []float64
	for _, m := range s.store.Members() {
		if s.store.Excluded(m.ID) {
			continue
		}
		shifts = append(shifts, float64(counts[m.ID]))
	}
	if len(shifts) == 0 {
		return 100.0
	}

	var sum float64
	for _, n := range shifts {
		sum += n
	}
	if sum == 0 {
		return 100.0
	}
	mean := sum / float64(len(shifts))

	var varianceSum float64
	for _, n := range shifts {
		diff := n - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(shifts)))

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
