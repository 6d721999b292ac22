package scheduler

import (
	"sort"

	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// grid is the solver's mutable working copy of a week. It never escapes the
// package; callers only ever see models.Schedule values built from it.
type grid struct {
	days      []models.Day
	times     int
	active    map[models.SlotKey]bool
	occupants map[models.SlotKey][]string
	placed    map[string][]models.SlotKey
}

func newGrid(days []models.Day, times int) *grid {
	g := &grid{
		days:      days,
		times:     times,
		active:    make(map[models.SlotKey]bool, len(days)*times),
		occupants: make(map[models.SlotKey][]string),
		placed:    make(map[string][]models.SlotKey),
	}
	for _, d := range days {
		for t := 0; t < times; t++ {
			g.active[models.SlotKey{Day: d, Time: t}] = true
		}
	}
	return g
}

// slots returns every active slot in week order
func (g *grid) slots() []models.SlotKey {
	out := make([]models.SlotKey, 0, len(g.active))
	for _, d := range g.days {
		for t := 0; t < g.times; t++ {
			out = append(out, models.SlotKey{Day: d, Time: t})
		}
	}
	return out
}

func (g *grid) Active(k models.SlotKey) bool {
	return g.active[k]
}

func (g *grid) Occupants(k models.SlotKey) []string {
	return g.occupants[k]
}

func (g *grid) SlotsOf(memberID string) []models.SlotKey {
	return g.placed[memberID]
}

func (g *grid) place(k models.SlotKey, ids ...string) {
	for _, id := range ids {
		g.occupants[k] = append(g.occupants[k], id)
		g.placed[id] = append(g.placed[id], k)
		sort.Slice(g.placed[id], func(i, j int) bool { return g.placed[id][i].Less(g.placed[id][j]) })
	}
}

func (g *grid) remove(k models.SlotKey, ids ...string) {
	for _, id := range ids {
		g.occupants[k] = without(g.occupants[k], id)
		if len(g.occupants[k]) == 0 {
			delete(g.occupants, k)
		}
		slots := g.placed[id]
		for i, s := range slots {
			if s == k {
				slots = append(slots[:i:i], slots[i+1:]...)
				break
			}
		}
		if len(slots) == 0 {
			delete(g.placed, id)
		} else {
			g.placed[id] = slots
		}
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
