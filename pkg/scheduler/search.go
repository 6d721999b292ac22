package scheduler

import (
	"sort"
	"strings"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
)

// score ranks complete assignments lexicographically: heavy slots covered by
// a Male first, then seats filled, then preference points.
type score struct {
	seats      int
	covered    int
	preference int
}

func (a score) add(b score) score {
	return score{a.seats + b.seats, a.covered + b.covered, a.preference + b.preference}
}

func (a score) sub(b score) score {
	return score{a.seats - b.seats, a.covered - b.covered, a.preference - b.preference}
}

func (a score) better(b score) bool {
	if a.covered != b.covered {
		return a.covered > b.covered
	}
	if a.seats != b.seats {
		return a.seats > b.seats
	}
	return a.preference > b.preference
}

// option is one way to fill a slot: a pair, a single member or nobody
type option struct {
	members []string
	delta   score
}

// decision is one frame of the explicit search stack
type decision struct {
	slot    models.SlotKey
	options []option
	next    int
}

// search is a depth-first branch-and-bound over slot decisions. Backtracking
// pops the stack and retries the next-ranked option of the latest decision.
type search struct {
	store         *availability.Store
	eval          Evaluator
	g             *grid
	open          []models.SlotKey
	decided       map[models.SlotKey]bool
	pool          []string
	stack         []*decision
	current       score
	best          score
	bestFound     bool
	bestAssign    map[models.SlotKey][]string
	ceiling       score
	steps         int
	maxSteps      int
	maxCandidates int
}

func newSearch(store *availability.Store, eval Evaluator, g *grid, open []models.SlotKey, opts Options) *search {
	var pool []string
	for _, m := range store.Members() {
		if !store.Excluded(m.ID) {
			pool = append(pool, m.ID)
		}
	}
	maxCand := opts.MaxCandidates
	if maxCand <= 0 || maxCand > store.Len() {
		maxCand = store.Len()
	}
	if maxCand < 1 {
		maxCand = 1
	}
	return &search{
		store:         store,
		eval:          eval,
		g:             g,
		open:          open,
		decided:       make(map[models.SlotKey]bool, len(open)),
		pool:          pool,
		bestAssign:    make(map[models.SlotKey][]string),
		maxSteps:      opts.MaxSteps,
		maxCandidates: maxCand,
	}
}

// run explores until the best leaf meets the root bound, the tree is
// exhausted or the step budget is spent. The first leaf is always reached
// because nothing is pruned or popped before a best exists.
func (s *search) run() {
	for {
		if s.bestFound && s.steps >= s.maxSteps {
			return
		}
		if len(s.stack) == len(s.open) {
			s.recordLeaf()
			if !s.ceiling.better(s.best) {
				return
			}
			if !s.backtrack() {
				return
			}
			continue
		}

		cands := s.candidates()
		if len(s.stack) == 0 && !s.bestFound {
			s.ceiling = s.bound(cands)
		}
		if s.bestFound && !s.bound(cands).better(s.best) {
			if !s.backtrack() {
				return
			}
			continue
		}

		slot := s.nextSlot(cands)
		d := &decision{slot: slot, options: s.options(slot, cands)}
		s.stack = append(s.stack, d)
		s.apply(d)
	}
}

func (s *search) apply(d *decision) {
	opt := d.options[d.next]
	s.g.place(d.slot, opt.members...)
	s.current = s.current.add(opt.delta)
	s.decided[d.slot] = true
	s.steps++
}

func (s *search) undo(d *decision) {
	opt := d.options[d.next]
	s.g.remove(d.slot, opt.members...)
	s.current = s.current.sub(opt.delta)
	delete(s.decided, d.slot)
}

// backtrack undoes the most recent decision and moves it to its next
// option, unwinding further while decisions are exhausted.
func (s *search) backtrack() bool {
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.undo(top)
		top.next++
		if top.next < len(top.options) {
			s.apply(top)
			return true
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
	return false
}

func (s *search) recordLeaf() {
	if s.bestFound && !s.current.better(s.best) {
		return
	}
	s.best = s.current
	s.bestFound = true
	s.bestAssign = make(map[models.SlotKey][]string, len(s.stack))
	for _, d := range s.stack {
		s.bestAssign[d.slot] = append([]string(nil), d.options[d.next].members...)
	}
}

// candidates lists, for every undecided slot, the members the solver may
// place there right now.
func (s *search) candidates() map[models.SlotKey][]string {
	out := make(map[models.SlotKey][]string)
	for _, slot := range s.open {
		if s.decided[slot] {
			continue
		}
		var ids []string
		for _, id := range s.pool {
			if s.eval.Evaluate(s.g, id, slot).AutoEligible() {
				ids = append(ids, id)
			}
		}
		out[slot] = ids
	}
	return out
}

// bound is an optimistic score for any completion of the current state.
func (s *search) bound(cands map[models.SlotKey][]string) score {
	var seats, covered int
	bestPref := make(map[string]int)
	males := make(map[string]bool)
	for slot, ids := range cands {
		seats += min(2, len(ids))
		needsMale := s.store.Category(slot.Time).NeedsMale()
		hasMale := false
		for _, id := range ids {
			m, _ := s.store.Member(id)
			p := s.prefPoints(m, slot)
			if cur, ok := bestPref[id]; !ok || p > cur {
				bestPref[id] = p
			}
			if m.IsMale() {
				males[id] = true
				hasMale = true
			}
		}
		if needsMale && hasMale {
			covered++
		}
	}
	seats = min(seats, len(bestPref))
	covered = min(covered, len(males))

	prefs := make([]int, 0, len(bestPref))
	for _, p := range bestPref {
		prefs = append(prefs, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(prefs)))
	pref := 0
	for i := 0; i < seats && i < len(prefs); i++ {
		pref += prefs[i]
	}
	return s.current.add(score{seats: seats, covered: covered, preference: pref})
}

// nextSlot picks the most constrained undecided slot: fewest candidates,
// ties broken by week order.
func (s *search) nextSlot(cands map[models.SlotKey][]string) models.SlotKey {
	var pick models.SlotKey
	best := -1
	for _, slot := range s.open {
		if s.decided[slot] {
			continue
		}
		if n := len(cands[slot]); best < 0 || n < best {
			pick, best = slot, n
		}
	}
	return pick
}

type rankedOption struct {
	opt   option
	pref  int
	waste int
	flex  int
	key   string
}

// options ranks the ways to fill slot. Pairs come first; a slot under the
// heavy-lifting rule only gets pairs with a Male while any eligible Male
// exists. Singles are offered only when no pair can be formed, and leaving
// the slot empty is always the last resort.
func (s *search) options(slot models.SlotKey, cands map[models.SlotKey][]string) []option {
	ids := cands[slot]
	cat := s.store.Category(slot.Time)

	members := make([]models.Member, len(ids))
	requireMale := false
	for i, id := range ids {
		members[i], _ = s.store.Member(id)
		if cat.NeedsMale() && members[i].IsMale() {
			requireMale = true
		}
	}

	flex := make(map[string]int, len(ids))
	heavyPending := false
	for other, otherIDs := range cands {
		if other == slot {
			continue
		}
		if s.store.Category(other.Time).NeedsMale() {
			heavyPending = true
		}
		for _, id := range otherIDs {
			flex[id]++
		}
	}

	build := func(group ...models.Member) rankedOption {
		r := rankedOption{opt: option{delta: score{seats: len(group)}}}
		males := 0
		keys := make([]string, len(group))
		for i, m := range group {
			r.opt.members = append(r.opt.members, m.ID)
			r.pref += s.prefPoints(m, slot)
			r.flex += flex[m.ID]
			keys[i] = m.ID
			if m.IsMale() {
				males++
			}
		}
		switch {
		case cat.NeedsMale() && males > 0:
			r.waste = males - 1
			r.opt.delta.covered = 1
		case !cat.NeedsMale() && heavyPending:
			r.waste = males
		}
		r.opt.delta.preference = r.pref
		r.key = strings.Join(keys, "\x00")
		return r
	}

	var ranked []rankedOption
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if requireMale && !members[i].IsMale() && !members[j].IsMale() {
				continue
			}
			ranked = append(ranked, build(members[i], members[j]))
		}
	}
	if len(ranked) == 0 {
		for _, m := range members {
			if requireMale && !m.IsMale() {
				continue
			}
			ranked = append(ranked, build(m))
		}
	}
	if len(ranked) == 0 {
		return []option{{}}
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.pref != b.pref {
			return a.pref > b.pref
		}
		if a.waste != b.waste {
			return a.waste < b.waste
		}
		if a.flex != b.flex {
			return a.flex < b.flex
		}
		return a.key < b.key
	})
	if len(ranked) > s.maxCandidates {
		ranked = ranked[:s.maxCandidates]
	}
	// Leaving the slot open comes last, so its members can go elsewhere.
	out := make([]option, len(ranked), len(ranked)+1)
	for i, r := range ranked {
		out[i] = r.opt
	}
	return append(out, option{})
}

// prefPoints rewards a willing opener/closer in a heavy slot and a member
// placed on one of their preferred days.
func (s *search) prefPoints(m models.Member, slot models.SlotKey) int {
	p := 0
	if m.PreferenceFor(s.store.Category(slot.Time)) == models.Willing {
		p++
	}
	if m.Prefers(slot.Day) {
		p++
	}
	return p
}
