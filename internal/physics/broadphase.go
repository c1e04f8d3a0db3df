package physics

import "sort"

// Broadphase finds body pairs whose bounding boxes may overlap.
type Broadphase interface {
	Pairs(bodies []*Body) [][2]*Body
}

// SAPBroadphase sorts bodies along one axis by AABB lower bound and sweeps
// the sorted list, so only neighbours along the axis are tested.
type SAPBroadphase struct {
	Axis int
}

func NewSAPBroadphase() *SAPBroadphase { return &SAPBroadphase{Axis: 0} }

type bounds struct {
	body   *Body
	lo, hi [3]float64
}

func (s *SAPBroadphase) Pairs(bodies []*Body) [][2]*Body {
	entries := make([]bounds, len(bodies))
	for i, b := range bodies {
		lo, hi := b.aabb()
		entries[i] = bounds{body: b, lo: lo, hi: hi}
	}
	axis := s.Axis
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].lo[axis] < entries[j].lo[axis] })

	var pairs [][2]*Body
	for i := range entries {
		a := entries[i]
		for j := i + 1; j < len(entries); j++ {
			b := entries[j]
			if b.lo[axis] > a.hi[axis] {
				break
			}
			if !needsTest(a.body, b.body) || !overlaps(a, b) {
				continue
			}
			pairs = append(pairs, [2]*Body{a.body, b.body})
		}
	}
	return pairs
}

func overlaps(a, b bounds) bool {
	for k := 0; k < 3; k++ {
		if a.lo[k] > b.hi[k] || b.lo[k] > a.hi[k] {
			return false
		}
	}
	return true
}

// needsTest skips pairs that cannot produce a response.
func needsTest(a, b *Body) bool {
	if a.Type == Static && b.Type == Static {
		return false
	}
	aIdle := a.Type == Static || a.IsSleeping()
	bIdle := b.Type == Static || b.IsSleeping()
	return !(aIdle && bIdle)
}
