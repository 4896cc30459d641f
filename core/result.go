package core

// Tier says how an answer was obtained.
type Tier int

const (
	// TierExact answers come from analytic geometry.
	TierExact Tier = iota
	// TierBoundingBox answers stand in axis-aligned bounding boxes for the
	// true hulls. A false answer is never produced on this tier: disjoint or
	// non-nested boxes already settle the question exactly.
	TierBoundingBox
)

func (t Tier) String() string {
	if t == TierBoundingBox {
		return "bounding_box"
	}
	return "exact"
}

// Result is a boolean answer tagged with its tier.
type Result struct {
	Value bool
	Tier  Tier
}

// IsExact reports whether the answer came from analytic geometry.
func (r Result) IsExact() bool { return r.Tier == TierExact }

// Measure is a scalar answer tagged with its tier.
type Measure struct {
	Value float64
	Tier  Tier
}

// IsExact reports whether the measure came from analytic geometry.
func (m Measure) IsExact() bool { return m.Tier == TierExact }

func exact(v bool) Result { return Result{Value: v, Tier: TierExact} }

func approximate(v bool) Result { return Result{Value: v, Tier: TierBoundingBox} }

// anyOf ORs results: an exact true wins, then an approximate true; otherwise
// the answer is an exact false.
func anyOf(rs ...Result) Result {
	out := exact(false)
	for _, r := range rs {
		if !r.Value {
			continue
		}
		if r.IsExact() {
			return r
		}
		out = r
	}
	return out
}
