package domain

import "fmt"

// Zone is one of the five contiguous regions of a metathesis structural
// description, in order.
type Zone int

const (
	ZoneLeftEnv Zone = iota
	ZoneLeftSwitch
	ZoneMiddle
	ZoneRightSwitch
	ZoneRightEnv
	numZones
)

// AllZones lists the zones in structural description order.
var AllZones = [numZones]Zone{ZoneLeftEnv, ZoneLeftSwitch, ZoneMiddle, ZoneRightSwitch, ZoneRightEnv}

func (z Zone) String() string {
	switch z {
	case ZoneLeftEnv:
		return "left-env"
	case ZoneLeftSwitch:
		return "left-switch"
	case ZoneMiddle:
		return "middle"
	case ZoneRightSwitch:
		return "right-switch"
	case ZoneRightEnv:
		return "right-env"
	}
	return fmt.Sprintf("Zone(%d)", int(z))
}

// Zones stores the length of each zone. Because the zones are contiguous and
// ordered, the lengths alone fix every boundary; the only property to keep is
// that they sum to the length of the structural description.
type Zones [numZones]int

// Len returns the number of contexts in z.
func (zs Zones) Len(z Zone) int { return zs[z] }

// Total returns the summed length of all zones.
func (zs Zones) Total() int {
	n := 0
	for _, l := range zs {
		n += l
	}
	return n
}

// Offset returns the position where z begins, whether or not it is present.
func (zs Zones) Offset(z Zone) int {
	n := 0
	for i := Zone(0); i < z; i++ {
		n += zs[i]
	}
	return n
}

// Start returns the first index of z, or -1 when the zone is empty.
func (zs Zones) Start(z Zone) int {
	if zs[z] == 0 {
		return -1
	}
	return zs.Offset(z)
}

// Limit returns one past the last index of z, or -1 when the zone is empty.
func (zs Zones) Limit(z Zone) int {
	if zs[z] == 0 {
		return -1
	}
	return zs.Offset(z) + zs[z]
}

// ZoneAt returns the zone holding position pos.
func (zs Zones) ZoneAt(pos int) (Zone, bool) {
	if pos < 0 {
		return 0, false
	}
	for _, z := range AllZones {
		if pos < zs[z] {
			return z, true
		}
		pos -= zs[z]
	}
	return 0, false
}

// Grow returns zs with z resized by delta. Lengths never go negative.
func (zs Zones) Grow(z Zone, delta int) Zones {
	zs[z] += delta
	if zs[z] < 0 {
		zs[z] = 0
	}
	return zs
}

// LegacyIndices is the (start, limit) view of the zones used by the
// persisted rule format of older rule files. Absent zones are (-1, -1).
type LegacyIndices [numZones][2]int

// Indices derives the legacy view from the run lengths.
func (zs Zones) Indices() LegacyIndices {
	var out LegacyIndices
	for _, z := range AllZones {
		out[z] = [2]int{zs.Start(z), zs.Limit(z)}
	}
	return out
}

// ZonesFromIndices rebuilds run lengths from a legacy view. Absent zones
// contribute nothing; the present zones must be contiguous from zero.
func ZonesFromIndices(idx LegacyIndices) (Zones, error) {
	var zs Zones
	next := 0
	for _, z := range AllZones {
		start, limit := idx[z][0], idx[z][1]
		if start < 0 {
			continue
		}
		if start != next || limit < start {
			return Zones{}, fmt.Errorf("zone %s [%d,%d) is not contiguous at %d", z, start, limit, next)
		}
		zs[z] = limit - start
		next = limit
	}
	return zs, nil
}

// MetathesisRule switches two regions of its structural description.
type MetathesisRule struct {
	ruleBase
	StrucDesc []Context
	Zones     Zones
	// MiddleWithLeftSwitch shows the middle zone in the left switch cell
	// instead of the right one.
	MiddleWithLeftSwitch bool
}

// NewMetathesisRule creates an empty metathesis rule.
func NewMetathesisRule(name string) *MetathesisRule {
	return &MetathesisRule{ruleBase: ruleBase{base: newBase(), name: name}}
}

func (r *MetathesisRule) Kind() RuleKind { return RuleMetathesis }

func (r *MetathesisRule) Roots() []Context { return r.StrucDesc }

// Validate checks that the zones cover the structural description exactly.
func (r *MetathesisRule) Validate() error {
	if t := r.Zones.Total(); t != len(r.StrucDesc) {
		return fmt.Errorf("zones cover %d contexts, structural description has %d", t, len(r.StrucDesc))
	}
	return nil
}

// ZoneContexts returns the slice of the structural description in z.
func (r *MetathesisRule) ZoneContexts(z Zone) []Context {
	off := r.Zones.Offset(z)
	return r.StrucDesc[off : off+r.Zones[z]]
}

func (r *MetathesisRule) clone(c *cloner) Rule {
	return &MetathesisRule{
		ruleBase:             r.ruleBase,
		StrucDesc:            c.contexts(r.StrucDesc),
		Zones:                r.Zones,
		MiddleWithLeftSwitch: r.MiddleWithLeftSwitch,
	}
}

func (r *MetathesisRule) restore(from Rule) {
	src := from.(*MetathesisRule)
	r.name = src.name
	r.StrucDesc = src.StrucDesc
	r.Zones = src.Zones
	r.MiddleWithLeftSwitch = src.MiddleWithLeftSwitch
}
