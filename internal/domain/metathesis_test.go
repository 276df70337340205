package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestZones_StartLimit(t *testing.T) {
	zs := Zones{1, 1, 0, 1, 1}

	require.Equal(t, 0, zs.Start(ZoneLeftEnv))
	require.Equal(t, 1, zs.Limit(ZoneLeftEnv))
	require.Equal(t, 1, zs.Start(ZoneLeftSwitch))
	require.Equal(t, -1, zs.Start(ZoneMiddle), "absent zone has no start")
	require.Equal(t, -1, zs.Limit(ZoneMiddle))
	require.Equal(t, 2, zs.Offset(ZoneMiddle), "absent zone still has an insertion offset")
	require.Equal(t, 2, zs.Start(ZoneRightSwitch))
	require.Equal(t, 3, zs.Start(ZoneRightEnv))
	require.Equal(t, 4, zs.Total())
}

func TestZones_ZoneAt(t *testing.T) {
	zs := Zones{2, 0, 1, 0, 1}

	tests := []struct {
		pos  int
		want Zone
		ok   bool
	}{
		{0, ZoneLeftEnv, true},
		{1, ZoneLeftEnv, true},
		{2, ZoneMiddle, true},
		{3, ZoneRightEnv, true},
		{4, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := zs.ZoneAt(tt.pos)
		require.Equal(t, tt.ok, ok, "pos %d", tt.pos)
		if tt.ok {
			require.Equal(t, tt.want, got, "pos %d", tt.pos)
		}
	}
}

func TestZonesFromIndices_RoundTrip(t *testing.T) {
	zs := Zones{1, 0, 2, 1, 0}
	back, err := ZonesFromIndices(zs.Indices())
	require.NoError(t, err)
	require.Equal(t, zs, back)
}

func TestZonesFromIndices_RejectsGap(t *testing.T) {
	var idx LegacyIndices
	for i := range idx {
		idx[i] = [2]int{-1, -1}
	}
	idx[ZoneLeftEnv] = [2]int{0, 1}
	idx[ZoneRightEnv] = [2]int{2, 3}

	_, err := ZonesFromIndices(idx)
	require.Error(t, err)
}

// TestZones_PartitionProperty grows and shrinks random zones and checks that
// the derived indices always tile [0, Total) in zone order.
func TestZones_PartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var zs Zones
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			z := Zone(rapid.IntRange(0, int(numZones)-1).Draw(t, "zone"))
			delta := rapid.SampledFrom([]int{-1, 1}).Draw(t, "delta")
			zs = zs.Grow(z, delta)
		}

		next := 0
		for _, z := range AllZones {
			if zs.Len(z) == 0 {
				if zs.Start(z) != -1 || zs.Limit(z) != -1 {
					t.Fatalf("empty zone %s reports [%d,%d)", z, zs.Start(z), zs.Limit(z))
				}
				continue
			}
			if zs.Start(z) != next {
				t.Fatalf("zone %s starts at %d, want %d", z, zs.Start(z), next)
			}
			next = zs.Limit(z)
		}
		if next != zs.Total() {
			t.Fatalf("zones end at %d, total %d", next, zs.Total())
		}
		for pos := 0; pos < zs.Total(); pos++ {
			z, ok := zs.ZoneAt(pos)
			if !ok || pos < zs.Start(z) || pos >= zs.Limit(z) {
				t.Fatalf("position %d not inside its zone %s", pos, z)
			}
		}
	})
}

func TestMetathesisRule_Validate(t *testing.T) {
	r := NewMetathesisRule("m")
	r.StrucDesc = []Context{NewSegment(nil), NewSegment(nil)}
	r.Zones = Zones{1, 0, 0, 0, 0}
	require.Error(t, r.Validate())

	r.Zones = Zones{1, 0, 0, 1, 0}
	require.NoError(t, r.Validate())
	require.Len(t, r.ZoneContexts(ZoneRightSwitch), 1)
}
