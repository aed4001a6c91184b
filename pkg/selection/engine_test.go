// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nofutz/wifi-reconnect/pkg/wifi"
)

func snapshot(qualities map[string]float64) wifi.Snapshot {
	s := wifi.Snapshot{}
	for essid, q := range qualities {
		s[essid] = wifi.Record{Essid: essid, Quality: q}
	}
	return s
}

func TestSelectTarget(t *testing.T) {
	pol := DefaultPolicy()
	tests := []struct {
		name   string
		active string
		scan   map[string]float64
		prefs  Preferences
		want   string
	}{
		{
			name:   "stay on strong preferred, guest never considered",
			active: "secA",
			scan:   map[string]float64{"secA": 0.9, "secB": 0.4, "guest": 0.95},
			prefs:  Preferences{Preferred: []string{"secA", "secB"}, NonPreferred: []string{"guest"}},
			want:   "secA",
		},
		{
			name:   "active below floor switches in-tier without margin",
			active: "secA",
			scan:   map[string]float64{"secA": 0.3, "secB": 0.6},
			prefs:  Preferences{Preferred: []string{"secA", "secB"}},
			want:   "secB",
		},
		{
			name:   "margin keeps non-preferred incumbent",
			active: "guest1",
			scan:   map[string]float64{"guest1": 0.7, "guest2": 0.78, "secA": 0.2},
			prefs:  Preferences{Preferred: []string{"secA"}, NonPreferred: []string{"guest1", "guest2"}},
			want:   "guest1",
		},
		{
			name:   "in-range preferred beats stronger non-preferred active",
			active: "open1",
			scan:   map[string]float64{"secA": 0.6, "open1": 0.9},
			prefs:  Preferences{Preferred: []string{"secA"}, NonPreferred: []string{"open1"}},
			want:   "secA",
		},
		{
			name:   "margin blocks a same-tier sidegrade",
			active: "secA",
			scan:   map[string]float64{"secA": 0.8, "secB": 0.9},
			prefs:  Preferences{Preferred: []string{"secA", "secB"}},
			want:   "secA",
		},
		{
			name:   "margin cleared by a big enough gain",
			active: "secA",
			scan:   map[string]float64{"secA": 0.6, "secB": 0.8},
			prefs:  Preferences{Preferred: []string{"secA", "secB"}},
			want:   "secB",
		},
		{
			name:   "preferred active below floor falls back to strong guest",
			active: "secA",
			scan:   map[string]float64{"secA": 0.3, "guest": 0.9},
			prefs:  Preferences{Preferred: []string{"secA"}, NonPreferred: []string{"guest"}},
			want:   "guest",
		},
		{
			name:   "no margin between candidates once already switching",
			active: "open1",
			scan:   map[string]float64{"open1": 0.9, "secA": 0.6, "secB": 0.65},
			prefs:  Preferences{Preferred: []string{"secA", "secB"}, NonPreferred: []string{"open1"}},
			want:   "secB",
		},
		{
			name:   "candidates absent from the scan are skipped",
			active: "secA",
			scan:   map[string]float64{"secA": 0.6},
			prefs:  Preferences{Preferred: []string{"secA", "secB"}, NonPreferred: []string{"guest"}},
			want:   "secA",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectTarget(tt.active, snapshot(tt.scan), tt.prefs, pol)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Quality exactly at the floor sits on two deliberate boundaries: such
// a candidate is not skipped (the upgrade cut-off is strictly below the
// floor), but it also doesn't satisfy the preferred short-circuit,
// which requires strictly above. Both follow the original comparisons.
func TestSelectTargetQualityExactlyAtFloor(t *testing.T) {
	pol := DefaultPolicy()

	t.Run("exact-floor preferred does not short-circuit tier two", func(t *testing.T) {
		prefs := Preferences{Preferred: []string{"secA"}, NonPreferred: []string{"guest1"}}
		scan := snapshot(map[string]float64{"secA": pol.QualityFloor, "guest1": 0.9})

		got, err := SelectTarget("guest1", scan, prefs, pol)
		require.NoError(t, err)
		assert.Equal(t, "guest1", got)
	})

	t.Run("active exactly at floor keeps the margin", func(t *testing.T) {
		prefs := Preferences{Preferred: []string{"secA", "secB"}}
		scan := snapshot(map[string]float64{"secA": pol.QualityFloor, "secB": pol.QualityFloor + 0.1})

		// 0.6 doesn't clear 0.5 + the 0.15 margin; at the floor (not
		// below it) the active network is still protected.
		got, err := SelectTarget("secA", scan, prefs, pol)
		require.NoError(t, err)
		assert.Equal(t, "secA", got)
	})
}

func TestSelectTargetEmptySnapshot(t *testing.T) {
	prefs := Preferences{Preferred: []string{"secA"}, NonPreferred: []string{"guest"}}

	got, err := SelectTarget("secA", wifi.Snapshot{}, prefs, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "secA", got)

	// nil snapshot behaves like an empty one
	got, err = SelectTarget("secA", nil, prefs, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "secA", got)
}

func TestSelectTargetConfigErrors(t *testing.T) {
	pol := DefaultPolicy()
	scan := snapshot(map[string]float64{"secA": 0.9, "guest": 0.7})

	tests := []struct {
		name   string
		active string
		scan   wifi.Snapshot
		prefs  Preferences
	}{
		{
			name:   "no active network",
			active: "",
			scan:   scan,
			prefs:  Preferences{Preferred: []string{"secA"}},
		},
		{
			name:   "ambiguous preference for active network",
			active: "secA",
			scan:   scan,
			prefs:  Preferences{Preferred: []string{"secA"}, NonPreferred: []string{"secA", "guest"}},
		},
		{
			name:   "active network missing from scan data",
			active: "secC",
			scan:   scan,
			prefs:  Preferences{Preferred: []string{"secC"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectTarget(tt.active, tt.scan, tt.prefs, pol)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

// An ambiguous listing only matters for the active network itself.
func TestSelectTargetAmbiguityOnlyFatalForActive(t *testing.T) {
	prefs := Preferences{
		Preferred:    []string{"secA", "weird"},
		NonPreferred: []string{"weird"},
	}
	scan := snapshot(map[string]float64{"secA": 0.9, "weird": 0.95})

	got, err := SelectTarget("secA", scan, prefs, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "secA", got)
}

func TestSelectTargetDeterminism(t *testing.T) {
	prefs := Preferences{Preferred: []string{"secA", "secB"}, NonPreferred: []string{"guest"}}
	scan := snapshot(map[string]float64{"secA": 0.6, "secB": 0.7, "guest": 0.9})

	first, err := SelectTarget("secA", scan, prefs, DefaultPolicy())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := SelectTarget("secA", scan, prefs, DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// Raising the margin can only turn switches into non-switches, never
// the other way around.
func TestSwitchMarginMonotonic(t *testing.T) {
	prefs := Preferences{Preferred: []string{"secA", "secB"}}
	scan := snapshot(map[string]float64{"secA": 0.7, "secB": 0.78})

	switched := false
	prevSwitched := true
	for _, m := range []float64{0.01, 0.05, 0.07, 0.08, 0.1, 0.2, 0.5} {
		pol := Policy{QualityFloor: 0.5, SwitchMargin: m}
		got, err := SelectTarget("secA", scan, prefs, pol)
		require.NoError(t, err)
		switched = got != "secA"
		if switched && !prevSwitched {
			t.Fatalf("margin %v caused a switch that a smaller margin suppressed", m)
		}
		prevSwitched = switched
	}
}

// Whenever some preferred network is in range above the floor, the
// decision never lands on a non-preferred network.
func TestTierPrecedence(t *testing.T) {
	qualities := []float64{0.2, 0.55, 0.7, 0.95}
	actives := []string{"secA", "guest1"}
	prefs := Preferences{
		Preferred:    []string{"secA", "secB"},
		NonPreferred: []string{"guest1", "guest2"},
	}
	pol := DefaultPolicy()

	for _, active := range actives {
		for _, qa := range qualities {
			for _, qb := range qualities {
				for _, qg := range qualities {
					scan := snapshot(map[string]float64{
						active: qa, "secB": qb, "guest2": qg,
					})
					hasPreferred := false
					for _, w := range prefs.Preferred {
						if rec, ok := scan[w]; ok && rec.Quality > pol.QualityFloor {
							hasPreferred = true
						}
					}
					got, err := SelectTarget(active, scan, prefs, pol)
					require.NoError(t, err)
					if hasPreferred && prefs.isNonPreferred(got) {
						t.Errorf("active=%s qa=%v qb=%v qg=%v: chose non-preferred %s with a preferred network in range",
							active, qa, qb, qg, got)
					}
				}
			}
		}
	}
}
