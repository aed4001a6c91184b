// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selection

import (
	"github.com/nofutz/wifi-reconnect/pkg/wifi"
)

// SelectTarget returns the ESSID the interface should be associated
// with after this invocation. It may return the active ESSID, meaning
// no change. The function is pure: same inputs, same answer.
//
// An empty snapshot carries no information to act on and yields the
// active network unchanged. With a non-empty snapshot the active
// network must be present in it and must not belong to both preference
// tiers, otherwise a ConfigError is returned and no decision is made.
func SelectTarget(active string, scan wifi.Snapshot, prefs Preferences, pol Policy) (string, error) {
	if len(scan) == 0 {
		return active, nil
	}
	if active == "" {
		return "", configErrorf("couldn't find active wifi")
	}
	activeIsPreferred := prefs.isPreferred(active)
	if activeIsPreferred && prefs.isNonPreferred(active) {
		return "", configErrorf("%s cannot be both preferred and non-preferred", active)
	}
	activeRec, ok := scan[active]
	if !ok {
		return "", configErrorf("no scan data on active wifi %s", active)
	}

	// Below the floor the active network is not worth protecting:
	// same-tier moves skip the margin and a move down a tier is
	// permitted.
	allowDowngrade := activeRec.Quality < pol.QualityFloor

	best := active
	bestQuality := activeRec.Quality
	bestIsPreferred := activeIsPreferred

	// First pass: preferred networks, in configured order.
	for _, w := range prefs.Preferred {
		rec, ok := scan[w]
		if !ok || rec.Quality < pol.QualityFloor {
			// never upgrade to a weak or undetected network
			continue
		}
		if !bestIsPreferred {
			// Any in-range preferred network beats a non-preferred
			// incumbent outright. Later preferred candidates compete
			// against it on quality below.
			best, bestQuality, bestIsPreferred = w, rec.Quality, true
			continue
		}
		if rec.Quality > bestQuality+pol.margin(best == active, allowDowngrade) {
			best, bestQuality = w, rec.Quality
		}
	}

	// A preferred result above the floor settles it. Don't scan the
	// non-preferred tier for something stronger.
	if bestIsPreferred && bestQuality > pol.QualityFloor {
		return best, nil
	}

	// Second pass: non-preferred networks, in configured order.
	for _, w := range prefs.NonPreferred {
		rec, ok := scan[w]
		if !ok || rec.Quality < pol.QualityFloor {
			continue
		}
		if rec.Quality > bestQuality+pol.margin(best == active, allowDowngrade) {
			best, bestQuality = w, rec.Quality
		}
	}
	return best, nil
}

// margin is the hysteresis charged against a candidate. The switch
// margin applies only while the incumbent is still the active network
// and that network is above the floor; once a move is already decided,
// or the active network is unacceptable anyway, strict improvement
// suffices.
func (p Policy) margin(bestIsActive, allowDowngrade bool) float64 {
	if bestIsActive && !allowDowngrade {
		return p.SwitchMargin
	}
	return 0
}
