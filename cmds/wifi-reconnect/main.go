// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package main reassociates the machine with the best nearby wireless
// network. It is meant to be run periodically (say, from cron): it
// scans, decides whether a better network than the current one is in
// reach, and if so asks NetworkManager to switch. Preferred networks
// always win over non-preferred ones, and a quality margin keeps the
// machine from flapping between two networks of similar strength.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nofutz/wifi-reconnect/pkg/lockfile"
	"github.com/nofutz/wifi-reconnect/pkg/selection"
	"github.com/nofutz/wifi-reconnect/pkg/wifi"
)

var (
	preferred        = flag.String("preferred", "", "comma separated preferred network names; quote a name with \"\" if it contains a comma")
	notPreferred     = flag.String("not_preferred", "", "comma separated usable but non-preferred network names")
	qualityThreshold = flag.Int("signal_quality_threshold", 50, "minimal signal quality percent (1-100) for a network to be worth switching to")
	deltaThreshold   = flag.Int("signal_quality_delta_threshold", 15, "signal quality percent gain (1-100) required to switch within a preference class")
	iface            = flag.String("interface", "wlan0", "which interface is wlan")
	dryRun           = flag.Bool("dry_run", false, "don't do anything, just log what would be done")
	lockPath         = flag.String("lockfile", "", "path to lockfile; a relative path is evaluated under $HOME")
	lockFlag         = flag.Bool("lock", false, "lock the reconnector")
	unlockFlag       = flag.Bool("unlock", false, "unlock the reconnector")
)

type config struct {
	prefs    selection.Preferences
	policy   selection.Policy
	iface    string
	dryRun   bool
	lockfile string
	lock     bool
	unlock   bool
}

func configFromFlags() (config, error) {
	pref, err := parseNetworkList(*preferred)
	if err != nil {
		return config{}, err
	}
	nonPref, err := parseNetworkList(*notPreferred)
	if err != nil {
		return config{}, err
	}
	pol := selection.Policy{
		QualityFloor: float64(*qualityThreshold) / 100,
		SwitchMargin: float64(*deltaThreshold) / 100,
	}
	if err := pol.Validate(); err != nil {
		return config{}, err
	}
	return config{
		prefs:    selection.Preferences{Preferred: pref, NonPreferred: nonPref},
		policy:   pol,
		iface:    *iface,
		dryRun:   *dryRun,
		lockfile: *lockPath,
		lock:     *lockFlag,
		unlock:   *unlockFlag,
	}, nil
}

// parseNetworkList splits a comma separated list of network names.
// Quoting follows CSV rules so names containing commas stay intact.
func parseNetworkList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	fields, err := csv.NewReader(strings.NewReader(s)).Read()
	if err != nil {
		return nil, fmt.Errorf("parsing network list %q: %w", s, err)
	}
	return fields, nil
}

// prescan handles the lock administration that runs before any
// scanning. It reports whether this invocation should stop here.
func prescan(c config) (bool, error) {
	if c.lock && c.unlock {
		return false, errors.New("cannot do both --lock and --unlock at the same time")
	}
	if (c.lock || c.unlock) && c.lockfile == "" {
		return false, errors.New("--lock and --unlock require a lockfile")
	}
	if c.lockfile == "" {
		return false, nil
	}
	path, err := lockfile.Resolve(c.lockfile)
	if err != nil {
		return false, err
	}
	if c.lock {
		if c.dryRun {
			log.Printf("lock(%s)", path)
		} else if err := lockfile.Lock(path); err != nil {
			return false, err
		} else {
			log.Printf("Locked via file: %s", path)
		}
	}
	if c.unlock {
		if c.dryRun {
			log.Printf("unlock(%s)", path)
		} else if err := lockfile.Unlock(path); err != nil {
			return false, err
		}
	}
	if lockfile.IsLocked(path) {
		log.Printf("Reconnect is locked via %s", path)
		return true, nil
	}
	return false, nil
}

// run is one scan/decide/activate cycle over the given worker.
func run(c config, w wifi.WiFi, stdout, stderr io.Writer) error {
	active, err := w.ActiveESSID(stdout, stderr)
	if err != nil {
		return err
	}
	names := append(append([]string{}, c.prefs.Preferred...), c.prefs.NonPreferred...)
	// The active network may be hidden and listed in neither tier. It
	// must be part of the scan request or the decision can't compare
	// anything against it.
	if active != "" && !slices.Contains(names, active) {
		names = append(names, active)
	}
	scanned, err := w.Scan(stdout, stderr, names...)
	if err != nil {
		return err
	}
	better, err := selection.SelectTarget(active, scanned, c.prefs, c.policy)
	if err != nil {
		return err
	}
	if better == active {
		log.Printf("Staying on %s", active)
		return nil
	}
	if c.dryRun {
		log.Printf("activate_wifi(%s)", better)
		return nil
	}
	log.Printf("Switching active wifi %s -> %s", active, better)
	return w.Activate(stdout, stderr, better)
}

func main() {
	flag.Parse()
	log.SetOutput(os.Stdout)

	c, err := configFromFlags()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	done, err := prescan(c)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if done {
		return
	}

	// cron has no qualms about starting a second copy while a slow
	// scan is still running.
	release, err := lockfile.AcquireRun(filepath.Join(os.TempDir(), "wifi-reconnect."+c.iface+".run"))
	if err != nil {
		if errors.Is(err, lockfile.ErrBusy) {
			log.Printf("Previous run still in progress, skipping")
			return
		}
		log.Fatalf("ERROR: %v", err)
	}
	// log.Fatalf exits without running defers, so release by hand
	// before reporting.
	err = reconnect(c)
	release()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

func reconnect(c config) error {
	w, err := wifi.NewIWLWorker(c.iface)
	if err != nil {
		return err
	}
	return run(c, w, os.Stdout, os.Stderr)
}
