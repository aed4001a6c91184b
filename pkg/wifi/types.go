// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wifi shells out to the wireless tooling (iwlist, iwconfig,
// nmcli) and turns its textual output into typed scan records.
package wifi

import "io"

// Record describes one network observed during a single scan pass.
// Quality is a fraction in [0,1]; the remaining fields are diagnostic
// metadata carried along from the scanner output.
type Record struct {
	Essid       string
	Cell        int
	Channel     int
	Quality     float64
	SignalLevel int
	Address     string
	Frequency   float64
}

// Snapshot maps ESSID to the record seen for it in one scan pass.
// ESSIDs are unique within a snapshot; if the scanner reports the same
// ESSID twice the last occurrence wins.
type Snapshot map[string]Record

// WiFi is the boundary to the wireless tooling. Implementations write
// the raw tool output to stdout/stderr as they go.
type WiFi interface {
	// Scan performs one scan pass. When essids are given, a directed
	// scan is issued per name as well, so hidden networks show up in
	// the snapshot.
	Scan(stdout, stderr io.Writer, essids ...string) (Snapshot, error)
	// ActiveESSID reports the network the interface is associated
	// with, or "" when unassociated.
	ActiveESSID(stdout, stderr io.Writer) (string, error)
	// Activate asks the network-configuration agent to associate with
	// the named network. It does not check the current association.
	Activate(stdout, stderr io.Writer, essid string) error
}
