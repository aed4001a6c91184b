// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import "io"

var _ = WiFi(&StubWorker{})

// StubWorker serves canned scan data for tests and dry runs.
type StubWorker struct {
	Records    Snapshot
	ID         string
	Activated  []string
	ScannedFor [][]string
}

func NewStubWorker(id string, records ...Record) *StubWorker {
	s := Snapshot{}
	for _, r := range records {
		s[r.Essid] = r
	}
	return &StubWorker{ID: id, Records: s}
}

func (w *StubWorker) Scan(stdout, stderr io.Writer, essids ...string) (Snapshot, error) {
	w.ScannedFor = append(w.ScannedFor, essids)
	return w.Records, nil
}

func (w *StubWorker) ActiveESSID(stdout, stderr io.Writer) (string, error) {
	return w.ID, nil
}

func (w *StubWorker) Activate(stdout, stderr io.Writer, essid string) error {
	w.Activated = append(w.Activated, essid)
	return nil
}
