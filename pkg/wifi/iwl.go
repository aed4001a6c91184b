// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/vishvananda/netlink"
)

var (
	// RegEx for parsing iwlist scanning output (wireless-tools v30)
	cellRE    = regexp.MustCompile(`^\s*Cell\s+(\d+)\s+-\s+Address:\s*([0-9A-Fa-f:]+)`)
	channelRE = regexp.MustCompile(`^\s*Channel:(\d+)`)
	freqRE    = regexp.MustCompile(`^\s*Frequency:\s*([\d.]+)\s*GHz`)
	qualityRE = regexp.MustCompile(`^\s*Quality=(\d+)/(\d+)\s+Signal level=-(\d+) dBm`)
	essidRE   = regexp.MustCompile(`^\s*ESSID:"([^"]*)"`)

	// RegEx for the association line in iwconfig output
	activeEssidRE = regexp.MustCompile(`ESSID:"([^"]+)"`)
)

// iwlist holds the radio while a scan is in flight and reports EBUSY to
// anyone else asking; those runs are worth retrying.
const scanRetries = 4

// IWLWorker implements the WiFi interface using the wireless-tools
// commands plus nmcli for association.
type IWLWorker struct {
	Interface string
}

// NewIWLWorker brings the interface up and returns a worker bound to it.
func NewIWLWorker(i string) (WiFi, error) {
	link, err := netlink.LinkByName(i)
	if err != nil {
		return nil, fmt.Errorf("wireless interface %s: %w", i, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return nil, fmt.Errorf("bringing %s up: %w", i, err)
	}
	return &IWLWorker{Interface: i}, nil
}

func (w *IWLWorker) Scan(stdout, stderr io.Writer, essids ...string) (Snapshot, error) {
	// One broadcast scan, then a directed scan per configured name so
	// hidden networks are picked up as well.
	scans := [][]string{{"iwlist", w.Interface, "scanning"}}
	for _, e := range essids {
		scans = append(scans, []string{"iwlist", w.Interface, "scanning", "essid", e})
	}

	merged := Snapshot{}
	for _, args := range scans {
		out, err := runScan(stdout, stderr, args)
		if err != nil {
			return nil, fmt.Errorf("iwlist %s: %w", w.Interface, err)
		}
		for essid, r := range parseIwlistOut(out) {
			merged[essid] = r
		}
	}
	return merged, nil
}

func runScan(stdout, stderr io.Writer, args []string) ([]byte, error) {
	// Need a local copy of exec's output to parse out the iwlist records
	var execOutput bytes.Buffer
	op := func() error {
		execOutput.Reset()
		var execErrors bytes.Buffer
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdout = io.MultiWriter(&execOutput, stdout)
		cmd.Stderr = io.MultiWriter(&execErrors, stderr)
		if err := cmd.Run(); err != nil {
			if bytes.Contains(execErrors.Bytes(), []byte("busy")) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), scanRetries)); err != nil {
		return nil, err
	}
	return execOutput.Bytes(), nil
}

/*
 * Assumptions:
 *	1) Cell, essid, channel, frequency, and quality lines belong to the
 *	   most recent Cell header; iwlist prints them in that order.
 *	2) A record without an ESSID can never be selected, so it is dropped.
 */

func parseIwlistOut(o []byte) Snapshot {
	found := Snapshot{}
	var rec Record
	inCell := false

	flush := func() {
		if inCell && rec.Essid != "" {
			found[rec.Essid] = rec
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(o))
	for sc.Scan() {
		line := sc.Text()
		if m := cellRE.FindStringSubmatch(line); m != nil {
			flush()
			rec = Record{}
			rec.Cell, _ = strconv.Atoi(m[1])
			rec.Address = m[2]
			inCell = true
			continue
		}
		if !inCell {
			continue
		}
		switch {
		case channelRE.MatchString(line):
			m := channelRE.FindStringSubmatch(line)
			rec.Channel, _ = strconv.Atoi(m[1])
		case freqRE.MatchString(line):
			m := freqRE.FindStringSubmatch(line)
			rec.Frequency, _ = strconv.ParseFloat(m[1], 64)
		case qualityRE.MatchString(line):
			m := qualityRE.FindStringSubmatch(line)
			num, _ := strconv.ParseFloat(m[1], 64)
			denom, _ := strconv.ParseFloat(m[2], 64)
			if denom > 0 {
				rec.Quality = num / denom
			}
			level, _ := strconv.Atoi(m[3])
			rec.SignalLevel = -level
		case essidRE.MatchString(line):
			m := essidRE.FindStringSubmatch(line)
			rec.Essid = m[1]
		}
	}
	flush()
	return found
}

func (w *IWLWorker) ActiveESSID(stdout, stderr io.Writer) (string, error) {
	var execOutput bytes.Buffer
	stdoutTee := io.MultiWriter(&execOutput, stdout)

	cmd := exec.Command("iwconfig", w.Interface)
	cmd.Stdout, cmd.Stderr = stdoutTee, stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("iwconfig %s: %w", w.Interface, err)
	}
	return parseIwconfigEssid(execOutput.Bytes()), nil
}

// parseIwconfigEssid returns the associated ESSID, or "" when the
// interface is unassociated (iwconfig prints ESSID:off/any then).
func parseIwconfigEssid(o []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(o))
	for sc.Scan() {
		if m := activeEssidRE.FindStringSubmatch(sc.Text()); m != nil {
			return m[1]
		}
	}
	return ""
}

func (w *IWLWorker) Activate(stdout, stderr io.Writer, essid string) error {
	cmd := exec.Command("nmcli", "c", "up", "id", essid)
	cmd.Stdout, cmd.Stderr = stdout, stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("nmcli c up id %q: %w", essid, err)
	}
	return nil
}
