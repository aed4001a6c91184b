// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package main dumps the parsed scan records for an interface. Handy
// for spotting parser drift when a new wireless-tools version changes
// the iwlist output format.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/nofutz/wifi-reconnect/pkg/wifi"
)

var (
	iface   = flag.String("interface", "wlan0", "which interface is wlan")
	verbose = flag.Bool("v", false, "also print the raw iwlist output")
)

func main() {
	flag.Parse()

	w, err := wifi.NewIWLWorker(*iface)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	stdout := io.Discard
	if *verbose {
		stdout = os.Stdout
	}
	scanned, err := w.Scan(stdout, os.Stderr, flag.Args()...)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	active, err := w.ActiveESSID(stdout, os.Stderr)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	essids := make([]string, 0, len(scanned))
	for essid := range scanned {
		essids = append(essids, essid)
	}
	sort.Strings(essids)

	for _, essid := range essids {
		r := scanned[essid]
		marker := " "
		if essid == active {
			marker = "*"
		}
		fmt.Printf("%s %-32q cell=%d ch=%d freq=%.3fGHz quality=%.2f signal=%ddBm bssid=%s\n",
			marker, r.Essid, r.Cell, r.Channel, r.Frequency, r.Quality, r.SignalLevel, r.Address)
	}
}
