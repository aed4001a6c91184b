// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package selection decides which network the machine should be
// associated with, given one scan pass and the configured preference
// tiers. It performs no I/O.
package selection

import (
	"fmt"
	"slices"
)

const (
	DefaultQualityFloor = 0.5
	DefaultSwitchMargin = 0.15
)

// Policy holds the per-invocation threshold parameters. Values are
// fractions in [0,1] and the struct is passed by value everywhere; a
// running decision never mutates it.
type Policy struct {
	// QualityFloor is the minimum quality for a network to be an
	// acceptable upgrade target. An active network at or below the
	// floor may be left without charging the switch margin.
	QualityFloor float64
	// SwitchMargin is the minimum quality improvement required to move
	// between two networks of the same preference tier.
	SwitchMargin float64
}

func DefaultPolicy() Policy {
	return Policy{
		QualityFloor: DefaultQualityFloor,
		SwitchMargin: DefaultSwitchMargin,
	}
}

// Validate checks the same ranges the command line enforces, so a
// Policy built in code is held to the flag rules too.
func (p Policy) Validate() error {
	if p.QualityFloor < 0.1 || p.QualityFloor > 1.0 {
		return fmt.Errorf("quality floor %v outside [0.1, 1.0]", p.QualityFloor)
	}
	if p.SwitchMargin < 0.01 || p.SwitchMargin > 1.0 {
		return fmt.Errorf("switch margin %v outside [0.01, 1.0]", p.SwitchMargin)
	}
	return nil
}

// Preferences classifies networks into two ordered tiers. Preferred
// networks are always exhausted before non-preferred ones are even
// looked at. A name must not appear in both lists; the engine rejects
// an active network with ambiguous membership.
type Preferences struct {
	Preferred    []string
	NonPreferred []string
}

func (p Preferences) isPreferred(essid string) bool {
	return slices.Contains(p.Preferred, essid)
}

func (p Preferences) isNonPreferred(essid string) bool {
	return slices.Contains(p.NonPreferred, essid)
}

// ConfigError reports contradictory or missing required input. It is
// fatal for the whole invocation: no decision is produced and the
// caller must not attempt activation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func configErrorf(format string, a ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, a...)}
}
