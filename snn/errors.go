// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"log"
)

// ConfigError reports a fatal problem discovered at Setup time: NumNReg or
// MaxDelay out of range, a rate source that is not host-resident, or an
// edge whose delay or neuron id is out of range. Curve and STDP-type
// settings are not validated.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "snn: configuration error: " + e.Msg }

// InvariantError reports a fatal runtime invariant violation. The kernel
// raises it for a NaN/Inf voltage (checkVoltageInvariant); neuron ids,
// delays and synSpikeTime values are not checked at run time.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "snn: invariant violation: " + e.Msg }

// fatal passes err unchanged to the simulator's FatalHook, or to log.Fatal
// when no hook is set. Unlike a bare panic, the hook is replaceable so tests
// can observe the failure instead of crashing the process.
func (sn *Simulator) fatal(err error) {
	if sn.FatalHook != nil {
		sn.FatalHook(err)
		return
	}
	log.Fatal(err)
}

func (sn *Simulator) fatalf(format string, args ...any) {
	sn.fatal(fmt.Errorf(format, args...))
}
