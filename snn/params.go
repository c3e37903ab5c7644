// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// ConstsParams holds the global simulation constants named in the external
// interface: conductance decay/rise factors, integration sub-stepping, and
// the plasticity bookkeeping constants shared by every group.
type ConstsParams struct {

	// per-ms multiplicative decay of the AMPA conductance.
	DAMPA float32 `def:"0.95"`

	// per-ms multiplicative decay of the NMDA conductance (instantaneous-rise mode).
	DNMDA float32 `def:"0.992"`

	// per-ms multiplicative rise-side decay of NMDA conductance (bi-exponential mode).
	RNMDA float32 `def:"0.9"`

	// scale factor applied to an NMDA delivery in bi-exponential mode; the
	// scaled amount is added to both the rise and the decay component. The
	// default 1.0 does not normalize the pair: with the default RNMDA and
	// DNMDA it peaks at about 0.75 of the delivered amount.
	SNMDA float32 `def:"1.0"`

	// per-ms multiplicative decay of the GABAa conductance.
	DGABAa float32 `def:"0.9"`

	// per-ms multiplicative decay of the GABAb conductance (instantaneous-rise mode).
	DGABAb float32 `def:"0.992"`

	// per-ms multiplicative rise-side decay of GABAb conductance (bi-exponential mode).
	RGABAb float32 `def:"0.9"`

	// scale factor applied to a GABAb delivery in bi-exponential mode; the
	// scaled amount is subtracted from both the rise and the decay component.
	SGABAb float32 `def:"1.0"`

	// number of Euler sub-steps used per ms when integrating COBA neurons.
	CondIntegrationScale int `def:"2"`

	// sentinel value meaning "no spike has been scheduled/delivered yet".
	MaxSimulationTime int32 `def:"2147483647"`

	// scale factor applied to accumulated wtChange in UpdateWeights.
	StdpScaleFactor float32 `def:"1.0"`

	// per weight-update-call multiplicative decay applied to wtChange after use.
	WtChangeDecay float32 `def:"0.0"`
}

// Defaults sets the standard constant values used throughout the kernel.
func (cp *ConstsParams) Defaults() {
	cp.DAMPA = 0.95
	cp.DNMDA = 0.992
	cp.RNMDA = 0.9
	cp.SNMDA = 1.0
	cp.DGABAa = 0.9
	cp.DGABAb = 0.992
	cp.RGABAb = 0.9
	cp.SGABAb = 1.0
	cp.CondIntegrationScale = 2
	cp.MaxSimulationTime = 1<<31 - 1
	cp.StdpScaleFactor = 1.0
	cp.WtChangeDecay = 0.0
}

// NewConstsParams returns a ConstsParams struct initialized to defaults.
func NewConstsParams() *ConstsParams {
	cp := &ConstsParams{}
	cp.Defaults()
	return cp
}
