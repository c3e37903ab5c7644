// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// KNaParams describes a sodium-gated potassium adaptation current: each
// spike raises a slow hyperpolarizing conductance that decays back toward
// zero between spikes, producing spike-frequency adaptation on top of the
// Izhikevich model's own recovery variable. Disabled (On == false) by
// default, since spec.md's neurons rely on U alone for adaptation.
type KNaParams struct {
	On bool

	// rise per spike, as a fraction of the remaining headroom to Max.
	Rise float32

	// asymptotic conductance a continuously spiking neuron approaches.
	Max float32

	// decay time constant in ms between spikes.
	Tau float32

	Dt float32
}

func (ka *KNaParams) Defaults() {
	ka.On = false
	ka.Rise = 0.01
	ka.Max = 0.1
	ka.Tau = 100
	ka.Update()
}

func (ka *KNaParams) Update() {
	ka.Dt = 1 / ka.Tau
}

// GcFromSpike updates gKNa by one ms: toward Max on a spike, by exponential
// decay otherwise.
func (ka *KNaParams) GcFromSpike(gKNa *float32, spiked bool) {
	if !ka.On {
		*gKNa = 0
		return
	}
	if spiked {
		*gKNa += ka.Rise * (ka.Max - *gKNa)
	} else {
		*gKNa -= ka.Dt * *gKNa
	}
}
