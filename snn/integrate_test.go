// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "testing"

// TestClampVoltageUpperBound covers spec.md invariant I1: V never exceeds 30
// after integration, regardless of how large the driving current is.
func TestClampVoltageUpperBound(t *testing.T) {
	nrn := &Neuron{}
	rsNeuron(nrn)
	nrn.Current = 1e6
	integrateCUBA(nrn)
	if nrn.V != 30 {
		t.Errorf("expected V clamped to 30, got %v", nrn.V)
	}
}

// TestClampVoltageLowerBound covers the symmetric lower clamp: V never drops
// below -90.
func TestClampVoltageLowerBound(t *testing.T) {
	nrn := &Neuron{}
	rsNeuron(nrn)
	nrn.Current = -1e6
	integrateCUBA(nrn)
	if nrn.V != -90 {
		t.Errorf("expected V clamped to -90, got %v", nrn.V)
	}
}

// TestIntegrateCUBARestIsStable checks that a regular-spiking neuron with no
// input current stays near its resting potential instead of drifting.
func TestIntegrateCUBARestIsStable(t *testing.T) {
	nrn := &Neuron{}
	rsNeuron(nrn)
	for i := 0; i < 100; i++ {
		integrateCUBA(nrn)
	}
	if nrn.V > -55 || nrn.V < -75 {
		t.Errorf("expected V to stay near rest with no input, got %v", nrn.V)
	}
}

// TestIntegrateGlobalStateSkipsPoisson covers that Poisson neurons are never
// integrated (their V/U are left untouched) but still decay AvgFiring under
// homeostasis.
func TestIntegrateGlobalStateSkipsPoisson(t *testing.T) {
	ns := NewNeuronStore(2, 1)
	ns.InitLastSpikeTimes(1 << 30)
	rsNeuron(&ns.Neurons[0])
	ns.Neurons[1].V = 123 // nonsense value; must be left alone since it's Poisson
	ns.Neurons[1].AvgFiring = 10

	groups := []Group{{Name: "g", StartN: 0, EndN: 1}}
	groups[0].Defaults()
	groups[0].Homeostasis.WithHomeostasis = true
	groups[0].Homeostasis.AvgTimeScaleDecay = 0.5

	consts := NewConstsParams()
	IntegrateGlobalState(ns, nil, groups, consts, 0)

	if ns.Neurons[1].V != 123 {
		t.Errorf("expected Poisson neuron's V untouched, got %v", ns.Neurons[1].V)
	}
	if ns.Neurons[1].AvgFiring != 5 {
		t.Errorf("expected Poisson neuron's AvgFiring decayed to 5, got %v", ns.Neurons[1].AvgFiring)
	}
}
