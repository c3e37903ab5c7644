// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// Conductance holds the per-neuron receptor conductances used in
// conductance-based (COBA) mode. NMDA and GABAb each support either an
// instantaneous-rise single-variable form or a bi-exponential
// rise/decay pair, selected globally by ConductanceStore.NMDARise /
// GABAbRise (grounded on glong.NMDAParams / glong.GABABParams).
type Conductance struct {

	// fast excitatory (AMPA) conductance.
	GAMPA float32

	// slow excitatory (NMDA) conductance, instantaneous-rise mode.
	GNMDA float32

	// NMDA rise component, bi-exponential mode.
	GNMDARise float32

	// NMDA decay component, bi-exponential mode; effective NMDA
	// conductance is GNMDADecay - GNMDARise.
	GNMDADecay float32

	// fast inhibitory (GABAa) conductance.
	GGABAa float32

	// slow inhibitory (GABAb) conductance, instantaneous-rise mode.
	GGABAb float32

	// GABAb rise component, bi-exponential mode.
	GGABAbRise float32

	// GABAb decay component, bi-exponential mode.
	GGABAbDecay float32
}

// ConductanceStore owns the dense per-neuron Conductance array for COBA
// simulations. A CUBA (current-based) simulation leaves this nil.
type ConductanceStore struct {
	Chans []Conductance

	// use the bi-exponential rise/decay pair for NMDA instead of a single
	// instantaneous-rise variable.
	NMDARise bool

	// use the bi-exponential rise/decay pair for GABAb.
	GABAbRise bool
}

// NewConductanceStore allocates conductance state for numN neurons.
func NewConductanceStore(numN int, nmdaRise, gabaBRise bool) *ConductanceStore {
	return &ConductanceStore{
		Chans:     make([]Conductance, numN),
		NMDARise:  nmdaRise,
		GABAbRise: gabaBRise,
	}
}

// Decay applies one ms of exponential decay to every channel of neuron i,
// per spec.md §4.2. Must run before spike delivery so deliveries add to the
// already-decayed values (bi-exponential correctness).
func (cs *ConductanceStore) Decay(i int, c *ConstsParams) {
	ch := &cs.Chans[i]
	ch.GAMPA *= c.DAMPA
	ch.GGABAa *= c.DGABAa
	if cs.NMDARise {
		ch.GNMDARise *= c.RNMDA
		ch.GNMDADecay *= c.DNMDA
	} else {
		ch.GNMDA *= c.DNMDA
	}
	if cs.GABAbRise {
		ch.GGABAbRise *= c.RGABAb
		ch.GGABAbDecay *= c.DGABAb
	} else {
		ch.GGABAb *= c.DGABAb
	}
}

// NMDAEff returns the effective NMDA conductance, collapsing the
// bi-exponential pair if in rise mode.
func (cs *ConductanceStore) NMDAEff(i int) float32 {
	ch := &cs.Chans[i]
	if cs.NMDARise {
		return ch.GNMDADecay - ch.GNMDARise
	}
	return ch.GNMDA
}

// GABAbEff returns the effective GABAb conductance, collapsing the
// bi-exponential pair if in rise mode.
func (cs *ConductanceStore) GABAbEff(i int) float32 {
	ch := &cs.Chans[i]
	if cs.GABAbRise {
		return ch.GGABAbDecay - ch.GGABAbRise
	}
	return ch.GGABAb
}
