// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// STPStore owns the per-neuron Tsodyks-Markram short-term plasticity
// circular buffers. Each neuron gets maxDelay+1 slots of u (facilitation)
// and x (depression), indexed by simulation time modulo the buffer length,
// so that a delivery at delay tD can read both u^+ and x^- as of
// (simTime-tD) and (simTime-tD-1) respectively (spec.md §4.4, invariant 4).
type STPStore struct {
	U []float32
	X []float32

	// number of slots per neuron; equal to maxDelay+1.
	Period int
}

// NewSTPStore allocates STP buffers for numN neurons with the given
// maxDelay, and initializes x to 1 (fully available) everywhere.
func NewSTPStore(numN, maxDelay int) *STPStore {
	period := maxDelay + 1
	st := &STPStore{
		U:      make([]float32, numN*period),
		X:      make([]float32, numN*period),
		Period: period,
	}
	for i := range st.X {
		st.X[i] = 1
	}
	return st
}

func (st *STPStore) slot(neuron int, t int32) int {
	m := int(t) % st.Period
	if m < 0 {
		m += st.Period
	}
	return neuron*st.Period + m
}

// At returns the (u, x) pair recorded for neuron at simulation time t.
func (st *STPStore) At(neuron int, t int32) (u, x float32) {
	idx := st.slot(neuron, t)
	return st.U[idx], st.X[idx]
}

// Decay advances neuron i's STP state from simTime-1 to simTime, per
// spec.md §4.2: u decays toward zero, x recovers toward one.
func (st *STPStore) Decay(i int, simTime int32, tauUInv, tauXInv float32) {
	tp := st.slot(i, simTime)
	tm := st.slot(i, simTime-1)
	u := st.U[tm]
	x := st.X[tm]
	st.U[tp] = u * (1 - tauUInv)
	st.X[tp] = x + (1-x)*tauXInv
}

// OnSpike applies the presynaptic-spike facilitation increment to neuron
// i's current-ms u slot and the consequent depression of its x slot,
// following the Tsodyks-Markram update u += A*(1-u), x -= u_new*x. Called
// once per outgoing spike, after Decay has run for the current ms.
func (st *STPStore) OnSpike(i int, simTime int32, a float32) {
	idx := st.slot(i, simTime)
	st.U[idx] += a * (1 - st.U[idx])
	st.X[idx] -= st.U[idx] * st.X[idx]
}
