// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"github.com/goki/ki/bitflag"
)

// NeurFlags are bit-flags encoding relevant binary state for neurons.
type NeurFlags int32

const (
	// NeurSpiked indicates the neuron crossed threshold on the current ms
	// and was reset (v=c, u+=d) during findFiring.
	NeurSpiked NeurFlags = iota

	// NeurPoisson marks an externally-driven input neuron: its v/u are not
	// integrated and it participates only in spike generation/delivery.
	NeurPoisson
)

func (nrn *Neuron) HasFlag(flag NeurFlags) bool {
	return bitflag.Has32(int32(nrn.Flags), int(flag))
}

func (nrn *Neuron) SetFlag(flag NeurFlags) {
	bitflag.Set32((*int32)(&nrn.Flags), int(flag))
}

func (nrn *Neuron) ClearFlag(flag NeurFlags) {
	bitflag.Clear32((*int32)(&nrn.Flags), int(flag))
}

// Neuron holds the per-neuron Izhikevich state and bookkeeping fields.
// Regular neurons occupy ids [0, numNReg); Poisson neurons occupy
// [numNReg, numN).
type Neuron struct {

	// bit flags for binary state (spiked this ms, is-Poisson).
	Flags NeurFlags

	// index of the Group this neuron belongs to.
	GrpIdx int32

	// membrane potential, mV. Must satisfy -90 <= V <= 30 after integration.
	V float32

	// recovery variable.
	U float32

	// Izhikevich time-scale parameter of the recovery variable.
	A float32

	// Izhikevich sensitivity of u to subthreshold v.
	B float32

	// post-spike reset value of V.
	C float32

	// post-spike increment applied to U.
	D float32

	// constant external current added to the membrane update every ms, in
	// both current and conductance mode.
	ExtCurrent float32

	// per-ms current accumulator, never including ExtCurrent (current mode:
	// the synaptic input delivered this ms, which drives integration; COBA
	// mode: the net channel current summed over the sub-steps, for
	// observability only, per spec.md §4.5).
	Current float32

	// ms of the most recent spike, or MaxSimulationTime if the neuron has
	// never fired.
	LastSpikeTime int32

	// short/medium running average firing rate, driven by Homeostasis.
	AvgFiring float32

	// target firing rate copied from the owning group at setup (kept local
	// so per-neuron overrides are possible without touching the group).
	BaseFiring float32

	// sodium-gated potassium adaptation conductance, driven by
	// Group.KNaAdapt; zero unless the owning group enables it.
	GKNa float32
}

// NeuronStore owns the dense per-neuron arrays for an entire simulation.
// NumNReg regular (Izhikevich) neurons occupy indices [0, NumNReg); the
// remaining NumN-NumNReg are Poisson/input neurons.
type NeuronStore struct {
	Neurons []Neuron

	// number of regular (non-Poisson) neurons.
	NumNReg int

	// total number of neurons, including Poisson.
	NumN int
}

// NewNeuronStore allocates a store for numN neurons, the first numNReg of
// which are regular Izhikevich neurons.
func NewNeuronStore(numN, numNReg int) *NeuronStore {
	ns := &NeuronStore{
		Neurons: make([]Neuron, numN),
		NumNReg: numNReg,
		NumN:    numN,
	}
	for i := numNReg; i < numN; i++ {
		ns.Neurons[i].SetFlag(NeurPoisson)
	}
	return ns
}

// IsPoisson reports whether neuron i is an externally-driven input neuron.
func (ns *NeuronStore) IsPoisson(i int) bool {
	return i >= ns.NumNReg
}

// InitLastSpikeTimes sets every neuron's LastSpikeTime to the "never fired"
// sentinel. Must be called once after construction, before the first Step.
func (ns *NeuronStore) InitLastSpikeTimes(maxSimTime int32) {
	for i := range ns.Neurons {
		ns.Neurons[i].LastSpikeTime = maxSimTime
	}
}
