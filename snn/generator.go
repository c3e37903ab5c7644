// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "math/rand"

// SpikeGenerator is the capability set spec.md §9 calls for in place of a
// polymorphic base class: anything that can answer "when does this neuron
// spike next" can drive a Poisson group. PoissonGenerator and
// CallbackGenerator are the two concrete implementations named in spec.md
// §4.8/§6; a replay generator (from a recorded spike train) can be added
// without touching the kernel.
type SpikeGenerator interface {

	// NextSpikeTime returns the next ms at or after currTime that neuron
	// localID (of grp) should spike, or a value outside
	// [currTime, endWindow) to terminate the schedule for this neuron this
	// window. prevTime is the last time handed back to the caller (0 if
	// none yet).
	NextSpikeTime(grp *Group, localID int, currTime, prevTime, endWindow int32) int32
}

// RateSource provides the per-neuron firing rates (Hz) a PoissonGenerator
// draws from. Must be backed by host-addressable memory; the kernel's
// Setup rejects any source that reports otherwise (spec.md §6).
type RateSource interface {
	NumNeurons() int
	Rate(i int) float32
	HostMemory() bool
}

// HostRateTable is the straightforward slice-backed RateSource: a fixed Hz
// value per neuron, always host-resident.
type HostRateTable []float32

func (t HostRateTable) NumNeurons() int    { return len(t) }
func (t HostRateTable) Rate(i int) float32 { return t[i] }
func (t HostRateTable) HostMemory() bool   { return true }

// PoissonGenerator draws inter-spike intervals from an exponential
// distribution parameterized by each neuron's rate, with a minimum
// refractory gap, per spec.md §4.8.
type PoissonGenerator struct {
	Rates RateSource

	// minimum ms between consecutive spikes for any neuron, regardless of
	// rate.
	RefractoryMs int32

	rng *rand.Rand
}

// NewPoissonGenerator returns a generator seeded from seed.
func NewPoissonGenerator(rates RateSource, refractoryMs int32, seed int64) *PoissonGenerator {
	return &PoissonGenerator{
		Rates:        rates,
		RefractoryMs: refractoryMs,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// NextSpikeTime draws Δ ~ Exponential(rate/1000) (rate in Hz, Δ in ms) from
// prevTime (or currTime if prevTime==0) and floors it at RefractoryMs,
// matching spec.md §4.8's Poisson rate source rule.
func (pg *PoissonGenerator) NextSpikeTime(grp *Group, localID int, currTime, prevTime, endWindow int32) int32 {
	rate := pg.Rates.Rate(localID)
	if rate <= 0 {
		return -1
	}
	lambdaPerMs := float64(rate) / 1000.0
	delta := int32(pg.rng.ExpFloat64() / lambdaPerMs)
	if delta < pg.RefractoryMs {
		delta = pg.RefractoryMs
	}
	base := prevTime
	if base == 0 {
		base = currTime
	}
	return base + delta
}

// CallbackGenerator adapts a user-supplied function to SpikeGenerator,
// matching the external nextSpikeTime(ctx, groupId, localNeuronId,
// currTime, lastTime, endWindow) contract from spec.md §6. The engine
// accepts the returned time iff (t==0 || t>prevTime) && currTime<=t<endWindow;
// any other value stops the sequence for this neuron this window.
type CallbackGenerator struct {
	Fn func(grp *Group, localID int, currTime, prevTime, endWindow int32) int32
}

func (cg *CallbackGenerator) NextSpikeTime(grp *Group, localID int, currTime, prevTime, endWindow int32) int32 {
	return cg.Fn(grp, localID, currTime, prevTime, endWindow)
}

// AcceptSpikeTime reports whether a time returned by a SpikeGenerator is a
// valid schedule per the contract in spec.md §6, rather than a
// sequence-terminating sentinel.
func AcceptSpikeTime(t, prevTime, currTime, endWindow int32) bool {
	if !(t == 0 || t > prevTime) {
		return false
	}
	return t >= currTime && t < endWindow
}
