// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// PropagatedSpike is one externally-scheduled spike waiting for its
// delivery ms, produced by the Poisson rate source or a callback generator
// (spec.md §4.8).
type PropagatedSpike struct {

	// id of the neuron that will spike.
	Neuron int32

	// id of the group Neuron belongs to, cached so draining can be
	// organized per target group without a lookup.
	Group int32
}

// PropagatedSpikeBuffer is the time-indexed queue named in spec.md §4.8 and
// §9 ("Propagated spike buffer"): generators call ScheduleSpikeTargetGroup
// to place a spike at an absolute future ms, and the kernel calls Drain each
// ms to retrieve (and clear) that ms's entries. Each entry carries its
// target group id; entries are kept in scheduling order, not grouped or
// sorted by group.
//
// Grounded on the ring-buffer idiom leabra.Time uses for its Cycle/Quarter
// counters, generalized here to a per-ms slice-of-slices keyed by ms slot
// instead of a single scalar.
type PropagatedSpikeBuffer struct {

	// entries[t % Period] holds the spikes scheduled for absolute ms t, in
	// the order they were scheduled.
	entries [][]PropagatedSpike

	// number of ms this buffer can hold before wrapping; must exceed the
	// largest schedule horizon (the Poisson source's timeSlice) to avoid
	// silently overwriting not-yet-drained entries.
	Period int
}

// NewPropagatedSpikeBuffer allocates a buffer spanning period ms.
func NewPropagatedSpikeBuffer(period int) *PropagatedSpikeBuffer {
	return &PropagatedSpikeBuffer{
		entries: make([][]PropagatedSpike, period),
		Period:  period,
	}
}

func (pb *PropagatedSpikeBuffer) slot(t int32) int {
	m := int(t) % pb.Period
	if m < 0 {
		m += pb.Period
	}
	return m
}

// ScheduleSpikeTargetGroup enqueues a spike from neuron (of group grp) to
// fire at absolute ms t.
func (pb *PropagatedSpikeBuffer) ScheduleSpikeTargetGroup(neuron, grp int32, t int32) {
	s := pb.slot(t)
	pb.entries[s] = append(pb.entries[s], PropagatedSpike{Neuron: neuron, Group: grp})
}

// Drain returns every spike scheduled for absolute ms t and clears that
// slot so the buffer can be reused Period ms later.
func (pb *PropagatedSpikeBuffer) Drain(t int32) []PropagatedSpike {
	s := pb.slot(t)
	out := pb.entries[s]
	pb.entries[s] = nil
	return out
}
