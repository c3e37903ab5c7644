// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "testing"

func TestBuildSynapsesRejectsOutOfRangeDelay(t *testing.T) {
	_, err := BuildSynapses(2, 5, []Edge{{Pre: 0, Post: 1, DelayMs: 6}}, NewConstsParams().MaxSimulationTime)
	if err == nil {
		t.Fatalf("expected an error for a delay beyond maxDelay")
	}
}

func TestBuildSynapsesRejectsOutOfRangeNeuron(t *testing.T) {
	_, err := BuildSynapses(2, 5, []Edge{{Pre: 0, Post: 5, DelayMs: 1}}, NewConstsParams().MaxSimulationTime)
	if err == nil {
		t.Fatalf("expected an error for an out-of-range neuron id")
	}
}

// TestBuildSynapsesPlasticFirst covers that plastic synapses are placed
// first in each post-neuron's slice, so post-spike LTP's [0, NprePlastic)
// iteration never touches a non-plastic synapse.
func TestBuildSynapsesPlasticFirst(t *testing.T) {
	edges := []Edge{
		{Pre: 0, Post: 2, DelayMs: 1, Plastic: false},
		{Pre: 1, Post: 2, DelayMs: 1, Plastic: true},
	}
	ss, err := BuildSynapses(3, 1, edges, NewConstsParams().MaxSimulationTime)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ss.NprePlastic[2] != 1 {
		t.Fatalf("expected 1 plastic incoming synapse, got %d", ss.NprePlastic[2])
	}
	preRange := ss.PreRange(2)
	if len(preRange) != 2 {
		t.Fatalf("expected 2 incoming synapses, got %d", len(preRange))
	}
	// the plastic synapse must occupy slot 0; PostSynapticIDs confirms which
	// pre-neuron owns each slot.
	found := false
	for _, info := range ss.PostRange(1) {
		if info.Neuron == 2 && info.Slot == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected pre-neuron 1's (plastic) synapse to occupy post-slot 0")
	}
}

// TestBuildSynapsesDelayBucketing covers that DelaySlice(pre, tD) returns
// exactly the synapses whose configured delay is tD+1.
func TestBuildSynapsesDelayBucketing(t *testing.T) {
	edges := []Edge{
		{Pre: 0, Post: 1, DelayMs: 1},
		{Pre: 0, Post: 2, DelayMs: 3},
	}
	ss, err := BuildSynapses(3, 3, edges, NewConstsParams().MaxSimulationTime)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	d0 := ss.DelaySlice(0, 0)
	if len(d0) != 1 || d0[0].Neuron != 1 {
		t.Errorf("expected delay-1 bucket to contain only the post=1 synapse, got %v", d0)
	}
	d2 := ss.DelaySlice(0, 2)
	if len(d2) != 1 || d2[0].Neuron != 2 {
		t.Errorf("expected delay-3 bucket (tD=2) to contain only the post=2 synapse, got %v", d2)
	}
	if d1 := ss.DelaySlice(0, 1); len(d1) != 0 {
		t.Errorf("expected delay-2 bucket (tD=1) to be empty, got %v", d1)
	}
}

// TestBuildSynapsesInitsSynSpikeTimeToSentinel covers spec.md §8 invariant
// 5: every synapse starts as "never fired," not "fired at time 0."
func TestBuildSynapsesInitsSynSpikeTimeToSentinel(t *testing.T) {
	edges := []Edge{{Pre: 0, Post: 1, DelayMs: 1}}
	sentinel := NewConstsParams().MaxSimulationTime
	ss, err := BuildSynapses(2, 1, edges, sentinel)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ss.Syns[0].SynSpikeTime != sentinel {
		t.Errorf("expected SynSpikeTime to be seeded to %v, got %v", sentinel, ss.Syns[0].SynSpikeTime)
	}
}

func TestDegreeStats(t *testing.T) {
	edges := []Edge{
		{Pre: 0, Post: 2, DelayMs: 1},
		{Pre: 1, Post: 2, DelayMs: 1},
	}
	ss, err := BuildSynapses(3, 1, edges, NewConstsParams().MaxSimulationTime)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	inDeg, outDeg := ss.DegreeStats()
	if inDeg.Max != 2 {
		t.Errorf("expected max in-degree 2, got %v", inDeg.Max)
	}
	if outDeg.Max != 1 {
		t.Errorf("expected max out-degree 1, got %v", outDeg.Max)
	}
}
