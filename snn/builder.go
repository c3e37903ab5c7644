// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "sort"

// Edge describes one synapse to be added by BuildSynapses. Full network
// construction (patterned connectivity, group-level fan-out) is out of
// scope for this kernel; Edge is the minimal unit needed to exercise
// delivery, STP and STDP in tests and in the example driver.
type Edge struct {
	Pre, Post int
	DelayMs   int
	Wt        float32
	MaxSynWt  float32
	ConnID    int32
	Plastic   bool
}

// BuildSynapses lays out a SynapseStore from an explicit edge list,
// following the two-pass counting scheme in leabra.Path.Build: first tally
// per-neuron connection counts and prefix-sum starting offsets, then fill
// the index arrays in a second pass. Plastic synapses are placed first in
// each post-neuron's slice so post-spike LTP can iterate a contiguous
// prefix, per spec.md §4.3. Within each pre-neuron's post-ordered list,
// entries are grouped contiguously by delay, per spec.md §9.
//
// synSpikeTimeInit seeds every synapse's SynSpikeTime (normally
// ConstsParams.MaxSimulationTime), so a synapse that has never delivered a
// presynaptic spike reads as "never fired" rather than "fired at time 0",
// per spec.md §8 invariant 5.
func BuildSynapses(numN, maxDelay int, edges []Edge, synSpikeTimeInit int32) (*SynapseStore, error) {
	for _, e := range edges {
		if e.DelayMs < 1 || e.DelayMs > maxDelay {
			return nil, &ConfigError{Msg: "edge delay out of [1, maxDelay] range"}
		}
		if e.Pre < 0 || e.Pre >= numN || e.Post < 0 || e.Post >= numN {
			return nil, &ConfigError{Msg: "edge neuron id out of range"}
		}
	}

	ss := &SynapseStore{
		CumulativePre:  make([]int32, numN),
		Npre:           make([]int32, numN),
		NprePlastic:    make([]int32, numN),
		CumulativePost: make([]int32, numN),
		Npost:          make([]int32, numN),
		PostDelayInfo:  make([]DelayRange, numN*(maxDelay+1)),
		MaxDelay:       maxDelay,
	}

	// byPost holds each post-neuron's incoming edges, reordered so plastic
	// synapses sort first; this also fixes the final post-ordered slot of
	// every edge, recorded in edgePos for the pre-side pass below.
	byPost := make([][]Edge, numN)
	for _, e := range edges {
		byPost[e.Post] = append(byPost[e.Post], e)
	}

	total := 0
	for post := 0; post < numN; post++ {
		es := byPost[post]
		sort.SliceStable(es, func(i, j int) bool { return es[i].Plastic && !es[j].Plastic })
		ss.CumulativePre[post] = int32(total)
		ss.Npre[post] = int32(len(es))
		np := int32(0)
		for _, e := range es {
			if e.Plastic {
				np++
			}
		}
		ss.NprePlastic[post] = np
		total += len(es)
	}
	ss.Syns = make([]Synapse, total)

	type postSlot struct {
		post int
		slot int32
	}
	edgePos := make([]postSlot, len(edges))
	edgeIdx := 0
	byPre := make([][]int, numN) // indices into the edgePos/flat edge list below
	flat := make([]Edge, 0, len(edges))

	for post := 0; post < numN; post++ {
		es := byPost[post]
		base := ss.CumulativePre[post]
		for i, e := range es {
			pos := base + int32(i)
			ss.Syns[pos] = Synapse{
				Wt:           e.Wt,
				MaxSynWt:     e.MaxSynWt,
				ConnID:       e.ConnID,
				SynSpikeTime: synSpikeTimeInit,
			}
			flat = append(flat, e)
			edgePos[edgeIdx] = postSlot{post: post, slot: int32(i)}
			byPre[e.Pre] = append(byPre[e.Pre], edgeIdx)
			edgeIdx++
		}
	}

	total2 := 0
	for pre := 0; pre < numN; pre++ {
		idxs := byPre[pre]
		sort.SliceStable(idxs, func(i, j int) bool { return flat[idxs[i]].DelayMs < flat[idxs[j]].DelayMs })
		byPre[pre] = idxs
		ss.CumulativePost[pre] = int32(total2)
		ss.Npost[pre] = int32(len(idxs))
		total2 += len(idxs)
	}
	ss.PostSynapticIDs = make([]SynInfo, total2)

	for pre := 0; pre < numN; pre++ {
		idxs := byPre[pre]
		base := ss.CumulativePost[pre]
		cursor := int32(0)
		for d := 0; d <= maxDelay; d++ {
			start := cursor
			for cursor < int32(len(idxs)) && flat[idxs[cursor]].DelayMs == d+1 {
				cursor++
			}
			ss.PostDelayInfo[pre*(maxDelay+1)+d] = DelayRange{Start: start, Length: cursor - start}
		}
		for i, ei := range idxs {
			ps := edgePos[ei]
			ss.PostSynapticIDs[base+int32(i)] = SynInfo{
				Neuron: int32(ps.post),
				Slot:   ps.slot,
			}
		}
	}

	return ss, nil
}
