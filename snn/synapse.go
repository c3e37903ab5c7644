// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "cogentcore.org/core/math32/minmax"

// Synapse holds the per-synapse plasticity and weight state. The sign of
// MaxSynWt encodes whether the synapse is excitatory (>=0) or inhibitory
// (<=0); Wt is bounded within [0, MaxSynWt] or [MaxSynWt, 0] accordingly
// after every UpdateWeights call.
type Synapse struct {

	// current effective weight, used by delivery.
	Wt float32

	// accumulated (not yet applied) weight derivative from STDP.
	WtChange float32

	// bound on Wt; sign encodes synapse class (see type doc).
	MaxSynWt float32

	// ms of the most recent delivery through this synapse, or
	// ConstsParams.MaxSimulationTime if never delivered.
	SynSpikeTime int32

	// index into the per-simulation mulSynFast/mulSynSlow scale tables.
	ConnID int32
}

// SynInfo is the tagged record the post-indexed mirror uses in place of the
// original's bit-packed (neuron, slot) integer (see spec.md §9).
type SynInfo struct {

	// id of the postsynaptic neuron this entry targets.
	Neuron int32

	// index of this synapse within the postsynaptic neuron's own
	// pre-ordered connection list (i.e. Syns[CumulativePre[Neuron]+Slot]
	// is this synapse).
	Slot int32
}

// DelayRange names a contiguous sub-slice of a pre-neuron's post-ordered
// synapse list sharing one delay value.
type DelayRange struct {
	Start  int32
	Length int32
}

// SynapseStore owns the dual CSR-like connectivity layout described in
// spec.md §3/§9: one array of Synapse state indexed post-neuron-major
// (CumulativePre/Npre), and a mirrored post-synaptic-id array indexed
// pre-neuron-major and delay-bucketed (CumulativePost/PostDelayInfo), used
// to walk a firing presynaptic neuron's targets during delivery without
// touching neurons it does not project to.
type SynapseStore struct {

	// per-synapse state, indexed by CumulativePre[post]+slot.
	Syns []Synapse

	// prefix-sum starting index into Syns for each post-neuron.
	CumulativePre []int32

	// total incoming synapse count for each post-neuron.
	Npre []int32

	// count of the prefix of each post-neuron's incoming synapses that are
	// plastic (i.e. eligible for STDP); plastic synapses are kept first in
	// post-ordering so post-spike LTP can iterate [0, NprePlastic[i]).
	NprePlastic []int32

	// mirrored post-synaptic-id list, indexed by CumulativePost[pre]+idx.
	PostSynapticIDs []SynInfo

	// prefix-sum starting index into PostSynapticIDs for each pre-neuron.
	CumulativePost []int32

	// total outgoing synapse count for each pre-neuron.
	Npost []int32

	// per (pre, delay) contiguous sub-range of PostSynapticIDs, flattened
	// as PostDelayInfo[pre*(MaxDelay+1)+delay].
	PostDelayInfo []DelayRange

	// maximum synaptic delay, in ms; delay values range over [1, MaxDelay].
	MaxDelay int
}

// PostRange returns the pre-ordered sub-slice of PostSynapticIDs belonging
// to pre-neuron pre.
func (ss *SynapseStore) PostRange(pre int) []SynInfo {
	st := ss.CumulativePost[pre]
	n := ss.Npost[pre]
	return ss.PostSynapticIDs[st : st+n]
}

// DelaySlice returns the sub-slice of pre's post-ordered targets whose
// delay is delay+1 ms (delay is 0-based, matching spec.md's tD convention).
func (ss *SynapseStore) DelaySlice(pre, delay int) []SynInfo {
	dr := ss.PostDelayInfo[pre*(ss.MaxDelay+1)+delay]
	base := ss.CumulativePost[pre]
	return ss.PostSynapticIDs[base+dr.Start : base+dr.Start+dr.Length]
}

// PreRange returns the post-ordered sub-slice of Syns belonging to
// post-neuron post.
func (ss *SynapseStore) PreRange(post int) []Synapse {
	st := ss.CumulativePre[post]
	n := ss.Npre[post]
	return ss.Syns[st : st+n]
}

// DegreeStats reports average/maximum in-degree and out-degree across all
// neurons, mirroring leabra.Path's RConNAvgMax/SConNAvgMax reporting idiom.
func (ss *SynapseStore) DegreeStats() (inDeg, outDeg minmax.AvgMax32) {
	inDeg.Init()
	for i, n := range ss.Npre {
		inDeg.UpdateValue(float32(n), int32(i))
	}
	inDeg.CalcAvg()
	outDeg.Init()
	for i, n := range ss.Npost {
		outDeg.UpdateValue(float32(n), int32(i))
	}
	outDeg.CalcAvg()
	return
}

// NumSynapses returns the total number of synapses in the store.
func (ss *SynapseStore) NumSynapses() int {
	return len(ss.Syns)
}
