// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// SpikeTables owns the two firing tables (D1 for delay-1 synapses, D2 for
// delay>=2) and their compacted per-ms time indices, per spec.md §2/§4.7.
// A neuron that fires is appended to whichever table(s) it has outgoing
// synapses of the matching delay class for (possibly both).
//
// Both time tables are addressed with the raw index convention used
// throughout spec.md §4.1/§4.4/§4.7: a write at ms t lands at
// TimeTableDx[t+MaxDelay+1]; the second-boundary rotation in
// ShiftSpikeTables reads and writes small fixed offsets (999, 1000,
// MaxDelay, ...) directly, matching
// original_source/carlsim/kernel/src/snn_cpu_module.cpp's shiftSpikeTables
// literally so the rotated lookback window lines up with every other use
// of the same array.
type SpikeTables struct {
	FiringD1 []int32
	FiringD2 []int32

	TimeTableD1 []int32
	TimeTableD2 []int32

	MaxDelay int

	SpikeCountD1Sec int32
	SpikeCountD2Sec int32
	SpikeCountSec   int32

	SpikeCount   int64
	SpikeCountD1 int64
	SpikeCountD2 int64

	// set when a firing table fills mid-ms; scoped to a single ms, like the
	// original's local spikeBufferFull. kernel.findFiring resets it to false
	// at the start of every ms before detecting firings.
	BufferFull      bool
	BufferFullCount int64
}

// NewSpikeTables allocates D1/D2 firing tables of the given capacities and
// time-index arrays sized for one second plus the maxDelay lookback/lookahead
// margin the second-boundary rotation needs.
func NewSpikeTables(capD1, capD2, maxDelay int) *SpikeTables {
	ttLen := 1000 + 2*maxDelay + 2
	return &SpikeTables{
		FiringD1:    make([]int32, 0, capD1),
		FiringD2:    make([]int32, 0, capD2),
		TimeTableD1: make([]int32, ttLen),
		TimeTableD2: make([]int32, ttLen),
		MaxDelay:    maxDelay,
	}
}

// ResetCounters zeroes the second-scoped spike counters, leaving the
// lifetime totals untouched. The kernel does not call it: Step swaps the
// groups' spike-counter buffers at each record window boundary, and
// ShiftSpikeTables resets these counters at the second boundary.
func (st *SpikeTables) ResetCounters() {
	st.SpikeCountD1Sec = 0
	st.SpikeCountD2Sec = 0
	st.SpikeCountSec = 0
}

// AppendD1 appends neuron id to the D1 firing table. Returns false (and
// sets BufferFull) if the table has no remaining capacity.
func (st *SpikeTables) AppendD1(id int32) bool {
	if len(st.FiringD1) >= cap(st.FiringD1) {
		st.BufferFull = true
		st.BufferFullCount++
		return false
	}
	st.FiringD1 = append(st.FiringD1, id)
	st.SpikeCountD1Sec++
	return true
}

// AppendD2 appends neuron id to the D2 firing table. Returns false (and
// sets BufferFull) if the table has no remaining capacity.
func (st *SpikeTables) AppendD2(id int32) bool {
	if len(st.FiringD2) >= cap(st.FiringD2) {
		st.BufferFull = true
		st.BufferFullCount++
		return false
	}
	st.FiringD2 = append(st.FiringD2, id)
	st.SpikeCountD2Sec++
	return true
}

// SnapshotD1 records the cumulative D1 count as of the end of ms simTimeMs,
// at TimeTableD1[simTimeMs+MaxDelay+1].
func (st *SpikeTables) SnapshotD1(simTimeMs int) {
	st.TimeTableD1[simTimeMs+st.MaxDelay+1] = st.SpikeCountD1Sec
}

// SnapshotD2 records the cumulative D2 count as of the end of ms simTimeMs,
// at TimeTableD2[simTimeMs+MaxDelay+1].
func (st *SpikeTables) SnapshotD2(simTimeMs int) {
	st.TimeTableD2[simTimeMs+st.MaxDelay+1] = st.SpikeCountD2Sec
}

// D1Since returns the D1 firing entries appended during ms simTimeMs: those
// with index in [TimeTableD1[simTimeMs+MaxDelay], SpikeCountD1Sec).
func (st *SpikeTables) D1Since(simTimeMs int) []int32 {
	lo := st.TimeTableD1[simTimeMs+st.MaxDelay]
	return st.FiringD1[lo:st.SpikeCountD1Sec]
}

// D2LowerBound returns the index below which D2 entries are too old to
// still be within any synapse's delay window at ms simTimeMs
// (TimeTableD2[simTimeMs+1]).
func (st *SpikeTables) D2LowerBound(simTimeMs int) int32 {
	return st.TimeTableD2[simTimeMs+1]
}

// FindFireTimeD2 walks TimeTableD2 backwards from simTimeMs to find the ms
// t_pos at which D2 firing entry index k was appended, per spec.md §4.4.
func (st *SpikeTables) FindFireTimeD2(simTimeMs int, k int32) int {
	tPos := simTimeMs
	for !(k >= st.TimeTableD2[tPos+st.MaxDelay] && k < st.TimeTableD2[tPos+st.MaxDelay+1]) {
		tPos--
	}
	return tPos
}

// ShiftSpikeTables rotates the last MaxDelay-ish ms of D2 firings into the
// start of the table and resets the second-scoped counters, per spec.md
// §4.7. Must be called once, after ms 999 completes and before ms 0 of the
// next second begins. The literal offsets below (999, 1000, MaxDelay)
// reproduce shiftSpikeTables() in
// original_source/carlsim/kernel/src/snn_cpu_module.cpp exactly.
func (st *SpikeTables) ShiftSpikeTables() {
	md := st.MaxDelay

	p := st.TimeTableD2[999]
	end := st.TimeTableD2[999+md+1]
	k := int32(0)
	for ; p < end; p++ {
		st.FiringD2[k] = st.FiringD2[p]
		k++
	}
	st.FiringD2 = st.FiringD2[:k]
	st.FiringD1 = st.FiringD1[:0]

	for i := 0; i < md; i++ {
		st.TimeTableD2[i+1] = st.TimeTableD2[1000+i+1] - st.TimeTableD2[1000]
	}
	st.TimeTableD1[md] = 0

	st.SpikeCount += int64(st.SpikeCountSec)
	st.SpikeCountD2 += int64(st.SpikeCountD2Sec) - int64(st.TimeTableD2[md])
	st.SpikeCountD1 += int64(st.SpikeCountD1Sec)

	st.SpikeCountSec = 0
	st.SpikeCountD1Sec = 0
	st.SpikeCountD2Sec = st.TimeTableD2[md]
}
