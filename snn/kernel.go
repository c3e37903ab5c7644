// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"log"
	"strings"
	"unsafe"

	"cogentcore.org/core/base/indent"
	"cogentcore.org/core/math32"
	"github.com/c2h5oh/datasize"
)

// ConnScale holds the per-connection fast/slow current scale factors
// (mulSynFast/mulSynSlow in spec.md §4.4 step 4), indexed by Synapse.ConnID.
type ConnScale struct {
	Fast float32
	Slow float32
}

// Config is the one-shot construction input to Simulator.Setup, gathering
// every piece spec.md §6 lists under "Configuration options" plus the
// connectivity and rate sources needed to build the runtime arrays.
type Config struct {

	// total neuron count, regular + Poisson.
	NumN int

	// count of regular (integrate-and-fire) neurons; NumN-NumNReg are
	// Poisson/input neurons.
	NumNReg int

	// maximum synaptic delay, ms.
	MaxDelay int

	// group configuration; StartN/EndN partition [0, NumN).
	Groups []Group

	// explicit synapse list consumed by BuildSynapses.
	Edges []Edge

	// per-ConnID fast/slow current scale factors; entries left zero-valued
	// default to {1, 1} during Setup.
	ConnScales []ConnScale

	// true selects conductance-based (COBA) integration; false selects
	// current-based (CUBA).
	COBA bool

	// use the bi-exponential rise/decay pair for NMDA/GABAb.
	NMDARise  bool
	GABAbRise bool

	// firing-table capacities; spikeBufferFull is set if exceeded mid-ms.
	FiringCapD1 int
	FiringCapD2 int

	// period, in ms, of the propagated-spike scheduling buffer; must exceed
	// the largest schedule horizon any RateSources produce.
	PropagatedBufferPeriod int

	// ms between UpdateWeights calls.
	WeightUpdateIntervalMs int

	// ms between spike-counter buffer swaps, shared across all groups with
	// a spike counter attached.
	RecordDurMs int

	// Poisson rate sources, keyed by group index into Groups.
	RateSources map[int]RateSource

	// minimum ms between consecutive Poisson spikes for any neuron.
	RefractoryMs int32

	// PRNG seed for Poisson generation.
	Seed int64

	// suppresses all STDP accumulation (plasticity disabled for
	// evaluation/testing runs), per spec.md §4.3/§4.4.
	TestMode bool
}

// Simulator owns every array and parameter the per-ms kernel operates on:
// the "runtime context" spec.md §9 calls for in place of global mutable
// state. One instance simulates one network.
type Simulator struct {
	Consts *ConstsParams

	Groups  []Group
	Neurons *NeuronStore
	Synapses *SynapseStore
	Cond     *ConductanceStore // nil in CUBA mode
	STP      *STPStore

	Tables     *SpikeTables
	Propagated *PropagatedSpikeBuffer

	ConnScales []ConnScale

	// hasD1[i]/hasD2[i] report whether pre-neuron i has any delay-1 /
	// delay>=2 outgoing synapse, per spec.md §9's D1/D2 membership rule.
	hasD1 []bool
	hasD2 []bool

	Generators map[int]SpikeGenerator

	// last time handed back to a (group, local neuron) pair's generator,
	// keyed by int64(groupIdx)<<32 | int64(localID).
	lastGenTime map[int64]int32

	WeightUpdateIntervalMs int
	RecordDurMs            int

	// absolute simulation time, in ms, since Setup.
	SimTime int32

	TestMode bool

	// FatalHook, if set, is invoked instead of log.Fatal on a fatal runtime
	// error such as the InvariantError raised by checkVoltageInvariant (see
	// errors.go); tests set this to capture failures. Setup does not use it:
	// it returns a ConfigError to its caller.
	FatalHook func(error)

	// Logger receives non-fatal diagnostics (e.g. a spike-table capacity
	// warning); defaults to log.Default().
	Logger *log.Logger
}

// NewSimulator returns an unconfigured Simulator; call Setup before Step.
func NewSimulator() *Simulator {
	return &Simulator{Consts: NewConstsParams(), Logger: log.Default()}
}

// Setup validates cfg and allocates every runtime array, per spec.md §6's
// `setup(config)` contract. Must be called exactly once, after network
// construction and before the first Step.
func (sn *Simulator) Setup(cfg Config) error {
	if cfg.NumNReg < 0 || cfg.NumNReg > cfg.NumN {
		return &ConfigError{Msg: "NumNReg out of [0, NumN] range"}
	}
	if cfg.MaxDelay < 1 {
		return &ConfigError{Msg: "MaxDelay must be >= 1"}
	}
	for gi, src := range cfg.RateSources {
		if !src.HostMemory() {
			return &ConfigError{Msg: fmt.Sprintf("rate source for group %d is not host-resident", gi)}
		}
	}

	sn.Groups = cfg.Groups
	sn.Neurons = NewNeuronStore(cfg.NumN, cfg.NumNReg)
	sn.Neurons.InitLastSpikeTimes(sn.Consts.MaxSimulationTime)
	for i := range sn.Neurons.Neurons {
		for gi := range sn.Groups {
			if sn.Groups[gi].Contains(i) {
				sn.Neurons.Neurons[i].GrpIdx = int32(gi)
				sn.Neurons.Neurons[i].BaseFiring = sn.Groups[gi].Homeostasis.BaseFiring
				break
			}
		}
	}

	ss, err := BuildSynapses(cfg.NumN, cfg.MaxDelay, cfg.Edges, sn.Consts.MaxSimulationTime)
	if err != nil {
		return err
	}
	sn.Synapses = ss

	sn.ConnScales = make([]ConnScale, maxConnID(cfg.Edges)+1)
	for i := range sn.ConnScales {
		sn.ConnScales[i] = ConnScale{Fast: 1, Slow: 1}
	}
	// caller-supplied entries are matched positionally against ConnID; a
	// zero-valued entry is left at the default {1, 1}.
	for i, c := range cfg.ConnScales {
		if i >= len(sn.ConnScales) {
			break
		}
		if c.Fast != 0 || c.Slow != 0 {
			sn.ConnScales[i] = c
		}
	}

	if cfg.COBA {
		sn.Cond = NewConductanceStore(cfg.NumN, cfg.NMDARise, cfg.GABAbRise)
	}
	sn.STP = NewSTPStore(cfg.NumN, cfg.MaxDelay)

	sn.Tables = NewSpikeTables(cfg.FiringCapD1, cfg.FiringCapD2, cfg.MaxDelay)
	sn.Propagated = NewPropagatedSpikeBuffer(cfg.PropagatedBufferPeriod)

	sn.hasD1 = make([]bool, cfg.NumN)
	sn.hasD2 = make([]bool, cfg.NumN)
	for pre := 0; pre < cfg.NumN; pre++ {
		d0 := ss.PostDelayInfo[pre*(cfg.MaxDelay+1)+0]
		sn.hasD1[pre] = d0.Length > 0
		for d := 1; d < cfg.MaxDelay; d++ {
			if ss.PostDelayInfo[pre*(cfg.MaxDelay+1)+d].Length > 0 {
				sn.hasD2[pre] = true
				break
			}
		}
	}

	for gi := range sn.Groups {
		g := &sn.Groups[gi]
		if g.Type.Has(TargetDA) || g.STDP.Type == DAModSTDP {
			g.GrpDABuffer = make([]float32, 1000)
		}
		if g.SpikeCtr.WithSpikeCounter {
			g.SpikeCounts = [2][]int32{make([]int32, g.Size()), make([]int32, g.Size())}
		}
	}

	sn.Generators = map[int]SpikeGenerator{}
	sn.lastGenTime = map[int64]int32{}
	for gi, src := range cfg.RateSources {
		sn.Generators[gi] = NewPoissonGenerator(src, cfg.RefractoryMs, cfg.Seed+int64(gi))
	}

	sn.WeightUpdateIntervalMs = cfg.WeightUpdateIntervalMs
	sn.RecordDurMs = cfg.RecordDurMs
	sn.TestMode = cfg.TestMode
	return nil
}

func maxConnID(edges []Edge) int32 {
	var m int32
	for _, e := range edges {
		if e.ConnID > m {
			m = e.ConnID
		}
	}
	return m
}

// Step advances the simulation by one ms, running the seven-phase
// orchestration of spec.md §4.1 in order.
func (sn *Simulator) Step() {
	simTimeMs := int(sn.SimTime % 1000)

	if sn.RecordDurMs > 0 && int(sn.SimTime)%sn.RecordDurMs == 0 {
		sn.swapSpikeCounters()
	}

	sn.stpAndConductanceDecay(simTimeMs)
	sn.generateSpikes()
	sn.findFiring(simTimeMs)

	sn.Tables.SnapshotD1(simTimeMs)
	sn.Tables.SnapshotD2(simTimeMs)

	sn.deliverD2(simTimeMs)
	sn.deliverD1(simTimeMs)

	IntegrateGlobalState(sn.Neurons, sn.Cond, sn.Groups, sn.Consts, simTimeMs)
	sn.checkVoltageInvariant()

	sn.SimTime++

	if sn.WeightUpdateIntervalMs > 0 && int(sn.SimTime)%sn.WeightUpdateIntervalMs == 0 {
		sn.UpdateWeights()
	}

	if simTimeMs == 999 {
		sn.Tables.ShiftSpikeTables()
	}
}

func (sn *Simulator) swapSpikeCounters() {
	for gi := range sn.Groups {
		g := &sn.Groups[gi]
		if !g.SpikeCtr.WithSpikeCounter {
			continue
		}
		g.SpikeCtr.SpkCntBufPos = 1 - g.SpikeCtr.SpkCntBufPos
		for i := range g.SpikeCounts[g.SpikeCtr.SpkCntBufPos] {
			g.SpikeCounts[g.SpikeCtr.SpkCntBufPos][i] = 0
		}
	}
}

func (sn *Simulator) stpAndConductanceDecay(simTimeMs int) {
	for i := 0; i < sn.Neurons.NumN; i++ {
		nrn := &sn.Neurons.Neurons[i]
		g := &sn.Groups[nrn.GrpIdx]
		if g.STP.WithSTP {
			sn.STP.Decay(i, sn.SimTime, g.STP.TauUInv, g.STP.TauXInv)
		}
		if sn.Neurons.IsPoisson(i) {
			continue
		}
		if sn.Cond != nil {
			sn.Cond.Decay(i, sn.Consts)
		} else {
			nrn.Current = 0
		}
	}
}

// generateSpikes drains any propagated spikes scheduled for the current
// absolute ms and delivers them as D1 firings, per spec.md §4.1 step 3 and
// §9's two-phase generateSpikes resolution (population happens in
// ScheduleSecond, not here).
func (sn *Simulator) generateSpikes() {
	due := sn.Propagated.Drain(sn.SimTime)
	for _, ps := range due {
		nrn := &sn.Neurons.Neurons[ps.Neuron]
		nrn.LastSpikeTime = sn.SimTime
		sn.Tables.AppendD1(ps.Neuron)
		g := &sn.Groups[nrn.GrpIdx]
		if g.STP.WithSTP {
			sn.STP.OnSpike(int(ps.Neuron), sn.SimTime, g.STP.STPA)
		}
	}
}

// ScheduleSecond populates the propagated buffer for the next 1000 ms of
// simulated time by invoking each configured group's SpikeGenerator, per
// spec.md §4.8/§9: each neuron's generator is called repeatedly until it
// returns a time AcceptSpikeTime rejects (an accepted time of 0 also ends
// that neuron's sequence for the window). Call once per simulated second,
// before its first Step.
func (sn *Simulator) ScheduleSecond() {
	const timeSlice = 1000
	currTime := sn.SimTime
	endWindow := currTime + timeSlice
	for gi, gen := range sn.Generators {
		g := &sn.Groups[gi]
		for local := 0; local < g.Size(); local++ {
			neuron := int32(g.StartN + local)
			key := int64(gi)<<32 | int64(local)
			prevTime := sn.lastGenTime[key]
			for {
				t := gen.NextSpikeTime(g, local, currTime, prevTime, endWindow)
				if !AcceptSpikeTime(t, prevTime, currTime, endWindow) {
					break
				}
				sn.lastGenTime[key] = t
				sn.Propagated.ScheduleSpikeTargetGroup(neuron, int32(gi), t)
				if t <= prevTime {
					// an accepted t==0 does not advance the schedule
					break
				}
				prevTime = t
			}
		}
	}
}

// findFiring detects threshold crossings among regular neurons, resets
// them, appends them to the D1/D2 tables, and accumulates post-spike LTP,
// per spec.md §4.3. A neuron whose table append would overflow capacity is
// left un-reset (so it is re-detected next ms) and firing detection stops
// for the remainder of this ms, per §9's bufferFull resolution.
func (sn *Simulator) findFiring(simTimeMs int) {
	// spikeBufferFull is scoped to a single ms in the original (a local
	// variable reset on every findFiring call), not a persistent condition:
	// reset it here so a capacity hit on one ms doesn't permanently block
	// firing detection on later ones.
	sn.Tables.BufferFull = false
	for i := 0; i < sn.Neurons.NumNReg; i++ {
		sn.Neurons.Neurons[i].ClearFlag(NeurSpiked)
	}
	for i := 0; i < sn.Neurons.NumNReg; i++ {
		if sn.Tables.BufferFull {
			return
		}
		nrn := &sn.Neurons.Neurons[i]
		g := &sn.Groups[nrn.GrpIdx]
		if g.KNaAdapt.On {
			g.KNaAdapt.GcFromSpike(&nrn.GKNa, nrn.V >= 30)
		}
		if nrn.V < 30 {
			continue
		}

		ok1, ok2 := true, true
		if sn.hasD1[i] {
			ok1 = sn.Tables.AppendD1(int32(i))
		}
		if ok1 && sn.hasD2[i] {
			ok2 = sn.Tables.AppendD2(int32(i))
		}
		if !ok1 || !ok2 {
			if sn.Logger != nil {
				sn.Logger.Printf("snn: spike table capacity reached at t=%d, neuron %d deferred to next ms", sn.SimTime, i)
			}
			return
		}

		nrn.V = nrn.C
		nrn.U += nrn.D
		nrn.LastSpikeTime = sn.SimTime
		nrn.SetFlag(NeurSpiked)
		sn.Tables.SpikeCountSec++
		if g.Homeostasis.WithHomeostasis {
			nrn.AvgFiring += 1000 / g.Homeostasis.AvgTimeScale
		}

		if g.STP.WithSTP {
			sn.STP.OnSpike(i, sn.SimTime, g.STP.STPA)
		}
		if g.SpikeCtr.WithSpikeCounter {
			g.SpikeCounts[g.SpikeCtr.SpkCntBufPos][i-g.StartN]++
		}
		AccumulatePostSpikeLTP(sn.Synapses, g, i, sn.SimTime, sn.TestMode)
	}
}

// deliverD1 delivers every D1 firing entry appended since the previous ms,
// per spec.md §4.4.
func (sn *Simulator) deliverD1(simTimeMs int) {
	entries := sn.Tables.D1Since(simTimeMs)
	for k := len(entries) - 1; k >= 0; k-- {
		pre := int(entries[k])
		for _, info := range sn.Synapses.DelaySlice(pre, 0) {
			sn.generatePostSpike(pre, info, 0)
		}
	}
}

// deliverD2 walks the rolling D2 window backwards, locating each entry's
// original firing ms and delivering its delay-appropriate target slice,
// per spec.md §4.4.
func (sn *Simulator) deliverD2(simTimeMs int) {
	kEnd := sn.Tables.D2LowerBound(simTimeMs)
	for k := sn.Tables.SpikeCountD2Sec - 1; k >= kEnd && k >= 0; k-- {
		tPos := sn.Tables.FindFireTimeD2(simTimeMs, k)
		tD := simTimeMs - tPos
		pre := int(sn.Tables.FiringD2[k])
		for _, info := range sn.Synapses.DelaySlice(pre, tD) {
			sn.generatePostSpike(pre, info, tD)
		}
	}
}

// generatePostSpike applies a single synaptic delivery: STP modulation,
// connection scaling, conductance/current update, synSpikeTime bookkeeping,
// DA deposit, and pre-spike LTD, per spec.md §4.4's generatePostSpike.
func (sn *Simulator) generatePostSpike(pre int, info SynInfo, tD int) {
	post := int(info.Neuron)
	pos := sn.Synapses.CumulativePre[post] + info.Slot
	syn := &sn.Synapses.Syns[pos]

	preGrp := &sn.Groups[sn.Neurons.Neurons[pre].GrpIdx]
	change := syn.Wt
	if preGrp.STP.WithSTP {
		u, _ := sn.STP.At(pre, sn.SimTime-int32(tD))
		_, x := sn.STP.At(pre, sn.SimTime-int32(tD)-1)
		change *= preGrp.STP.STPA * u * x
	}

	scale := sn.ConnScales[syn.ConnID]
	fastChange := change * scale.Fast
	slowChange := change * scale.Slow

	if sn.Cond != nil {
		ch := &sn.Cond.Chans[post]
		if preGrp.Type.Has(TargetAMPA) {
			ch.GAMPA += fastChange
		}
		if preGrp.Type.Has(TargetNMDA) {
			if sn.Cond.NMDARise {
				ch.GNMDARise += slowChange * sn.Consts.SNMDA
				ch.GNMDADecay += slowChange * sn.Consts.SNMDA
			} else {
				ch.GNMDA += slowChange
			}
		}
		if preGrp.Type.Has(TargetGABAa) {
			ch.GGABAa -= fastChange
		}
		if preGrp.Type.Has(TargetGABAb) {
			if sn.Cond.GABAbRise {
				ch.GGABAbRise -= slowChange * sn.Consts.SGABAb
				ch.GGABAbDecay -= slowChange * sn.Consts.SGABAb
			} else {
				ch.GGABAb -= slowChange
			}
		}
	} else {
		sn.Neurons.Neurons[post].Current += fastChange
	}

	syn.SynSpikeTime = sn.SimTime

	if preGrp.Type.Has(TargetDA) {
		postGrpIdx := sn.Neurons.Neurons[post].GrpIdx
		sn.Groups[postGrpIdx].GrpDA += 0.04
	}

	postGrp := &sn.Groups[sn.Neurons.Neurons[post].GrpIdx]
	AccumulatePreSpikeLTD(syn, postGrp, sn.Neurons.Neurons[post].LastSpikeTime, sn.SimTime, sn.TestMode)
}

// ShiftSpikeTables is the kernel-level wrapper around SpikeTables's
// second-boundary rotation, exposed per spec.md §6's control surface; Step
// already calls it automatically at ms 999, so direct callers only need
// this for tests that drive ShiftSpikeTables independently of Step.
func (sn *Simulator) ShiftSpikeTables() {
	sn.Tables.ShiftSpikeTables()
}

// UpdateWeights runs the bounded weight-update phase of spec.md §4.6,
// exposed per spec.md §6's `updateWeights()` control surface. Step calls
// this automatically every WeightUpdateIntervalMs ms; exported so a caller
// can also invoke it directly (e.g. a final flush before reading weights).
func (sn *Simulator) UpdateWeights() {
	UpdateWeights(sn.Synapses, sn.Neurons, sn.Consts, func(post int) *Group {
		return &sn.Groups[sn.Neurons.Neurons[post].GrpIdx]
	})
}

// SpikeCounts returns the total spike count across the simulation,
// split by delay class, per spec.md §4.7's accumulated totals.
func (sn *Simulator) SpikeCounts() (total, d1, d2 int64) {
	return sn.Tables.SpikeCount, sn.Tables.SpikeCountD1, sn.Tables.SpikeCountD2
}

// BufferFull reports whether a firing table overflowed on the most recently
// processed ms, per spec.md §7's transient-capacity error kind.
func (sn *Simulator) BufferFull() bool {
	return sn.Tables.BufferFull
}

// checkVoltageInvariant reports a fatal InvariantError through FatalHook if
// any regular neuron's membrane potential has gone non-finite, per errors.go's
// InvariantError doc comment. A NaN/Inf voltage cannot be caught by
// clampVoltage's ordinary comparisons, so it is checked explicitly here once
// per ms rather than relying on the clamp.
func (sn *Simulator) checkVoltageInvariant() {
	for i := 0; i < sn.Neurons.NumNReg; i++ {
		v := sn.Neurons.Neurons[i].V
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			sn.fatal(&InvariantError{Msg: fmt.Sprintf("neuron %d: non-finite voltage %v at t=%d", i, v, sn.SimTime)})
			return
		}
	}
}

// MemoryReport returns a human-readable breakdown of the simulator's array
// memory footprint, mirroring leabra.Network.SizeReport's use of
// datasize.ByteSize.
func (sn *Simulator) MemoryReport() string {
	var b strings.Builder
	neurMem := len(sn.Neurons.Neurons) * int(unsafe.Sizeof(Neuron{}))
	synMem := len(sn.Synapses.Syns)*int(unsafe.Sizeof(Synapse{})) + len(sn.Synapses.PostSynapticIDs)*int(unsafe.Sizeof(SynInfo{}))
	fmt.Fprintf(&b, "Neurons: %d\tMem: %v\n", len(sn.Neurons.Neurons), datasize.ByteSize(neurMem).HumanReadable())
	fmt.Fprintf(&b, "Synapses: %d\tMem: %v\n", len(sn.Synapses.Syns), datasize.ByteSize(synMem).HumanReadable())
	if sn.Cond != nil {
		condMem := len(sn.Cond.Chans) * int(unsafe.Sizeof(Conductance{}))
		fmt.Fprintf(&b, "Conductances:\tMem: %v\n", datasize.ByteSize(condMem).HumanReadable())
	}
	return b.String()
}

// Report returns a per-group summary (size, type, degree stats), indented
// in the teacher's weight-file style (indent.TabBytes).
func (sn *Simulator) Report() string {
	var b strings.Builder
	inDeg, outDeg := sn.Synapses.DegreeStats()
	fmt.Fprintf(&b, "simulator: %d neurons (%d regular), %d synapses\n", sn.Neurons.NumN, sn.Neurons.NumNReg, sn.Synapses.NumSynapses())
	for gi := range sn.Groups {
		g := &sn.Groups[gi]
		b.Write(indent.TabBytes(1))
		fmt.Fprintf(&b, "%s: [%d, %d] size=%d type=%d\n", g.Name, g.StartN, g.EndN, g.Size(), g.Type)
	}
	fmt.Fprintf(&b, "in-degree avg=%.2f max=%g\tout-degree avg=%.2f max=%g\n", inDeg.Avg, inDeg.Max, outDeg.Avg, outDeg.Max)
	return b.String()
}
