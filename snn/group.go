// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"github.com/goki/ki/bitflag"
	"github.com/goki/ki/kit"
)

// GroupType is a bitmask of the roles a group of neurons plays: whether its
// neurons are Poisson-driven inputs, excitatory/inhibitory, which
// conductance channel they target on their postsynaptic partners, and
// whether they carry a dopamine signal.
type GroupType int32

//go:generate stringer -type=GroupType

var KiT_GroupType = kit.Enums.AddEnum(GroupTypeN, kit.BitFlag, nil)

func (ev GroupType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *GroupType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The group type bit positions.
const (
	// Poisson marks a group whose neurons are externally-driven inputs
	// rather than integrate-and-fire Izhikevich neurons.
	Poisson GroupType = iota

	// Excitatory marks a group whose outgoing synapses have non-negative weight.
	Excitatory

	// Inhibitory marks a group whose outgoing synapses have non-positive weight.
	Inhibitory

	// TargetAMPA marks a group whose spikes drive the AMPA conductance on
	// their postsynaptic partners.
	TargetAMPA

	// TargetNMDA marks a group whose spikes drive the NMDA conductance.
	TargetNMDA

	// TargetGABAa marks a group whose spikes drive the GABAa conductance.
	TargetGABAa

	// TargetGABAb marks a group whose spikes drive the GABAb conductance.
	TargetGABAb

	// TargetDA marks a group whose spikes additionally deposit dopamine
	// into their postsynaptic group's DA pool.
	TargetDA

	GroupTypeN
)

// Has reports whether the mask has the given bit position set.
func (gt GroupType) Has(flag GroupType) bool {
	return bitflag.Has32(int32(gt), int(flag))
}

// Set sets the given bit position in the mask.
func (gt *GroupType) Set(flag GroupType) {
	bitflag.Set32((*int32)(gt), int(flag))
}

// Clear clears the given bit position in the mask.
func (gt *GroupType) Clear(flag GroupType) {
	bitflag.Clear32((*int32)(gt), int(flag))
}

// STDPCurve selects the pairwise weight-change curve applied at pre- and
// post-synaptic spike times.
type STDPCurve int32

const (
	// ExpCurve applies a pure exponential decay of weight change with Δt.
	ExpCurve STDPCurve = iota

	// TimingBasedCurve applies a two-regime curve (near-coincident vs
	// distant pairs), excitatory-only.
	TimingBasedCurve

	// PulseCurve applies a two-threshold step function, inhibitory-only.
	PulseCurve
)

// STDPType selects how the accumulated wtChange is applied during
// UpdateWeights.
type STDPType int32

const (
	// StandardSTDP applies wtChange (optionally homeostasis-scaled) directly.
	StandardSTDP STDPType = iota

	// DAModSTDP multiplies the applied change by the group's current
	// dopamine level.
	DAModSTDP

	// UnknownSTDP marks a group with STDP parameters that have not been
	// configured; UpdateWeights leaves that group's weights unchanged and
	// reports no error.
	UnknownSTDP
)

// STDPParams holds the pairwise spike-timing-dependent plasticity
// parameters for one group, covering both the excitatory and inhibitory
// curve variants named in the external interface.
type STDPParams struct {

	// enable STDP accumulation for this group's incoming synapses.
	WithSTDP bool

	// enable the excitatory (E-STDP) branch.
	WithESTDP bool

	// enable the inhibitory (I-STDP) branch.
	WithISTDP bool

	// curve variant used for the excitatory/inhibitory branch.
	Curve STDPCurve

	// how wtChange is applied at UpdateWeights time.
	Type STDPType

	// LTP magnitude for excitatory pairs (ALPHA_PLUS_EXC).
	AlphaPlusExc float32

	// LTD magnitude for excitatory pairs (ALPHA_MINUS_EXC).
	AlphaMinusExc float32

	// inverse LTP time constant for excitatory pairs (TAU_PLUS_INV_EXC).
	TauPlusInvExc float32

	// inverse LTD time constant for excitatory pairs (TAU_MINUS_INV_EXC).
	TauMinusInvExc float32

	// LTP magnitude for inhibitory pairs (ALPHA_PLUS_INB).
	AlphaPlusInb float32

	// LTD magnitude for inhibitory pairs (ALPHA_MINUS_INB).
	AlphaMinusInb float32

	// inverse LTP time constant for inhibitory pairs (TAU_PLUS_INV_INB).
	TauPlusInvInb float32

	// inverse LTD time constant for inhibitory pairs (TAU_MINUS_INV_INB).
	TauMinusInvInb float32

	// timing-based curve: coincidence window.
	Gamma float32

	// timing-based curve: baseline offset.
	Omega float32

	// timing-based curve: near-coincident scale.
	Kappa float32

	// pulse curve: near-coincident window.
	Lambda float32

	// pulse curve: far window.
	Delta float32

	// pulse curve: near-coincident LTP magnitude.
	BetaLTP float32

	// pulse curve: far-window LTD magnitude.
	BetaLTD float32
}

// Defaults sets representative parameter values; callers configuring a real
// network should override these from their own configuration source.
func (sp *STDPParams) Defaults() {
	sp.AlphaPlusExc = 0.1
	sp.AlphaMinusExc = 0.12
	sp.TauPlusInvExc = 1.0 / 20.0
	sp.TauMinusInvExc = 1.0 / 20.0
	sp.AlphaPlusInb = 0.1
	sp.AlphaMinusInb = 0.12
	sp.TauPlusInvInb = 1.0 / 20.0
	sp.TauMinusInvInb = 1.0 / 20.0
	sp.Gamma = 10
	sp.Omega = 0.1
	sp.Kappa = 0.15
	sp.Lambda = 10
	sp.Delta = 40
	sp.BetaLTP = 0.1
	sp.BetaLTD = 0.01
}

// STPParams holds the Tsodyks-Markram short-term facilitation/depression
// parameters for a presynaptic group.
type STPParams struct {

	// enable STP accumulation for this group's presynaptic spikes.
	WithSTP bool

	// facilitation increment per spike.
	STPA float32

	// inverse facilitation time constant (tau_u).
	TauUInv float32

	// inverse depression recovery time constant (tau_x).
	TauXInv float32
}

// Defaults sets representative STP time constants.
func (sp *STPParams) Defaults() {
	sp.STPA = 1
	sp.TauUInv = 0.3
	sp.TauXInv = 0.01
}

// HomeostasisParams holds the slow weight-rescaling parameters that keep a
// group's average firing rate near its configured baseline.
type HomeostasisParams struct {

	// enable homeostatic scaling for this group's incoming synapses.
	WithHomeostasis bool

	// overall strength of the homeostatic correction term.
	HomeostasisScale float32

	// time constant (ms) over which avgFiring is integrated.
	AvgTimeScale float32

	// per-ms decay factor applied to avgFiring, for regular and Poisson
	// neurons alike.
	AvgTimeScaleDecay float32

	// target firing rate (Hz) this group's neurons are pulled toward.
	BaseFiring float32
}

// Defaults sets representative homeostasis parameters.
func (hp *HomeostasisParams) Defaults() {
	hp.HomeostasisScale = 1.0
	hp.AvgTimeScale = 10000
	hp.AvgTimeScaleDecay = 1.0 - 1.0/10000.0
	hp.BaseFiring = 10
}

// DAParams holds the dopamine baseline and decay used by DA-modulated
// STDP groups.
type DAParams struct {

	// baseline dopamine level grpDA decays toward.
	BaseDP float32

	// per-ms multiplicative decay applied above BaseDP.
	DecayDP float32
}

// Defaults sets representative dopamine parameters.
func (dp *DAParams) Defaults() {
	dp.BaseDP = 1.0
	dp.DecayDP = 0.995
}

// SpikeCounterParams configures the optional per-ms spike counter buffer
// attached to a group.
type SpikeCounterParams struct {

	// enable the spike counter for this group.
	WithSpikeCounter bool

	// index of the active buffer half (ping-pong), flipped every
	// Simulator.RecordDurMs ms (shared across every group with a spike
	// counter attached, not a per-group duration).
	SpkCntBufPos int
}

// Group describes the static, read-only-after-setup configuration shared by
// all neurons with StartN <= id <= EndN.
type Group struct {

	// human-readable group name, used only for diagnostics.
	Name string

	// id of the first neuron belonging to this group.
	StartN int

	// id of the last neuron belonging to this group (inclusive).
	EndN int

	// bitmask of roles this group's neurons play.
	Type GroupType

	STDP        STDPParams
	STP         STPParams
	Homeostasis HomeostasisParams
	DA          DAParams
	SpikeCtr    SpikeCounterParams
	KNaAdapt    KNaParams

	// current dopamine level for this group, decayed each ms toward DA.BaseDP.
	GrpDA float32

	// per-ms dopamine trace for the current second, indexed by ms-of-second.
	// Populated only when Type has TargetDA or STDP.Type == DAModSTDP.
	GrpDABuffer []float32

	// ping-pong pair of per-neuron spike-count buffers, named in spec.md
	// §4.3's "spkCntBuf[buf][i-StartN]"; allocated only when
	// SpikeCtr.WithSpikeCounter is set, each sized Size().
	SpikeCounts [2][]int32
}

// Defaults initializes every sub-params struct and the dopamine baseline.
func (g *Group) Defaults() {
	g.STDP.Defaults()
	g.STP.Defaults()
	g.Homeostasis.Defaults()
	g.DA.Defaults()
	g.KNaAdapt.Defaults()
	g.GrpDA = g.DA.BaseDP
}

// Size returns the number of neurons belonging to this group.
func (g *Group) Size() int {
	if g.EndN < g.StartN {
		return 0
	}
	return g.EndN - g.StartN + 1
}

// Contains reports whether the given neuron id belongs to this group.
func (g *Group) Contains(id int) bool {
	return id >= g.StartN && id <= g.EndN
}
