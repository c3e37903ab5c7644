// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "cogentcore.org/core/math32"

// expGateExp evaluates alpha*exp(-dt*tauInv), gated to zero once dt*tauInv
// reaches 25 (the point at which the exponential is indistinguishable from
// zero at float32 precision), mirroring the cutoff named in spec.md §4.3.
func expGateExp(alpha, dt, tauInv float32) float32 {
	x := dt * tauInv
	if x >= 25 {
		return 0
	}
	return alpha * math32.Exp(-x)
}

// postSpikeLTP computes the accumulation added to wtChange[pos] when the
// postsynaptic neuron fires, per spec.md §4.3's curve dispatch. dt is
// simTime-synSpikeTime[pos] and must be >= 0. isExc selects the
// excitatory/inhibitory parameter and curve-eligibility branch.
func postSpikeLTP(p *STDPParams, dt float32, isExc bool) float32 {
	switch p.Curve {
	case ExpCurve:
		if isExc {
			return expGateExp(p.AlphaPlusExc, dt, p.TauPlusInvExc)
		}
		return -expGateExp(p.AlphaPlusInb, dt, p.TauPlusInvInb)

	case TimingBasedCurve:
		if !isExc {
			return 0
		}
		if dt <= p.Gamma {
			return p.Omega + p.Kappa*expGateExp(1, dt, p.TauPlusInvExc)
		}
		return -expGateExp(1, dt, p.TauPlusInvExc)

	case PulseCurve:
		if isExc {
			return 0
		}
		if dt <= p.Lambda {
			return -p.BetaLTP
		}
		if dt <= p.Delta {
			return -p.BetaLTD
		}
		return 0
	}
	return 0
}

// preSpikeLTD computes the accumulation added to wtChange[pos] at delivery
// time when the presynaptic spike arrives after the postsynaptic neuron's
// last spike, per spec.md §4.4 step 8. This mirrors postSpikeLTP using the
// ALPHA_MINUS/TAU_MINUS_INV parameters and the opposite sign convention, as
// no distinct minus-side formula for the timing-based/pulse curves is given
// in the source; see DESIGN.md for this resolution.
func preSpikeLTD(p *STDPParams, dt float32, isExc bool) float32 {
	switch p.Curve {
	case ExpCurve:
		if isExc {
			return -expGateExp(p.AlphaMinusExc, dt, p.TauMinusInvExc)
		}
		return expGateExp(p.AlphaMinusInb, dt, p.TauMinusInvInb)

	case TimingBasedCurve:
		if !isExc {
			return 0
		}
		if dt <= p.Gamma {
			return -(p.Omega + p.Kappa*expGateExp(1, dt, p.TauMinusInvExc))
		}
		return expGateExp(1, dt, p.TauMinusInvExc)

	case PulseCurve:
		if isExc {
			return 0
		}
		if dt <= p.Lambda {
			return p.BetaLTP
		}
		if dt <= p.Delta {
			return p.BetaLTD
		}
		return 0
	}
	return 0
}

// AccumulatePostSpikeLTP applies the post-spike LTP branch of spec.md §4.3
// to every plastic incoming synapse of neuron post, reading each synapse's
// recorded synSpikeTime. testMode suppresses the accumulation entirely
// (matching "if not in testing mode and the group has STDP").
func AccumulatePostSpikeLTP(ss *SynapseStore, g *Group, post int, simTime int32, testMode bool) {
	if testMode || !g.STDP.WithSTDP {
		return
	}
	n := ss.NprePlastic[post]
	base := ss.CumulativePre[post]
	for j := int32(0); j < n; j++ {
		pos := base + j
		syn := &ss.Syns[pos]
		dt := simTime - syn.SynSpikeTime
		if dt <= 0 {
			continue
		}
		isExc := syn.MaxSynWt >= 0
		if isExc && !g.STDP.WithESTDP {
			continue
		}
		if !isExc && !g.STDP.WithISTDP {
			continue
		}
		syn.WtChange += postSpikeLTP(&g.STDP, float32(dt), isExc)
	}
}

// AccumulatePreSpikeLTD applies the delivery-time pre-spike LTD branch of
// spec.md §4.4 step 8 to the single synapse syn, whose postsynaptic
// group is postGrp and whose postsynaptic neuron's last spike time is
// lastSpikeTime. testMode suppresses the accumulation.
func AccumulatePreSpikeLTD(syn *Synapse, postGrp *Group, lastSpikeTime, simTime int32, testMode bool) {
	if testMode || !postGrp.STDP.WithSTDP {
		return
	}
	dt := simTime - lastSpikeTime
	if dt < 0 {
		return
	}
	isExc := syn.MaxSynWt >= 0
	if isExc && !postGrp.STDP.WithESTDP {
		return
	}
	if !isExc && !postGrp.STDP.WithISTDP {
		return
	}
	syn.WtChange += preSpikeLTD(&postGrp.STDP, float32(dt), isExc)
}

// UpdateWeights applies the bounded weight-update phase of spec.md §4.6 to
// every plastic synapse belonging to a non-Poisson group with STDP enabled.
// groupOf must return the owning Group for a given post-neuron id (STDP
// type, homeostasis and DA level are properties of the postsynaptic group,
// per DESIGN.md's resolution of which side configures STDP).
func UpdateWeights(ss *SynapseStore, ns *NeuronStore, consts *ConstsParams, groupOf func(post int) *Group) {
	for post := 0; post < ns.NumNReg; post++ {
		g := groupOf(post)
		if g == nil || !g.STDP.WithSTDP || g.STDP.Type == UnknownSTDP {
			continue
		}
		nrn := &ns.Neurons[post]
		n := ss.NprePlastic[post]
		base := ss.CumulativePre[post]
		for j := int32(0); j < n; j++ {
			pos := base + j
			syn := &ss.Syns[pos]

			effective := consts.StdpScaleFactor * syn.WtChange

			if g.Homeostasis.WithHomeostasis {
				diff := 1 - nrn.AvgFiring/nrn.BaseFiring
				homeo := diff*syn.Wt*g.Homeostasis.HomeostasisScale + syn.WtChange
				homeo = homeo * nrn.BaseFiring / g.Homeostasis.AvgTimeScale / (1 + 50*math32.Abs(diff))
				if g.STDP.Type == DAModSTDP {
					homeo *= g.GrpDA
				}
				syn.Wt += homeo
			} else {
				if g.STDP.Type == DAModSTDP {
					effective *= g.GrpDA
				}
				syn.Wt += effective
			}

			syn.WtChange *= consts.WtChangeDecay

			if syn.MaxSynWt >= 0 {
				syn.Wt = math32.Min(math32.Max(syn.Wt, 0), syn.MaxSynWt)
			} else {
				syn.Wt = math32.Max(math32.Min(syn.Wt, 0), syn.MaxSynWt)
			}
		}
	}
}
