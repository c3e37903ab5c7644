// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// IntegrateGlobalState advances one ms of membrane dynamics, dopamine decay
// and homeostatic averaging for every non-Poisson neuron, per spec.md §4.5.
// cond is nil in current-based (CUBA) mode; non-nil in conductance-based
// (COBA) mode.
func IntegrateGlobalState(ns *NeuronStore, cond *ConductanceStore, groups []Group, consts *ConstsParams, simTimeMs int) {
	for i := 0; i < ns.NumN; i++ {
		nrn := &ns.Neurons[i]
		g := &groups[nrn.GrpIdx]

		if ns.IsPoisson(i) {
			if g.Homeostasis.WithHomeostasis {
				nrn.AvgFiring *= g.Homeostasis.AvgTimeScaleDecay
			}
			continue
		}

		// group-level dopamine state is updated once per ms, at the group's
		// first neuron.
		if i == g.StartN {
			if g.STDP.Type == DAModSTDP && g.GrpDA > g.DA.BaseDP {
				g.GrpDA *= g.DA.DecayDP
			}
			if len(g.GrpDABuffer) > simTimeMs {
				g.GrpDABuffer[simTimeMs] = g.GrpDA
			}
		}

		if g.Homeostasis.WithHomeostasis {
			nrn.AvgFiring *= g.Homeostasis.AvgTimeScaleDecay
		}

		if cond != nil {
			integrateCOBA(nrn, i, cond, consts)
		} else {
			integrateCUBA(nrn)
		}
	}
}

func clampVoltage(nrn *Neuron) bool {
	if nrn.V > 30 {
		nrn.V = 30
		return true
	}
	if nrn.V < -90 {
		nrn.V = -90
	}
	return false
}

// integrateCOBA performs the conductance-based sub-stepped Euler
// integration of spec.md §4.5.
func integrateCOBA(nrn *Neuron, i int, cond *ConductanceStore, consts *ConstsParams) {
	ch := &cond.Chans[i]
	scale := float32(consts.CondIntegrationScale)
	var total float32
	for s := 0; s < consts.CondIntegrationScale; s++ {
		v := nrn.V
		iNMDATerm := (v + 80) / 60
		iNMDATerm = iNMDATerm * iNMDATerm

		gN := cond.NMDAEff(i)
		gB := cond.GABAbEff(i)

		cur := -(ch.GAMPA*v + gN*iNMDATerm/(1+iNMDATerm)*v + ch.GGABAa*(v+70) + gB*(v+90) + nrn.GKNa*(v+90))
		total += cur

		nrn.V += ((0.04*v+5)*v + 140 - nrn.U + cur + nrn.ExtCurrent) / scale
		broke := clampVoltage(nrn)
		nrn.U += nrn.A * (nrn.B*nrn.V - nrn.U) / scale
		if broke {
			break
		}
	}
	nrn.Current = total
}

// integrateCUBA performs the current-based two-half-step Euler integration
// of spec.md §4.5.
func integrateCUBA(nrn *Neuron) {
	for h := 0; h < 2; h++ {
		v := nrn.V
		nrn.V += 0.5 * ((0.04*v+5)*v + 140 - nrn.U + nrn.Current + nrn.ExtCurrent - nrn.GKNa*(v+90))
		if clampVoltage(nrn) {
			break
		}
	}
	nrn.U += nrn.A * (nrn.B*nrn.V - nrn.U)
}
