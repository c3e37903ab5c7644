// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "testing"

func TestConductanceDecayInstantaneousRise(t *testing.T) {
	cs := NewConductanceStore(1, false, false)
	cs.Chans[0] = Conductance{GAMPA: 1, GNMDA: 1, GGABAa: 1, GGABAb: 1}
	consts := NewConstsParams()

	cs.Decay(0, consts)
	closeEnough(t, "GAMPA decay", cs.Chans[0].GAMPA, consts.DAMPA)
	closeEnough(t, "GNMDA decay", cs.Chans[0].GNMDA, consts.DNMDA)
	closeEnough(t, "GGABAa decay", cs.Chans[0].GGABAa, consts.DGABAa)
	closeEnough(t, "GGABAb decay", cs.Chans[0].GGABAb, consts.DGABAb)

	closeEnough(t, "NMDAEff instantaneous", cs.NMDAEff(0), cs.Chans[0].GNMDA)
	closeEnough(t, "GABAbEff instantaneous", cs.GABAbEff(0), cs.Chans[0].GGABAb)
}

func TestConductanceDecayBiExponentialRise(t *testing.T) {
	cs := NewConductanceStore(1, true, true)
	cs.Chans[0] = Conductance{GNMDARise: 0.2, GNMDADecay: 1, GGABAbRise: 0.2, GGABAbDecay: 1}
	consts := NewConstsParams()

	cs.Decay(0, consts)
	closeEnough(t, "GNMDARise decay", cs.Chans[0].GNMDARise, 0.2*consts.RNMDA)
	closeEnough(t, "GNMDADecay decay", cs.Chans[0].GNMDADecay, 1*consts.DNMDA)

	want := cs.Chans[0].GNMDADecay - cs.Chans[0].GNMDARise
	closeEnough(t, "NMDAEff bi-exponential", cs.NMDAEff(0), want)

	wantB := cs.Chans[0].GGABAbDecay - cs.Chans[0].GGABAbRise
	closeEnough(t, "GABAbEff bi-exponential", cs.GABAbEff(0), wantB)
}
