// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package snn implements the per-millisecond simulation kernel for networks
// of Izhikevich-type point neurons: membrane integration, spike detection,
// delayed spike delivery through a CSR-like connectivity graph, short-term
// plasticity modulation, conductance/current synapses, and
// spike-timing-dependent plasticity with optional dopaminergic modulation
// and homeostatic rescaling.
//
// Network construction, input generation beyond the callback contract, and
// file/GUI output are left to callers; snn owns only the hot per-ms state
// and the phases that mutate it.
package snn
