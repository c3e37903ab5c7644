// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// randomnet builds a randomly-connected excitatory/inhibitory network driven
// by a Poisson input group, runs it for a configurable number of simulated
// seconds, and reports cumulative spike counts and memory usage along the
// way. It mirrors the classic CARLsim "random" example: an 80/20 excitatory/
// inhibitory split, a connection probability of 100/n per neuron pair (1%
// at the default n of 10000), random delays in [1,20],
// conductance-based synapses, and standard STDP on the two recurrent groups.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"cogentcore.org/core/base/timer"

	"github.com/trfore/carlsim-go/snn"
)

func main() {
	numN := flag.Int("n", 10000, "excitatory+inhibitory neuron count (80% excit, 20% inhib); the input group adds n/10 more")
	seconds := flag.Int("secs", 2, "number of simulated seconds to run")
	seed := flag.Int64("seed", 42, "PRNG seed for connectivity and Poisson input")
	flag.Parse()

	n := *numN
	nExc := int(float64(n) * 0.8)
	nInh := n - nExc
	nIn := n / 10

	groups := []snn.Group{
		{Name: "excit", StartN: 0, EndN: nExc - 1, Type: excGroupType()},
		{Name: "inhib", StartN: nExc, EndN: nExc + nInh - 1, Type: inhGroupType()},
		{Name: "input", StartN: nExc + nInh, EndN: nExc + nInh + nIn - 1, Type: inputGroupType()},
	}
	for gi := range groups {
		groups[gi].Defaults()
	}
	groups[0].STDP.WithSTDP = true
	groups[0].STDP.WithESTDP = true
	groups[0].STDP.Curve = snn.ExpCurve
	groups[0].STDP.Type = snn.StandardSTDP
	groups[1].STDP.WithSTDP = true
	groups[1].STDP.WithESTDP = true
	groups[1].STDP.Curve = snn.ExpCurve
	groups[1].STDP.Type = snn.StandardSTDP
	groups[0].STP.WithSTP = true
	groups[1].STP.WithSTP = true

	rng := rand.New(rand.NewSource(*seed))
	maxDelay := 20
	prob := 100.0 / float64(n)

	var edges []snn.Edge
	// inhib -> excit, fixed weight, no delay randomization beyond 1ms
	edges = append(edges, randomEdges(rng, &groups[1], &groups[0], prob, 0.01, 0.01, 1, 1, 0, false)...)
	// excit -> inhib, plastic, delay 1..20
	edges = append(edges, randomEdges(rng, &groups[0], &groups[1], prob, 0.0, 0.0025, 1, maxDelay, 1, true)...)
	// excit -> excit (recurrent), plastic, delay 1..20
	edges = append(edges, randomEdges(rng, &groups[0], &groups[0], prob, 0.0, 0.06, 1, maxDelay, 2, true)...)
	// input -> excit, fixed weight, delay 1..20, 10% of prob
	edges = append(edges, randomEdges(rng, &groups[2], &groups[0], prob/10.0, 1.0, 1.0, 1, maxDelay, 3, false)...)

	sim := snn.NewSimulator()
	cfg := snn.Config{
		NumN:                   nExc + nInh + nIn,
		NumNReg:                nExc + nInh,
		MaxDelay:               maxDelay,
		Groups:                 groups,
		Edges:                  edges,
		COBA:                   true,
		FiringCapD1:            nExc + nInh,
		FiringCapD2:            (nExc + nInh) * 10,
		PropagatedBufferPeriod: 1100,
		WeightUpdateIntervalMs: 1000,
		RecordDurMs:            1000,
		RateSources:            map[int]snn.RateSource{2: poissonRates(nIn, 1.0)},
		RefractoryMs:           2,
		Seed:                   *seed,
	}
	if err := sim.Setup(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}
	fmt.Print(sim.Report())
	fmt.Print(sim.MemoryReport())

	tmr := timer.Time{}
	tmr.Start()
	for s := 0; s < *seconds; s++ {
		sim.ScheduleSecond()
		for ms := 0; ms < 1000; ms++ {
			sim.Step()
		}
		total, d1, d2 := sim.SpikeCounts()
		fmt.Printf("sec %d: total spikes=%d (d1=%d, d2=%d), bufferFull=%v\n", s, total, d1, d2, sim.BufferFull())
	}
	tmr.Stop()
	fmt.Printf("\nExecution time: %v\n\n", tmr.Total)
}

// randomEdges wires pre -> post with independent-Bernoulli probability prob
// per ordered pair, a uniform weight in [wtMin, wtMax], a uniform integer
// delay in [dMin, dMax], and the given connId/plastic flag.
func randomEdges(rng *rand.Rand, pre, post *snn.Group, prob float64, wtMin, wtMax float32, dMin, dMax int, connID int32, plastic bool) []snn.Edge {
	var edges []snn.Edge
	maxWt := wtMax
	if maxWt == 0 {
		maxWt = wtMin
	}
	if pre.Type.Has(snn.Inhibitory) {
		maxWt = -maxWt
	}
	for i := pre.StartN; i <= pre.EndN; i++ {
		for j := post.StartN; j <= post.EndN; j++ {
			if rng.Float64() >= prob {
				continue
			}
			wt := wtMin
			if wtMax > wtMin {
				wt = wtMin + rng.Float32()*(wtMax-wtMin)
			}
			if pre.Type.Has(snn.Inhibitory) {
				wt = -wt
			}
			delay := dMin
			if dMax > dMin {
				delay = dMin + rng.Intn(dMax-dMin+1)
			}
			edges = append(edges, snn.Edge{
				Pre:      i,
				Post:     j,
				DelayMs:  delay,
				Wt:       wt,
				MaxSynWt: maxWt,
				ConnID:   connID,
				Plastic:  plastic,
			})
		}
	}
	return edges
}

func excGroupType() snn.GroupType {
	var t snn.GroupType
	t.Set(snn.Excitatory)
	t.Set(snn.TargetAMPA)
	t.Set(snn.TargetNMDA)
	return t
}

func inhGroupType() snn.GroupType {
	var t snn.GroupType
	t.Set(snn.Inhibitory)
	t.Set(snn.TargetGABAa)
	t.Set(snn.TargetGABAb)
	return t
}

func inputGroupType() snn.GroupType {
	var t snn.GroupType
	t.Set(snn.Poisson)
	t.Set(snn.Excitatory)
	t.Set(snn.TargetAMPA)
	return t
}

// poissonRates returns a flat-rate (Hz) source for an input group of size n.
func poissonRates(n int, hz float32) snn.HostRateTable {
	rates := make(snn.HostRateTable, n)
	for i := range rates {
		rates[i] = hz
	}
	return rates
}
