package sim

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// TrialResult captures the outcome of one independent frame-level trial.
type TrialResult struct {
	Trial           int
	IdentifiedUEs   []int
	UnresolvedSlots []int
	Passes          int
	SilentUEs       int // UEs that drew replica count zero and never transmitted

	// Err is set when the trial aborted (ConfigError or PhyAdapterError).
	// Failure is isolated at trial granularity: other trials in the batch
	// are unaffected.
	Err error
}

// RunTrial simulates one frame: placements, encoding, collision channel, and
// SIC decoding. The trial's randomness is derived from the master seed and
// the trial index, so any single trial of a batch can be reproduced alone.
func RunTrial(cfg *SimulationConfig, adapter Adapter, trial int) TrialResult {
	res := TrialResult{Trial: trial}

	rng := NewPartitionedRNG(TrialKey(NewSimulationKey(cfg.Seed), trial))
	ues, err := GeneratePlacements(cfg, adapter, rng)
	if err != nil {
		res.Err = err
		return res
	}
	for _, ue := range ues {
		if len(ue.ReplicaSlots) == 0 {
			res.SilentUEs++
		}
	}

	frame := BuildReceivedFrame(ues, cfg, adapter, rng)
	decode, err := DecodeFrame(frame, ues, cfg, adapter)
	if err != nil {
		res.Err = err
		return res
	}

	res.IdentifiedUEs = decode.IdentifiedUEs
	res.UnresolvedSlots = decode.UnresolvedSlots
	res.Passes = decode.Passes
	logrus.Debugf("trial %d: identified %d/%d UEs in %d passes, %d unresolved slots",
		trial, len(res.IdentifiedUEs), cfg.NumUEs, res.Passes, len(res.UnresolvedSlots))
	return res
}

// RunTrials runs cfg.Trials independent trials and returns their results in
// trial order. Trials share no mutable state, so they run on parallel
// workers; a failed trial records its error in its own slot and the batch
// continues.
func RunTrials(cfg *SimulationConfig, adapter Adapter) ([]TrialResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	workers := cfg.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	results := make([]TrialResult, cfg.Trials)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range jobs {
				results[trial] = RunTrial(cfg, adapter, trial)
			}
		}()
	}
	for trial := 0; trial < cfg.Trials; trial++ {
		jobs <- trial
	}
	close(jobs)
	wg.Wait()
	return results, nil
}

// SweepPoint is the aggregate outcome for one value of the swept dimension.
type SweepPoint struct {
	NumUEs  int
	Metrics BatchMetrics
}

// SweepUEs re-runs the trial batch for each UE count in [from, to] with the
// given step and returns one aggregated point per count. The master seed is
// shared across points; per-trial keys keep the draws independent.
func SweepUEs(cfg *SimulationConfig, adapter Adapter, from, to, step int) ([]SweepPoint, error) {
	if from <= 0 || to < from || step <= 0 {
		return nil, &ConfigError{Field: "sweep", Reason: "requires 0 < from <= to and step > 0"}
	}

	var points []SweepPoint
	for n := from; n <= to; n += step {
		pointCfg := *cfg
		pointCfg.NumUEs = n
		results, err := RunTrials(&pointCfg, adapter)
		if err != nil {
			return nil, err
		}
		m := Aggregate(&pointCfg, results)
		logrus.Infof("sweep: %d UEs offered, %.2f identified on average", n, m.MeanIdentified)
		points = append(points, SweepPoint{NumUEs: n, Metrics: m})
	}
	return points, nil
}
