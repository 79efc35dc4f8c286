// Aggregates per-trial decode outcomes into batch statistics for reporting.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// BatchMetrics summarizes a batch of independent trials.
type BatchMetrics struct {
	Trials       int
	FailedTrials int // trials aborted by a PHY adapter failure

	MeanIdentified   float64 // identified UEs per trial
	StdDevIdentified float64
	MeanUnresolved   float64 // unresolved slots per trial
	MeanPasses       float64
	MeanSilent       float64 // UEs with zero replicas per trial

	// Throughput is the classic IRSA metric: identified UEs per slot.
	Throughput float64
}

// Aggregate reduces trial results to batch statistics. Failed trials are
// counted but excluded from the averages.
func Aggregate(cfg *SimulationConfig, results []TrialResult) BatchMetrics {
	m := BatchMetrics{Trials: len(results)}

	var identified, unresolved, passes, silent []float64
	for _, r := range results {
		if r.Err != nil {
			m.FailedTrials++
			continue
		}
		identified = append(identified, float64(len(r.IdentifiedUEs)))
		unresolved = append(unresolved, float64(len(r.UnresolvedSlots)))
		passes = append(passes, float64(r.Passes))
		silent = append(silent, float64(r.SilentUEs))
	}
	if len(identified) == 0 {
		return m
	}

	m.MeanIdentified = stat.Mean(identified, nil)
	if len(identified) > 1 {
		m.StdDevIdentified = stat.StdDev(identified, nil)
	}
	m.MeanUnresolved = stat.Mean(unresolved, nil)
	m.MeanPasses = stat.Mean(passes, nil)
	m.MeanSilent = stat.Mean(silent, nil)
	m.Throughput = m.MeanIdentified / float64(cfg.FrameSize)
	return m
}

// Print displays aggregated metrics at the end of a batch.
func (m BatchMetrics) Print(cfg *SimulationConfig) {
	fmt.Println("=== IRSA Simulation Metrics ===")
	fmt.Printf("Trials               : %d\n", m.Trials)
	if m.FailedTrials > 0 {
		fmt.Printf("Failed trials        : %d\n", m.FailedTrials)
	}
	fmt.Printf("Offered UEs per frame: %d (%d slots)\n", cfg.NumUEs, cfg.FrameSize)
	fmt.Printf("Identified UEs       : %.2f +/- %.2f\n", m.MeanIdentified, m.StdDevIdentified)
	fmt.Printf("Unresolved slots     : %.2f\n", m.MeanUnresolved)
	fmt.Printf("Decoder passes       : %.2f\n", m.MeanPasses)
	fmt.Printf("Silent UEs           : %.2f\n", m.MeanSilent)
	fmt.Printf("Throughput           : %.3f UEs/slot\n", m.Throughput)
}
