package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/irsa-sim/irsa-sim/sim"
	"github.com/irsa-sim/irsa-sim/sim/phy"
)

var (
	// CLI flags mirroring sim.SimulationConfig
	configPath   string    // optional YAML config file; flags override nothing when set
	frameSize    int       // slots per frame
	numUEs       int       // contending UEs per frame
	replicaProbs []float64 // probability of r replicas at index r
	ebN0dB       float64   // Eb/N0 specification in dB
	impairment   string    // channel impairment mode
	seed         int64     // master seed for all randomness
	trials       int       // independent trials per batch
	parallelism  int       // trial workers; 0 = GOMAXPROCS
	logLevel     string    // log verbosity level

	// CLI flags for the reference QPSK adapter
	messageBits int // payload bits per UE message
	numPilots   int // pilot symbols per slot block

	// sweep flags
	uesFrom int
	uesTo   int
	uesStep int
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "irsa-sim",
	Short: "Frame-level simulator for IRSA random access with SIC decoding",
}

// setup parses the log level and assembles the configuration and adapter
// shared by the run and sweep commands.
func setup() (*sim.SimulationConfig, sim.Adapter) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	var cfg *sim.SimulationConfig
	if configPath != "" {
		cfg, err = LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Unable to read simulation config: %v", err)
		}
	} else {
		cfg = &sim.SimulationConfig{
			FrameSize:    frameSize,
			NumUEs:       numUEs,
			ReplicaProbs: replicaProbs,
			EbN0dB:       ebN0dB,
			Impairment:   sim.ImpairmentMode(impairment),
			Seed:         seed,
			Trials:       trials,
			Parallelism:  parallelism,
		}
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("%v", err)
	}

	adapter, err := phy.NewQPSK(messageBits, numPilots)
	if err != nil {
		logrus.Fatalf("Unable to build QPSK adapter: %v", err)
	}
	return cfg, adapter
}

// runCmd executes one batch of trials using parameters from CLI flags.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of independent IRSA frame trials",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, adapter := setup()

		logrus.Infof("Starting simulation: %d slots, %d UEs, %d trials, seed=%d",
			cfg.FrameSize, cfg.NumUEs, cfg.Trials, cfg.Seed)
		startTime := time.Now()

		results, err := sim.RunTrials(cfg, adapter)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		metrics := sim.Aggregate(cfg, results)
		metrics.Print(cfg)

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// sweepCmd sweeps the offered UE count and prints one aggregate row per point.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the offered UE count and report identified UEs per point",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, adapter := setup()

		points, err := sim.SweepUEs(cfg, adapter, uesFrom, uesTo, uesStep)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}

		fmt.Println("offered_ues identified_mean identified_stddev throughput")
		for _, p := range points {
			fmt.Printf("%11d %15.3f %17.3f %10.3f\n",
				p.NumUEs, p.Metrics.MeanIdentified, p.Metrics.StdDevIdentified, p.Metrics.Throughput)
		}
	},
}

func init() {
	defaults := sim.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML simulation config file (overrides individual flags)")
	rootCmd.PersistentFlags().IntVar(&frameSize, "frame-size", defaults.FrameSize, "Number of slots per frame")
	rootCmd.PersistentFlags().IntVar(&numUEs, "ues", defaults.NumUEs, "Number of contending UEs per frame")
	rootCmd.PersistentFlags().Float64SliceVar(&replicaProbs, "replica-probs", defaults.ReplicaProbs, "Probability of r replicas at index r; must sum to 1")
	rootCmd.PersistentFlags().Float64Var(&ebN0dB, "ebn0-db", defaults.EbN0dB, "Eb/N0 in dB")
	rootCmd.PersistentFlags().StringVar(&impairment, "impairment", string(defaults.Impairment), "Channel impairment mode: none | phase-only")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", defaults.Seed, "Master random seed")
	rootCmd.PersistentFlags().IntVar(&trials, "trials", defaults.Trials, "Number of independent trials")
	rootCmd.PersistentFlags().IntVar(&parallelism, "parallelism", defaults.Parallelism, "Parallel trial workers (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&messageBits, "message-bits", 64, "Payload bits per UE message (even)")
	rootCmd.PersistentFlags().IntVar(&numPilots, "pilots", 4, "Pilot symbols per slot block")

	sweepCmd.Flags().IntVar(&uesFrom, "from", 1, "First UE count in the sweep")
	sweepCmd.Flags().IntVar(&uesTo, "to", 10, "Last UE count in the sweep")
	sweepCmd.Flags().IntVar(&uesStep, "step", 1, "UE count increment")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
