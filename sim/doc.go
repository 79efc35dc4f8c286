// Package sim provides the core engine for simulating irregular repetition
// slotted ALOHA (IRSA) random access with successive interference cancellation.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - frame.go: Slot and Frame ownership model (slots are index-addressed, never shared)
//   - scheduler.go: replica-count draws and slot placement for each UE
//   - decoder.go: the iterative SIC pass/peel loop
//
// # Architecture
//
// The sim package defines the PHY adapter interface and the collision-resolution
// core; the reference pilot-aided QPSK adapter lives in sim/phy. One trial is:
//
//	GeneratePlacements -> BuildReceivedFrame -> DecodeFrame
//
// driver.go wires trials together and runs independent trials in parallel;
// metrics.go aggregates per-trial results into batch statistics.
//
// All randomness flows through a PartitionedRNG (rng.go) seeded from the
// configured master seed, so every trial is individually reproducible.
package sim
