// Package calc provides the closed-form efficiency calculator for LLM
// inference deployments.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - flops.go: theoretical prefill/decode FLOPs for one request shape
//   - utilization.go: MFU and bandwidth utilization against hardware peaks
//   - concurrency.go: how many requests fit in device memory at full context
//
// # Architecture
//
// The calc package holds the pure engine; supporting surfaces live in
// sub-packages:
//   - calc/catalog/: built-in and file-based hardware/model catalogs
//   - calc/api/: HTTP calculation service and its client
//   - calc/history/: persisted record of past calculations
//   - calc/sweep/: batch comparison runs across configurations
//
// Everything in this package is stateless and free of I/O. ComputeUtilization
// and ComputeMaxConcurrency are plain functions over value inputs; results
// carry fresh ids and timestamps but calculations never read the clock for
// anything else, so identical inputs always produce identical numbers. The
// Calculator interface in calculator.go is how commands swap the in-process
// engine for the remote service client.
package calc
