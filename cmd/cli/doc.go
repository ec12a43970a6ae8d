// Package cli constructs the depctl command-line interface. It wires the Cobra
// command hierarchy to the layered configuration loader and the zap loggers, and
// maps command outcomes to process exit codes through Run.
package cli
