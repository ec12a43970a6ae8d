// Package report aggregates per-project check and update results into summaries,
// renders them for humans or as JSON, and maps them to process exit codes.
package report
