// Package platforms wraps each ecosystem's package manager behind a common
// Adapter contract and dispatches discovered projects to the adapter registered
// for their platform.
//
// Adapters prefer the structured output a tool offers. Where a tool has none
// (CocoaPods, Yarn without --json support) a phrase heuristic classifies the
// output, and any wording change in those tools surfaces as an error result
// rather than a silent misclassification.
package platforms
