// Package dependencies drives the check and update commands. The service sanitizes
// the configured roots, discovers projects, dispatches each project to its platform
// adapter, verifies every precondition before touching any project and then
// processes projects one at a time into a report.
package dependencies
