// Package discovery finds sample projects in the immediate subdirectories of
// configured roots and tags each with its platform based on the manifest file it
// contains.
package discovery
