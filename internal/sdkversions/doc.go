// Package sdkversions reports which version of a shared SDK every sample project
// declares in its manifest and flags projects that disagree.
package sdkversions
