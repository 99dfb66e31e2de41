// Package sim integrates a reaction network over a time span and returns
// the sampled concentration trajectory.
//
// Simulate is synchronous and owns every buffer it touches, so a single
// kinetics.Network may back any number of concurrent calls.
package sim
