// Package stage defines the contract pipeline stages implement for the
// workflow manager.
package stage
