// Package preflight checks that a run can read its inputs and write its
// outputs before anything is written.
//
// A run resolves every trim first and only then writes files. Running these
// checks between the two keeps a failed run from leaving some outputs
// updated and others stale.
package preflight
