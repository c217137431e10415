// Package tracker turns decoded vehicle updates into a published picture of
// trains in motion.
//
// Each cycle the Aggregator polls every configured feed, infers a position
// and heading for every trip, merges the results by trip id and publishes an
// immutable Snapshot into the Store. The Scheduler drives cycles on a fixed
// interval and never lets two cycles overlap.
package tracker
