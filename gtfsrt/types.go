package gtfsrt

// StopTime is one entry of a trip's reported stop sequence.
type StopTime struct {
	StopID    string
	Arrival   int64 // unix seconds, 0 when the feed carried none
	Departure int64
}

// VehicleUpdate is the normalized per-trip record produced by one decode
// pass. It is transient: the tracker consumes it during the same cycle and
// discards it after merging.
type VehicleUpdate struct {
	TripID    string
	RouteID   string
	FeedID    string
	Timestamp int64 // unix seconds the update was reported at
	Stops     []StopTime
}

// DecodeResult carries the updates recovered from one feed payload plus a
// count of sub-records that had to be skipped.
type DecodeResult struct {
	Updates []VehicleUpdate
	Skipped int
}
