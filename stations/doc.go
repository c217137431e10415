// Package stations loads the static station reference table.
//
// The table maps stop_id to a name and a WGS84 coordinate. It is built once
// at startup from a GTFS stops.txt style CSV file and is immutable afterwards,
// so concurrent readers need no synchronization.
package stations
