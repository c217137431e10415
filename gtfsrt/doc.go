// Package gtfsrt fetches and decodes GTFS-Realtime protobuf feeds.
//
// Decode normalizes one feed payload into per-trip VehicleUpdate records.
// Malformed sub-records are skipped and counted instead of failing the whole
// payload; only a payload whose protobuf wrapper cannot be parsed is a
// feed-level error.
package gtfsrt
