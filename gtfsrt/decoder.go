package gtfsrt

import (
	"fmt"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Decode parses one GTFS-RT protobuf payload into normalized vehicle updates.
// Entities that are not trip updates are ignored; trip updates missing a trip
// id or any usable stop are counted in DecodeResult.Skipped. Decoding is pure:
// the same payload always yields the same result.
func Decode(feedID string, payload []byte) (DecodeResult, error) {
	var res DecodeResult
	fm := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(payload, fm); err != nil {
		return res, fmt.Errorf("decode feed %s: %w", feedID, err)
	}

	var headerTS int64
	if fm.Header != nil && fm.Header.Timestamp != nil {
		headerTS = int64(*fm.Header.Timestamp)
	}

	for _, e := range fm.Entity {
		if e == nil || e.TripUpdate == nil {
			continue
		}
		tu := e.TripUpdate
		if tu.Trip == nil || tu.Trip.TripId == nil || *tu.Trip.TripId == "" {
			res.Skipped++
			continue
		}

		u := VehicleUpdate{
			TripID:    *tu.Trip.TripId,
			FeedID:    feedID,
			Timestamp: headerTS,
		}
		if tu.Trip.RouteId != nil {
			u.RouteID = *tu.Trip.RouteId
		}
		if tu.Timestamp != nil && *tu.Timestamp > 0 {
			u.Timestamp = int64(*tu.Timestamp)
		}

		for _, stu := range tu.StopTimeUpdate {
			if stu == nil || stu.StopId == nil || *stu.StopId == "" {
				res.Skipped++
				continue
			}
			st := StopTime{StopID: *stu.StopId}
			if stu.Arrival != nil && stu.Arrival.Time != nil {
				st.Arrival = *stu.Arrival.Time
			}
			if stu.Departure != nil && stu.Departure.Time != nil {
				st.Departure = *stu.Departure.Time
			}
			u.Stops = append(u.Stops, st)
		}
		if len(u.Stops) == 0 {
			res.Skipped++
			continue
		}
		res.Updates = append(res.Updates, u)
	}
	return res, nil
}
