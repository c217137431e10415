package tracker

import (
	"time"

	"github.com/theoremus-urban-solutions/trains-in-motion/gtfsrt"
	"github.com/theoremus-urban-solutions/trains-in-motion/stations"
)

// Infer resolves one vehicle update into a publishable train state.
//
// The train is placed at its next scheduled stop rather than interpolated
// along the track segment: the upstream data carries a stop sequence, not
// continuous telemetry. A train whose next stop is not in the station table
// is dropped for this cycle (ok=false) instead of being published with a
// garbage coordinate.
func Infer(u gtfsrt.VehicleUpdate, table *stations.Table, now time.Time) (TrainState, bool) {
	if len(u.Stops) == 0 {
		return TrainState{}, false
	}
	next := nextStopIndex(u.Stops, now)
	st, ok := table.Get(u.Stops[next].StopID)
	if !ok {
		return TrainState{}, false
	}

	ts := TrainState{
		TripID:     u.TripID,
		RouteID:    u.RouteID,
		Feed:       u.FeedID,
		Lat:        st.Lat,
		Lon:        st.Lon,
		NextStopID: st.ID,
		NextStop:   st.Name,
		UpdatedAt:  u.Timestamp,
	}

	// Heading comes from the stop immediately before the next one in the
	// trip's sequence. At the first listed stop, or when that previous stop
	// cannot be resolved, the heading stays unknown.
	if next > 0 {
		if prev, ok := table.Get(u.Stops[next-1].StopID); ok {
			if v, ok := Direction(prev.Lat, prev.Lon, st.Lat, st.Lon); ok {
				ts.Direction = &v
			}
		}
	}
	return ts, true
}

// nextStopIndex picks the first stop whose arrival is still ahead of now.
// Updates listing only past stops fall back to the first entry.
func nextStopIndex(stops []gtfsrt.StopTime, now time.Time) int {
	n := now.Unix()
	for i, s := range stops {
		if s.Arrival > 0 && s.Arrival > n {
			return i
		}
	}
	return 0
}
