// Package feedtest builds GTFS-RT protobuf payloads for tests.
package feedtest

import (
	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Stop is one stop_time_update in a fixture trip.
type Stop struct {
	ID      string
	Arrival int64
}

// Trip describes one trip_update entity in a fixture feed.
type Trip struct {
	TripID    string
	RouteID   string
	Timestamp int64
	Stops     []Stop
}

// FeedMessage assembles a FeedMessage proto from fixture trips.
func FeedMessage(headerTS int64, trips ...Trip) *gtfs.FeedMessage {
	fm := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(headerTS)),
		},
	}
	for i, tr := range trips {
		tu := &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{},
		}
		if tr.TripID != "" {
			tu.Trip.TripId = proto.String(tr.TripID)
		}
		if tr.RouteID != "" {
			tu.Trip.RouteId = proto.String(tr.RouteID)
		}
		if tr.Timestamp != 0 {
			tu.Timestamp = proto.Uint64(uint64(tr.Timestamp))
		}
		for _, s := range tr.Stops {
			stu := &gtfs.TripUpdate_StopTimeUpdate{}
			if s.ID != "" {
				stu.StopId = proto.String(s.ID)
			}
			if s.Arrival != 0 {
				stu.Arrival = &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(s.Arrival)}
			}
			tu.StopTimeUpdate = append(tu.StopTimeUpdate, stu)
		}
		fm.Entity = append(fm.Entity, &gtfs.FeedEntity{
			Id:         proto.String(entityID(i)),
			TripUpdate: tu,
		})
	}
	return fm
}

// Payload marshals a fixture feed into raw protobuf bytes.
func Payload(headerTS int64, trips ...Trip) []byte {
	data, err := proto.Marshal(FeedMessage(headerTS, trips...))
	if err != nil {
		panic(err)
	}
	return data
}

func entityID(i int) string {
	return string(rune('A' + i))
}
