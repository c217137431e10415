package gtfsrt

import (
	"reflect"
	"testing"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/trains-in-motion/internal/feedtest"
)

func TestDecode(t *testing.T) {
	payload := feedtest.Payload(1700000000,
		feedtest.Trip{
			TripID:    "123450_A..N",
			RouteID:   "A",
			Timestamp: 1700000100,
			Stops: []feedtest.Stop{
				{ID: "A24N", Arrival: 1700000200},
				{ID: "A25N", Arrival: 1700000400},
			},
		},
		feedtest.Trip{
			TripID:  "123460_C..S",
			RouteID: "C",
			Stops:   []feedtest.Stop{{ID: "A32S"}},
		},
	)

	res, err := Decode("ACE", payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", res.Skipped)
	}
	if len(res.Updates) != 2 {
		t.Fatalf("Updates = %d, want 2", len(res.Updates))
	}

	u := res.Updates[0]
	if u.TripID != "123450_A..N" || u.RouteID != "A" || u.FeedID != "ACE" {
		t.Errorf("unexpected identity: %+v", u)
	}
	if u.Timestamp != 1700000100 {
		t.Errorf("Timestamp = %d, want the trip update's own timestamp", u.Timestamp)
	}
	if len(u.Stops) != 2 || u.Stops[0].StopID != "A24N" || u.Stops[0].Arrival != 1700000200 {
		t.Errorf("unexpected stops: %+v", u.Stops)
	}

	// No per-trip timestamp falls back to the feed header.
	if res.Updates[1].Timestamp != 1700000000 {
		t.Errorf("fallback Timestamp = %d, want header 1700000000", res.Updates[1].Timestamp)
	}
}

func TestDecode_Idempotent(t *testing.T) {
	payload := feedtest.Payload(1700000000,
		feedtest.Trip{
			TripID:  "123450_G..N",
			RouteID: "G",
			Stops:   []feedtest.Stop{{ID: "G22N", Arrival: 1700000300}},
		},
	)
	first, err := Decode("G", payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	second, err := Decode("G", payload)
	if err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("decoding the same payload twice differed:\n%+v\n%+v", first, second)
	}
}

func TestDecode_SkipsMalformedRecords(t *testing.T) {
	fm := feedtest.FeedMessage(1700000000,
		feedtest.Trip{TripID: "", Stops: []feedtest.Stop{{ID: "A24N"}}},          // no trip id
		feedtest.Trip{TripID: "ok_1", RouteID: "A"},                              // no stops at all
		feedtest.Trip{TripID: "ok_2", RouteID: "A", Stops: []feedtest.Stop{{}}},  // only a stop without id
		feedtest.Trip{TripID: "ok_3", RouteID: "A", Stops: []feedtest.Stop{{ID: "A24N", Arrival: 5}, {}}},
	)
	// A vehicle-position entity is simply not a trip update, never "malformed".
	fm.Entity = append(fm.Entity, &gtfs.FeedEntity{
		Id:      proto.String("vp"),
		Vehicle: &gtfs.VehiclePosition{},
	})
	payload, err := proto.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	res, err := Decode("ACE", payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(res.Updates) != 1 || res.Updates[0].TripID != "ok_3" {
		t.Fatalf("expected only ok_3 to survive, got %+v", res.Updates)
	}
	// no-trip-id entity, stop-less trip, ok_2's id-less stop plus its then-empty
	// stop list, ok_3's id-less stop
	if res.Skipped != 5 {
		t.Errorf("Skipped = %d, want 5", res.Skipped)
	}
	if len(res.Updates[0].Stops) != 1 {
		t.Errorf("ok_3 should keep its one valid stop, got %+v", res.Updates[0].Stops)
	}
}

func TestDecode_CorruptPayload(t *testing.T) {
	if _, err := Decode("ACE", []byte{0xde, 0xad, 0xbe, 0xef}); err == nil {
		t.Error("expected error for a corrupt payload")
	}
}

func TestDecode_EmptyPayload(t *testing.T) {
	res, err := Decode("ACE", nil)
	if err != nil {
		t.Fatalf("Decode of empty payload failed: %v", err)
	}
	if len(res.Updates) != 0 || res.Skipped != 0 {
		t.Errorf("empty payload should decode to nothing, got %+v", res)
	}
}
