package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theoremus-urban-solutions/trains-in-motion/config"
	"github.com/theoremus-urban-solutions/trains-in-motion/stations"
	"github.com/theoremus-urban-solutions/trains-in-motion/tracker"
)

func newTestServer(t *testing.T) (*Server, *tracker.Store) {
	t.Helper()
	cfg := &config.AppConfig{
		Server: config.ServerConfig{Port: 0, AllowedOrigins: []string{"*"}},
		Poller: config.PollerConfig{IntervalSec: 15, FetchTimeoutMS: 1000, StaleAfterSec: 60},
		Feeds:  []config.FeedConfig{{Name: "ACE", URL: "http://localhost:0", Routes: []string{"A"}}},
	}
	table := stations.NewTable([]stations.Station{
		{ID: "A24N", Name: "Canal St", Lat: 40.720824, Lon: -74.005229},
	})
	store := tracker.NewStore()
	agg := tracker.NewAggregator(cfg, table, store)
	return New(cfg, store, agg, table), store
}

func snapshotAt(generated time.Time) *tracker.Snapshot {
	return &tracker.Snapshot{
		Trains: []tracker.TrainState{
			{TripID: "trip_A1", RouteID: "A", Lat: 40.720824, Lon: -74.005229, NextStopID: "A24N"},
		},
		Feeds:       map[string]tracker.FeedStatus{"ACE": {Feed: "ACE", OK: true, Trains: 1}},
		GeneratedAt: generated,
	}
}

func TestHandleTrains_PreInitSentinel(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trains", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp trainsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Trains == nil || len(resp.Trains) != 0 {
		t.Errorf("pre-init trains = %v, want empty list", resp.Trains)
	}
	if resp.LastUpdated != "" {
		t.Errorf("pre-init last_updated = %q, want empty", resp.LastUpdated)
	}
}

func TestHandleTrains_PublishedSnapshot(t *testing.T) {
	srv, store := newTestServer(t)
	store.Publish(snapshotAt(time.Now()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trains", nil))

	var resp trainsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(resp.Trains) != 1 || resp.Trains[0].TripID != "trip_A1" {
		t.Errorf("trains = %+v", resp.Trains)
	}
	if resp.LastUpdated == "" {
		t.Error("last_updated should be set")
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=10" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestHandleStations(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stations", nil))

	var resp stationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(resp.Stations) != 1 || resp.Stations[0].ID != "A24N" {
		t.Errorf("stations = %+v", resp.Stations)
	}
}

func TestHandleHealth(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
		var resp healthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if resp.Status != "degraded" || resp.Reason != "no_data" {
			t.Errorf("health = %+v", resp)
		}
	})

	t.Run("fresh", func(t *testing.T) {
		srv, store := newTestServer(t)
		store.Publish(snapshotAt(time.Now()))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		var resp healthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if resp.Status != "ok" || resp.ActiveTrains != 1 {
			t.Errorf("health = %+v", resp)
		}
	})

	t.Run("stale", func(t *testing.T) {
		srv, store := newTestServer(t)
		store.Publish(snapshotAt(time.Now().Add(-5 * time.Minute)))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
		var resp healthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad JSON: %v", err)
		}
		if resp.Status != "degraded" || !strings.HasPrefix(resp.Reason, "stale_data") {
			t.Errorf("health = %+v", resp)
		}
	})
}

func TestWebSocket_SeedAndBroadcast(t *testing.T) {
	srv, store := newTestServer(t)
	store.Publish(snapshotAt(time.Now()))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The freshly connected client receives the current snapshot.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var seeded trainsResponse
	if err := conn.ReadJSON(&seeded); err != nil {
		t.Fatalf("read seed: %v", err)
	}
	if len(seeded.Trains) != 1 {
		t.Fatalf("seed trains = %+v", seeded.Trains)
	}

	// And every publish is pushed.
	next := snapshotAt(time.Now())
	next.Trains = append(next.Trains, tracker.TrainState{TripID: "trip_A2"})
	store.Publish(next)
	srv.Broadcast(next)

	var pushed trainsResponse
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if len(pushed.Trains) != 2 {
		t.Errorf("broadcast trains = %d, want 2", len(pushed.Trains))
	}
}
