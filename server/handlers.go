package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/trains-in-motion/stations"
	"github.com/theoremus-urban-solutions/trains-in-motion/tracker"
)

type trainsResponse struct {
	Trains      []tracker.TrainState          `json:"trains"`
	LastUpdated string                        `json:"last_updated,omitempty"`
	Feeds       map[string]tracker.FeedStatus `json:"feeds,omitempty"`
}

type stationsResponse struct {
	Stations []stations.Station `json:"stations"`
}

type healthResponse struct {
	Status       string                        `json:"status"`
	Reason       string                        `json:"reason,omitempty"`
	LastUpdated  string                        `json:"last_updated,omitempty"`
	ActiveTrains int                           `json:"active_trains"`
	Feeds        map[string]tracker.FeedStatus `json:"feeds"`
}

func (s *Server) handleTrains(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap, ok := s.store.Current()
	if !ok {
		// Explicit pre-init sentinel: an empty but well-formed response.
		_ = json.NewEncoder(w).Encode(trainsResponse{Trains: []tracker.TrainState{}})
		return
	}
	_ = json.NewEncoder(w).Encode(trainsResponse{
		Trains:      snap.Trains,
		LastUpdated: snap.GeneratedAt.UTC().Format(time.RFC3339),
		Feeds:       snap.Feeds,
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stationsResponse{Stations: s.table.All()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{Status: "ok", Feeds: s.agg.Health()}
	snap, ok := s.store.Current()
	switch {
	case !ok:
		resp.Status = "degraded"
		resp.Reason = "no_data"
	default:
		resp.LastUpdated = snap.GeneratedAt.UTC().Format(time.RFC3339)
		resp.ActiveTrains = len(snap.Trains)
		if age := time.Since(snap.GeneratedAt); age > s.stale {
			resp.Status = "degraded"
			resp.Reason = fmt.Sprintf("stale_data (age: %ds)", int(age.Seconds()))
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
