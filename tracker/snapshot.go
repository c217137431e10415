package tracker

import "time"

// Vector is a unit direction vector in lon/lat space plus its compass bearing.
type Vector struct {
	Dx      float64 `json:"dx"`
	Dy      float64 `json:"dy"`
	Bearing float64 `json:"bearing"`
}

// TrainState is one train's published position within a single snapshot.
// The coordinate is always the train's next scheduled stop; Direction is nil
// when the heading could not be inferred and the map must omit the arrow.
type TrainState struct {
	TripID     string  `json:"trip_id"`
	RouteID    string  `json:"route_id"`
	Feed       string  `json:"feed"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Direction  *Vector `json:"direction,omitempty"`
	Color      string  `json:"color,omitempty"`
	NextStopID string  `json:"next_stop_id"`
	NextStop   string  `json:"next_stop,omitempty"`
	UpdatedAt  int64   `json:"updated_at"`
}

// FeedStatus records one feed's outcome for the most recent cycle it took
// part in. LastSuccess survives failed cycles so health can report how long
// a feed has been dark.
type FeedStatus struct {
	Feed        string `json:"feed"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	Trains      int    `json:"trains"`
	Skipped     int    `json:"skipped,omitempty"`
	LastSuccess int64  `json:"last_success,omitempty"`
}

// Snapshot is one immutable, fully merged view of all known train states.
// It is never mutated after publication; a new cycle replaces it wholesale.
type Snapshot struct {
	Trains      []TrainState          `json:"trains"`
	Feeds       map[string]FeedStatus `json:"feeds"`
	GeneratedAt time.Time             `json:"generated_at"`
}
