package tracker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/trains-in-motion/config"
	"github.com/theoremus-urban-solutions/trains-in-motion/gtfsrt"
	"github.com/theoremus-urban-solutions/trains-in-motion/stations"
)

// Aggregator runs the poll/decode/infer/merge pass over all configured feeds
// and publishes the result into the Store.
type Aggregator struct {
	feeds   []config.FeedConfig
	colors  map[string]string
	client  *gtfsrt.Client
	table   *stations.Table
	store   *Store
	timeout time.Duration

	onPublish func(*Snapshot)

	mu     sync.Mutex
	health map[string]FeedStatus
}

type feedResult struct {
	feed    string
	updates []gtfsrt.VehicleUpdate
	skipped int
	err     error
}

// NewAggregator wires an aggregator from configuration, the station table
// and the store it publishes into.
func NewAggregator(cfg *config.AppConfig, table *stations.Table, store *Store) *Aggregator {
	timeout := time.Duration(cfg.Poller.FetchTimeoutMS) * time.Millisecond
	return &Aggregator{
		feeds:   cfg.Feeds,
		colors:  cfg.RouteColors,
		client:  gtfsrt.NewClient(timeout),
		table:   table,
		store:   store,
		timeout: timeout,
		health:  map[string]FeedStatus{},
	}
}

// SetOnPublish registers a hook invoked after every published snapshot.
// Must be called before the first cycle.
func (a *Aggregator) SetOnPublish(fn func(*Snapshot)) { a.onPublish = fn }

// Cycle fetches every feed concurrently, merges the results and publishes a
// fresh snapshot. A failing feed degrades only itself: the snapshot still
// carries every other feed's trains, with the failure recorded per feed.
// Cycle only returns an error when every feed failed.
func (a *Aggregator) Cycle(ctx context.Context) error {
	started := time.Now()

	results := make([]feedResult, len(a.feeds))
	var wg sync.WaitGroup
	for i, fc := range a.feeds {
		wg.Add(1)
		go func(i int, fc config.FeedConfig) {
			defer wg.Done()
			results[i] = a.pollFeed(ctx, fc)
		}(i, fc)
	}
	wg.Wait()

	now := time.Now()
	merged := make(map[string]TrainState)
	feeds := make(map[string]FeedStatus, len(results))
	unresolved := 0
	failed := 0

	// Feeds merge in configuration order, so the dedup rule is
	// deterministic: newest reported timestamp wins, later-processed feed
	// wins a tie.
	for _, r := range results {
		st := FeedStatus{Feed: r.feed, Skipped: r.skipped}
		if r.err != nil {
			failed++
			st.Error = r.err.Error()
			st.LastSuccess = a.lastSuccess(r.feed)
			feeds[r.feed] = st
			log.Printf("%s: feed failed: %v", r.feed, r.err)
			continue
		}
		st.OK = true
		st.LastSuccess = now.Unix()
		for _, u := range r.updates {
			ts, ok := Infer(u, a.table, now)
			if !ok {
				unresolved++
				continue
			}
			ts.Color = a.colors[ts.RouteID]
			if cur, exists := merged[ts.TripID]; !exists || ts.UpdatedAt >= cur.UpdatedAt {
				merged[ts.TripID] = ts
			}
		}
		feeds[r.feed] = st
	}

	// Per-feed counts come from the merged result, not the raw updates:
	// a trip that lost the dedup to another feed is not that feed's train.
	trains := make([]TrainState, 0, len(merged))
	for _, ts := range merged {
		trains = append(trains, ts)
		if st, ok := feeds[ts.Feed]; ok {
			st.Trains++
			feeds[ts.Feed] = st
		}
	}
	sort.Slice(trains, func(i, j int) bool { return trains[i].TripID < trains[j].TripID })

	snap := &Snapshot{Trains: trains, Feeds: feeds, GeneratedAt: now}
	a.store.Publish(snap)
	a.setHealth(feeds)
	if a.onPublish != nil {
		a.onPublish(snap)
	}

	log.Printf("cycle: %d trains, %d/%d feeds ok, %d unresolvable stops, took %v",
		len(trains), len(feeds)-failed, len(feeds), unresolved,
		time.Since(started).Round(time.Millisecond))

	if failed == len(a.feeds) && len(a.feeds) > 0 {
		return fmt.Errorf("all %d feeds failed", failed)
	}
	return nil
}

// pollFeed fetches and decodes one feed. Panics are contained here so a bad
// feed can never take the cycle down with it.
func (a *Aggregator) pollFeed(ctx context.Context, fc config.FeedConfig) (res feedResult) {
	res.feed = fc.Name
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic polling %s: %v", fc.Name, r)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	payload, err := a.client.Fetch(cctx, fc.URL)
	if err != nil {
		res.err = err
		return
	}
	dec, err := gtfsrt.Decode(fc.Name, payload)
	if err != nil {
		res.err = err
		return
	}
	res.updates = dec.Updates
	res.skipped = dec.Skipped
	return
}

// Health returns a copy of the per-feed status map, carrying each feed's
// last success across failed cycles.
func (a *Aggregator) Health() map[string]FeedStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]FeedStatus, len(a.health))
	for k, v := range a.health {
		out[k] = v
	}
	return out
}

func (a *Aggregator) lastSuccess(feed string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.health[feed].LastSuccess
}

func (a *Aggregator) setHealth(feeds map[string]FeedStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range feeds {
		a.health[k] = v
	}
}
