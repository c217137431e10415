package stations

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Station is one row of the static station reference data.
type Station struct {
	ID   string  `json:"stop_id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Table is an immutable stop_id -> Station lookup.
type Table struct {
	byID    map[string]Station
	order   []string
	skipped int
}

// NewTable builds a table directly from station records. Later duplicates
// replace earlier ones, matching Load.
func NewTable(list []Station) *Table {
	t := &Table{byID: make(map[string]Station, len(list))}
	for _, st := range list {
		if _, dup := t.byID[st.ID]; !dup {
			t.order = append(t.order, st.ID)
		}
		t.byID[st.ID] = st
	}
	return t
}

// Load reads a stops.txt style CSV file into a Table. The file must carry
// stop_id, stop_lat and stop_lon columns; stop_name is optional. Rows with
// unparsable coordinates are skipped and counted, a missing file is an error
// (startup treats it as fatal).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rec, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	sID := idx("stop_id")
	sName := idx("stop_name")
	sLat := idx("stop_lat")
	sLon := idx("stop_lon")
	if sID < 0 || sLat < 0 || sLon < 0 {
		return nil, fmt.Errorf("%s: missing stop_id/stop_lat/stop_lon columns", path)
	}

	t := &Table{byID: make(map[string]Station, len(rec)-1)}
	for _, row := range rec[1:] {
		if sID >= len(row) || sLat >= len(row) || sLon >= len(row) {
			t.skipped++
			continue
		}
		id := row[sID]
		lat, errLat := strconv.ParseFloat(row[sLat], 64)
		lon, errLon := strconv.ParseFloat(row[sLon], 64)
		if id == "" || errLat != nil || errLon != nil {
			t.skipped++
			continue
		}
		st := Station{ID: id, Lat: lat, Lon: lon}
		if sName >= 0 && sName < len(row) {
			st.Name = row[sName]
		}
		if _, dup := t.byID[id]; !dup {
			t.order = append(t.order, id)
		}
		t.byID[id] = st
	}
	return t, nil
}

// Get resolves a stop identifier to its station.
func (t *Table) Get(stopID string) (Station, bool) {
	st, ok := t.byID[stopID]
	return st, ok
}

// All returns every station in file order.
func (t *Table) All() []Station {
	out := make([]Station, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Len reports the number of resolvable stations.
func (t *Table) Len() int { return len(t.byID) }

// Skipped reports how many rows were dropped while loading.
func (t *Table) Skipped() int { return t.skipped }
