package physio

import (
	"fmt"
	"sort"
	"time"
)

// Channel names as they appear in recording files and feature columns.
const (
	ChannelEDA         = "eda"
	ChannelHeartRate   = "heart_rate"
	ChannelTemperature = "temperature"
)

// Channels lists the sensor channels of a standard recording, in column order.
var Channels = []string{ChannelEDA, ChannelHeartRate, ChannelTemperature}

// Reading represents a single sensor sample: one timestamped row of a
// subject's recording. Readings are immutable once loaded and ordered by
// timestamp within a (subject, session) group.
type Reading struct {
	Timestamp   time.Time
	SubjectID   string
	Session     string
	EDA         float64
	HeartRate   float64
	Temperature float64
}

// Channel returns the named channel value of the reading.
func (r Reading) Channel(name string) (float64, error) {
	switch name {
	case ChannelEDA:
		return r.EDA, nil
	case ChannelHeartRate:
		return r.HeartRate, nil
	case ChannelTemperature:
		return r.Temperature, nil
	}
	return 0, fmt.Errorf("unknown channel '%s'", name)
}

// Table holds an in-memory recording: an ordered sequence of readings plus
// the set of channels the source file actually carried. A channel missing
// from the source is skipped by the extractors, never an error.
type Table struct {
	Readings []Reading

	channels map[string]struct{}
}

// NewTable creates a table over the given readings, assuming all standard
// channels are present.
func NewTable(readings []Reading) *Table {
	t := &Table{Readings: readings}
	for _, ch := range Channels {
		t.SetChannel(ch)
	}
	return t
}

// SetChannel marks a channel as present in the table.
func (t *Table) SetChannel(name string) {
	if t.channels == nil {
		t.channels = make(map[string]struct{}, len(Channels))
	}
	t.channels[name] = struct{}{}
}

// HasChannel reports whether the source file carried the named channel.
func (t *Table) HasChannel(name string) bool {
	_, ok := t.channels[name]
	return ok
}

// PresentChannels returns the standard channels present in the table,
// in canonical column order.
func (t *Table) PresentChannels() []string {
	var present []string
	for _, ch := range Channels {
		if t.HasChannel(ch) {
			present = append(present, ch)
		}
	}
	return present
}

// Len returns the number of readings in the table.
func (t *Table) Len() int {
	return len(t.Readings)
}

// Column returns the named channel as a flat series, in row order.
func (t *Table) Column(name string) ([]float64, error) {
	values := make([]float64, len(t.Readings))
	for i, r := range t.Readings {
		v, err := r.Channel(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Group is a (subject, session) partition of a table, timestamp-ascending.
type Group struct {
	SubjectID string
	Session   string
	Readings  []Reading
}

// GroupBySession partitions the table by (subject, session). Rows within a
// group keep their relative order; groups are sorted by subject then session
// so repeated runs produce identical output order.
func (t *Table) GroupBySession() []Group {
	index := make(map[string]int)
	var groups []Group

	for _, r := range t.Readings {
		key := r.SubjectID + "\x00" + r.Session
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{SubjectID: r.SubjectID, Session: r.Session})
		}
		groups[i].Readings = append(groups[i].Readings, r)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SubjectID != groups[j].SubjectID {
			return groups[i].SubjectID < groups[j].SubjectID
		}
		return groups[i].Session < groups[j].Session
	})
	return groups
}

// Column returns the named channel of the group as a flat series.
func (g Group) Column(name string) ([]float64, error) {
	values := make([]float64, len(g.Readings))
	for i, r := range g.Readings {
		v, err := r.Channel(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
