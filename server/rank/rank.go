// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package rank maintains per-song and per-artist popularity counters and
// serves them back as ordered leaderboards.
//
// Two independent metrics are tracked (search volume and request volume),
// each across three horizons: an all-time counter entity per song, plus one
// shared bucket document per calendar month and per calendar year. A bucket is
// a single document mapping storage-safe song keys to sub-counts, so all songs
// in a period contend on the same entity; search increments therefore run in a
// datastore transaction.
package rank

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/appengine/v2/datastore"

	"github.com/aoi/kanaderu/server/cache"
)

// Datastore kinds.
const (
	SearchCountKind  = "SearchCount"
	SearchBucketKind = "SearchBucket"

	RequestCountKind  = "RequestCount"
	RequestBucketKind = "RequestBucket"
)

// Leaderboard truncation limits.
const (
	maxSongEntries   = 100
	maxArtistEntries = 50
)

// Metric identifies which counter family a leaderboard is read from.
type Metric string

const (
	MetricSearch  Metric = "search"
	MetricRequest Metric = "request"
)

// ParseMetric validates a client-supplied metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricSearch, MetricRequest:
		return Metric(s), nil
	}
	return "", fmt.Errorf("bad metric %q", s)
}

// Period identifies a time horizon.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod validates a client-supplied period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodAll, PeriodMonth, PeriodYear:
		return Period(s), nil
	}
	return "", fmt.Errorf("bad period %q", s)
}

// periodKey derives the bucket document key for p from now in the server's
// local timezone: "YYYY-MM" for months, "YYYY" for years.
func periodKey(p Period, now time.Time) string {
	if p == PeriodMonth {
		return now.Format("2006-01")
	}
	return now.Format("2006")
}

// storageKey converts a song title (or request term) to a storage-safe
// document key: literal dots are substituted with underscores.
func storageKey(title string) string {
	return strings.ReplaceAll(title, ".", "_")
}

// displayKey reverses storageKey. Titles that legitimately contain
// underscores come back with dots; that is a known property of the key scheme.
func displayKey(key string) string {
	return strings.ReplaceAll(key, "_", ".")
}

// Entry is one row of a rendered leaderboard.
type Entry struct {
	// ID is the song title or artist name.
	ID    string `json:"id"`
	Count int    `json:"count"`
	// Artist is set for song entries of the search metric.
	Artist string `json:"artist,omitempty"`
}

// Ranking is the leaderboard payload served to the UI.
type Ranking struct {
	Songs   []Entry `json:"songs"`
	Artists []Entry `json:"artists,omitempty"`
}

// songCount is the all-time counter entity for one song or request term.
type songCount struct {
	Count int `datastore:"Count,noindex"`
	// Artist is overwritten on every increment; the last writer wins.
	Artist string `datastore:"Artist,noindex"`
}

// bucketEntry is one song's sub-count inside a period bucket document.
type bucketEntry struct {
	Count  int    `json:"count"`
	Artist string `json:"artist,omitempty"`
}

// bucket is a period document holding every song's sub-count for that period.
// It is stored as a single JSON property.
type bucket struct {
	Counts map[string]bucketEntry
}

func (b *bucket) Load(props []datastore.Property) error {
	return cache.LoadJSONProp(props, &b.Counts)
}

func (b *bucket) Save() ([]datastore.Property, error) {
	return cache.SaveJSONProp(b.Counts)
}

var _ datastore.PropertyLoadSaver = (*bucket)(nil)

// increment bumps the sub-count for key, creating the map lazily and
// overwriting the stored artist.
func (b *bucket) increment(key, artist string) {
	if b.Counts == nil {
		b.Counts = make(map[string]bucketEntry)
	}
	e := b.Counts[key]
	e.Count++
	e.Artist = artist
	b.Counts[key] = e
}
