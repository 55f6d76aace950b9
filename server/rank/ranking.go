// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"google.golang.org/appengine/v2/datastore"
	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/cache"
)

// cacheExpiration bounds how stale a served leaderboard can be. Increments
// additionally drop cached payloads, so this mostly covers lost deletes.
const cacheExpiration = 5 * time.Minute

// Get reads the leaderboard for metric and period.
//
// All-time rankings come from the per-song counter entities; month and year
// rankings come from the single bucket document for the current period key
// derived from now. An absent bucket yields empty lists. The search metric
// additionally includes an artist roll-up; requests are keyed by free text
// with no guaranteed artist, so their roll-up is omitted.
func Get(ctx context.Context, metric Metric, period Period, now time.Time) (*Ranking, error) {
	key := cacheKey(metric, period, now)
	var cached Ranking
	if ok, err := cache.GetMemcache(ctx, key, &cached); err != nil {
		log.Errorf(ctx, "Ranking cache lookup failed: %v", err)
	} else if ok {
		return &cached, nil
	}

	var entries []Entry
	var err error
	if period == PeriodAll {
		entries, err = allTimeEntries(ctx, metric)
	} else {
		entries, err = bucketEntries(ctx, metric, periodKey(period, now))
	}
	if err != nil {
		return nil, err
	}

	r := buildRanking(entries, metric == MetricSearch)
	if err := cache.SetMemcache(ctx, key, r, cacheExpiration); err != nil {
		log.Errorf(ctx, "Ranking cache write failed: %v", err)
	}
	return r, nil
}

// allTimeEntries reads every all-time counter entity for metric.
func allTimeEntries(ctx context.Context, metric Metric) ([]Entry, error) {
	kind := SearchCountKind
	if metric == MetricRequest {
		kind = RequestCountKind
	}
	var counts []songCount
	keys, err := datastore.NewQuery(kind).GetAll(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("querying %v: %v", kind, err)
	}
	entries := make([]Entry, len(counts))
	for i, c := range counts {
		entries[i] = Entry{ID: displayKey(keys[i].StringID()), Count: c.Count, Artist: c.Artist}
	}
	return entries, nil
}

// bucketEntries expands the bucket document stored under period into entries.
// An absent document yields an empty slice.
func bucketEntries(ctx context.Context, metric Metric, period string) ([]Entry, error) {
	kind := SearchBucketKind
	if metric == MetricRequest {
		kind = RequestBucketKind
	}
	var b bucket
	key := datastore.NewKey(ctx, kind, period, 0, nil)
	if err := datastore.Get(ctx, key, &b); err == datastore.ErrNoSuchEntity {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("getting %v %q: %v", kind, period, err)
	}
	entries := make([]Entry, 0, len(b.Counts))
	for k, e := range b.Counts {
		entries = append(entries, Entry{ID: displayKey(k), Count: e.Count, Artist: e.Artist})
	}
	return entries, nil
}

// buildRanking sorts and truncates entries into the served payload. The
// artist roll-up is computed from the full entry set before truncation so
// that an artist's total always equals the sum of their songs' counts in the
// same snapshot.
func buildRanking(entries []Entry, rollup bool) *Ranking {
	sortEntries(entries)
	r := &Ranking{Songs: truncateEntries(entries, maxSongEntries)}
	if rollup {
		r.Artists = truncateEntries(rollupArtists(entries), maxArtistEntries)
	}
	return r
}

// sortEntries orders entries descending by count. Equal counts are ordered
// by id ascending so that leaderboards are deterministic.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ID < entries[j].ID
	})
}

// rollupArtists sums per-song counts into per-artist totals. Songs without a
// recorded artist are skipped. The result is sorted like sortEntries.
func rollupArtists(songs []Entry) []Entry {
	totals := make(map[string]int)
	for _, e := range songs {
		if e.Artist != "" {
			totals[e.Artist] += e.Count
		}
	}
	artists := make([]Entry, 0, len(totals))
	for name, count := range totals {
		artists = append(artists, Entry{ID: name, Count: count})
	}
	sortEntries(artists)
	return artists
}

// truncateEntries returns at most n entries, always as a non-nil slice so
// that JSON responses contain arrays rather than null.
func truncateEntries(entries []Entry, n int) []Entry {
	if entries == nil {
		return []Entry{}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// cacheKey names the memcache entry for one leaderboard. Month and year keys
// include the period key so a bucket rollover can't serve the old period.
func cacheKey(metric Metric, period Period, now time.Time) string {
	if period == PeriodAll {
		return fmt.Sprintf("ranking-%v-all", metric)
	}
	return fmt.Sprintf("ranking-%v-%v", metric, periodKey(period, now))
}

// dropCachedRankings deletes metric's cached leaderboards after an increment.
// Failures only delay freshness until cacheExpiration, so they are logged and
// swallowed.
func dropCachedRankings(ctx context.Context, metric Metric) {
	now := time.Now()
	for _, p := range []Period{PeriodAll, PeriodMonth, PeriodYear} {
		if err := cache.DeleteMemcache(ctx, cacheKey(metric, p, now)); err != nil {
			log.Errorf(ctx, "Dropping cached %v/%v ranking failed: %v", metric, p, err)
		}
	}
}
