// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package rank

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/appengine/v2/datastore"
	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/catalog"
	"github.com/aoi/kanaderu/server/search"
)

// RecordSearch attributes query to a catalog song and bumps that song's
// search counters for all three horizons.
//
// An empty query or a query that matches no song is a no-op: unmatched
// free-text searches are not counted toward any song. The three increments
// (all-time entity, month bucket, year bucket) are applied in one
// cross-group transaction so that concurrent searches can't lose an update
// on a shared bucket document; datastore's optimistic retry handles
// contention.
func RecordSearch(ctx context.Context, query string, songs []catalog.Song, now time.Time) error {
	if search.Normalize(query) == "" {
		return nil
	}
	song := search.BestMatch(query, songs)
	if song == nil {
		return nil
	}

	key := storageKey(song.Title)
	periods := []string{periodKey(PeriodMonth, now), periodKey(PeriodYear, now)}

	err := datastore.RunInTransaction(ctx, func(ctx context.Context) error {
		ck := datastore.NewKey(ctx, SearchCountKind, key, 0, nil)
		var sc songCount
		if err := datastore.Get(ctx, ck, &sc); err != nil && err != datastore.ErrNoSuchEntity {
			return fmt.Errorf("getting count for %q: %v", key, err)
		}
		sc.Count++
		sc.Artist = song.Artist
		if _, err := datastore.Put(ctx, ck, &sc); err != nil {
			return fmt.Errorf("putting count for %q: %v", key, err)
		}

		for _, period := range periods {
			bk := datastore.NewKey(ctx, SearchBucketKind, period, 0, nil)
			var b bucket
			if err := datastore.Get(ctx, bk, &b); err != nil && err != datastore.ErrNoSuchEntity {
				return fmt.Errorf("getting bucket %q: %v", period, err)
			}
			b.increment(key, song.Artist)
			if _, err := datastore.Put(ctx, bk, &b); err != nil {
				return fmt.Errorf("putting bucket %q: %v", period, err)
			}
		}
		return nil
	}, &datastore.TransactionOptions{XG: true})
	if err != nil {
		return fmt.Errorf("recording search for %q: %v", song.Title, err)
	}

	dropCachedRankings(ctx, MetricSearch)
	return nil
}

// RecordRequest bumps the request counters for the raw (trimmed) term.
//
// There is no catalog matching, no normalization, and no transaction: the
// all-time counter is a plain read-then-write (last write wins, an accepted
// race under low contention). The month and year bucket increments are
// best-effort; their failures are logged and swallowed.
func RecordRequest(ctx context.Context, term string, now time.Time) error {
	key := storageKey(term)
	ck := datastore.NewKey(ctx, RequestCountKind, key, 0, nil)
	var sc songCount
	if err := datastore.Get(ctx, ck, &sc); err != nil && err != datastore.ErrNoSuchEntity {
		return fmt.Errorf("getting request count for %q: %v", key, err)
	}
	sc.Count++
	if _, err := datastore.Put(ctx, ck, &sc); err != nil {
		return fmt.Errorf("putting request count for %q: %v", key, err)
	}

	for _, p := range []Period{PeriodMonth, PeriodYear} {
		period := periodKey(p, now)
		bk := datastore.NewKey(ctx, RequestBucketKind, period, 0, nil)
		var b bucket
		if err := datastore.Get(ctx, bk, &b); err != nil && err != datastore.ErrNoSuchEntity {
			log.Errorf(ctx, "Getting request bucket %q failed: %v", period, err)
			continue
		}
		b.increment(key, "")
		if _, err := datastore.Put(ctx, bk, &b); err != nil {
			log.Errorf(ctx, "Putting request bucket %q failed: %v", period, err)
		}
	}

	dropCachedRankings(ctx, MetricRequest)
	return nil
}
