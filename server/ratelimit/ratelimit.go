// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package ratelimit throttles request and suggestion submissions per client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/appengine/v2/datastore"
)

// clientWindowKind is the datastore kind of per-client submission windows.
const clientWindowKind = "ClientWindow"

// LimitedError reports that a client exceeded its submission allowance.
type LimitedError struct {
	// Retry is how long the client must wait before the oldest counted
	// submission falls out of the window.
	Retry time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("submission rate exceeded (retry in %v)", e.Retry.Round(time.Second))
}

// clientWindow keeps the submission times of one client inside the sliding
// window. Times before the window start are pruned on every attempt.
type clientWindow struct {
	Times []time.Time
}

// prune drops times before start in place and returns how many remain.
func (w *clientWindow) prune(start time.Time) int {
	kept := w.Times[:0]
	for _, t := range w.Times {
		if !t.Before(start) {
			kept = append(kept, t)
		}
	}
	w.Times = kept
	return len(kept)
}

// Attempt records a submission by client at now and enforces at most max
// submissions per interval. A *LimitedError is returned when the allowance is
// exhausted; the window is only updated for allowed submissions. The check
// and the update run in one transaction so concurrent submissions can't
// overshoot the allowance.
func Attempt(ctx context.Context, client string, now time.Time, max int, interval time.Duration) error {
	key := datastore.NewKey(ctx, clientWindowKind, client, 0, nil)
	return datastore.RunInTransaction(ctx, func(ctx context.Context) error {
		var w clientWindow
		if err := datastore.Get(ctx, key, &w); err != nil && err != datastore.ErrNoSuchEntity {
			return fmt.Errorf("getting client window: %v", err)
		}
		if w.prune(now.Add(-interval)) >= max {
			return &LimitedError{Retry: w.Times[0].Add(interval).Sub(now)}
		}
		w.Times = append(w.Times, now)
		if _, err := datastore.Put(ctx, key, &w); err != nil {
			return fmt.Errorf("saving client window: %v", err)
		}
		return nil
	}, nil)
}
