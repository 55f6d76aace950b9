// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/appengine/v2/log"
	"google.golang.org/appengine/v2/taskqueue"

	"github.com/aoi/kanaderu/server/catalog"
	"github.com/aoi/kanaderu/server/config"
	"github.com/aoi/kanaderu/server/rank"
)

// recordSearchPath is the task-queue worker endpoint applying search-count
// increments.
const recordSearchPath = "/tasks/record_search"

// searchLogPayload is the wire form of a logged search term.
type searchLogPayload struct {
	Term string `json:"term"`
}

// handleLogSearch accepts a search term for ranking attribution. The actual
// increment is handed off to the task queue so the response never waits on
// (or fails with) the counter transaction; a failed hand-off is logged and
// the client still gets a success.
func handleLogSearch(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	var p searchLogPayload
	if !decodeJSONBody(ctx, w, r, &p) {
		return
	}
	term := strings.TrimSpace(p.Term)
	if term == "" {
		writeError(w, http.StatusBadRequest, "term is empty")
		return
	}

	task := taskqueue.NewPOSTTask(recordSearchPath, url.Values{"term": {term}})
	if _, err := taskqueue.Add(ctx, task, ""); err != nil {
		log.Errorf(ctx, "Failed to enqueue search for %q: %v", term, err)
	}
	writeTextResponse(w, "ok")
}

// handleRecordSearchTask is the task-queue worker behind handleLogSearch.
// Failures are logged but still acknowledged with 200 so the queue doesn't
// retry: search logging is best-effort.
func handleRecordSearchTask(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	term := r.FormValue("term")
	if term == "" {
		writeTextResponse(w, "ok")
		return
	}
	songs, err := catalog.LoadSongs(ctx)
	if err != nil {
		log.Errorf(ctx, "Failed loading catalog for search %q: %v", term, err)
		writeTextResponse(w, "ok")
		return
	}
	if err := rank.RecordSearch(ctx, term, songs, time.Now()); err != nil {
		log.Errorf(ctx, "Failed recording search %q: %v", term, err)
	}
	writeTextResponse(w, "ok")
}

// handleRanking serves a sorted leaderboard. A failed read is served as an
// empty payload rather than an error so the rankings page degrades instead
// of breaking.
func handleRanking(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	metric := rank.MetricSearch
	if s := r.FormValue("metric"); s != "" {
		var err error
		if metric, err = rank.ParseMetric(s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	period := rank.PeriodAll
	if s := r.FormValue("period"); s != "" {
		var err error
		if period, err = rank.ParsePeriod(s); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ranking, err := rank.Get(ctx, metric, period, time.Now())
	if err != nil {
		log.Errorf(ctx, "Failed reading %v/%v ranking: %v", metric, period, err)
		ranking = &rank.Ranking{Songs: []rank.Entry{}}
		if metric == rank.MetricSearch {
			ranking.Artists = []rank.Entry{}
		}
	}
	writeJSONResponse(w, ranking)
}
