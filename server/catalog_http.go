// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package main

import (
	"context"
	"net/http"

	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/catalog"
	"github.com/aoi/kanaderu/server/config"
	"github.com/aoi/kanaderu/server/search"
)

// catalogPayload is the wire form of the catalog blob.
type catalogPayload struct {
	List string `json:"list"`
}

func handleCatalogGet(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	list, err := catalog.Load(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, catalogPayload{List: list})
}

// handleSaveCatalog replaces the whole catalog blob. The client edits and
// re-serializes the full list, so there is nothing to merge; the last save
// wins.
func handleSaveCatalog(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	var p catalogPayload
	if !decodeJSONBody(ctx, w, r, &p) {
		return
	}
	if p.List == "" {
		writeError(w, http.StatusBadRequest, "list is empty")
		return
	}
	if err := catalog.Save(ctx, p.List); err != nil {
		handleError(ctx, w, err)
		return
	}
	log.Debugf(ctx, "Saved catalog with %v song(s)", len(catalog.Parse(p.List)))
	writeTextResponse(w, "ok")
}

// handleSearch returns every catalog song whose title or artist contains the
// query. This answers "is this song in the repertoire" and is independent of
// the attribution logic behind /log_search.
func handleSearch(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	q := r.FormValue("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing q param")
		return
	}
	songs, err := catalog.LoadSongs(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	matches := search.FindMatches(q, songs)
	if matches == nil {
		matches = []catalog.Song{}
	}
	writeJSONResponse(w, map[string]interface{}{"songs": matches})
}
