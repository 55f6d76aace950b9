// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/config"
	"github.com/aoi/kanaderu/server/intake"
	"github.com/aoi/kanaderu/server/reading"
)

// maxAdminBodyBytes bounds an /admin request body.
const maxAdminBodyBytes = 1 << 20

// actionFunc handles one admin action. The returned value is serialized as
// the JSON response body.
type actionFunc func(ctx context.Context, cfg *config.Config, body json.RawMessage) (interface{}, error)

// adminActions dispatches the ?action= discriminator to its handler.
// Every action shares the same signature so new ones can't invent their own
// request plumbing.
var adminActions = map[string]actionFunc{
	"annotate_readings": annotateReadingsAction,
	"get_site_config":   getSiteConfigAction,
	"set_site_config":   setSiteConfigAction,
	"set_config":        setConfigAction,
	"reload_config":     reloadConfigAction,
}

// handleAdmin dispatches admin panel operations by action name.
func handleAdmin(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	action := r.FormValue("action")
	fn, ok := adminActions[action]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAdminBodyBytes))
	if err != nil {
		log.Errorf(ctx, "Failed reading %q body: %v", action, err)
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	res, err := fn(ctx, cfg, body)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, res)
}

// annotateReadingsAction asks the generative text service for katakana
// readings of the supplied songs. Songs the service doesn't answer for come
// back unchanged.
func annotateReadingsAction(ctx context.Context, cfg *config.Config, body json.RawMessage) (interface{}, error) {
	var req struct {
		Songs []reading.Pair `json:"songs"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &intake.InvalidInputError{Reason: "malformed request body"}
	}
	client := &reading.Client{URL: cfg.ReadingURL, APIKey: cfg.ReadingAPIKey}
	pairs, err := client.Annotate(ctx, req.Songs)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"songs": pairs}, nil
}

func getSiteConfigAction(ctx context.Context, cfg *config.Config, body json.RawMessage) (interface{}, error) {
	return config.LoadSite(ctx)
}

func setSiteConfigAction(ctx context.Context, cfg *config.Config, body json.RawMessage) (interface{}, error) {
	if !json.Valid(body) {
		return nil, &intake.InvalidInputError{Reason: "site config is not valid JSON"}
	}
	if err := config.SaveSite(ctx, body); err != nil {
		return nil, err
	}
	return map[string]string{"status": "ok"}, nil
}

// setConfigAction validates and stores a new server config document. The
// cached config is dropped so the new document takes effect on the next
// request.
func setConfigAction(ctx context.Context, cfg *config.Config, body json.RawMessage) (interface{}, error) {
	newCfg, err := config.Parse(body)
	if err != nil {
		return nil, &intake.InvalidInputError{Reason: fmt.Sprintf("bad config: %v", err)}
	}
	if err := config.Save(ctx, newCfg); err != nil {
		return nil, err
	}
	clearConfig()
	return map[string]string{"status": "ok"}, nil
}

// reloadConfigAction drops the cached server config so the next request
// rereads the saved document.
func reloadConfigAction(ctx context.Context, cfg *config.Config, body json.RawMessage) (interface{}, error) {
	clearConfig()
	return map[string]string{"status": "ok"}, nil
}
