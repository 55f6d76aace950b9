// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"google.golang.org/appengine/v2"
	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/config"
	"github.com/aoi/kanaderu/server/intake"
)

// originPolicy describes which origins may call a handler.
type originPolicy int

const (
	// anyOrigin sends a permissive CORS header.
	anyOrigin originPolicy = iota
	// fanOnly allows only the configured fan-site origin.
	fanOnly
	// taskOnly allows only requests issued by the task queue or cron.
	taskOnly
)

// handlerFunc handles a request after config loading and origin/method checks.
type handlerFunc func(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request)

var (
	cfgMu  sync.Mutex
	curCfg *config.Config
)

// logErrorf is log.Errorf, replaceable by tests that run handlers without an
// App Engine context.
var logErrorf = log.Errorf

// getConfig returns the server config, loading it on the first call.
// Repeated calls return the same config until clearConfig.
func getConfig(ctx context.Context) (*config.Config, error) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	if curCfg != nil {
		return curCfg, nil
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	curCfg = cfg
	return cfg, nil
}

// clearConfig drops the cached config so the next request reloads it.
func clearConfig() {
	cfgMu.Lock()
	curCfg = nil
	cfgMu.Unlock()
}

// addHandler registers a handler for the supplied path and method.
// A config load failure is reported as a server error for the current request
// only; origin violations get 403 and wrong methods get 405. OPTIONS
// preflights are answered without invoking the handler.
func addHandler(path, method string, policy originPolicy, fn handlerFunc) {
	http.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ctx := appengine.NewContext(r)
		cfg, err := getConfig(ctx)
		if err != nil {
			logErrorf(ctx, "Failed loading config: %v", err)
			writeError(w, http.StatusInternalServerError, "server configuration unavailable")
			return
		}
		if !checkOrigin(w, r, policy, cfg.FanOrigin) {
			log.Debugf(ctx, "Disallowed origin %q for %v", r.Header.Get("Origin"), r.URL.Path)
			writeError(w, http.StatusForbidden, "origin not allowed")
			return
		}
		if r.Method == http.MethodOptions && policy != taskOnly {
			w.Header().Set("Access-Control-Allow-Methods", method+", OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != method {
			log.Debugf(ctx, "Invalid %v request for %v (expected %v)", r.Method, r.URL.String(), method)
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "invalid method")
			return
		}
		fn(ctx, cfg, w, r)
	})
}

// checkOrigin applies policy to r and sets CORS headers on w.
// false is returned if the request's origin is disallowed.
func checkOrigin(w http.ResponseWriter, r *http.Request, policy originPolicy, fanOrigin string) bool {
	switch policy {
	case anyOrigin:
		w.Header().Set("Access-Control-Allow-Origin", "*")
		return true
	case fanOnly:
		// Same-origin and non-browser requests carry no Origin header.
		if o := r.Header.Get("Origin"); o != "" && o != fanOrigin {
			return false
		}
		w.Header().Set("Access-Control-Allow-Origin", fanOrigin)
		w.Header().Set("Vary", "Origin")
		return true
	case taskOnly:
		// https://cloud.google.com/appengine/docs/standard/services/taskqueue
		return r.Header.Get("X-AppEngine-QueueName") != "" ||
			r.Header.Get("X-Appengine-Cron") == "true"
	}
	return false
}

// writeJSONResponse serializes v to JSON and writes it to w.
func writeJSONResponse(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}
}

// writeTextResponse writes s to w as a text response.
func writeTextResponse(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.Write([]byte(s))
}

// writeError writes a JSON error body with the supplied status code.
func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleError maps err to an HTTP error response: rejected user input becomes
// 400 with the rejection reason, anything else is logged and becomes a
// generic 500.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	var ive *intake.InvalidInputError
	if errors.As(err, &ive) {
		writeError(w, http.StatusBadRequest, ive.Reason)
		return
	}
	logErrorf(ctx, "Request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSONBody decodes r's body into dst and writes a bad-request error on
// failure.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logErrorf(ctx, "Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
