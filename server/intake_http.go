// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/config"
	"github.com/aoi/kanaderu/server/intake"
	"github.com/aoi/kanaderu/server/ratelimit"
)

// Submission allowance per client address.
const (
	maxSubmissions     = 10
	submissionInterval = time.Hour
)

// requestPayload is the wire form of a song request.
type requestPayload struct {
	Term string `json:"term"`
}

// suggestPayload is the wire form of a setlist suggestion.
type suggestPayload struct {
	Songs   []string `json:"songs"`
	Comment string   `json:"comment"`
}

func handleRequest(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	var p requestPayload
	if !decodeJSONBody(ctx, w, r, &p) {
		return
	}
	if !checkSubmissionRate(ctx, w, r) {
		return
	}
	if err := intake.RecordRequest(ctx, p.Term, cfg.NGWords, time.Now()); err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTextResponse(w, "ok")
}

func handleSuggest(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	var p suggestPayload
	if !decodeJSONBody(ctx, w, r, &p) {
		return
	}
	if !checkSubmissionRate(ctx, w, r) {
		return
	}
	sug, err := intake.SaveSuggestion(ctx, p.Songs, p.Comment, cfg.NGWords, time.Now())
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, sug)
}

// checkSubmissionRate enforces the per-client submission allowance and writes
// an error response when the client must slow down. A datastore failure is
// treated as allowed so the limiter can't take the intake endpoints down.
func checkSubmissionRate(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	err := ratelimit.Attempt(ctx, clientAddr(r), time.Now(), maxSubmissions, submissionInterval)
	var limited *ratelimit.LimitedError
	if errors.As(err, &limited) {
		writeError(w, http.StatusForbidden, limited.Error())
		return false
	} else if err != nil {
		log.Errorf(ctx, "Rate limit check failed: %v", err)
	}
	return true
}

// clientAddr identifies the submitting client for rate limiting.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
