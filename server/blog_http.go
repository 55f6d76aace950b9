// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/blog"
	"github.com/aoi/kanaderu/server/config"
)

const (
	maxImageSize     = 800 // max size permitted in /image requests
	imageJPEGQuality = 90  // quality to use when encoding /image replies
)

func handlePosts(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	posts, err := blog.Posts(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, posts)
}

func handleSavePost(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	var p blog.Post
	if !decodeJSONBody(ctx, w, r, &p) {
		return
	}
	if p.Title == "" {
		writeError(w, http.StatusBadRequest, "title is empty")
		return
	}
	saved, err := blog.SavePost(ctx, &p, time.Now())
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, saved)
}

func handleDeletePost(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id param")
		return
	}
	if err := blog.DeletePost(ctx, id); err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTextResponse(w, "ok")
}

// handleUpload is phase one of a post save: the raw image is stored first and
// the returned URL is what the post metadata references in phase two.
func handleUpload(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, blog.MaxUploadBytes+1))
	if err != nil {
		log.Errorf(ctx, "Failed reading upload body: %v", err)
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty upload")
		return
	}
	if len(data) > blog.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, "image too large")
		return
	}
	name, url, err := blog.Upload(ctx, cfg, data, r.Header.Get("Content-Type"))
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, map[string]string{"name": name, "url": url})
}

func handleImage(ctx context.Context, cfg *config.Config, w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name param")
		return
	}
	var size int64
	if s := r.FormValue("size"); s != "" {
		var err error
		if size, err = strconv.ParseInt(s, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "bad size param")
			return
		}
		if size <= 0 || size > maxImageSize {
			writeError(w, http.StatusBadRequest, "invalid size")
			return
		}
	}

	// This handler is expensive, so try to minimize duplicate requests.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Type", "image/jpeg")
	if err := blog.Scale(ctx, cfg, name, int(size), imageJPEGQuality, w); errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Not found", http.StatusNotFound)
	} else if err != nil {
		log.Errorf(ctx, "Failed to scale image: %v", err)
		http.Error(w, "Scaling failed", http.StatusInternalServerError)
	}
}
