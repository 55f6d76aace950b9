// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package reading

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req annotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Songs, 2)

		// Reply for the first song only; the second must come back unchanged.
		json.NewEncoder(w).Encode(annotateResponse{Readings: []Pair{
			{Title: "夜に駆ける", Artist: "YOASOBI", Reading: "ヨルニカケル"},
			{Title: "unrelated", Artist: "nobody", Reading: "ムシサレル"},
		}})
	}))
	defer srv.Close()

	c := &Client{URL: srv.URL, APIKey: "test-key"}
	got, err := c.Annotate(context.Background(), []Pair{
		{Title: "夜に駆ける", Artist: "YOASOBI"},
		{Title: "Lemon", Artist: "米津玄師"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Title: "夜に駆ける", Artist: "YOASOBI", Reading: "ヨルニカケル"},
		{Title: "Lemon", Artist: "米津玄師"},
	}, got)
}

func TestAnnotate_Empty(t *testing.T) {
	// An empty batch doesn't touch the network at all.
	c := &Client{URL: "https://unreachable.example"}
	got, err := c.Annotate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Pair{}, got)
}

func TestAnnotate_Errors(t *testing.T) {
	c := &Client{}
	if _, err := c.Annotate(context.Background(), []Pair{{Title: "t", Artist: "a"}}); err == nil {
		t.Error("Annotate with no URL unexpectedly succeeded")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c = &Client{URL: srv.URL}
	if _, err := c.Annotate(context.Background(), []Pair{{Title: "t", Artist: "a"}}); err == nil {
		t.Error("Annotate against failing service unexpectedly succeeded")
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer bad.Close()
	c = &Client{URL: bad.URL}
	if _, err := c.Annotate(context.Background(), []Pair{{Title: "t", Artist: "a"}}); err == nil {
		t.Error("Annotate with malformed reply unexpectedly succeeded")
	}
}

func TestAnnotate_EmptyReadingIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(annotateResponse{Readings: []Pair{
			{Title: "t", Artist: "a", Reading: ""},
		}})
	}))
	defer srv.Close()

	c := &Client{URL: srv.URL}
	got, err := c.Annotate(context.Background(), []Pair{{Title: "t", Artist: "a"}})
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Title: "t", Artist: "a"}}, got)
}
