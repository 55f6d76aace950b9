// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package config contains types and constants related to server configuration.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"google.golang.org/appengine/v2/datastore"
)

const (
	// DatastoreKind is the kind of the saved config document.
	DatastoreKind = "Config"
	// DatastoreKeyName is the key name of the active config document.
	DatastoreKeyName = "active"

	// ConfigEnvVar lets tests and local runs override the saved config.
	ConfigEnvVar = "KANADERU_CONFIG"
)

// SavedConfig is used to store a JSON-marshaled Config in Datastore.
type SavedConfig struct {
	JSON string `datastore:"json,noindex"`
}

// Config holds the server's configuration.
type Config struct {
	// FanOrigin is the origin of the fan site, e.g. "https://example.org".
	// Ranking and search-logging endpoints only accept requests from it;
	// other endpoints are permissive.
	FanOrigin string `json:"fanOrigin"`

	// NGWords lists blocked words; requests and suggestions containing one
	// are rejected before anything is stored. Matching is performed over
	// normalized text.
	NGWords []string `json:"ngWords"`

	// ImageBucket is the Cloud Storage bucket holding blog images.
	ImageBucket string `json:"imageBucket,omitempty"`
	// ImageBaseURL is a slash-terminated URL under which blog images are
	// served. This is used for testing.
	// Exactly one of ImageBucket and ImageBaseURL must be set.
	ImageBaseURL string `json:"imageBaseUrl,omitempty"`

	// ReadingURL is the endpoint of the generative text service used to
	// annotate song titles with katakana readings.
	ReadingURL string `json:"readingUrl,omitempty"`
	// ReadingAPIKey authenticates requests to ReadingURL.
	ReadingAPIKey string `json:"readingApiKey,omitempty"`
}

// Parse unmarshals jsonData, validates it, and returns the resulting config.
func Parse(jsonData []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.FanOrigin == "" {
		return nil, errors.New("fanOrigin must be set")
	}
	cleanBaseURL(&cfg.ImageBaseURL)
	haveBucket := len(cfg.ImageBucket) > 0
	haveURL := len(cfg.ImageBaseURL) > 0
	if haveBucket && haveURL {
		return nil, errors.New("at most one of ImageBucket and ImageBaseURL may be set")
	}
	if (cfg.ReadingURL == "") != (cfg.ReadingAPIKey == "") {
		return nil, errors.New("readingUrl and readingApiKey must be set together")
	}

	return &cfg, nil
}

// Load attempts to load the server's config.
// The ConfigEnvVar environment variable takes precedence; otherwise the
// saved datastore document is used. ctx must be an App Engine context.
func Load(ctx context.Context) (*Config, error) {
	b, err := func() ([]byte, error) {
		if b := []byte(os.Getenv(ConfigEnvVar)); len(b) != 0 {
			return b, nil
		}
		var saved SavedConfig
		key := datastore.NewKey(ctx, DatastoreKind, DatastoreKeyName, 0, nil)
		if err := datastore.Get(ctx, key, &saved); err != nil {
			return nil, err
		}
		return []byte(saved.JSON), nil
	}()

	if err != nil {
		return nil, fmt.Errorf("reading config: %v", err)
	}
	return Parse(b)
}

// Save stores cfg as the active datastore config document.
func Save(ctx context.Context, cfg *Config) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	key := datastore.NewKey(ctx, DatastoreKind, DatastoreKeyName, 0, nil)
	_, err = datastore.Put(ctx, key, &SavedConfig{JSON: string(b)})
	return err
}

// cleanBaseURL appends a trailing slash to u if not already present.
// Does nothing if u is empty.
func cleanBaseURL(u *string) {
	if len(*u) > 0 && (*u)[len(*u)-1] != '/' {
		*u += "/"
	}
}
