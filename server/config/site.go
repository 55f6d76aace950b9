// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package config

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/appengine/v2/datastore"
)

// SiteConfigKind is the kind of the UI configuration document. Its contents
// are owned by the admin page and treated opaquely by the server apart from
// requiring valid JSON.
const SiteConfigKind = "SiteConfig"

// LoadSite returns the raw UI configuration document. An absent document
// yields an empty JSON object.
func LoadSite(ctx context.Context) (json.RawMessage, error) {
	var saved SavedConfig
	key := datastore.NewKey(ctx, SiteConfigKind, DatastoreKeyName, 0, nil)
	if err := datastore.Get(ctx, key, &saved); err == datastore.ErrNoSuchEntity {
		return json.RawMessage("{}"), nil
	} else if err != nil {
		return nil, fmt.Errorf("getting site config: %v", err)
	}
	return json.RawMessage(saved.JSON), nil
}

// SaveSite replaces the UI configuration document. raw must be valid JSON.
func SaveSite(ctx context.Context, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("site config is not valid JSON")
	}
	key := datastore.NewKey(ctx, SiteConfigKind, DatastoreKeyName, 0, nil)
	if _, err := datastore.Put(ctx, key, &SavedConfig{JSON: string(raw)}); err != nil {
		return fmt.Errorf("putting site config: %v", err)
	}
	return nil
}
