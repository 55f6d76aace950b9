// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package catalog

import (
	"context"
	"fmt"

	"google.golang.org/appengine/v2/datastore"
)

const (
	// DatastoreKind is the kind of the single catalog document.
	DatastoreKind = "Catalog"
	// DatastoreKeyName is the key name of the active catalog document.
	DatastoreKeyName = "active"
)

// savedList is the datastore representation of the catalog blob.
type savedList struct {
	List string `datastore:"List,noindex"`
}

// Load returns the catalog text blob. An absent document yields an empty blob
// rather than an error.
func Load(ctx context.Context) (string, error) {
	key := datastore.NewKey(ctx, DatastoreKind, DatastoreKeyName, 0, nil)
	var saved savedList
	if err := datastore.Get(ctx, key, &saved); err == datastore.ErrNoSuchEntity {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("getting catalog: %v", err)
	}
	return saved.List, nil
}

// Save replaces the catalog text blob wholesale. There is no merge and no
// concurrency check: the last writer wins.
func Save(ctx context.Context, list string) error {
	key := datastore.NewKey(ctx, DatastoreKind, DatastoreKeyName, 0, nil)
	if _, err := datastore.Put(ctx, key, &savedList{List: list}); err != nil {
		return fmt.Errorf("putting catalog: %v", err)
	}
	return nil
}

// LoadSongs loads and parses the catalog.
func LoadSongs(ctx context.Context) ([]Song, error) {
	list, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(list), nil
}
