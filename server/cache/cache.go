// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package cache holds memcache helpers and the JSON datastore property codec
// used by ranking bucket documents.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/appengine/v2/datastore"
	"google.golang.org/appengine/v2/memcache"
)

// jsonCodec marshals and unmarshals objects for memcache.
var jsonCodec = memcache.Codec{
	Marshal:   json.Marshal,
	Unmarshal: json.Unmarshal,
}

// GetMemcache fetches a JSON object from memcache and saves it to dst.
// If the object isn't present, ok is false and err is nil.
func GetMemcache(ctx context.Context, key string, dst interface{}) (ok bool, err error) {
	if _, err := jsonCodec.Get(ctx, key, dst); err == memcache.ErrCacheMiss {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// SetMemcache saves JSON object src at key in memcache for exp.
// If the update fails, the stale object (if present) is deleted so that a
// failed write can't leave old data behind.
func SetMemcache(ctx context.Context, key string, src interface{}, exp time.Duration) error {
	if err := jsonCodec.Set(ctx, &memcache.Item{Key: key, Object: src, Expiration: exp}); err != nil {
		if derr := DeleteMemcache(ctx, key); derr != nil {
			return fmt.Errorf("set failed: %v; delete failed: %v", err, derr)
		}
		return fmt.Errorf("set failed: %v", err)
	}
	return nil
}

// DeleteMemcache deletes key from memcache.
// nil is returned if the key isn't present.
func DeleteMemcache(ctx context.Context, key string) error {
	if err := memcache.Delete(ctx, key); err != nil && err != memcache.ErrCacheMiss {
		return err
	}
	return nil
}

// SetMemcacheBytes saves raw data at key in memcache for exp.
func SetMemcacheBytes(ctx context.Context, key string, data []byte, exp time.Duration) error {
	return memcache.Set(ctx, &memcache.Item{Key: key, Value: data, Expiration: exp})
}

// GetMemcacheBytes looks up raw data at key in memcache.
// If the key isn't present, both return values are nil.
func GetMemcacheBytes(ctx context.Context, key string) ([]byte, error) {
	item, err := memcache.Get(ctx, key)
	if err == memcache.ErrCacheMiss {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Datastore property name used when serializing objects to JSON.
const jsonPropName = "json"

// LoadJSONProp implements datastore.PropertyLoadSaver's Load method for
// entities that hold a single JSON-marshaled property.
func LoadJSONProp(props []datastore.Property, dst interface{}) error {
	if len(props) != 1 {
		return fmt.Errorf("bad property count %v", len(props))
	}
	if props[0].Name != jsonPropName {
		return fmt.Errorf("bad property name %q", props[0].Name)
	}
	b, ok := props[0].Value.([]byte)
	if !ok {
		return errors.New("property value is not byte array")
	}
	return json.Unmarshal(b, dst)
}

// SaveJSONProp implements datastore.PropertyLoadSaver's Save method.
func SaveJSONProp(src interface{}) ([]datastore.Property, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	return []datastore.Property{{
		Name:    jsonPropName,
		Value:   b,
		NoIndex: true,
	}}, nil
}
