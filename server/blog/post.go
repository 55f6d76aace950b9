// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package blog stores blog posts and their images.
//
// Images use a two-phase commit: the binary is uploaded to Cloud Storage
// first and a stable URL comes back, then the post metadata referencing that
// URL is written. A pending local file never reaches the server.
package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/appengine/v2/datastore"
)

// PostKind is the datastore kind of blog posts.
const PostKind = "Post"

// Post is one blog entry.
type Post struct {
	ID       string    `datastore:"-" json:"id"`
	Title    string    `datastore:"Title,noindex" json:"title"`
	Body     string    `datastore:"Body,noindex" json:"body"`
	ImageURL string    `datastore:"ImageUrl,noindex" json:"imageUrl,omitempty"`
	Created  time.Time `datastore:"Created" json:"created"`
	Updated  time.Time `datastore:"Updated,noindex" json:"updated"`
}

// Posts returns all blog posts, newest first.
func Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	keys, err := datastore.NewQuery(PostKind).Order("-Created").GetAll(ctx, &posts)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %v", err)
	}
	for i, k := range keys {
		posts[i].ID = k.StringID()
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// SavePost creates or updates a post. A post without an ID gets a fresh one
// and its creation time set; an existing post keeps its creation time.
func SavePost(ctx context.Context, p *Post, now time.Time) (*Post, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
		p.Created = now
	} else {
		var old Post
		key := datastore.NewKey(ctx, PostKind, p.ID, 0, nil)
		if err := datastore.Get(ctx, key, &old); err == nil {
			p.Created = old.Created
		} else if err != datastore.ErrNoSuchEntity {
			return nil, fmt.Errorf("getting post %v: %v", p.ID, err)
		} else if p.Created.IsZero() {
			p.Created = now
		}
	}
	p.Updated = now

	key := datastore.NewKey(ctx, PostKind, p.ID, 0, nil)
	if _, err := datastore.Put(ctx, key, p); err != nil {
		return nil, fmt.Errorf("putting post %v: %v", p.ID, err)
	}
	return p, nil
}

// DeletePost removes the post identified by id.
// Deleting an absent post is not an error.
func DeletePost(ctx context.Context, id string) error {
	key := datastore.NewKey(ctx, PostKind, id, 0, nil)
	if err := datastore.Delete(ctx, key); err != nil && err != datastore.ErrNoSuchEntity {
		return fmt.Errorf("deleting post %v: %v", id, err)
	}
	return nil
}
