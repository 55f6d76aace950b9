// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"golang.org/x/image/draw"

	"google.golang.org/api/option"
	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/cache"
	"github.com/aoi/kanaderu/server/config"
)

// A single storage.Client is initialized in response to the first call that
// needs Cloud Storage and then reused. Creating a client per request makes
// object opens noticeably slower.
var client *storage.Client
var clientOnce sync.Once

const grpcPoolSize = 4

const (
	cacheKeyPrefix  = "image"        // memcache key prefix for scaled images
	cacheExpiration = 24 * time.Hour // memcache expiration

	// MaxUploadBytes caps a single image upload.
	MaxUploadBytes = 8 * 1024 * 1024
)

// getClient lazily initializes the shared storage client.
func getClient(ctx context.Context) (*storage.Client, error) {
	var err error
	clientOnce.Do(func() {
		log.Debugf(ctx, "Initializing storage client")
		client, err = storage.NewClient(ctx, option.WithGRPCConnectionPool(grpcPoolSize))
	})
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("storage client unavailable")
	}
	return client, nil
}

// Upload writes image data to the configured bucket under a fresh
// UUID-derived object name and returns the name and a public URL for it.
// This is phase one of the two-phase post save; the returned URL is what the
// post metadata records in phase two.
func Upload(ctx context.Context, cfg *config.Config, data []byte, contentType string) (name, url string, err error) {
	if cfg.ImageBucket == "" {
		return "", "", errors.New("ImageBucket is not set")
	}
	if len(data) == 0 {
		return "", "", errors.New("empty image data")
	}
	if len(data) > MaxUploadBytes {
		return "", "", fmt.Errorf("image is %v bytes; max is %v", len(data), MaxUploadBytes)
	}

	cl, err := getClient(ctx)
	if err != nil {
		return "", "", err
	}

	name = uuid.New().String()
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		name += exts[0]
	}
	w := cl.Bucket(cfg.ImageBucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", "", fmt.Errorf("writing object %q: %v", name, err)
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("closing object %q: %v", name, err)
	}
	return name, fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.ImageBucket, name), nil
}

// cacheKey returns the memcache key used for caching an image with the
// supplied object name and size (i.e. width/height).
func cacheKey(name string, size int) string {
	return fmt.Sprintf("%s-%d-%s", cacheKeyPrefix, size, name)
}

// Scale reads the blog image stored under name, scales and crops it to a
// square of the supplied size, and writes it in JPEG format to w. If size is
// zero or negative, the original data is written unmodified.
// os.ErrNotExist is replied if no such object exists.
func Scale(ctx context.Context, cfg *config.Config, name string, size, quality int, w io.Writer) error {
	var data []byte
	var err error

	if data, err = getCachedImage(ctx, name, size); len(data) > 0 {
		_, err = w.Write(data)
		return err
	}
	if data, err = getCachedImage(ctx, name, 0); err != nil {
		log.Errorf(ctx, "Cache lookup failed: %v", err) // swallow error
	}

	if len(data) == 0 {
		if data, err = load(ctx, cfg, name); err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if err = setCachedImage(ctx, name, 0, data); err != nil {
			log.Errorf(ctx, "Cache write failed: %v", err) // swallow error
		}
	}

	if size <= 0 {
		_, err = w.Write(data)
		return err
	}

	src, _, err := image.Decode(bytes.NewBuffer(data))
	if err != nil {
		return err
	}

	// Crop the source image rect if it isn't square.
	sr := src.Bounds()
	if sr.Dx() > sr.Dy() {
		sr.Min.X += (sr.Dx() - sr.Dy()) / 2
		sr.Max.X = sr.Min.X + sr.Dy()
	} else if sr.Dy() > sr.Dx() {
		sr.Min.Y += (sr.Dy() - sr.Dx()) / 2
		sr.Max.Y = sr.Min.Y + sr.Dx()
	}

	dr := image.Rect(0, 0, size, size)
	dst := image.NewRGBA(dr)
	// draw.CatmullRom is noticeably slow on App Engine.
	draw.ApproxBiLinear.Scale(dst, dr, src, sr, draw.Src, nil)

	var b bytes.Buffer
	w = io.MultiWriter(w, &b)
	if err := jpeg.Encode(w, dst, &jpeg.Options{Quality: quality}); err != nil {
		return err
	}
	if err := setCachedImage(ctx, name, size, b.Bytes()); err != nil {
		log.Errorf(ctx, "Cache write failed: %v", err) // swallow error
	}
	return nil
}

// load reads the raw image stored under name, from the configured bucket or
// from the test base URL.
func load(ctx context.Context, cfg *config.Config, name string) ([]byte, error) {
	var r io.ReadCloser
	if cfg.ImageBucket != "" {
		cl, err := getClient(ctx)
		if err != nil {
			return nil, err
		}
		if r, err = cl.Bucket(cfg.ImageBucket).Object(name).NewReader(ctx); err == storage.ErrObjectNotExist {
			return nil, os.ErrNotExist
		} else if err != nil {
			return nil, err
		}
	} else if cfg.ImageBaseURL != "" {
		url := cfg.ImageBaseURL + name
		resp, err := http.Get(url)
		if err != nil {
			return nil, err
		} else if resp.StatusCode >= 300 {
			resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound {
				return nil, os.ErrNotExist
			}
			return nil, fmt.Errorf("server replied with %q", resp.Status)
		}
		r = resp.Body
	} else {
		return nil, errors.New("neither ImageBucket nor ImageBaseURL is set")
	}
	defer r.Close()

	return io.ReadAll(r)
}

// setCachedImage caches image data under the supplied object name and size.
// size should be 0 when caching the original image.
func setCachedImage(ctx context.Context, name string, size int, data []byte) error {
	return cache.SetMemcacheBytes(ctx, cacheKey(name, size), data, cacheExpiration)
}

// getCachedImage looks up raw data for the image with the supplied object
// name and size. If the image isn't cached, both return values are nil.
func getCachedImage(ctx context.Context, name string, size int) ([]byte, error) {
	return cache.GetMemcacheBytes(ctx, cacheKey(name, size))
}
