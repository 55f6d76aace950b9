// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package reading annotates song titles with katakana readings using a
// hosted generative text service.
//
// The service is treated as best-effort: an item missing from its reply, or
// replied to with an empty reading, keeps its original fields.
package reading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes bounds how much of the service's reply is read.
const maxResponseBytes = 1 << 20

// Pair is one song identity plus its (possibly empty) katakana reading.
type Pair struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Reading string `json:"reading,omitempty"`
}

// Client calls the generative text service.
type Client struct {
	// HTTP is the client used for requests. http.DefaultClient if nil.
	HTTP *http.Client
	// URL is the service endpoint.
	URL string
	// APIKey authenticates requests.
	APIKey string
	// Timeout bounds a single annotation call. Defaults to 20 seconds.
	Timeout time.Duration
}

// annotateRequest is the wire format sent to the service.
type annotateRequest struct {
	Songs []Pair `json:"songs"`
}

// annotateResponse is the wire format received from the service.
type annotateResponse struct {
	Readings []Pair `json:"readings"`
}

// Annotate asks the service for katakana readings of pairs and returns a new
// slice with readings merged in by (title, artist) identity. Pairs absent
// from the reply are returned unchanged.
func (c *Client) Annotate(ctx context.Context, pairs []Pair) ([]Pair, error) {
	if len(pairs) == 0 {
		return []Pair{}, nil
	}
	if c.URL == "" {
		return nil, fmt.Errorf("no service URL configured")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(annotateRequest{Songs: pairs})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling reading service: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reading service replied with %q", resp.Status)
	}

	var ar annotateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decoding reading reply: %v", err)
	}

	type ident struct{ title, artist string }
	readings := make(map[ident]string, len(ar.Readings))
	for _, r := range ar.Readings {
		if r.Reading != "" {
			readings[ident{r.Title, r.Artist}] = r.Reading
		}
	}

	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		if r, ok := readings[ident{p.Title, p.Artist}]; ok {
			p.Reading = r
		}
		out[i] = p
	}
	return out, nil
}
