// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package intake validates and records song requests and setlist suggestions.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/appengine/v2/datastore"
	"google.golang.org/appengine/v2/log"

	"github.com/aoi/kanaderu/server/rank"
	"github.com/aoi/kanaderu/server/search"
)

// SuggestionKind is the datastore kind of stored setlist suggestions.
const SuggestionKind = "Suggestion"

// maxSuggestionSongs caps how many songs one suggestion may carry.
const maxSuggestionSongs = 10

// InvalidInputError describes user input rejected before any store write.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// Suggestion is one submitted setlist suggestion.
type Suggestion struct {
	ID      string    `datastore:"-" json:"id"`
	Songs   []string  `datastore:"Songs,noindex" json:"songs"`
	Comment string    `datastore:"Comment,noindex" json:"comment,omitempty"`
	Created time.Time `datastore:"Created" json:"created"`
}

// ValidateTerm trims term and rejects empty input and terms containing a
// configured NG word. Comparison runs over normalized text so width and
// script variants of an NG word are still caught. The trimmed term is
// returned.
func ValidateTerm(term string, ngWords []string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", &InvalidInputError{Reason: "term is empty"}
	}
	norm := search.Normalize(term)
	for _, w := range ngWords {
		nw := search.Normalize(w)
		if nw != "" && strings.Contains(norm, nw) {
			return "", &InvalidInputError{Reason: "term contains a blocked word"}
		}
	}
	return term, nil
}

// RecordRequest validates term and bumps its request counters.
func RecordRequest(ctx context.Context, term string, ngWords []string, now time.Time) error {
	term, err := ValidateTerm(term, ngWords)
	if err != nil {
		return err
	}
	return rank.RecordRequest(ctx, term, now)
}

// SaveSuggestion validates and stores a setlist suggestion and bumps the
// request counter of each suggested song. Counter failures don't fail the
// submission; the stored suggestion is the user-visible result.
func SaveSuggestion(ctx context.Context, songs []string, comment string,
	ngWords []string, now time.Time) (*Suggestion, error) {
	if len(songs) == 0 {
		return nil, &InvalidInputError{Reason: "no songs in suggestion"}
	}
	if len(songs) > maxSuggestionSongs {
		return nil, &InvalidInputError{
			Reason: fmt.Sprintf("too many songs in suggestion (max %v)", maxSuggestionSongs),
		}
	}
	cleaned := make([]string, len(songs))
	for i, s := range songs {
		term, err := ValidateTerm(s, ngWords)
		if err != nil {
			return nil, err
		}
		cleaned[i] = term
	}
	if _, err := ValidateTerm(comment, ngWords); comment != "" && err != nil {
		return nil, err
	}

	sug := &Suggestion{
		ID:      uuid.New().String(),
		Songs:   cleaned,
		Comment: strings.TrimSpace(comment),
		Created: now,
	}
	key := datastore.NewKey(ctx, SuggestionKind, sug.ID, 0, nil)
	if _, err := datastore.Put(ctx, key, sug); err != nil {
		return nil, fmt.Errorf("putting suggestion: %v", err)
	}

	for _, term := range cleaned {
		if err := rank.RecordRequest(ctx, term, now); err != nil {
			log.Errorf(ctx, "Recording suggested song %q failed: %v", term, err)
		}
	}
	return sug, nil
}
