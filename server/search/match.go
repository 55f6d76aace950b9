// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package search

import (
	"strings"

	"github.com/aoi/kanaderu/server/catalog"
)

// Score classes assigned by scoreSong, highest priority first. The first rule
// that matches wins; scores are never summed.
const (
	scoreTitleExact     = 100
	scoreArtistExact    = 90
	scoreTitlePrefix    = 70
	scoreArtistPrefix   = 60
	scoreTitleContains  = 30
	scoreArtistContains = 20
)

// scoreSong scores how well the normalized query q matches s for attribution.
// A zero score means the query has no relation to the song.
func scoreSong(q string, s *catalog.Song) int {
	title := Normalize(s.Title)
	artist := Normalize(s.Artist)
	switch {
	case q == title:
		return scoreTitleExact
	case q == artist:
		return scoreArtistExact
	case strings.HasPrefix(title, q):
		return scoreTitlePrefix
	case strings.HasPrefix(artist, q):
		return scoreArtistPrefix
	case strings.Contains(title, q):
		return scoreTitleContains
	case strings.Contains(artist, q):
		return scoreArtistContains
	}
	return 0
}

// BestMatch attributes a free-text query to the single catalog song that it
// most plausibly refers to, or nil if no song is related at all. Ties are
// broken by catalog order: the first candidate with the highest score wins.
//
// This decides which song gets ranking credit for a query. It is deliberately
// separate from FindMatches, which controls what the visitor sees.
func BestMatch(query string, songs []catalog.Song) *catalog.Song {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	var best *catalog.Song
	bestScore := 0
	for i := range songs {
		if score := scoreSong(q, &songs[i]); score > bestScore {
			best = &songs[i]
			bestScore = score
		}
	}
	return best
}

// FindMatches returns every song whose normalized title or artist contains the
// normalized query as a substring, in catalog order. This is the permissive
// "is this song in the repertoire" answer shown to visitors; changing its
// breadth must not affect BestMatch and vice versa.
func FindMatches(query string, songs []catalog.Song) []catalog.Song {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	var matches []catalog.Song
	for _, s := range songs {
		if strings.Contains(Normalize(s.Title), q) || strings.Contains(Normalize(s.Artist), q) {
			matches = append(matches, s)
		}
	}
	return matches
}
