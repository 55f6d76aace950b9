// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package search

import (
	"testing"

	"github.com/aoi/kanaderu/server/catalog"
)

func TestScoreSong(t *testing.T) {
	song := catalog.Song{Title: "Lemon", Artist: "米津玄師"}
	for _, tc := range []struct {
		query string
		want  int
	}{
		{"Lemon", scoreTitleExact},
		{"lemon", scoreTitleExact}, // case folds before comparison
		{"ｌｅｍｏｎ", scoreTitleExact}, // width folds before comparison
		{"米津玄師", scoreArtistExact},
		{"Lemo", scoreTitlePrefix},
		{"米津", scoreArtistPrefix},
		{"emo", scoreTitleContains},
		{"玄師", scoreArtistContains},
		{"zzz", 0},
	} {
		if got := scoreSong(Normalize(tc.query), &song); got != tc.want {
			t.Errorf("scoreSong(%q) = %v; want %v", tc.query, got, tc.want)
		}
	}
}

func TestBestMatch(t *testing.T) {
	songs := []catalog.Song{
		{Title: "夜に駆ける", Artist: "YOASOBI"},
		{Title: "Lemon", Artist: "米津玄師"},
		{Title: "Lemonade", Artist: "Somebody"},
	}

	for _, tc := range []struct {
		query string
		want  string // expected title; "" means no match
	}{
		{"lemon", "Lemon"},     // exact title beats Lemonade's prefix match
		{"Lemona", "Lemonade"}, // prefix
		{"yoasobi", "夜に駆ける"},   // exact artist
		{"夜に", "夜に駆ける"},        // title prefix
		{"zzz", ""},
		{"", ""},
		{"!!!", ""}, // normalizes to empty
	} {
		got := BestMatch(tc.query, songs)
		switch {
		case tc.want == "" && got != nil:
			t.Errorf("BestMatch(%q) = %q; want no match", tc.query, got.Title)
		case tc.want != "" && got == nil:
			t.Errorf("BestMatch(%q) = no match; want %q", tc.query, tc.want)
		case tc.want != "" && got != nil && got.Title != tc.want:
			t.Errorf("BestMatch(%q) = %q; want %q", tc.query, got.Title, tc.want)
		}
	}
}

func TestBestMatch_ArtistPrefixBeatsContains(t *testing.T) {
	// An artist-prefix match (60) outranks a title-substring match (30)
	// elsewhere in the catalog.
	songs := []catalog.Song{
		{Title: "Mr. Yonezu Tribute", Artist: "Cover Band"},
		{Title: "Lemon", Artist: "Yonezu Kenshi"},
	}
	got := BestMatch("yone", songs)
	if got == nil || got.Title != "Lemon" {
		t.Errorf("BestMatch(%q) = %+v; want Lemon", "yone", got)
	}
}

func TestBestMatch_TieGoesToCatalogOrder(t *testing.T) {
	songs := []catalog.Song{
		{Title: "Rain Song", Artist: "A"},
		{Title: "Rain Dance", Artist: "B"},
	}
	// Both titles match "rain" as a prefix; the first catalog entry wins.
	got := BestMatch("rain", songs)
	if got == nil || got.Title != "Rain Song" {
		t.Errorf("BestMatch(%q) = %+v; want first catalog entry", "rain", got)
	}
}

func TestFindMatches(t *testing.T) {
	// The first title carries the katakana reading annotation that the admin
	// page merges in; parentheses are stripped by normalization, so the
	// reading becomes searchable as part of the title.
	songs := []catalog.Song{
		{Title: "夜に駆ける(ヨルニカケル)", Artist: "YOASOBI"},
		{Title: "Lemon", Artist: "米津玄師"},
		{Title: "Lemonade", Artist: "Somebody"},
	}

	for _, tc := range []struct {
		query string
		want  []string // expected titles in catalog order
	}{
		{"lemon", []string{"Lemon", "Lemonade"}}, // broader than BestMatch
		{"よる", []string{"夜に駆ける(ヨルニカケル)"}},        // hiragana query hits the reading
		{"yoasobi", []string{"夜に駆ける(ヨルニカケル)"}},   // artist substring
		{"zzz", nil},
		{"", nil},
	} {
		got := FindMatches(tc.query, songs)
		titles := make([]string, len(got))
		for i, s := range got {
			titles[i] = s.Title
		}
		if len(titles) != len(tc.want) {
			t.Errorf("FindMatches(%q) = %v; want %v", tc.query, titles, tc.want)
			continue
		}
		for i := range titles {
			if titles[i] != tc.want[i] {
				t.Errorf("FindMatches(%q) = %v; want %v", tc.query, titles, tc.want)
				break
			}
		}
	}
}
