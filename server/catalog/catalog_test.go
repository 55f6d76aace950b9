// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package catalog

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	blob := "夜に駆ける,YOASOBI,J-Pop,new\nLemon,米津玄師,J-Pop"
	want := []Song{
		{Title: "夜に駆ける", Artist: "YOASOBI", Genre: "J-Pop", IsNew: true, Status: StatusPlayable},
		{Title: "Lemon", Artist: "米津玄師", Genre: "J-Pop", Status: StatusPlayable},
	}
	if got := Parse(blob); !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(%q) = %v; want %v", blob, got, want)
	}
}

func TestParse_DroppedLines(t *testing.T) {
	for _, tc := range []struct {
		blob string
		want int // number of surviving songs
	}{
		{"", 0},
		{"\n\n\n", 0},
		{"onlytitle", 0},        // missing artist
		{"onlytitle,", 0},       // empty artist
		{",artist", 0},          // empty title
		{"  ,  artist", 0},      // whitespace title
		{"a,b\nbroken\nc,d", 2}, // bad line in the middle
		{"a,b\r\nc,d\r\n", 2},   // CRLF endings
		{"a,b,c,d,e,f,g,h", 1},  // extra fields ignored
		{" a , b , c ", 1},      // fields trimmed
	} {
		if got := Parse(tc.blob); len(got) != tc.want {
			t.Errorf("Parse(%q) returned %d songs (%v); want %d", tc.blob, len(got), got, tc.want)
		}
	}
}

func TestParse_Flags(t *testing.T) {
	for _, tc := range []struct {
		line       string
		isNew      bool
		practicing bool
	}{
		{"t,a", false, false},
		{"t,a,g,new", true, false},
		{"t,a,g,NEW", true, false}, // case-insensitive
		{"t,a,g,newish", false, false},
		{"t,a,g,,練習中", false, true},
		{"t,a,g,new,練習中", true, true},
		{"t,a,g,,練習中です", false, false}, // exact match only
	} {
		songs := Parse(tc.line)
		if len(songs) != 1 {
			t.Fatalf("Parse(%q) returned %d songs; want 1", tc.line, len(songs))
		}
		s := songs[0]
		if s.IsNew != tc.isNew {
			t.Errorf("Parse(%q) IsNew = %v; want %v", tc.line, s.IsNew, tc.isNew)
		}
		practicing := s.Status == StatusPracticing
		if practicing != tc.practicing {
			t.Errorf("Parse(%q) Status = %q; want practicing %v", tc.line, s.Status, tc.practicing)
		}
	}
}

func TestSerialize(t *testing.T) {
	for _, tc := range []struct {
		songs []Song
		want  string
	}{
		{nil, ""},
		{[]Song{{Title: "Lemon", Artist: "米津玄師"}}, "Lemon,米津玄師"},
		{[]Song{{Title: "t", Artist: "a", Genre: "g"}}, "t,a,g"},
		{[]Song{{Title: "t", Artist: "a", IsNew: true}}, "t,a,,new"},
		{[]Song{{Title: "t", Artist: "a", Status: StatusPracticing}}, "t,a,,,練習中"},
		{
			[]Song{
				{Title: "夜に駆ける", Artist: "YOASOBI", Genre: "J-Pop", IsNew: true},
				{Title: "Lemon", Artist: "米津玄師", Genre: "J-Pop"},
			},
			"夜に駆ける,YOASOBI,J-Pop,new\nLemon,米津玄師,J-Pop",
		},
	} {
		if got := Serialize(tc.songs); got != tc.want {
			t.Errorf("Serialize(%v) = %q; want %q", tc.songs, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// Parse(Serialize(songs)) must preserve every song.
	songs := []Song{
		{Title: "夜に駆ける", Artist: "YOASOBI", Genre: "J-Pop", IsNew: true, Status: StatusPlayable},
		{Title: "Lemon", Artist: "米津玄師", Genre: "J-Pop", Status: StatusPlayable},
		{Title: "残酷な天使のテーゼ", Artist: "高橋洋子", Genre: "Anime", Status: StatusPracticing},
		{Title: "t", Artist: "a", Status: StatusPlayable},
	}
	got := Parse(Serialize(songs))
	if !reflect.DeepEqual(got, songs) {
		t.Errorf("Parse(Serialize(songs)) = %v; want %v", got, songs)
	}

	// Serialize(Parse(blob)) must reproduce a canonical blob.
	blob := "夜に駆ける,YOASOBI,J-Pop,new\nLemon,米津玄師,J-Pop"
	if got := Serialize(Parse(blob)); got != blob {
		t.Errorf("Serialize(Parse(%q)) = %q; want the input back", blob, got)
	}
}
