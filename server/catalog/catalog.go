// Copyright 2026 Aoi Tanaka.
// All rights reserved.

// Package catalog defines the song catalog and its serialized text form.
//
// The whole repertoire is stored as a single newline-delimited text blob that
// the admin page replaces wholesale on each save. Each line is
// "title,artist,genre,new-flag,status-flag" with trailing empty fields
// trimmed. Malformed lines are dropped silently on parse.
package catalog

import (
	"strings"
)

// Song statuses.
const (
	StatusPlayable   = "playable"
	StatusPracticing = "practicing"
)

// Serialized field literals.
const (
	newLabel        = "new"
	practicingLabel = "練習中"
)

// Song is one entry of the repertoire. Identity is the (Title, Artist) pair.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
	IsNew  bool   `json:"isNew"`
	// Status is StatusPlayable or StatusPracticing.
	Status string `json:"status"`
}

// Parse converts the catalog text blob into songs.
//
// Line endings are normalized first. A line is dropped if it is blank or if
// its title or artist field is empty after trimming. The fourth field marks
// the song as new when it is the case-insensitive literal "new"; the fifth
// marks it as practicing when it is exactly "練習中". Fields beyond the fifth
// are ignored.
func Parse(blob string) []Song {
	blob = strings.ReplaceAll(blob, "\r\n", "\n")
	var songs []Song
	for _, line := range strings.Split(blob, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		get := func(i int) string {
			if i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}
		title, artist := get(0), get(1)
		if title == "" || artist == "" {
			continue
		}
		status := StatusPlayable
		if get(4) == practicingLabel {
			status = StatusPracticing
		}
		songs = append(songs, Song{
			Title:  title,
			Artist: artist,
			Genre:  get(2),
			IsNew:  strings.EqualFold(get(3), newLabel),
			Status: status,
		})
	}
	return songs
}

// Serialize is the inverse of Parse. Trailing empty fields are trimmed down to
// a minimum of two (title and artist), and records are joined with newlines.
func Serialize(songs []Song) string {
	lines := make([]string, len(songs))
	for i, s := range songs {
		var isNew, status string
		if s.IsNew {
			isNew = newLabel
		}
		if s.Status == StatusPracticing {
			status = practicingLabel
		}
		fields := []string{s.Title, s.Artist, s.Genre, isNew, status}
		for len(fields) > 2 && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
		lines[i] = strings.Join(fields, ",")
	}
	return strings.Join(lines, "\n")
}
