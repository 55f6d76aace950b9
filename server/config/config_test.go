// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package config

import (
	"testing"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		json    string
		wantErr bool
	}{
		{"minimal", `{"fanOrigin":"https://example.org"}`, false},
		{"full", `{"fanOrigin":"https://example.org","ngWords":["x"],` +
			`"imageBucket":"b","readingUrl":"https://r.example/v1","readingApiKey":"k"}`, false},
		{"missing origin", `{"ngWords":["x"]}`, true},
		{"bad json", `{`, true},
		{"unknown field", `{"fanOrigin":"https://example.org","bogus":1}`, true},
		{"bucket and base url", `{"fanOrigin":"o","imageBucket":"b","imageBaseUrl":"https://u/"}`, true},
		{"reading url without key", `{"fanOrigin":"o","readingUrl":"https://r/"}`, true},
		{"reading key without url", `{"fanOrigin":"o","readingApiKey":"k"}`, true},
	} {
		_, err := Parse([]byte(tc.json))
		if (err != nil) != tc.wantErr {
			t.Errorf("%v: Parse(%q) returned %v; want err %v", tc.desc, tc.json, err, tc.wantErr)
		}
	}
}

func TestParse_CleansBaseURL(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"https://img.example.org/blog", "https://img.example.org/blog/"},
		{"https://img.example.org/blog/", "https://img.example.org/blog/"},
		{"", ""},
	} {
		cfg, err := Parse([]byte(`{"fanOrigin":"o","imageBaseUrl":"` + tc.in + `"}`))
		if err != nil {
			t.Fatalf("Parse with imageBaseUrl %q failed: %v", tc.in, err)
		}
		if cfg.ImageBaseURL != tc.want {
			t.Errorf("ImageBaseURL for %q = %q; want %q", tc.in, cfg.ImageBaseURL, tc.want)
		}
	}
}
