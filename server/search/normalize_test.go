// Copyright 2026 Aoi Tanaka.
// All rights reserved.

package search

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"", ""},
		{"  ", ""},
		{"Lemon", "lemon"},
		{"ＬＥＭＯＮ", "lemon"},          // full-width ASCII folds to half-width
		{"ひらがな", "ヒラガナ"},            // hiragana shifts to katakana
		{"ヒラガナ", "ヒラガナ"},            // katakana is left alone
		{"ｶﾀｶﾅ", "カタカナ"},            // half-width katakana folds to full-width
		{"夜に駆ける", "夜ニ駆ケル"},          // kanji preserved, kana shifted
		{"Don't Stop!", "dontstop"}, // apostrophe, space, bang stripped
		{"“Quoted” ‘words’", "quotedwords"},
		{"A.B,C&D", "abcd"},
		{"Pretender (acoustic)", "pretenderacoustic"},
		{"スーパー", "スパ"}, // long vowel mark stripped
		{"　全角　スペース　", "全角スペス"},
	} {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{
		"", "Lemon", "ＬＥＭＯＮ", "ひらがな", "ｶﾀｶﾅ", "夜に駆ける",
		"Don't Stop!", "スーパー", "Ｐｒｅｔｅｎｄｅｒ （ｂａｌｌａｄ）",
	} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q; want %q", s, twice, once)
		}
	}
}

func TestNormalize_VariantsAgree(t *testing.T) {
	for _, tc := range []struct{ a, b string }{
		{"ひらがな", "ヒラガナ"},
		{"ｶﾀｶﾅ", "カタカナ"},
		{"ＬＥＭＯＮ", "Lemon"},
		{"ｙｏａｓｏｂｉ", "YOASOBI"},
	} {
		if na, nb := Normalize(tc.a), Normalize(tc.b); na != nb {
			t.Errorf("Normalize(%q) = %q but Normalize(%q) = %q; want equal keys",
				tc.a, na, tc.b, nb)
		}
	}
}
