package app

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Test Hotel":               "test-hotel",
		"Hôtel Sénégal":            "hotel-senegal",
		"  Le   Ndiambour!! ":      "le-ndiambour",
		"Café--Terrasse (Dakar) 2": "cafe-terrasse-dakar-2",
		"!!!":                      "hotel",
		"":                         "hotel",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Slugify(strings.Repeat("a", 300)); len(got) != maxSlugBase {
		t.Errorf("long slug length = %d", len(got))
	}
}

func TestUsernameBase(t *testing.T) {
	cases := map[string]string{
		"awa.diop@example.com": "awa.diop",
		"@example.com":         "user",
		"plain":                "plain",
	}
	for in, want := range cases {
		if got := usernameBase(in); got != want {
			t.Errorf("usernameBase(%q) = %q, want %q", in, got, want)
		}
	}
}
