package livetiming

import (
	"html/template"
	"strings"
	"testing"
	"time"
)

func TestTemplateFuncs(t *testing.T) {
	t.Run("Team colour", func(t *testing.T) {
		for in, expected := range map[string]template.CSS{
			"3671C6":  "#3671C6",
			"#27F4D2": "#27F4D2",
			"":        "#777777",
		} {
			if out := teamColour(in); out != expected {
				t.Logf("teamColour(%q) = %q, expected %q", in, out, expected)
				t.Fail()
			}
		}
	})

	t.Run("Title", func(t *testing.T) {
		if out := title("PRACTICE 1"); out != "Practice 1" {
			t.Logf("Unexpected title: %s", out)
			t.Fail()
		}
	})

	t.Run("Asset cache busting", func(t *testing.T) {
		defer func(version string) { BuildVersion = version }(BuildVersion)

		BuildVersion = ""

		if out := assetURL("/static/js/index.js"); out != "/static/js/index.js" {
			t.Logf("Unexpected asset url without a build version: %s", out)
			t.Fail()
		}

		BuildVersion = "v0.4.0"

		if out := assetURL("/static/js/index.js"); out != "/static/js/index.js?cb=v0.4.0" {
			t.Logf("Unexpected asset url: %s", out)
			t.Fail()
		}
	})

	t.Run("Sample age", func(t *testing.T) {
		if out := sampleAge(""); out != "" {
			t.Logf("Expected empty age for a missing timestamp, got %s", out)
			t.Fail()
		}

		ts := time.Now().Add(-3 * time.Minute).UTC().Format(time.RFC3339)

		if out := sampleAge(ts); !strings.HasSuffix(out, "ago") {
			t.Logf("Expected a relative age, got %s", out)
			t.Fail()
		}
	})

	t.Run("JSON encode", func(t *testing.T) {
		out := string(jsonEncode([]Driver{{Number: 44, Name: "Lewis HAMILTON"}}))

		if !strings.Contains(out, `"number":44`) || !strings.Contains(out, `"position":null`) {
			t.Logf("Unexpected encoding: %s", out)
			t.Fail()
		}
	})
}

func TestRenderer_MissingTemplate(t *testing.T) {
	renderer, err := NewRenderer(NewFilesystemTemplateLoader("views"), NewLocationRegistry(time.UTC), time.UTC, false)

	if err != nil {
		t.Error(err)
		return
	}

	if _, ok := renderer.templates["leaderboard.html"]; !ok {
		t.Logf("Expected leaderboard.html to be loaded, got %d templates", len(renderer.templates))
		t.Fail()
	}

	err = renderer.LoadTemplate(nil, nil, "does-not-exist.html", nil)

	if err == nil {
		t.Logf("Expected an error for a missing template")
		t.Fail()
	}
}
