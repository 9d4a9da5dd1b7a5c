package changelog

import (
	"strings"
	"testing"
)

func TestLoadChangelog(t *testing.T) {
	html, err := LoadChangelog()

	if err != nil {
		t.Error(err)
		return
	}

	if !strings.Contains(string(html), "<h2") || !strings.Contains(string(html), "v0.1.0") {
		t.Logf("Expected rendered version heading, got: %s", html)
		t.Fail()
	}
}
