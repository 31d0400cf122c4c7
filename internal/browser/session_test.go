package browser

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestBuildSearchURL(t *testing.T) {
	tests := []struct {
		base, query, want string
	}{
		{"https://www.google.com/maps/search/", "Dentist", "https://www.google.com/maps/search/Dentist"},
		{"https://www.google.com/maps/search", "  dental clinic in Zürich ", "https://www.google.com/maps/search/dental%20clinic%20in%20Z%C3%BCrich"},
		{"http://localhost:9000/search/", "a/b?c", "http://localhost:9000/search/a%2Fb%3Fc"},
	}
	for _, tt := range tests {
		if got := buildSearchURL(tt.base, tt.query); got != tt.want {
			t.Errorf("buildSearchURL(%q, %q) = %q, want %q", tt.base, tt.query, got, tt.want)
		}
	}
}

func TestNewLauncherDefaults(t *testing.T) {
	l := NewLauncher(Options{})
	if l.opts.SearchBaseURL != defaultSearchBaseURL {
		t.Fatalf("base = %q", l.opts.SearchBaseURL)
	}
	if l.opts.ScrollStep != defaultScrollStep {
		t.Fatalf("scroll step = %d", l.opts.ScrollStep)
	}
}

func TestScrollScriptUsesStepTwice(t *testing.T) {
	script := fmt.Sprintf(scrollScript, 900)
	if strings.Count(script, "scrollBy(0, 900)") != 2 {
		t.Fatalf("unexpected script:\n%s", script)
	}
	if strings.Contains(script, "%!") {
		t.Fatalf("bad format verbs in script:\n%s", script)
	}
}

func TestSessionCloseReleasesTabAndBrowserOnce(t *testing.T) {
	var tabs, allocs int
	sess := &Session{
		tabCtx:      context.Background(),
		cancelTab:   func() { tabs++ },
		cancelAlloc: func() { allocs++ },
	}
	sess.Close()
	sess.Close()
	if tabs != 1 || allocs != 1 {
		t.Fatalf("tab cancelled %d times, allocator %d times, want 1 each", tabs, allocs)
	}
}
