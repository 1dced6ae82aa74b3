package habits_test

import (
	"os"
	"path/filepath"
	"testing"

	"habitwatch/internal/platform/habits"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c := habits.Default()

	if !c.Tracked("chomping") {
		t.Error("chomping must be tracked by default")
	}
	if c.Tracked("pondering") {
		t.Error("pondering must not be tracked")
	}
	if c.Tracked("does-not-exist") {
		t.Error("unknown classes must not be tracked")
	}

	h := c.Lookup("chomping")
	if h.Display != "Chomping" || h.ToneHz != 800 {
		t.Errorf("chomping entry = %+v", h)
	}
}

func TestLookupFallback(t *testing.T) {
	t.Parallel()
	h := habits.Default().Lookup("nail-biting")
	if h.Display != "Habit: nail-biting" {
		t.Errorf("fallback display = %q", h.Display)
	}
	if h.ToneHz <= 0 {
		t.Error("fallback must carry a usable tone")
	}
	if h.Tracked {
		t.Error("fallback entries are untracked")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "habits.yaml")
	data := `
habits:
  - class: nail-biting
    tracked: true
    tone_hz: 900
  - class: chomping
    display: Shirt Chewing
    tracked: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := habits.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Tracked("nail-biting") {
		t.Error("nail-biting must be tracked")
	}
	if got := c.Lookup("nail-biting").Display; got != "Nail Biting" {
		t.Errorf("derived display = %q, want Nail Biting", got)
	}
	if got := c.Lookup("chomping").Display; got != "Shirt Chewing" {
		t.Errorf("display = %q, want Shirt Chewing", got)
	}
	if got := c.Lookup("chomping").ToneHz; got <= 0 {
		t.Errorf("tone must default when omitted, got %d", got)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("habits: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := habits.Load(empty); err == nil {
		t.Error("empty catalog must be rejected")
	}

	noClass := filepath.Join(dir, "noclass.yaml")
	if err := os.WriteFile(noClass, []byte("habits:\n  - display: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := habits.Load(noClass); err == nil {
		t.Error("entries without class must be rejected")
	}

	if _, err := habits.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file must be reported")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	t.Parallel()
	c, err := habits.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Tracked("chomping") {
		t.Error("empty path must fall back to the default catalog")
	}
}
