package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRequestsTrimsAndStripsPaths(t *testing.T) {
	input := strings.Join([]string{
		"  vo_intro_01.wem  ",
		"",
		`sound\voices\vo_boss_taunt.wem`,
		"audio/en/vo_exit.wem",
		"vo_intro_01.wem",
	}, "\n")

	requests, err := ParseRequests(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRequests: %v", err)
	}

	want := []string{"vo_intro_01.wem", "vo_boss_taunt.wem", "vo_exit.wem", "vo_intro_01.wem"}
	if len(requests) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(requests))
	}
	for i, name := range want {
		if requests[i].Filename != name {
			t.Fatalf("request %d: expected %s, got %s", i, name, requests[i].Filename)
		}
	}
	if requests[1].Line != 3 {
		t.Fatalf("expected line 3 for second request, got %d", requests[1].Line)
	}
}

func TestParseRequestsKeepsDuplicatesPositionally(t *testing.T) {
	requests, err := ParseRequests(strings.NewReader("a.wem\na.wem\na.wem\n"))
	if err != nil {
		t.Fatalf("ParseRequests: %v", err)
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
}

func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, rel := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("wem"), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestLocateFindsAndReportsMisses(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"voices/en/vo_intro_01.wem",
		"voices/en/vo_exit.wem",
	)

	locator, err := NewLocator(root)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}

	located := locator.Locate([]Request{
		{Filename: "vo_intro_01.wem"},
		{Filename: "missing.wem"},
	})
	if len(located) != 2 {
		t.Fatalf("expected 2 results, got %d", len(located))
	}
	if !located[0].Found || located[0].Path != filepath.Join(root, "voices", "en", "vo_intro_01.wem") {
		t.Fatalf("unexpected first result: %+v", located[0])
	}
	if located[1].Found {
		t.Fatalf("expected miss for missing.wem, got %+v", located[1])
	}
}

func TestLocateIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "VO_Shout.WEM")

	locator, err := NewLocator(root)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}

	located := locator.Locate([]Request{{Filename: "vo_shout.wem"}})
	if !located[0].Found {
		t.Fatal("expected case-insensitive match")
	}
}

func TestLocateTieBreaksLexicographically(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"zeta/vo_dup.wem",
		"alpha/vo_dup.wem",
		"mid/vo_dup.wem",
	)

	locator, err := NewLocator(root)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}

	located := locator.Locate([]Request{{Filename: "vo_dup.wem"}})
	if located[0].Path != filepath.Join(root, "alpha", "vo_dup.wem") {
		t.Fatalf("expected lexicographically smallest path, got %s", located[0].Path)
	}
}

func TestNewLocatorRejectsMissingRoot(t *testing.T) {
	if _, err := NewLocator(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
