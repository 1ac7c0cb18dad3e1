package internal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/depot/internal/testutil"
)

func TestList_RemoteCatalog(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/emoji.json": {Body: `[{"keyword":"iso","emoji":"💿"}]`},
		"/files.json": {Body: `[
			{"name":"recovery.iso","url":"files/recovery.iso","tags":["backup"]},
			{"name":"notes.txt","url":"files/notes.txt","tags":["docs"]}
		]`},
		"/files/recovery.iso": {Length: "3145728"},
	})

	cfg := NewDefaultConfig()
	cfg.Catalog.BaseURL = site.BaseURL()

	var out bytes.Buffer
	err := List(context.Background(), &out, "", WithConfig(cfg), WithLogger(testutil.Logger()))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := out.String()
	for _, want := range []string{"💿", "recovery.iso", "3 MB", "notes.txt [ NOT FOUND ]", "Unavailable"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestList_Query(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/files.json": {Body: `[
			{"name":"recovery.iso","url":"files/recovery.iso","tags":["backup"]},
			{"name":"notes.txt","url":"files/notes.txt","tags":["docs"]}
		]`},
	})

	cfg := NewDefaultConfig()
	cfg.Catalog.BaseURL = site.BaseURL()

	var out bytes.Buffer
	if err := List(context.Background(), &out, "DOCS", WithConfig(cfg), WithLogger(testutil.Logger())); err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Contains(out.String(), "recovery.iso") {
		t.Errorf("hidden card printed:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "notes.txt") {
		t.Errorf("matching card missing:\n%s", out.String())
	}
}

func TestList_ManifestFailure(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/files.json": {Status: http.StatusServiceUnavailable},
	})

	cfg := NewDefaultConfig()
	cfg.Catalog.BaseURL = site.BaseURL()

	var out bytes.Buffer
	err := List(context.Background(), &out, "", WithConfig(cfg), WithLogger(testutil.Logger()))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out.String(), "Could not load files.json") {
		t.Errorf("error panel missing:\n%s", out.String())
	}
}

func TestList_LocalSite(t *testing.T) {
	root := t.TempDir()
	write := func(name string, data []byte) {
		t.Helper()
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("files.json", []byte(`[{"name":"tool.bin","url":"files/tool.bin","tags":[]}]`))
	write("emoji.json", []byte(`[{"keyword":"tool","emoji":"🔧"}]`))
	write("files/tool.bin", bytes.Repeat([]byte{1}, 2048))

	cfg := NewDefaultConfig()
	cfg.Site.Root = root

	var out bytes.Buffer
	if err := List(context.Background(), &out, "", WithConfig(cfg), WithLogger(testutil.Logger())); err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, want := range []string{"🔧", "tool.bin", "2 KB", "Download"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestList_ConfigRequired(t *testing.T) {
	err := List(context.Background(), &bytes.Buffer{}, "")
	if !errors.Is(err, errConfigRequired) {
		t.Errorf("err = %v, want errConfigRequired", err)
	}
}
