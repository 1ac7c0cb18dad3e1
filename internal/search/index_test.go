package search

import (
	"testing"

	"github.com/starford/depot/internal/card"
	"github.com/starford/depot/internal/models"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex()
	for _, f := range []models.FileDescriptor{
		{Name: "Archive.ZIP", URL: "a.zip"},
		{Name: "movie.mkv", URL: "m.mkv", Tags: []string{"video", "zipped"}},
		{Name: "notes.txt", URL: "n.txt", Tags: []string{"text"}},
	} {
		ix.Add(card.Build(f, true, 1, nil))
	}
	return ix
}

func equal(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply_FiltersByNameAndTags(t *testing.T) {
	ix := testIndex(t)
	got := ix.Apply("ZIP")
	want := []bool{true, true, false}
	if !equal(got, want) {
		t.Errorf("Apply(ZIP) = %v, want %v", got, want)
	}
	if ix.Len() != 3 {
		t.Errorf("hidden cards must be retained, len = %d", ix.Len())
	}
}

func TestApply_ClearRestoresAll(t *testing.T) {
	ix := testIndex(t)
	ix.Apply("txt")
	got := ix.Apply("")
	if !equal(got, []bool{true, true, true}) {
		t.Errorf("clearing query = %v, want all visible", got)
	}
}

func TestApply_Idempotent(t *testing.T) {
	ix := testIndex(t)
	first := ix.Apply("video")
	second := ix.Apply("video")
	if !equal(first, second) {
		t.Errorf("re-filtering changed visibility: %v vs %v", first, second)
	}
}

func TestEmptyQueryIsIdentity(t *testing.T) {
	ix := testIndex(t)
	before := ix.Visible()
	after := ix.Apply("")
	if !equal(before, after) {
		t.Errorf("empty query changed visibility: %v -> %v", before, after)
	}
}

func TestAdd_UsesCurrentQuery(t *testing.T) {
	ix := testIndex(t)
	ix.Apply("txt")
	i, visible := ix.Add(card.Build(models.FileDescriptor{Name: "song.mp3"}, true, 1, nil))
	if visible || ix.Visible()[i] {
		t.Error("card added while filtering should follow the active query")
	}
}

func TestReset(t *testing.T) {
	ix := testIndex(t)
	ix.Apply("zip")
	ix.Reset()
	if ix.Len() != 0 || len(ix.Visible()) != 0 {
		t.Error("reset should drop all cards")
	}
	ix.Add(card.Build(models.FileDescriptor{Name: "a"}, true, 1, nil))
	if !ix.Visible()[0] {
		t.Error("reset should clear the query")
	}
}
