package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/depot/internal/card"
	"github.com/starford/depot/internal/icons"
	"github.com/starford/depot/internal/probe"
	"github.com/starford/depot/internal/source"
	"github.com/starford/depot/internal/testutil"
)

// recordingSink records every sink call in order.
type recordingSink struct {
	calls []string
	cards []card.Card
	err   error
}

func (s *recordingSink) Reset() { s.calls = append(s.calls, "reset") }

func (s *recordingSink) Append(c card.Card) error {
	s.calls = append(s.calls, "append:"+c.Name)
	s.cards = append(s.cards, c)
	return s.err
}

func (s *recordingSink) Fail(err error) { s.calls = append(s.calls, "fail") }

func testLoader(t *testing.T, site *testutil.Site) *Loader {
	t.Helper()
	src, err := source.New(source.Options{
		BaseURL:      site.BaseURL(),
		Manifest:     "files.json",
		Rules:        "emoji.json",
		FetchTimeout: time.Second,
	}, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	return NewLoader(src, probe.New(nil, src, time.Second, testutil.Logger()), testutil.Logger())
}

const manifest = `[
	{"name":"Archive.zip","url":"files/archive.zip","tags":["backup"]},
	{"name":"missing.iso","url":"files/missing.iso"},
	{"name":"notes.txt","url":"files/notes.txt","tags":["text"]}
]`

func TestLoad_RendersInManifestOrder(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/emoji.json":        {Body: `[{"keyword":"zip","emoji":"🤐"}]`},
		"/files.json":        {Body: manifest},
		"/files/archive.zip": {Length: "1024"},
		"/files/notes.txt":   {Length: "1536"},
	})
	sink := &recordingSink{}
	if err := testLoader(t, site).Load(context.Background(), sink); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"reset", "append:Archive.zip", "append:missing.iso", "append:notes.txt"}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, sink.calls[i], want[i])
		}
	}

	if c := sink.cards[0]; c.Icon != "🤐" || c.Size != "1 KB" || !c.Available {
		t.Errorf("card 0 = %+v", c)
	}
	if c := sink.cards[1]; c.Available || c.Label != "missing.iso"+card.NotFoundSuffix || c.Action != card.ActionUnavailable {
		t.Errorf("card 1 = %+v", c)
	}
	if c := sink.cards[2]; !c.Available || c.Size != "1.5 KB" || c.Icon != icons.Fallback {
		t.Errorf("card 2 = %+v", c)
	}
}

func TestLoad_ManifestFailureIsTerminal(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/emoji.json": {Body: `[]`},
	})
	sink := &recordingSink{}
	err := testLoader(t, site).Load(context.Background(), sink)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sink.calls) != 2 || sink.calls[0] != "reset" || sink.calls[1] != "fail" {
		t.Errorf("calls = %v, want [reset fail]", sink.calls)
	}
	if len(sink.cards) != 0 {
		t.Errorf("cards = %d, want 0", len(sink.cards))
	}
}

func TestLoad_RuleFailureDegrades(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/files.json":        {Body: `[{"name":"a.zip","url":"files/archive.zip"}]`},
		"/files/archive.zip": {Length: "10"},
	})
	sink := &recordingSink{}
	if err := testLoader(t, site).Load(context.Background(), sink); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sink.cards) != 1 || sink.cards[0].Icon != icons.Fallback {
		t.Errorf("cards = %+v, want one card with fallback icon", sink.cards)
	}
}

func TestLoad_StopsOnSinkError(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/files.json": {Body: manifest},
	})
	sink := &recordingSink{err: errors.New("client gone")}
	if err := testLoader(t, site).Load(context.Background(), sink); err == nil {
		t.Fatal("expected sink error")
	}
	if len(sink.cards) != 1 {
		t.Errorf("cards = %d, want 1", len(sink.cards))
	}
}

func TestLoad_ProbesSequentially(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/files.json": {Body: manifest},
	})
	sink := &recordingSink{}
	l := testLoader(t, site)
	l.prober = &orderProber{t: t}
	if err := l.Load(context.Background(), sink); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestCollector(t *testing.T) {
	site := testutil.NewSite(t, map[string]testutil.Resource{
		"/files.json": {Status: 500},
	})
	var c Collector
	_ = testLoader(t, site).Load(context.Background(), &c)
	if c.Err == nil || len(c.Cards) != 0 {
		t.Errorf("collector = %+v, want error and no cards", c)
	}
}
