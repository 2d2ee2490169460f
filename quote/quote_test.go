package quote

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/rs/zerolog"
)

// newServer serves body as JSON and counts the requests.
func newServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetcher_Fetch(t *testing.T) {
	srv, _ := newServer(t, `{"symbol":"VT","quote":{"last":101.25,"bid":"99,5"},"series":[[1,10.5],[2,11.75]]}`)
	f := NewFetcher()

	tests := []struct {
		path string
		want float64
	}{
		{"$.quote.last", 101.25},
		{"$.quote.bid", 99.5},
		{"$.series[-1:][1]", 11.75},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := f.Fetch(t.Context(), finance.QuoteSource{URL: srv.URL, Path: tt.path})
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if !got.Equal(finance.M(tt.want)) {
				t.Errorf("Fetch() = %s, want %v", got, tt.want)
			}
		})
	}
}

func TestFetcher_FetchErrors(t *testing.T) {
	srv, _ := newServer(t, `{"quote":{"last":"./.","zero":0}}`)
	f := NewFetcher()
	tests := []struct {
		name string
		src  finance.QuoteSource
	}{
		{"not found", finance.QuoteSource{URL: srv.URL + "/missing", Path: "$.quote.last"}},
		{"unknown path", finance.QuoteSource{URL: srv.URL, Path: "$.nothing"}},
		{"not a number", finance.QuoteSource{URL: srv.URL, Path: "$.quote.last"}},
		{"zero", finance.QuoteSource{URL: srv.URL, Path: "$.quote.zero"}},
	}
	for _, tt := range tests {
		if _, err := f.Fetch(t.Context(), tt.src); err == nil {
			t.Errorf("%s: Fetch() succeeded", tt.name)
		}
	}
	if _, err := f.Fetch(t.Context(), finance.QuoteSource{}); !errors.Is(err, ErrNoSource) {
		t.Errorf("Fetch() without url: error = %v, want ErrNoSource", err)
	}
}

func TestDiskCache(t *testing.T) {
	srv, hits := newServer(t, `{"price":42}`)
	day := date.New(2026, 3, 15)
	client := &http.Client{Transport: &diskCache{
		base:  http.DefaultTransport,
		dir:   t.TempDir(),
		today: func() date.Date { return day },
		log:   zerolog.Nop(),
	}}
	f := NewFetcher(WithClient(client))
	src := finance.QuoteSource{URL: srv.URL, Path: "$.price"}

	for range 3 {
		got, err := f.Fetch(t.Context(), src)
		if err != nil || !got.Equal(finance.M(42)) {
			t.Fatalf("Fetch() = %s, %v", got, err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	// a new day expires the entry.
	day = day.Add(1)
	if _, err := f.Fetch(t.Context(), src); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}

	// errors are not cached.
	missing := finance.QuoteSource{URL: srv.URL + "/missing"}
	f.Fetch(t.Context(), missing)
	f.Fetch(t.Context(), missing)
	if n := hits.Load(); n != 4 {
		t.Errorf("server hit %d times, want 4", n)
	}
}

func TestUpdateAll(t *testing.T) {
	srv, _ := newServer(t, `{"price":"12.34"}`)
	l := finance.NewLedger(finance.NewMemoryStore())
	ctx := t.Context()

	quoted, err := l.AddInvestment(ctx, finance.Investment{Ticker: "VT", Name: "World", Quote: finance.QuoteSource{URL: srv.URL, Path: "$.price"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddInvestment(ctx, finance.Investment{Ticker: "HOME", Name: "Manual"}); err != nil {
		t.Fatal(err)
	}
	broken, err := l.AddInvestment(ctx, finance.Investment{Ticker: "BAD", Name: "Broken", Quote: finance.QuoteSource{URL: srv.URL + "/missing"}})
	if err != nil {
		t.Fatal(err)
	}

	updates, err := UpdateAll(ctx, l, NewFetcher())
	if err == nil {
		t.Errorf("UpdateAll() error = nil, want the broken source reported")
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2 (manual investments are skipped)", len(updates))
	}
	got, _ := l.Store().Investment(ctx, quoted.ID)
	if !got.CurrentPrice.Equal(finance.M(12.34)) {
		t.Errorf("current price = %s, want 12.34", got.CurrentPrice)
	}
	if got, _ := l.Store().Investment(ctx, broken.ID); !got.CurrentPrice.IsZero() {
		t.Errorf("broken investment price = %s, want unchanged", got.CurrentPrice)
	}
}
