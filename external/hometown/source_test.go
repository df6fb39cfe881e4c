package hometown

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
)

func TestSplitCityState(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCity string
		wantSt   string
		wantOK   bool
	}{
		{name: "full state name", raw: "Akron, Ohio", wantCity: "Akron", wantSt: "Ohio", wantOK: true},
		{name: "abbreviation", raw: "Akron, OH", wantCity: "Akron", wantSt: "Ohio", wantOK: true},
		{name: "extra whitespace", raw: "  Flint ,  Michigan ", wantCity: "Flint", wantSt: "Michigan", wantOK: true},
		{name: "comma in city", raw: "Winston-Salem, North Carolina", wantCity: "Winston-Salem", wantSt: "North Carolina", wantOK: true},
		{name: "foreign place", raw: "Athens, Greece", wantOK: false},
		{name: "no comma", raw: "Ohio", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
		{name: "missing city", raw: ", Ohio", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, state, ok := splitCityState(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("unexpected ok: got=%v want=%v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if city != tt.wantCity || state != tt.wantSt {
				t.Fatalf("unexpected split: got=%q/%q want=%q/%q", city, state, tt.wantCity, tt.wantSt)
			}
		})
	}
}

func TestCanonicalState(t *testing.T) {
	if got := canonicalState("oh"); got != "Ohio" {
		t.Fatalf("unexpected state for abbreviation: got=%q", got)
	}
	if got := canonicalState(" Ohio "); got != "Ohio" {
		t.Fatalf("unexpected state for name: got=%q", got)
	}
	if got := canonicalState("Ontario"); got != "" {
		t.Fatalf("expected non-US region to miss, got=%q", got)
	}
}

const statsPlayerPage = `<html><body>
<div id="meta">
  <div class="media-item"><img src="https://cdn.example.com/jones.jpg"></div>
  <p><strong>Born:</strong> June 1, 1998 <span itemprop="birthPlace">in Akron, Ohio</span></p>
  <p><strong>High School:</strong> St. Vincent-St. Mary in Akron, Ohio</p>
  <p><strong>College:</strong> Ohio State, Dayton</p>
</div>
</body></html>`

const statsSearchPage = `<html><body>
<div class="search-item">
  <div class="search-item-name"><a href="/players/j/jonesch01.html">Chris Jones (1998-)</a></div>
  <div class="search-item-url">/players/j/jonesch01.html</div>
</div>
</body></html>`

func TestBasketballReferenceLookup(t *testing.T) {
	t.Run("search redirects to player page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/search.fcgi" {
				t.Fatalf("unexpected path: got=%q", r.URL.Path)
			}
			if got := r.URL.Query().Get("search"); got != "Chris Jones" {
				t.Fatalf("unexpected search query: got=%q", got)
			}
			w.Write([]byte(statsPlayerPage))
		}))
		defer srv.Close()

		src := NewBasketballReferenceSource(SourceConfig{BaseURL: srv.URL})
		fields, sourceURL, err := src.Lookup(context.Background(), identity.Hint{Name: "Chris Jones"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertStr(t, "hometown city", fields.HometownCity, "Akron")
		assertStr(t, "hometown state", fields.HometownState, "Ohio")
		assertStr(t, "high school", fields.HighSchool, "St. Vincent-St. Mary")
		assertStr(t, "high school city", fields.HighSchoolCity, "Akron")
		assertStr(t, "college", fields.College, "Ohio State")
		assertStr(t, "photo url", fields.PhotoURL, "https://cdn.example.com/jones.jpg")
		if sourceURL == "" {
			t.Fatalf("expected a source url")
		}
	})

	t.Run("search list is followed to first result", func(t *testing.T) {
		var playerPageHits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search/search.fcgi":
				w.Write([]byte(statsSearchPage))
			case "/players/j/jonesch01.html":
				playerPageHits++
				w.Write([]byte(statsPlayerPage))
			default:
				t.Fatalf("unexpected path: got=%q", r.URL.Path)
			}
		}))
		defer srv.Close()

		src := NewBasketballReferenceSource(SourceConfig{BaseURL: srv.URL})
		fields, sourceURL, err := src.Lookup(context.Background(), identity.Hint{Name: "Chris Jones"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if playerPageHits != 1 {
			t.Fatalf("unexpected player page hits: got=%d want=1", playerPageHits)
		}
		assertStr(t, "hometown state", fields.HometownState, "Ohio")
		if want := srv.URL + "/players/j/jonesch01.html"; sourceURL != want {
			t.Fatalf("unexpected source url: got=%q want=%q", sourceURL, want)
		}
	})

	t.Run("404 surfaces as not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		src := NewBasketballReferenceSource(SourceConfig{BaseURL: srv.URL})
		_, _, err := src.Lookup(context.Background(), identity.Hint{Name: "Nobody Nowhere"})
		if !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("expected ErrPlayerNotFound, got %v", err)
		}
	})

	t.Run("page without biographical data is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`<html><body><div id="meta"><p><strong>Position:</strong> Guard</p></div></body></html>`))
		}))
		defer srv.Close()

		src := NewBasketballReferenceSource(SourceConfig{BaseURL: srv.URL})
		_, _, err := src.Lookup(context.Background(), identity.Hint{Name: "Chris Jones"})
		if !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("expected ErrPlayerNotFound, got %v", err)
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		src := NewBasketballReferenceSource(SourceConfig{BaseURL: "http://localhost:0"})
		if _, _, err := src.Lookup(context.Background(), identity.Hint{}); err == nil {
			t.Fatalf("expected an error for blank name")
		}
	})
}

const wikiArticle = `<html><body>
<table class="infobox">
  <tr><td colspan="2"><img src="//upload.example.org/jones.jpg"></td></tr>
  <tr><th>Born</th><td>June 1, 1998 (age 28)<div class="birthplace">Akron, Ohio, U.S.</div></td></tr>
  <tr><th>High school</th><td>Buchtel (Akron, Ohio)[1]</td></tr>
  <tr><th>College</th><td>Dayton (2016-2019)</td></tr>
</table>
</body></html>`

func TestMediaWikiLookup(t *testing.T) {
	t.Run("infobox fields parsed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/wiki/Chris_Jones" {
				t.Fatalf("unexpected path: got=%q", r.URL.Path)
			}
			w.Write([]byte(wikiArticle))
		}))
		defer srv.Close()

		src := NewWikipediaSource(SourceConfig{BaseURL: srv.URL})
		if src.Name() != "wikipedia" {
			t.Fatalf("unexpected source name: got=%q", src.Name())
		}
		fields, sourceURL, err := src.Lookup(context.Background(), identity.Hint{Name: "Chris Jones"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertStr(t, "hometown city", fields.HometownCity, "Akron")
		assertStr(t, "hometown state", fields.HometownState, "Ohio")
		assertStr(t, "high school", fields.HighSchool, "Buchtel")
		assertStr(t, "high school city", fields.HighSchoolCity, "Akron")
		assertStr(t, "high school state", fields.HighSchoolState, "Ohio")
		assertStr(t, "college", fields.College, "Dayton")
		assertStr(t, "photo url", fields.PhotoURL, "https://upload.example.org/jones.jpg")
		if want := srv.URL + "/wiki/Chris_Jones"; sourceURL != want {
			t.Fatalf("unexpected source url: got=%q want=%q", sourceURL, want)
		}
	})

	t.Run("falls back to disambiguated title", func(t *testing.T) {
		var paths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/wiki/Chris_Jones_(basketball)" {
				w.Write([]byte(wikiArticle))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		src := NewWikipediaSource(SourceConfig{BaseURL: srv.URL})
		fields, _, err := src.Lookup(context.Background(), identity.Hint{Name: "Chris Jones"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(paths) != 2 {
			t.Fatalf("unexpected request count: got=%d want=2", len(paths))
		}
		assertStr(t, "hometown state", fields.HometownState, "Ohio")
	})

	t.Run("missing article is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		src := NewGrokepediaSource(SourceConfig{BaseURL: srv.URL})
		if src.Name() != "grokepedia" {
			t.Fatalf("unexpected source name: got=%q", src.Name())
		}
		_, _, err := src.Lookup(context.Background(), identity.Hint{Name: "Nobody Nowhere"})
		if !errors.Is(err, ErrPlayerNotFound) {
			t.Fatalf("expected ErrPlayerNotFound, got %v", err)
		}
	})

	t.Run("foreign birthplace leaves hometown unset", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`<html><body><table class="infobox">
				<tr><th>Born</th><td>May 2, 1999 (age 27)<div class="birthplace">Athens, Greece</div></td></tr>
				<tr><th>College</th><td>Dayton</td></tr>
			</table></body></html>`))
		}))
		defer srv.Close()

		src := NewWikipediaSource(SourceConfig{BaseURL: srv.URL})
		fields, _, err := src.Lookup(context.Background(), identity.Hint{Name: "Nikos Pappas"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fields.HometownCity != nil || fields.HometownState != nil {
			t.Fatalf("expected no hometown for a foreign birthplace, got %v/%v", fields.HometownCity, fields.HometownState)
		}
		assertStr(t, "college", fields.College, "Dayton")
	})
}

func assertStr(t *testing.T, label string, got *string, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("missing %s: want=%q", label, want)
	}
	if *got != want {
		t.Fatalf("unexpected %s: got=%q want=%q", label, *got, want)
	}
}

func TestRequestPacer(t *testing.T) {
	pacer := &requestPacer{interval: 30 * time.Millisecond}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("expected at least 60ms of pacing, got %s", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pacer.wait(ctx); err == nil {
		t.Fatal("expected canceled context to abort the wait")
	}
}

func TestSourceBreaker(t *testing.T) {
	t.Run("repeated failures short-circuit the source", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		src := NewBasketballReferenceSource(SourceConfig{BaseURL: srv.URL})
		hint := identity.Hint{Name: "Chris Jones"}
		for i := 0; i < 3; i++ {
			if _, _, err := src.Lookup(context.Background(), hint); err == nil {
				t.Fatalf("lookup %d should fail", i+1)
			}
		}

		_, _, err := src.Lookup(context.Background(), hint)
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			t.Fatalf("expected circuit rejection, got %v", err)
		}
		if hits != 3 {
			t.Fatalf("open breaker should not reach the site: hits=%d", hits)
		}
	})

	t.Run("misses do not trip the breaker", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		src := NewWikipediaSource(SourceConfig{BaseURL: srv.URL})
		hint := identity.Hint{Name: "Nobody Nowhere"}
		for i := 0; i < 5; i++ {
			if _, _, err := src.Lookup(context.Background(), hint); !errors.Is(err, ErrPlayerNotFound) {
				t.Fatalf("lookup %d: expected ErrPlayerNotFound, got %v", i+1, err)
			}
		}
	})
}
