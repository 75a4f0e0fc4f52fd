package backends

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonesrussell/goveille/internal/domain"
)

const duckduckgoFixture = `<!DOCTYPE html><html><body>
<div class="results">
  <div class="result">
    <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Factu.fr%2Fcarrefour-recrute&amp;rut=abc">CARREFOUR recrute 50 personnes en CDI</a></h2>
    <a class="result__snippet" href="#">Le groupe Carrefour annonce le recrutement de 50 personnes.</a>
  </div>
  <div class="result">
    <h2><a class="result__a" href="https://www.francebleu.fr/carrefour">Carrefour ouvre un nouveau magasin</a></h2>
    <a class="result__snippet" href="#">Inauguration prévue samedi.</a>
  </div>
</div>
</body></html>`

const bingFixture = `<!DOCTYPE html><html><body>
<ol id="b_results">
  <li class="b_algo">
    <h2><a href="https://actu.fr/martin-embauche">Menuiserie MARTIN embauche un apprenti</a></h2>
    <div class="b_caption"><p>L'entreprise de Provins forme un apprenti menuisier.</p></div>
  </li>
</ol>
</body></html>`

const googleFixture = `<!DOCTYPE html><html><body>
<div id="search">
  <div class="g">
    <a href="/url?q=https://www.leparisien.fr/martin-subvention&amp;sa=U"><h3>MARTIN obtient une subvention régionale</h3></a>
    <div class="VwiC3b">La région soutient le développement de l'entreprise.</div>
  </div>
</div>
</body></html>`

func fixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Errorf("missing q parameter in %s", r.URL)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDuckDuckGoParsesResults(t *testing.T) {
	t.Parallel()

	srv := fixtureServer(t, duckduckgoFixture)
	adapter := NewDuckDuckGo(srv.Client())
	adapter.baseURL = srv.URL

	candidates, err := adapter.Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Title != "CARREFOUR recrute 50 personnes en CDI" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://actu.fr/carrefour-recrute" {
		t.Errorf("redirect not unwrapped: %q", first.URL)
	}
	if first.Snippet == "" || first.Position != 1 {
		t.Errorf("snippet/position not extracted: %+v", first)
	}
}

func TestBingParsesResults(t *testing.T) {
	t.Parallel()

	srv := fixtureServer(t, bingFixture)
	adapter := NewBing(srv.Client())
	adapter.baseURL = srv.URL

	candidates, err := adapter.Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].URL != "https://actu.fr/martin-embauche" {
		t.Errorf("url = %q", candidates[0].URL)
	}
}

func TestGoogleParsesResults(t *testing.T) {
	t.Parallel()

	srv := fixtureServer(t, googleFixture)
	adapter := NewGoogle(srv.Client())
	adapter.baseURL = srv.URL

	candidates, err := adapter.Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].URL != "https://www.leparisien.fr/martin-subvention" {
		t.Errorf("redirect not unwrapped: %q", candidates[0].URL)
	}
	if candidates[0].Title != "MARTIN obtient une subvention régionale" {
		t.Errorf("title = %q", candidates[0].Title)
	}
}

func TestAdapterFailSoftOnEmptyMarkup(t *testing.T) {
	t.Parallel()

	srv := fixtureServer(t, `<html><body><p>rien ici</p></body></html>`)
	adapter := NewDuckDuckGo(srv.Client())
	adapter.baseURL = srv.URL

	candidates, err := adapter.Search(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected markup must not error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates from empty markup", len(candidates))
	}
}

func TestFetcherStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "429 is a block",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var blocked *BlockedError
				if !errors.As(err, &blocked) || blocked.StatusCode != http.StatusTooManyRequests {
					t.Errorf("got %v, want BlockedError 429", err)
				}
			},
		},
		{
			name:   "403 is a block",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var blocked *BlockedError
				if !errors.As(err, &blocked) {
					t.Errorf("got %v, want BlockedError", err)
				}
			},
		},
		{
			name:   "500 is a network failure",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var netErr *NetworkError
				if !errors.As(err, &netErr) {
					t.Errorf("got %v, want NetworkError", err)
				}
			},
		},
		{
			name:   "404 is a parse failure",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("got %v, want ParseError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := newFetcher(srv.Client())
			_, err := f.get(context.Background(), "test", srv.URL)
			tt.check(t, err)
		})
	}
}

func TestSyntheticIsDeterministicAndTagged(t *testing.T) {
	t.Parallel()

	s := NewSynthetic()
	q := domain.SearchQuery{Text: `"ATELIER BERNARD" subvention`, Theme: "subsidies"}

	first, err := s.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("synthetic search never fails: %v", err)
	}
	second, _ := s.Search(context.Background(), q)

	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("unexpected candidate counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Title != second[i].Title || first[i].URL != second[i].URL {
			t.Errorf("output not deterministic at %d", i)
		}
		if first[i].Title == "" {
			t.Error("empty synthetic title")
		}
	}
}
