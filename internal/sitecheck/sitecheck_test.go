package sitecheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/logger"
	"github.com/jonesrussell/goveille/internal/themes"
)

const homePage = `<!DOCTYPE html>
<html><head><title>Menuiserie Dupont - Artisan à Provins</title></head>
<body>
<p>La Menuiserie Dupont réalise vos agencements sur mesure.</p>
<p>Nous recrutons : un poste à pourvoir en atelier, CDI.</p>
<a href="/actualites">Actualités</a>
<a href="https://ailleurs.example.org/page">Lien externe</a>
</body></html>`

const newsPage = `<!DOCTYPE html>
<html><head><title>Actualités - Menuiserie Dupont</title></head>
<body>
<p>Inauguration de notre nouvel atelier le mois prochain, portes ouvertes le samedi.</p>
</body></html>`

func newTestChecker() *Checker {
	c := New(themes.NewRegistry(), logger.NewNoOp())
	c.timeout = c.timeout / 2
	return c
}

func TestCheckFindsThemeSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(homePage))
		case "/actualites":
			_, _ = w.Write([]byte(newsPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	entity := &domain.Entity{
		ID:      "e1",
		Name:    "Menuiserie Dupont",
		Commune: "Provins",
		Website: srv.URL,
	}

	findings, err := newTestChecker().Check(context.Background(), entity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byTheme := make(map[string][]Finding)
	for _, f := range findings {
		byTheme[f.Theme] = append(byTheme[f.Theme], f)
	}

	if len(byTheme[themes.ThemeRecruitment]) == 0 {
		t.Fatal("expected a recruitment finding from the homepage")
	}
	if len(byTheme[themes.ThemeEvents]) == 0 {
		t.Fatal("expected an events finding from the news page")
	}

	rec := byTheme[themes.ThemeRecruitment][0]
	if rec.Candidate.Source != domain.SourceOfficialSite {
		t.Errorf("expected source %s, got %s", domain.SourceOfficialSite, rec.Candidate.Source)
	}
	if rec.Candidate.Backend != "site_officiel" {
		t.Errorf("expected backend site_officiel, got %s", rec.Candidate.Backend)
	}
	if !strings.Contains(rec.Candidate.Snippet, "cdi") {
		t.Errorf("snippet should carry the matched keyword in context, got %q", rec.Candidate.Snippet)
	}
	if rec.Candidate.Title == "" {
		t.Error("expected the page title on the candidate")
	}
}

func TestCheckWithoutWebsite(t *testing.T) {
	t.Parallel()

	entity := &domain.Entity{ID: "e1", Name: "Menuiserie Dupont"}
	_, err := newTestChecker().Check(context.Background(), entity)
	if err != ErrNoWebsite {
		t.Fatalf("expected ErrNoWebsite, got %v", err)
	}
}

func TestCheckRejectsBadWebsite(t *testing.T) {
	t.Parallel()

	entity := &domain.Entity{ID: "e1", Name: "Menuiserie Dupont", Website: "ftp://exemple.fr"}
	if _, err := newTestChecker().Check(context.Background(), entity); err == nil {
		t.Fatal("expected an error for an unsupported scheme")
	}
}

func TestNormalizeSiteURLAddsScheme(t *testing.T) {
	t.Parallel()

	u, err := normalizeSiteURL("menuiserie-dupont.fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Scheme != "https" || u.Hostname() != "menuiserie-dupont.fr" {
		t.Fatalf("unexpected url %s", u)
	}
}

func TestLooksLikeNewsLink(t *testing.T) {
	t.Parallel()

	cases := []struct {
		href  string
		label string
		want  bool
	}{
		{"/actualites", "Actualités", true},
		{"/blog/2026", "Le blog", true},
		{"/recrutement", "", true},
		{"/mentions-legales", "Mentions légales", false},
		{"/contact", "Contact", false},
	}
	for _, tc := range cases {
		if got := looksLikeNewsLink(tc.href, tc.label); got != tc.want {
			t.Errorf("looksLikeNewsLink(%q, %q) = %v, want %v", tc.href, tc.label, got, tc.want)
		}
	}
}
