package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEntitiesJSON(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "entities.json", `[
		{"id": "e1", "name": "CARREFOUR", "commune": "Boulogne-Billancourt"},
		{"id": "e2", "name": "Menuiserie Dupont", "commune": "Provins", "website": "https://menuiserie-dupont.fr"}
	]`)

	entities, err := LoadEntities(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].Name != "CARREFOUR" {
		t.Errorf("unexpected first entity: %+v", entities[0])
	}
	if entities[1].Website != "https://menuiserie-dupont.fr" {
		t.Errorf("website not loaded: %+v", entities[1])
	}
}

func TestLoadEntitiesCSVFrenchHeaders(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "entities.csv",
		"nom,commune,secteur,site_web\n"+
			"CARREFOUR,Boulogne-Billancourt,commerce,\n"+
			"Garage Martin,Provins,garage automobile,https://garage-martin.fr\n")

	entities, err := LoadEntities(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].ID == "" {
		t.Error("expected a generated id for rows without one")
	}
	if entities[1].Sector != "garage automobile" {
		t.Errorf("sector not mapped: %+v", entities[1])
	}
	if entities[1].Website != "https://garage-martin.fr" {
		t.Errorf("website not mapped: %+v", entities[1])
	}
}

func TestLoadEntitiesEmptyFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "entities.json", `[]`)
	if _, err := LoadEntities(path); !errors.Is(err, ErrNoEntities) {
		t.Fatalf("expected ErrNoEntities, got %v", err)
	}
}

func TestLoadEntitiesUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "entities.xlsx", "not supported")
	if _, err := LoadEntities(path); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}
