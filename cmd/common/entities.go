package common

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonesrussell/goveille/internal/domain"
)

// ErrNoEntities is returned when the input file holds no usable records.
var ErrNoEntities = errors.New("no entities in input file")

// LoadEntities reads a batch of entities from a JSON array or a CSV file
// with a header row. CSV headers accept both English and French column
// names (name/nom, commune, sector/secteur, website/site).
func LoadEntities(path string) ([]domain.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entities file: %w", err)
	}
	defer f.Close()

	var entities []domain.Entity
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entities, err = loadJSON(f)
	case ".csv":
		entities, err = loadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported entities format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, ErrNoEntities
	}
	return entities, nil
}

func loadJSON(r io.Reader) ([]domain.Entity, error) {
	var entities []domain.Entity
	if err := json.NewDecoder(r).Decode(&entities); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return entities, nil
}

// csvColumns maps accepted header names onto entity fields.
var csvColumns = map[string]string{
	"id":       "id",
	"name":     "name",
	"nom":      "name",
	"commune":  "commune",
	"ville":    "commune",
	"sector":   "sector",
	"secteur":  "sector",
	"website":  "website",
	"site":     "website",
	"site_web": "website",
}

func loadCSV(r io.Reader) ([]domain.Entity, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	fields := make(map[int]string, len(header))
	for i, col := range header {
		if field, ok := csvColumns[strings.ToLower(strings.TrimSpace(col))]; ok {
			fields[i] = field
		}
	}

	var entities []domain.Entity
	for line := 2; ; line++ {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, readErr)
		}

		var e domain.Entity
		for i, value := range record {
			switch fields[i] {
			case "id":
				e.ID = strings.TrimSpace(value)
			case "name":
				e.Name = strings.TrimSpace(value)
			case "commune":
				e.Commune = strings.TrimSpace(value)
			case "sector":
				e.Sector = strings.TrimSpace(value)
			case "website":
				e.Website = strings.TrimSpace(value)
			}
		}
		if e.ID == "" {
			e.ID = strconv.Itoa(line - 1)
		}
		entities = append(entities, e)
	}
	return entities, nil
}
