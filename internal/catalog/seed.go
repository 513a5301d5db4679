package catalog

import (
	"fmt"
	"os"

	"realty-catalog/internal/models"

	"gopkg.in/yaml.v3"
)

// LoadSeed inserts the listings from a YAML seed file into the catalog and
// returns how many were created. A missing file is not an error; an empty
// catalog is a valid catalog.
func (s *Service) LoadSeed(path string) (int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed struct {
		Properties []models.Property `yaml:"properties"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, p := range seed.Properties {
		if _, err := s.store.Create(p); err != nil {
			return created, fmt.Errorf("seed listing %q: %w", p.Title, err)
		}
		created++
	}
	return created, nil
}
