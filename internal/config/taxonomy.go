package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lorrc/triage-desk/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// LoadTaxonomy reads a YAML taxonomy file. Keys missing from the file keep
// their built-in values; an empty path returns the built-in taxonomy.
//
//	axes: [Rugby, Hockey, Cricket]
//	categories: [Størrelse, Levering, Andet]
//	fallbackCategory: Andet
func LoadTaxonomy(path string) (domain.Taxonomy, error) {
	if path == "" {
		return domain.DefaultTaxonomy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("read taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes a YAML taxonomy document. Unknown keys are rejected.
func ParseTaxonomy(data []byte) (domain.Taxonomy, error) {
	tax := domain.DefaultTaxonomy()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tax); err != nil && !errors.Is(err, io.EOF) {
		return domain.Taxonomy{}, fmt.Errorf("parse taxonomy yaml: %w", err)
	}

	if err := tax.Validate(); err != nil {
		return domain.Taxonomy{}, fmt.Errorf("invalid taxonomy: %w", err)
	}
	return tax, nil
}
