package knowledge

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedDocuments returns the embedded fallback corpus.
func SeedDocuments() ([]Document, error) {
	var docs []Document
	if err := yaml.Unmarshal(seedYAML, &docs); err != nil {
		return nil, fmt.Errorf("parse seed corpus: %w", err)
	}
	return docs, nil
}
