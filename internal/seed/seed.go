// Package seed holds the literal catalog the service ships with.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/templui/incomeatlas/internal/model"
)

//go:embed strategies.json
var strategiesJSON []byte

// Strategies decodes the embedded catalog. Every call returns fresh values,
// so callers may modify them.
func Strategies() ([]*model.Strategy, error) {
	var strategies []*model.Strategy
	err := json.Unmarshal(strategiesJSON, &strategies)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed strategies: %w", err)
	}

	for _, s := range strategies {
		err := s.Validate()
		if err != nil {
			return nil, fmt.Errorf("seed strategy %s: %w", s.ID, err)
		}
	}

	return strategies, nil
}
