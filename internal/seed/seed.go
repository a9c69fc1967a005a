// Package seed loads the challenge and reward catalog from a YAML file
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"recyclehub/internal/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Catalog is the seed file layout
type Catalog struct {
	Challenges []services.ChallengeInput `yaml:"challenges"`
	Rewards    []services.RewardInput    `yaml:"rewards"`
}

// Result counts what was written
type Result struct {
	Challenges int `json:"challenges"`
	Rewards    int `json:"rewards"`
}

// LoadFile reads a catalog from path
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a catalog. Unknown keys and missing ids are errors, since
// the id is what makes a re-run update instead of duplicate.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool)
	for i, ch := range c.Challenges {
		if ch.ID == "" {
			return nil, fmt.Errorf("challenge #%d (%q) has no id", i+1, ch.Title)
		}
		if seen["c:"+ch.ID] {
			return nil, fmt.Errorf("duplicate challenge id %q", ch.ID)
		}
		seen["c:"+ch.ID] = true
	}
	for i, rw := range c.Rewards {
		if rw.ID == "" {
			return nil, fmt.Errorf("reward #%d (%q) has no id", i+1, rw.Name)
		}
		if seen["r:"+rw.ID] {
			return nil, fmt.Errorf("duplicate reward id %q", rw.ID)
		}
		seen["r:"+rw.ID] = true
	}
	return &c, nil
}

// Apply upserts every entry. It stops at the first failure; entries written
// before it stay written.
func Apply(ctx context.Context, catalog services.CatalogService, c *Catalog, logger *zap.Logger) (*Result, error) {
	res := &Result{}

	for i := range c.Challenges {
		ch, err := catalog.UpsertChallenge(ctx, &c.Challenges[i])
		if err != nil {
			return res, fmt.Errorf("challenge %q: %w", c.Challenges[i].ID, err)
		}
		logger.Debug("Seeded challenge", zap.String("id", ch.ID), zap.Int("target", ch.TargetCount))
		res.Challenges++
	}

	for i := range c.Rewards {
		rw, err := catalog.UpsertReward(ctx, &c.Rewards[i])
		if err != nil {
			return res, fmt.Errorf("reward %q: %w", c.Rewards[i].ID, err)
		}
		logger.Debug("Seeded reward", zap.String("id", rw.ID), zap.Int64("stock", rw.Stock))
		res.Rewards++
	}

	logger.Info("🌱 Catalog seeded",
		zap.Int("challenges", res.Challenges),
		zap.Int("rewards", res.Rewards),
	)
	return res, nil
}
