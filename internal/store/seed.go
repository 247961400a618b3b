package store

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"chemlab/internal/logging"
	"chemlab/internal/pubchem"
)

//go:embed defaults/core_chemicals.yaml
var coreChemicals []byte

// Shelf is a category and the compound names seeded onto it.
type Shelf struct {
	Category string   `yaml:"category"`
	Names    []string `yaml:"names"`
}

// LoadShelves parses a seed list and checks every category.
func LoadShelves(r io.Reader) ([]Shelf, error) {
	var shelves []Shelf
	if err := yaml.NewDecoder(r).Decode(&shelves); err != nil {
		return nil, fmt.Errorf("failed to parse seed list: %w", err)
	}
	for _, s := range shelves {
		if !ValidCategory(s.Category) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, s.Category)
		}
	}
	return shelves, nil
}

// CoreShelves returns the built-in seed list.
func CoreShelves() ([]Shelf, error) {
	return LoadShelves(bytes.NewReader(coreChemicals))
}

// SeedReport counts what a seed run did.
type SeedReport struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Missing []string `json:"missing"`
	Failed  []string `json:"failed"`
}

// Seed imports every named compound onto its shelf. Compounds already in the
// catalog are skipped; lookup failures are reported and do not stop the run.
// Only context cancellation aborts early.
func (im *Importer) Seed(ctx context.Context, shelves []Shelf) (SeedReport, error) {
	timer := logging.StartTimer(im.logger, "seed")
	defer timer.Stop()

	report := SeedReport{Missing: []string{}, Failed: []string{}}
	for _, shelf := range shelves {
		for _, name := range shelf.Names {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			_, existed, err := im.Import(ctx, ImportRequest{Name: name, Category: shelf.Category})
			switch {
			case err == nil && existed:
				report.Skipped++
			case err == nil:
				report.Added++
			case errors.Is(err, pubchem.ErrNotFound):
				report.Missing = append(report.Missing, name)
			case ctx.Err() != nil:
				return report, ctx.Err()
			default:
				im.logger.Warn("Seeding failed", zap.String("name", name), zap.Error(err))
				report.Failed = append(report.Failed, name)
			}
		}
	}

	im.logger.Info("Catalog seeded",
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("missing", len(report.Missing)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}
