package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemlab/internal/pubchem"
)

func TestCoreShelves(t *testing.T) {
	shelves, err := CoreShelves()
	require.NoError(t, err)
	require.Len(t, shelves, len(Categories))

	assert.Equal(t, "liquids", shelves[0].Category)
	assert.Equal(t, []string{"Water"}, shelves[0].Names)
	for _, s := range shelves[1:] {
		assert.NotEmpty(t, s.Names, s.Category)
	}
}

func TestLoadShelves_RejectsUnknownCategory(t *testing.T) {
	_, err := LoadShelves(strings.NewReader("- category: potions\n  names: [elixir]\n"))
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = LoadShelves(strings.NewReader("category: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse seed list")
}

func TestImporter_Seed(t *testing.T) {
	c := openTestCatalog(t)
	lookup := newFakeLookup()
	lookup.compounds["sodium chloride"] = &pubchem.Compound{CID: 5234, Name: "sodium chloride", Formula: "ClNa"}
	lookup.failing = map[string]error{"sulfuric acid": errors.New("pubchem down")}
	im := NewImporter(c, lookup, nil)
	ctx := context.Background()

	shelves := []Shelf{
		{Category: "liquids", Names: []string{"water"}},
		{Category: "acids", Names: []string{"sulfuric acid", "unobtainium"}},
		{Category: "salts", Names: []string{"sodium chloride", "water"}},
	}

	report, err := im.Seed(ctx, shelves)
	require.NoError(t, err)
	want := SeedReport{
		Added:   2,
		Skipped: 1,
		Missing: []string{"unobtainium"},
		Failed:  []string{"sulfuric acid"},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Seed() mismatch (-want +got):\n%s", diff)
	}

	got, err := c.Shelves(ctx)
	require.NoError(t, err)
	require.Len(t, got["liquids"], 1)
	require.Len(t, got["salts"], 1)
	assert.Equal(t, "NaCl", got["salts"][0].Display)

	again, err := im.Seed(ctx, shelves)
	require.NoError(t, err)
	assert.Zero(t, again.Added)
	assert.Equal(t, 3, again.Skipped)
}

func TestImporter_SeedCanceled(t *testing.T) {
	im := NewImporter(openTestCatalog(t), newFakeLookup(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := im.Seed(ctx, []Shelf{{Category: "liquids", Names: []string{"water"}}})
	assert.ErrorIs(t, err, context.Canceled)
}
