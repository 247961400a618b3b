package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chemlab/internal/pubchem"
)

// ImportRequest names a compound by PubChem name or CID. CID wins when both
// are set.
type ImportRequest struct {
	Name     string `json:"name,omitempty"`
	CID      int64  `json:"cid,omitempty"`
	Category string `json:"category"`
}

// ErrBadImport is returned when a request names neither a compound nor a
// valid category.
var ErrBadImport = errors.New("invalid import request")

// Importer adds PubChem compounds to the catalog.
type Importer struct {
	catalog *Catalog
	lookup  pubchem.CompoundLookup
	logger  *zap.Logger
}

// NewImporter creates an importer.
func NewImporter(catalog *Catalog, lookup pubchem.CompoundLookup, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{catalog: catalog, lookup: lookup, logger: logger}
}

// Import fetches the compound and stores it. existed is true when the CID
// was already in the catalog; the stored row is returned in that case.
// Unknown compounds yield pubchem.ErrNotFound.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (chem Chemical, existed bool, err error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if req.CID <= 0 && req.Name == "" {
		return Chemical{}, false, fmt.Errorf("%w: provide either a chemical name or PubChem ID", ErrBadImport)
	}
	if !ValidCategory(req.Category) {
		return Chemical{}, false, fmt.Errorf("%w: category must be one of %s", ErrBadImport, strings.Join(Categories, ", "))
	}

	var comp *pubchem.Compound
	if req.CID > 0 {
		comp, err = im.lookup.ByID(ctx, req.CID)
	} else {
		comp, err = im.lookup.ByName(ctx, req.Name)
	}
	if err != nil {
		return Chemical{}, false, fmt.Errorf("pubchem lookup: %w", err)
	}

	exists, err := im.catalog.Exists(ctx, comp.CID)
	if err != nil {
		return Chemical{}, false, err
	}
	if exists {
		existing, err := im.catalog.Get(ctx, comp.CID)
		if err != nil {
			return Chemical{}, false, err
		}
		return existing, true, nil
	}

	chem, err = im.catalog.Add(ctx, Chemical{
		CID:             comp.CID,
		Name:            comp.Name,
		Formula:         comp.Formula,
		MolecularWeight: comp.MolecularWeight,
		Category:        req.Category,
		IUPACName:       comp.IUPACName,
		SMILES:          comp.SMILES,
	})
	if errors.Is(err, ErrExists) {
		// Lost a race with a concurrent import of the same CID.
		existing, getErr := im.catalog.Get(ctx, comp.CID)
		if getErr != nil {
			return Chemical{}, false, getErr
		}
		return existing, true, nil
	}
	if err != nil {
		return Chemical{}, false, err
	}

	im.logger.Info("Imported chemical",
		zap.Int64("cid", chem.CID),
		zap.String("name", chem.Name),
		zap.String("category", chem.Category))
	return chem, false, nil
}
