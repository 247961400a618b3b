package pubchem

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultSearchResults is used when a search asks for no limit.
	DefaultSearchResults = 20
	// MaxSearchResults caps the CIDs one search returns.
	MaxSearchResults = 100
	// searchDetails is how many hits get their properties fetched.
	searchDetails = 10
)

// SearchResult is one keyword search: compound details for the first hits and
// the number of CIDs PubChem matched (after the limit cap).
type SearchResult struct {
	Results    []Compound `json:"results"`
	TotalFound int        `json:"total_found"`
}

type cidResponse struct {
	IdentifierList struct {
		CID []int64 `json:"CID"`
	} `json:"IdentifierList"`
}

// SearchCIDs returns up to limit CIDs matching keyword. A keyword PubChem does
// not know yields an empty slice, not an error.
func (c *Client) SearchCIDs(ctx context.Context, keyword string, limit int) ([]int64, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("empty search keyword: %w", ErrNotFound)
	}
	limit = clampResults(limit)

	endpoint := fmt.Sprintf("%s/compound/name/%s/cids/JSON", c.baseURL, url.PathEscape(keyword))
	var body cidResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []int64{}, nil
		}
		return nil, err
	}

	cids := body.IdentifierList.CID
	if len(cids) > limit {
		cids = cids[:limit]
	}
	return cids, nil
}

// Search finds compounds by keyword and fetches details for the first ten
// hits. Hits whose details cannot be fetched are skipped.
func (c *Client) Search(ctx context.Context, keyword string, limit int) (SearchResult, error) {
	cids, err := c.SearchCIDs(ctx, keyword, limit)
	if err != nil {
		return SearchResult{}, err
	}

	res := SearchResult{Results: []Compound{}, TotalFound: len(cids)}
	for i, cid := range cids {
		if i == searchDetails {
			break
		}
		comp, err := c.ByID(ctx, cid)
		if err != nil {
			if ctx.Err() != nil {
				return SearchResult{}, ctx.Err()
			}
			c.logger.Warn("Skipping search hit", zap.Int64("cid", cid), zap.Error(err))
			continue
		}
		res.Results = append(res.Results, *comp)
	}
	return res, nil
}

func clampResults(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchResults
	case limit > MaxSearchResults:
		return MaxSearchResults
	}
	return limit
}
