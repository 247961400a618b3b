package pubchem

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	var cidPath string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.EscapedPath()
		switch {
		case strings.HasSuffix(p, "/cids/JSON"):
			cidPath = p
			_, _ = w.Write([]byte(`{"IdentifierList":{"CID":[1,2,3,4,5,6,7,8,9,10,11,12]}}`))
		case strings.HasPrefix(p, "/compound/cid/3/"):
			http.NotFound(w, r)
		case strings.HasSuffix(p, "/synonyms/JSON"):
			_, _ = w.Write([]byte(`{"InformationList":{"Information":[{"Synonym":["acid"]}]}}`))
		default:
			var cid int
			_, _ = fmt.Sscanf(p, "/compound/cid/%d/", &cid)
			fmt.Fprintf(w, `{"PropertyTable":{"Properties":[{"CID":%d,"MolecularFormula":"H2O"}]}}`, cid)
		}
	})

	res, err := c.Search(context.Background(), " sulfuric acid ", 0)
	require.NoError(t, err)

	assert.Equal(t, "/compound/name/sulfuric%20acid/cids/JSON", cidPath)
	assert.Equal(t, 12, res.TotalFound)
	require.Len(t, res.Results, 9, "ten details fetched, one missing")
	assert.Equal(t, int64(1), res.Results[0].CID)
	assert.Equal(t, int64(10), res.Results[8].CID)
}

func TestClient_SearchCIDs_Limits(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"IdentifierList":{"CID":[5,6,7,8]}}`))
	})

	cids, err := c.SearchCIDs(context.Background(), "acid", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, cids)
}

func TestClient_SearchUnknownKeyword(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	res, err := c.Search(context.Background(), "unobtainium", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalFound)
	assert.Empty(t, res.Results)

	_, err = c.Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClampResults(t *testing.T) {
	assert.Equal(t, DefaultSearchResults, clampResults(0))
	assert.Equal(t, DefaultSearchResults, clampResults(-3))
	assert.Equal(t, 7, clampResults(7))
	assert.Equal(t, MaxSearchResults, clampResults(500))
}
