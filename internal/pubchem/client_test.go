package pubchem

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const aspirinProps = `{"PropertyTable":{"Properties":[{"CID":2244,"MolecularFormula":"C9H8O4","MolecularWeight":"180.16","IUPACName":"2-acetyloxybenzoic acid","CanonicalSMILES":"CC(=O)OC1=CC=CC=C1C(=O)O"}]}}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond}, zap.NewNop())
}

func TestClient_ByName(t *testing.T) {
	var path string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(aspirinProps))
	})

	comp, err := c.ByName(context.Background(), " acetylsalicylic acid ")
	require.NoError(t, err)

	assert.Equal(t, "/compound/name/acetylsalicylic%20acid/property/"+properties+"/JSON", path)
	assert.Equal(t, &Compound{
		CID:             2244,
		Name:            "acetylsalicylic acid",
		Formula:         "C9H8O4",
		MolecularWeight: 180.16,
		IUPACName:       "2-acetyloxybenzoic acid",
		SMILES:          "CC(=O)OC1=CC=CC=C1C(=O)O",
	}, comp)
}

func TestClient_ByID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/synonyms/JSON"):
			_, _ = w.Write([]byte(`{"InformationList":{"Information":[{"CID":2244,"Synonym":["aspirin","ACETYLSALICYLIC ACID"]}]}}`))
		default:
			_, _ = w.Write([]byte(aspirinProps))
		}
	})

	comp, err := c.ByID(context.Background(), 2244)
	require.NoError(t, err)
	assert.Equal(t, "aspirin", comp.Name)
	assert.Equal(t, int64(2244), comp.CID)
}

func TestClient_ByID_NoSynonyms(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/synonyms/JSON") {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(aspirinProps))
	})

	comp, err := c.ByID(context.Background(), 2244)
	require.NoError(t, err)
	assert.Equal(t, "CID_2244", comp.Name)
}

func TestClient_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Fault":{"Code":"PUGREST.NotFound"}}`, http.StatusNotFound)
	})

	_, err := c.ByName(context.Background(), "unobtainium")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ByID(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ByName(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_EmptyPropertyTable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"PropertyTable":{"Properties":[]}}`))
	})

	_, err := c.ByName(context.Background(), "water")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})

	_, err := c.ByName(context.Background(), "water")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_RateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(aspirinProps))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: 50 * time.Millisecond}, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.ByName(context.Background(), "aspirin")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_CanceledContext(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", MinInterval: time.Hour}, nil)
	// Drain the single burst token so the next call has to wait.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ByName(ctx, "water")
	assert.ErrorContains(t, err, "rate limiter")
}

func TestFlexFloat(t *testing.T) {
	for in, want := range map[string]float64{`"18.015"`: 18.015, `58.44`: 58.44, `null`: 0, `""`: 0} {
		var f flexFloat
		require.NoError(t, f.UnmarshalJSON([]byte(in)), in)
		assert.InDelta(t, want, float64(f), 1e-9, in)
	}
	var f flexFloat
	assert.Error(t, f.UnmarshalJSON([]byte(`"heavy"`)))
}
