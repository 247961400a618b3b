// Package pubchem looks up compounds through the PubChem PUG REST API.
package pubchem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultTimeout     = 10 * time.Second
	DefaultMinInterval = 200 * time.Millisecond

	properties = "MolecularFormula,MolecularWeight,IUPACName,CanonicalSMILES"
)

// ErrNotFound is returned when PubChem has no compound for the identifier.
var ErrNotFound = errors.New("compound not found")

// Compound is the subset of PubChem properties chemlab stores.
type Compound struct {
	CID             int64   `json:"cid"`
	Name            string  `json:"name"`
	Formula         string  `json:"formula"`
	MolecularWeight float64 `json:"molecular_weight"`
	IUPACName       string  `json:"iupac_name"`
	SMILES          string  `json:"smiles"`
}

// CompoundLookup resolves compounds by name or PubChem CID.
type CompoundLookup interface {
	ByName(ctx context.Context, name string) (*Compound, error)
	ByID(ctx context.Context, cid int64) (*Compound, error)
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
}

// Client is a rate-limited PUG REST client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client. Zero config fields take the defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		logger:  logger,
	}
}

// ByName fetches the first compound PubChem returns for name.
func (c *Client) ByName(ctx context.Context, name string) (*Compound, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty compound name: %w", ErrNotFound)
	}
	comp, err := c.fetch(ctx, "name", url.PathEscape(name))
	if err != nil {
		return nil, err
	}
	comp.Name = name
	return comp, nil
}

// ByID fetches a compound by PubChem CID. The name is the first synonym
// PubChem lists, or CID_<n> when there are none.
func (c *Client) ByID(ctx context.Context, cid int64) (*Compound, error) {
	if cid <= 0 {
		return nil, fmt.Errorf("invalid cid %d: %w", cid, ErrNotFound)
	}
	id := strconv.FormatInt(cid, 10)
	comp, err := c.fetch(ctx, "cid", id)
	if err != nil {
		return nil, err
	}

	name, err := c.firstSynonym(ctx, id)
	if err != nil {
		c.logger.Warn("Synonym lookup failed", zap.Int64("cid", cid), zap.Error(err))
	}
	if name == "" {
		name = "CID_" + id
	}
	comp.Name = name
	return comp, nil
}

type propertyResponse struct {
	PropertyTable struct {
		Properties []struct {
			CID                int64     `json:"CID"`
			MolecularFormula   string    `json:"MolecularFormula"`
			MolecularWeight    flexFloat `json:"MolecularWeight"`
			IUPACName          string    `json:"IUPACName"`
			CanonicalSMILES    string    `json:"CanonicalSMILES"`
			ConnectivitySMILES string    `json:"ConnectivitySMILES"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

type synonymResponse struct {
	InformationList struct {
		Information []struct {
			Synonym []string `json:"Synonym"`
		} `json:"Information"`
	} `json:"InformationList"`
}

func (c *Client) fetch(ctx context.Context, namespace, identifier string) (*Compound, error) {
	endpoint := fmt.Sprintf("%s/compound/%s/%s/property/%s/JSON", c.baseURL, namespace, identifier, properties)

	var body propertyResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	if len(body.PropertyTable.Properties) == 0 {
		return nil, ErrNotFound
	}

	p := body.PropertyTable.Properties[0]
	smiles := p.CanonicalSMILES
	if smiles == "" {
		smiles = p.ConnectivitySMILES
	}
	return &Compound{
		CID:             p.CID,
		Formula:         p.MolecularFormula,
		MolecularWeight: float64(p.MolecularWeight),
		IUPACName:       p.IUPACName,
		SMILES:          smiles,
	}, nil
}

func (c *Client) firstSynonym(ctx context.Context, cid string) (string, error) {
	endpoint := fmt.Sprintf("%s/compound/cid/%s/synonyms/JSON", c.baseURL, cid)

	var body synonymResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return "", err
	}
	for _, info := range body.InformationList.Information {
		if len(info.Synonym) > 0 {
			return info.Synonym[0], nil
		}
	}
	return "", nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("pubchem request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("PubChem request",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pubchem returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode pubchem response: %w", err)
	}
	return nil
}

// flexFloat accepts both numbers and numeric strings. PubChem sends the
// molecular weight as a string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}
