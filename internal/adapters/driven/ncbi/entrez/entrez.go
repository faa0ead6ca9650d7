// Package entrez fetches and searches NCBI databases through the
// E-utilities.
package entrez

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meows-bio/meows/internal/adapters/driven/ncbi"
	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/genbank"
	"github.com/meows-bio/meows/internal/logger"
)

// DefaultCacheSize is the number of fetched records kept in memory.
const DefaultCacheSize = 256

// Ensure Client implements the interface.
var _ driven.RecordDatabase = (*Client)(nil)

// Config holds the E-utilities parameters.
type Config struct {
	// BaseURL is the E-utilities root, without a trailing file name.
	BaseURL string

	// Database is the Entrez database name.
	Database string

	// CacheSize bounds the record cache; zero uses DefaultCacheSize and a
	// negative value disables caching.
	CacheSize int
}

// ConfigFromSettings builds a Config from the NCBI settings.
func ConfigFromSettings(s domain.NCBISettings) Config {
	return Config{
		BaseURL:  s.EutilsURL,
		Database: s.Database,
	}
}

// Client reads GenBank records and runs term searches.
type Client struct {
	http  *ncbi.Client
	cfg   Config
	cache *lru.Cache[string, domain.SequenceRecord]
}

// NewClient creates an Entrez client on top of an NCBI transport.
func NewClient(transport *ncbi.Client, cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Database == "" {
		cfg.Database = domain.DefaultEntrezDatabase
	}

	c := &Client{http: transport, cfg: cfg}
	size := cfg.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, domain.SequenceRecord](size)
		if err != nil {
			return nil, fmt.Errorf("entrez: create cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Fetch downloads the GenBank record for id.
// A response without a record wraps domain.ErrRecordNotFound.
func (c *Client) Fetch(ctx context.Context, id string) (*domain.SequenceRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty identifier", domain.ErrInvalidInput)
	}
	if c.cache != nil {
		if rec, ok := c.cache.Get(id); ok {
			logger.Debug("Record %s served from cache", id)
			return &rec, nil
		}
	}

	body, err := c.http.Get(ctx, c.endpoint("efetch.fcgi"), url.Values{
		"db":      {c.cfg.Database},
		"id":      {id},
		"rettype": {"gb"},
		"retmode": {"text"},
	})
	if err != nil {
		return nil, err
	}

	gb, err := genbank.ParseOne(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrRecordNotFound, id, err)
	}

	rec := domain.SequenceRecord{
		ID:          gb.ID(),
		Description: gb.Definition,
		Sequence:    strings.ToUpper(gb.Sequence),
		Organism:    gb.Organism,
		Accession:   gb.Accession,
	}
	if c.cache != nil {
		c.cache.Add(id, rec)
	}
	return &rec, nil
}

type esearchResponse struct {
	Result *struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
	Error string `json:"error"`
}

// Search returns up to limit identifiers matching term, in database order.
// Malformed responses wrap domain.ErrQuery.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {c.cfg.Database},
		"term":    {term},
		"retmode": {"json"},
	}
	if limit > 0 {
		params.Set("retmax", strconv.Itoa(limit))
	}

	body, err := c.http.Get(ctx, c.endpoint("esearch.fcgi"), params)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode esearch response: %w", domain.ErrQuery, err)
	}
	switch {
	case resp.Error != "":
		return nil, fmt.Errorf("%w: %s", domain.ErrQuery, resp.Error)
	case resp.Result == nil:
		return nil, fmt.Errorf("%w: esearch response has no result", domain.ErrQuery)
	case resp.Result.Error != "":
		return nil, fmt.Errorf("%w: %s", domain.ErrQuery, resp.Result.Error)
	}

	ids := make([]string, 0, len(resp.Result.IDList))
	for _, id := range resp.Result.IDList {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	logger.Debug("esearch %q: %s total, %d returned", term, resp.Result.Count, len(ids))
	return ids, nil
}

func (c *Client) endpoint(name string) string {
	return c.cfg.BaseURL + "/" + name
}
