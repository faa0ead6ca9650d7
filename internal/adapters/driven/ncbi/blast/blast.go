// Package blast submits nucleotide searches to the NCBI BLAST URL API.
package blast

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/meows-bio/meows/internal/adapters/driven/ncbi"
	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// Job status values reported by SearchInfo.
const (
	StatusWaiting = "WAITING"
	StatusReady   = "READY"
	StatusFailed  = "FAILED"
	StatusUnknown = "UNKNOWN"
)

// DefaultHitlistSize keeps only the best hit.
const DefaultHitlistSize = 1

// Ensure Client implements the interface.
var _ driven.SimilaritySearcher = (*Client)(nil)

// Config holds the search parameters.
type Config struct {
	URL          string
	Program      string
	Database     string
	HitlistSize  int
	PollInterval time.Duration
}

// ConfigFromSettings builds a Config from the NCBI settings.
func ConfigFromSettings(s domain.NCBISettings) Config {
	return Config{
		URL:          s.BlastURL,
		Program:      s.BlastProgram,
		Database:     s.BlastDatabase,
		HitlistSize:  DefaultHitlistSize,
		PollInterval: s.PollInterval,
	}
}

// Client runs BLAST jobs: submit, poll until ready, download the report.
type Client struct {
	http *ncbi.Client
	cfg  Config
}

// NewClient creates a BLAST client on top of an NCBI transport.
func NewClient(transport *ncbi.Client, cfg Config) *Client {
	if cfg.HitlistSize <= 0 {
		cfg.HitlistSize = DefaultHitlistSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = domain.DefaultPollInterval
	}
	return &Client{http: transport, cfg: cfg}
}

// Submit runs a search for query and returns the raw XML report.
// Callers bound the total wait through ctx.
func (c *Client) Submit(ctx context.Context, query string) ([]byte, error) {
	rid, rtoe, err := c.put(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Info("BLAST job %s submitted, estimated %s", rid, rtoe)

	if err := c.waitReady(ctx, rid); err != nil {
		return nil, err
	}

	report, err := c.http.Get(ctx, c.cfg.URL, url.Values{
		"CMD":         {"Get"},
		"RID":         {rid},
		"FORMAT_TYPE": {"XML"},
	})
	if err != nil {
		return nil, serviceError(ctx, fmt.Errorf("download report %s: %w", rid, err))
	}
	return report, nil
}

// Decode parses an XML report into ranked hits.
func (c *Client) Decode(raw []byte) ([]domain.SearchHit, error) {
	return DecodeReport(raw)
}

func (c *Client) put(ctx context.Context, query string) (string, time.Duration, error) {
	body, err := c.http.Post(ctx, c.cfg.URL, url.Values{
		"CMD":          {"Put"},
		"PROGRAM":      {c.cfg.Program},
		"DATABASE":     {c.cfg.Database},
		"HITLIST_SIZE": {strconv.Itoa(c.cfg.HitlistSize)},
		"QUERY":        {query},
	})
	if err != nil {
		return "", 0, serviceError(ctx, fmt.Errorf("submit: %w", err))
	}

	info := parseQBlastInfo(body)
	rid := info["RID"]
	if rid == "" {
		return "", 0, fmt.Errorf("%w: submit response carries no request ID", domain.ErrService)
	}
	var rtoe time.Duration
	if s, err := strconv.Atoi(info["RTOE"]); err == nil {
		rtoe = time.Duration(s) * time.Second
	}
	return rid, rtoe, nil
}

func (c *Client) waitReady(ctx context.Context, rid string) error {
	for {
		if err := ncbi.Sleep(ctx, c.cfg.PollInterval); err != nil {
			return err
		}

		body, err := c.http.Get(ctx, c.cfg.URL, url.Values{
			"CMD":           {"Get"},
			"RID":           {rid},
			"FORMAT_OBJECT": {"SearchInfo"},
		})
		if err != nil {
			return serviceError(ctx, fmt.Errorf("poll %s: %w", rid, err))
		}

		info := parseQBlastInfo(body)
		switch status := info["Status"]; status {
		case StatusReady:
			if info["ThereAreHits"] != "yes" {
				logger.Debug("BLAST job %s finished without hits", rid)
			}
			return nil
		case StatusWaiting:
			logger.Debug("BLAST job %s still running", rid)
		case StatusFailed, StatusUnknown:
			return fmt.Errorf("%w: BLAST job %s reported status %s", domain.ErrService, rid, status)
		default:
			return fmt.Errorf("%w: BLAST job %s returned no status", domain.ErrService, rid)
		}
	}
}

var infoLine = regexp.MustCompile(`^\s*(\w+)\s*=\s*(\S*)\s*$`)

// parseQBlastInfo extracts "key = value" pairs from the QBlastInfo blocks
// embedded in the service's HTML responses.
func parseQBlastInfo(body []byte) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		if m := infoLine.FindStringSubmatch(sc.Text()); m != nil {
			if _, seen := out[m[1]]; !seen {
				out[m[1]] = strings.TrimSpace(m[2])
			}
		}
	}
	return out
}

func serviceError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %w", domain.ErrService, err)
}
