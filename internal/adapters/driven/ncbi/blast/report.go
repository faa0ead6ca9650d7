package blast

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/meows-bio/meows/internal/core/domain"
)

type blastOutput struct {
	XMLName    xml.Name    `xml:"BlastOutput"`
	Iterations []iteration `xml:"BlastOutput_iterations>Iteration"`
}

type iteration struct {
	Hits    []hit  `xml:"Iteration_hits>Hit"`
	Message string `xml:"Iteration_message"`
}

type hit struct {
	Num       int    `xml:"Hit_num"`
	ID        string `xml:"Hit_id"`
	Def       string `xml:"Hit_def"`
	Accession string `xml:"Hit_accession"`
	HSPs      []hsp  `xml:"Hit_hsps>Hsp"`
}

type hsp struct {
	BitScore string `xml:"Hsp_bit-score"`
	EValue   string `xml:"Hsp_evalue"`
}

// DecodeReport parses a BLAST XML report. Hits of every iteration are
// returned in report order. The title of each hit is its id followed by its
// definition line.
func DecodeReport(raw []byte) ([]domain.SearchHit, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty BLAST report", domain.ErrService)
	}

	var out blastOutput
	if err := xml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed BLAST report: %w", domain.ErrService, err)
	}

	var hits []domain.SearchHit
	for _, it := range out.Iterations {
		for _, h := range it.Hits {
			rank := h.Num
			if rank <= 0 {
				rank = len(hits) + 1
			}
			sh := domain.SearchHit{
				Accession: h.Accession,
				Rank:      rank,
				Title:     strings.TrimSpace(h.ID + " " + h.Def),
			}
			if len(h.HSPs) > 0 {
				sh.Score = parseFloat(h.HSPs[0].BitScore)
				sh.EValue = parseFloat(h.HSPs[0].EValue)
			}
			hits = append(hits, sh)
		}
	}
	return hits, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
