// Package genbank parses GenBank flat-file records.
//
// Only the header fields the pipeline needs are interpreted: LOCUS,
// DEFINITION, ACCESSION, VERSION, SOURCE, ORGANISM with its lineage, and the
// ORIGIN sequence. Feature tables and references are skipped.
package genbank

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRecord indicates the input held no GenBank record.
var ErrNoRecord = errors.New("genbank: no record")

// maxLine bounds a single input line.
const maxLine = 1 << 20

// Record is one parsed GenBank entry.
type Record struct {
	Locus      string
	Definition string
	Accession  string
	Version    string
	Source     string
	Organism   string
	Lineage    []string
	Sequence   string
}

// ID returns the accession.version when present, else the accession, else
// the locus name.
func (r *Record) ID() string {
	switch {
	case r.Version != "":
		return r.Version
	case r.Accession != "":
		return r.Accession
	default:
		return r.Locus
	}
}

// Parse reads every record from r. Input without any LOCUS line yields
// ErrNoRecord.
func Parse(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	var (
		records []Record
		cur     *Record
		p       parser
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		if strings.HasPrefix(line, "LOCUS") {
			if cur != nil {
				records = append(records, p.finish(cur))
			}
			cur = &Record{}
			p = parser{}
		}
		if cur == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("genbank: line %d: expected LOCUS, got %q", lineNo, truncate(line))
		}
		if strings.HasPrefix(line, "//") {
			records = append(records, p.finish(cur))
			cur = nil
			continue
		}
		p.line(cur, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("genbank: %w", err)
	}
	if cur != nil {
		records = append(records, p.finish(cur))
	}
	if len(records) == 0 {
		return nil, ErrNoRecord
	}
	return records, nil
}

// ParseOne returns the first record in r.
func ParseOne(r io.Reader) (*Record, error) {
	records, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// parser tracks which keyword continuation lines belong to.
type parser struct {
	keyword string
	lineage []string
	seq     strings.Builder
}

func (p *parser) line(rec *Record, line string) {
	keyword, value := splitKeyword(line)
	if keyword == "" {
		p.continuation(rec, strings.TrimSpace(line))
		return
	}
	p.keyword = keyword

	switch keyword {
	case "LOCUS":
		if fields := strings.Fields(value); len(fields) > 0 {
			rec.Locus = fields[0]
		}
	case "DEFINITION":
		rec.Definition = value
	case "ACCESSION":
		if fields := strings.Fields(value); len(fields) > 0 {
			rec.Accession = fields[0]
		}
	case "VERSION":
		if fields := strings.Fields(value); len(fields) > 0 {
			rec.Version = fields[0]
		}
	case "SOURCE":
		rec.Source = value
	case "ORGANISM":
		rec.Organism = value
	}
}

func (p *parser) continuation(rec *Record, text string) {
	if text == "" {
		return
	}
	switch p.keyword {
	case "DEFINITION":
		rec.Definition = strings.TrimSpace(rec.Definition + " " + text)
	case "SOURCE":
		rec.Source = strings.TrimSpace(rec.Source + " " + text)
	case "ORGANISM":
		p.lineage = append(p.lineage, text)
	case "ORIGIN":
		for _, f := range strings.Fields(text) {
			if isPosition(f) {
				continue
			}
			p.seq.WriteString(f)
		}
	}
}

func (p *parser) finish(rec *Record) Record {
	if len(p.lineage) > 0 {
		joined := strings.TrimSuffix(strings.Join(p.lineage, " "), ".")
		for _, taxon := range strings.Split(joined, ";") {
			if taxon = strings.TrimSpace(taxon); taxon != "" {
				rec.Lineage = append(rec.Lineage, taxon)
			}
		}
	}
	rec.Sequence = p.seq.String()
	return *rec
}

// splitKeyword returns the keyword of a header line and its value.
// Keywords start in column 0 or, for sub-keywords like ORGANISM, column 2.
// Feature table lines and continuation lines have no keyword.
func splitKeyword(line string) (string, string) {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent != 0 && indent != 2 {
		return "", ""
	}
	rest := line[indent:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	word := rest[:end]
	if word == "" || strings.ToUpper(word) != word || !isKeyword(word) {
		return "", ""
	}
	return word, strings.TrimSpace(rest[end:])
}

func isKeyword(word string) bool {
	for _, r := range word {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}

func isPosition(field string) bool {
	for _, r := range field {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
