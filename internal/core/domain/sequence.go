package domain

import (
	"fmt"
	"strings"
)

// SequenceRecord is a single nucleotide sequence.
// Records are treated as immutable once created.
type SequenceRecord struct {
	// ID is the record identifier (FASTA header token or accession.version).
	ID string

	// Description is the free text following the identifier.
	Description string

	// Sequence holds the nucleotide symbols.
	Sequence string

	// Organism is the source organism annotation, if known.
	Organism string

	// Accession is the database accession, if known.
	Accession string
}

// Len returns the number of symbols in the sequence.
func (r SequenceRecord) Len() int {
	return len(r.Sequence)
}

// SearchHit is a ranked hit from the similarity search.
type SearchHit struct {
	// Accession is the accession reported by the service for the hit.
	Accession string

	// Rank is the 1-based position in the hit list.
	Rank int

	// Score is the bit score of the best HSP.
	Score float64

	// EValue is the expect value of the best HSP.
	EValue float64

	// Title is the hit title: the hit id followed by its definition line.
	Title string
}

// TitleField returns the pipe-delimited field at position pos of the title.
// With the title "gi|12345|gb|AB000001.1| Homo sapiens" position 1 is "12345".
func (h SearchHit) TitleField(pos int) (string, error) {
	if pos < 0 {
		return "", fmt.Errorf("%w: negative title field %d", ErrInvalidInput, pos)
	}
	fields := strings.Split(h.Title, "|")
	if pos >= len(fields) {
		return "", fmt.Errorf("hit title %q has no field %d", h.Title, pos)
	}
	field := strings.TrimSpace(fields[pos])
	if field == "" {
		return "", fmt.Errorf("hit title %q has an empty field %d", h.Title, pos)
	}
	return field, nil
}

// GenusLabel is a taxonomic genus name.
type GenusLabel string

// String returns the genus as a string.
func (g GenusLabel) String() string {
	return string(g)
}

// GenusFromOrganism returns the first whitespace-delimited token of an
// organism annotation. A blank annotation is ErrRecordNotFound.
func GenusFromOrganism(organism string) (GenusLabel, error) {
	fields := strings.Fields(organism)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: organism annotation is empty", ErrRecordNotFound)
	}
	return GenusLabel(fields[0]), nil
}

// RelatedQuery builds the database query for a genus and gene name.
func RelatedQuery(genus GenusLabel, gene string) string {
	return fmt.Sprintf("%s AND %s", genus, strings.TrimSpace(gene))
}

// FetchOutcome is the result of fetching one related record.
// Exactly one of Record and Err is set.
type FetchOutcome struct {
	ID     string
	Record *SequenceRecord
	Err    error
}

// OK reports whether the fetch succeeded.
func (o FetchOutcome) OK() bool {
	return o.Err == nil && o.Record != nil
}

// Retrieval is the output of the related-sequence retriever.
type Retrieval struct {
	// Query is the database query that produced the identifiers.
	Query string

	// IDs are the identifiers in the order returned by the database.
	IDs []string

	// Outcomes holds one entry per identifier, in the same order.
	Outcomes []FetchOutcome
}

// Collection returns the successfully fetched records in identifier order.
func (r *Retrieval) Collection() []SequenceRecord {
	records := make([]SequenceRecord, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			records = append(records, *o.Record)
		}
	}
	return records
}

// Failures returns the failed outcomes in identifier order.
func (r *Retrieval) Failures() []FetchOutcome {
	var failed []FetchOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}
