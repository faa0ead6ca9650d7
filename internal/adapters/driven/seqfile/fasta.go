// Package seqfile reads and writes FASTA files with biogo.
package seqfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
)

// DefaultLineWidth is the number of residues per sequence line.
const DefaultLineWidth = 60

// Ensure FASTA implements the interface.
var _ driven.SequenceCodec = (*FASTA)(nil)

// FASTA is a nucleotide FASTA codec.
type FASTA struct {
	width int
}

// NewFASTA creates a codec wrapping sequence lines at width residues.
// A width below one uses DefaultLineWidth.
func NewFASTA(width int) *FASTA {
	if width < 1 {
		width = DefaultLineWidth
	}
	return &FASTA{width: width}
}

// Decode reads every record from r. Sequences must be nucleotides.
func (f *FASTA) Decode(r io.Reader) ([]domain.SequenceRecord, error) {
	br := bufio.NewReader(r)
	if err := expectHeader(br); err != nil {
		return nil, err
	}

	template := linear.NewSeq("", nil, alphabet.DNAredundant)
	sc := seqio.NewScanner(fasta.NewReader(br, template))

	var records []domain.SequenceRecord
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected sequence type %T", domain.ErrInputFormat, sc.Seq())
		}
		if err := checkNucleotides(s.ID, s.Seq); err != nil {
			return nil, err
		}
		records = append(records, domain.SequenceRecord{
			ID:          s.ID,
			Description: s.Desc,
			Sequence:    string(alphabet.LettersToBytes(s.Seq)),
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInputFormat, err)
	}
	return records, nil
}

// Encode writes records as ">ID Description" followed by wrapped sequence
// lines.
func (f *FASTA) Encode(w io.Writer, records []domain.SequenceRecord) error {
	bw := bufio.NewWriter(w)
	fw := fasta.NewWriter(bw, f.width)

	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			return fmt.Errorf("record %d has no identifier", i)
		}
		s := linear.NewSeq(rec.ID, alphabet.BytesToLetters([]byte(rec.Sequence)), alphabet.DNAredundant)
		s.Desc = rec.Description
		if _, err := fw.Write(s); err != nil {
			return fmt.Errorf("write %s: %w", rec.ID, err)
		}
	}
	return bw.Flush()
}

// checkNucleotides fails on the first letter that is not an IUPAC
// nucleotide code or gap, ignoring case.
func checkNucleotides(id string, letters alphabet.Letters) error {
	for i, l := range letters {
		if 'a' <= l && l <= 'z' {
			l -= 'a' - 'A'
		}
		if !alphabet.DNAredundant.IsValid(l) {
			return fmt.Errorf("%w: record %q has non-nucleotide character %q at position %d",
				domain.ErrInputFormat, id, byte(letters[i]), i+1)
		}
	}
	return nil
}

// expectHeader fails unless the first non-blank byte starts a FASTA header.
// An input with nothing but whitespace is accepted and yields no records.
func expectHeader(br *bufio.Reader) error {
	for {
		b, err := br.Peek(1)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInputFormat, err)
		}
		if bytes.ContainsAny(b, " \t\r\n") {
			if _, err := br.ReadByte(); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInputFormat, err)
			}
			continue
		}
		if b[0] != '>' {
			return fmt.Errorf("%w: input does not start with a FASTA header", domain.ErrInputFormat)
		}
		return nil
	}
}
