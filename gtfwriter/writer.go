// Package gtfwriter formats assembled transcripts as the line-oriented
// nine-field records §6 specifies: one transcript record followed by
// its exon records, in ascending coordinate order, attributes joined
// with semicolons. It is a boundary adapter — §6 only specifies the
// wire contract, not an algorithm — grounded on elPrep's own
// line-oriented text writers (sam/sam-files.go's Format*, FormatTag;
// vcf/vcf-files.go's Format) and their internal.ReserveByteBuffer/
// internal.ReleaseByteBuffer scratch-buffer idiom.
package gtfwriter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/exascience/scallop/internal"
	"github.com/exascience/scallop/scallop"
	"github.com/exascience/scallop/utils"
)

// Writer is a scoped handle over one output stream (§5: flushed on
// completion), in the same shape as sam.OutputFile/sam.Writer.
type Writer struct {
	wc  io.WriteCloser
	out *bufio.Writer

	// Algo is the literal written into the source-tag field (§6's
	// "algo" configuration option).
	Algo string

	// AverageReadLength normalizes read count into the "coverage"
	// attribute: coverage is scallop.Path.ReadCount divided by it, or
	// the path's abundance when it is zero.
	AverageReadLength float64

	geneSeq, txSeq int
}

// Create wraps wc in a buffered Writer (§5: a scoped handle flushed on
// completion). Callers open the underlying file or stdout themselves,
// the same division of labor as sam.OutputFile's constructors.
func Create(wc io.WriteCloser) *Writer {
	return &Writer{wc: wc, out: bufio.NewWriter(wc), Algo: "scallop"}
}

// Close flushes buffered output and releases the underlying stream.
func (w *Writer) Close() error {
	if err := w.out.Flush(); err != nil {
		return err
	}
	return w.wc.Close()
}

// WriteBundle formats every transcript collected for one bundle,
// assigning it a fresh gene_id (one per bundle, following elPrep's own
// per-locus numbering idiom) and a transcript_id numbered within that
// gene, in the order paths is given.
func (w *Writer) WriteBundle(chrom utils.Symbol, strand byte, paths []scallop.Path) error {
	if len(paths) == 0 {
		return nil
	}
	w.geneSeq++
	geneID := fmt.Sprintf("SCALLOP.%d", w.geneSeq)
	buf := internal.ReserveByteBuffer()
	defer internal.ReleaseByteBuffer(buf)
	for i, p := range paths {
		w.txSeq++
		txID := fmt.Sprintf("%s.%d", geneID, i+1)
		var err error
		buf, err = w.formatTranscript(buf[:0], chrom, strand, geneID, txID, p)
		if err != nil {
			return err
		}
		if _, err := w.out.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// expression is the path's raw abundance (§4.7: "abd is the edge
// weight"); coverage renormalizes the read count §4.7 already derived
// from it back down by average_read_length, the same division
// bundle::output_transcript applies to its own p.reads/p.abd pair.
func (w *Writer) formatTranscript(buf []byte, chrom utils.Symbol, strand byte, geneID, txID string, p scallop.Path) ([]byte, error) {
	if len(p.Exons) == 0 {
		return buf, nil
	}
	lpos := p.Exons[0].Lpos
	rpos := p.Exons[len(p.Exons)-1].Rpos
	expression := p.Abundance
	coverage := expression
	if w.AverageReadLength > 0 {
		coverage = float64(p.ReadCount) / w.AverageReadLength
	}

	buf = appendRecord(buf, chrom, w.Algo, "transcript", lpos, rpos, strand,
		transcriptAttrs(geneID, txID, coverage, expression))
	for i, e := range p.Exons {
		buf = appendRecord(buf, chrom, w.Algo, "exon", e.Lpos, e.Rpos, strand,
			exonAttrs(geneID, txID, i+1, coverage, expression))
	}
	return buf, nil
}

// appendRecord appends one tab-separated record (score is always the
// literal 1000, frame is always '.', per §6) followed by a newline.
// Coordinates are converted from the core's half-open [lpos, rpos)
// convention to 1-based inclusive output coordinates.
func appendRecord(buf []byte, chrom utils.Symbol, source, feature string, lpos, rpos int32, strand byte, attrs string) []byte {
	buf = append(buf, *chrom...)
	buf = append(buf, '\t')
	buf = append(buf, source...)
	buf = append(buf, '\t')
	buf = append(buf, feature...)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(lpos)+1, 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(rpos), 10)
	buf = append(buf, "\t1000\t"...)
	buf = append(buf, strand)
	buf = append(buf, "\t.\t"...)
	buf = append(buf, attrs...)
	buf = append(buf, '\n')
	return buf
}

func transcriptAttrs(geneID, txID string, coverage, expression float64) string {
	return fmt.Sprintf(`gene_id "%s"; transcript_id "%s"; coverage "%.2f"; expression "%.2f";`,
		geneID, txID, coverage, expression)
}

func exonAttrs(geneID, txID string, exonNumber int, coverage, expression float64) string {
	return fmt.Sprintf(`gene_id "%s"; transcript_id "%s"; exon_number "%d"; coverage "%.2f"; expression "%.2f";`,
		geneID, txID, exonNumber, coverage, expression)
}
