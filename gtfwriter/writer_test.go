package gtfwriter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/exascience/scallop/graph"
	"github.com/exascience/scallop/scallop"
	"github.com/exascience/scallop/utils"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

// Scenario 1 of §8: one transcript, two exons, in ascending coordinate
// order, nine tab-separated fields each.
func TestWriteBundleTwoExonTranscript(t *testing.T) {
	var buf bytes.Buffer
	w := Create(nopCloser{&buf})
	w.Algo = "scallop"
	w.AverageReadLength = 100

	chrom := utils.Intern("chr1")
	// Build the path through scallop.CollectPaths rather than a hand
	// literal, so ReadCount reflects §4.7's actual
	// abd*length(path)/average_read_length formula: abundance 18,
	// coalesced exon length 200, average_read_length 100 -> 36.
	g := graph.New(2)
	g.SetVertexInfo(1, graph.VertexInfo{Lpos: 100, Rpos: 200})
	g.SetVertexInfo(2, graph.VertexInfo{Lpos: 300, Rpos: 400})
	g.AddEdge(g.Source(), 1, 18, 0, graph.EdgeStart)
	g.AddEdge(1, 2, 18, 0, graph.EdgeJunction)
	g.AddEdge(2, g.Sink(), 18, 0, graph.EdgeEnd)
	paths := scallop.CollectPaths(g, 100)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	if paths[0].ReadCount != 36 {
		t.Fatalf("read count = %v, want 36", paths[0].ReadCount)
	}
	if err := w.WriteBundle(chrom, '+', paths); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (1 transcript + 2 exons): %q", len(lines), buf.String())
	}

	txFields := strings.Split(lines[0], "\t")
	if len(txFields) != 9 {
		t.Fatalf("transcript record has %d fields, want 9: %q", len(txFields), lines[0])
	}
	if txFields[0] != "chr1" || txFields[1] != "scallop" || txFields[2] != "transcript" {
		t.Errorf("transcript record prefix = %v", txFields[:3])
	}
	if txFields[3] != "101" || txFields[4] != "400" {
		t.Errorf("transcript span = [%s,%s], want [101,400] (1-based inclusive)", txFields[3], txFields[4])
	}
	if txFields[5] != "1000" || txFields[6] != "+" || txFields[7] != "." {
		t.Errorf("score/strand/frame = %v", txFields[5:8])
	}
	if !strings.Contains(txFields[8], `gene_id "SCALLOP.1"`) || !strings.Contains(txFields[8], `transcript_id "SCALLOP.1.1"`) {
		t.Errorf("transcript attributes missing gene_id/transcript_id: %q", txFields[8])
	}
	// expression carries the path's raw abundance (18.00); coverage is
	// the read count renormalized by average_read_length (36/100=0.36),
	// mirroring bundle::output_transcript's own cov/abd pair.
	if !strings.Contains(txFields[8], `expression "18.00"`) {
		t.Errorf("expression = %q, want abundance 18.00", txFields[8])
	}
	if !strings.Contains(txFields[8], `coverage "0.36"`) {
		t.Errorf("coverage = %q, want read count 36 / average_read_length 100 = 0.36", txFields[8])
	}

	exon1 := strings.Split(lines[1], "\t")
	exon2 := strings.Split(lines[2], "\t")
	if exon1[3] != "101" || exon1[4] != "200" {
		t.Errorf("exon 1 span = [%s,%s], want [101,200]", exon1[3], exon1[4])
	}
	if exon2[3] != "301" || exon2[4] != "400" {
		t.Errorf("exon 2 span = [%s,%s], want [301,400]", exon2[3], exon2[4])
	}
	if !strings.Contains(exon1[8], `exon_number "1"`) || !strings.Contains(exon2[8], `exon_number "2"`) {
		t.Errorf("exon_number not ascending: %q / %q", exon1[8], exon2[8])
	}
}

func TestWriteBundleEmptyPathsWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := Create(nopCloser{&buf})
	if err := w.WriteBundle(utils.Intern("chr2"), '.', nil); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for an empty path list, got %q", buf.String())
	}
}

func TestWriteBundleMultipleTranscriptsIncrementTranscriptID(t *testing.T) {
	var buf bytes.Buffer
	w := Create(nopCloser{&buf})
	paths := []scallop.Path{
		{Exons: []scallop.Exon{{Lpos: 0, Rpos: 100}}, Abundance: 5},
		{Exons: []scallop.Exon{{Lpos: 0, Rpos: 50}}, Abundance: 3},
	}
	if err := w.WriteBundle(utils.Intern("chr3"), '-', paths); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	w.Close()
	if !strings.Contains(buf.String(), `transcript_id "SCALLOP.1.1"`) ||
		!strings.Contains(buf.String(), `transcript_id "SCALLOP.1.2"`) {
		t.Errorf("expected two distinct transcript ids within the same gene, got %q", buf.String())
	}
}
