package bamio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/exascience/scallop/hit"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

// writeHeader appends the magic and a one-entry reference dictionary,
// matching §6's "sequential header (reference names and lengths)".
func writeHeader(buf *bytes.Buffer, refName string, refLen int32) {
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, int32(1))
	binary.Write(buf, binary.LittleEndian, int32(len(refName)+1))
	buf.WriteString(refName)
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, refLen)
}

// writeRecord appends one length-prefixed record with the given CIGAR
// operations and no tags, at the fixed byte offsets bamio.parseRecord
// expects.
func writeRecord(buf *bytes.Buffer, refID, pos int32, qname string, flag uint16, cigar []hit.CigarOp) {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, refID)
	binary.Write(&body, binary.LittleEndian, pos)
	body.WriteByte(byte(len(qname) + 1)) // lReadName
	body.WriteByte(60)                   // mapq
	binary.Write(&body, binary.LittleEndian, uint16(len(cigar)))
	binary.Write(&body, binary.LittleEndian, flag)
	binary.Write(&body, binary.LittleEndian, int32(-1)) // nextRefID: unmapped mate
	binary.Write(&body, binary.LittleEndian, int32(0))  // nextPos
	binary.Write(&body, binary.LittleEndian, int32(0))  // tlen
	body.WriteString(qname)
	body.WriteByte(0)
	for _, op := range cigar {
		code := bytes.IndexByte(cigarOps, op.Op)
		packed := uint32(op.Len)<<4 | uint32(code)
		binary.Write(&body, binary.LittleEndian, packed)
	}

	binary.Write(buf, binary.LittleEndian, int32(body.Len()))
	buf.Write(body.Bytes())
}

func openTestReader(t *testing.T, buf *bytes.Buffer) *Reader {
	r, err := Open(nopCloser{buf}, hit.Config{MinFlankLength: 3, MaxNumCigar: 10})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

func TestOpenReadsHeaderAndReferences(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, "chr1", 1000)
	r := openTestReader(t, &buf)
	refs := r.References()
	if len(refs) != 1 || refs[0].Name != "chr1" || refs[0].Length != 1000 {
		t.Fatalf("References() = %+v, want [{chr1 1000}]", refs)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("XXXX")
	if _, err := Open(nopCloser{&buf}, hit.Config{}); err == nil {
		t.Error("expected an error for bad magic")
	}
}

func TestNextParsesRecordsInOrder(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, "chr1", 1000)
	writeRecord(&buf, 0, 100, "read1", 0, []hit.CigarOp{{Op: 'M', Len: 50}})
	writeRecord(&buf, 0, 150, "read2", 0, []hit.CigarOp{{Op: 'M', Len: 50}, {Op: 'N', Len: 100}, {Op: 'M', Len: 50}})
	r := openTestReader(t, &buf)

	h1, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if h1.Pos != 100 || h1.QName != "read1" {
		t.Errorf("h1 = %+v", h1)
	}
	if string(*h1.Chrom) != "chr1" {
		t.Errorf("h1.Chrom = %q, want chr1", *h1.Chrom)
	}

	h2, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if h2.Rpos != 350 {
		t.Errorf("h2.Rpos = %d, want 350", h2.Rpos)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("third Next() = %v, want io.EOF", err)
	}
}

func TestNextDetectsUnsortedInput(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, "chr1", 1000)
	writeRecord(&buf, 0, 200, "a", 0, []hit.CigarOp{{Op: 'M', Len: 10}})
	writeRecord(&buf, 0, 100, "b", 0, []hit.CigarOp{{Op: 'M', Len: 10}})
	r := openTestReader(t, &buf)

	if _, err := r.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, err := r.Next(); err != ErrUnsorted {
		t.Errorf("second Next() = %v, want ErrUnsorted", err)
	}
}

func TestNextRejectsOversizedCigar(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, "chr1", 1000)
	cigar := make([]hit.CigarOp, 20)
	for i := range cigar {
		cigar[i] = hit.CigarOp{Op: 'M', Len: 1}
	}
	writeRecord(&buf, 0, 0, "toolong", 0, cigar)
	r, err := Open(nopCloser{&buf}, hit.Config{MaxNumCigar: 5})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.Next(); err == nil {
		t.Error("expected a MalformedAlignment error for a CIGAR exceeding max_num_cigar")
	}
}
