// Package bamio reads the binary sorted alignment format described in
// §6: a sequential header of reference names and lengths, followed by
// length-prefixed records carrying the nine alignment fields plus the
// XS/ts/HI/NH/NM/nM auxiliary tags. It knows nothing about bundles or
// the splice graph; it only turns bytes into *hit.Hit values, in the
// order they arrive.
package bamio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/exascience/scallop/hit"
	"github.com/exascience/scallop/utils"
)

// magic identifies the binary sorted alignment format. Grounded on
// elPrep's own bamMagic check in ParseBamHeader (sam/bam-files.go).
const magic = "SCA1"

// Reference is one entry of the sequence dictionary carried in the
// stream header.
type Reference struct {
	Name   string
	Length int32
}

// Reader is a scoped handle (io.Closer) over one binary alignment
// stream, released at end of stream per §5. It yields *hit.Hit values
// one at a time in the order records appear in the stream, which must
// be ascending by Pos within a chromosome.
type Reader struct {
	rc         io.ReadCloser
	cfg        hit.Config
	references []Reference

	lenBuf []byte
	buf    []byte

	haveLast  bool
	lastChrom utils.Symbol
	lastPos   int32
}

// Open reads the stream header from rc (magic, then the sequence
// dictionary) and returns a Reader positioned at the first record.
// cfg governs how records are turned into Hits (library type, flank
// length, CIGAR cap).
func Open(rc io.ReadCloser, cfg hit.Config) (*Reader, error) {
	r := &Reader{rc: rc, cfg: cfg, lenBuf: make([]byte, 4)}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	tag := make([]byte, 4)
	if _, err := io.ReadFull(r.rc, tag); err != nil {
		return fmt.Errorf("bamio: reading magic: %v", err)
	}
	if string(tag) != magic {
		return fmt.Errorf("bamio: not a binary sorted alignment stream (bad magic %q)", tag)
	}
	var nRef int32
	if err := binary.Read(r.rc, binary.LittleEndian, &nRef); err != nil {
		return fmt.Errorf("bamio: reading reference count: %v", err)
	}
	name := make([]byte, 0, 64)
	r.references = make([]Reference, nRef)
	for i := range r.references {
		var lName int32
		if err := binary.Read(r.rc, binary.LittleEndian, &lName); err != nil {
			return fmt.Errorf("bamio: reading reference name length: %v", err)
		}
		for cap(name) < int(lName) {
			name = append(name[:cap(name)], 0)
		}
		name = name[:lName]
		if _, err := io.ReadFull(r.rc, name); err != nil {
			return fmt.Errorf("bamio: reading reference name: %v", err)
		}
		var length int32
		if err := binary.Read(r.rc, binary.LittleEndian, &length); err != nil {
			return fmt.Errorf("bamio: reading reference length: %v", err)
		}
		// names are NUL-terminated, same convention as the BAM
		// reference dictionary.
		r.references[i] = Reference{Name: string(name[:len(name)-1]), Length: length}
	}
	return nil
}

// References returns the stream's sequence dictionary.
func (r *Reader) References() []Reference { return r.references }

// Close releases the underlying stream.
func (r *Reader) Close() error { return r.rc.Close() }

// Next parses and returns the next record as a *hit.Hit. It returns
// io.EOF when the stream is exhausted, ErrUnsorted if the record's
// position precedes the previous one on the same chromosome, or a
// *hit.MalformedAlignment if the record's CIGAR violates §4.1's
// invariants.
func (r *Reader) Next() (*hit.Hit, error) {
	if _, err := io.ReadFull(r.rc, r.lenBuf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("bamio: reading record length: %v", err)
	}
	size := int(binary.LittleEndian.Uint32(r.lenBuf))
	for cap(r.buf) < size {
		r.buf = append(r.buf[:cap(r.buf)], 0)
	}
	r.buf = r.buf[:size]
	if _, err := io.ReadFull(r.rc, r.buf); err != nil {
		return nil, fmt.Errorf("bamio: reading record body: %v", err)
	}
	h, err := r.parseRecord(r.buf)
	if err != nil {
		return nil, err
	}
	if r.haveLast && h.Chrom == r.lastChrom && h.Pos < r.lastPos {
		return nil, ErrUnsorted
	}
	r.lastChrom, r.lastPos, r.haveLast = h.Chrom, h.Pos, true
	return h, nil
}

// Fixed byte offsets of a record's scalar fields, grounded on
// sam/bam-files.go's refIDIndex..readNameIndex table but scoped to the
// fields §6 actually names (no SEQ/QUAL).
const (
	refIDIndex     = 0
	posIndex       = 4
	lReadNameIndex = 8
	mapqIndex      = 9
	nCigarOpIndex  = 10
	flagIndex      = 12
	nextRefIDIndex = 14
	nextPosIndex   = 18
	tlenIndex      = 22
	readNameIndex  = 26
)

var cigarOps = []byte("MIDNSHP=X")

var (
	symXS = utils.Intern("XS")
	symTS = utils.Intern("ts")
	symHI = utils.Intern("HI")
	symNH = utils.Intern("NH")
	symNM = utils.Intern("NM")
	symnM = utils.Intern("nM")
)

func (r *Reader) parseRecord(record []byte) (*hit.Hit, error) {
	refID := int32(binary.LittleEndian.Uint32(record[refIDIndex : refIDIndex+4]))
	var chrom utils.Symbol
	if refID >= 0 && int(refID) < len(r.references) {
		chrom = utils.Intern(r.references[refID].Name)
	} else {
		chrom = utils.Intern("*")
	}

	pos := int32(binary.LittleEndian.Uint32(record[posIndex : posIndex+4]))
	lReadName := int(record[lReadNameIndex])
	mapq := record[mapqIndex]
	nCigarOp := binary.LittleEndian.Uint16(record[nCigarOpIndex : nCigarOpIndex+2])
	flag := binary.LittleEndian.Uint16(record[flagIndex : flagIndex+2])
	nextRefID := int32(binary.LittleEndian.Uint32(record[nextRefIDIndex : nextRefIDIndex+4]))
	nextPos := int32(binary.LittleEndian.Uint32(record[nextPosIndex : nextPosIndex+4]))
	tlen := int32(binary.LittleEndian.Uint32(record[tlenIndex : tlenIndex+4]))

	if lReadName == 0 {
		return nil, &hit.MalformedAlignment{Reason: "zero-length read name"}
	}
	qname := string(record[readNameIndex : readNameIndex+lReadName-1])

	index := readNameIndex + lReadName
	cigar := make([]hit.CigarOp, nCigarOp)
	for i := uint16(0); i < nCigarOp; i, index = i+1, index+4 {
		if index+4 > len(record) {
			return nil, &hit.MalformedAlignment{QName: qname, Reason: "truncated CIGAR"}
		}
		packed := binary.LittleEndian.Uint32(record[index : index+4])
		op := byte('?')
		if code := int(packed & 0xF); code < len(cigarOps) {
			op = cigarOps[code]
		}
		cigar[i] = hit.CigarOp{Op: op, Len: int32(packed >> 4)}
	}

	var (
		xs, ts         byte
		haveXS         bool
		hi, nh, nm     int32
		extra          utils.SmallMap
	)
	for index < len(record) {
		if index+3 > len(record) {
			return nil, &hit.MalformedAlignment{QName: qname, Reason: "truncated tag"}
		}
		tag := utils.Intern(string(record[index : index+2]))
		typeByte := record[index+2]
		index += 3
		value, newIndex, err := parseTagValue(record, index, typeByte)
		if err != nil {
			return nil, &hit.MalformedAlignment{QName: qname, Reason: err.Error()}
		}
		index = newIndex
		switch tag {
		case symXS:
			if b, ok := value.(byte); ok {
				xs, haveXS = b, true
			}
		case symTS:
			if b, ok := value.(byte); ok {
				ts = b
			}
		case symHI:
			hi = toInt32(value)
		case symNH:
			nh = toInt32(value)
		case symNM, symnM:
			nm = toInt32(value)
		default:
			extra.Set(tag, value)
		}
	}

	return hit.New(r.cfg, chrom, pos, qname, nextPosAdjust(nextRefID, nextPos), tlen, flag, mapq, cigar, xs, haveXS, ts, hi, nh, nm, extra)
}

// nextPosAdjust maps an unmapped mate (nextRefID < 0) to -1, matching
// the convention the rest of the package uses for "no mate position".
func nextPosAdjust(nextRefID, nextPos int32) int32 {
	if nextRefID < 0 {
		return -1
	}
	return nextPos
}

func toInt32(v interface{}) int32 {
	switch x := v.(type) {
	case int8:
		return int32(x)
	case uint8:
		return int32(x)
	case int16:
		return int32(x)
	case uint16:
		return int32(x)
	case int32:
		return x
	case uint32:
		return int32(x)
	default:
		return 0
	}
}

// parseTagValue reads one optional-field value starting at index,
// dispatching on the BAM-style type byte. Scoped to the scalar types
// §6's tag set actually uses (A, c/C/s/S/i/I, f) plus Z/H/B so that
// tags outside the scoped set can still be skipped without
// desynchronizing the record.
func parseTagValue(record []byte, index int, typeByte byte) (value interface{}, newIndex int, err error) {
	switch typeByte {
	case 'A':
		return record[index], index + 1, nil
	case 'c':
		return int8(record[index]), index + 1, nil
	case 'C':
		return record[index], index + 1, nil
	case 's':
		return int16(binary.LittleEndian.Uint16(record[index : index+2])), index + 2, nil
	case 'S':
		return binary.LittleEndian.Uint16(record[index : index+2]), index + 2, nil
	case 'i':
		return int32(binary.LittleEndian.Uint32(record[index : index+4])), index + 4, nil
	case 'I':
		return binary.LittleEndian.Uint32(record[index : index+4]), index + 4, nil
	case 'f':
		return math.Float32frombits(binary.LittleEndian.Uint32(record[index : index+4])), index + 4, nil
	case 'Z', 'H':
		for end := index; end < len(record); end++ {
			if record[end] == 0 {
				return string(record[index:end]), end + 1, nil
			}
		}
		return nil, -1, fmt.Errorf("missing NUL terminator in optional string field")
	case 'B':
		if index+5 > len(record) {
			return nil, -1, fmt.Errorf("truncated numeric array tag")
		}
		subtype := record[index]
		count := int(int32(binary.LittleEndian.Uint32(record[index+1 : index+5])))
		index += 5
		width := map[byte]int{'c': 1, 'C': 1, 's': 2, 'S': 2, 'i': 4, 'I': 4, 'f': 4}[subtype]
		if width == 0 {
			return nil, -1, fmt.Errorf("unknown numeric array subtype %q", subtype)
		}
		return nil, index + count*width, nil
	default:
		return nil, -1, fmt.Errorf("unknown tag type %q", typeByte)
	}
}
