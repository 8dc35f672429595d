package bundle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EncodePartialExons writes one tab-separated line per partial exon —
// lpos, rpos, left type, right type, ave, dev — in the same
// line-oriented text style elPrep's vcf/sam writers use. It is the
// format §8's round-trip property exercises: building a bundle,
// encoding its partial-exon set, and decoding it again must yield the
// same set.
func EncodePartialExons(w io.Writer, exons []PartialExon) error {
	bw := bufio.NewWriter(w)
	for _, pe := range exons {
		_, err := fmt.Fprintf(bw, "%d\t%d\t%d\t%d\t%s\t%s\n",
			pe.Lpos, pe.Rpos, pe.LeftType, pe.RightType,
			strconv.FormatFloat(pe.Ave, 'g', -1, 64),
			strconv.FormatFloat(pe.Dev, 'g', -1, 64))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodePartialExons parses the format EncodePartialExons writes.
func DecodePartialExons(r io.Reader) ([]PartialExon, error) {
	scanner := bufio.NewScanner(r)
	var exons []PartialExon
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			return nil, fmt.Errorf("bundle: malformed partial-exon line %q", line)
		}
		lpos, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, err
		}
		rpos, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, err
		}
		leftType, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, err
		}
		rightType, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, err
		}
		ave, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, err
		}
		dev, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, err
		}
		exons = append(exons, PartialExon{
			Lpos: int32(lpos), Rpos: int32(rpos),
			LeftType: BoundaryType(leftType), RightType: BoundaryType(rightType),
			Ave: ave, Dev: dev,
		})
	}
	return exons, scanner.Err()
}
