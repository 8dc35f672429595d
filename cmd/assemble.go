package cmd

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/exascience/scallop/bamio"
	"github.com/exascience/scallop/bundle"
	"github.com/exascience/scallop/config"
	"github.com/exascience/scallop/gtfwriter"
	"github.com/exascience/scallop/scallop"
	"github.com/exascience/scallop/utils"
)

// AssembleHelp is the help string for the assemble command.
const AssembleHelp = "assemble parameters:\n" +
	"scallop assemble input-file output-file\n" +
	"[--library-type unstranded | fr-first | fr-second]\n" +
	"[--min-flank-length n]\n" +
	"[--min-splice-boundary-hits n]\n" +
	"[--min-bundle-gap n]\n" +
	"[--ignore-single-exon-transcripts]\n" +
	"[--min-transcript-length n]\n" +
	"[--average-read-length n]\n" +
	"[--max-num-cigar n]\n" +
	"[--algo name]\n" +
	"[--debug]\n" +
	"[--log-path path]\n"

// Assemble implements the scallop assemble command: bamio.Reader →
// bundle streaming builder → scallop.Driver → gtfwriter.Writer (§6).
// It returns a non-nil error on malformed input or an unrecoverable
// solver failure, which main.go maps to a non-zero exit code (§6).
func Assemble() error {
	cfg := config.Default()

	var logPath string
	var flags flag.FlagSet
	flags.StringVar(&cfg.LibraryType, "library-type", cfg.LibraryType, "unstranded, fr-first, or fr-second")
	flags.IntVar(&cfg.MinFlankLength, "min-flank-length", cfg.MinFlankLength, "minimum flank length on either side of a splice")
	flags.IntVar(&cfg.MinSpliceBoundaryHits, "min-splice-boundary-hits", cfg.MinSpliceBoundaryHits, "junction support threshold")
	flags.IntVar(&cfg.MinBundleGap, "min-bundle-gap", cfg.MinBundleGap, "gap that ends a bundle")
	flags.BoolVar(&cfg.IgnoreSingleExonTranscripts, "ignore-single-exon-transcripts", cfg.IgnoreSingleExonTranscripts, "drop junction-free bundles")
	flags.IntVar(&cfg.MinTranscriptLength, "min-transcript-length", cfg.MinTranscriptLength, "discard shorter transcripts")
	flags.IntVar(&cfg.AverageReadLength, "average-read-length", cfg.AverageReadLength, "used for output coverage normalization")
	flags.IntVar(&cfg.MaxNumCigar, "max-num-cigar", cfg.MaxNumCigar, "upper bound on CIGAR operations per record")
	flags.StringVar(&cfg.Algo, "algo", cfg.Algo, "source tag written into output records")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug-only invariant assertions")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(flags, 4, AssembleHelp)

	inputName := getFilename(os.Args[2], AssembleHelp)
	outputName := getFilename(os.Args[3], AssembleHelp)

	if logPath != "" {
		setLogOutput(logPath)
	}

	hitCfg, err := cfg.AsHit()
	if err != nil {
		return err
	}

	in, err := os.Open(inputName)
	if err != nil {
		return err
	}
	reader, err := bamio.Open(in, hitCfg)
	if err != nil {
		in.Close()
		return err
	}
	defer reader.Close()

	out, err := os.Create(outputName)
	if err != nil {
		return err
	}
	writer := gtfwriter.Create(out)
	writer.Algo = cfg.Algo
	writer.AverageReadLength = float64(cfg.AverageReadLength)
	defer writer.Close()

	return runAssembly(reader, writer, cfg)
}

// runAssembly wires the streaming bundle builder to scallop.Driver.Run
// exactly as SPEC_FULL.md's cmd module describes: one goroutine builds
// bundles off the alignment stream and feeds them into a channel,
// while scallop.Driver.Run assembles them (possibly in parallel, per
// §5) and hands finished transcripts to the sink in bundle order.
func runAssembly(reader *bamio.Reader, writer *gtfwriter.Writer, cfg config.Config) error {
	bundles := make(chan *bundle.Bundle, 64)
	readErrCh := make(chan error, 1)

	go func() {
		readErrCh <- streamBundles(reader, cfg, bundles)
		close(bundles)
	}()

	driver := scallop.NewDriver(cfg.AsScallop())
	sinkErr := driver.Run(bundles, func(res scallop.BundleResult) error {
		return writer.WriteBundle(res.Bundle.Chrom, res.Bundle.Strand, res.Paths)
	})

	if readErr := <-readErrCh; readErr != nil {
		return readErr
	}
	return sinkErr
}

// streamBundles reads hits off reader in order, grouping them into
// bundles per §3's lifecycle ("a bundle is flushed when the next hit's
// pos exceeds its right boundary") and per chromosome, and sends each
// finished bundle on bundles. A *hit.MalformedAlignment or
// bamio.ErrUnsorted is a MalformedInput error (§7): the stream is
// aborted and the error is returned to the caller.
func streamBundles(reader *bamio.Reader, cfg config.Config, bundles chan<- *bundle.Bundle) error {
	bundleCfg := cfg.AsBundle()
	var builder *bundle.Builder
	var curChrom utils.Symbol

	flush := func() {
		if builder != nil && !builder.Empty() {
			bundles <- builder.Build()
		}
	}

	for {
		h, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			flush()
			return err
		}
		if builder == nil || curChrom != h.Chrom || builder.ShouldFlush(h.Pos) {
			flush()
			builder = bundle.NewBuilder(bundleCfg, h.Chrom)
			curChrom = h.Chrom
		}
		if err := builder.Add(h); err != nil {
			flush()
			return err
		}
	}
	flush()
	return nil
}
