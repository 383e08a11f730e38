package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/packr/packr/codec"
	"github.com/packr/packr/compress"
	"github.com/packr/packr/jsonevents"
)

// runBench encodes each record as a PACKR frame (LZ77-wrapped only when
// -lz77 is set), then recompresses that whole frame with every
// general-purpose codec the module
// links against, to show how much headroom is left after the structural
// encoding. This is a comparison tool, not a wire format: none of these
// recompressed results are themselves valid PACKR frames.
func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	cf := newCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, names, err := readInputs(fs.Args())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "file\trecord\traw\tpackr\tlz4\ts2\tzstd")

	enc := codec.NewEncoder(cf.options()...)
	for fi, data := range inputs {
		for ri, rec := range splitRecords(data) {
			frame, err := enc.Encode(jsonevents.New(rec))
			if err != nil {
				return fmt.Errorf("%s record %d: %w", names[fi], ri, err)
			}

			row, err := benchRow(rec, frame)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
				names[fi], ri, row.raw, row.packr, row.lz4, row.s2, row.zstd)
		}
	}

	return tw.Flush()
}

type benchSizes struct {
	raw, packr, lz4, s2, zstd int
}

func benchRow(raw, frame []byte) (benchSizes, error) {
	row := benchSizes{raw: len(raw), packr: len(frame)}

	lz4Out, err := compress.NewLZ4Compressor().Compress(frame)
	if err != nil {
		return row, err
	}
	row.lz4 = len(lz4Out)

	s2Out, err := compress.NewS2Compressor().Compress(frame)
	if err != nil {
		return row, err
	}
	row.s2 = len(s2Out)

	zstdOut, err := compress.NewZstdCompressor().Compress(frame)
	if err != nil {
		return row, err
	}
	row.zstd = len(zstdOut)

	return row, nil
}
