/*
packr reads newline-delimited JSON documents and encodes or decodes them as
PACKR frames.

Usage:

	packr encode [flags] [input_filename...]
	packr decode [flags] [input_filename...]
	packr bench [flags] [input_filename...]

If no input_filename is given, stdin is used. Either way, output is written
to stdout: encode writes one length-prefixed frame per newline-delimited
input record, decode writes one re-serialized JSON line per frame.

When multiple input files are given to encode or decode, each file is
processed concurrently and the results are written out in input order.

The bench subcommand encodes each input record as a PACKR frame and
additionally recompresses that whole frame with LZ4, S2 and Zstd, printing a size
comparison table to stderr.

General Flags:

-lz77
	wrap the frame in the built-in LZ77 envelope
-maxrows
	streaming batch row threshold (also settable via PACKR_MAX_BATCH_ROWS)
-maxbytes
	streaming batch byte threshold (also settable via PACKR_MAX_BATCH_BYTES)
*/
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "packr: "+err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "encode":
		return runEncode(args[1:])
	case "decode":
		return runDecode(args[1:])
	case "bench":
		return runBench(args[1:])
	case "-h", "-help", "--help", "help":
		flag.CommandLine.SetOutput(os.Stderr)
		fmt.Fprintln(os.Stderr, "usage: packr encode|decode|bench [flags] [input_filename...]")

		return nil
	default:
		return errUsage
	}
}

var errUsage = fmt.Errorf("usage: packr encode|decode|bench [flags] [input_filename...]")
