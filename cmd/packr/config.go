package main

import (
	"flag"

	"github.com/packr/packr/codec"
	"github.com/xyproto/env/v2"
)

// commonFlags holds the flag values shared by encode/decode/bench. Defaults
// come from the environment first (PACKR_MAX_BATCH_ROWS, PACKR_MAX_BATCH_BYTES,
// PACKR_LZ77) so a deployment can pin batch thresholds without touching the
// invocation, and flags on the command line override those.
type commonFlags struct {
	lz77     *bool
	maxRows  *int
	maxBytes *int
}

func newCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		lz77:     fs.Bool("lz77", env.Bool("PACKR_LZ77"), "wrap the frame in the LZ77 envelope"),
		maxRows:  fs.Int("maxrows", env.Int("PACKR_MAX_BATCH_ROWS", codec.DefaultMaxBatchRows), "streaming batch row threshold"),
		maxBytes: fs.Int("maxbytes", env.Int("PACKR_MAX_BATCH_BYTES", codec.DefaultMaxBatchBytes), "streaming batch byte threshold"),
	}
}

func (c *commonFlags) options() []codec.Option {
	opts := []codec.Option{
		codec.WithMaxBatchRows(*c.maxRows),
		codec.WithMaxBatchBytes(*c.maxBytes),
	}
	if *c.lz77 {
		opts = append(opts, codec.WithLZ77())
	}

	return opts
}
