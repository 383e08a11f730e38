package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/packr/packr/codec"
	"github.com/packr/packr/jsonevents"
	"golang.org/x/sync/errgroup"
)

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	cf := newCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, names, err := readInputs(fs.Args())
	if err != nil {
		return err
	}

	perFile := make([][][]byte, len(inputs))

	group := new(errgroup.Group)
	for i, data := range inputs {
		i, data := i, data
		group.Go(func() error {
			frames, err := encodeFile(data, cf.options())
			if err != nil {
				return fmt.Errorf("%s: %w", names[i], err)
			}
			perFile[i] = frames

			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var lenBuf [4]byte
	for _, frames := range perFile {
		for _, frame := range frames {
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(frame)))
			if _, err := out.Write(lenBuf[:]); err != nil {
				return err
			}
			if _, err := out.Write(frame); err != nil {
				return err
			}
		}
	}

	return nil
}

// encodeFile encodes every newline-delimited JSON record in data into its
// own PACKR frame.
func encodeFile(data []byte, opts []codec.Option) ([][]byte, error) {
	records := splitRecords(data)
	frames := make([][]byte, len(records))

	enc := codec.NewEncoder(opts...)
	for i, rec := range records {
		src := jsonevents.New(rec)
		frame, err := enc.Encode(src)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		frames[i] = frame
	}

	return frames, nil
}
