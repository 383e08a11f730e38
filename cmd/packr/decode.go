package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/packr/packr/codec"
	"github.com/packr/packr/document"
	"golang.org/x/sync/errgroup"
)

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	cf := newCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs, names, err := readInputs(fs.Args())
	if err != nil {
		return err
	}

	perFile := make([][]string, len(inputs))

	group := new(errgroup.Group)
	for i, data := range inputs {
		i, data := i, data
		group.Go(func() error {
			lines, err := decodeFile(data, cf.options())
			if err != nil {
				return fmt.Errorf("%s: %w", names[i], err)
			}
			perFile[i] = lines

			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, lines := range perFile {
		for _, line := range lines {
			if _, err := out.WriteString(line); err != nil {
				return err
			}
			if err := out.WriteByte('\n'); err != nil {
				return err
			}
		}
	}

	return nil
}

// decodeFile splits data into the length-prefixed frames encodeFile
// produced and decodes each back into a JSON line.
func decodeFile(data []byte, opts []codec.Option) ([]string, error) {
	dec := codec.NewDecoder(opts...)
	r := bytes.NewReader(data)

	var lines []string
	for {
		var lenBuf [4]byte
		_, err := io.ReadFull(r, lenBuf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		n := binary.LittleEndian.Uint32(lenBuf[:])
		frame := make([]byte, n)
		if _, err := io.ReadFull(r, frame); err != nil {
			return nil, err
		}

		v, err := dec.Decode(frame)
		if err != nil {
			return nil, err
		}

		lines = append(lines, renderJSON(v))
	}

	return lines, nil
}

func renderJSON(v document.Value) string {
	var buf bytes.Buffer
	writeJSON(&buf, v)

	return buf.String()
}
