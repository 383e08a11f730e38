package main

import (
	"bytes"
	"io"
	"os"
)

// readInputs reads each named file fully into memory, or stdin if names is
// empty. The returned slice preserves input order so encode/decode can match
// output frames back to their source file.
func readInputs(names []string) ([][]byte, []string, error) {
	if len(names) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, nil, err
		}

		return [][]byte{data}, []string{"<stdin>"}, nil
	}

	out := make([][]byte, len(names))
	for i, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, nil, err
		}
		out[i] = data
	}

	return out, names, nil
}

// splitRecords splits data on newlines, skipping blank lines, so a single
// input file can hold many newline-delimited JSON documents.
func splitRecords(data []byte) [][]byte {
	lines := bytes.Split(data, []byte("\n"))
	out := make([][]byte, 0, len(lines))
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		out = append(out, line)
	}

	return out
}
