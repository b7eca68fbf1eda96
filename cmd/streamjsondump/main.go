// Command streamjsondump walks a JSON file token by token with
// stream.Reader and prints a trace line per token. It exists to exercise
// the reader end-to-end the way the teacher's example_test.go exercised
// its tree API, not as part of the package's public contract.
package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/mcvoid/stream-json/stream"
)

type traceEntry struct {
	Kind  string
	Path  string
	Value interface{} `json:",omitempty"`
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.json>\n", os.Args[0])
		os.Exit(2)
	}
	if err := dump(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dump(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := stream.NewReader(f, stream.WithStrictness(stream.Lenient))
	defer r.Close()

	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		entry := traceEntry{Kind: kind.String(), Path: r.Path()}
		switch kind {
		case stream.EndDocument:
			pp.Println(entry)
			return nil
		case stream.BeginArray:
			if err := r.BeginArray(); err != nil {
				return err
			}
		case stream.EndArray:
			if err := r.EndArray(); err != nil {
				return err
			}
		case stream.BeginObject:
			if err := r.BeginObject(); err != nil {
				return err
			}
		case stream.EndObject:
			if err := r.EndObject(); err != nil {
				return err
			}
		case stream.Name:
			name, err := r.NextName()
			if err != nil {
				return err
			}
			entry.Value = name
		case stream.String:
			s, err := r.NextString()
			if err != nil {
				return err
			}
			entry.Value = s
		case stream.Number:
			n, err := r.NextDouble()
			if err != nil {
				return err
			}
			entry.Value = n
		case stream.Boolean:
			b, err := r.NextBoolean()
			if err != nil {
				return err
			}
			entry.Value = b
		case stream.Null:
			if err := r.NextNull(); err != nil {
				return err
			}
		}
		pp.Println(entry)
	}
}
