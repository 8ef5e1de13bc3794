package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// runUncompress is a thin pass-through stub: the compressed CBOR+LZ4
// serialization layer is out of scope, so this command only documents the
// surface spec.md §6 names. It copies the input to the output verbatim.
func runUncompress(args []string) {
	fs := flag.NewFlagSet("uncompress", flag.ExitOnError)
	in := fs.String("i", "", "input file")
	out := fs.String("o", "", "output file")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: pathfinder uncompress -i <in> -o <out>")
		os.Exit(1)
	}

	src, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uncompress: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	dst, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uncompress: %v\n", err)
		os.Exit(1)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		fmt.Fprintf(os.Stderr, "uncompress: %v\n", err)
		os.Exit(1)
	}
}
