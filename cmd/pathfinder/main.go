// Package main provides the pathfinder CLI: build a lexicon from exchange
// symbol listings, generate (or resume) a classified path network from it,
// and print the results.
package main

import (
	"fmt"
	"os"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "lexicon":
		runLexicon(os.Args[2:])
	case "network":
		runNetwork(os.Args[2:])
	case "uncompress":
		runUncompress(os.Args[2:])
	case "version", "--version":
		fmt.Printf("pathfinder %s (commit: %s)\n", version, commit)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "pathfinder: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `pathfinder - exchange path-enumeration engine

Usage:
  pathfinder lexicon generate <in.json> <out.lex> [--fiat a,b] [--stable a,b]
  pathfinder lexicon verify <lexicon.lex> [--json]
  pathfinder lexicon print-all-currencies <lexicon.lex> [--json]
  pathfinder lexicon print-all-exchanges-pairs <lexicon.lex> [--json]
  pathfinder lexicon print-exchanges <lexicon.lex> [--json]
  pathfinder lexicon print-exchange-pairs <lexicon.lex> <exchange> [--json]

  pathfinder network generate <lexicon.lex> <out_dir> [-l max_level] [-c allow_cycles] [-t max_transfers] [--chunk-size N] [--workers N]
  pathfinder network resume <out_dir>
  pathfinder network merge-into-network <out_dir>
  pathfinder network print-all-paths <out_dir>
  pathfinder network print-stats <out_dir>

  pathfinder uncompress -i <in> -o <out>`)
}
