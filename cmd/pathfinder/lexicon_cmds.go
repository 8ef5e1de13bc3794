package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/marketloop/pathfinder/internal/lexicon"
	"github.com/marketloop/pathfinder/pkg/logging"
)

func runLexicon(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	log := logging.Default().Component("cli")

	switch args[0] {
	case "generate":
		lexiconGenerate(log, args[1:])
	case "verify":
		lexiconVerify(log, args[1:])
	case "print-all-currencies":
		lexiconPrintAllCurrencies(args[1:])
	case "print-all-exchanges-pairs":
		lexiconPrintAllExchangesPairs(args[1:])
	case "print-exchanges":
		lexiconPrintExchanges(args[1:])
	case "print-exchange-pairs":
		lexiconPrintExchangePairs(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "pathfinder lexicon: unknown subcommand %q\n", args[0])
		usage()
		os.Exit(1)
	}
}

func lexiconGenerate(log *logging.Logger, args []string) {
	fs := flag.NewFlagSet("lexicon generate", flag.ExitOnError)
	fiat := fs.String("fiat", "", "comma-separated fiat currency names")
	stable := fs.String("stable", "", "comma-separated stablecoin currency names")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder lexicon generate <in.json> <out.lex> [--fiat a,b] [--stable a,b]")
		os.Exit(1)
	}
	inPath, outPath := rest[0], rest[1]

	data, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatal("failed to read input", "error", err)
	}
	var entries []lexicon.ExchangeSymbolsJson
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatal("failed to parse input", "error", err)
	}

	lex := lexicon.BuildLexicon(entries, splitNonEmpty(*fiat), splitNonEmpty(*stable))

	if violations := lex.Verify(); len(violations) > 0 {
		log.Warn("lexicon has violations", "count", len(violations))
		for _, v := range violations {
			log.Warnf("  exchange=%d pair=%s reason=%s", v.Exchange, v.Pair, v.Reason)
		}
	}

	out, err := json.Marshal(lex)
	if err != nil {
		log.Fatal("failed to marshal lexicon", "error", err)
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		log.Fatal("failed to write lexicon", "error", err)
	}
	log.Info("lexicon generated", "exchanges", len(lex.AllExchangeNames()), "currencies", len(lex.AllCurrencyNames()), "out", outPath)
}

func lexiconVerify(log *logging.Logger, args []string) {
	fs := flag.NewFlagSet("lexicon verify", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder lexicon verify <lexicon.lex> [--json]")
		os.Exit(1)
	}

	lex := loadLexicon(log, rest[0])
	violations := lex.Verify()

	if *asJSON {
		printJSON(violations)
		return
	}
	if len(violations) == 0 {
		fmt.Println("lexicon is valid")
		return
	}
	for _, v := range violations {
		fmt.Printf("exchange=%d pair=%s reason=%s\n", v.Exchange, v.Pair, v.Reason)
	}
	os.Exit(1)
}

func lexiconPrintAllCurrencies(args []string) {
	fs := flag.NewFlagSet("lexicon print-all-currencies", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder lexicon print-all-currencies <lexicon.lex> [--json]")
		os.Exit(1)
	}
	lex := loadLexicon(nil, rest[0])
	names := lex.AllCurrencyNames()
	if *asJSON {
		printJSON(names)
		return
	}
	for i, name := range names {
		fmt.Printf("%d: %s\n", i, name)
	}
}

func lexiconPrintAllExchangesPairs(args []string) {
	fs := flag.NewFlagSet("lexicon print-all-exchanges-pairs", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder lexicon print-all-exchanges-pairs <lexicon.lex> [--json]")
		os.Exit(1)
	}
	lex := loadLexicon(nil, rest[0])

	type exchangePairs struct {
		Exchange string   `json:"exchange"`
		Pairs    []string `json:"pairs"`
	}
	var out []exchangePairs
	for _, name := range lex.AllExchangeNames() {
		exID, _ := lex.ExchangeID(name)
		pairs := sortedPairNames(lex, exID)
		out = append(out, exchangePairs{Exchange: name, Pairs: pairs})
	}

	if *asJSON {
		printJSON(out)
		return
	}
	for _, e := range out {
		fmt.Printf("%s:\n", e.Exchange)
		for _, p := range e.Pairs {
			fmt.Printf("  %s\n", p)
		}
	}
}

func lexiconPrintExchanges(args []string) {
	fs := flag.NewFlagSet("lexicon print-exchanges", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder lexicon print-exchanges <lexicon.lex> [--json]")
		os.Exit(1)
	}
	lex := loadLexicon(nil, rest[0])
	names := lex.AllExchangeNames()
	if *asJSON {
		printJSON(names)
		return
	}
	for i, name := range names {
		fmt.Printf("%d: %s\n", i, name)
	}
}

func lexiconPrintExchangePairs(args []string) {
	fs := flag.NewFlagSet("lexicon print-exchange-pairs", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder lexicon print-exchange-pairs <lexicon.lex> <exchange> [--json]")
		os.Exit(1)
	}
	lex := loadLexicon(nil, rest[0])
	exID, ok := lex.ExchangeID(rest[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown exchange %q\n", rest[1])
		os.Exit(1)
	}
	pairs := sortedPairNames(lex, exID)
	if *asJSON {
		printJSON(pairs)
		return
	}
	for _, p := range pairs {
		fmt.Println(p)
	}
}

func sortedPairNames(lex *lexicon.CryptoExchangeLexicon, exID lexicon.ExchangeID) []string {
	set := lex.ExchangeCurrencyPairs[exID]
	names := make([]string, 0, len(set))
	for p := range set {
		names = append(names, lex.CurrencyPairName(p))
	}
	sort.Strings(names)
	return names
}

func loadLexicon(log *logging.Logger, path string) *lexicon.CryptoExchangeLexicon {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(log, "failed to read lexicon file", err)
	}
	var lex lexicon.CryptoExchangeLexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		fail(log, "failed to parse lexicon file", err)
	}
	return &lex
}

func fail(log *logging.Logger, msg string, err error) {
	if log != nil {
		log.Fatal(msg, "error", err)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
