package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/marketloop/pathfinder/internal/artifact"
	"github.com/marketloop/pathfinder/internal/classify"
	"github.com/marketloop/pathfinder/internal/config"
	"github.com/marketloop/pathfinder/internal/lexicon"
	"github.com/marketloop/pathfinder/internal/network"
	"github.com/marketloop/pathfinder/internal/resumestore"
	"github.com/marketloop/pathfinder/internal/scheduler"
	"github.com/marketloop/pathfinder/internal/stopper"
	"github.com/marketloop/pathfinder/pkg/logging"
)

const (
	artifactFileName = "lexicon_network_paths.net"
	settingsFileName = "search_stop_settings.json"
	resumeDBFileName = "resume.db"
	runIDFileName    = "run_id.txt"
	chunkPartGlob    = "chunk-*.net.part"
)

// chunkPartPath names the part file a chunk's freshly classified bundles are
// written to before being folded into the main artifact. If a crash happens
// between writing this file and re-saving the main artifact, the chunk's
// work survives on disk and "network merge-into-network" recovers it.
func chunkPartPath(outDir, runID string, chunkIndex int) string {
	return filepath.Join(outDir, fmt.Sprintf("chunk-%s-%04d.net.part", runID, chunkIndex))
}

func runNetwork(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	log := logging.Default().Component("cli")

	switch args[0] {
	case "generate":
		networkGenerate(log, args[1:])
	case "resume":
		networkResume(log, args[1:])
	case "merge-into-network":
		networkMerge(log, args[1:])
	case "print-all-paths":
		networkPrintAllPaths(args[1:])
	case "print-stats":
		networkPrintStats(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "pathfinder network: unknown subcommand %q\n", args[0])
		usage()
		os.Exit(1)
	}
}

func networkGenerate(log *logging.Logger, args []string) {
	// config.Load seeds a default generation config under out_dir on first
	// run; CLI flags default to its values and override them when given
	// explicitly.
	fs := flag.NewFlagSet("network generate", flag.ExitOnError)
	cfgPeek := peekConfig(args)

	maxLevel := fs.Uint("l", uint(cfgPeek.Search.MaxLevel), "max search level")
	ignoreCycles := fs.Bool("c", cfgPeek.Search.IgnoreCycles, "ignore cyclic sub-walks")
	maxTransfers := fs.Int("t", cfgPeek.Search.MaxTransfers, "max transfers per walk")
	chunkSize := fs.Int("chunk-size", cfgPeek.ChunkSize, "target chunk size")
	workers := fs.Int("workers", cfgPeek.Workers, "parallel workers (0 = unbounded)")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder network generate <lexicon.lex> <out_dir> [-l max_level] [-c allow_cycles] [-t max_transfers] [--chunk-size N] [--workers N]")
		os.Exit(1)
	}
	lexPath, outDir := rest[0], rest[1]

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatal("failed to create out dir", "error", err)
	}

	lex := loadLexicon(log, lexPath)
	settings := stopper.New(uint8(*maxLevel), *ignoreCycles, *maxTransfers)

	cfg := cfgPeek
	cfg.Search = settings
	cfg.ChunkSize = *chunkSize
	cfg.Workers = *workers
	cfg.DataDir = outDir
	if err := cfg.Save(config.ConfigPath(outDir)); err != nil {
		log.Fatal("failed to persist generation config", "error", err)
	}

	runID := resumestore.NewRunID()
	if err := os.WriteFile(filepath.Join(outDir, runIDFileName), []byte(runID), 0644); err != nil {
		log.Fatal("failed to persist run id", "error", err)
	}

	runGeneration(log, lex, settings, outDir, runID, *chunkSize, *workers)
}

func networkResume(log *logging.Logger, args []string) {
	fs := flag.NewFlagSet("network resume", flag.ExitOnError)
	cfgPeek := peekConfig(args)
	chunkSize := fs.Int("chunk-size", cfgPeek.ChunkSize, "target chunk size")
	workers := fs.Int("workers", cfgPeek.Workers, "parallel workers (0 = unbounded)")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder network resume <out_dir> [--chunk-size N] [--workers N]")
		os.Exit(1)
	}
	outDir := rest[0]

	net := loadArtifact(log, outDir)
	runIDBytes, err := os.ReadFile(filepath.Join(outDir, runIDFileName))
	if err != nil {
		log.Fatal("failed to read run id; cannot resume without a prior 'network generate'", "error", err)
	}
	runID := string(runIDBytes)

	runGeneration(log, net.Lexicon, net.Settings, outDir, runID, *chunkSize, *workers)
}

// peekConfig loads (or seeds) the generation config for the out_dir named
// in args, ahead of flag parsing, so flag defaults can be drawn from it.
// out_dir is always the last positional argument on both "generate" and
// "resume".
func peekConfig(args []string) *config.GenerationConfig {
	outDir := "."
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] != "" && args[i][0] != '-' {
			outDir = args[i]
			break
		}
	}
	cfg, err := config.Load(outDir)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// runGeneration drives the chunked, resumable generation loop shared by
// "network generate" and "network resume": every chunk of targets is
// searched, classified, merged into the on-disk artifact, and marked done
// in the resume store before moving to the next chunk, so an interruption
// loses at most one in-flight chunk (spec.md §8 Scenario F).
func runGeneration(log *logging.Logger, lex *lexicon.CryptoExchangeLexicon, settings stopper.Settings, outDir, runID string, chunkSize, workers int) {
	store, err := resumestore.Open(filepath.Join(outDir, resumeDBFileName))
	if err != nil {
		log.Fatal("failed to open resume store", "error", err)
	}
	defer store.Close()

	if err := os.WriteFile(filepath.Join(outDir, settingsFileName), mustJSON(settings), 0644); err != nil {
		log.Fatal("failed to write settings", "error", err)
	}

	net := loadOrNewArtifact(outDir, lex, settings)
	net.Lexicon = lex
	net.Settings = settings

	targets := targetsFromLexicon(lex)
	idx := network.New()
	for exID, pairs := range lex.ExchangeCurrencyPairs {
		cps := make([]lexicon.CurrencyPair, 0, len(pairs))
		for p := range pairs {
			cps = append(cps, p)
		}
		idx.AddPairs(exID, cps)
	}
	idx.Finalize()

	chunks := scheduler.Chunks(targets, chunkSize)
	counter := &scheduler.ProcessedCounter{}

	for i, chunk := range chunks {
		pending, err := store.Pending(runID, chunk)
		if err != nil {
			log.Fatal("failed to compute pending targets", "error", err)
		}
		if len(pending) == 0 {
			continue
		}

		results, err := scheduler.ParallelCollect(idx, settings, pending, workers, counter)
		if err != nil {
			log.Fatal("generation failed", "error", err)
		}

		chunkNet := artifact.New(lex, settings)
		for _, target := range pending {
			bundle := classify.Bundle{}
			for _, path := range results[target] {
				if err := classify.Classify(&bundle, path); err != nil {
					log.Warn("malformed walk skipped", "target", target, "error", err)
					continue
				}
			}
			classify.DedupTx3(&bundle)
			classify.DedupTx5(&bundle)
			net.Put(target, bundle)
			chunkNet.Put(target, bundle)
		}

		partPath := chunkPartPath(outDir, runID, i)
		if err := saveArtifact(partPath, chunkNet); err != nil {
			log.Fatal("failed to persist chunk part", "error", err)
		}

		for _, target := range pending {
			if err := store.MarkDone(runID, target); err != nil {
				log.Fatal("failed to mark target done", "error", err)
			}
		}

		if err := saveArtifact(filepath.Join(outDir, artifactFileName), net); err != nil {
			log.Fatal("failed to persist artifact", "error", err)
		}
		if err := os.Remove(partPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to clean up merged chunk part", "path", partPath, "error", err)
		}
		log.Info("chunk complete", "chunk", i+1, "of", len(chunks), "processed", counter.Load())
	}

	log.Info("generation complete", "targets", len(targets), "out", filepath.Join(outDir, artifactFileName))
}

// networkMerge folds any chunk part files left behind by an interrupted
// "network generate"/"resume" run into the main artifact: a crash between
// writing a chunk's part file and re-saving the main artifact leaves that
// chunk's results recoverable only from its part file (runGeneration).
func networkMerge(log *logging.Logger, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder network merge-into-network <out_dir>")
		os.Exit(1)
	}
	outDir := args[0]

	matches, _ := filepath.Glob(filepath.Join(outDir, chunkPartGlob))
	sort.Strings(matches)
	if len(matches) == 0 {
		log.Info("merge complete", "parts_merged", 0)
		return
	}

	net := loadOrEmptyArtifact(outDir)
	merged := 0
	for _, partPath := range matches {
		part := &artifact.Network{}
		data, err := os.ReadFile(partPath)
		if err != nil {
			log.Warn("failed to read partial artifact, skipping", "path", partPath, "error", err)
			continue
		}
		if err := json.Unmarshal(data, part); err != nil {
			log.Warn("failed to parse partial artifact, skipping", "path", partPath, "error", err)
			continue
		}
		if net.Lexicon == nil {
			net.Lexicon = part.Lexicon
			net.Settings = part.Settings
		}
		for _, target := range part.OrderedTargets() {
			net.Put(target, part.PerTarget[target])
		}
		merged++
	}

	if err := saveArtifact(filepath.Join(outDir, artifactFileName), net); err != nil {
		log.Fatal("failed to persist merged artifact", "error", err)
	}
	for _, partPath := range matches {
		if err := os.Remove(partPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove merged chunk part", "path", partPath, "error", err)
		}
	}
	log.Info("merge complete", "parts_merged", merged)
}

func networkPrintAllPaths(args []string) {
	fs := flag.NewFlagSet("network print-all-paths", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder network print-all-paths <out_dir> [--json]")
		os.Exit(1)
	}
	net := loadArtifact(nil, rest[0])

	if *asJSON {
		printJSON(net)
		return
	}
	for _, target := range net.OrderedTargets() {
		bundle := net.PerTarget[target]
		fmt.Printf("%s:\n", target)
		printBucket("tr_7", bundle.Tr7)
		printBucket("tr_11", bundle.Tr11)
		printTxBucket("tx3", bundle.Tx3)
		printTxBucket("tx5", bundle.Tx5)
		printBucket("unknown", bundle.Unknown)
	}
}

func printBucket(name string, paths [][]lexicon.Operation) {
	for _, path := range paths {
		fmt.Printf("  [%s] ", name)
		for i, op := range path {
			if i > 0 {
				fmt.Print(" -> ")
			}
			fmt.Print(op.String())
		}
		fmt.Println()
	}
}

func printTxBucket(name string, paths [][]lexicon.CurrencyPair) {
	for _, pairs := range paths {
		fmt.Printf("  [%s] ", name)
		for i, p := range pairs {
			if i > 0 {
				fmt.Print(" -> ")
			}
			fmt.Print(p.String())
		}
		fmt.Println()
	}
}

func networkPrintStats(args []string) {
	fs := flag.NewFlagSet("network print-stats", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "machine-readable output")
	fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathfinder network print-stats <out_dir> [--json]")
		os.Exit(1)
	}
	net := loadArtifact(nil, rest[0])
	stats := net.Stats()

	if *asJSON {
		printJSON(stats)
		return
	}
	for _, target := range net.OrderedTargets() {
		s := stats[target]
		fmt.Printf("%s: tr_7=%d tr_11=%d tx3=%d tx5=%d unknown=%d size=%dB\n",
			target, s.Tr7Paths, s.Tr11Paths, s.Tx3Paths, s.Tx5Paths, s.UnknownPaths, s.EstimatedSizeBytes)
	}
}

func targetsFromLexicon(lex *lexicon.CryptoExchangeLexicon) []lexicon.ExchangeCurrency {
	seen := make(map[lexicon.ExchangeCurrency]struct{})
	var targets []lexicon.ExchangeCurrency
	for exID, pairs := range lex.ExchangeCurrencyPairs {
		for p := range pairs {
			for _, c := range [2]lexicon.CurrencyID{p.First, p.Second} {
				ec := lexicon.ExchangeCurrency{Exchange: exID, Currency: c}
				if _, ok := seen[ec]; !ok {
					seen[ec] = struct{}{}
					targets = append(targets, ec)
				}
			}
		}
	}
	return targets
}

func loadOrNewArtifact(outDir string, lex *lexicon.CryptoExchangeLexicon, settings stopper.Settings) *artifact.Network {
	path := filepath.Join(outDir, artifactFileName)
	if _, err := os.Stat(path); err != nil {
		return artifact.New(lex, settings)
	}
	net := &artifact.Network{}
	data, err := os.ReadFile(path)
	if err != nil {
		return artifact.New(lex, settings)
	}
	if err := json.Unmarshal(data, net); err != nil {
		return artifact.New(lex, settings)
	}
	if net.PerTarget == nil {
		net.PerTarget = make(map[lexicon.ExchangeCurrency]classify.Bundle)
	}
	return net
}

func loadArtifact(log *logging.Logger, outDir string) *artifact.Network {
	path := filepath.Join(outDir, artifactFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		fail(log, "failed to read artifact", err)
	}
	net := &artifact.Network{}
	if err := json.Unmarshal(data, net); err != nil {
		fail(log, "failed to parse artifact", err)
	}
	return net
}

// loadOrEmptyArtifact loads the main artifact if present, or returns an
// empty one (with a nil Lexicon, filled in by the caller) otherwise.
func loadOrEmptyArtifact(outDir string) *artifact.Network {
	path := filepath.Join(outDir, artifactFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return &artifact.Network{PerTarget: make(map[lexicon.ExchangeCurrency]classify.Bundle)}
	}
	net := &artifact.Network{}
	if err := json.Unmarshal(data, net); err != nil {
		return &artifact.Network{PerTarget: make(map[lexicon.ExchangeCurrency]classify.Bundle)}
	}
	if net.PerTarget == nil {
		net.PerTarget = make(map[lexicon.ExchangeCurrency]classify.Bundle)
	}
	return net
}

func saveArtifact(path string, net *artifact.Network) error {
	data, err := json.Marshal(net)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
