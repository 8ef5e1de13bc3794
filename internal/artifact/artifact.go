// Package artifact shapes the final, persistable result of a generation run:
// one classified bundle per target, aggregated under the lexicon and search
// settings that produced it, plus a byte-footprint estimate for reporting.
package artifact

import (
	"encoding/json"
	"sort"

	"github.com/marketloop/pathfinder/internal/classify"
	"github.com/marketloop/pathfinder/internal/lexicon"
	"github.com/marketloop/pathfinder/internal/stopper"
)

// Stats reports per-bucket counts and an estimated serialized size for one
// target's classified bundle (spec.md §4.7).
type Stats struct {
	EstimatedSizeBytes int `json:"estimated_size_bytes"`
	Tr7Paths           int `json:"tr_7_paths"`
	Tr11Paths          int `json:"tr_11_paths"`
	Tx3Paths           int `json:"tx_only_3pairs_paths"`
	Tx5Paths           int `json:"tx_only_5pairs_paths"`
	UnknownPaths       int `json:"unknown_paths"`
}

// Rough per-element byte footprints for the fixed-shape variants: an
// Operation carries the widest payload (exchange + side + two currency
// ids), a CurrencyPair just two. These stand in for an exact struct size
// the way the reference implementation's std::mem::size_of does, without
// reaching for unsafe.
const (
	operationSize = 8
	pairSize      = 4
)

// BundleStats computes Stats for one target's classified bundle.
func BundleStats(bundle classify.Bundle) Stats {
	tr7, tr11 := len(bundle.Tr7), len(bundle.Tr11)
	tx3, tx5 := len(bundle.Tx3), len(bundle.Tx5)
	unknown := len(bundle.Unknown)

	size := 0
	for _, p := range bundle.Tr7 {
		size += len(p) * operationSize
	}
	for _, p := range bundle.Tr11 {
		size += len(p) * operationSize
	}
	for _, p := range bundle.Tx3 {
		size += len(p) * pairSize
	}
	for _, p := range bundle.Tx5 {
		size += len(p) * pairSize
	}
	for _, p := range bundle.Unknown {
		size += len(p) * operationSize
	}

	return Stats{
		EstimatedSizeBytes: size,
		Tr7Paths:           tr7,
		Tr11Paths:          tr11,
		Tx3Paths:           tx3,
		Tx5Paths:           tx5,
		UnknownPaths:       unknown,
	}
}

// Network is the top-level artifact: the lexicon and settings that produced
// it, plus every target's classified bundle (spec.md §3 "Artifact").
type Network struct {
	Lexicon   *lexicon.CryptoExchangeLexicon              `json:"lexicon"`
	Settings  stopper.Settings                            `json:"search_stop_settings"`
	PerTarget map[lexicon.ExchangeCurrency]classify.Bundle `json:"-"`
}

// New builds an empty Network artifact for the given lexicon and settings.
func New(lex *lexicon.CryptoExchangeLexicon, settings stopper.Settings) *Network {
	return &Network{
		Lexicon:   lex,
		Settings:  settings,
		PerTarget: make(map[lexicon.ExchangeCurrency]classify.Bundle),
	}
}

// Put records target's classified bundle.
func (n *Network) Put(target lexicon.ExchangeCurrency, bundle classify.Bundle) {
	n.PerTarget[target] = bundle
}

// OrderedTargets returns every target in the artifact sorted by
// ExchangeCurrency, the order spec.md §3 requires for stable output.
func (n *Network) OrderedTargets() []lexicon.ExchangeCurrency {
	targets := make([]lexicon.ExchangeCurrency, 0, len(n.PerTarget))
	for t := range n.PerTarget {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Less(targets[j]) })
	return targets
}

// Stats computes BundleStats for every target, keyed by target. The result
// is a map and carries no order; OrderedTargets gives the sorted keys.
func (n *Network) Stats() map[lexicon.ExchangeCurrency]Stats {
	out := make(map[lexicon.ExchangeCurrency]Stats, len(n.PerTarget))
	for _, target := range n.OrderedTargets() {
		out[target] = BundleStats(n.PerTarget[target])
	}
	return out
}

// perTargetEntry is the wire shape of one (target, bundle) pair, used so
// MarshalJSON can emit PerTarget as an ordered array instead of relying on
// Go's unordered map iteration for a JSON object.
type perTargetEntry struct {
	Target lexicon.ExchangeCurrency `json:"target"`
	Bundle classify.Bundle          `json:"bundle"`
}

type networkWire struct {
	Lexicon   *lexicon.CryptoExchangeLexicon `json:"lexicon"`
	Settings  stopper.Settings               `json:"search_stop_settings"`
	PerTarget []perTargetEntry               `json:"per_target"`
}

// MarshalJSON serializes the artifact with PerTarget as an ExchangeCurrency-
// ordered array, keeping output stable across runs (spec.md §3).
func (n *Network) MarshalJSON() ([]byte, error) {
	wire := networkWire{
		Lexicon:  n.Lexicon,
		Settings: n.Settings,
	}
	for _, target := range n.OrderedTargets() {
		wire.PerTarget = append(wire.PerTarget, perTargetEntry{Target: target, Bundle: n.PerTarget[target]})
	}
	return json.Marshal(wire)
}

// UnmarshalJSON restores an artifact written by MarshalJSON.
func (n *Network) UnmarshalJSON(data []byte) error {
	var wire networkWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	n.Lexicon = wire.Lexicon
	n.Settings = wire.Settings
	n.PerTarget = make(map[lexicon.ExchangeCurrency]classify.Bundle, len(wire.PerTarget))
	for _, entry := range wire.PerTarget {
		n.PerTarget[entry.Target] = entry.Bundle
	}
	return nil
}
