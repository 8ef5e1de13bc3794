// Package classify projects enumerated walks into the five fixed-shape
// variants the artifact stores, and dedups the reversal-symmetric
// single-exchange loops among them.
package classify

import (
	"errors"
	"fmt"

	"github.com/marketloop/pathfinder/internal/lexicon"
)

// ErrMalformedWalk is returned when a walk fails the alternation invariant
// classification assumes. It is a programming fault, not a data condition,
// and is never silently reclassified into unknown.
var ErrMalformedWalk = errors.New("classify: malformed walk")

// Bucket names which of the five fixed-shape variants a walk landed in.
type Bucket uint8

const (
	BucketTr7 Bucket = iota
	BucketTr11
	BucketTx3
	BucketTx5
	BucketUnknown
)

func (b Bucket) String() string {
	switch b {
	case BucketTr7:
		return "tr_7"
	case BucketTr11:
		return "tr_11"
	case BucketTx3:
		return "tx3"
	case BucketTx5:
		return "tx5"
	default:
		return "unknown"
	}
}

// Bundle is the classified, deduplicated result of one target's walks
// (spec.md §3 ClassifiedTargetPaths).
type Bundle struct {
	Tr7     [][]lexicon.Operation    `json:"tr_7,omitempty"`
	Tr11    [][]lexicon.Operation    `json:"tr_11,omitempty"`
	Tx3     [][]lexicon.CurrencyPair `json:"tx3,omitempty"`
	Tx5     [][]lexicon.CurrencyPair `json:"tx5,omitempty"`
	Unknown [][]lexicon.Operation    `json:"unknown,omitempty"`
}

// Classify sorts one walk into its bucket and appends it to bundle.
// Raw tr_7/tr_11/unknown walks are kept verbatim; tx3/tx5 candidates are
// projected to their pair sequence and appended without dedup — call
// DedupTx3/DedupTx5 once all of a target's walks have been classified.
func Classify(bundle *Bundle, path []lexicon.Operation) error {
	if err := checkAlternation(path); err != nil {
		return err
	}

	length := len(path)
	hasTransfer := containsTransfer(path)

	switch {
	case length == 7 && hasTransfer:
		bundle.Tr7 = append(bundle.Tr7, path)
	case length == 11 && hasTransfer:
		bundle.Tr11 = append(bundle.Tr11, path)
	case length == 7 && singleExchange(path):
		bundle.Tx3 = append(bundle.Tx3, project(path))
	case length == 11 && singleExchange(path):
		bundle.Tx5 = append(bundle.Tx5, project(path))
	default:
		bundle.Unknown = append(bundle.Unknown, path)
	}
	return nil
}

func checkAlternation(path []lexicon.Operation) error {
	if len(path) == 0 || len(path)%2 != 1 {
		return fmt.Errorf("%w: length %d is not odd and positive", ErrMalformedWalk, len(path))
	}
	for i, op := range path {
		wantBalance := i%2 == 0
		if wantBalance && op.Kind != lexicon.KindBalance {
			return fmt.Errorf("%w: position %d expected balance, got %s", ErrMalformedWalk, i, op.Kind)
		}
		if !wantBalance && op.Kind == lexicon.KindBalance {
			return fmt.Errorf("%w: position %d expected transaction or transfer, got balance", ErrMalformedWalk, i)
		}
	}
	return nil
}

func containsTransfer(path []lexicon.Operation) bool {
	for _, op := range path {
		if op.Kind == lexicon.KindTransfer {
			return true
		}
	}
	return false
}

// singleExchange reports whether every operation in path names the same
// exchange. A Transfer fails the check immediately — it always spans two
// exchanges, which disqualifies tx3/tx5 by construction.
func singleExchange(path []lexicon.Operation) bool {
	var exchange lexicon.ExchangeID
	seen := false
	for _, op := range path {
		var e lexicon.ExchangeID
		switch op.Kind {
		case lexicon.KindBalance:
			e = op.AsBalance().Exchange
		case lexicon.KindTransaction:
			e = op.AsTransaction().Exchange
		case lexicon.KindTransfer:
			return false
		}
		if !seen {
			exchange = e
			seen = true
			continue
		}
		if e != exchange {
			return false
		}
	}
	return true
}

// project collapses each Transaction in a single-exchange walk to its
// directionless CurrencyPair: for side=Buy the pair is (from, to), for
// side=Sell it is (to, from) — undoing the Buy/Sell orientation so the
// stored pair matches the lexicon's canonical pair ordering (spec.md §4.6).
func project(path []lexicon.Operation) []lexicon.CurrencyPair {
	var pairs []lexicon.CurrencyPair
	for _, op := range path {
		if op.Kind != lexicon.KindTransaction {
			continue
		}
		tx := op.AsTransaction()
		if tx.Side == lexicon.Buy {
			pairs = append(pairs, lexicon.CurrencyPair{First: tx.CurrencyFrom, Second: tx.CurrencyTo})
		} else {
			pairs = append(pairs, lexicon.CurrencyPair{First: tx.CurrencyTo, Second: tx.CurrencyFrom})
		}
	}
	return pairs
}

// DedupTx3 and DedupTx5 remove reversal-duplicate projected paths from a
// bundle's tx3/tx5 lists: A and B are reversal duplicates iff A[i] == B[N-1-i]
// for every i. Dedup proceeds greedily — pop one, drop every remaining
// reversal match against it, keep the popped — so it commutes with set
// equality and is idempotent (spec.md §8 properties #9, #10).
func DedupTx3(bundle *Bundle) { bundle.Tx3 = dedupReversals(bundle.Tx3) }
func DedupTx5(bundle *Bundle) { bundle.Tx5 = dedupReversals(bundle.Tx5) }

func dedupReversals(paths [][]lexicon.CurrencyPair) [][]lexicon.CurrencyPair {
	remaining := make([][]lexicon.CurrencyPair, len(paths))
	copy(remaining, paths)

	var kept [][]lexicon.CurrencyPair
	for len(remaining) > 0 {
		popped := remaining[0]
		rest := remaining[1:]
		kept = append(kept, popped)

		var next [][]lexicon.CurrencyPair
		for _, candidate := range rest {
			if isReversalOf(popped, candidate) {
				continue
			}
			next = append(next, candidate)
		}
		remaining = next
	}
	return kept
}

func samePairs(a, b []lexicon.CurrencyPair) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isReversalOf(a, b []lexicon.CurrencyPair) bool {
	if len(a) != len(b) {
		return false
	}
	n := len(a)
	for i := 0; i < n; i++ {
		if a[i] != b[n-1-i] {
			return false
		}
	}
	return true
}

// ReconstructTx3 and ReconstructTx5 re-expand a projected pair sequence back
// into its full walks, starting from the target's (exchange, currency).
// Dedup folds a forward/reversed pair of walks into one stored entry, so
// reconstruction hands back both directions (spec.md §4.6 "Reconstruction"),
// collapsing to a single walk only when the pair sequence is its own
// reverse.
func ReconstructTx3(target lexicon.ExchangeCurrency, pairs []lexicon.CurrencyPair) ([][]lexicon.Operation, error) {
	return reconstruct(target, pairs)
}

func ReconstructTx5(target lexicon.ExchangeCurrency, pairs []lexicon.CurrencyPair) ([][]lexicon.Operation, error) {
	return reconstruct(target, pairs)
}

func reconstruct(target lexicon.ExchangeCurrency, pairs []lexicon.CurrencyPair) ([][]lexicon.Operation, error) {
	forward, err := walkPairs(target, pairs)
	if err != nil {
		return nil, err
	}

	reversedPairs := make([]lexicon.CurrencyPair, len(pairs))
	for i, p := range pairs {
		reversedPairs[len(pairs)-1-i] = p
	}
	if samePairs(pairs, reversedPairs) {
		return [][]lexicon.Operation{forward}, nil
	}
	reversed, err := walkPairs(target, reversedPairs)
	if err != nil {
		return nil, err
	}
	return [][]lexicon.Operation{forward, reversed}, nil
}

func walkPairs(target lexicon.ExchangeCurrency, pairs []lexicon.CurrencyPair) ([]lexicon.Operation, error) {
	path := make([]lexicon.Operation, 0, 2*len(pairs)+1)
	exchange := target.Exchange
	currency := target.Currency
	path = append(path, lexicon.Balance(lexicon.ExchangeCurrency{Exchange: exchange, Currency: currency}))

	for _, pair := range pairs {
		op, next, err := lexicon.DeriveTransaction(exchange, currency, pair)
		if err != nil {
			return nil, fmt.Errorf("classify: reconstruction failed: %w", err)
		}
		path = append(path, op)
		currency = next
		path = append(path, lexicon.Balance(lexicon.ExchangeCurrency{Exchange: exchange, Currency: currency}))
	}
	return path, nil
}
