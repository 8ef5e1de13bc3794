// Package expander walks a single target's transaction and transfer
// adjacency to enumerate every arbitrage path that returns to the
// target's currency without violating the search-stop policy.
package expander

import (
	"github.com/marketloop/pathfinder/internal/lexicon"
	"github.com/marketloop/pathfinder/internal/network"
	"github.com/marketloop/pathfinder/internal/stopper"
	"github.com/marketloop/pathfinder/internal/walk"
)

// Expand enumerates every walk starting and ending at target's currency,
// reachable within the bounds of settings (spec.md §4 C5).
//
// The seed's isLastTransfer starts false, not true: a literal "no transfer
// has happened yet" rather than "treat the seed as if it were a transfer".
// The latter reading would forbid a transfer as the walk's very first
// operation, which contradicts the two-exchange-triangle walk the scheduler
// is required to find starting from a single balance target.
func Expand(net *network.Network, settings stopper.Settings, target lexicon.ExchangeCurrency) [][]lexicon.Operation {
	root := walk.NewRoot(target)
	leaves := searchFilter(net, settings, false, target.Currency, root)
	paths := make([][]lexicon.Operation, 0, len(leaves))
	for _, leaf := range leaves {
		paths = append(paths, walk.Linearize(leaf))
	}
	return paths
}

// searchFilter returns every leaf balance node reachable from next that
// matches targetCurrency, recursing through transactions (always allowed)
// and transfers (expanded only while isLastTransfer is false). The flag is
// negated on every recursive step, transaction or transfer alike: a
// transfer always hands true to its child, so two transfers never follow
// each other, and a transaction taken while the flag is false also hands
// true to its child, so no transfer is expanded from that balance either.
func searchFilter(net *network.Network, settings stopper.Settings, isLastTransfer bool, targetCurrency lexicon.CurrencyID, next *walk.Node) []*walk.Node {
	var leafs []*walk.Node

	data := next.Balance()
	if targetCurrency == data.Currency && next.Parent() != nil {
		leafs = append(leafs, next)
	}
	if settings.IsStop(next) {
		return leafs
	}

	for pair := range net.TransactionPairs(data.Exchange, data.Currency) {
		op, nextCurrency, err := lexicon.DeriveTransaction(data.Exchange, data.Currency, pair)
		if err != nil {
			// a verified lexicon never produces a same-currency or
			// non-containing pair here; skip defensively rather than panic.
			continue
		}
		txNode := walk.ChildOp(next, op)
		if settings.IsStop(txNode) {
			continue
		}
		balNode := walk.ResultBalance(txNode, lexicon.ExchangeCurrency{Exchange: data.Exchange, Currency: nextCurrency})
		leafs = append(leafs, searchFilter(net, settings, !isLastTransfer, targetCurrency, balNode)...)
	}

	if isLastTransfer {
		return leafs
	}

	for toExchange := range net.TransferTargets(data.Exchange, data.Currency) {
		trNode := walk.ChildOp(next, lexicon.Transfer(data.Exchange, toExchange, data.Currency))
		if settings.IsStop(trNode) {
			continue
		}
		balNode := walk.ResultBalance(trNode, lexicon.ExchangeCurrency{Exchange: toExchange, Currency: data.Currency})
		leafs = append(leafs, searchFilter(net, settings, !isLastTransfer, targetCurrency, balNode)...)
	}

	return leafs
}
