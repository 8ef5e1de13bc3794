// Package network builds the per-exchange adjacency indices the expander
// walks: which currency pairs are tradable on an exchange, and which other
// exchanges a currency can be transferred to.
package network

import "github.com/marketloop/pathfinder/internal/lexicon"

type exchangeHub struct {
	allSupportedPairs        map[lexicon.CurrencyPair]struct{}
	currencyTransactionPairs map[lexicon.CurrencyID]map[lexicon.CurrencyPair]struct{}
	currencyToExchanges      map[lexicon.CurrencyID]map[lexicon.ExchangeID]struct{}
}

func newExchangeHub() *exchangeHub {
	return &exchangeHub{
		allSupportedPairs:        make(map[lexicon.CurrencyPair]struct{}),
		currencyTransactionPairs: make(map[lexicon.CurrencyID]map[lexicon.CurrencyPair]struct{}),
		currencyToExchanges:      make(map[lexicon.CurrencyID]map[lexicon.ExchangeID]struct{}),
	}
}

// Network holds the adjacency indices for every exchange that has had
// pairs added to it. It must be finalized after adding pairs and before any
// search runs against it (spec.md §4 C4).
type Network struct {
	hubs  map[lexicon.ExchangeID]*exchangeHub
	dirty bool
}

// New returns an empty network with no exchanges registered.
func New() *Network {
	return &Network{hubs: make(map[lexicon.ExchangeID]*exchangeHub)}
}

// AddPairs registers cps as tradable on exchange, growing the exchange's
// hub if this is its first pairs. Returns whether the exchange was newly
// registered or any new pair was added, marking the network dirty for the
// next Finalize call when it does (spec.md §4 C4).
func (n *Network) AddPairs(exchange lexicon.ExchangeID, cps []lexicon.CurrencyPair) bool {
	hub, ok := n.hubs[exchange]
	updated := !ok
	if !ok {
		hub = newExchangeHub()
		n.hubs[exchange] = hub
	}
	for _, cp := range cps {
		if _, exists := hub.allSupportedPairs[cp]; !exists {
			hub.allSupportedPairs[cp] = struct{}{}
			updated = true
		}
	}
	if updated {
		n.dirty = true
	}
	return updated
}

// Finalize rebuilds the transaction and transfer adjacency indices from
// the currently registered pairs. It is a no-op when nothing has changed
// since the last call, matching the reference implementation's dirty-flag
// gate (spec.md §4 C4, §9 Open Question).
func (n *Network) Finalize() {
	if !n.dirty {
		return
	}
	n.dirty = false

	for _, hub := range n.hubs {
		currencyTransactionPairs := make(map[lexicon.CurrencyID]map[lexicon.CurrencyPair]struct{})
		for cp := range hub.allSupportedPairs {
			addToSet(currencyTransactionPairs, cp.First, cp)
			addToSet(currencyTransactionPairs, cp.Second, cp)
		}
		hub.currencyTransactionPairs = currencyTransactionPairs
	}

	for exID, hub := range n.hubs {
		currencies := make(map[lexicon.CurrencyID]struct{})
		for cp := range hub.allSupportedPairs {
			currencies[cp.First] = struct{}{}
			currencies[cp.Second] = struct{}{}
		}

		currencyToExchanges := make(map[lexicon.CurrencyID]map[lexicon.ExchangeID]struct{})
		for exID2, hub2 := range n.hubs {
			if exID2 == exID {
				continue
			}
			for cp := range hub2.allSupportedPairs {
				if _, ok := currencies[cp.First]; ok {
					addExchange(currencyToExchanges, cp.First, exID2)
				}
				if _, ok := currencies[cp.Second]; ok {
					addExchange(currencyToExchanges, cp.Second, exID2)
				}
			}
		}
		hub.currencyToExchanges = currencyToExchanges
	}
}

func addToSet(m map[lexicon.CurrencyID]map[lexicon.CurrencyPair]struct{}, c lexicon.CurrencyID, cp lexicon.CurrencyPair) {
	set, ok := m[c]
	if !ok {
		set = make(map[lexicon.CurrencyPair]struct{})
		m[c] = set
	}
	set[cp] = struct{}{}
}

func addExchange(m map[lexicon.CurrencyID]map[lexicon.ExchangeID]struct{}, c lexicon.CurrencyID, ex lexicon.ExchangeID) {
	set, ok := m[c]
	if !ok {
		set = make(map[lexicon.ExchangeID]struct{})
		m[c] = set
	}
	set[ex] = struct{}{}
}

// TransactionPairs returns the tradable pairs for currency c on exchange,
// or nil if there are none.
func (n *Network) TransactionPairs(exchange lexicon.ExchangeID, c lexicon.CurrencyID) map[lexicon.CurrencyPair]struct{} {
	hub, ok := n.hubs[exchange]
	if !ok {
		return nil
	}
	return hub.currencyTransactionPairs[c]
}

// TransferTargets returns the other exchanges currency c could be
// transferred to from exchange, or nil if there are none.
func (n *Network) TransferTargets(exchange lexicon.ExchangeID, c lexicon.CurrencyID) map[lexicon.ExchangeID]struct{} {
	hub, ok := n.hubs[exchange]
	if !ok {
		return nil
	}
	return hub.currencyToExchanges[c]
}

// HasExchange reports whether exchange has any pairs registered.
func (n *Network) HasExchange(exchange lexicon.ExchangeID) bool {
	_, ok := n.hubs[exchange]
	return ok
}
