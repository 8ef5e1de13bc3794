package lexicon

import (
	"encoding/json"
	"sort"
	"strings"
)

// ExchangeSymbolsJson is the per-exchange raw input record: an exchange
// name and its traded symbols, each formatted "BASE/QUOTE". Symbols without
// exactly one '/' are skipped (spec.md §6).
type ExchangeSymbolsJson struct {
	Exchange string   `json:"exchange"`
	Symbols  []string `json:"symbols"`
}

// CryptoExchangeLexicon is the interned catalog: exchange/currency names to
// ids, per-exchange traded pair sets, and the optional fiat/stable-coin
// currency id sets (spec.md §6 GLOSSARY "Lexicon").
type CryptoExchangeLexicon struct {
	exchangeNames []string
	exchangeIDs   map[string]ExchangeID
	currencyNames []string
	currencyIDs   map[string]CurrencyID

	ExchangeCurrencyPairs map[ExchangeID]map[CurrencyPair]struct{} `json:"exchange_currency_pairs"`
	FiatCurrencies        map[CurrencyID]struct{}                  `json:"fiat_currencies"`
	StableCurrencies      map[CurrencyID]struct{}                  `json:"stable_currencies"`
}

// interner assigns ids to names in first-seen order, the Go analogue of
// the Rust string_to_int_mapper crate's StringToIntMapper.
type interner struct {
	names []string
	ids   map[string]int
}

func newInterner() *interner {
	return &interner{ids: make(map[string]int)}
}

func (m *interner) add(name string) int {
	if id, ok := m.ids[name]; ok {
		return id
	}
	id := len(m.names)
	m.names = append(m.names, name)
	m.ids[name] = id
	return id
}

func (m *interner) get(name string) (int, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// BuildLexicon interns exchange and currency names and records per-exchange
// traded pairs from raw exchange symbol entries, per spec.md §6. fiat and
// stable name the optional fiat/stable-coin currencies to record, if they
// appear among the interned currencies.
func BuildLexicon(entries []ExchangeSymbolsJson, fiat, stable []string) *CryptoExchangeLexicon {
	exchanges := newInterner()
	currencies := newInterner()

	type parsedPair struct {
		exchange string
		first    string
		second   string
	}
	var parsed []parsedPair

	for _, entry := range entries {
		exchanges.add(entry.Exchange)
		for _, symbol := range entry.Symbols {
			parts := strings.Split(symbol, "/")
			if len(parts) != 2 {
				continue
			}
			currencies.add(parts[0])
			currencies.add(parts[1])
			parsed = append(parsed, parsedPair{entry.Exchange, parts[0], parts[1]})
		}
	}

	exchangeCurrencyPairs := make(map[ExchangeID]map[CurrencyPair]struct{}, len(exchanges.names))
	for _, p := range parsed {
		exID := ExchangeID(exchanges.ids[p.exchange])
		c1 := CurrencyID(currencies.ids[p.first])
		c2 := CurrencyID(currencies.ids[p.second])
		set, ok := exchangeCurrencyPairs[exID]
		if !ok {
			set = make(map[CurrencyPair]struct{})
			exchangeCurrencyPairs[exID] = set
		}
		set[CurrencyPair{First: c1, Second: c2}] = struct{}{}
	}

	fiatSet := make(map[CurrencyID]struct{})
	for _, name := range fiat {
		if id, ok := currencies.get(name); ok {
			fiatSet[CurrencyID(id)] = struct{}{}
		}
	}
	stableSet := make(map[CurrencyID]struct{})
	for _, name := range stable {
		if id, ok := currencies.get(name); ok {
			stableSet[CurrencyID(id)] = struct{}{}
		}
	}

	exchangeIDs := make(map[string]ExchangeID, len(exchanges.names))
	for name, id := range exchanges.ids {
		exchangeIDs[name] = ExchangeID(id)
	}
	currencyIDs := make(map[string]CurrencyID, len(currencies.names))
	for name, id := range currencies.ids {
		currencyIDs[name] = CurrencyID(id)
	}

	return &CryptoExchangeLexicon{
		exchangeNames:         exchanges.names,
		exchangeIDs:           exchangeIDs,
		currencyNames:         currencies.names,
		currencyIDs:           currencyIDs,
		ExchangeCurrencyPairs: exchangeCurrencyPairs,
		FiatCurrencies:        fiatSet,
		StableCurrencies:      stableSet,
	}
}

// lexiconWire is the JSON wire shape of a lexicon: the interned names in
// assignment order plus the id-keyed indices, so round-tripping through
// JSON recovers both the ids Verify/expand operate on and the names the
// print commands need (spec.md §6 "lexicon.lex... core only requires
// round-trip fidelity").
type lexiconWire struct {
	ExchangeNames         []string                                  `json:"exchange_names"`
	CurrencyNames         []string                                  `json:"currency_names"`
	ExchangeCurrencyPairs map[ExchangeID]map[CurrencyPair]struct{}  `json:"exchange_currency_pairs"`
	FiatCurrencies        map[CurrencyID]struct{}                  `json:"fiat_currencies"`
	StableCurrencies      map[CurrencyID]struct{}                  `json:"stable_currencies"`
}

// MarshalJSON serializes the lexicon including its interned name tables.
func (l *CryptoExchangeLexicon) MarshalJSON() ([]byte, error) {
	return json.Marshal(lexiconWire{
		ExchangeNames:         l.exchangeNames,
		CurrencyNames:         l.currencyNames,
		ExchangeCurrencyPairs: l.ExchangeCurrencyPairs,
		FiatCurrencies:        l.FiatCurrencies,
		StableCurrencies:      l.StableCurrencies,
	})
}

// UnmarshalJSON restores a lexicon written by MarshalJSON.
func (l *CryptoExchangeLexicon) UnmarshalJSON(data []byte) error {
	var wire lexiconWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	l.exchangeNames = wire.ExchangeNames
	l.currencyNames = wire.CurrencyNames
	l.exchangeIDs = make(map[string]ExchangeID, len(wire.ExchangeNames))
	for id, name := range wire.ExchangeNames {
		l.exchangeIDs[name] = ExchangeID(id)
	}
	l.currencyIDs = make(map[string]CurrencyID, len(wire.CurrencyNames))
	for id, name := range wire.CurrencyNames {
		l.currencyIDs[name] = CurrencyID(id)
	}
	l.ExchangeCurrencyPairs = wire.ExchangeCurrencyPairs
	l.FiatCurrencies = wire.FiatCurrencies
	l.StableCurrencies = wire.StableCurrencies
	return nil
}

// ExchangeID returns the id assigned to an exchange name, if known.
func (l *CryptoExchangeLexicon) ExchangeID(name string) (ExchangeID, bool) {
	id, ok := l.exchangeIDs[name]
	return id, ok
}

// CurrencyID returns the id assigned to a currency name, if known.
func (l *CryptoExchangeLexicon) CurrencyID(name string) (CurrencyID, bool) {
	id, ok := l.currencyIDs[name]
	return id, ok
}

// ExchangeName returns the name for an exchange id, or "N/A" if unknown.
func (l *CryptoExchangeLexicon) ExchangeName(id ExchangeID) string {
	if int(id) < len(l.exchangeNames) {
		return l.exchangeNames[id]
	}
	return "N/A"
}

// CurrencyName returns the name for a currency id, or "N/A" if unknown.
func (l *CryptoExchangeLexicon) CurrencyName(id CurrencyID) string {
	if int(id) < len(l.currencyNames) {
		return l.currencyNames[id]
	}
	return "N/A"
}

// CurrencyPairName renders a pair as "base : quote" using interned names.
func (l *CryptoExchangeLexicon) CurrencyPairName(p CurrencyPair) string {
	return l.CurrencyName(p.First) + " : " + l.CurrencyName(p.Second)
}

// AllCurrencyNames returns all interned currency names in assignment order.
func (l *CryptoExchangeLexicon) AllCurrencyNames() []string {
	out := make([]string, len(l.currencyNames))
	copy(out, l.currencyNames)
	return out
}

// AllExchangeNames returns all interned exchange names in assignment order.
func (l *CryptoExchangeLexicon) AllExchangeNames() []string {
	out := make([]string, len(l.exchangeNames))
	copy(out, l.exchangeNames)
	return out
}

// Violation describes one invalid currency pair found by Verify.
type Violation struct {
	Exchange ExchangeID
	Pair     CurrencyPair
	Reason   string
}

// Verify reports every same-currency pair and same-exchange inverse-pair
// duplicate in the lexicon (spec.md §3 invariants, §8 Scenario D). An empty
// result means the lexicon is structurally valid.
func (l *CryptoExchangeLexicon) Verify() []Violation {
	var violations []Violation

	exchangeIDsSorted := make([]ExchangeID, 0, len(l.ExchangeCurrencyPairs))
	for exID := range l.ExchangeCurrencyPairs {
		exchangeIDsSorted = append(exchangeIDsSorted, exID)
	}
	sort.Slice(exchangeIDsSorted, func(i, j int) bool { return exchangeIDsSorted[i] < exchangeIDsSorted[j] })

	for _, exID := range exchangeIDsSorted {
		pairs := l.ExchangeCurrencyPairs[exID]
		pairList := make([]CurrencyPair, 0, len(pairs))
		for p := range pairs {
			pairList = append(pairList, p)
		}
		sort.Slice(pairList, func(i, j int) bool {
			if pairList[i].First != pairList[j].First {
				return pairList[i].First < pairList[j].First
			}
			return pairList[i].Second < pairList[j].Second
		})

		for _, p := range pairList {
			if p.SameCurrencies() {
				violations = append(violations, Violation{Exchange: exID, Pair: p, Reason: "same-currency pair"})
			}
		}
		for i, a := range pairList {
			for _, b := range pairList[i+1:] {
				if IsInversePair(a, b) {
					violations = append(violations, Violation{Exchange: exID, Pair: a, Reason: "inverse-pair duplicate of " + b.String()})
				}
			}
		}
	}
	return violations
}
