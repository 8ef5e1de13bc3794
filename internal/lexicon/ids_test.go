package lexicon

import (
	"encoding/json"
	"testing"
)

func TestCurrencyPairNextCurrencyAndSide(t *testing.T) {
	pair := CurrencyPair{First: 1, Second: 2}

	next, side, err := pair.NextCurrencyAndSide(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 2 || side != Buy {
		t.Errorf("expected (2, Buy), got (%d, %v)", next, side)
	}

	next, side, err = pair.NextCurrencyAndSide(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 1 || side != Sell {
		t.Errorf("expected (1, Sell), got (%d, %v)", next, side)
	}

	if _, _, err := pair.NextCurrencyAndSide(99); err == nil {
		t.Error("expected error for currency not in pair")
	}
}

func TestCurrencyPairNextCurrencyAndSideSamePair(t *testing.T) {
	pair := CurrencyPair{First: 5, Second: 5}
	if _, _, err := pair.NextCurrencyAndSide(5); err == nil {
		t.Error("expected error for same-currency pair, both bid and sell would hold")
	}
}

func TestIsInversePair(t *testing.T) {
	a := CurrencyPair{First: 1, Second: 2}
	b := CurrencyPair{First: 2, Second: 1}
	c := CurrencyPair{First: 1, Second: 3}

	if !IsInversePair(a, b) {
		t.Error("expected a, b to be inverse pairs")
	}
	if IsInversePair(a, c) {
		t.Error("expected a, c to not be inverse pairs")
	}
	if IsInversePair(a, a) {
		t.Error("a pair is never its own inverse")
	}
}

func TestExchangeCurrencyLess(t *testing.T) {
	a := ExchangeCurrency{Exchange: 1, Currency: 5}
	b := ExchangeCurrency{Exchange: 1, Currency: 6}
	c := ExchangeCurrency{Exchange: 2, Currency: 0}

	if !a.Less(b) {
		t.Error("expected a < b by currency")
	}
	if !b.Less(c) {
		t.Error("expected b < c by exchange")
	}
	if a.Less(a) {
		t.Error("a is not less than itself")
	}
}

func TestSideJSON(t *testing.T) {
	data, err := Buy.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"BUY"` {
		t.Errorf("expected \"BUY\", got %s", data)
	}

	var s Side
	if err := s.UnmarshalJSON([]byte(`"SELL"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != Sell {
		t.Errorf("expected Sell, got %v", s)
	}

	if err := s.UnmarshalJSON([]byte(`"NOPE"`)); err == nil {
		t.Error("expected error for invalid side")
	}
}

func TestCurrencyPairTextRoundTrip(t *testing.T) {
	p := CurrencyPair{First: 12, Second: 345}

	text, err := p.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(text) != "12:345" {
		t.Errorf("expected \"12:345\", got %s", text)
	}

	var got CurrencyPair
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Errorf("expected %v, got %v", p, got)
	}

	var bad CurrencyPair
	if err := bad.UnmarshalText([]byte("not-a-pair")); err == nil {
		t.Error("expected error for malformed text")
	}
}

func TestCurrencyPairAsMapKeyJSON(t *testing.T) {
	m := map[CurrencyPair]int{
		{First: 0, Second: 1}: 10,
		{First: 1, Second: 2}: 20,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var restored map[CurrencyPair]int
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if len(restored) != 2 || restored[CurrencyPair{First: 0, Second: 1}] != 10 || restored[CurrencyPair{First: 1, Second: 2}] != 20 {
		t.Errorf("expected map to round-trip, got %v", restored)
	}
}
