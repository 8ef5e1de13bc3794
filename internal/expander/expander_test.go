package expander

import (
	"testing"

	"github.com/marketloop/pathfinder/internal/lexicon"
	"github.com/marketloop/pathfinder/internal/network"
	"github.com/marketloop/pathfinder/internal/stopper"
)

// Currency ids used throughout: A=0, B=1, C=2. Exchange ids: E1=1, E2=2, E3=3.

func TestExpandScenarioATrivialCycle(t *testing.T) {
	net := network.New()
	net.AddPairs(1, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.Finalize()

	settings := stopper.New(2, true, 0)
	paths := Expand(net, settings, lexicon.ExchangeCurrency{Exchange: 1, Currency: 0})

	if len(paths) != 0 {
		t.Fatalf("expected no walks (buy/sell is an inverse cycle), got %d: %v", len(paths), paths)
	}
}

func TestExpandScenarioBTwoExchangeTriangle(t *testing.T) {
	net := network.New()
	net.AddPairs(1, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.AddPairs(2, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.Finalize()

	settings := stopper.New(4, true, 2)
	paths := Expand(net, settings, lexicon.ExchangeCurrency{Exchange: 1, Currency: 0})

	want := []lexicon.Operation{
		lexicon.Balance(lexicon.ExchangeCurrency{Exchange: 1, Currency: 0}),
		lexicon.Transfer(1, 2, 0),
		lexicon.Balance(lexicon.ExchangeCurrency{Exchange: 2, Currency: 0}),
		lexicon.Transaction(2, lexicon.Buy, 0, 1),
		lexicon.Balance(lexicon.ExchangeCurrency{Exchange: 2, Currency: 1}),
		lexicon.Transfer(2, 1, 1),
		lexicon.Balance(lexicon.ExchangeCurrency{Exchange: 1, Currency: 1}),
		lexicon.Transaction(1, lexicon.Sell, 1, 0),
		lexicon.Balance(lexicon.ExchangeCurrency{Exchange: 1, Currency: 0}),
	}

	found := false
	for _, p := range paths {
		if operationsEqual(p, want) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected the length-9 transfer/transaction/transfer/transaction walk among results, got %d paths", len(paths))
	}

	for _, p := range paths {
		if len(p) == 7 {
			if hasTransfer(p) {
				t.Errorf("expected no length-7 walk with a transfer, got %v", p)
			}
		}
	}
}

func TestExpandScenarioCSingleExchangeThreeCycle(t *testing.T) {
	net := network.New()
	net.AddPairs(1, []lexicon.CurrencyPair{{First: 0, Second: 1}, {First: 1, Second: 2}, {First: 0, Second: 2}})
	net.Finalize()

	settings := stopper.New(4, true, 0)
	paths := Expand(net, settings, lexicon.ExchangeCurrency{Exchange: 1, Currency: 0})

	var lenSeven int
	for _, p := range paths {
		if len(p) == 7 {
			lenSeven++
		}
	}
	if lenSeven != 2 {
		t.Errorf("expected exactly 2 length-7 walks, got %d (total paths %d)", lenSeven, len(paths))
	}
}

func TestExpandScenarioETransferCap(t *testing.T) {
	net := network.New()
	net.AddPairs(1, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.AddPairs(2, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.AddPairs(3, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.Finalize()

	settings := stopper.New(6, true, 1)
	paths := Expand(net, settings, lexicon.ExchangeCurrency{Exchange: 1, Currency: 0})

	if len(paths) == 0 {
		t.Fatal("expected at least one walk within a single-transfer budget")
	}
	for _, p := range paths {
		if transferCount(p) > 1 {
			t.Errorf("walk exceeds max_transfers=1: %v", p)
		}
	}
}

func TestExpandInvariantsAlternationAndLength(t *testing.T) {
	net := network.New()
	net.AddPairs(1, []lexicon.CurrencyPair{{First: 0, Second: 1}, {First: 1, Second: 2}})
	net.AddPairs(2, []lexicon.CurrencyPair{{First: 0, Second: 1}})
	net.Finalize()

	settings := stopper.DefaultSettings()
	target := lexicon.ExchangeCurrency{Exchange: 1, Currency: 0}
	paths := Expand(net, settings, target)

	for _, p := range paths {
		if len(p)%2 != 1 {
			t.Errorf("expected odd-length walk, got length %d", len(p))
		}
		if len(p) > 2*int(settings.MaxLevel)+1 {
			t.Errorf("walk length %d exceeds 2*max_level+1", len(p))
		}
		if p[0].Kind != lexicon.KindBalance || p[len(p)-1].Kind != lexicon.KindBalance {
			t.Error("expected walk to start and end with Balance")
		}
		if p[0].AsBalance() != target {
			t.Errorf("expected walk to start at target %v, got %v", target, p[0].AsBalance())
		}
		if p[len(p)-1].AsBalance().Currency != target.Currency {
			t.Errorf("expected walk to end holding target currency, got %v", p[len(p)-1].AsBalance())
		}
		for i, op := range p {
			wantKindBalance := i%2 == 0
			if wantKindBalance && op.Kind != lexicon.KindBalance {
				t.Errorf("position %d: expected Balance, got %v", i, op.Kind)
			}
			if !wantKindBalance && op.Kind == lexicon.KindBalance {
				t.Errorf("position %d: expected Transaction or Transfer, got Balance", i)
			}
		}
		for i := 1; i+2 < len(p); i += 2 {
			if p[i].Kind == lexicon.KindTransfer && p[i+2].Kind == lexicon.KindTransfer {
				t.Error("expected no two transfers in adjacent operation positions")
			}
		}
	}
}

func operationsEqual(a, b []lexicon.Operation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !lexicon.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func hasTransfer(p []lexicon.Operation) bool {
	return transferCount(p) > 0
}

func transferCount(p []lexicon.Operation) int {
	count := 0
	for _, op := range p {
		if op.Kind == lexicon.KindTransfer {
			count++
		}
	}
	return count
}
