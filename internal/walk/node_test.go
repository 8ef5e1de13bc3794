package walk

import (
	"testing"

	"github.com/marketloop/pathfinder/internal/lexicon"
)

func TestLinearizeRootOnly(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	path := Linearize(root)
	if len(path) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(path))
	}
	if path[0].Kind != lexicon.KindBalance {
		t.Errorf("expected balance at root, got %v", path[0].Kind)
	}
}

func TestLinearizeOrderAndLength(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	tx := ChildOp(root, lexicon.Transaction(1, lexicon.Buy, 10, 20))
	bal := ResultBalance(tx, lexicon.ExchangeCurrency{Exchange: 1, Currency: 20})

	if bal.Level() != 1 {
		t.Fatalf("expected resulting balance to share its op node's level, got %d", bal.Level())
	}

	path := Linearize(bal)
	if len(path) != 3 {
		t.Fatalf("expected 3 operations (length 2*level+1 for level 1), got %d", len(path))
	}
	if path[0].Kind != lexicon.KindBalance || path[1].Kind != lexicon.KindTransaction || path[2].Kind != lexicon.KindBalance {
		t.Errorf("unexpected operation order: %v", path)
	}
}

func TestLinearizeTwoHops(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	tr := ChildOp(root, lexicon.Transfer(1, 2, 10))
	bal1 := ResultBalance(tr, lexicon.ExchangeCurrency{Exchange: 2, Currency: 10})
	tx := ChildOp(bal1, lexicon.Transaction(2, lexicon.Buy, 10, 20))
	bal2 := ResultBalance(tx, lexicon.ExchangeCurrency{Exchange: 2, Currency: 20})

	if bal2.Level() != 2 {
		t.Fatalf("expected level 2 after two hops, got %d", bal2.Level())
	}
	path := Linearize(bal2)
	if len(path) != 5 {
		t.Fatalf("expected length 5, got %d", len(path))
	}
	kinds := []lexicon.OperationKind{path[0].Kind, path[1].Kind, path[2].Kind, path[3].Kind, path[4].Kind}
	want := []lexicon.OperationKind{lexicon.KindBalance, lexicon.KindTransfer, lexicon.KindBalance, lexicon.KindTransaction, lexicon.KindBalance}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], kinds[i])
		}
	}
}

func TestHasCycleDetectsEqual(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	tx := ChildOp(root, lexicon.Transaction(1, lexicon.Buy, 10, 20))

	if !HasCycle(tx, lexicon.Transaction(1, lexicon.Buy, 10, 20)) {
		t.Error("expected cycle for repeated identical transaction")
	}
}

func TestHasCycleDetectsInverse(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	tx := ChildOp(root, lexicon.Transaction(1, lexicon.Buy, 10, 20))

	if !HasCycle(tx, lexicon.Transaction(1, lexicon.Sell, 20, 10)) {
		t.Error("expected cycle for inverse transaction")
	}
}

func TestHasCycleFalseForDistinctOps(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	tx := ChildOp(root, lexicon.Transaction(1, lexicon.Buy, 10, 20))

	if HasCycle(tx, lexicon.Transaction(1, lexicon.Buy, 20, 30)) {
		t.Error("distinct transactions should not register as a cycle")
	}
}

func TestHasCycleIgnoresRootBalance(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	// a balance operation can never equal or invert a transaction/transfer,
	// so walking past the root is always safe regardless of its kind.
	if HasCycle(root, lexicon.Balance(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})) {
		t.Error("root re-visiting its own currency as a fresh balance node is not itself a cycle")
	}
}

func TestTransferCount(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	tr1 := ChildOp(root, lexicon.Transfer(1, 2, 10))
	bal1 := ResultBalance(tr1, lexicon.ExchangeCurrency{Exchange: 2, Currency: 10})
	tr2 := ChildOp(bal1, lexicon.Transfer(2, 3, 10))

	if got := TransferCount(tr2); got != 2 {
		t.Errorf("expected 2 transfers, got %d", got)
	}
	if got := TransferCount(root); got != 0 {
		t.Errorf("expected 0 transfers at root, got %d", got)
	}
}

func TestSharedParentChain(t *testing.T) {
	root := NewRoot(lexicon.ExchangeCurrency{Exchange: 1, Currency: 10})
	childA := ChildOp(root, lexicon.Transaction(1, lexicon.Buy, 10, 20))
	childB := ChildOp(root, lexicon.Transfer(1, 2, 10))

	if childA.Parent() != childB.Parent() {
		t.Error("expected both children to share the same parent node")
	}
}
