package lexicon

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDerivationCurrencyNotInPair is returned when a transaction is derived
// against a pair that does not contain the incoming balance currency, or
// whose two currencies are equal — both are fatal input-data errors per
// spec.md §4.1 and must not occur for a pair drawn from a verified lexicon.
var ErrDerivationCurrencyNotInPair = errors.New("lexicon: currency not in pair (or pair has equal currencies)")

// OperationKind tags which variant an Operation holds. A closed tagged
// struct, not an interface: the walk carries a sum type of exactly three
// variants, so a switch on the tag replaces open dynamic dispatch
// (spec.md §9 "Trait/polymorphism reduction").
type OperationKind uint8

const (
	KindBalance OperationKind = iota
	KindTransaction
	KindTransfer
)

func (k OperationKind) String() string {
	switch k {
	case KindBalance:
		return "balance"
	case KindTransaction:
		return "transaction"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Operation is one step of a walk: a balance holding, an intra-exchange
// transaction, or an inter-exchange transfer (spec.md §3). Exactly one of
// the payload fields is meaningful, selected by Kind.
type Operation struct {
	Kind        Kind
	balance     ExchangeCurrency
	transaction TransactionInfo
	transfer    TransferInfo
}

// Kind is an alias retained for readability at call sites; see OperationKind.
type Kind = OperationKind

// Balance constructs a Balance operation.
func Balance(ec ExchangeCurrency) Operation {
	return Operation{
		Kind:    KindBalance,
		balance: ec,
	}
}

// Transaction constructs a Transaction operation.
func Transaction(exchange ExchangeID, side Side, from, to CurrencyID) Operation {
	return Operation{
		Kind: KindTransaction,
		transaction: TransactionInfo{
			Exchange:     exchange,
			Side:         side,
			CurrencyFrom: from,
			CurrencyTo:   to,
		},
	}
}

// Transfer constructs a Transfer operation.
func Transfer(withdraw, deposit ExchangeID, currency CurrencyID) Operation {
	return Operation{
		Kind: KindTransfer,
		transfer: TransferInfo{
			WithdrawExchange: withdraw,
			DepositExchange:  deposit,
			Currency:         currency,
		},
	}
}

// TransactionInfo is the payload of a Transaction operation: an intra-
// exchange swap with a side and directional currencies.
type TransactionInfo struct {
	Exchange     ExchangeID `json:"exchange"`
	Side         Side       `json:"side"`
	CurrencyFrom CurrencyID `json:"currency_from"`
	CurrencyTo   CurrencyID `json:"currency_to"`
}

// TransferInfo is the payload of a Transfer operation: a cross-exchange
// move of one currency.
type TransferInfo struct {
	WithdrawExchange ExchangeID `json:"withdraw_exchange"`
	DepositExchange  ExchangeID `json:"deposit_exchange"`
	Currency         CurrencyID `json:"currency"`
}

// operationWire is the JSON wire shape of an Operation: the tag plus
// whichever one payload the tag selects, so a walk round-trips through the
// artifact file without losing the unexported payload fields.
type operationWire struct {
	Kind        Kind              `json:"kind"`
	Balance     *ExchangeCurrency `json:"balance,omitempty"`
	Transaction *TransactionInfo  `json:"transaction,omitempty"`
	Transfer    *TransferInfo     `json:"transfer,omitempty"`
}

// MarshalJSON serializes the operation as its tag plus the one payload Kind
// selects.
func (o Operation) MarshalJSON() ([]byte, error) {
	wire := operationWire{Kind: o.Kind}
	switch o.Kind {
	case KindBalance:
		wire.Balance = &o.balance
	case KindTransaction:
		wire.Transaction = &o.transaction
	case KindTransfer:
		wire.Transfer = &o.transfer
	}
	return json.Marshal(wire)
}

// UnmarshalJSON restores an operation written by MarshalJSON.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var wire operationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	o.Kind = wire.Kind
	switch wire.Kind {
	case KindBalance:
		if wire.Balance != nil {
			o.balance = *wire.Balance
		}
	case KindTransaction:
		if wire.Transaction != nil {
			o.transaction = *wire.Transaction
		}
	case KindTransfer:
		if wire.Transfer != nil {
			o.transfer = *wire.Transfer
		}
	default:
		return fmt.Errorf("lexicon: invalid operation kind %d", wire.Kind)
	}
	return nil
}

// AsBalance returns the Balance payload; only meaningful when Kind == KindBalance.
func (o Operation) AsBalance() ExchangeCurrency { return o.balance }

// AsTransaction returns the Transaction payload; only meaningful when
// Kind == KindTransaction.
func (o Operation) AsTransaction() TransactionInfo { return o.transaction }

// AsTransfer returns the Transfer payload; only meaningful when
// Kind == KindTransfer.
func (o Operation) AsTransfer() TransferInfo { return o.transfer }

func (o Operation) String() string {
	switch o.Kind {
	case KindBalance:
		return o.balance.String()
	case KindTransaction:
		tx := o.transaction
		return fmt.Sprintf("tx(e=%d,s=%d,cf=%d,ct=%d)", tx.Exchange, tx.Side, tx.CurrencyFrom, tx.CurrencyTo)
	case KindTransfer:
		tr := o.transfer
		return fmt.Sprintf("tr(we=%d,de=%d,c=%d)", tr.WithdrawExchange, tr.DepositExchange, tr.Currency)
	default:
		return "unknown"
	}
}

// Equal reports structural equality between two operations.
func Equal(a, b Operation) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBalance:
		return a.balance == b.balance
	case KindTransaction:
		return a.transaction == b.transaction
	case KindTransfer:
		return a.transfer == b.transfer
	default:
		return false
	}
}

// Inverse reports whether a and b are the opposite-direction twin of one
// another: matching Transactions with swapped currencies and opposite
// side, or matching Transfers with swapped exchanges and identical
// currency. Balance is never inverse to anything (spec.md §3).
func Inverse(a, b Operation) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindTransaction:
		x, y := a.transaction, b.transaction
		return x.Exchange == y.Exchange &&
			x.Side != y.Side &&
			x.CurrencyFrom == y.CurrencyTo &&
			x.CurrencyTo == y.CurrencyFrom
	case KindTransfer:
		x, y := a.transfer, b.transfer
		return x.Currency == y.Currency &&
			x.WithdrawExchange == y.DepositExchange &&
			x.DepositExchange == y.WithdrawExchange
	default:
		return false
	}
}

// DeriveTransaction produces the Transaction operation and resulting
// balance currency for an incoming balance (exchange, c) trading against
// pair, per spec.md §4.1. pair must contain c and have two distinct
// currencies; violating that is a fatal input-data error, surfaced here
// rather than panicking so callers can decide how to report it.
func DeriveTransaction(exchange ExchangeID, c CurrencyID, pair CurrencyPair) (Operation, CurrencyID, error) {
	next, side, err := pair.NextCurrencyAndSide(c)
	if err != nil {
		return Operation{}, 0, err
	}
	return Transaction(exchange, side, c, next), next, nil
}
