package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryLine is one proposed debit or credit line of a draft. Currency may
// be left empty to use the referenced account's currency.
type EntryLine struct {
	AccountID   string
	Currency    string
	Description string
	Amount      decimal.Decimal
}

// Draft is a proposed, not-yet-committed transaction. A draft has no
// identity and no timestamp; both are assigned at commit by the posting
// engine.
type Draft struct {
	Metadata    map[string]any
	Description string
	Reference   string
	ReversalOf  string
	Debits      []EntryLine
	Credits     []EntryLine
}

// Validate checks the draft against the given accounts, in order:
// referenced accounts exist and are active, amounts are strictly positive
// and within currency scale, every currency's debits equal its credits,
// and the draft has at least one debit and one credit. It normalizes
// missing line currencies to the account's currency and currency codes to
// their canonical registry form in place, so balances never split across
// case variants of one currency. Validation is pure: it performs no
// storage access and leaves no side effect on failure beyond the currency
// normalization.
func (d *Draft) Validate(accounts map[string]*Account) error {
	lines := make([]*EntryLine, 0, len(d.Debits)+len(d.Credits))
	for i := range d.Debits {
		lines = append(lines, &d.Debits[i])
	}
	for i := range d.Credits {
		lines = append(lines, &d.Credits[i])
	}

	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok || !account.Active {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, line.AccountID)
		}

		if line.Currency == "" {
			line.Currency = account.Currency
		}
	}

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: got %s", ErrInvalidAmount, line.Amount)
		}

		currency, ok := LookupCurrency(line.Currency)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCurrency, line.Currency)
		}
		line.Currency = currency.Code

		if !currency.AllowsScale(line.Amount) {
			return fmt.Errorf("%w: %s in %s", ErrInvalidScale, line.Amount, currency.Code)
		}
	}

	if err := d.validateBalanced(); err != nil {
		return err
	}

	if len(d.Debits) == 0 || len(d.Credits) == 0 {
		return ErrMalformedTransaction
	}

	return ValidateMetadata(d.Metadata)
}

// validateBalanced checks that for every currency the debit and credit
// totals are exactly equal. Currencies balance independently; a draft may
// mix currencies as long as each one nets to zero on its own.
func (d *Draft) validateBalanced() error {
	sums := make(map[string]decimal.Decimal)

	var order []string
	for i := range d.Debits {
		line := &d.Debits[i]
		if _, ok := sums[line.Currency]; !ok {
			order = append(order, line.Currency)
		}
		sums[line.Currency] = sums[line.Currency].Add(line.Amount)
	}
	for i := range d.Credits {
		line := &d.Credits[i]
		if _, ok := sums[line.Currency]; !ok {
			order = append(order, line.Currency)
		}
		sums[line.Currency] = sums[line.Currency].Sub(line.Amount)
	}

	for _, currency := range order {
		if !sums[currency].IsZero() {
			return &UnbalancedError{Currency: currency, Imbalance: sums[currency]}
		}
	}

	return nil
}

// Build materializes the draft into a transaction with the given identity
// and commit timestamp. Entries keep draft order, debits first. nextID
// supplies entry identifiers.
func (d *Draft) Build(id string, now time.Time, nextID func() string) *Transaction {
	txn := &Transaction{
		ID:          id,
		CreatedAt:   now,
		Description: d.Description,
		Reference:   d.Reference,
		ReversalOf:  d.ReversalOf,
		Status:      TransactionStatusPosted,
		Metadata:    d.Metadata,
		Entries:     make([]Entry, 0, len(d.Debits)+len(d.Credits)),
	}

	appendEntry := func(line EntryLine, side EntrySide) {
		txn.Entries = append(txn.Entries, Entry{
			ID:            nextID(),
			TransactionID: id,
			AccountID:     line.AccountID,
			Side:          side,
			Amount:        line.Amount,
			Currency:      line.Currency,
			Description:   line.Description,
			CreatedAt:     now,
		})
	}

	for _, line := range d.Debits {
		appendEntry(line, EntrySideDebit)
	}
	for _, line := range d.Credits {
		appendEntry(line, EntrySideCredit)
	}

	return txn
}

// Deltas computes the per-(account, currency) balance effect of the
// transaction, expressed on each account's normal side. Deltas are
// commutative, so the storage adapter may apply them in any serialization
// order as long as it applies them atomically with the entries.
func Deltas(txn *Transaction, accounts map[string]*Account) []BalanceDelta {
	type key struct {
		accountID string
		currency  string
	}

	sums := make(map[key]decimal.Decimal)

	var order []key
	for i := range txn.Entries {
		e := &txn.Entries[i]
		k := key{accountID: e.AccountID, currency: e.Currency}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(e.NormalAmount(accounts[e.AccountID].NormalSide()))
	}

	deltas := make([]BalanceDelta, 0, len(order))
	for _, k := range order {
		deltas = append(deltas, BalanceDelta{
			AccountID: k.accountID,
			Currency:  k.currency,
			Delta:     sums[k],
		})
	}

	return deltas
}

// ReversalDraft builds the draft that cancels the transaction: the same
// entries with debit and credit swapped, amounts and currencies unchanged,
// linked back through ReversalOf.
func (t *Transaction) ReversalDraft(reason string) *Draft {
	description := "Void: " + t.Description
	if reason != "" {
		description += " - " + reason
	}

	reference := ""
	if t.Reference != "" {
		reference = "REV-" + t.Reference
	}

	draft := &Draft{
		Description: description,
		Reference:   reference,
		ReversalOf:  t.ID,
	}

	for i := range t.Entries {
		e := &t.Entries[i]
		line := EntryLine{
			AccountID: e.AccountID,
			Amount:    e.Amount,
			Currency:  e.Currency,
		}

		if e.Side == EntrySideDebit {
			draft.Credits = append(draft.Credits, line)
		} else {
			draft.Debits = append(draft.Debits, line)
		}
	}

	return draft
}
