// Package ledger defines the domain model of the ledger engine: the financial
// event union, branches, inventory state, and the error taxonomy.
package ledger

import (
	"time"
)

// DateLayout is the business-date format used on every event.
const DateLayout = "2006-01-02"

// EventKind discriminates the event union.
type EventKind string

const (
	KindSale               EventKind = "sale"
	KindExpense            EventKind = "expense"
	KindBankTransaction    EventKind = "bank_transaction"
	KindCapitalTransaction EventKind = "capital_transaction"
	KindPartnerShare       EventKind = "partner_share"
	KindProjectCost        EventKind = "project_cost"
	KindTaxPayment         EventKind = "tax_payment"
)

// Kinds lists every event kind.
func Kinds() []EventKind {
	return []EventKind{
		KindSale,
		KindExpense,
		KindBankTransaction,
		KindCapitalTransaction,
		KindPartnerShare,
		KindProjectCost,
		KindTaxPayment,
	}
}

// IsValid reports whether k is a known event kind.
func (k EventKind) IsValid() bool {
	switch k {
	case KindSale, KindExpense, KindBankTransaction, KindCapitalTransaction,
		KindPartnerShare, KindProjectCost, KindTaxPayment:
		return true
	}
	return false
}

// IsBranchScoped reports whether events of this kind carry a branch ID.
// Capital, partner shares, project costs and tax payments are global.
func (k EventKind) IsBranchScoped() bool {
	switch k {
	case KindSale, KindExpense, KindBankTransaction:
		return true
	}
	return false
}

// Collection returns the document collection that stores events of this kind.
func (k EventKind) Collection() string {
	switch k {
	case KindSale:
		return "sales"
	case KindExpense:
		return "expenses"
	case KindBankTransaction:
		return "bank_transactions"
	case KindCapitalTransaction:
		return "capital_transactions"
	case KindPartnerShare:
		return "partners"
	case KindProjectCost:
		return "project_costs"
	case KindTaxPayment:
		return "tax_payments"
	}
	return ""
}

// Direction values for bank transactions.
const (
	DirectionDeposit    = "deposit"
	DirectionWithdrawal = "withdrawal"
)

// Direction values for capital transactions. Withdrawal is shared with bank.
const (
	DirectionInitial  = "initial"
	DirectionAddition = "addition"
)

// Period / direction values for tax payments.
const (
	TaxVAT   = "vat"
	TaxZakat = "zakat"
)

// Event is the tagged union of all ledger events. Kind selects which fields
// are meaningful; Validate enforces the per-kind shape. Events are immutable
// once appended.
type Event struct {
	ID   string    `json:"id"`
	Kind EventKind `json:"kind"`

	Amount      float64 `json:"amount,omitempty"`
	Date        string  `json:"date,omitempty"`
	Description string  `json:"description,omitempty"`

	// Category is set on expenses only.
	Category ExpenseCategory `json:"category,omitempty"`

	// Direction is the movement type: deposit/withdrawal for bank events,
	// initial/addition/withdrawal for capital events, vat/zakat for taxes.
	Direction string `json:"direction,omitempty"`

	// Name is set on partner shares and project costs.
	Name string `json:"name,omitempty"`

	// SharePercentage is set on partner shares, in (0, 100].
	SharePercentage float64 `json:"sharePercentage,omitempty"`

	// Period is the tax period label, e.g. "Q1 2024".
	Period string `json:"period,omitempty"`

	// BranchID is set on branch-scoped kinds only.
	BranchID string `json:"branchId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Month returns the YYYY-MM key of the event's business date. The zero-padded
// format makes lexical sort equal to chronological sort.
func (e *Event) Month() string {
	if len(e.Date) < 7 {
		return e.Date
	}
	return e.Date[:7]
}

// Signed returns the amount with the sign implied by the direction: negative
// for withdrawals, positive otherwise.
func (e *Event) Signed() float64 {
	if e.Direction == DirectionWithdrawal {
		return -e.Amount
	}
	return e.Amount
}

// Validate checks the per-kind shape of the event. Branch existence is checked
// at append time by the event store, not here.
func (e *Event) Validate() error {
	if !e.Kind.IsValid() {
		return invalid("kind", ErrInvalidKind)
	}

	if e.Kind.IsBranchScoped() && e.BranchID == "" {
		return invalid("branchId", ErrMissingField)
	}
	if !e.Kind.IsBranchScoped() && e.BranchID != "" {
		return invalid("branchId", ErrInvalidKind)
	}

	switch e.Kind {
	case KindPartnerShare:
		if e.Name == "" {
			return invalid("name", ErrMissingField)
		}
		if e.SharePercentage <= 0 || e.SharePercentage > 100 {
			return invalid("sharePercentage", ErrInvalidAmount)
		}
		return nil

	case KindSale:
		// amount and date checked below

	case KindExpense:
		if e.Category != "" && !e.Category.IsValid() {
			return invalid("category", ErrInvalidCategory)
		}

	case KindBankTransaction:
		if e.Direction != DirectionDeposit && e.Direction != DirectionWithdrawal {
			return invalid("direction", ErrInvalidKind)
		}

	case KindCapitalTransaction:
		if e.Direction != DirectionInitial && e.Direction != DirectionAddition &&
			e.Direction != DirectionWithdrawal {
			return invalid("direction", ErrInvalidKind)
		}

	case KindProjectCost:
		if e.Name == "" {
			return invalid("name", ErrMissingField)
		}

	case KindTaxPayment:
		if e.Direction != TaxVAT && e.Direction != TaxZakat {
			return invalid("direction", ErrInvalidKind)
		}
		if e.Period == "" {
			return invalid("period", ErrMissingField)
		}
	}

	if e.Amount <= 0 {
		return invalid("amount", ErrInvalidAmount)
	}
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	return nil
}

// ValidateDate checks that s is a well-formed YYYY-MM-DD date.
func ValidateDate(s string) error {
	if s == "" {
		return invalid("date", ErrMissingField)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return invalid("date", ErrInvalidDate)
	}
	return nil
}
