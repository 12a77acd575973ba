// Package economydomain holds the diamond ledger rules.
package economydomain

import (
	"errors"
	"fmt"
)

// TransactionType is the direction of a balance change.
type TransactionType string

const (
	Increment TransactionType = "Increment"
	Deduction TransactionType = "Deduction"
)

// Reason tags why a transaction happened.
type Reason string

const (
	ReasonReward    Reason = "Reward"
	ReasonPurchase  Reason = "Purchase"
	ReasonDemotion  Reason = "Demotion"
	ReasonPromotion Reason = "Promotion"
	ReasonAdmin     Reason = "Admin"
	ReasonOther     Reason = "Other"
)

var (
	// ErrInsufficientBalance is returned for a deduction above the balance
	// when partial deductions are not allowed.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidTransaction covers negative amounts and unknown types or reasons.
	ErrInvalidTransaction = errors.New("invalid transaction")
)

func (t TransactionType) Valid() bool {
	return t == Increment || t == Deduction
}

func (r Reason) Valid() bool {
	switch r {
	case ReasonReward, ReasonPurchase, ReasonDemotion, ReasonPromotion, ReasonAdmin, ReasonOther:
		return true
	}
	return false
}

// Transaction is a ledger entry before it is persisted.
type Transaction struct {
	Type         TransactionType
	Reason       Reason
	Amount       int
	BalanceAfter int
	Description  string
}

// Signed returns the amount with the direction applied.
func (t Transaction) Signed() int {
	if t.Type == Deduction {
		return -t.Amount
	}
	return t.Amount
}

// BuildTransaction computes the entry for applying amount to balance. A
// deduction larger than the balance is clamped to the balance when
// allowPartial is set and rejected otherwise.
func BuildTransaction(balance, amount int, typ TransactionType, reason Reason, description string, allowPartial bool) (Transaction, error) {
	if amount < 0 || balance < 0 {
		return Transaction{}, fmt.Errorf("%w: negative amount or balance", ErrInvalidTransaction)
	}
	if !typ.Valid() {
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, typ)
	}
	if !reason.Valid() {
		return Transaction{}, fmt.Errorf("%w: unknown reason %q", ErrInvalidTransaction, reason)
	}

	tx := Transaction{Type: typ, Reason: reason, Amount: amount, Description: description}
	switch typ {
	case Increment:
		tx.BalanceAfter = balance + amount
	case Deduction:
		if amount > balance {
			if !allowPartial {
				return Transaction{}, fmt.Errorf("%w: balance %d, deduction %d", ErrInsufficientBalance, balance, amount)
			}
			tx.Amount = balance
		}
		tx.BalanceAfter = balance - tx.Amount
	}
	return tx, nil
}
