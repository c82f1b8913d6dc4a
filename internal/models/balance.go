// internal/models/balance.go
package models

import "github.com/shopspring/decimal"

// NextBalance applies one transaction to a contact's running balance.
// A debt adds the full amount; a payment subtracts it but is clamped at
// zero, so overpaying never drives the balance negative.
//
// The clamp is applied per step, which makes the result a fold over the
// transactions in creation order rather than a plain sum. Every balance
// mutation in the system must go through this function.
func NextBalance(balance decimal.Decimal, kind TransactionKind, amount decimal.Decimal) decimal.Decimal {
	if kind == TxnKindDebt {
		return balance.Add(amount)
	}
	next := balance.Sub(amount)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}
