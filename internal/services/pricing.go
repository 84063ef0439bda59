package services

import "solemate_backend/internal/models"

// Pure pricing computations over an order snapshot. Nothing here mutates
// state or touches the repository.
//
// All money fields default to 0 when unset, so every function is total.
// When is_price_unknown is set the numeric fields still compute normally;
// display gating on the flag is the caller's concern.

// Profit is what the store keeps after the hub's charge and its own costs.
func Profit(o models.Order) float64 {
	return o.TotalPrice - o.HubPrice - o.Expense
}

// TotalPaid is everything the customer has handed over so far.
func TotalPaid(o models.Order) float64 {
	return o.AdvanceAmount + o.BalancePaid
}

// BalanceDue is the outstanding amount, floored at zero so an overpayment
// never shows as a negative balance.
func BalanceDue(o models.Order) float64 {
	due := o.TotalPrice - TotalPaid(o)
	if due < 0 {
		return 0
	}
	return due
}

// IsFullyPaid reports whether nothing is outstanding. Only meaningful once
// the price is final (is_price_unknown false).
func IsFullyPaid(o models.Order) bool {
	return BalanceDue(o) == 0
}

// SplitGroupExpense returns each member's share of a group expense. The
// quotient is taken as-is; no rounding-remainder redistribution is done,
// so 100 split 3 ways yields 33.33... per member.
func SplitGroupExpense(memberCount int, amount float64) float64 {
	if memberCount <= 0 {
		return 0
	}
	return amount / float64(memberCount)
}
