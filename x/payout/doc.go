/*
Package payout splits a sale amount between the royalty parties of a series
and the owner of the sold edition.

Every royalty party that is not the owner receives its basis point share of
the amount, rounded down. The owner receives whatever is left, so the shares
always add up to the sale amount.
*/
package payout
