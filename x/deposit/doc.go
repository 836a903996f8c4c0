/*
Package deposit implements storage cost accounting with attached deposits.

A transaction can attach a deposit that its main signer pays. The decorator
moves the deposit into the deposit pool before the handler runs and meters
the bytes that the handler stores. Handlers may spend a part of the deposit,
for example to pay a price, with Pay or Spend. Afterwards the decorator
charges the configured cost per stored byte plus everything spent and
refunds the rest. A deposit that does not cover both fails the transaction.

Storage cost stays in the pool.
*/
package deposit
