/*
Package edition is the ownership ledger of minted editions.

Every edition has a single owner, a table of approved parties and a per
edition approval counter. Approval identifiers start at 1 and are never
reused, even when approvals are cleared by a transfer. The ledger also keeps
an index of editions per owner and an index of all existing editions.

The ledger knows nothing about series. Edition identifiers are built by the
series registry as "<series id>:<number>".
*/
package edition
