/*
Package events implements the append-only event sink of the application.

Extensions call Outbox.Emit to record what happened (a series was created, an
edition was minted or transferred, a fee was changed). Events are stored in
the application state under a sequence key, so they are committed together
with the state change that produced them and never read back by on-chain
code. The relay sub package drains them to an external consumer.

Payloads are JSON documents compressed with brotli.
*/
package events
