/*
Package cash implements the value-transfer service: wallets holding a single
coin.Amount balance, moving value between them and a user facing send
message.

Other extensions use Controller.MoveCoins to pay out sales, royalties and
deposit refunds. A failed move aborts the whole transaction, a partial payment
is never retried.
*/
package cash
