/*
Package series implements the series registry and the minting engine.

A series is a creator defined template from which numbered editions are
minted. Edition numbers start at 1 and follow the number of issued editions,
so burning an edition never frees its number. A series with a copies limit
stops being mintable when the last copy is issued.

The template is never copied into editions. Edition views are composed at
read time from the ownership record and the current series template.

Series creation and price changes snapshot the effective platform fee. A buy
uses that snapshot rather than the fee in force at the time of the sale.
*/
package series
