/*
Package fee maintains the platform transaction fee.

The fee is expressed in units of 1/10000 of a price. The registry owner can
change it immediately or stage a new value that becomes effective at a given
time. A staged value is not applied by a background process. Instead the
first read of the effective fee after the activation time collapses the stage
into the current value and persists it.
*/
package fee
