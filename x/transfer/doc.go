/*
Package transfer implements the edition transfer protocol.

A plain transfer moves an edition in a single step. A transfer with
acknowledgment moves the edition and then asks the receiver whether it
accepts it. The question is asked by a task scheduled for the next block, so
the new owner is visible to everyone while the answer is pending. When the
receiver rejects the edition, fails to answer or has no hook at all, the
transfer is rolled back: the prior owner and its approvals are restored. If
the edition was moved again in the meantime it is left where it is.

Resolve tasks are authorized by ResolverCondition only. No signature can
satisfy it, so only the protocol itself can resolve a transfer.
*/
package transfer
