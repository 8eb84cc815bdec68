// Package oneshot provides a single-use reply channel.
//
// A Sender and Receiver pair carries exactly one value from one goroutine
// to another. Either side may go away first: a Send to a dropped Receiver
// reports ErrReceiverClosed, and a Recv whose Sender was closed without a
// value reports ErrDisconnected. Neither side ever blocks the other.
package oneshot
