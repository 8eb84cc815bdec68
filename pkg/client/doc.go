// Package client talks to a shardkv server.
//
// Conn is a single connection that performs one request at a time and is
// not safe for concurrent use.
//
// Mux shares one connection between any number of goroutines. Callers hold
// a Handle; every call turns into a command plus a single-use reply channel
// that is placed on a bounded queue. One manager goroutine owns the
// connection, takes commands off the queue in order, performs them and
// answers each caller on its own reply channel:
//
//	h, err := client.Open(ctx, "127.0.0.1:6379")
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//
//	h2 := h.Clone() // hand to another goroutine
//	go func() {
//		defer h2.Close()
//		_ = h2.Set(ctx, "hello", []byte("world"))
//	}()
//
// Callers block while the queue is full. The manager stops once every
// Handle has been closed and the queue is drained; Done reports that.
package client
