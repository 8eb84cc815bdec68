// Package redisserver serves the shardkv store over the Redis protocol.
//
// The Server owns the listener and runs one goroutine per accepted
// connection. Each connection moves through a fixed cycle:
//
//	Reading -> Dispatching -> Writing -> Reading ... -> Closed
//
// Exactly one reply is written per request, in request order. A bad or
// unknown command is answered with an error reply and the connection keeps
// going; a frame that cannot be decoded is answered and then only that
// connection is closed. Connections never share state other than the
// store, whose shard locks are never held across I/O.
//
// Supported commands: GET, SET, DEL, EXISTS, PING, DBSIZE and QUIT, sent
// either as RESP arrays or as inline commands.
package redisserver
