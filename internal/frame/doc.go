// Package frame is the RESP2 frame codec shared by the shardkv server and
// client.
//
// Byte-level encoding and decoding is delegated to github.com/tidwall/resp.
// This package adds:
//
//   - Conn: a buffered stream that reads one request or reply frame at a
//     time and queues response frames until Flush
//   - Command: the tagged variant of supported commands (GET, SET, DEL,
//     EXISTS, PING, DBSIZE, QUIT) and its conversion to and from frames
//   - error classification: decoding failures become domain.ErrProtocol,
//     while EOF and network errors are returned untouched so callers can
//     tell a broken stream from a bad frame
//
// The absent-key sentinel on the wire is the RESP null bulk string
// ("$-1\r\n"), produced by Null.
package frame
