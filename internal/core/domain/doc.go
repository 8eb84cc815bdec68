// Package domain defines the error vocabulary shared by the shardkv server
// and client.
//
// Every protocol-visible failure is a *DomainError with a stable code of the
// form KV-<AREA>-<NNNN>. RedisError renders one as the text of a RESP error
// reply, and errors.Is matches on the code alone, so a client can compare a
// decoded reply against the same sentinel values the server used.
package domain
