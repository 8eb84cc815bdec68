// Package tests holds end-to-end tests that wire the server packages
// together the way shardkv-server does.
package tests
