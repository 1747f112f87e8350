// Package challenge stores pending verification challenges in a TTL
// key-value store. A challenge binds a hashed one-time code to an opaque
// flow payload; the store supports exact-blob consumption so that a
// challenge observed during verification can only be removed while it is
// still the same challenge.
package challenge
