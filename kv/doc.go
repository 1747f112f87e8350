// Package kv defines the ephemeral keyed store boundary used for
// verification challenges and cached identity snapshots.
//
// The engine never talks to Redis directly; it depends on [Store], an
// injected capability with explicit TTLs. [RedisStore] is the production
// implementation. Per-key operations are atomic: Set is last-writer-wins,
// Get after expiry reports [ErrNotFound], and CompareAndDelete removes a
// key only while it still holds the exact expected value, which is what
// gives challenge consumption its single-use guarantee.
package kv
