// Package cache is a best-effort, cache-aside identity cache over a TTL
// key-value store.
//
// Entries are namespaced by role so a user and an administrator sharing
// an email address never collide. Every write gets a random jitter added
// to its base TTL, which spreads expirations and keeps a burst of
// sign-ins from producing a synchronized stampede of reloads later. The
// cache degrades rather than fails: a broken store makes reads fall
// through to the loader and makes writes a logged no-op.
package cache
