// Package token issues and verifies role-scoped session tokens using
// per-role HS256 signing keys and strict validation semantics suitable
// for low-latency authentication paths.
//
// Each role carries its own secret and lifetime. A token minted for one
// role never verifies under another role's key, so possession of a user
// session can never be replayed against administrator surfaces.
package token
