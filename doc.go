// Package identity implements challenge-response verification and
// role-scoped session issuance for a social application's accounts.
//
// Three flows share one verification core: account sign-up, password
// change, and administrator sign-in. Each flow emails a short numeric
// code, stores only a peppered Argon2id hash of it under a five-minute
// TTL, and consumes the challenge atomically exactly once on a correct
// response. Sessions are stateless HS256 tokens whose signing secret and
// lifetime depend on the subject's privilege tier, and verified
// identities are kept in a best-effort jittered-TTL cache for the rest
// of the platform to read.
//
// The package is designed for concurrent server workloads: Engine
// methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// This package is the public surface. It exposes [Engine], [Builder],
// [Config], and value types. Flow orchestration, challenge storage,
// code delivery, avatar generation, and audit dispatch live under
// internal/ and are never exported directly. Durable account storage,
// the TTL key-value store, and code delivery are injected capabilities:
// the engine performs no I/O it was not handed.
package identity
