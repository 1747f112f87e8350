// Package password implements peppered Argon2id hashing for both account
// passwords and one-time verification codes.
//
// Every hash mixes in a deployment-wide secret pepper before the
// memory-hard derivation: the secret is first run through
// HMAC-SHA256(pepper, secret) and the keyed digest is what Argon2id
// stretches. golang.org/x/crypto/argon2 exposes no associated-data input,
// so the keyed pre-hash is how the pepper is bound to the computation. The
// pepper is distinct from the per-hash random salt, which is generated
// here and encoded into the PHC string.
//
// A hash produced with one pepper never verifies under another, so stored
// hashes are useless to an attacker who has the database but not the
// deployment secret.
package password
