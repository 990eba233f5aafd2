// Package password provides Argon2id hashing for the operator password
// guarding the admin endpoints.
//
// The encoded format is the conventional
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
// so hashes generated by standard tooling verify unchanged.
package password
