// Package space provides search-space definitions and the configurations
// drawn from them.
//
// A Configuration is identified by the SHA-256 of its RFC 8785 canonical
// JSON (see MarshalCanonical and ConfigID), so equality and hashing are by
// value: two configurations built from the same dictionary share a Key
// regardless of key order or string normalization.
//
// Floats are permitted here, unlike most canonical-JSON profiles, because
// real-valued hyperparameters are the common case. They are rendered in
// ECMAScript shortest round-trip form so the same float always hashes the
// same way.
package space
