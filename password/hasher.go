package password

import (
	"context"
	"errors"
)

var (
	// ErrTooLong is returned when the input exceeds what the algorithm can consume.
	ErrTooLong = errors.New("password too long")
	// ErrEncryptionFailed is returned when the key service returned no ciphertext.
	ErrEncryptionFailed = errors.New("password encryption failed")
	// ErrKeyServiceUnavailable wraps transport failures from the key service.
	ErrKeyServiceUnavailable = errors.New("key service unavailable")
	// ErrMalformedDigest is returned when a stored digest cannot be decoded.
	ErrMalformedDigest = errors.New("malformed password digest")
)

// Digest is the stored form of a secret. Salt is empty for algorithms that
// embed their salt in Hash.
type Digest struct {
	Hash string
	Salt string
}

// Hasher turns a secret into an opaque Digest and checks candidates against it.
// Verify returns (false, nil) on a plain mismatch and reserves errors for
// malformed digests and backend faults.
type Hasher interface {
	Hash(ctx context.Context, secret string) (Digest, error)
	Verify(ctx context.Context, secret string, digest Digest) (bool, error)
}

// Upgrader is implemented by hashers that can tell when a digest was produced
// with weaker parameters than the current configuration.
type Upgrader interface {
	NeedsUpgrade(digest Digest) (bool, error)
}
