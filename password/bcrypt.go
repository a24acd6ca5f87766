package password

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxBcryptBytes is the longest input bcrypt consumes without truncation.
const MaxBcryptBytes = 72

// Bcrypt is a salted, cost-factored [Hasher]. The salt is embedded in the hash.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher with the given cost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns the bcrypt digest of secret. Inputs longer than
// MaxBcryptBytes are rejected with ErrTooLong rather than truncated.
func (b *Bcrypt) Hash(_ context.Context, secret string) (Digest, error) {
	if len(secret) > MaxBcryptBytes {
		return Digest{}, ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Digest{}, ErrTooLong
		}
		return Digest{}, err
	}
	return Digest{Hash: string(hash)}, nil
}

// Verify compares secret against a bcrypt digest.
func (b *Bcrypt) Verify(_ context.Context, secret string, digest Digest) (bool, error) {
	if len(secret) > MaxBcryptBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest.Hash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(ErrMalformedDigest, err)
	}
}

// NeedsUpgrade reports whether digest was produced with a lower cost.
func (b *Bcrypt) NeedsUpgrade(digest Digest) (bool, error) {
	cost, err := bcrypt.Cost([]byte(digest.Hash))
	if err != nil {
		return false, errors.Join(ErrMalformedDigest, err)
	}
	return cost < b.cost, nil
}
