package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

const (
	kmsSaltBytes    = 16
	kmsMaxPlaintext = 4096
)

// KMSAPI is the subset of the KMS client used by [KMS]. *kms.Client satisfies it.
type KMSAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMS is an envelope-encryption [Hasher]. The secret is concatenated with a
// random salt and encrypted under a customer managed key; Verify decrypts the
// stored ciphertext and compares in constant time.
type KMS struct {
	api   KMSAPI
	keyID string
}

// NewKMS returns a KMS backed hasher for keyID (a key id, ARN or alias).
func NewKMS(api KMSAPI, keyID string) (*KMS, error) {
	if api == nil {
		return nil, errors.New("kms client required")
	}
	if keyID == "" {
		return nil, errors.New("kms key id required")
	}
	return &KMS{api: api, keyID: keyID}, nil
}

// Hash encrypts secret+salt and returns the base64 ciphertext with its salt.
func (k *KMS) Hash(ctx context.Context, secret string) (Digest, error) {
	salt, err := newSalt()
	if err != nil {
		return Digest{}, err
	}

	plaintext := []byte(secret + salt)
	if len(plaintext) > kmsMaxPlaintext {
		return Digest{}, ErrTooLong
	}

	out, err := k.api.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(k.keyID),
		Plaintext: plaintext,
	})
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrKeyServiceUnavailable, err)
	}
	if out == nil || len(out.CiphertextBlob) == 0 {
		return Digest{}, ErrEncryptionFailed
	}

	return Digest{
		Hash: base64.StdEncoding.EncodeToString(out.CiphertextBlob),
		Salt: salt,
	}, nil
}

// Verify decrypts the stored ciphertext and compares it against secret+salt.
func (k *KMS) Verify(ctx context.Context, secret string, digest Digest) (bool, error) {
	blob, err := base64.StdEncoding.DecodeString(digest.Hash)
	if err != nil || len(blob) == 0 {
		return false, ErrMalformedDigest
	}

	out, err := k.api.Decrypt(ctx, &kms.DecryptInput{
		KeyId:          aws.String(k.keyID),
		CiphertextBlob: blob,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyServiceUnavailable, err)
	}
	if out == nil {
		return false, ErrMalformedDigest
	}

	expected := []byte(secret + digest.Salt)
	return subtle.ConstantTimeCompare(out.Plaintext, expected) == 1, nil
}

func newSalt() (string, error) {
	buf := make([]byte, kmsSaltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}
