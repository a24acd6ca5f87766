package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/argon2"
)

const phcAlgorithm = "argon2id"

// DefaultMaxPasswordBytes applies when Argon2Params.MaxPasswordBytes is zero.
const DefaultMaxPasswordBytes = 1024

var b64 = base64.RawStdEncoding

// Argon2Params are Argon2id cost parameters. Memory is in KiB.
type Argon2Params struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
}

// Validate enforces the floor below which digests are not worth storing.
func (p Argon2Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Memory, validation.Min(uint32(8*1024))),
		validation.Field(&p.Time, validation.Min(uint32(1))),
		validation.Field(&p.Parallelism, validation.Min(uint8(1))),
		validation.Field(&p.SaltLength, validation.Min(uint32(16))),
		validation.Field(&p.KeyLength, validation.Min(uint32(16))),
		validation.Field(&p.MaxPasswordBytes, validation.Min(0)),
	)
}

// Argon2 is an Argon2id [Hasher] producing PHC strings. The salt travels
// inside the PHC string, so Digest.Salt stays empty.
type Argon2 struct {
	params Argon2Params
}

func NewArgon2(params Argon2Params) (*Argon2, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("argon2 params: %w", err)
	}
	if params.MaxPasswordBytes == 0 {
		params.MaxPasswordBytes = DefaultMaxPasswordBytes
	}
	return &Argon2{params: params}, nil
}

func (a *Argon2) Hash(_ context.Context, secret string) (Digest, error) {
	if len(secret) > a.params.MaxPasswordBytes {
		return Digest{}, ErrTooLong
	}

	salt := make([]byte, a.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return Digest{}, err
	}

	p := phc{
		memory:      a.params.Memory,
		time:        a.params.Time,
		parallelism: a.params.Parallelism,
		salt:        salt,
	}
	p.key = p.derive(secret, a.params.KeyLength)
	return Digest{Hash: p.String()}, nil
}

// Verify recomputes the key with the parameters recorded in the digest, not
// the current ones, so older digests keep verifying after a cost increase.
func (a *Argon2) Verify(_ context.Context, secret string, digest Digest) (bool, error) {
	if len(secret) > a.params.MaxPasswordBytes {
		return false, nil
	}
	p, err := parsePHC(digest.Hash)
	if err != nil {
		return false, errors.Join(ErrMalformedDigest, err)
	}
	candidate := p.derive(secret, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(candidate, p.key) == 1, nil
}

func (a *Argon2) NeedsUpgrade(digest Digest) (bool, error) {
	p, err := parsePHC(digest.Hash)
	if err != nil {
		return false, errors.Join(ErrMalformedDigest, err)
	}
	weaker := p.memory < a.params.Memory ||
		p.time < a.params.Time ||
		p.parallelism < a.params.Parallelism ||
		uint32(len(p.key)) != a.params.KeyLength
	return weaker, nil
}

// phc is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (p phc) derive(secret string, keyLen uint32) []byte {
	return argon2.IDKey([]byte(secret), p.salt, p.time, p.memory, p.parallelism, keyLen)
}

func (p phc) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcAlgorithm, argon2.Version,
		p.memory, p.time, p.parallelism,
		b64.EncodeToString(p.salt), b64.EncodeToString(p.key))
}

func parsePHC(s string) (phc, error) {
	fields := strings.Split(s, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != phcAlgorithm {
		return phc{}, errors.New("not an argon2id PHC string")
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return phc{}, fmt.Errorf("version: %w", err)
	}
	if version != argon2.Version {
		return phc{}, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p phc
	var parallelism uint32
	n, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &parallelism)
	if err != nil || n != 3 {
		return phc{}, fmt.Errorf("params %q", fields[3])
	}
	if p.memory == 0 || p.time == 0 || parallelism == 0 || parallelism > 255 {
		return phc{}, fmt.Errorf("params %q out of range", fields[3])
	}
	p.parallelism = uint8(parallelism)

	if p.salt, err = b64.DecodeString(fields[4]); err != nil || len(p.salt) < 16 {
		return phc{}, errors.New("bad salt")
	}
	if p.key, err = b64.DecodeString(fields[5]); err != nil || len(p.key) == 0 {
		return phc{}, errors.New("bad key")
	}
	return p, nil
}
