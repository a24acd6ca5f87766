// Package password implements the credential transforms used for admin
// passwords and email verification codes, plus the password strength policy.
//
// # Hashers
//
//   - [Bcrypt]: salted cost-factored hash; salt embedded, 72 byte input limit.
//   - [Argon2]: Argon2id PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
//   - [KMS]: envelope encryption of secret+salt under a KMS key; the salt is
//     returned in [Digest].Salt and the ciphertext in [Digest].Hash.
//
// Bcrypt and Argon2 implement [Upgrader] so callers can rehash after a
// successful login when parameters were raised.
//
// # What this package must NOT do
//
//   - Store or retrieve digests.
//   - Import adminAuth.
//   - Log plaintext secrets.
package password
