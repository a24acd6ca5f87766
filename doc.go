// Package adminAuth is the authentication engine behind the admin console.
//
// Admin users are provisioned out of band with no password. A user claims
// the account by requesting an emailed verification code, redeeming it for a
// short session, and setting a password with that session. Afterwards the
// user logs in with email and password and receives a long session.
//
// # Architecture boundaries
//
// adminAuth exposes [Engine], [Builder], [Config] and the store interfaces
// ([CredentialStore], [VerificationCodeStore], [SessionStore], [Mailer]).
// Concrete backends live in sub-packages: dynamo for admin users and codes,
// session for Redis sessions, mail for SES delivery and password for
// hashing. Those packages import adminAuth, so this package never imports
// them except session, which has no dependency back.
//
// Engine methods are safe for concurrent use after [Builder.Build].
//
// # Errors
//
// Every client-facing failure is one of the sentinel errors in errors.go.
// [CodeOf] maps an error to its wire code and [HTTPStatus] to its status.
// Anything else, including [ErrDuplicateAdminUser], is an internal error.
package adminAuth
