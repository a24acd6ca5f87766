// Package middleware adapts the engine's authorization checks to net/http.
//
// # Guards
//
//   - [RequireSession]: the Authorization header must name a live session.
//   - [RequireIdentity]: additionally, the JSON body's userId or email must
//     belong to that session's user.
//
// Both reject with 401 {"message":"INVALID_SESSION"} and answer store faults
// with 500. Admitted requests carry the session's user id in their context.
package middleware
