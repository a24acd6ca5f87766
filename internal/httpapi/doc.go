// Package httpapi exposes the engine over JSON/HTTP.
//
// Routes live under /admin-user. Request bodies are validated before they
// reach the engine; failures answer 400 {"message":"INVALID_REQUEST"} with a
// per-field "errors" object. Engine errors answer {"message":"<CODE>"} with
// the status from adminAuth.ErrorCode.HTTPStatus.
//
// Every response carries an X-Request-Id header and every request is logged
// once through zerolog.
package httpapi
