package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	adminAuth "github.com/MrEthical07/adminAuth"
)

// MaxIdentityBodyBytes bounds the request body RequireIdentity buffers.
const MaxIdentityBodyBytes = 1 << 20

// RequireSession admits requests whose Authorization header names a live
// session. The session's user id is available downstream through
// adminAuth.SessionUserIDFromContext.
func RequireSession(engine *adminAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeCode(w, adminAuth.CodeInternalServerError)
				return
			}

			decision, err := engine.Authorize(r.Context(), r.Header.Get("Authorization"))
			if !admit(w, decision, err) {
				return
			}

			ctx := adminAuth.WithSessionUserID(r.Context(), decision.PrincipalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity is RequireSession bound to the userId or email named in
// the JSON request body. The body is buffered and handed on unchanged.
func RequireIdentity(engine *adminAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeCode(w, adminAuth.CodeInternalServerError)
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, MaxIdentityBodyBytes))
				if err != nil {
					status := http.StatusBadRequest
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						status = http.StatusRequestEntityTooLarge
					}
					writeStatus(w, status, adminAuth.CodeInvalidRequest)
					return
				}
			}

			decision, err := engine.AuthorizeIdentity(r.Context(), r.Header.Get("Authorization"), body)
			if !admit(w, decision, err) {
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			ctx := adminAuth.WithSessionUserID(r.Context(), decision.PrincipalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func admit(w http.ResponseWriter, decision adminAuth.Decision, err error) bool {
	if err != nil {
		writeCode(w, adminAuth.CodeInternalServerError)
		return false
	}
	if !decision.Allow {
		writeCode(w, adminAuth.CodeInvalidSession)
		return false
	}
	return true
}

func writeCode(w http.ResponseWriter, code adminAuth.ErrorCode) {
	writeStatus(w, code.HTTPStatus(), code)
}

func writeStatus(w http.ResponseWriter, status int, code adminAuth.ErrorCode) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": string(code)})
}
