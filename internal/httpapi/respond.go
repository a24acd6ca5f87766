package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	adminAuth "github.com/MrEthical07/adminAuth"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
)

// CodeInvalidRequest answers bodies that fail to decode or validate.
const CodeInvalidRequest = adminAuth.CodeInvalidRequest

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its wire code. Errors outside the client-facing
// set are logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, known := adminAuth.CodeOf(err)
	if !known {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Message: string(code)})
}

type validatable interface {
	Validate() error
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg(errMalformedBody.Error())
		writeJSON(w, http.StatusBadRequest, errorBody{Message: string(CodeInvalidRequest)})
		return false
	}

	if err := dst.Validate(); err != nil {
		body := errorBody{Message: string(CodeInvalidRequest)}
		var fields validation.Errors
		if errors.As(err, &fields) {
			body.Errors = make(map[string]string, len(fields))
			for name, fieldErr := range fields {
				body.Errors[name] = fieldErr.Error()
			}
		}
		writeJSON(w, http.StatusBadRequest, body)
		return false
	}
	return true
}
