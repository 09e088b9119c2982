/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates strict JSON decoding with unified error reporting so handlers
can bind request bodies in one call.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"pingchat/internal/pkg/errs"
)

// MaxBodyBytes caps the size of any JSON request body (1 MB).
const MaxBodyBytes int64 = 1 << 20

// BindJSON binds the JSON request body to dst. Unknown fields and trailing
// content are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
