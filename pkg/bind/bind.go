// Package bind decodes a JSON request body into a struct and runs its
// validate tags. ctx.BindJSON wraps it with the 422 response.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/validate"
)

// bodyLimit caps a request body. Listing photos go through multipart, not
// here, so JSON bodies stay small.
func bodyLimit() int64 {
	if n := config.Int("MAX_BODY_BYTES", 0); n > 0 {
		return int64(n)
	}
	return 4 << 20
}

// JSON decodes r.Body into dest and validates it. A non-nil errs map means
// validation failed; a non-nil err means the body itself was unusable
// (malformed JSON or over the size cap).
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, bodyLimit())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", tooBig.Limit)
		}
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}

	if errs = validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
