package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"recyclehub/internal/services"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func DecodeJSON(r *http.Request, dst interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return services.NewValidationError("Invalid request body format", err)
	}
	return nil
}

// QueryLimit parses the "limit" query parameter. Missing or invalid values
// give def; values above max are clamped.
func QueryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
