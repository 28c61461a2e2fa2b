package web

// Shared request helpers for the handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/listabob/internal/core"
)

// maxJSONBody caps JSON bodies that do not carry CSV data.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON body of at most limit bytes into v. Malformed
// bodies become validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return core.NewValidationError("request body is empty")
		default:
			return core.NewValidationError("invalid JSON body: %v", err)
		}
	}
	return nil
}

// parseIntParam parses a non-negative integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, &core.ValidationError{Field: name, Value: val, Message: "must be a non-negative integer"}
	}
	return i, nil
}

// parseBoolParam parses a boolean query or form value.
func parseBoolParam(val, name string, defaultVal bool) (bool, error) {
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, &core.ValidationError{Field: name, Value: val, Message: "must be true or false"}
	}
	return b, nil
}
