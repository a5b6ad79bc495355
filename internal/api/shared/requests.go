package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/study-buddy/internal/domain"
)

// MaxRequestBytes caps request bodies. Study notes are the largest input.
const MaxRequestBytes = 1 << 20

var validate = validator.New()

// DecodeJSON decodes the request body into v. Malformed bodies give an error
// wrapping domain.ErrValidation. An empty body leaves v unchanged.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.NewValidationError("body", "is too large", nil)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrValidation, err)
	}
	return nil
}

// ValidateRequest validates struct tags on v.
func ValidateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewValidationError(verrs[0].Field(), "failed on the '"+verrs[0].Tag()+"' rule", nil)
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
