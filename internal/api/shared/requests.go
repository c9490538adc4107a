package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; validator instances cache struct
// metadata, so one instance per process is the intended usage.
var validate = validator.New()

// DecodeJSON decodes the request body into the given request DTO.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest checks a decoded request DTO. A DTO with its own
// Validate method (cross-field rules the tag syntax cannot express) is
// validated through that; everything else goes through the struct tags.
func ValidateRequest(v interface{}) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	return validate.Struct(v)
}
