package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lpt-gateway/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("protocol", validateProtocol)
}

// Validate validates a struct against its `validate` tags.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// FieldErrors flattens validation errors into field -> failed tag pairs.
// Non-validation errors yield nil.
func FieldErrors(err error) map[string]interface{} {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		out[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}

// protocol accepts any casing of a known upstream protocol name.
func validateProtocol(fl validator.FieldLevel) bool {
	_, err := domain.ParseProtocolType(fl.Field().String())
	return err == nil
}
