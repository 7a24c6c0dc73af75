package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindAndValidate decodes the request body into payload and runs struct
// validation, returning a VALIDATION_ERROR with a field detail map on
// failure.
func BindAndValidate(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		return apierr.Validation(map[string]string{"body": "invalid request body"})
	}
	return Struct(payload)
}

func Struct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierr.Validation(map[string]string{"body": "invalid request body"})
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe)] = messageFor(fe)
	}
	return apierr.Validation(details)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "body"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "uuid":
		return "must be a valid UUID"
	case "e164":
		return "invalid phone number format"
	case "datetime":
		return "invalid date format, use YYYY-MM-DD"
	case "alphanum":
		return "must contain only letters and numbers"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
