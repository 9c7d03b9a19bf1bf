package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Field names in messages are taken from the form tag, which is what the
// user saw on the page.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(formFieldName)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Only the first failing
// field is reported so the flash notice stays short.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return errors.New(fieldError(ve[0]))
	}
	return err
}

func formFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

// maxBytes bounds the encoded length of a string, where max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// fieldError turns one failed rule into the sentence shown to the user.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please enter your %s.", field)
	case "email":
		return "Please enter a valid email address."
	case "max":
		return fmt.Sprintf("The %s must be at most %s characters.", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("The %s is too long.", field)
	default:
		return fmt.Sprintf("The %s is not valid.", field)
	}
}
