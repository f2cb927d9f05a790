// Package validation wraps go-playground/validator with the conventions the
// API uses: JSON field names in messages, one readable message per failure,
// and failures reported as apperror validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/habits-go/apperror"
)

// Validator checks DTOs against their `validate` struct tags.
// It is safe for concurrent use once all custom rules are registered.
type Validator struct {
	v        *validator.Validate
	messages map[string]string
}

// New returns a Validator with the built-in rules.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v, messages: map[string]string{}}
}

// Register adds a custom rule. message is used when the rule fails; a %s in
// it is replaced with the field name.
func (val *Validator) Register(tag string, fn validator.Func, message string) {
	if err := val.v.RegisterValidation(tag, fn); err != nil {
		// Only possible with an empty tag or nil func, both programming errors.
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
	val.messages[tag] = message
}

// Struct validates s and returns nil or a *apperror.AppError of type
// ValidationError describing the first failing field.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewValidationError("invalid request", err)
	}
	return apperror.NewValidationError(val.describe(verrs[0]), err)
}

func (val *Validator) describe(fe validator.FieldError) string {
	field := fe.Field()
	// Elements of a dived slice are reported as "frequency[1]".
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if msg, ok := val.messages[fe.Tag()]; ok {
		return fmt.Sprintf(msg, field)
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain %s %s item(s)", field, bound, fe.Param())
		}
		return fmt.Sprintf("%s must be %s %s characters", field, bound, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
